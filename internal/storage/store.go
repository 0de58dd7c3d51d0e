// Package storage persists tenant records, one SQLite database per
// building. Updatable columns form a closed set: every setter carries its
// own SQL, so caller input never reaches a statement as a column name.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rentledger/internal/core"

	_ "modernc.org/sqlite"
)

// PersistenceError reports that the underlying store was unreachable or
// rejected an operation. The operation is not retried automatically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// paidColumns maps core.Month indexes to their payment columns. Keep in
// calendar order; RecordPayment depends on it.
var paidColumns = [12]string{
	"jan_paid", "feb_paid", "mar_paid", "apr_paid", "may_paid", "jun_paid",
	"jul_paid", "aug_paid", "sep_paid", "oct_paid", "nov_paid", "dec_paid",
}

const tenantColumns = `id, name, apt_number, lease_start, lease_expired, security, rent,
	jan_paid, feb_paid, mar_paid, apr_paid, may_paid, jun_paid,
	jul_paid, aug_paid, sep_paid, oct_paid, nov_paid, dec_paid, balance`

// LedgerStore is the per-building tenant store.
type LedgerStore struct {
	db       *sql.DB
	building string
}

// Open opens (creating if needed) the SQLite database for one building
// and brings its schema up to date.
func Open(dbPath, building string) (*LedgerStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &LedgerStore{db: db, building: building}, nil
}

// Building returns the building this store belongs to.
func (s *LedgerStore) Building() string { return s.building }

func (s *LedgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertTenant persists a new tenant and returns it with the assigned id.
func (s *LedgerStore) InsertTenant(ctx context.Context, t core.Tenant) (core.Tenant, error) {
	const q = `INSERT INTO tenants (name, apt_number, lease_start, lease_expired, security, rent, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		t.Name, t.AptNumber, t.LeaseStart.ISO(), t.LeaseExpired.ISO(),
		t.Security.Cents, t.Rent.Cents, t.Balance.Cents)
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "insert tenant", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "insert tenant id", Err: err}
	}
	t.ID = id
	return t, nil
}

// InsertTenantWithID persists a tenant under a caller-supplied id, as CSV
// import does. The supplied balance is stored as-is.
func (s *LedgerStore) InsertTenantWithID(ctx context.Context, t core.Tenant) error {
	const q = `INSERT INTO tenants (id, name, apt_number, lease_start, lease_expired, security, rent, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		t.ID, t.Name, t.AptNumber, t.LeaseStart.ISO(), t.LeaseExpired.ISO(),
		t.Security.Cents, t.Rent.Cents, t.Balance.Cents)
	if err != nil {
		return &PersistenceError{Op: "insert tenant with id", Err: err}
	}
	return nil
}

// GetTenant loads one tenant by id.
func (s *LedgerStore) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Tenant{}, core.ErrTenantNotFound
	}
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "get tenant", Err: err}
	}
	return t, nil
}

// ListTenants returns every tenant in the building in id order.
func (s *LedgerStore) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, &PersistenceError{Op: "list tenants", Err: err}
	}
	defer rows.Close()

	var tenants []core.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "scan tenant", Err: err}
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list tenants", Err: err}
	}
	return tenants, nil
}

// DeleteTenant removes a tenant. A missing id is reported, not ignored.
func (s *LedgerStore) DeleteTenant(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "delete tenant", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "delete tenant", Err: err}
	}
	if n == 0 {
		return core.ErrTenantNotFound
	}
	return nil
}

// Single-field setters. One statement per column keeps the updatable set
// closed and typed.

func (s *LedgerStore) SetName(ctx context.Context, id int64, name string) error {
	return s.setField(ctx, `UPDATE tenants SET name = ? WHERE id = ?`, name, id)
}

func (s *LedgerStore) SetAptNumber(ctx context.Context, id int64, apt string) error {
	return s.setField(ctx, `UPDATE tenants SET apt_number = ? WHERE id = ?`, apt, id)
}

func (s *LedgerStore) SetLeaseStart(ctx context.Context, id int64, d core.Date) error {
	return s.setField(ctx, `UPDATE tenants SET lease_start = ? WHERE id = ?`, d.ISO(), id)
}

func (s *LedgerStore) SetLeaseExpired(ctx context.Context, id int64, d core.Date) error {
	return s.setField(ctx, `UPDATE tenants SET lease_expired = ? WHERE id = ?`, d.ISO(), id)
}

func (s *LedgerStore) SetSecurity(ctx context.Context, id int64, m core.Money) error {
	return s.setField(ctx, `UPDATE tenants SET security = ? WHERE id = ?`, m.Cents, id)
}

func (s *LedgerStore) SetRent(ctx context.Context, id int64, m core.Money) error {
	return s.setField(ctx, `UPDATE tenants SET rent = ? WHERE id = ?`, m.Cents, id)
}

func (s *LedgerStore) setField(ctx context.Context, query string, value any, id int64) error {
	res, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return &PersistenceError{Op: "update tenant field", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "update tenant field", Err: err}
	}
	if n == 0 {
		return core.ErrTenantNotFound
	}
	return nil
}

// UpdateTenant rewrites the editable fields of a record in one statement.
// Payment columns and balance are left untouched: edits never recompute
// the balance.
func (s *LedgerStore) UpdateTenant(ctx context.Context, t core.Tenant) error {
	const q = `UPDATE tenants SET name = ?, apt_number = ?, lease_start = ?, lease_expired = ?, security = ?, rent = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q,
		t.Name, t.AptNumber, t.LeaseStart.ISO(), t.LeaseExpired.ISO(),
		t.Security.Cents, t.Rent.Cents, t.ID)
	if err != nil {
		return &PersistenceError{Op: "update tenant", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "update tenant", Err: err}
	}
	if n == 0 {
		return core.ErrTenantNotFound
	}
	return nil
}

// RecordPayment posts a payment for one month inside a transaction: the
// month column and balance move together or not at all.
func (s *LedgerStore) RecordPayment(ctx context.Context, id int64, month core.Month, amount core.Money) (core.Tenant, error) {
	idx := month.Index()
	if idx < 0 {
		return core.Tenant{}, &core.ValidationError{Field: "month", Reason: fmt.Sprintf("unknown month %q", month)}
	}
	column := paidColumns[idx]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "begin payment tx", Err: err}
	}
	defer tx.Rollback()

	var balance, paid int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance, `+column+` FROM tenants WHERE id = ?`, id).Scan(&balance, &paid)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Tenant{}, core.ErrTenantNotFound
	}
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "read balance", Err: err}
	}

	newPaid, newBalance := core.ApplyPayment(
		core.Money{Cents: balance}, core.Money{Cents: paid}, amount)

	_, err = tx.ExecContext(ctx,
		`UPDATE tenants SET `+column+` = ?, balance = ? WHERE id = ?`,
		newPaid.Cents, newBalance.Cents, id)
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "update payment", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return core.Tenant{}, &PersistenceError{Op: "commit payment", Err: err}
	}

	return s.GetTenant(ctx, id)
}

// IncreaseRent applies a percentage rent change inside a transaction.
// The balance is not touched.
func (s *LedgerStore) IncreaseRent(ctx context.Context, id int64, percent float64) (core.Tenant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "begin rent tx", Err: err}
	}
	defer tx.Rollback()

	var rent int64
	err = tx.QueryRowContext(ctx, `SELECT rent FROM tenants WHERE id = ?`, id).Scan(&rent)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Tenant{}, core.ErrTenantNotFound
	}
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "read rent", Err: err}
	}

	newRent := core.ApplyRentIncrease(core.Money{Cents: rent}, percent)

	_, err = tx.ExecContext(ctx, `UPDATE tenants SET rent = ? WHERE id = ?`, newRent.Cents, id)
	if err != nil {
		return core.Tenant{}, &PersistenceError{Op: "update rent", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return core.Tenant{}, &PersistenceError{Op: "commit rent", Err: err}
	}

	return s.GetTenant(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (core.Tenant, error) {
	var (
		t          core.Tenant
		start, end string
		security   int64
		rent       int64
		paid       [12]int64
		balance    int64
	)
	err := row.Scan(&t.ID, &t.Name, &t.AptNumber, &start, &end, &security, &rent,
		&paid[0], &paid[1], &paid[2], &paid[3], &paid[4], &paid[5],
		&paid[6], &paid[7], &paid[8], &paid[9], &paid[10], &paid[11], &balance)
	if err != nil {
		return core.Tenant{}, err
	}

	t.LeaseStart, err = core.ParseISODate(start)
	if err != nil {
		return core.Tenant{}, fmt.Errorf("stored lease_start: %w", err)
	}
	t.LeaseExpired, err = core.ParseISODate(end)
	if err != nil {
		return core.Tenant{}, fmt.Errorf("stored lease_expired: %w", err)
	}
	t.Security = core.Money{Cents: security}
	t.Rent = core.Money{Cents: rent}
	for i, cents := range paid {
		t.MonthlyPaid[i] = core.Money{Cents: cents}
	}
	t.Balance = core.Money{Cents: balance}
	return t, nil
}
