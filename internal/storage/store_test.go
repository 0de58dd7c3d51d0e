package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"rentledger/internal/core"
)

func openTestStore(t *testing.T) *LedgerStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "property_1.db"), "property_1")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTenant() core.Tenant {
	return core.Tenant{
		Name:         "Ada Smith",
		AptNumber:    "3B",
		LeaseStart:   core.NewDate(2023, 1, 1),
		LeaseExpired: core.NewDate(2025, 1, 1),
		Security:     core.Money{Cents: 150000},
		Rent:         core.Money{Cents: 100000},
		Balance:      core.Money{Cents: 1800000},
	}
}

func TestInsertAndGetTenant(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.InsertTenant(ctx, sampleTenant())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := store.GetTenant(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ada Smith" || got.AptNumber != "3B" {
		t.Fatalf("got %+v", got)
	}
	if got.LeaseStart.ISO() != "2023-01-01" || got.LeaseExpired.ISO() != "2025-01-01" {
		t.Fatalf("dates: %s / %s", got.LeaseStart, got.LeaseExpired)
	}
	if got.Balance.Cents != 1800000 || got.Rent.Cents != 100000 {
		t.Fatalf("amounts: balance=%d rent=%d", got.Balance.Cents, got.Rent.Cents)
	}
	for i, paid := range got.MonthlyPaid {
		if !paid.IsZero() {
			t.Fatalf("month %d paid = %d, want 0", i, paid.Cents)
		}
	}
}

func TestGetTenantNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetTenant(context.Background(), 999); !errors.Is(err, core.ErrTenantNotFound) {
		t.Fatalf("got %v, want ErrTenantNotFound", err)
	}
}

func TestListTenants(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		tenant := sampleTenant()
		tenant.Name = name
		if _, err := store.InsertTenant(ctx, tenant); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	tenants, err := store.ListTenants(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tenants) != 3 {
		t.Fatalf("got %d tenants, want 3", len(tenants))
	}
	if tenants[0].Name != "First" || tenants[2].Name != "Third" {
		t.Fatalf("order: %s, %s, %s", tenants[0].Name, tenants[1].Name, tenants[2].Name)
	}
}

func TestDeleteTenant(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.InsertTenant(ctx, sampleTenant())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.DeleteTenant(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteTenant(ctx, created.ID); !errors.Is(err, core.ErrTenantNotFound) {
		t.Fatalf("second delete: got %v, want ErrTenantNotFound", err)
	}
}

func TestFieldSetters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.InsertTenant(ctx, sampleTenant())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.SetName(ctx, created.ID, "Grace Jones"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := store.SetAptNumber(ctx, created.ID, "7A"); err != nil {
		t.Fatalf("set apt: %v", err)
	}
	if err := store.SetLeaseStart(ctx, created.ID, core.NewDate(2024, 6, 1)); err != nil {
		t.Fatalf("set lease start: %v", err)
	}
	if err := store.SetSecurity(ctx, created.ID, core.Money{Cents: 200000}); err != nil {
		t.Fatalf("set security: %v", err)
	}
	if err := store.SetRent(ctx, created.ID, core.Money{Cents: 120000}); err != nil {
		t.Fatalf("set rent: %v", err)
	}

	got, err := store.GetTenant(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Grace Jones" || got.AptNumber != "7A" {
		t.Fatalf("got %+v", got)
	}
	if got.LeaseStart.ISO() != "2024-06-01" {
		t.Fatalf("lease start = %s", got.LeaseStart)
	}
	if got.Security.Cents != 200000 || got.Rent.Cents != 120000 {
		t.Fatalf("amounts: %d / %d", got.Security.Cents, got.Rent.Cents)
	}
	// Editing rent must not touch the stored balance.
	if got.Balance.Cents != created.Balance.Cents {
		t.Fatalf("balance changed on edit: %d -> %d", created.Balance.Cents, got.Balance.Cents)
	}

	if err := store.SetName(ctx, 999, "nobody"); !errors.Is(err, core.ErrTenantNotFound) {
		t.Fatalf("set on missing id: got %v, want ErrTenantNotFound", err)
	}
}

func TestRecordPayment(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tenant := sampleTenant()
	tenant.Balance = core.Money{Cents: 50000}
	created, err := store.InsertTenant(ctx, tenant)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.RecordPayment(ctx, created.ID, core.Jan, core.Money{Cents: 20000})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if got.Paid(core.Jan).Cents != 20000 {
		t.Fatalf("jan paid = %d, want 20000", got.Paid(core.Jan).Cents)
	}
	if got.Balance.Cents != 30000 {
		t.Fatalf("balance = %d, want 30000", got.Balance.Cents)
	}

	// A second payment in the same month accumulates.
	got, err = store.RecordPayment(ctx, created.ID, core.Jan, core.Money{Cents: 5000})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if got.Paid(core.Jan).Cents != 25000 || got.Balance.Cents != 25000 {
		t.Fatalf("after second payment: paid=%d balance=%d", got.Paid(core.Jan).Cents, got.Balance.Cents)
	}

	if _, err := store.RecordPayment(ctx, 999, core.Jan, core.Money{Cents: 100}); !errors.Is(err, core.ErrTenantNotFound) {
		t.Fatalf("missing id: got %v, want ErrTenantNotFound", err)
	}
}

func TestIncreaseRent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.InsertTenant(ctx, sampleTenant())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.IncreaseRent(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("increase rent: %v", err)
	}
	if got.Rent.Cents != 110000 {
		t.Fatalf("rent = %d, want 110000", got.Rent.Cents)
	}
	if got.Balance.Cents != created.Balance.Cents {
		t.Fatalf("balance changed on rent increase")
	}

	got, err = store.IncreaseRent(ctx, created.ID, -10)
	if err != nil {
		t.Fatalf("decrease rent: %v", err)
	}
	if got.Rent.Cents != 99000 {
		t.Fatalf("rent = %d, want 99000", got.Rent.Cents)
	}

	if _, err := store.IncreaseRent(ctx, 999, 10); !errors.Is(err, core.ErrTenantNotFound) {
		t.Fatalf("missing id: got %v, want ErrTenantNotFound", err)
	}
}

func TestInsertTenantWithID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tenant := sampleTenant()
	tenant.ID = 42
	tenant.Balance = core.Money{Cents: -500} // caller-supplied balance is honored
	if err := store.InsertTenantWithID(ctx, tenant); err != nil {
		t.Fatalf("insert with id: %v", err)
	}

	got, err := store.GetTenant(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != 42 || got.Balance.Cents != -500 {
		t.Fatalf("got id=%d balance=%d", got.ID, got.Balance.Cents)
	}

	// Reusing an id must fail.
	if err := store.InsertTenantWithID(ctx, tenant); err == nil {
		t.Fatal("expected error on duplicate id")
	} else {
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("got %T, want PersistenceError", err)
		}
	}
}
