package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
)

// The interchange format is deliberately plain: comma-separated, no
// quoting or escaping, one header row, ISO dates, two-decimal amounts.
// Row-supplied id and balance are stored as-is so that an exported file
// re-imports to an equivalent tenant set.
const csvHeader = "ID,Name,Apt#,LeaseStart,LeaseExpired,Security,Rent,Balance"

// RowError attributes an import failure to one data row (1-based, not
// counting the header).
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ImportReport summarizes a CSV import. Failed rows are recorded
// individually; the import does not abort on the first bad row.
type ImportReport struct {
	Imported int
	Failed   []RowError
}

// Ok reports whether every data row was imported.
func (r ImportReport) Ok() bool { return len(r.Failed) == 0 }

// ExportCSV writes the building's tenants in the interchange format,
// one newline-terminated line per tenant.
func (s *TenantService) ExportCSV(ctx context.Context, w io.Writer) error {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s\n", csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tenants {
		_, err := fmt.Fprintf(w, "%d,%s,%s,%s,%s,%s,%s,%s\n",
			t.ID, t.Name, t.AptNumber,
			t.LeaseStart.ISO(), t.LeaseExpired.ISO(),
			t.Security, t.Rent, t.Balance)
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Tenants exported",
		log.FieldOperation, log.OpExport,
		log.FieldBuilding, s.Building(),
		log.FieldCount, len(tenants))
	return nil
}

// ImportCSV reads tenants in the interchange format. The header row is
// skipped; each data row maps to one insert with the row's id and balance
// taken as given. Malformed or rejected rows are recorded in the report
// with their row index and the rest of the file is still processed.
func (s *TenantService) ImportCSV(ctx context.Context, r io.Reader) (ImportReport, error) {
	var report ImportReport

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return report, fmt.Errorf("read csv header: %w", err)
		}
		return report, nil // empty input
	}

	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row++

		tenant, err := parseCSVRow(line)
		if err != nil {
			report.Failed = append(report.Failed, RowError{Row: row, Err: err})
			continue
		}

		if err := s.store.InsertTenantWithID(ctx, tenant); err != nil {
			report.Failed = append(report.Failed, RowError{Row: row, Err: err})
			continue
		}
		report.Imported++

		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTenantAdded, s.Building(), tenant.ID))
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read csv: %w", err)
	}

	s.logger.InfoContext(ctx, "Tenants imported",
		log.FieldOperation, log.OpImport,
		log.FieldBuilding, s.Building(),
		log.FieldCount, report.Imported,
		"failed", len(report.Failed))
	return report, nil
}

func parseCSVRow(line string) (core.Tenant, error) {
	tokens := strings.Split(line, ",")
	if len(tokens) < 8 {
		return core.Tenant{}, fmt.Errorf("want 8 columns, got %d", len(tokens))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(tokens[0]), 10, 64)
	if err != nil {
		return core.Tenant{}, fmt.Errorf("id: %w", err)
	}
	start, err := core.ParseISODate(tokens[3])
	if err != nil {
		return core.Tenant{}, fmt.Errorf("lease start: %w", err)
	}
	end, err := core.ParseISODate(tokens[4])
	if err != nil {
		return core.Tenant{}, fmt.Errorf("lease expired: %w", err)
	}
	security, err := core.ParseMoney(tokens[5])
	if err != nil {
		return core.Tenant{}, fmt.Errorf("security: %w", err)
	}
	rent, err := core.ParseMoney(tokens[6])
	if err != nil {
		return core.Tenant{}, fmt.Errorf("rent: %w", err)
	}
	balance, err := core.ParseMoney(tokens[7])
	if err != nil {
		return core.Tenant{}, fmt.Errorf("balance: %w", err)
	}

	return core.Tenant{
		ID:           id,
		Name:         tokens[1],
		AptNumber:    tokens[2],
		LeaseStart:   start,
		LeaseExpired: end,
		Security:     security,
		Rent:         rent,
		Balance:      balance,
	}, nil
}
