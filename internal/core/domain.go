package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTenantNotFound is returned when an operation references a tenant id
// that does not exist in the building's store.
var ErrTenantNotFound = errors.New("tenant not found")

// ValidationError reports malformed or out-of-range field input. It is
// always reported to the caller, never fatal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Month identifies one of the twelve payment columns by its three-letter
// lowercase code.
type Month string

const (
	Jan Month = "jan"
	Feb Month = "feb"
	Mar Month = "mar"
	Apr Month = "apr"
	May Month = "may"
	Jun Month = "jun"
	Jul Month = "jul"
	Aug Month = "aug"
	Sep Month = "sep"
	Oct Month = "oct"
	Nov Month = "nov"
	Dec Month = "dec"
)

// Months lists the twelve months in calendar order.
var Months = [12]Month{Jan, Feb, Mar, Apr, May, Jun, Jul, Aug, Sep, Oct, Nov, Dec}

// ParseMonth parses a case-insensitive three-letter month code.
func ParseMonth(s string) (Month, error) {
	m := Month(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Months {
		if m == known {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "month", Reason: fmt.Sprintf("unknown month %q", s)}
}

// Index returns the zero-based position of the month in calendar order,
// or -1 for an unknown code.
func (m Month) Index() int {
	for i, known := range Months {
		if m == known {
			return i
		}
	}
	return -1
}

// Field names a single updatable tenant attribute. The set is closed:
// store-level setters exist only for these, so caller input never reaches
// SQL as a column name.
type Field string

const (
	FieldName         Field = "name"
	FieldAptNumber    Field = "apt"
	FieldLeaseStart   Field = "lease_start"
	FieldLeaseExpired Field = "lease_expired"
	FieldSecurity     Field = "security"
	FieldRent         Field = "rent"
)

// UpdatableFields lists every field accepted by single-field edits.
var UpdatableFields = []Field{
	FieldName, FieldAptNumber, FieldLeaseStart, FieldLeaseExpired, FieldSecurity, FieldRent,
}

// ParseField parses a field name used by single-field edits.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range UpdatableFields {
		if f == known {
			return f, nil
		}
	}
	return "", &ValidationError{Field: "field", Reason: fmt.Sprintf("unknown field %q", s)}
}

// Tenant is one occupant record. Balance is stored, not derived: it moves
// in lockstep with MonthlyPaid through payment postings and is never
// recomputed on field edits.
type Tenant struct {
	ID           int64
	Name         string
	AptNumber    string
	LeaseStart   Date
	LeaseExpired Date
	Security     Money
	Rent         Money
	MonthlyPaid  [12]Money
	Balance      Money
}

// Paid returns the cumulative amount recorded for the given month.
func (t Tenant) Paid(m Month) Money {
	i := m.Index()
	if i < 0 {
		return Money{}
	}
	return t.MonthlyPaid[i]
}

// Validate checks the creation-time field rules: non-empty name and
// apartment, ordered lease dates, non-negative security, positive rent.
func (t Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.AptNumber) == "" {
		return &ValidationError{Field: "apt", Reason: "must not be empty"}
	}
	if err := t.LeaseStart.Validate(); err != nil {
		return &ValidationError{Field: "lease_start", Reason: err.Error()}
	}
	if err := t.LeaseExpired.Validate(); err != nil {
		return &ValidationError{Field: "lease_expired", Reason: err.Error()}
	}
	if t.LeaseExpired.Before(t.LeaseStart) {
		return &ValidationError{Field: "lease_expired", Reason: "lease expiry precedes lease start"}
	}
	if t.Security.IsNegative() {
		return &ValidationError{Field: "security", Reason: "must not be negative"}
	}
	if !t.Rent.IsPositive() {
		return &ValidationError{Field: "rent", Reason: "must be positive"}
	}
	return nil
}

func (t Tenant) String() string {
	return fmt.Sprintf("%s (Apt %s) - Balance: $%s", t.Name, t.AptNumber, t.Balance)
}
