// Package services implements the tenant repository: field validation,
// date normalization at the boundary, balance seeding, and orchestration
// of the per-building ledger store. Presentation layers talk to this
// package and get plain domain values back.
package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/storage"
)

// TenantForm carries tenant fields in boundary form: dates as MM-DD-YYYY
// text, amounts as decimal text.
type TenantForm struct {
	Name         string
	AptNumber    string
	LeaseStart   string
	LeaseExpired string
	Security     string
	Rent         string
}

// ListOptions narrows and orders a tenant listing.
type ListOptions struct {
	// Search keeps only tenants whose name or apartment contains the
	// string, case-insensitively.
	Search string
	// ByBalance orders the listing by balance, highest owed first.
	ByBalance bool
}

// TenantService is the repository for one building's ledger.
type TenantService struct {
	store  *storage.LedgerStore
	events *amqp.Client
	logger *log.Logger
	now    func() time.Time
}

// NewTenantService creates a repository over one building store. The
// events client may be nil; publication is then skipped.
func NewTenantService(store *storage.LedgerStore, events *amqp.Client, logger *log.Logger) *TenantService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TenantService{
		store:  store,
		events: events,
		logger: logger.WithComponent(log.ComponentTenants),
		now:    time.Now,
	}
}

// Building returns the building this repository manages.
func (s *TenantService) Building() string { return s.store.Building() }

// AddTenant validates the form, seeds the balance with rent owed for
// every whole month since lease start, and persists the new tenant.
func (s *TenantService) AddTenant(ctx context.Context, form TenantForm) (core.Tenant, error) {
	tenant, err := s.parseForm(form)
	if err != nil {
		return core.Tenant{}, err
	}

	months := core.UnpaidMonths(tenant.LeaseStart, core.DateOf(s.now()))
	tenant.Balance = core.InitialBalance(tenant.Rent, months)

	created, err := s.store.InsertTenant(ctx, tenant)
	if err != nil {
		return core.Tenant{}, err
	}

	s.logger.InfoContext(ctx, "Tenant added",
		log.FieldOperation, log.OpCreate,
		log.FieldBuilding, s.Building(),
		log.FieldTenantID, created.ID,
		log.FieldTenantName, created.Name,
		log.FieldBalance, created.Balance.Cents)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTenantAdded, s.Building(), created.ID))
	return created, nil
}

// EditTenant updates a single field. The new value is re-validated and,
// for dates, normalized before storage. The balance is never recomputed
// on edit.
func (s *TenantService) EditTenant(ctx context.Context, id int64, field core.Field, value string) (core.Tenant, error) {
	var err error
	switch field {
	case core.FieldName:
		if strings.TrimSpace(value) == "" {
			return core.Tenant{}, &core.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		err = s.store.SetName(ctx, id, value)
	case core.FieldAptNumber:
		if strings.TrimSpace(value) == "" {
			return core.Tenant{}, &core.ValidationError{Field: "apt", Reason: "must not be empty"}
		}
		err = s.store.SetAptNumber(ctx, id, value)
	case core.FieldLeaseStart:
		var d core.Date
		if d, err = core.ParseDisplayDate(value); err == nil {
			err = s.store.SetLeaseStart(ctx, id, d)
		}
	case core.FieldLeaseExpired:
		var d core.Date
		if d, err = core.ParseDisplayDate(value); err == nil {
			err = s.store.SetLeaseExpired(ctx, id, d)
		}
	case core.FieldSecurity:
		var m core.Money
		if m, err = core.ParseMoney(value); err == nil {
			if m.IsNegative() {
				return core.Tenant{}, &core.ValidationError{Field: "security", Reason: "must not be negative"}
			}
			err = s.store.SetSecurity(ctx, id, m)
		}
	case core.FieldRent:
		var m core.Money
		if m, err = core.ParseMoney(value); err == nil {
			if !m.IsPositive() {
				return core.Tenant{}, &core.ValidationError{Field: "rent", Reason: "must be positive"}
			}
			err = s.store.SetRent(ctx, id, m)
		}
	default:
		return core.Tenant{}, &core.ValidationError{Field: "field", Reason: "unknown field " + string(field)}
	}
	if err != nil {
		return core.Tenant{}, err
	}

	updated, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return core.Tenant{}, err
	}

	s.logger.InfoContext(ctx, "Tenant field updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldBuilding, s.Building(),
		log.FieldTenantID, id,
		"field", string(field))

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTenantUpdated, s.Building(), id))
	return updated, nil
}

// UpdateTenant rewrites all editable fields of a record at once, the way
// the table-view edit dialog does. Payments and balance stay untouched.
func (s *TenantService) UpdateTenant(ctx context.Context, id int64, form TenantForm) (core.Tenant, error) {
	tenant, err := s.parseForm(form)
	if err != nil {
		return core.Tenant{}, err
	}
	tenant.ID = id

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		return core.Tenant{}, err
	}

	updated, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return core.Tenant{}, err
	}

	s.logger.InfoContext(ctx, "Tenant updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldBuilding, s.Building(),
		log.FieldTenantID, id)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTenantUpdated, s.Building(), id))
	return updated, nil
}

// DeleteTenant removes a tenant. Deleting an absent id returns
// core.ErrTenantNotFound, not a silent success.
func (s *TenantService) DeleteTenant(ctx context.Context, id int64) error {
	if err := s.store.DeleteTenant(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Tenant deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldBuilding, s.Building(),
		log.FieldTenantID, id)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTenantDeleted, s.Building(), id))
	return nil
}

// IncreaseRent applies a percentage change to the tenant's rent. Percent
// may be negative for a decrease; the balance does not move.
func (s *TenantService) IncreaseRent(ctx context.Context, id int64, percent float64) (core.Tenant, error) {
	updated, err := s.store.IncreaseRent(ctx, id, percent)
	if err != nil {
		return core.Tenant{}, err
	}

	s.logger.InfoContext(ctx, "Rent changed",
		log.FieldOperation, log.OpRaise,
		log.FieldBuilding, s.Building(),
		log.FieldTenantID, id,
		log.FieldPercent, percent,
		log.FieldRent, updated.Rent.Cents)

	event := amqp.NewLedgerEvent(amqp.EventRentChanged, s.Building(), id)
	event.AmountCents = updated.Rent.Cents
	s.publish(ctx, event)
	return updated, nil
}

// RecordPayment posts a payment against one month. The amount's sign is
// unrestricted; a negative payment raises the balance. The month column
// and balance are updated in one transaction.
func (s *TenantService) RecordPayment(ctx context.Context, id int64, month, amount string) (core.Tenant, error) {
	m, err := core.ParseMonth(month)
	if err != nil {
		return core.Tenant{}, err
	}
	pay, err := core.ParseMoney(amount)
	if err != nil {
		return core.Tenant{}, err
	}

	updated, err := s.store.RecordPayment(ctx, id, m, pay)
	if err != nil {
		return core.Tenant{}, err
	}

	s.logger.InfoContext(ctx, "Payment recorded",
		log.FieldOperation, log.OpPayment,
		log.FieldBuilding, s.Building(),
		log.FieldTenantID, id,
		log.FieldMonth, string(m),
		log.FieldAmountCents, pay.Cents,
		log.FieldBalance, updated.Balance.Cents)

	event := amqp.NewLedgerEvent(amqp.EventPaymentRecorded, s.Building(), id)
	event.Month = string(m)
	event.AmountCents = pay.Cents
	s.publish(ctx, event)
	return updated, nil
}

// ListTenants returns the building's tenants, optionally filtered by a
// name/apartment substring and ordered by balance.
func (s *TenantService) ListTenants(ctx context.Context, opts ListOptions) ([]core.Tenant, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(opts.Search)); q != "" {
		filtered := tenants[:0]
		for _, t := range tenants {
			if strings.Contains(strings.ToLower(t.Name), q) ||
				strings.Contains(strings.ToLower(t.AptNumber), q) {
				filtered = append(filtered, t)
			}
		}
		tenants = filtered
	}

	if opts.ByBalance {
		sort.SliceStable(tenants, func(i, j int) bool {
			return tenants[i].Balance.Cents > tenants[j].Balance.Cents
		})
	}

	return tenants, nil
}

// parseForm converts boundary text to a validated core.Tenant without id
// or balance.
func (s *TenantService) parseForm(form TenantForm) (core.Tenant, error) {
	start, err := core.ParseDisplayDate(form.LeaseStart)
	if err != nil {
		return core.Tenant{}, &core.ValidationError{Field: "lease_start", Reason: err.Error()}
	}
	end, err := core.ParseDisplayDate(form.LeaseExpired)
	if err != nil {
		return core.Tenant{}, &core.ValidationError{Field: "lease_expired", Reason: err.Error()}
	}
	security, err := core.ParseMoney(form.Security)
	if err != nil {
		return core.Tenant{}, &core.ValidationError{Field: "security", Reason: err.Error()}
	}
	rent, err := core.ParseMoney(form.Rent)
	if err != nil {
		return core.Tenant{}, &core.ValidationError{Field: "rent", Reason: err.Error()}
	}

	tenant := core.Tenant{
		Name:         form.Name,
		AptNumber:    form.AptNumber,
		LeaseStart:   start,
		LeaseExpired: end,
		Security:     security,
		Rent:         rent,
	}
	if err := tenant.Validate(); err != nil {
		return core.Tenant{}, err
	}
	return tenant, nil
}

// publish sends a ledger event if an events client is configured. A
// publish failure never fails the ledger operation.
func (s *TenantService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldError, err,
			"event", event.Event,
			log.FieldTenantID, event.TenantID)
	}
}
