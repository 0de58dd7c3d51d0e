// Package worker turns the ledger event stream into a durable audit
// trail: one human-readable line per event, appended to a log file.
package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
)

// AuditWorker consumes ledger events and appends them to an audit log.
type AuditWorker struct {
	mu     sync.Mutex
	out    io.Writer
	logger *log.Logger
}

// NewAuditWorker writes audit lines to out. A nil logger falls back to
// the default configuration.
func NewAuditWorker(out io.Writer, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AuditWorker{
		out:    out,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// OpenAuditLog opens (creating parent directories if needed) the audit
// file for appending.
func OpenAuditLog(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return f, nil
}

// HandleEvent appends one audit line for the event. Returning an error
// leaves the delivery unacked so it is redelivered.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	line := formatAuditLine(event)

	w.mu.Lock()
	_, err := io.WriteString(w.out, line)
	w.mu.Unlock()
	if err != nil {
		return fmt.Errorf("append audit line: %w", err)
	}

	w.logger.DebugContext(ctx, "Audit line written",
		"event", event.Event,
		log.FieldBuilding, event.Building,
		log.FieldTenantID, event.TenantID)
	return nil
}

// formatAuditLine renders an event as a single newline-terminated line.
// Payment and rent events carry an amount; the others do not.
func formatAuditLine(event *amqp.LedgerEvent) string {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	line := fmt.Sprintf("%s | %s | building=%s tenant=%d",
		ts.UTC().Format("2006-01-02 15:04:05"),
		event.Event, event.Building, event.TenantID)

	switch event.Event {
	case amqp.EventPaymentRecorded:
		line += fmt.Sprintf(" month=%s amount=%s", event.Month, core.Money{Cents: event.AmountCents})
	case amqp.EventRentChanged:
		line += fmt.Sprintf(" rent=%s", core.Money{Cents: event.AmountCents})
	}

	return line + "\n"
}
