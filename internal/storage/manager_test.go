package storage

import (
	"context"
	"path/filepath"
	"testing"

	"rentledger/internal/core"
)

func TestOpenBuildings(t *testing.T) {
	dir := t.TempDir()
	buildings := []string{"property_1", "property_2", "property_3"}

	mgr, err := OpenBuildings(buildings, func(b string) string {
		return filepath.Join(dir, b+".db")
	})
	if err != nil {
		t.Fatalf("open buildings: %v", err)
	}
	defer mgr.Close()

	if got := mgr.Buildings(); len(got) != 3 || got[0] != "property_1" {
		t.Fatalf("Buildings() = %v", got)
	}

	// Stores are independent: a tenant in one building is invisible in another.
	first, err := mgr.Get("property_1")
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	created, err := first.InsertTenant(context.Background(), core.Tenant{
		Name:         "Solo",
		AptNumber:    "1A",
		LeaseStart:   core.NewDate(2024, 1, 1),
		LeaseExpired: core.NewDate(2025, 1, 1),
		Rent:         core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	second, err := mgr.Get("property_2")
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if _, err := second.GetTenant(context.Background(), created.ID); err == nil {
		t.Fatal("tenant leaked across buildings")
	}

	if _, err := mgr.Get("property_9"); err == nil {
		t.Fatal("expected error for unknown building")
	}
}
