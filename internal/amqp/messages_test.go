package amqp

import "testing"

func TestLedgerEventJSONRoundTrip(t *testing.T) {
	event := NewLedgerEvent(EventPaymentRecorded, "property_1", 7)
	event.Month = "jan"
	event.AmountCents = 150000

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Event != EventPaymentRecorded || got.Building != "property_1" || got.TenantID != 7 {
		t.Fatalf("got %+v", got)
	}
	if got.Month != "jan" || got.AmountCents != 150000 {
		t.Fatalf("payment fields lost: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not preserved")
	}
}

func TestLedgerEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
