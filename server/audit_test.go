package server

import "testing"

func TestAuditStateRingCapacity(t *testing.T) {
	a := newAuditState(3)
	for i := 0; i < 5; i++ {
		a.append(AuditEntry{Event: "OPTIMIZE_RUN", Severity: "INFO"})
	}
	got := a.recent(10)
	if len(got) != 3 {
		t.Fatalf("recent() returned %d entries, want 3", len(got))
	}
}

func TestAuditStateAssignsIDAndTimestamp(t *testing.T) {
	a := newAuditState(10)
	a.append(AuditEntry{Event: "OPTIMIZE_RUN"})
	got := a.recent(1)
	if len(got) != 1 {
		t.Fatalf("recent() returned %d entries, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Fatal("expected append to assign an ID")
	}
	if got[0].Timestamp == "" {
		t.Fatal("expected append to assign a timestamp")
	}
}

func TestAuditStateSubscribeReceivesNewEntries(t *testing.T) {
	a := newAuditState(10)
	ch := a.subscribe()
	defer a.unsubscribe(ch)

	a.append(AuditEntry{Event: "OPTIMIZE_RUN", Severity: "INFO"})

	select {
	case e := <-ch:
		if e.Event != "OPTIMIZE_RUN" {
			t.Fatalf("got event %q, want OPTIMIZE_RUN", e.Event)
		}
	default:
		t.Fatal("expected a pushed entry on the subscriber channel")
	}
}

func TestAuditStateRecentLimitClampsToAvailable(t *testing.T) {
	a := newAuditState(10)
	a.append(AuditEntry{Event: "OPTIMIZE_RUN"})
	got := a.recent(50)
	if len(got) != 1 {
		t.Fatalf("recent(50) with one entry returned %d, want 1", len(got))
	}
}
