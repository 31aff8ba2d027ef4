package events

import "testing"

func TestNilSinkDrops(t *testing.T) {
	var s Sink
	s.Emit(StateEvent{State: StateIdle})
	s.Logf(SeverityInfo, "nothing %d", 1)
}

func TestQueueDeliversInOrder(t *testing.T) {
	q := NewQueue(8)
	sink := q.Sink()

	go func() {
		sink.Emit(StateEvent{State: StateValidating})
		sink.Progress(PhaseAdding, 100, 250, 100)
		sink.Logf(SeverityWarn, "slow %s", "down")
		q.Close()
	}()

	var got []Event
	for e := range q.Events() {
		got = append(got, e)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(got))
	}
	if st, ok := got[0].(StateEvent); !ok || st.State != StateValidating {
		t.Errorf("Expected Validating state first, got %#v", got[0])
	}
	if p, ok := got[1].(ProgressEvent); !ok || p.Added != 100 || p.Total != 250 {
		t.Errorf("Expected adding progress, got %#v", got[1])
	}
	if l, ok := got[2].(LogEvent); !ok || l.Message != "slow down" || l.Severity != SeverityWarn {
		t.Errorf("Expected warn log, got %#v", got[2])
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityWarn.String() != "warn" || SeverityInfo.String() != "info" {
		t.Errorf("unexpected severity names: %s %s", SeverityWarn, SeverityInfo)
	}
}
