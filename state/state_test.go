package state

import (
	"testing"
	"time"
)

func TestInitialStateIsIdle(t *testing.T) {
	m := New()
	if got := m.Current().Kind; got != Idle {
		t.Fatalf("got %s, want idle", got)
	}
}

func TestAllowedEdges(t *testing.T) {
	cases := []struct {
		from, to Kind
		ok       bool
	}{
		{Idle, Connecting, true},
		{Idle, Recording, false},
		{Connecting, Recording, true},
		{Connecting, Error, true},
		{Connecting, Idle, true},
		{Recording, Recording, true},
		{Recording, Processing, true},
		{Recording, Idle, true},
		{Recording, Error, true},
		{Processing, Injecting, true},
		{Processing, Idle, true},
		{Processing, Error, true},
		{Processing, Recording, false},
		{Injecting, Idle, true},
		{Injecting, Error, true},
		{Injecting, Connecting, false},
		{Error, Idle, true},
		{Error, Connecting, false},
	}
	for _, c := range cases {
		if got := allowed(c.from, c.to); got != c.ok {
			t.Errorf("allowed(%s, %s) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestTransitionRejectsInvalidEdgeAndLeavesStateUnchanged(t *testing.T) {
	m := New()
	err := m.Transition(AppState{Kind: Recording})
	if err == nil {
		t.Fatal("expected InvalidTransition")
	}
	var it *InvalidTransition
	if ite, ok := err.(*InvalidTransition); ok {
		it = ite
	}
	if it == nil {
		t.Fatalf("expected *InvalidTransition, got %T", err)
	}
	if m.Current().Kind != Idle {
		t.Fatalf("state changed on rejected transition: %s", m.Current().Kind)
	}
}

func TestTransitionAcceptsValidEdge(t *testing.T) {
	m := New()
	if err := m.Transition(AppState{Kind: Connecting}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if m.Current().Kind != Connecting {
		t.Fatalf("got %s, want connecting", m.Current().Kind)
	}
}

func TestForceSetBypassesValidation(t *testing.T) {
	m := New()
	m.ForceSet(AppState{Kind: Injecting})
	if m.Current().Kind != Injecting {
		t.Fatalf("got %s, want injecting", m.Current().Kind)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	m := New()
	m.ForceSet(AppState{Kind: Error, ErrorMessage: "boom"})
	m.Reset()
	if got := m.Current(); got.Kind != Idle {
		t.Fatalf("got %+v, want idle", got)
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	m := New()
	ch, unsubscribe := m.Subscribe(4)
	defer unsubscribe()

	if err := m.Transition(AppState{Kind: Connecting}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	select {
	case s := <-ch:
		if s.Kind != Connecting {
			t.Fatalf("got %s, want connecting", s.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published state")
	}
}

func TestSubscribeFullChannelSkipsDeliveryWithoutBlocking(t *testing.T) {
	m := New()
	ch, unsubscribe := m.Subscribe(1)
	defer unsubscribe()

	if err := m.Transition(AppState{Kind: Connecting}); err != nil {
		t.Fatalf("transition 1: %v", err)
	}
	// Channel now holds one undelivered value; a second transition must
	// not block even though nothing has drained it.
	if err := m.Transition(AppState{Kind: Recording}); err != nil {
		t.Fatalf("transition 2: %v", err)
	}

	got := <-ch
	if got.Kind != Connecting {
		t.Fatalf("got %s, want the first published value (connecting)", got.Kind)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := New()
	ch, unsubscribe := m.Subscribe(4)
	unsubscribe()

	if err := m.Transition(AppState{Kind: Connecting}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestProcessingWatchdogForcesIdleAndFiresCallback(t *testing.T) {
	m := New()
	fired := make(chan struct{}, 1)
	m.SetProcessingTimeout(20*time.Millisecond, func() { fired <- struct{}{} })

	if err := m.Transition(AppState{Kind: Connecting}); err != nil {
		t.Fatalf("Transition to connecting: %v", err)
	}
	if err := m.Transition(AppState{Kind: Recording}); err != nil {
		t.Fatalf("Transition to recording: %v", err)
	}
	if err := m.Transition(AppState{Kind: Processing}); err != nil {
		t.Fatalf("Transition to processing: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("watchdog did not fire")
	}

	if got := m.Current().Kind; got != Idle {
		t.Fatalf("got %s, want idle after watchdog", got)
	}
}

func TestProcessingWatchdogDoesNotFireAfterLeavingProcessing(t *testing.T) {
	m := New()
	fired := make(chan struct{}, 1)
	m.SetProcessingTimeout(20*time.Millisecond, func() { fired <- struct{}{} })

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
	}
	must(m.Transition(AppState{Kind: Connecting}))
	must(m.Transition(AppState{Kind: Recording}))
	must(m.Transition(AppState{Kind: Processing}))
	must(m.Transition(AppState{Kind: Injecting}))
	must(m.Transition(AppState{Kind: Idle}))

	select {
	case <-fired:
		t.Fatal("watchdog fired after Processing was already left")
	case <-time.After(60 * time.Millisecond):
	}
}
