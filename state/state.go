// Package state implements the single-owner application state
// machine (C11): one AppState per process, held behind a
// swap-published atomic pointer so readers get a lock-free,
// consistent snapshot.
package state

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Kind enumerates the AppState tags.
type Kind int

const (
	Idle Kind = iota
	Connecting
	Recording
	Processing
	Injecting
	Error
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	case Injecting:
		return "injecting"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// RecordingSub enumerates Recording's sub-states.
type RecordingSub int

const (
	Listening RecordingSub = iota
	Transcribing
)

// AppState is an immutable snapshot of the FSM. A fresh value is
// published on every transition; never mutate one in place.
type AppState struct {
	Kind         Kind
	Sub          RecordingSub // meaningful only when Kind == Recording
	PartialText  string       // meaningful only when Sub == Transcribing
	Confidence   float64      // meaningful only when Sub == Transcribing
	ErrorMessage string       // meaningful only when Kind == Error
}

func idleState() AppState { return AppState{Kind: Idle} }

// InvalidTransition is returned by Transition when the requested edge
// is not in the allowed-edges table. It is caller-recoverable: it
// does not itself move the FSM to Error.
type InvalidTransition struct {
	From Kind
	To   Kind
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("state: invalid transition %s -> %s", e.From, e.To)
}

// listener is one subscriber's bounded delivery channel. Listeners
// hold only the receive side; the Machine holds the send side, so
// there is no reference cycle. A listener whose channel send always
// fails (receiver dropped, buffer never drained) is never proactively
// detected — Go gives no drop signal for an abandoned receiver, so GC
// of truly dead listeners happens via Unsubscribe, not automatically.
type listener struct {
	id int64
	ch chan AppState
}

// Machine is the single owner of AppState.
type Machine struct {
	current atomic.Pointer[AppState]

	mu        sync.Mutex // serializes transitions and listener bookkeeping
	listeners []*listener
	nextID    int64

	processingTimeout time.Duration
	watchdogTimer     *time.Timer
	onTimeout         func()
}

// New creates a Machine starting in Idle.
func New() *Machine {
	m := &Machine{}
	s := idleState()
	m.current.Store(&s)
	return m
}

// Current is a lock-free read of the latest published snapshot.
func (m *Machine) Current() AppState {
	return *m.current.Load()
}

// Transition validates the edge from the current state's Kind to
// next.Kind against the allowed-edges table and publishes next on
// success.
func (m *Machine) Transition(next AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.Current().Kind
	if !allowed(from, next.Kind) {
		return &InvalidTransition{From: from, To: next.Kind}
	}
	m.publishLocked(next)
	return nil
}

// ForceSet bypasses edge validation, for error-recovery paths.
func (m *Machine) ForceSet(next AppState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishLocked(next)
}

// Reset is ForceSet(Idle).
func (m *Machine) Reset() {
	m.ForceSet(idleState())
}

func (m *Machine) publishLocked(next AppState) {
	s := next
	m.current.Store(&s)

	if next.Kind == Processing {
		m.armWatchdogLocked()
	} else {
		m.disarmWatchdogLocked()
	}

	m.broadcastLocked(next)
}

// allowed reports whether the §4.11 edge table permits from -> to.
func allowed(from, to Kind) bool {
	switch from {
	case Idle:
		return to == Connecting
	case Connecting:
		return to == Recording || to == Error || to == Idle
	case Recording:
		return to == Recording || to == Processing || to == Idle || to == Error
	case Processing:
		return to == Injecting || to == Idle || to == Error
	case Injecting:
		return to == Idle || to == Error
	case Error:
		return to == Idle
	default:
		return false
	}
}

// Subscribe registers a new listener with a bounded, best-effort
// delivery channel.
func (m *Machine) Subscribe(capacity int) (<-chan AppState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if capacity <= 0 {
		capacity = 8
	}
	m.nextID++
	l := &listener{id: m.nextID, ch: make(chan AppState, capacity)}
	m.listeners = append(m.listeners, l)

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.removeListenerLocked(l.id)
	}
	return l.ch, unsubscribe
}

func (m *Machine) removeListenerLocked(id int64) {
	for i, l := range m.listeners {
		if l.id == id {
			close(l.ch)
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// broadcastLocked delivers next to every listener on a best-effort
// basis: a full channel skips that delivery rather than blocking the
// transition.
func (m *Machine) broadcastLocked(next AppState) {
	for _, l := range m.listeners {
		select {
		case l.ch <- next:
		default:
		}
	}
}

// SetProcessingTimeout configures the Processing watchdog duration
// (default 30s) and the side-effect callback invoked when it fires.
// Must be called before any transition into Processing.
func (m *Machine) SetProcessingTimeout(d time.Duration, onTimeout func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingTimeout = d
	m.onTimeout = onTimeout
}

func (m *Machine) armWatchdogLocked() {
	m.disarmWatchdogLocked()
	d := m.processingTimeout
	if d <= 0 {
		d = 30 * time.Second
	}
	m.watchdogTimer = time.AfterFunc(d, func() {
		m.mu.Lock()
		if m.Current().Kind != Processing {
			m.mu.Unlock()
			return
		}
		m.publishLocked(idleState())
		cb := m.onTimeout
		m.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

func (m *Machine) disarmWatchdogLocked() {
	if m.watchdogTimer != nil {
		m.watchdogTimer.Stop()
		m.watchdogTimer = nil
	}
}
