// Package hotkey registers global keyboard shortcuts with the OS
// (C12) and dispatches press/release edges to the orchestrator.
//
// The teacher repo depends on github.com/robotn/gohook but the
// retrieval pack did not include the file that wires it up; this
// package is written directly against gohook's public Register/
// Start/Process/End surface.
package hotkey

import (
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// Edge is which edge of a chord fired.
type Edge int

const (
	Pressed Edge = iota
	Released
)

// Chord is a parsed hotkey binding: modifier key names plus exactly
// one non-modifier key.
type Chord struct {
	raw  string
	keys []string // gohook key names, modifiers first
}

// ErrChordRegistrationFailed reports a chord that failed to parse or
// register. Other chords must still be registered — one bad binding
// does not block the rest.
type ErrChordRegistrationFailed struct {
	Chord string
	Cause error
}

func (e *ErrChordRegistrationFailed) Error() string {
	return fmt.Sprintf("hotkey: register %q: %v", e.Chord, e.Cause)
}

func (e *ErrChordRegistrationFailed) Unwrap() error { return e.Cause }

// ParseChord accepts the syntax described in §3: CommandOrControl,
// Shift, Alt, and a trailing key name, joined with "+".
func ParseChord(spec string) (Chord, error) {
	parts := strings.Split(spec, "+")
	if len(parts) == 0 {
		return Chord{}, fmt.Errorf("hotkey: empty chord")
	}

	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch strings.ToLower(p) {
		case "commandorcontrol", "cmdorctrl":
			keys = append(keys, platformPrimaryModifier)
		case "shift":
			keys = append(keys, "shift")
		case "alt", "option":
			keys = append(keys, "alt")
		case "":
			return Chord{}, fmt.Errorf("hotkey: empty key segment in %q", spec)
		default:
			keys = append(keys, strings.ToLower(p))
		}
	}
	return Chord{raw: spec, keys: keys}, nil
}

// Config holds the three §3 hotkey slots.
type Config struct {
	PushToTalk string
	Cancel     string
	ToggleMode string // optional; empty means unset
}

// Dispatcher owns the registered OS-level chords and forwards edges
// to callers.
type Dispatcher struct {
	mu       sync.Mutex
	running  bool
	evChan   chan hook.Event
	doneChan chan bool
	unbinds  []func()
}

// New creates an unstarted Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Register installs cfg's chords. Returns every chord that failed to
// register; callers that get a non-empty slice back should still
// proceed — the remaining chords were registered.
func (d *Dispatcher) Register(cfg Config, onPTT func(Edge), onCancel func(), onToggle func()) []error {
	var errs []error

	if ptt, err := ParseChord(cfg.PushToTalk); err != nil {
		errs = append(errs, &ErrChordRegistrationFailed{Chord: cfg.PushToTalk, Cause: err})
	} else if err := d.bindEdge(ptt, onPTT); err != nil {
		errs = append(errs, &ErrChordRegistrationFailed{Chord: cfg.PushToTalk, Cause: err})
	}

	if cancel, err := ParseChord(cfg.Cancel); err != nil {
		errs = append(errs, &ErrChordRegistrationFailed{Chord: cfg.Cancel, Cause: err})
	} else if err := d.bindPress(cancel, onCancel); err != nil {
		errs = append(errs, &ErrChordRegistrationFailed{Chord: cfg.Cancel, Cause: err})
	}

	if cfg.ToggleMode != "" && onToggle != nil {
		if toggle, err := ParseChord(cfg.ToggleMode); err != nil {
			errs = append(errs, &ErrChordRegistrationFailed{Chord: cfg.ToggleMode, Cause: err})
		} else if err := d.bindPress(toggle, onToggle); err != nil {
			errs = append(errs, &ErrChordRegistrationFailed{Chord: cfg.ToggleMode, Cause: err})
		}
	}

	return errs
}

// bindPress registers a chord's Pressed edge only (used by Cancel and
// ToggleMode, which fire on Pressed only per §4.12).
func (d *Dispatcher) bindPress(c Chord, cb func()) error {
	if cb == nil {
		return nil
	}
	hook.Register(hook.KeyDown, c.keys, func(hook.Event) {
		cb()
	})
	d.mu.Lock()
	d.unbinds = append(d.unbinds, func() { hook.Unregister(hook.KeyDown, c.keys) })
	d.mu.Unlock()
	return nil
}

// bindEdge registers both the Pressed and Released edges of a chord,
// used by push-to-talk.
func (d *Dispatcher) bindEdge(c Chord, cb func(Edge)) error {
	if cb == nil {
		return nil
	}
	hook.Register(hook.KeyDown, c.keys, func(hook.Event) {
		cb(Pressed)
	})
	hook.Register(hook.KeyUp, c.keys, func(hook.Event) {
		cb(Released)
	})
	d.mu.Lock()
	d.unbinds = append(d.unbinds,
		func() { hook.Unregister(hook.KeyDown, c.keys) },
		func() { hook.Unregister(hook.KeyUp, c.keys) },
	)
	d.mu.Unlock()
	return nil
}

// Start begins listening for OS key events on a dedicated goroutine.
// It is idempotent: a second Start is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.evChan = hook.Start()
	d.doneChan = hook.Process(d.evChan)
	d.running = true
}

// Stop unregisters every chord and ends the OS listener. Idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	for _, unbind := range d.unbinds {
		unbind()
	}
	d.unbinds = nil
	hook.End()
	d.running = false
}
