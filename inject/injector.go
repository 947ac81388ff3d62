// Package inject implements the input injector (C14): typing text
// via synthetic keyboard events, or routing it through the clipboard
// with a synthesized paste chord.
package inject

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/wailsapp/wails/v3/pkg/application"

	"dictate/clipboard"
)

// Strategy selects how injected text reaches the focused window.
type Strategy int

const (
	Auto Strategy = iota
	Keyboard
	Clipboard
	ClipboardOnly
)

// ErrPermissionDenied is returned when the platform denies input
// synthesis (e.g. missing macOS Accessibility permission).
type ErrPermissionDenied struct{ Cause error }

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("inject: permission denied: %v", e.Cause)
}
func (e *ErrPermissionDenied) Unwrap() error { return e.Cause }

// ErrClipboardFailed wraps a clipboard read or write failure.
type ErrClipboardFailed struct{ Cause error }

func (e *ErrClipboardFailed) Error() string {
	return fmt.Sprintf("inject: clipboard failed: %v", e.Cause)
}
func (e *ErrClipboardFailed) Unwrap() error { return e.Cause }

// ErrInjectionFailed wraps any other injection failure.
type ErrInjectionFailed struct{ Cause error }

func (e *ErrInjectionFailed) Error() string {
	return fmt.Sprintf("inject: failed: %v", e.Cause)
}
func (e *ErrInjectionFailed) Unwrap() error { return e.Cause }

// Config is the immutable per-session injection configuration (§3
// SessionConfig).
type Config struct {
	Strategy            Strategy
	AutoThreshold       int // codepoint count; default 20
	PasteDelayMS        int // default 100
	PreInjectionDelayMS int // default 0
}

// Injector executes the configured strategy against the OS.
type Injector struct {
	app *application.App
	cfg Config

	getClipboard func(*application.App) (string, error)
	setClipboard func(*application.App, string) error
	paste        func() error
}

// New creates an Injector bound to the running Wails app (needed by
// the clipboard package's platform hooks) and a session's Config.
func New(app *application.App, cfg Config) *Injector {
	if cfg.AutoThreshold <= 0 {
		cfg.AutoThreshold = 20
	}
	if cfg.PasteDelayMS <= 0 {
		cfg.PasteDelayMS = 100
	}
	return &Injector{
		app:          app,
		cfg:          cfg,
		getClipboard: clipboard.GetText,
		setClipboard: clipboard.SetText,
		paste:        synthesizePaste,
	}
}

// Inject delivers text using the configured (or auto-resolved)
// strategy.
func (in *Injector) Inject(text string) error {
	strategy := in.cfg.Strategy
	if strategy == Auto {
		if utf8.RuneCountInString(text) < in.cfg.AutoThreshold {
			strategy = Keyboard
		} else {
			strategy = Clipboard
		}
	}

	switch strategy {
	case Keyboard:
		return in.injectKeyboard(text)
	case Clipboard:
		return in.injectClipboard(text)
	case ClipboardOnly:
		return in.injectClipboardOnly(text)
	default:
		return &ErrInjectionFailed{Cause: fmt.Errorf("unknown strategy %d", strategy)}
	}
}

func (in *Injector) injectKeyboard(text string) error {
	if err := typeText(text); err != nil {
		return &ErrPermissionDenied{Cause: err}
	}
	return nil
}

// injectClipboard saves the current clipboard, writes text, pastes,
// and restores the saved content — guaranteed even if the paste
// synthesis step fails.
func (in *Injector) injectClipboard(text string) error {
	saved, err := in.getClipboard(in.app)
	if err != nil {
		return &ErrClipboardFailed{Cause: err}
	}

	restore := func() {
		in.setClipboard(in.app, saved)
	}

	if err := in.setClipboard(in.app, text); err != nil {
		restore()
		return &ErrClipboardFailed{Cause: err}
	}

	if in.cfg.PreInjectionDelayMS > 0 {
		time.Sleep(time.Duration(in.cfg.PreInjectionDelayMS) * time.Millisecond)
	}

	pasteErr := in.paste()

	time.Sleep(time.Duration(in.cfg.PasteDelayMS) * time.Millisecond)
	restore()

	if pasteErr != nil {
		return &ErrPermissionDenied{Cause: pasteErr}
	}
	return nil
}

func (in *Injector) injectClipboardOnly(text string) error {
	if err := in.setClipboard(in.app, text); err != nil {
		return &ErrClipboardFailed{Cause: err}
	}
	return nil
}
