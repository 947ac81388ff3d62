// Package orchestrator implements the orchestrator session (C15): it
// binds the transcription session (C10), the input injector (C14),
// and the state machine (C11) into the end-to-end recording flow
// driven by hotkeys.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"dictate/audiopipeline"
	"dictate/inject"
	"dictate/state"
	"dictate/transcribe"
	"dictate/transport"
	"dictate/window"
)

// UIEvent names mirror the shell's `app:*`/`transcript:*`/`session:*`
// event contract (§6); Emit is called once per occurrence in order.
type UIEvent struct {
	Name         string
	State        string
	SubState     string
	PartialText  string
	Confidence   float64
	ErrorMessage string
}

// Config bundles what one run needs: the recognizer connection
// parameters, the injection behavior, and the pipeline buffer size.
type Config struct {
	APIKey          string
	Transport       transport.Config
	Injection       inject.Config
	AutoInject      bool
	PipelineBuffer  int
}

// Injector is the subset of *inject.Injector the orchestrator drives;
// narrowing to an interface lets tests substitute a fake rather than
// exercising real OS input synthesis or the real clipboard.
type Injector interface {
	Inject(text string) error
}

// WindowProbe is the subset of *window.Prober the orchestrator
// consults; narrowed to an interface for the same testing reason as
// Injector.
type WindowProbe interface {
	Current() *window.Info
}

// Orchestrator owns one FSM and runs sessions against it.
type Orchestrator struct {
	machine  *state.Machine
	injector Injector
	probe    WindowProbe
	emit     func(UIEvent)

	mu            sync.Mutex
	session       *transcribe.Session
	pipeline      *audiopipeline.Pipeline
	lastCommitted string
}

// New creates an Orchestrator. emit is called for every UI event;
// injector performs C14's strategies when a session completes with
// committed text and auto_inject is true.
func New(machine *state.Machine, injector Injector, emit func(UIEvent)) *Orchestrator {
	return &Orchestrator{machine: machine, injector: injector, emit: emit}
}

// SetWindowProbe attaches a foreground-window probe consulted (for
// logging only, per C13's heuristic, non-gating nature) just before
// injection. Optional: a nil probe skips the check.
func (o *Orchestrator) SetWindowProbe(p WindowProbe) {
	o.probe = p
}

// Run binds a fresh transcription session to the FSM and drives it
// through the Connecting -> Recording -> Processing -> Injecting flow
// described in §4.15. pipeline must already be started for the
// session's input device, and outbound is the chunk channel its Start
// returned.
func (o *Orchestrator) Run(ctx context.Context, cfg Config, pipeline *audiopipeline.Pipeline, outbound <-chan string) error {
	o.mu.Lock()
	o.pipeline = pipeline
	o.lastCommitted = ""
	o.mu.Unlock()

	if err := o.machine.Transition(state.AppState{Kind: state.Connecting}); err != nil {
		return err
	}
	o.emitNamed("app:connecting")

	sess := transcribe.New(pipeline, o.onEvent(cfg))
	o.mu.Lock()
	o.session = sess
	o.mu.Unlock()

	if err := sess.Start(ctx, cfg.APIKey, cfg.Transport, outbound); err != nil {
		o.machine.ForceSet(state.AppState{Kind: state.Error, ErrorMessage: err.Error()})
		o.emit(UIEvent{Name: "app:error", ErrorMessage: err.Error()})
		return err
	}

	return nil
}

// Stop calls stop() on the active transcription session; the cascade
// it triggers drives the remaining FSM transitions via onEvent.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Stop()
}

// Cancel aborts the active session and force-transitions to Idle,
// regardless of what state the FSM is currently in.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()

	if sess != nil {
		if err := sess.Stop(); err != nil {
			slog.Warn("orchestrator: session stop during cancel", "error", err)
		}
	}
	o.machine.ForceSet(state.AppState{Kind: state.Idle})
	o.emitNamed("app:idle")
}

func (o *Orchestrator) emitNamed(name string) {
	o.emit(UIEvent{Name: name, State: o.machine.Current().Kind.String()})
}

// onEvent builds the TranscriptEvent callback driving §4.15's
// transition table.
func (o *Orchestrator) onEvent(cfg Config) func(transcribe.TranscriptEvent) {
	return func(ev transcribe.TranscriptEvent) {
		switch ev.Kind {
		case transcribe.SessionStarted:
			if err := o.machine.Transition(state.AppState{Kind: state.Recording, Sub: state.Listening}); err != nil {
				slog.Warn("orchestrator: session_started transition", "error", err)
				return
			}
			o.emit(UIEvent{Name: "app:recording"})
			o.emit(UIEvent{Name: "session:event", State: "session_started"})

		case transcribe.Partial:
			if o.machine.Current().Kind != state.Recording {
				return
			}
			o.machine.Transition(state.AppState{Kind: state.Recording, Sub: state.Transcribing, PartialText: ev.Text})
			o.emit(UIEvent{Name: "transcript:partial", PartialText: ev.Text})

		case transcribe.Committed:
			o.mu.Lock()
			o.lastCommitted = ev.Text
			o.mu.Unlock()
			o.emit(UIEvent{Name: "session:event", State: "committed_transcript"})

		case transcribe.EventError:
			o.machine.ForceSet(state.AppState{Kind: state.Error, ErrorMessage: ev.Message})
			o.emit(UIEvent{Name: "app:error", ErrorMessage: ev.Message})
			o.Cancel()

		case transcribe.Closed:
			o.handleClosed(cfg)
		}
	}
}

func (o *Orchestrator) handleClosed(cfg Config) {
	if o.machine.Current().Kind == state.Recording {
		if err := o.machine.Transition(state.AppState{Kind: state.Processing}); err != nil {
			slog.Warn("orchestrator: closed->processing transition", "error", err)
			return
		}
		o.emit(UIEvent{Name: "app:processing"})
	}

	if o.machine.Current().Kind != state.Processing {
		return
	}

	o.mu.Lock()
	text := o.lastCommitted
	o.mu.Unlock()

	if text == "" || !cfg.AutoInject {
		o.machine.Transition(state.AppState{Kind: state.Idle})
		o.emitNamed("app:idle")
		return
	}

	if err := o.machine.Transition(state.AppState{Kind: state.Injecting}); err != nil {
		slog.Warn("orchestrator: processing->injecting transition", "error", err)
		return
	}
	o.emit(UIEvent{Name: "app:injecting"})

	if o.probe != nil {
		if info := o.probe.Current(); info != nil && !window.IsTextInputContext(info) {
			slog.Warn("orchestrator: injecting into a window outside the known text-input list", "app", info.AppName)
		}
	}

	name := "injected"
	if cfg.Injection.Strategy == inject.ClipboardOnly {
		name = "copied"
	}
	if err := o.injector.Inject(text); err != nil {
		o.machine.ForceSet(state.AppState{Kind: state.Error, ErrorMessage: err.Error()})
		o.emit(UIEvent{Name: "app:error", ErrorMessage: err.Error()})
		return
	}

	o.machine.Transition(state.AppState{Kind: state.Idle})
	o.emitNamed(name)
}
