// Command dictate boots the tray-only application shell: it has no
// window and no embedded frontend (those belong to the out-of-scope
// webview UI), existing purely to keep a Wails v3 event loop alive so
// the hotkey dispatcher, orchestrator, and state machine can run and
// emit the app:*/transcript:*/session:* events documented in the
// configuration collaborator contract.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v3/pkg/application"

	"dictate/audiocapture"
	"dictate/audiopipeline"
	"dictate/config"
	"dictate/hotkey"
	"dictate/inject"
	"dictate/orchestrator"
	"dictate/state"
	"dictate/transport"
	"dictate/window"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Service is the Wails-bound application service. It owns every
// long-lived collaborator and wires hotkey edges into orchestrator
// session runs.
type Service struct {
	app *application.App
	cfg *config.Config

	machine    *state.Machine
	enumerator *audiocapture.Enumerator
	dispatcher *hotkey.Dispatcher
	injector   *inject.Injector
	prober     *window.Prober
	orch       *orchestrator.Orchestrator

	recording context.CancelFunc
}

// NewService constructs an un-initialized service; call Init once the
// Wails app exists.
func NewService() *Service {
	return &Service{}
}

// Init loads configuration, opens the miniaudio context, and wires
// the hotkey dispatcher to the orchestrator.
func (s *Service) Init(app *application.App) error {
	s.app = app

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s.cfg = cfg

	enumerator, err := audiocapture.NewEnumerator()
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	s.enumerator = enumerator

	s.machine = state.New()
	s.machine.SetProcessingTimeout(processingTimeout(cfg), func() {
		s.emit(orchestrator.UIEvent{Name: "app:error", ErrorMessage: "processing timed out"})
	})

	s.injector = inject.New(app, injectConfig(cfg))
	s.prober = window.NewProber()

	s.orch = orchestrator.New(s.machine, s.injector, s.emit)
	s.orch.SetWindowProbe(s.prober)

	s.dispatcher = hotkey.New()
	errs := s.dispatcher.Register(hotkey.Config{
		PushToTalk: cfg.Hotkeys.PushToTalk,
		Cancel:     cfg.Hotkeys.Cancel,
		ToggleMode: cfg.Hotkeys.ToggleMode,
	}, s.onPushToTalk, s.onCancel, s.onToggle)
	for _, e := range errs {
		slog.Error("hotkey registration failed", "error", e)
	}
	s.dispatcher.Start()

	return nil
}

// Shutdown releases every long-lived resource. Safe to call once.
func (s *Service) Shutdown() {
	if s.dispatcher != nil {
		s.dispatcher.Stop()
	}
	if s.orch != nil {
		if err := s.orch.Stop(); err != nil {
			slog.Warn("orchestrator stop during shutdown", "error", err)
		}
	}
	if s.enumerator != nil {
		if err := s.enumerator.Close(); err != nil {
			slog.Warn("close audio context", "error", err)
		}
	}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string { return version }

func (s *Service) emit(ev orchestrator.UIEvent) {
	if s.app == nil {
		return
	}
	s.app.Event.Emit(ev.Name, ev)
}

func (s *Service) onPushToTalk(edge hotkey.Edge) {
	switch edge {
	case hotkey.Pressed:
		s.startRecording()
	case hotkey.Released:
		s.stopRecording()
	}
}

func (s *Service) onCancel() {
	s.orch.Cancel()
}

// onToggle implements the optional toggle-mode chord: press once to
// start, press again to stop, as an alternative to holding push-to-talk.
func (s *Service) onToggle() {
	if s.machine.Current().Kind == state.Idle {
		s.startRecording()
		return
	}
	s.stopRecording()
}

func (s *Service) startRecording() {
	if s.machine.Current().Kind != state.Idle {
		slog.Warn("push-to-talk pressed while not idle", "state", s.machine.Current().Kind)
		return
	}

	device, err := s.inputDevice()
	if err != nil {
		slog.Error("resolve input device", "error", err)
		s.emit(orchestrator.UIEvent{Name: "app:error", ErrorMessage: err.Error()})
		return
	}

	streamCfg, err := s.enumerator.Probe(device.ID)
	if err != nil {
		slog.Error("probe input device", "error", err)
		s.emit(orchestrator.UIEvent{Name: "app:error", ErrorMessage: err.Error()})
		return
	}
	inputRate := streamCfg.SupportedRates[0]

	localID := uuid.NewString()
	slog.Info("recording started", "local_id", localID, "device", device.ID, "input_rate", inputRate)

	src := audiocapture.NewSource(s.enumerator.Context(), device.ID, inputRate, 1)
	pipeline := audiopipeline.New(s.enumerator.Context(), device.ID, inputRate, 1)

	outbound, err := pipeline.Start(src, 16)
	if err != nil {
		slog.Error("start audio pipeline", "error", err)
		s.emit(orchestrator.UIEvent{Name: "app:error", ErrorMessage: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.recording = cancel

	cfg := orchestrator.Config{
		APIKey:         s.cfg.API.APIKey,
		Transport:      transportConfig(s.cfg, pipeline.OutputSampleRate()),
		Injection:      injectConfig(s.cfg),
		AutoInject:     s.cfg.Behavior.AutoInject,
		PipelineBuffer: 16,
	}

	// Run dials the recognizer and blocks until the session ends; it
	// must not run on this goroutine, which is the hotkey dispatcher's
	// callback thread (§9) and must stay free to deliver Cancel while
	// still connecting.
	go func() {
		if err := s.orch.Run(ctx, cfg, pipeline, outbound); err != nil {
			slog.Error("start session", "error", err)
		}
	}()
}

func (s *Service) stopRecording() {
	if s.recording != nil {
		s.recording()
		s.recording = nil
	}
	if err := s.orch.Stop(); err != nil {
		slog.Warn("stop session", "error", err)
	}
}

func (s *Service) inputDevice() (audiocapture.Device, error) {
	if s.cfg.Audio.InputDeviceID != "" {
		return audiocapture.Device{ID: s.cfg.Audio.InputDeviceID}, nil
	}
	return s.enumerator.DefaultInput()
}

func transportConfig(cfg *config.Config, sampleRate int) transport.Config {
	includeTimestamps := cfg.API.IncludeTimestamps
	return transport.Config{
		ModelID:           cfg.API.ModelID,
		SampleRate:        sampleRate,
		LanguageCode:      cfg.API.LanguageCode,
		IncludeTimestamps: &includeTimestamps,
		VadCommitStrategy: cfg.API.VadCommitStrategy,
	}
}

func injectConfig(cfg *config.Config) inject.Config {
	return inject.Config{
		Strategy:            injectStrategy(cfg.Behavior.InjectionStrategy),
		AutoThreshold:       cfg.Behavior.AutoThreshold,
		PasteDelayMS:        cfg.Behavior.PasteDelayMS,
		PreInjectionDelayMS: cfg.Behavior.PreInjectionDelayMS,
	}
}

func injectStrategy(name string) inject.Strategy {
	switch name {
	case "keyboard":
		return inject.Keyboard
	case "clipboard":
		return inject.Clipboard
	case "clipboard_only":
		return inject.ClipboardOnly
	default:
		return inject.Auto
	}
}

func processingTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Behavior.ProcessingTimeoutSecs) * time.Second
}

func main() {
	slog.Info("starting dictate", "version", version, "commit", commit, "date", date)

	service := NewService()

	app := application.New(application.Options{
		Name:        "Dictate",
		Description: "Push-to-talk dictation",
		Services: []application.Service{
			application.NewService(service),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	if err := service.Init(app); err != nil {
		slog.Error("init service", "error", err)
		os.Exit(1)
	}

	systemTray := app.SystemTray.New()
	trayMenu := app.NewMenu()
	trayMenu.Add("Quit").OnClick(func(ctx *application.Context) {
		service.Shutdown()
		app.Quit()
	})
	systemTray.SetMenu(trayMenu)

	if err := app.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
