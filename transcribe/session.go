// Package transcribe implements the transcription session (C10): it
// wires the audio pipeline's outbound channel through the sender
// task, the recognizer socket, the receiver task, and a translator
// that turns ServerMessages into the session's externalized
// TranscriptEvent alphabet.
package transcribe

import (
	"context"
	"log/slog"
	"sync"

	"dictate/audiopipeline"
	"dictate/transport"
	"dictate/wire"
)

// EventKind enumerates TranscriptEvent's variants.
type EventKind int

const (
	SessionStarted EventKind = iota
	Partial
	Committed
	EventError
	Closed
)

// Word carries word-level timing, preserved from
// CommittedTranscriptWithTimestamps rather than discarded — see
// DESIGN.md's note on this Open Question.
type Word = wire.Word

// TranscriptEvent is delivered to the session owner's callback, in
// order, exactly once per underlying occurrence.
type TranscriptEvent struct {
	Kind         EventKind
	SessionID    string
	Text         string
	LanguageCode string
	Words        []Word // non-nil only when the server sent timestamps
	Message      string
}

// Session composes the audio pipeline, transport sender/receiver, and
// translator behind one start/stop API.
type Session struct {
	pipeline *audiopipeline.Pipeline
	onEvent  func(TranscriptEvent)

	mu       sync.Mutex
	running  bool
	sock     *transport.Session
	writer   *transport.Writer
	reader   *transport.Reader
	senderErr, receiverErr, translatorErr error
	wg       sync.WaitGroup
}

// New creates a Session bound to an already-constructed pipeline.
func New(pipeline *audiopipeline.Pipeline, onEvent func(TranscriptEvent)) *Session {
	return &Session{pipeline: pipeline, onEvent: onEvent}
}

// Start connects to the recognizer and wires
// pipeline.outbound -> sender -> socket.writer and
// socket.reader -> receiver -> translator -> onEvent.
// outbound is the pipeline's already-started chunk channel.
func (s *Session) Start(ctx context.Context, apiKey string, cfg transport.Config, outbound <-chan string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	sock, err := transport.Connect(ctx, apiKey, cfg)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}
	s.sock = sock

	writer, reader := sock.Split()
	s.writer = writer
	s.reader = reader
	events := make(chan wire.ServerMessage, 100)

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.senderErr = transport.RunSender(writer, outbound, cfg.SampleRate)
	}()
	go func() {
		defer s.wg.Done()
		defer close(events)
		s.receiverErr = transport.RunReceiver(reader, events)
	}()
	go func() {
		defer s.wg.Done()
		s.translatorErr = s.translate(events)
	}()

	return nil
}

// translate consumes ServerMessages and emits TranscriptEvents until
// the channel closes, at which point it emits exactly one Closed
// event.
func (s *Session) translate(events <-chan wire.ServerMessage) error {
	for msg := range events {
		ev, ok := translateOne(msg)
		if ok {
			s.onEvent(ev)
		}
	}
	s.onEvent(TranscriptEvent{Kind: Closed})
	return nil
}

func translateOne(msg wire.ServerMessage) (TranscriptEvent, bool) {
	switch msg.MessageType {
	case wire.TypeSessionStarted:
		id := ""
		if msg.SessionStarted != nil {
			id = msg.SessionStarted.SessionID
		}
		return TranscriptEvent{Kind: SessionStarted, SessionID: id}, true
	case wire.TypePartialTranscript:
		text := ""
		if msg.PartialTranscript != nil {
			text = msg.PartialTranscript.Text
		}
		return TranscriptEvent{Kind: Partial, Text: text}, true
	case wire.TypeCommittedTranscript:
		text := ""
		if msg.CommittedTranscript != nil {
			text = msg.CommittedTranscript.Text
		}
		return TranscriptEvent{Kind: Committed, Text: text}, true
	case wire.TypeCommittedTranscriptWithTimestamps:
		p := msg.CommittedTranscriptWithTimestamps
		if p == nil {
			return TranscriptEvent{Kind: Committed}, true
		}
		return TranscriptEvent{
			Kind:         Committed,
			Text:         p.Text,
			LanguageCode: p.LanguageCode,
			Words:        p.Words,
		}, true
	case wire.TypeInputError:
		msgText := ""
		if msg.InputError != nil {
			msgText = msg.InputError.ErrorMessage
		}
		return TranscriptEvent{Kind: EventError, Message: msgText}, true
	default:
		return TranscriptEvent{}, false
	}
}

// Stop stops the pipeline (cascading sender close -> graceful WebSocket
// close frame -> receiver exit -> translator exit), awaits all three
// tasks, then closes the underlying connection so its FD is actually
// released, and surfaces the first observed task error.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	pipelineErr := s.pipeline.Stop()
	s.wg.Wait()

	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			slog.Debug("transcribe: writer close", "error", err)
		}
	}
	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			slog.Debug("transcribe: reader close", "error", err)
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if s.senderErr != nil {
		return s.senderErr
	}
	if s.receiverErr != nil {
		return s.receiverErr
	}
	if s.translatorErr != nil {
		return s.translatorErr
	}
	return pipelineErr
}

var errAlreadyRunning = sessionError("transcribe: already running")

type sessionError string

func (e sessionError) Error() string { return string(e) }
