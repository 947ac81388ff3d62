// Package transport establishes and drives the duplex WebSocket
// session against the remote streaming recognizer: connection setup
// (C7), the sender task (C8) and the receiver task (C9).
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	recognizerHost = "api.elevenlabs.io"
	recognizerPath = "/v1/speech-to-text/realtime"
	apiKeyHeader   = "xi-api-key"

	defaultTimeoutMS = 5000
)

// Config carries the per-connection parameters that become the wss://
// query string.
type Config struct {
	ModelID           string
	SampleRate        int // required
	LanguageCode      string // optional
	IncludeTimestamps *bool  // optional
	VadCommitStrategy string // optional
	TimeoutMS         int    // default 5000
}

func (c Config) timeout() time.Duration {
	ms := c.TimeoutMS
	if ms <= 0 {
		ms = defaultTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

func (c Config) buildURL() string {
	q := url.Values{}
	q.Set("model_id", c.ModelID)
	q.Set("sample_rate", strconv.Itoa(c.SampleRate))
	if c.LanguageCode != "" {
		q.Set("language_code", c.LanguageCode)
	}
	if c.IncludeTimestamps != nil {
		q.Set("include_timestamps", strconv.FormatBool(*c.IncludeTimestamps))
	}
	if c.VadCommitStrategy != "" {
		q.Set("vad_commit_strategy", c.VadCommitStrategy)
	}

	u := url.URL{
		Scheme:   "wss",
		Host:     recognizerHost,
		Path:     recognizerPath,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Session is an established duplex connection to the recognizer. Split
// hands out the single-owned writer/reader halves; Session itself must
// not be used for I/O once split.
type Session struct {
	conn *websocket.Conn
}

// Connect performs the TLS WebSocket upgrade to the recognizer. It
// distinguishes timeout, auth failure and generic connection failure
// per §4.7 so the orchestrator can render a precise error.
func Connect(ctx context.Context, apiKey string, cfg Config) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	dialer := websocket.Dialer{
		TLSClientConfig:  &tls.Config{}, // nil RootCAs uses the system (native) root pool
		HandshakeTimeout: cfg.timeout(),
	}

	header := http.Header{}
	header.Set(apiKeyHeader, apiKey)

	conn, resp, err := dialer.DialContext(ctx, cfg.buildURL(), header)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &ErrTimeout{TimeoutMS: int(cfg.timeout() / time.Millisecond)}
		}
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, &ErrAuthenticationFailed{}
		}
		return nil, &ErrConnectionFailed{Cause: err}
	}
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		_ = conn.Close()
		return nil, &ErrAuthenticationFailed{}
	}

	return &Session{conn: conn}, nil
}

// Split returns the single-owned writer and reader halves for this
// session. Each half must be driven from its own goroutine; neither may
// be aliased.
func (s *Session) Split() (*Writer, *Reader) {
	return &Writer{conn: s.conn}, &Reader{conn: s.conn}
}

// Writer is the single-owned write half of a Session, driven
// exclusively by the sender task (C8).
type Writer struct {
	conn *websocket.Conn
}

// WriteText writes one text frame (a serialized ClientMessage).
func (w *Writer) WriteText(data []byte) error {
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return &ErrWebSocket{Cause: err}
	}
	return nil
}

// WriteClose sends a graceful WebSocket close frame.
func (w *Writer) WriteClose() error {
	deadline := time.Now().Add(time.Second)
	err := w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	if err != nil {
		return &ErrWebSocket{Cause: err}
	}
	return nil
}

// WritePong replies to a Ping with a matching Pong payload.
func (w *Writer) WritePong(payload string) error {
	deadline := time.Now().Add(time.Second)
	if err := w.conn.WriteControl(websocket.PongMessage, []byte(payload), deadline); err != nil {
		return &ErrWebSocket{Cause: err}
	}
	return nil
}

// Close closes the underlying connection. Both halves may call this;
// the second call is a no-op error that callers should ignore.
func (w *Writer) Close() error { return w.conn.Close() }

// FrameKind classifies a frame observed by the reader.
type FrameKind int

const (
	FrameText FrameKind = iota
	FramePing
	FramePong
	FrameClose
	FrameOther
)

// Frame is one inbound frame handed to the receiver task.
type Frame struct {
	Kind    FrameKind
	Data    []byte
	Payload string // ping/pong control payload
}

// Reader is the single-owned read half of a Session, driven exclusively
// by the receiver task (C9).
type Reader struct {
	conn *websocket.Conn
}

// SetPingHandler lets the caller observe Ping control frames as they
// arrive (gorilla invokes this from within ReadMessage). The receiver
// task uses it to auto-pong and to log the other control kinds.
func (r *Reader) SetPingHandler(fn func(payload string)) {
	r.conn.SetPingHandler(func(payload string) error {
		fn(payload)
		return nil
	})
}

func (r *Reader) SetPongHandler(fn func(payload string)) {
	r.conn.SetPongHandler(func(payload string) error {
		fn(payload)
		return nil
	})
}

// ReadFrame blocks for the next frame. A normal or going-away close
// from the peer is reported as a FrameClose frame with a nil error;
// any other read failure is returned wrapped.
func (r *Reader) ReadFrame() (Frame, error) {
	kind, data, err := r.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return Frame{Kind: FrameClose}, nil
		}
		return Frame{}, fmt.Errorf("transport: read: %w", err)
	}

	switch kind {
	case websocket.TextMessage:
		return Frame{Kind: FrameText, Data: data}, nil
	case websocket.BinaryMessage:
		return Frame{Kind: FrameOther, Data: data}, nil
	default:
		return Frame{Kind: FrameOther}, nil
	}
}

// Close closes the underlying connection.
func (r *Reader) Close() error { return r.conn.Close() }
