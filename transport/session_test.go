package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestConfigBuildURL(t *testing.T) {
	yes := true
	cfg := Config{
		ModelID:           "scribe_v1",
		SampleRate:        16000,
		LanguageCode:      "en",
		IncludeTimestamps: &yes,
		VadCommitStrategy: "server_vad",
	}

	raw := cfg.buildURL()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Scheme != "wss" || u.Host != recognizerHost || u.Path != recognizerPath {
		t.Fatalf("unexpected base: %s", raw)
	}
	q := u.Query()
	if q.Get("model_id") != "scribe_v1" || q.Get("sample_rate") != "16000" ||
		q.Get("language_code") != "en" || q.Get("include_timestamps") != "true" ||
		q.Get("vad_commit_strategy") != "server_vad" {
		t.Fatalf("unexpected query: %s", raw)
	}
}

func TestConfigBuildURLOmitsOptionalFields(t *testing.T) {
	cfg := Config{ModelID: "scribe_v1", SampleRate: 16000}
	raw := cfg.buildURL()
	for _, absent := range []string{"language_code", "include_timestamps", "vad_commit_strategy"} {
		if strings.Contains(raw, absent) {
			t.Errorf("expected %q to be absent from %s", absent, raw)
		}
	}
}

func authCheckingServer(t *testing.T, wantKey string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != wantKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
}

func TestConnectAuthenticationFailed(t *testing.T) {
	srv := authCheckingServer(t, "correct-key")
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	cfg := Config{ModelID: "scribe_v1", SampleRate: 16000}
	_, err := connectToAddr(context.Background(), "wrong-key", cfg, addr)
	if err == nil {
		t.Fatal("expected authentication error for bad key")
	}
	var authErr *ErrAuthenticationFailed
	if !errors.As(err, &authErr) {
		t.Fatalf("got %T (%v), want *ErrAuthenticationFailed", err, err)
	}
}

func TestConnectTimeout(t *testing.T) {
	// A server that accepts TCP connections but never completes the
	// WebSocket handshake triggers our handshake-timeout path.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			// accept but never write/upgrade; let the client time out.
			_ = c
		}
	}()

	cfg := Config{ModelID: "scribe_v1", SampleRate: 16000, TimeoutMS: 50}
	ctx := context.Background()
	_, err = connectToAddr(ctx, "bad-key", cfg, ln.Addr().String())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

// connectToAddr is a test seam: a copy of Connect's dial and error
// mapping that dials a given host:port over plain ws instead of the
// recognizer's fixed wss host, so tests don't need a real DNS name. It
// omits Connect's TLS config and its 401 check after a successful dial.
func connectToAddr(ctx context.Context, apiKey string, cfg Config, addr string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: cfg.timeout()}
	header := http.Header{}
	header.Set(apiKeyHeader, apiKey)

	u := url.URL{Scheme: "ws", Host: addr, Path: recognizerPath}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &ErrTimeout{TimeoutMS: int(cfg.timeout() / time.Millisecond)}
		}
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, &ErrAuthenticationFailed{}
		}
		return nil, &ErrConnectionFailed{Cause: err}
	}
	return &Session{conn: conn}, nil
}
