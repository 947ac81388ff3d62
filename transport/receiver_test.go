package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dictate/wire"
)

func serverSendingThenClosing(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	}))
}

func TestRunReceiverDispatchesAndClosesCleanly(t *testing.T) {
	srv := serverSendingThenClosing(t, []string{
		`{"message_type":"session_started","session_id":"s1"}`,
		`{"message_type":"partial_transcript","text":"hel"}`,
		`{"message_type":"committed_transcript","text":"hello world"}`,
	})
	defer srv.Close()

	conn := dialTestServer(t, srv)
	r := &Reader{conn: conn}

	events := make(chan wire.ServerMessage, 10)
	err := RunReceiver(r, events)
	close(events)

	if err != nil {
		t.Fatalf("RunReceiver: %v", err)
	}

	var got []wire.ServerMessage
	for m := range events {
		got = append(got, m)
	}

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].SessionStarted == nil || got[0].SessionStarted.SessionID != "s1" {
		t.Errorf("event 0 = %+v", got[0])
	}
	if got[1].PartialTranscript == nil || got[1].PartialTranscript.Text != "hel" {
		t.Errorf("event 1 = %+v", got[1])
	}
	if got[2].CommittedTranscript == nil || got[2].CommittedTranscript.Text != "hello world" {
		t.Errorf("event 2 = %+v", got[2])
	}
}

func TestRunReceiverFailsOnUnknownMessageType(t *testing.T) {
	srv := serverSendingThenClosing(t, []string{`{"message_type":"unknown_type"}`})
	defer srv.Close()

	conn := dialTestServer(t, srv)
	r := &Reader{conn: conn}

	events := make(chan wire.ServerMessage, 10)
	err := RunReceiver(r, events)
	if err == nil {
		t.Fatal("expected error for unknown message_type")
	}
}
