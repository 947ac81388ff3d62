package transport

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"dictate/wire"
)

// RunReceiver is the receiver task (C9). It reads frames from r until a
// Close frame, a read error, or a decode error. Each send on events
// blocks until it is received; RunReceiver does not detect a consumer
// that has stopped reading.
//
// Text frames are decoded with wire.Unmarshal and forwarded on events.
// Ping frames are auto-ponged with the matching payload. Pong frames
// are logged. Binary frames are logged and ignored. RunReceiver
// returns nil on a clean Close and the read or decode error otherwise.
func RunReceiver(r *Reader, events chan<- wire.ServerMessage) error {
	// gorilla/websocket's Conn.WriteControl synchronizes internally, so
	// it is safe to reply to a Ping from the reader goroutine even
	// though the Writer half (same underlying *websocket.Conn) is
	// driven concurrently by the sender task.
	r.SetPingHandler(func(payload string) {
		deadline := time.Now().Add(time.Second)
		if err := r.conn.WriteControl(websocket.PongMessage, []byte(payload), deadline); err != nil {
			slog.Warn("receiver: auto-pong failed", "error", err)
		}
	})
	r.SetPongHandler(func(payload string) {
		slog.Debug("receiver: pong received")
	})

	for {
		frame, err := r.ReadFrame()
		if err != nil {
			return err
		}

		switch frame.Kind {
		case FrameText:
			msg, err := wire.Unmarshal(frame.Data)
			if err != nil {
				var protoErr *wire.ProtocolError
				if errors.As(err, &protoErr) {
					slog.Error("receiver: protocol error", "error", err)
				}
				return err
			}
			events <- msg
		case FrameClose:
			return nil
		case FramePing, FramePong:
			// handled via the ping/pong handlers installed above.
		case FrameOther:
			slog.Debug("receiver: ignoring non-text frame")
		}
	}
}
