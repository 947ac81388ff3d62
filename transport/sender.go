package transport

import (
	"log/slog"

	"dictate/wire"
)

// RunSender is the sender task (C8). It drains chunks (base64-encoded
// 100ms frames from the audio pipeline) and writes them to w as
// AudioChunk client messages. The very first message of the session
// carries sampleRate; every subsequent one omits it. When chunks
// closes (the pipeline stopped), RunSender sends a graceful close and
// returns nil. A write error is returned as *ErrWebSocket so the
// caller can transition to Error.
func RunSender(w *Writer, chunks <-chan string, sampleRate int) error {
	first := true

	for chunk := range chunks {
		var rate *int
		if first {
			r := sampleRate
			rate = &r
			first = false
		}

		msg := wire.NewAudioChunk(chunk, rate)
		data, err := wire.Marshal(msg)
		if err != nil {
			// Marshal of a well-formed ClientMessage cannot fail; treat
			// it as a write error rather than silently dropping audio.
			return &ErrWebSocket{Cause: err}
		}

		if err := w.WriteText(data); err != nil {
			return err
		}
	}

	if err := w.WriteClose(); err != nil {
		slog.Warn("sender: graceful close failed", "error", err)
		return err
	}
	return nil
}
