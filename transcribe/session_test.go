package transcribe

import (
	"testing"

	"dictate/wire"
)

func TestTranslateSessionStarted(t *testing.T) {
	msg := wire.ServerMessage{
		MessageType:    wire.TypeSessionStarted,
		SessionStarted: &wire.SessionStartedPayload{SessionID: "s1"},
	}
	ev, ok := translateOne(msg)
	if !ok {
		t.Fatal("expected translation")
	}
	if ev.Kind != SessionStarted || ev.SessionID != "s1" {
		t.Fatalf("got %+v", ev)
	}
}

func TestTranslatePartial(t *testing.T) {
	msg := wire.ServerMessage{
		MessageType:       wire.TypePartialTranscript,
		PartialTranscript: &wire.PartialTranscriptPayload{Text: "hel"},
	}
	ev, ok := translateOne(msg)
	if !ok || ev.Kind != Partial || ev.Text != "hel" {
		t.Fatalf("got %+v, ok=%v", ev, ok)
	}
}

func TestTranslateBothCommittedVariantsMapToCommitted(t *testing.T) {
	plain := wire.ServerMessage{
		MessageType:          wire.TypeCommittedTranscript,
		CommittedTranscript:  &wire.CommittedTranscriptPayload{Text: "hello world"},
	}
	ev, ok := translateOne(plain)
	if !ok || ev.Kind != Committed || ev.Text != "hello world" {
		t.Fatalf("plain: got %+v, ok=%v", ev, ok)
	}

	withTimestamps := wire.ServerMessage{
		MessageType: wire.TypeCommittedTranscriptWithTimestamps,
		CommittedTranscriptWithTimestamps: &wire.CommittedTranscriptWithTimestampsPayload{
			Text:         "hello world",
			LanguageCode: "en",
			Words: []wire.Word{
				{Word: "hello", Start: 0, End: 0.5, Type: "word"},
				{Word: "world", Start: 0.5, End: 1, Type: "word"},
			},
		},
	}
	ev2, ok := translateOne(withTimestamps)
	if !ok || ev2.Kind != Committed || ev2.Text != "hello world" {
		t.Fatalf("timestamps: got %+v, ok=%v", ev2, ok)
	}
	// Preserved rather than dropped, per the Open Question decision.
	if len(ev2.Words) != 2 || ev2.LanguageCode != "en" {
		t.Fatalf("expected word timestamps preserved, got %+v", ev2)
	}
}

func TestTranslateInputError(t *testing.T) {
	msg := wire.ServerMessage{
		MessageType: wire.TypeInputError,
		InputError:  &wire.InputErrorPayload{ErrorMessage: "bad audio"},
	}
	ev, ok := translateOne(msg)
	if !ok || ev.Kind != EventError || ev.Message != "bad audio" {
		t.Fatalf("got %+v, ok=%v", ev, ok)
	}
}

func TestTranslateUnknownTypeIsIgnored(t *testing.T) {
	msg := wire.ServerMessage{MessageType: "something_else"}
	_, ok := translateOne(msg)
	if ok {
		t.Fatal("expected unknown message type to be ignored by the translator")
	}
}
