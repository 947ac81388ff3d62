package wire

import (
	"encoding/json"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestClientMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  ClientMessage
	}{
		{"audio_chunk_with_rate", NewAudioChunk("AQID", intPtr(16000))},
		{"audio_chunk_without_rate", NewAudioChunk("AQID", nil)},
		{"commit", NewCommit()},
		{"close", NewClose()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.msg)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			var decoded ClientMessage
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			if decoded.MessageType != tt.msg.MessageType {
				t.Errorf("MessageType = %q, want %q", decoded.MessageType, tt.msg.MessageType)
			}
			if decoded.AudioBase64 != tt.msg.AudioBase64 {
				t.Errorf("AudioBase64 = %q, want %q", decoded.AudioBase64, tt.msg.AudioBase64)
			}
			if (decoded.SampleRate == nil) != (tt.msg.SampleRate == nil) {
				t.Errorf("SampleRate presence mismatch: got %v, want %v", decoded.SampleRate, tt.msg.SampleRate)
			} else if decoded.SampleRate != nil && *decoded.SampleRate != *tt.msg.SampleRate {
				t.Errorf("SampleRate = %d, want %d", *decoded.SampleRate, *tt.msg.SampleRate)
			}
		})
	}
}

func TestClientMessageOmitsAbsentFields(t *testing.T) {
	data, err := Marshal(NewAudioChunk("AQID", nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, absent := range []string{"sample_rate", "commit", "previous_text"} {
		if _, ok := raw[absent]; ok {
			t.Errorf("field %q should be omitted, not present as null", absent)
		}
	}
}

func TestFirstChunkCarriesSampleRate(t *testing.T) {
	first := NewAudioChunk("AQID", intPtr(16000))
	data, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw["sample_rate"] != float64(16000) {
		t.Errorf("sample_rate = %v, want 16000", raw["sample_rate"])
	}

	subsequent := NewAudioChunk("AQID", nil)
	data2, err := Marshal(subsequent)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw2 map[string]any
	if err := json.Unmarshal(data2, &raw2); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := raw2["sample_rate"]; ok {
		t.Errorf("subsequent chunk must omit sample_rate")
	}
}

func TestUnmarshalServerMessages(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"session_started", `{"message_type":"session_started","session_id":"s1"}`, TypeSessionStarted},
		{"partial", `{"message_type":"partial_transcript","text":"hel"}`, TypePartialTranscript},
		{"committed", `{"message_type":"committed_transcript","text":"hello world"}`, TypeCommittedTranscript},
		{"committed_ts", `{"message_type":"committed_transcript_with_timestamps","text":"hi","language_code":"en","words":[{"word":"hi","start":0,"end":0.5,"type":"word"}]}`, TypeCommittedTranscriptWithTimestamps},
		{"error", `{"message_type":"input_error","error_message":"bad audio"}`, TypeInputError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Unmarshal([]byte(tt.json))
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if msg.MessageType != tt.want {
				t.Errorf("MessageType = %q, want %q", msg.MessageType, tt.want)
			}
		})
	}
}

func TestUnmarshalUnknownDiscriminatorFails(t *testing.T) {
	_, err := Unmarshal([]byte(`{"message_type":"something_else"}`))
	if err == nil {
		t.Fatal("expected error for unknown message_type")
	}
	var protoErr *ProtocolError
	if !asProtocolError(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %T (%v)", err, err)
	}
}

func asProtocolError(err error, target **ProtocolError) bool {
	if pe, ok := err.(*ProtocolError); ok {
		*target = pe
		return true
	}
	return false
}

func TestUnmarshalIgnoresExtraFields(t *testing.T) {
	msg, err := Unmarshal([]byte(`{"message_type":"partial_transcript","text":"hi","extra_future_field":42}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.PartialTranscript == nil || msg.PartialTranscript.Text != "hi" {
		t.Fatalf("unexpected payload: %+v", msg.PartialTranscript)
	}
}
