// Package wire implements the JSON wire schema exchanged with the
// realtime speech-to-text recognizer: the outbound ClientMessage union
// and the inbound ServerMessage union, both tagged on a "message_type"
// discriminator.
package wire

import (
	"encoding/json"
	"fmt"
)

// Client message discriminators.
const (
	TypeInputAudioChunk = "input_audio_chunk"
	TypeCommit          = "commit"
	TypeClose           = "close"
)

// Server message discriminators.
const (
	TypeSessionStarted                   = "session_started"
	TypePartialTranscript                = "partial_transcript"
	TypeCommittedTranscript              = "committed_transcript"
	TypeCommittedTranscriptWithTimestamps = "committed_transcript_with_timestamps"
	TypeInputError                       = "input_error"
)

// ClientMessage is the tagged union of messages sent to the recognizer.
// Exactly one of the embedded payloads is meaningful at a time; callers
// build one with NewAudioChunk, NewCommit, or NewClose.
type ClientMessage struct {
	MessageType string `json:"message_type"`

	// AudioChunk fields. SampleRate, Commit and PreviousText are
	// omitted from the wire when unset (skip-if-absent), not emitted
	// as null.
	AudioBase64  string `json:"audio_base64,omitempty"`
	SampleRate   *int   `json:"sample_rate,omitempty"`
	Commit       *bool  `json:"commit,omitempty"`
	PreviousText *string `json:"previous_text,omitempty"`
}

// NewAudioChunk builds an AudioChunk client message. sampleRate is nil
// for every message after the first in a session (see transport.RunSender).
func NewAudioChunk(audioBase64 string, sampleRate *int) ClientMessage {
	return ClientMessage{
		MessageType: TypeInputAudioChunk,
		AudioBase64: audioBase64,
		SampleRate:  sampleRate,
	}
}

// NewCommit builds a Commit client message.
func NewCommit() ClientMessage {
	return ClientMessage{MessageType: TypeCommit}
}

// NewClose builds a Close client message.
func NewClose() ClientMessage {
	return ClientMessage{MessageType: TypeClose}
}

// Marshal serializes a ClientMessage to its wire JSON form.
func Marshal(m ClientMessage) ([]byte, error) {
	return json.Marshal(m)
}

// Word is one word (or spacing/audio-event token) inside a timestamped
// committed transcript.
type Word struct {
	Word     string   `json:"word"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Type     string   `json:"type"`
	Logprob  *float64 `json:"logprob,omitempty"`
}

// ServerMessage is the tagged union of messages received from the
// recognizer. Callers type-switch on the concrete field that is
// non-nil, or inspect MessageType directly.
type ServerMessage struct {
	MessageType string

	SessionStarted                   *SessionStartedPayload
	PartialTranscript                *PartialTranscriptPayload
	CommittedTranscript              *CommittedTranscriptPayload
	CommittedTranscriptWithTimestamps *CommittedTranscriptWithTimestampsPayload
	InputError                       *InputErrorPayload
}

type SessionStartedPayload struct {
	SessionID string          `json:"session_id"`
	Config    json.RawMessage `json:"config,omitempty"`
}

type PartialTranscriptPayload struct {
	Text string `json:"text"`
}

type CommittedTranscriptPayload struct {
	Text string `json:"text"`
}

type CommittedTranscriptWithTimestampsPayload struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Words        []Word `json:"words"`
}

type InputErrorPayload struct {
	ErrorMessage string `json:"error_message"`
}

// ProtocolError reports a server message whose message_type is not one
// of the five known discriminators. Unknown discriminators must fail
// deserialization rather than be silently dropped.
type ProtocolError struct {
	MessageType string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wire: unknown message_type %q", e.MessageType)
}

// discriminator is the minimal shape used to read message_type before
// dispatching to the variant-specific payload.
type discriminator struct {
	MessageType string `json:"message_type"`
}

// Unmarshal decodes a server frame into a ServerMessage, dispatching on
// message_type. Extra fields in the payload are ignored for forward
// compatibility; an unrecognized message_type is a *ProtocolError.
func Unmarshal(data []byte) (ServerMessage, error) {
	var d discriminator
	if err := json.Unmarshal(data, &d); err != nil {
		return ServerMessage{}, fmt.Errorf("wire: decode discriminator: %w", err)
	}

	msg := ServerMessage{MessageType: d.MessageType}

	switch d.MessageType {
	case TypeSessionStarted:
		var p SessionStartedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ServerMessage{}, fmt.Errorf("wire: decode session_started: %w", err)
		}
		msg.SessionStarted = &p
	case TypePartialTranscript:
		var p PartialTranscriptPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ServerMessage{}, fmt.Errorf("wire: decode partial_transcript: %w", err)
		}
		msg.PartialTranscript = &p
	case TypeCommittedTranscript:
		var p CommittedTranscriptPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ServerMessage{}, fmt.Errorf("wire: decode committed_transcript: %w", err)
		}
		msg.CommittedTranscript = &p
	case TypeCommittedTranscriptWithTimestamps:
		var p CommittedTranscriptWithTimestampsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ServerMessage{}, fmt.Errorf("wire: decode committed_transcript_with_timestamps: %w", err)
		}
		msg.CommittedTranscriptWithTimestamps = &p
	case TypeInputError:
		var p InputErrorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ServerMessage{}, fmt.Errorf("wire: decode input_error: %w", err)
		}
		msg.InputError = &p
	default:
		return ServerMessage{}, &ProtocolError{MessageType: d.MessageType}
	}

	return msg, nil
}
