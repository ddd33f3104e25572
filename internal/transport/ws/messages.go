package ws

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of websocket message
type MessageType string

// Client -> server message types
const (
	MsgStartMatch  MessageType = "start_match"
	MsgSubmitWord  MessageType = "submit_word"
	MsgPauseMatch  MessageType = "pause_match"
	MsgResumeMatch MessageType = "resume_match"
	MsgEndMatch    MessageType = "end_match"
	MsgPass        MessageType = "pass"
	MsgPing        MessageType = "ping"
)

// Server -> client message types
const (
	MsgConnected        MessageType = "connected"
	MsgSubmissionResult MessageType = "submission_result"
	MsgError            MessageType = "error"
	MsgPong             MessageType = "pong"
)

// ClientMessage is an inbound message from a client
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubmitWordPayload carries a word submission
type SubmitWordPayload struct {
	Word string `json:"word"`
}

// ServerMessage is an outbound message to clients
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a timestamped outbound message
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
