// Package protocol defines the WebSocket messages exchanged between the
// navigation brain and an arena server that owns the robot's radar, motors,
// arm and compass.
//
// Every request carries an ID; the arena answers with the same ID and either
// the request's own type (with its reply payload) or TypeError.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Brain → Arena requests; the arena replies with the same type
	TypeReady   MessageType = "ready"   // Readiness of radar, motor and arm
	TypeScan    MessageType = "scan"    // Radar sweep
	TypeMotor   MessageType = "motor"   // Step or turn
	TypeArm     MessageType = "arm"     // Stab with the arm
	TypeCompass MessageType = "compass" // Absolute heading, read once at startup

	// Arena → Brain
	TypeError MessageType = "error" // Request failed

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	ID        uint64          `json:"id,omitempty"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// NewReply creates a reply to req carrying data.
func NewReply(req *Message, data interface{}) (*Message, error) {
	msg, err := NewMessage(req.Type, data)
	if err != nil {
		return nil, err
	}
	msg.ID = req.ID
	return msg, nil
}

// NewErrorReply creates a TypeError reply to req.
func NewErrorReply(req *Message, cause error) *Message {
	msg, _ := NewMessage(TypeError, ErrorData{Message: cause.Error()})
	msg.ID = req.ID
	return msg
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Err returns the remote error carried by a TypeError message, or nil.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	var e ErrorData
	if err := m.ParseData(&e); err != nil {
		return fmt.Errorf("arena error (unreadable): %w", err)
	}
	return fmt.Errorf("arena error: %s", e.Message)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Payloads
// =============================================================================

// ReadyData reports which subsystems can take a command right now
type ReadyData struct {
	Radar bool `json:"radar"`
	Motor bool `json:"motor"`
	Arm   bool `json:"arm"`
}

// ScanRequest asks for a radar sweep of the given window side
type ScanRequest struct {
	Size int `json:"size"`
}

// ScanData is one radar sweep. Rows are printed top (farthest ahead) first.
type ScanData struct {
	Size int       `json:"size"`
	Rows []string  `json:"rows"`
	Bots []BotData `json:"bots,omitempty"`
}

// BotData ties an enemy cell of a scan to its identifier
type BotData struct {
	X  int8   `json:"x"` // Scan-local, + = right of the robot
	Y  int8   `json:"y"` // Scan-local, + = ahead of the robot
	ID string `json:"id"`
}

// Motor actions
const (
	ActionForward   = "forward"
	ActionBackward  = "backward"
	ActionTurnLeft  = "turn_left"
	ActionTurnRight = "turn_right"
)

// MotorCommand asks for one step or turn
type MotorCommand struct {
	Action string `json:"action"`
}

// CompassData carries an absolute heading name ("north", "east", ...)
type CompassData struct {
	Heading string `json:"heading"`
}

// AckData confirms a command
type AckData struct {
	OK bool `json:"ok"`
}

// ErrorData explains a failed request
type ErrorData struct {
	Message string `json:"message"`
}

// StatusData is served by the arena on GET /api/status
type StatusData struct {
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Enemies int    `json:"enemies"`
	Robots  int    `json:"robots"`
	Tick    uint64 `json:"tick"`
}

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
