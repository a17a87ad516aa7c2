// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import "encoding/json"

// Message is one pre-encoded JSON frame to be broadcast to clients
type Message struct {
	Data []byte
}

// NewJSONMessage creates a message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}

// EncodeJSON encodes v into a message
func EncodeJSON(v interface{}) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(data), nil
}
