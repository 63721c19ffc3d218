// Package message defines the snipstash IPC protocol.
//
// All messages are newline-delimited JSON exchanged over the local unix
// socket between the CLI tools and the watch daemon. Each message is exactly
// one line: <json>\n
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	// requests
	TypeCopy    Type = "COPY"    // put text on the clipboard + history
	TypeLatest  Type = "LATEST"  // newest history item
	TypeHistory Type = "HISTORY" // recent history items
	TypeTrigger Type = "TRIGGER" // dispatch a chord to the shortcut matcher
	TypeStatus  Type = "STATUS"

	// responses
	TypeItems          Type = "ITEMS"
	TypeAck            Type = "ACK"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeError          Type = "ERROR"
)

// Item is one history entry on the wire.
type Item struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Kind       string    `json:"kind"`
	CapturedAt time.Time `json:"captured_at"`
}

// Status carries daemon state for STATUS_RESPONSE.
type Status struct {
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	Backend    string    `json:"backend"`
	Monitoring bool      `json:"monitoring"`
	Bindings   int       `json:"bindings"`
	Items      int       `json:"items"`
	Snippets   int       `json:"snippets"`
	StartedAt  time.Time `json:"started_at"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// COPY — the text to place on the clipboard
	Text string `json:"text,omitempty"`

	// TRIGGER — the chord to dispatch, and whether it matched a binding
	Chord   string `json:"chord,omitempty"`
	Handled bool   `json:"handled,omitempty"`

	// HISTORY — maximum number of items to return (0 = all)
	Limit int `json:"limit,omitempty"`

	// ITEMS
	Items []Item `json:"items,omitempty"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
