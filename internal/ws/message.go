package ws

import (
	"fmt"
	"strings"
	"time"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageExecuteRequested MessageType = "execute.requested"
	MessageExecuteCompleted MessageType = "execute.completed"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// parseTypes reads a comma separated ?types= filter. An empty value
// subscribes to every message type and yields a nil set.
func parseTypes(raw string) (map[MessageType]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	set := make(map[MessageType]bool)
	for _, part := range strings.Split(raw, ",") {
		t := MessageType(strings.TrimSpace(part))
		switch t {
		case MessageExecuteRequested, MessageExecuteCompleted:
			set[t] = true
		case "":
		default:
			return nil, fmt.Errorf("unknown message type %q", t)
		}
	}
	return set, nil
}
