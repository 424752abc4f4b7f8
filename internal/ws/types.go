package ws

import (
	"time"

	"sales_arena/internal/domain"

	"github.com/google/uuid"
)

const (
	// client -> server
	MsgPing = "ping"

	// server -> client
	MsgPong  = "pong"
	MsgReady = "ready"
)

// Message is the frame written to a client. Recipients are not echoed back.
type Message struct {
	Type      string     `json:"type"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	Payload   any        `json:"payload,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func messageFromEvent(ev domain.Event) Message {
	return Message{
		Type:      string(ev.Type),
		TeamID:    ev.TeamID,
		Payload:   ev.Payload,
		CreatedAt: ev.CreatedAt,
	}
}

type inbound struct {
	Type string `json:"type"`
}
