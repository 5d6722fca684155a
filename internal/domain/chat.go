package domain

import (
	"strings"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

const maxChatBody = 2000

// ChatMessage is one entry in an incident's append-only thread
type ChatMessage struct {
	ID            types.ID  `json:"id"`
	IncidentID    types.ID  `json:"incident_id"`
	SenderActorID types.ID  `json:"sender_actor_id"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`

	SenderName string `json:"sender_name,omitempty"`
}

// NewChatMessage validates and creates a message
func NewChatMessage(incidentID types.ID, sender *Actor, body string) (*ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.Validation("message body is required", map[string]string{"body": "is required"})
	}
	if len([]rune(body)) > maxChatBody {
		return nil, errors.Validation("message is too long", map[string]string{"body": "must have at most 2000 characters"})
	}
	return &ChatMessage{
		ID:            types.NewID(),
		IncidentID:    incidentID,
		SenderActorID: sender.ID,
		Body:          body,
		CreatedAt:     time.Now().UTC(),
		SenderName:    sender.Name,
	}, nil
}
