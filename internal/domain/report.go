package domain

import (
	"strings"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// AssignmentReport is an append-only field report filed against an incident
type AssignmentReport struct {
	ID            types.ID  `json:"id"`
	IncidentID    types.ID  `json:"incident_id"`
	ResponderID   types.ID  `json:"responder_id"`
	Content       string    `json:"content"`
	ActionTaken   string    `json:"action_taken"`
	ResourcesUsed string    `json:"resources_used"`
	CreatedAt     time.Time `json:"created_at"`

	// Incident summary fields filled by list queries
	IncidentType   string         `json:"incident_type,omitempty"`
	IncidentStatus IncidentStatus `json:"incident_status,omitempty"`
}

// NewAssignmentReport creates a report by responder on incident
func NewAssignmentReport(incidentID, responderID types.ID, content, actionTaken, resourcesUsed string) (*AssignmentReport, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("report content is required", map[string]string{"content": "is required"})
	}
	return &AssignmentReport{
		ID:            types.NewID(),
		IncidentID:    incidentID,
		ResponderID:   responderID,
		Content:       content,
		ActionTaken:   strings.TrimSpace(actionTaken),
		ResourcesUsed: strings.TrimSpace(resourcesUsed),
		CreatedAt:     time.Now().UTC(),
	}, nil
}
