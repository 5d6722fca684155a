package domain

import "github.com/gloria-mdrrmo/sigurado/internal/shared/types"

// Domain event types
const (
	EventIncidentCreated        = "incident.created"
	EventIncidentStatusChanged  = "incident.status_changed"
	EventReportSubmitted        = "responder.report_submitted"
	EventResponderStatusChanged = "responder.status_changed"
)

// IncidentCreated carries the incident as it was persisted
type IncidentCreated struct {
	Incident Incident `json:"incident"`
}

type IncidentStatusChanged struct {
	IncidentID types.ID       `json:"incident_id"`
	DistrictID types.ID       `json:"district_id"`
	Type       string         `json:"type"`
	Severity   Severity       `json:"severity"`
	From       IncidentStatus `json:"from"`
	To         IncidentStatus `json:"to"`
}

type ReportSubmitted struct {
	Report AssignmentReport `json:"report"`
}

type ResponderStatusChanged struct {
	ResponderID types.ID        `json:"responder_id"`
	DistrictID  types.ID        `json:"district_id"`
	From        ResponderStatus `json:"from"`
	To          ResponderStatus `json:"to"`
}
