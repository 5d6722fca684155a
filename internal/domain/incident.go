package domain

import (
	"strings"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// IncidentStatus is a state of the incident lifecycle:
// reported -> verified -> responding -> resolved -> closed
type IncidentStatus string

const (
	StatusReported   IncidentStatus = "reported"
	StatusVerified   IncidentStatus = "verified"
	StatusResponding IncidentStatus = "responding"
	StatusResolved   IncidentStatus = "resolved"
	StatusClosed     IncidentStatus = "closed"
)

// IncidentStatuses in lifecycle order
var IncidentStatuses = []IncidentStatus{StatusReported, StatusVerified, StatusResponding, StatusResolved, StatusClosed}

// ActiveStatuses are incidents still being worked
var ActiveStatuses = []IncidentStatus{StatusReported, StatusVerified, StatusResponding}

// ResolvedStatuses are incidents whose work is done
var ResolvedStatuses = []IncidentStatus{StatusResolved, StatusClosed}

// ParseIncidentStatus reports whether s is one of the five lifecycle states
func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	for _, st := range IncidentStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s IncidentStatus) rank() int {
	for i, st := range IncidentStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// IsActive reports whether the incident is still open for response
func (s IncidentStatus) IsActive() bool {
	return s == StatusReported || s == StatusVerified || s == StatusResponding
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity defaults an empty value to medium
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case "":
		return SeverityMedium, nil
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, nil
	default:
		return "", errors.Validation("invalid severity", map[string]string{"severity": "must be one of: low medium high critical"})
	}
}

// Incident is the aggregate root of the lifecycle. Status changes only
// through SetStatus.
type Incident struct {
	ID               types.ID       `json:"id"`
	ReporterActorID  types.ID       `json:"reporter_actor_id"`
	DistrictID       types.ID       `json:"district_id"`
	Type             string         `json:"type"`
	Severity         Severity       `json:"severity"`
	Description      string         `json:"description"`
	Location         types.Location `json:"location"`
	Casualties       int            `json:"casualties"`
	AffectedFamilies int            `json:"affected_families"`
	Status           IncidentStatus `json:"status"`
	ReportedAt       time.Time      `json:"reported_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// DistrictName is filled by list queries
	DistrictName string `json:"district_name,omitempty"`

	// Domain events (not persisted, dispatched after commit)
	domainEvents []events.Event
}

// IncidentDraft holds what a reporter submits
type IncidentDraft struct {
	Type             string
	Severity         string
	Description      string
	Location         types.Location
	Casualties       int
	AffectedFamilies int
}

// NewIncident creates a reported incident in districtID and records IncidentCreated
func NewIncident(reporter *Actor, districtID types.ID, d IncidentDraft) (*Incident, error) {
	incidentType := strings.TrimSpace(d.Type)
	if incidentType == "" {
		return nil, errors.Validation("incident type is required", map[string]string{"type": "is required"})
	}
	if districtID.IsZero() {
		return nil, errors.Validation("district is required", map[string]string{"district_id": "is required"})
	}
	severity, err := ParseSeverity(d.Severity)
	if err != nil {
		return nil, err
	}
	if d.Casualties < 0 || d.AffectedFamilies < 0 {
		return nil, errors.Validation("counts cannot be negative", map[string]string{
			"casualties":        "must be at least 0",
			"affected_families": "must be at least 0",
		})
	}

	now := time.Now().UTC()
	i := &Incident{
		ID:               types.NewID(),
		ReporterActorID:  reporter.ID,
		DistrictID:       districtID,
		Type:             incidentType,
		Severity:         severity,
		Description:      strings.TrimSpace(d.Description),
		Location:         d.Location,
		Casualties:       d.Casualties,
		AffectedFamilies: d.AffectedFamilies,
		Status:           StatusReported,
		ReportedAt:       now,
		UpdatedAt:        now,
	}

	i.addEvent(EventIncidentCreated, reporter, IncidentCreated{Incident: i.snapshot()})
	return i, nil
}

// SetStatus moves the incident to next. Unknown values fail with
// InvalidTransition; with strict set, so do moves backwards. Setting the
// current status again is a no-op and reports changed=false.
func (i *Incident) SetStatus(next string, actor *Actor, strict bool) (changed bool, err error) {
	to, ok := ParseIncidentStatus(next)
	if !ok {
		return false, errors.InvalidTransition(string(i.Status), next)
	}
	if to == i.Status {
		return false, nil
	}
	if strict && to.rank() < i.Status.rank() {
		return false, errors.InvalidTransition(string(i.Status), next)
	}

	from := i.Status
	i.Status = to
	i.UpdatedAt = time.Now().UTC()
	i.addEvent(EventIncidentStatusChanged, actor, IncidentStatusChanged{
		IncidentID: i.ID,
		DistrictID: i.DistrictID,
		Type:       i.Type,
		Severity:   i.Severity,
		From:       from,
		To:         to,
	})
	return true, nil
}

// PullEvents returns and clears the recorded domain events
func (i *Incident) PullEvents() []events.Event {
	evs := i.domainEvents
	i.domainEvents = nil
	return evs
}

func (i *Incident) snapshot() Incident {
	s := *i
	s.domainEvents = nil
	return s
}

func (i *Incident) addEvent(eventType string, actor *Actor, data any) {
	ev := events.NewEvent(eventType, "incident", data)
	if actor != nil {
		ev = ev.WithActor(actor.ID, string(actor.Role))
	}
	i.domainEvents = append(i.domainEvents, ev)
}
