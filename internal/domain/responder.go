package domain

import (
	"strings"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// ResponderStatus is the availability of a field responder
type ResponderStatus string

const (
	ResponderAvailable   ResponderStatus = "available"
	ResponderOnDuty      ResponderStatus = "on-duty"
	ResponderOffDuty     ResponderStatus = "off-duty"
	ResponderUnavailable ResponderStatus = "unavailable"
)

// ParseResponderStatus fails with InvalidStatus for values outside the four states
func ParseResponderStatus(s string) (ResponderStatus, error) {
	switch st := ResponderStatus(s); st {
	case ResponderAvailable, ResponderOnDuty, ResponderOffDuty, ResponderUnavailable:
		return st, nil
	default:
		return "", errors.InvalidStatus(s, "status must be one of: available, on-duty, off-duty, unavailable")
	}
}

const (
	defaultPosition       = "Responder"
	defaultSpecialization = "General"
)

// Responder is a field agent profile. ActorID stays nil until a
// responder account claims the profile.
type Responder struct {
	ID             types.ID        `json:"id"`
	DistrictID     types.ID        `json:"district_id"`
	ActorID        *types.ID       `json:"actor_id"`
	FirstName      string          `json:"first_name"`
	MiddleName     string          `json:"middle_name,omitempty"`
	LastName       string          `json:"last_name"`
	ContactNumber  string          `json:"contact_number"`
	Position       string          `json:"position"`
	Specialization string          `json:"specialization"`
	Status         ResponderStatus `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// DistrictName is filled by list queries
	DistrictName string `json:"district_name,omitempty"`
}

// ResponderProfile holds the fields supplied when a responder is added
type ResponderProfile struct {
	FirstName      string
	MiddleName     string
	LastName       string
	ContactNumber  string
	Position       string
	Specialization string
	Status         string
}

// NewResponder creates an unclaimed responder, defaulting position,
// specialization and status
func NewResponder(districtID types.ID, p ResponderProfile) (*Responder, error) {
	status := ResponderAvailable
	if p.Status != "" {
		st, err := ParseResponderStatus(p.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}
	// A fresh profile has no assignments to be on duty for
	if status == ResponderOnDuty {
		return nil, errors.InvalidStatus(p.Status, "a new responder cannot start on-duty")
	}

	now := time.Now().UTC()
	return &Responder{
		ID:             types.NewID(),
		DistrictID:     districtID,
		FirstName:      strings.TrimSpace(p.FirstName),
		MiddleName:     strings.TrimSpace(p.MiddleName),
		LastName:       strings.TrimSpace(p.LastName),
		ContactNumber:  p.ContactNumber,
		Position:       orDefault(p.Position, defaultPosition),
		Specialization: orDefault(p.Specialization, defaultSpecialization),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FullName renders "First M. Last"
func (r *Responder) FullName() string {
	if r.MiddleName == "" {
		return r.FirstName + " " + r.LastName
	}
	initial := []rune(r.MiddleName)[0]
	return r.FirstName + " " + string(initial) + ". " + r.LastName
}

// IsClaimed reports whether an account owns this profile
func (r *Responder) IsClaimed() bool {
	return r.ActorID != nil
}

// OwnedBy reports whether actorID owns this profile
func (r *Responder) OwnedBy(actorID types.ID) bool {
	return r.ActorID != nil && *r.ActorID == actorID
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
