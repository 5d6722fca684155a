package domain

import (
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// District is a barangay; reference data seeded once
type District struct {
	ID            types.ID  `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Population    int       `json:"population"`
	ContactPerson string    `json:"contact_person"`
	ContactNumber string    `json:"contact_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// Citizen is the resident profile created alongside a citizen Actor
type Citizen struct {
	ID            types.ID  `json:"id"`
	ActorID       types.ID  `json:"actor_id"`
	DistrictID    *types.ID `json:"district_id,omitempty"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewCitizen creates the citizen profile for actor
func NewCitizen(actor *Actor, contactNumber string) *Citizen {
	return &Citizen{
		ID:            types.NewID(),
		ActorID:       actor.ID,
		DistrictID:    actor.DistrictID,
		Name:          actor.Name,
		ContactNumber: contactNumber,
		CreatedAt:     time.Now().UTC(),
	}
}
