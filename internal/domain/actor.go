package domain

import (
	"strings"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// Role is the single authorization attribute of an Actor
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleResponder Role = "responder"
	RoleMDRRMO    Role = "mdrrmo"
	RoleOfficial  Role = "official"
)

// Roles lists every valid role
var Roles = []Role{RoleCitizen, RoleResponder, RoleMDRRMO, RoleOfficial}

// ParseRole validates a role string
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Actor is an account holder. Role never changes after creation.
type Actor struct {
	ID           types.ID  `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DistrictID   *types.ID `json:"district_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewActor creates an actor, enforcing that officials belong to a district
func NewActor(name, email, passwordHash string, role Role, districtID *types.ID) (*Actor, error) {
	if _, ok := ParseRole(string(role)); !ok {
		return nil, errors.Validation("invalid role", map[string]string{"role": string(role)})
	}
	if role == RoleOfficial && districtID == nil {
		return nil, errors.Validation("officials must belong to a district", map[string]string{"district_id": "is required"})
	}
	return &Actor{
		ID:           types.NewID(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		DistrictID:   districtID,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InDistrict reports whether the actor belongs to district id
func (a *Actor) InDistrict(id types.ID) bool {
	return a.DistrictID != nil && *a.DistrictID == id
}
