package domain

import (
	"strings"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

type ResourceType string

const (
	ResourceVehicle   ResourceType = "vehicle"
	ResourceEquipment ResourceType = "equipment"
	ResourceMedical   ResourceType = "medical"
	ResourceShelter   ResourceType = "shelter"
	ResourceFood      ResourceType = "food"
	ResourceOther     ResourceType = "other"
)

type ResourceCondition string

const (
	ConditionExcellent ResourceCondition = "excellent"
	ConditionGood      ResourceCondition = "good"
	ConditionFair      ResourceCondition = "fair"
	ConditionPoor      ResourceCondition = "poor"
)

type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceInUse       ResourceStatus = "in-use"
	ResourceMaintenance ResourceStatus = "maintenance"
	ResourceUnavailable ResourceStatus = "unavailable"
)

// Resource is district equipment or supplies, tracked independently of incidents
type Resource struct {
	ID          types.ID          `json:"id"`
	DistrictID  types.ID          `json:"district_id"`
	Name        string            `json:"name"`
	Type        ResourceType      `json:"type"`
	Quantity    int               `json:"quantity"`
	Unit        string            `json:"unit"`
	Condition   ResourceCondition `json:"condition"`
	Status      ResourceStatus    `json:"status"`
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`

	DistrictName string `json:"district_name,omitempty"`
}

// ResourceSpec holds caller-supplied resource fields; zero values take defaults
type ResourceSpec struct {
	Name        string
	Type        string
	Quantity    *int
	Unit        string
	Condition   string
	Description string
}

// NewResource creates an available resource. Quantity defaults to 1,
// unit to "unit" and condition to good.
func NewResource(districtID types.ID, s ResourceSpec) (*Resource, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, errors.Validation("resource name is required", map[string]string{"name": "is required"})
	}

	rt := ResourceType(s.Type)
	switch rt {
	case ResourceVehicle, ResourceEquipment, ResourceMedical, ResourceShelter, ResourceFood, ResourceOther:
	default:
		return nil, errors.Validation("invalid resource type", map[string]string{"type": s.Type})
	}

	quantity := 1
	if s.Quantity != nil {
		quantity = *s.Quantity
	}
	if quantity < 0 {
		return nil, errors.Validation("quantity cannot be negative", map[string]string{"quantity": "must be at least 0"})
	}

	condition := ConditionGood
	if s.Condition != "" {
		condition = ResourceCondition(s.Condition)
		switch condition {
		case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		default:
			return nil, errors.Validation("invalid resource condition", map[string]string{"condition": s.Condition})
		}
	}

	return &Resource{
		ID:          types.NewID(),
		DistrictID:  districtID,
		Name:        name,
		Type:        rt,
		Quantity:    quantity,
		Unit:        orDefault(s.Unit, "unit"),
		Condition:   condition,
		Status:      ResourceAvailable,
		Description: s.Description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
