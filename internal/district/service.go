// Package district serves the barangay reference data and the resources
// each district keeps on hand.
package district

import (
	"context"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/validate"
)

const (
	MsgResourceAdded = "Resource added successfully"

	recentIncidentsLimit = 5
)

// Service answers district and resource queries
type Service struct {
	store domain.Store
	gate  *access.Gate
	log   *zap.Logger
}

// NewService creates a new district service
func NewService(store domain.Store, gate *access.Gate, log *zap.Logger) *Service {
	return &Service{
		store: store,
		gate:  gate,
		log:   logging.OrNop(log).Named("district"),
	}
}

// List returns every district ordered by name
func (s *Service) List(ctx context.Context, actor *domain.Actor) ([]domain.District, error) {
	if err := s.gate.Check(actor, access.ActionDistrictRead, access.Target{}); err != nil {
		return nil, err
	}
	districts, err := s.store.ListDistricts(ctx, 0)
	if err != nil {
		return nil, err
	}
	if districts == nil {
		districts = []domain.District{}
	}
	return districts, nil
}

// Detail is a district with its resources, responders and latest incidents
type Detail struct {
	District        *domain.District   `json:"district"`
	Resources       []domain.Resource  `json:"resources"`
	RecentIncidents []domain.Incident  `json:"recent_incidents"`
	Responders      []domain.Responder `json:"responders"`
	CitizenCount    int                `json:"citizen_count"`
}

// Detail loads one district. Lists the actor may not read are left empty.
func (s *Service) Detail(ctx context.Context, actor *domain.Actor, id types.ID) (*Detail, error) {
	if err := s.gate.Check(actor, access.ActionDistrictRead, access.InDistrict(id)); err != nil {
		return nil, err
	}

	district, err := s.store.GetDistrict(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &Detail{
		District:        district,
		Resources:       []domain.Resource{},
		RecentIncidents: []domain.Incident{},
		Responders:      []domain.Responder{},
	}
	target := access.InDistrict(id)

	if s.gate.Authorize(actor, access.ActionResourceRead, target) {
		resources, err := s.store.ListResources(ctx, domain.ResourceFilter{DistrictID: &id})
		if err != nil {
			return nil, err
		}
		if resources != nil {
			detail.Resources = resources
		}
	}

	if s.gate.Authorize(actor, access.ActionIncidentRead, target) {
		incidents, err := s.store.ListIncidents(ctx, domain.IncidentFilter{DistrictID: &id, Limit: recentIncidentsLimit})
		if err != nil {
			return nil, err
		}
		if incidents != nil {
			detail.RecentIncidents = incidents
		}
	}

	if s.gate.Authorize(actor, access.ActionResponderRead, target) {
		responders, err := s.store.ListResponders(ctx, domain.ResponderFilter{DistrictID: &id})
		if err != nil {
			return nil, err
		}
		if responders != nil {
			detail.Responders = responders
		}
	}

	detail.CitizenCount, err = s.store.CountCitizens(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ResourceInput describes a new district resource
type ResourceInput struct {
	DistrictID  types.ID `json:"district_id" validate:"required,uuid"`
	Name        string   `json:"name" validate:"required,max=200"`
	Type        string   `json:"type" validate:"required,oneof=vehicle equipment medical shelter food other"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	Unit        string   `json:"unit" validate:"max=50"`
	Condition   string   `json:"condition" validate:"omitempty,oneof=excellent good fair poor"`
	Description string   `json:"description" validate:"max=2000"`
}

// AddResource records a new available resource for a district
func (s *Service) AddResource(ctx context.Context, actor *domain.Actor, in ResourceInput) (types.Result[*domain.Resource], error) {
	var res types.Result[*domain.Resource]
	if err := s.gate.Check(actor, access.ActionResourceCreate, access.InDistrict(in.DistrictID)); err != nil {
		return res, err
	}
	if err := validate.Struct(in); err != nil {
		return res, err
	}

	var resource *domain.Resource
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		district, err := tx.GetDistrict(ctx, in.DistrictID)
		if err != nil {
			return err
		}
		resource, err = domain.NewResource(district.ID, domain.ResourceSpec{
			Name:        in.Name,
			Type:        in.Type,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			Condition:   in.Condition,
			Description: in.Description,
		})
		if err != nil {
			return err
		}
		if err := tx.CreateResource(ctx, resource); err != nil {
			return err
		}
		resource.DistrictName = district.Name
		return nil
	})
	if err != nil {
		return res, err
	}

	s.log.Info("resource added",
		zap.String("resource_id", resource.ID.String()),
		zap.String("district_id", resource.DistrictID.String()),
		zap.String("type", string(resource.Type)),
	)
	return types.NewResult(resource, MsgResourceAdded), nil
}

// ListResources lists resources by name, narrowed to what the actor may see
func (s *Service) ListResources(ctx context.Context, actor *domain.Actor, districtID *types.ID) ([]domain.Resource, error) {
	scope, err := s.gate.ListScope(actor, access.ActionResourceRead, districtID)
	if err != nil {
		return nil, err
	}
	resources, err := s.store.ListResources(ctx, domain.ResourceFilter{DistrictID: scope.DistrictID})
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []domain.Resource{}
	}
	return resources, nil
}
