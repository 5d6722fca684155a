// Package incident runs the incident lifecycle: reporting, status changes,
// listing and the per-incident chat thread.
package incident

import (
	"context"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/validate"
)

// MsgReported is shown to the reporter after a successful create
const MsgReported = "Incident reported successfully!"

// Service is the incident lifecycle manager
type Service struct {
	store      domain.Store
	gate       *access.Gate
	dispatcher *events.Dispatcher
	cfg        config.IncidentConfig
	log        *zap.Logger
}

// NewService creates a new incident service
func NewService(store domain.Store, gate *access.Gate, dispatcher *events.Dispatcher, cfg config.IncidentConfig, log *zap.Logger) *Service {
	return &Service{
		store:      store,
		gate:       gate,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        logging.OrNop(log).Named("incident"),
	}
}

// CreateInput is a citizen's (or staff member's) incident report
type CreateInput struct {
	Type             string    `json:"type" validate:"required,max=100"`
	Severity         string    `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Description      string    `json:"description" validate:"max=5000"`
	Location         string    `json:"location" validate:"max=500"`
	Latitude         *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Casualties       int       `json:"casualties" validate:"gte=0"`
	AffectedFamilies int       `json:"affected_families" validate:"gte=0"`
	DistrictID       *types.ID `json:"district_id" validate:"omitempty,uuid"`
}

// Create records a new incident in status reported and announces it
func (s *Service) Create(ctx context.Context, actor *domain.Actor, in CreateInput) (types.Result[*domain.Incident], error) {
	var res types.Result[*domain.Incident]
	if actor == nil {
		return res, errors.Unauthenticated("authentication required")
	}
	if err := validate.Struct(in); err != nil {
		return res, err
	}

	location := types.Location{Text: in.Location}
	if in.Latitude != nil && in.Longitude != nil {
		location = location.WithCoordinates(*in.Latitude, *in.Longitude)
	}

	var incident *domain.Incident
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		districtID, err := s.resolveDistrict(ctx, tx, actor, in.DistrictID)
		if err != nil {
			return err
		}
		if err := s.gate.Check(actor, access.ActionIncidentCreate, access.InDistrict(districtID)); err != nil {
			return err
		}

		incident, err = domain.NewIncident(actor, districtID, domain.IncidentDraft{
			Type:             in.Type,
			Severity:         in.Severity,
			Description:      in.Description,
			Location:         location,
			Casualties:       in.Casualties,
			AffectedFamilies: in.AffectedFamilies,
		})
		if err != nil {
			return err
		}
		return tx.CreateIncident(ctx, incident)
	})
	if err != nil {
		return res, err
	}

	metrics.RecordIncidentCreated(string(incident.Severity))
	s.log.Info("incident reported",
		zap.String("incident_id", incident.ID.String()),
		zap.String("district_id", incident.DistrictID.String()),
		zap.String("type", incident.Type),
		zap.String("severity", string(incident.Severity)),
	)
	s.dispatcher.Dispatch(ctx, incident.PullEvents()...)

	return types.NewResult(incident, MsgReported), nil
}

// resolveDistrict picks the explicit district, then the reporter's own,
// then the configured fallback barangay
func (s *Service) resolveDistrict(ctx context.Context, tx domain.Tx, actor *domain.Actor, explicit *types.ID) (types.ID, error) {
	if explicit != nil {
		d, err := tx.GetDistrict(ctx, *explicit)
		if err != nil {
			return "", err
		}
		return d.ID, nil
	}
	if actor.DistrictID != nil {
		return *actor.DistrictID, nil
	}
	d, err := tx.GetDistrictByCode(ctx, s.cfg.FallbackDistrictCode)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// SetStatus moves an incident to a new lifecycle state
func (s *Service) SetStatus(ctx context.Context, actor *domain.Actor, id types.ID, status string) (types.Result[*domain.Incident], error) {
	var res types.Result[*domain.Incident]
	if actor == nil {
		return res, errors.Unauthenticated("authentication required")
	}

	var incident *domain.Incident
	var from domain.IncidentStatus
	changed := false
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		incident, err = tx.LockIncident(ctx, id)
		if err != nil {
			return err
		}
		if err := s.gate.Check(actor, access.ActionIncidentUpdateStatus, access.InDistrict(incident.DistrictID)); err != nil {
			return err
		}

		from = incident.Status
		changed, err = incident.SetStatus(status, actor, s.cfg.StrictOrdering)
		if err != nil || !changed {
			return err
		}
		return tx.UpdateIncidentStatus(ctx, incident)
	})
	if err != nil {
		return res, err
	}

	if !changed {
		return types.NewResult(incident, "Incident status unchanged"), nil
	}

	metrics.RecordIncidentStatusChange(string(from), string(incident.Status))
	s.log.Info("incident status changed",
		zap.String("incident_id", incident.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(incident.Status)),
		zap.String("actor_id", actor.ID.String()),
	)
	s.dispatcher.Dispatch(ctx, incident.PullEvents()...)

	return types.NewResult(incident, "Incident status updated to "+string(incident.Status)), nil
}

// Get returns one incident the actor may read
func (s *Service) Get(ctx context.Context, actor *domain.Actor, id types.ID) (*domain.Incident, error) {
	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(actor, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

func (s *Service) checkRead(actor *domain.Actor, incident *domain.Incident) error {
	return s.gate.Check(actor, access.ActionIncidentRead, access.Target{
		DistrictID: &incident.DistrictID,
		OwnerID:    &incident.ReporterActorID,
	})
}

// ListFilter holds the optional list filters
type ListFilter struct {
	DistrictID *types.ID
	Status     string
	Limit      int
}

// List returns incidents newest first, narrowed to what actor may see
func (s *Service) List(ctx context.Context, actor *domain.Actor, f ListFilter) ([]domain.Incident, error) {
	scope, err := s.gate.ListScope(actor, access.ActionIncidentRead, f.DistrictID)
	if err != nil {
		return nil, err
	}

	filter := domain.IncidentFilter{
		DistrictID: scope.DistrictID,
		ReporterID: scope.OwnerID,
		Limit:      f.Limit,
	}
	if f.Status != "" {
		status, ok := domain.ParseIncidentStatus(f.Status)
		if !ok {
			return nil, errors.Validation("invalid status filter", map[string]string{"status": f.Status})
		}
		filter.Statuses = []domain.IncidentStatus{status}
	}

	incidents, err := s.store.ListIncidents(ctx, filter)
	if err != nil {
		return nil, err
	}
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	return incidents, nil
}
