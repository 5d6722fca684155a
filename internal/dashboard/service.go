// Package dashboard aggregates the landing view each role sees after login.
package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
)

const (
	recentIncidentsLimit = 5
	districtsLimit       = 24
	recentReportsLimit   = 10
)

// Stats are platform-wide counts
type Stats struct {
	TotalIncidents    int `json:"total_incidents"`
	ActiveIncidents   int `json:"active_incidents"`
	ResolvedIncidents int `json:"resolved_incidents"`
	Districts         int `json:"districts"`
	Responders        int `json:"responders"`
	Resources         int `json:"resources"`
}

// View is the dashboard payload. Role extensions are nil when the actor
// is not entitled to them.
type View struct {
	Actor           *domain.Actor     `json:"actor"`
	Stats           Stats             `json:"stats"`
	RecentIncidents []domain.Incident `json:"recent_incidents"`

	Districts []domain.District `json:"districts,omitempty"`

	District          *domain.District `json:"district,omitempty"`
	DistrictIncidents *int             `json:"district_incidents,omitempty"`

	Responder *domain.Responder         `json:"responder,omitempty"`
	Reports   []domain.AssignmentReport `json:"reports,omitempty"`
}

// Aggregator builds dashboard views
type Aggregator struct {
	store domain.Store
	gate  *access.Gate
	log   *zap.Logger
}

// NewAggregator creates a new dashboard aggregator
func NewAggregator(store domain.Store, gate *access.Gate, log *zap.Logger) *Aggregator {
	return &Aggregator{
		store: store,
		gate:  gate,
		log:   logging.OrNop(log).Named("dashboard"),
	}
}

// Build assembles the view for actor. The actor must still exist in the store.
func (a *Aggregator) Build(ctx context.Context, actor *domain.Actor) (*View, error) {
	if actor == nil {
		return nil, errors.Unauthenticated("authentication required")
	}
	stored, err := a.store.GetActor(ctx, actor.ID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Unauthenticated("account no longer exists")
	}
	if err != nil {
		return nil, err
	}

	stats, err := a.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := a.store.ListIncidents(ctx, domain.IncidentFilter{Limit: recentIncidentsLimit})
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []domain.Incident{}
	}

	view := &View{Actor: stored, Stats: stats, RecentIncidents: recent}

	if a.gate.Authorize(stored, access.ActionDashboardGlobal, access.Target{}) {
		if view.Districts, err = a.store.ListDistricts(ctx, districtsLimit); err != nil {
			return nil, err
		}
	}

	if stored.DistrictID != nil && a.gate.Authorize(stored, access.ActionDashboardDistrict, access.InDistrict(*stored.DistrictID)) {
		if err := a.districtExtension(ctx, view, stored); err != nil {
			return nil, err
		}
	}

	if a.gate.Authorize(stored, access.ActionDashboardResponder, access.Target{OwnerID: &stored.ID}) {
		if err := a.responderExtension(ctx, view, stored); err != nil {
			return nil, err
		}
	}

	return view, nil
}

func (a *Aggregator) districtExtension(ctx context.Context, view *View, actor *domain.Actor) error {
	district, err := a.store.GetDistrict(ctx, *actor.DistrictID)
	if err != nil {
		return err
	}
	count, err := a.store.CountIncidents(ctx, domain.IncidentFilter{DistrictID: actor.DistrictID})
	if err != nil {
		return err
	}
	view.District = district
	view.DistrictIncidents = &count
	return nil
}

// responderExtension is skipped quietly for responder accounts that have
// not claimed a profile yet
func (a *Aggregator) responderExtension(ctx context.Context, view *View, actor *domain.Actor) error {
	responder, err := a.store.GetResponderByActor(ctx, actor.ID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	reports, err := a.store.ListReportsByResponder(ctx, responder.ID, recentReportsLimit)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []domain.AssignmentReport{}
	}
	view.Responder = responder
	view.Reports = reports
	return nil
}

// Stats counts incidents, districts, responders and resources
func (a *Aggregator) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var err error

	if s.TotalIncidents, err = a.store.CountIncidents(ctx, domain.IncidentFilter{}); err != nil {
		return s, err
	}
	if s.ActiveIncidents, err = a.store.CountIncidents(ctx, domain.IncidentFilter{Statuses: domain.ActiveStatuses}); err != nil {
		return s, err
	}
	if s.ResolvedIncidents, err = a.store.CountIncidents(ctx, domain.IncidentFilter{Statuses: domain.ResolvedStatuses}); err != nil {
		return s, err
	}
	if s.Districts, err = a.store.CountDistricts(ctx); err != nil {
		return s, err
	}
	if s.Responders, err = a.store.CountResponders(ctx); err != nil {
		return s, err
	}
	if s.Resources, err = a.store.CountResources(ctx); err != nil {
		return s, err
	}
	return s, nil
}
