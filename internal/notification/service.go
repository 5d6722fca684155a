package notification

import (
	"context"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
)

const defaultListLimit = 50

// Service serves notifications to the actors they target
type Service struct {
	store domain.Store
	gate  *access.Gate
}

// NewService creates a new notification service
func NewService(store domain.Store, gate *access.Gate) *Service {
	return &Service{store: store, gate: gate}
}

// ListForActor returns notifications addressed to the actor's role and
// district, newest first
func (s *Service) ListForActor(ctx context.Context, actor *domain.Actor, limit int) ([]domain.Notification, error) {
	if err := s.gate.Check(actor, access.ActionNotificationRead, access.Target{}); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	notifications, err := s.store.ListNotifications(ctx, domain.NotificationFilter{
		TargetRole:     actor.Role,
		TargetDistrict: actor.DistrictID,
		AllDistricts:   actor.Role == domain.RoleMDRRMO,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}
