// Package notification turns incident events into role-targeted
// notification records and serves them back to their recipients.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// rule builds the notification for one event type; nil means none
type rule func(ev events.Event) (*domain.Notification, error)

// Fanout is the event reactor that creates notifications
type Fanout struct {
	store domain.Store
	rules map[string]rule
	log   *zap.Logger
}

// NewFanout creates the fanout with the default rule set. Status change
// updates for district officials are added when cfg.StatusUpdates is set.
func NewFanout(store domain.Store, cfg config.NotificationConfig, log *zap.Logger) *Fanout {
	f := &Fanout{
		store: store,
		rules: map[string]rule{
			domain.EventIncidentCreated: incidentCreatedAlert,
		},
		log: logging.OrNop(log).Named("notification"),
	}
	if cfg.StatusUpdates {
		f.rules[domain.EventIncidentStatusChanged] = statusChangedUpdate
	}
	return f
}

// Register subscribes the fanout to every event type it has a rule for
func (f *Fanout) Register(d *events.Dispatcher) {
	for eventType := range f.rules {
		d.Register("notification.fanout", eventType, f.Handle)
	}
}

// Handle adapts OnEvent to events.Handler
func (f *Fanout) Handle(ctx context.Context, ev events.Event) error {
	_, err := f.OnEvent(ctx, ev)
	return err
}

// OnEvent produces zero or one notification for ev. The referenced
// incident must still exist.
func (f *Fanout) OnEvent(ctx context.Context, ev events.Event) (*domain.Notification, error) {
	build, ok := f.rules[ev.Type]
	if !ok {
		return nil, nil
	}

	n, err := build(ev)
	if err != nil || n == nil {
		return nil, err
	}

	if _, err := f.store.GetIncident(ctx, n.IncidentID); err != nil {
		return nil, err
	}
	if err := f.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	metrics.RecordNotificationCreated(string(n.Type), string(n.TargetRole))
	f.log.Info("notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("incident_id", n.IncidentID.String()),
		zap.String("target_role", string(n.TargetRole)),
		zap.String("event_id", ev.ID),
	)
	return n, nil
}

func incidentCreatedAlert(ev events.Event) (*domain.Notification, error) {
	payload, ok := ev.Data.(domain.IncidentCreated)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Type)
	}
	i := payload.Incident

	return &domain.Notification{
		ID:             types.NewID(),
		IncidentID:     i.ID,
		Title:          fmt.Sprintf("New %s incident reported", i.Type),
		Message:        fmt.Sprintf("%s - Location: %s", i.Description, i.Location.Text),
		Type:           domain.NotificationAlert,
		TargetRole:     domain.RoleMDRRMO,
		TargetDistrict: i.DistrictID.Ptr(),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func statusChangedUpdate(ev events.Event) (*domain.Notification, error) {
	payload, ok := ev.Data.(domain.IncidentStatusChanged)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Type)
	}

	return &domain.Notification{
		ID:             types.NewID(),
		IncidentID:     payload.IncidentID,
		Title:          fmt.Sprintf("%s incident is now %s", payload.Type, payload.To),
		Message:        fmt.Sprintf("Status changed from %s to %s", payload.From, payload.To),
		Type:           domain.NotificationUpdate,
		TargetRole:     domain.RoleOfficial,
		TargetDistrict: payload.DistrictID.Ptr(),
		CreatedAt:      time.Now().UTC(),
	}, nil
}
