package events

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
)

// reactorTimeout bounds one Dispatch call once it is detached from the caller
const reactorTimeout = 10 * time.Second

type reactor struct {
	name    string
	pattern string
	handle  Handler
}

// Dispatcher routes events to registered reactors in-process.
// Reactors run synchronously, in registration order, after the
// originating transaction has committed. A failing reactor is logged
// and never affects the caller or the remaining reactors.
type Dispatcher struct {
	mu       sync.RWMutex
	reactors []reactor
	log      *zap.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{log: logging.OrNop(log).Named("events")}
}

// Register adds a reactor for events matching pattern ("incident.created",
// "incident.*" or "*").
func (d *Dispatcher) Register(name, pattern string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reactors = append(d.reactors, reactor{name: name, pattern: pattern, handle: h})
}

// Dispatch delivers each event to every matching reactor. The work has
// already committed, so reactors keep running when ctx is cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, evs ...Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reactorTimeout)
	defer cancel()

	d.mu.RLock()
	reactors := make([]reactor, len(d.reactors))
	copy(reactors, d.reactors)
	d.mu.RUnlock()

	reqID := middleware.GetReqID(ctx)
	for _, ev := range evs {
		if ev.CorrelationID == "" && reqID != "" {
			ev = ev.WithCorrelation(reqID)
		}
		for _, r := range reactors {
			if !matchesPattern(ev.Type, r.pattern) {
				continue
			}
			d.run(ctx, r, ev)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, r reactor, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			metrics.RecordReactorFailure(r.name, ev.Type)
			d.log.Error("reactor panicked",
				zap.String("reactor", r.name),
				zap.String("event_type", ev.Type),
				zap.String("event_id", ev.ID),
				zap.Any("panic", p),
			)
		}
	}()

	if err := r.handle(ctx, ev); err != nil {
		metrics.RecordReactorFailure(r.name, ev.Type)
		d.log.Warn("reactor failed",
			zap.String("reactor", r.name),
			zap.String("event_type", ev.Type),
			zap.String("event_id", ev.ID),
			zap.String("correlation_id", ev.CorrelationID),
			zap.Error(err),
		)
	}
}

// matchesPattern checks if an event type matches a wildcard pattern
func matchesPattern(eventType, pattern string) bool {
	if pattern == "*" {
		return true
	}

	// "incident.*" matches "incident.created", "incident.status_changed"
	patternParts := strings.Split(pattern, ".")
	typeParts := strings.Split(eventType, ".")

	for i, pp := range patternParts {
		if pp == "*" {
			return true
		}
		if i >= len(typeParts) || pp != typeParts[i] {
			return false
		}
	}

	return len(patternParts) == len(typeParts)
}
