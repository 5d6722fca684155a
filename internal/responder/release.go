package responder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
)

// Register subscribes the release reactor when enabled
func (s *Service) Register(d *events.Dispatcher) {
	if s.cfg.ReleaseOnClose {
		d.Register("responder.release", domain.EventIncidentStatusChanged, s.ReleaseOnClose)
	}
}

// ReleaseOnClose returns on-duty responders to available once the
// incident they reported on closes, unless another open incident still
// holds them.
func (s *Service) ReleaseOnClose(ctx context.Context, ev events.Event) error {
	payload, ok := ev.Data.(domain.IncidentStatusChanged)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Type)
	}
	if payload.To != domain.StatusClosed {
		return nil
	}

	var released []events.Event
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		assigned, err := tx.RespondersOnIncident(ctx, payload.IncidentID)
		if err != nil {
			return err
		}

		for _, a := range assigned {
			r, err := tx.LockResponder(ctx, a.ID)
			if err != nil {
				return err
			}
			if r.Status != domain.ResponderOnDuty {
				continue
			}
			open, err := tx.HasOpenAssignment(ctx, r.ID, &payload.IncidentID)
			if err != nil {
				return err
			}
			if open {
				continue
			}

			relEv, err := s.setStatus(ctx, tx, nil, r, domain.ResponderAvailable)
			if err != nil {
				return err
			}
			released = append(released, relEv.WithCorrelation(ev.CorrelationID))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(released) > 0 {
		s.log.Info("responders released from closed incident",
			zap.String("incident_id", payload.IncidentID.String()),
			zap.Int("count", len(released)),
		)
		s.dispatcher.Dispatch(ctx, released...)
	}
	return nil
}
