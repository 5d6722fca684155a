package incident

import (
	"context"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// PostMessage appends a message to the incident's chat thread
func (s *Service) PostMessage(ctx context.Context, actor *domain.Actor, incidentID types.ID, body string) (*domain.ChatMessage, error) {
	var msg *domain.ChatMessage
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		incident, err := tx.GetIncident(ctx, incidentID)
		if err != nil {
			return err
		}
		if err := s.gate.Check(actor, access.ActionChatPost, access.Target{
			DistrictID: &incident.DistrictID,
			OwnerID:    &incident.ReporterActorID,
		}); err != nil {
			return err
		}

		msg, err = domain.NewChatMessage(incident.ID, actor, body)
		if err != nil {
			return err
		}
		return tx.CreateChatMessage(ctx, msg)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("chat message posted",
		zap.String("incident_id", incidentID.String()),
		zap.String("message_id", msg.ID.String()),
	)
	return msg, nil
}

// ListMessages returns the thread oldest first
func (s *Service) ListMessages(ctx context.Context, actor *domain.Actor, incidentID types.ID) ([]domain.ChatMessage, error) {
	if _, err := s.Get(ctx, actor, incidentID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListChatMessages(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return messages, nil
}
