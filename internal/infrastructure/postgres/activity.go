package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// CreateReport appends an assignment report
func (r *queries) CreateReport(ctx context.Context, rep *domain.AssignmentReport) error {
	ctx, done := r.bound(ctx, "create_report")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO assignment_reports (id, incident_id, responder_id, content, action_taken, resources_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rep.ID, rep.IncidentID, rep.ResponderID, rep.Content, rep.ActionTaken, rep.ResourcesUsed, rep.CreatedAt,
	)
	return translate(err, "assignment report", rep.ID.String(), "failed to create report")
}

// ListReportsByResponder lists a responder's reports newest first
func (r *queries) ListReportsByResponder(ctx context.Context, responderID types.ID, limit int) ([]domain.AssignmentReport, error) {
	ctx, done := r.bound(ctx, "list_reports")
	defer done()

	query := `
		SELECT ar.id, ar.incident_id, ar.responder_id, ar.content, ar.action_taken, ar.resources_used,
			ar.created_at, i.type, i.status
		FROM assignment_reports ar
		JOIN incidents i ON i.id = ar.incident_id
		WHERE ar.responder_id = $1
		ORDER BY ar.created_at DESC`
	args := []any{responderID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "assignment report", "", "failed to list reports")
	}
	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AssignmentReport, error) {
		var rep domain.AssignmentReport
		err := row.Scan(&rep.ID, &rep.IncidentID, &rep.ResponderID, &rep.Content, &rep.ActionTaken,
			&rep.ResourcesUsed, &rep.CreatedAt, &rep.IncidentType, &rep.IncidentStatus)
		return rep, err
	})
	if err != nil {
		return nil, translate(err, "assignment report", "", "failed to scan reports")
	}
	return reports, nil
}

// CreateNotification inserts a notification
func (r *queries) CreateNotification(ctx context.Context, n *domain.Notification) error {
	ctx, done := r.bound(ctx, "create_notification")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO notifications (id, incident_id, title, message, type, target_role, target_district, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.IncidentID, n.Title, n.Message, n.Type, n.TargetRole, n.TargetDistrict, n.CreatedAt,
	)
	return translate(err, "notification", n.ID.String(), "failed to create notification")
}

// ListNotifications lists notifications addressed to a role, newest first
func (r *queries) ListNotifications(ctx context.Context, f domain.NotificationFilter) ([]domain.Notification, error) {
	ctx, done := r.bound(ctx, "list_notifications")
	defer done()

	query := `
		SELECT id, incident_id, title, message, type, target_role, target_district, created_at
		FROM notifications
		WHERE target_role = $1
			AND ($2 OR target_district IS NULL OR target_district = $3)
		ORDER BY created_at DESC`
	args := []any{string(f.TargetRole), f.AllDistricts, f.TargetDistrict}
	if f.Limit > 0 {
		query += ` LIMIT $4`
		args = append(args, f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "notification", "", "failed to list notifications")
	}
	notifications, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Notification, error) {
		var n domain.Notification
		err := row.Scan(&n.ID, &n.IncidentID, &n.Title, &n.Message, &n.Type, &n.TargetRole, &n.TargetDistrict, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, translate(err, "notification", "", "failed to scan notifications")
	}
	return notifications, nil
}

// CreateChatMessage appends a message to an incident thread
func (r *queries) CreateChatMessage(ctx context.Context, m *domain.ChatMessage) error {
	ctx, done := r.bound(ctx, "create_chat_message")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO chat_messages (id, incident_id, sender_actor_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.IncidentID, m.SenderActorID, m.Body, m.CreatedAt,
	)
	return translate(err, "chat message", m.ID.String(), "failed to create chat message")
}

// ListChatMessages lists an incident thread oldest first
func (r *queries) ListChatMessages(ctx context.Context, incidentID types.ID) ([]domain.ChatMessage, error) {
	ctx, done := r.bound(ctx, "list_chat_messages")
	defer done()

	rows, err := r.q.Query(ctx, `
		SELECT m.id, m.incident_id, m.sender_actor_id, m.body, m.created_at, COALESCE(a.name, '')
		FROM chat_messages m
		LEFT JOIN actors a ON a.id = m.sender_actor_id
		WHERE m.incident_id = $1
		ORDER BY m.created_at`, incidentID)
	if err != nil {
		return nil, translate(err, "chat message", "", "failed to list chat messages")
	}
	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ChatMessage, error) {
		var m domain.ChatMessage
		err := row.Scan(&m.ID, &m.IncidentID, &m.SenderActorID, &m.Body, &m.CreatedAt, &m.SenderName)
		return m, err
	})
	if err != nil {
		return nil, translate(err, "chat message", "", "failed to scan chat messages")
	}
	return messages, nil
}
