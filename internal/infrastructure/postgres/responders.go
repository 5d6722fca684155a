package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

const responderSelect = `
	SELECT r.id, r.district_id, r.actor_id, r.first_name, r.middle_name, r.last_name,
		r.contact_number, r.position, r.specialization, r.status, r.created_at, r.updated_at,
		COALESCE(d.name, '')
	FROM responders r
	LEFT JOIN districts d ON d.id = r.district_id`

func scanResponder(row pgx.Row) (domain.Responder, error) {
	var res domain.Responder
	err := row.Scan(
		&res.ID, &res.DistrictID, &res.ActorID, &res.FirstName, &res.MiddleName, &res.LastName,
		&res.ContactNumber, &res.Position, &res.Specialization, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		&res.DistrictName,
	)
	return res, err
}

// CreateResponder inserts a responder profile
func (r *queries) CreateResponder(ctx context.Context, res *domain.Responder) error {
	ctx, done := r.bound(ctx, "create_responder")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO responders (
			id, district_id, actor_id, first_name, middle_name, last_name,
			contact_number, position, specialization, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.ID, res.DistrictID, res.ActorID, res.FirstName, res.MiddleName, res.LastName,
		res.ContactNumber, res.Position, res.Specialization, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	return translate(err, "responder", res.ID.String(), "failed to create responder")
}

func (r *queries) oneResponder(ctx context.Context, op, where string, arg any) (*domain.Responder, error) {
	ctx, done := r.bound(ctx, op)
	defer done()

	res, err := scanResponder(r.q.QueryRow(ctx, responderSelect+` WHERE `+where, arg))
	if err != nil {
		id := ""
		if v, ok := arg.(types.ID); ok {
			id = v.String()
		}
		return nil, translate(err, "responder", id, "failed to find responder")
	}
	return &res, nil
}

// GetResponder finds a responder by ID
func (r *queries) GetResponder(ctx context.Context, id types.ID) (*domain.Responder, error) {
	return r.oneResponder(ctx, "get_responder", `r.id = $1`, id)
}

// LockResponder finds a responder by ID and locks its row until the transaction ends
func (r *queries) LockResponder(ctx context.Context, id types.ID) (*domain.Responder, error) {
	return r.oneResponder(ctx, "lock_responder", `r.id = $1 FOR UPDATE OF r`, id)
}

// GetResponderByActor finds the profile owned by an actor
func (r *queries) GetResponderByActor(ctx context.Context, actorID types.ID) (*domain.Responder, error) {
	return r.oneResponder(ctx, "get_responder_by_actor", `r.actor_id = $1`, actorID)
}

// LockResponderByActor finds and locks the profile owned by an actor
func (r *queries) LockResponderByActor(ctx context.Context, actorID types.ID) (*domain.Responder, error) {
	return r.oneResponder(ctx, "lock_responder_by_actor", `r.actor_id = $1 FOR UPDATE OF r`, actorID)
}

// UpdateResponder writes the mutable responder fields: owner and status
func (r *queries) UpdateResponder(ctx context.Context, res *domain.Responder) error {
	ctx, done := r.bound(ctx, "update_responder")
	defer done()

	tag, err := r.q.Exec(ctx, `
		UPDATE responders SET actor_id = $2, status = $3, updated_at = $4
		WHERE id = $1`,
		res.ID, res.ActorID, res.Status, res.UpdatedAt,
	)
	if err != nil {
		return translate(err, "responder", res.ID.String(), "failed to update responder")
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "responder", res.ID.String(), "")
	}
	return nil
}

// ListResponders lists responders by last name
func (r *queries) ListResponders(ctx context.Context, f domain.ResponderFilter) ([]domain.Responder, error) {
	ctx, done := r.bound(ctx, "list_responders")
	defer done()

	rows, err := r.q.Query(ctx, responderSelect+`
		WHERE ($1::uuid IS NULL OR r.district_id = $1)
			AND ($2 = '' OR r.status = $2)
		ORDER BY r.last_name, r.first_name`, f.DistrictID, string(f.Status))
	if err != nil {
		return nil, translate(err, "responder", "", "failed to list responders")
	}
	return collectResponders(rows)
}

func collectResponders(rows pgx.Rows) ([]domain.Responder, error) {
	responders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Responder, error) {
		return scanResponder(row)
	})
	if err != nil {
		return nil, translate(err, "responder", "", "failed to scan responders")
	}
	return responders, nil
}

// CountResponders counts all responders
func (r *queries) CountResponders(ctx context.Context) (int, error) {
	return r.count(ctx, "count_responders", `SELECT COUNT(*) FROM responders`)
}

// HasOpenAssignment reports whether the responder reported on a non-closed incident
func (r *queries) HasOpenAssignment(ctx context.Context, responderID types.ID, except *types.ID) (bool, error) {
	ctx, done := r.bound(ctx, "has_open_assignment")
	defer done()

	var open bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM assignment_reports ar
			JOIN incidents i ON i.id = ar.incident_id
			WHERE ar.responder_id = $1
				AND i.status <> 'closed'
				AND ($2::uuid IS NULL OR ar.incident_id <> $2)
		)`, responderID, except).Scan(&open)
	if err != nil {
		return false, translate(err, "responder", responderID.String(), "failed to check assignments")
	}
	return open, nil
}

// RespondersOnIncident lists responders that filed a report on the incident
func (r *queries) RespondersOnIncident(ctx context.Context, incidentID types.ID) ([]domain.Responder, error) {
	ctx, done := r.bound(ctx, "responders_on_incident")
	defer done()

	rows, err := r.q.Query(ctx, responderSelect+`
		WHERE r.id IN (SELECT responder_id FROM assignment_reports WHERE incident_id = $1)
		ORDER BY r.last_name, r.first_name`, incidentID)
	if err != nil {
		return nil, translate(err, "responder", "", "failed to list assigned responders")
	}
	return collectResponders(rows)
}
