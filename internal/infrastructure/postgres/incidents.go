package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

const incidentSelect = `
	SELECT i.id, i.reporter_actor_id, i.district_id, i.type, i.severity, i.description,
		i.location, i.latitude, i.longitude, i.casualties, i.affected_families,
		i.status, i.reported_at, i.updated_at, COALESCE(d.name, '')
	FROM incidents i
	LEFT JOIN districts d ON d.id = i.district_id`

func scanIncident(row pgx.Row) (domain.Incident, error) {
	var i domain.Incident
	err := row.Scan(
		&i.ID, &i.ReporterActorID, &i.DistrictID, &i.Type, &i.Severity, &i.Description,
		&i.Location.Text, &i.Location.Latitude, &i.Location.Longitude, &i.Casualties, &i.AffectedFamilies,
		&i.Status, &i.ReportedAt, &i.UpdatedAt, &i.DistrictName,
	)
	return i, err
}

// CreateIncident inserts a new incident
func (r *queries) CreateIncident(ctx context.Context, i *domain.Incident) error {
	ctx, done := r.bound(ctx, "create_incident")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO incidents (
			id, reporter_actor_id, district_id, type, severity, description,
			location, latitude, longitude, casualties, affected_families,
			status, reported_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		i.ID, i.ReporterActorID, i.DistrictID, i.Type, i.Severity, i.Description,
		i.Location.Text, i.Location.Latitude, i.Location.Longitude, i.Casualties, i.AffectedFamilies,
		i.Status, i.ReportedAt, i.UpdatedAt,
	)
	return translate(err, "incident", i.ID.String(), "failed to create incident")
}

// GetIncident finds an incident by ID
func (r *queries) GetIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	ctx, done := r.bound(ctx, "get_incident")
	defer done()

	i, err := scanIncident(r.q.QueryRow(ctx, incidentSelect+` WHERE i.id = $1`, id))
	if err != nil {
		return nil, translate(err, "incident", id.String(), "failed to find incident")
	}
	return &i, nil
}

// LockIncident finds an incident and locks its row until the transaction ends
func (r *queries) LockIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return r.lockIncident(ctx, "lock_incident", ` FOR UPDATE OF i`, id)
}

// ShareLockIncident lets several reports read the incident while blocking
// a concurrent status change
func (r *queries) ShareLockIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return r.lockIncident(ctx, "share_lock_incident", ` FOR SHARE OF i`, id)
}

func (r *queries) lockIncident(ctx context.Context, op, lock string, id types.ID) (*domain.Incident, error) {
	ctx, done := r.bound(ctx, op)
	defer done()

	i, err := scanIncident(r.q.QueryRow(ctx, incidentSelect+` WHERE i.id = $1`+lock, id))
	if err != nil {
		return nil, translate(err, "incident", id.String(), "failed to lock incident")
	}
	return &i, nil
}

// UpdateIncidentStatus persists status and updated_at
func (r *queries) UpdateIncidentStatus(ctx context.Context, i *domain.Incident) error {
	ctx, done := r.bound(ctx, "update_incident_status")
	defer done()

	tag, err := r.q.Exec(ctx, `UPDATE incidents SET status = $2, updated_at = $3 WHERE id = $1`,
		i.ID, i.Status, i.UpdatedAt)
	if err != nil {
		return translate(err, "incident", i.ID.String(), "failed to update incident")
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "incident", i.ID.String(), "")
	}
	return nil
}

// incidentWhere builds the WHERE clause for f
func incidentWhere(f domain.IncidentFilter) (string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	if f.DistrictID != nil {
		conditions = append(conditions, fmt.Sprintf("i.district_id = $%d", argNum))
		args = append(args, *f.DistrictID)
		argNum++
	}
	if f.ReporterID != nil {
		conditions = append(conditions, fmt.Sprintf("i.reporter_actor_id = $%d", argNum))
		args = append(args, *f.ReporterID)
		argNum++
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for k, s := range f.Statuses {
			statuses[k] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("i.status = ANY($%d)", argNum))
		args = append(args, statuses)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// ListIncidents lists incidents newest first
func (r *queries) ListIncidents(ctx context.Context, f domain.IncidentFilter) ([]domain.Incident, error) {
	ctx, done := r.bound(ctx, "list_incidents")
	defer done()

	where, args := incidentWhere(f)
	query := incidentSelect + where + ` ORDER BY i.reported_at DESC, i.id`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "incident", "", "failed to list incidents")
	}
	incidents, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Incident, error) {
		return scanIncident(row)
	})
	if err != nil {
		return nil, translate(err, "incident", "", "failed to scan incidents")
	}
	return incidents, nil
}

// CountIncidents counts incidents matching f
func (r *queries) CountIncidents(ctx context.Context, f domain.IncidentFilter) (int, error) {
	where, args := incidentWhere(f)
	return r.count(ctx, "count_incidents", `SELECT COUNT(*) FROM incidents i`+where, args...)
}
