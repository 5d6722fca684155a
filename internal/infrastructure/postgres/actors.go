package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

const actorColumns = `id, name, email, password_hash, role, district_id, created_at`

func scanActor(row pgx.Row) (*domain.Actor, error) {
	a := &domain.Actor{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.DistrictID, &a.CreatedAt)
	return a, err
}

// CreateActor inserts a new actor
func (r *queries) CreateActor(ctx context.Context, a *domain.Actor) error {
	ctx, done := r.bound(ctx, "create_actor")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO actors (id, name, email, password_hash, role, district_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Role, a.DistrictID, a.CreatedAt,
	)
	return translate(err, "actor", a.ID.String(), "failed to create actor")
}

// GetActor finds an actor by ID
func (r *queries) GetActor(ctx context.Context, id types.ID) (*domain.Actor, error) {
	ctx, done := r.bound(ctx, "get_actor")
	defer done()

	a, err := scanActor(r.q.QueryRow(ctx, `SELECT `+actorColumns+` FROM actors WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "actor", id.String(), "failed to find actor")
	}
	return a, nil
}

// GetActorByEmail finds an actor by case-insensitive email
func (r *queries) GetActorByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	ctx, done := r.bound(ctx, "get_actor_by_email")
	defer done()

	email = domain.NormalizeEmail(email)
	a, err := scanActor(r.q.QueryRow(ctx, `SELECT `+actorColumns+` FROM actors WHERE lower(email) = $1`, email))
	if err != nil {
		return nil, translate(err, "actor", email, "failed to find actor")
	}
	return a, nil
}

// CreateCitizen inserts the resident profile of a citizen actor
func (r *queries) CreateCitizen(ctx context.Context, c *domain.Citizen) error {
	ctx, done := r.bound(ctx, "create_citizen")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO citizens (id, actor_id, district_id, name, contact_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ActorID, c.DistrictID, c.Name, c.ContactNumber, c.CreatedAt,
	)
	return translate(err, "citizen", c.ID.String(), "failed to create citizen")
}

// CountCitizens counts citizens registered in a district
func (r *queries) CountCitizens(ctx context.Context, districtID types.ID) (int, error) {
	ctx, done := r.bound(ctx, "count_citizens")
	defer done()

	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM citizens WHERE district_id = $1`, districtID).Scan(&n)
	if err != nil {
		return 0, translate(err, "citizen", "", "failed to count citizens")
	}
	return n, nil
}
