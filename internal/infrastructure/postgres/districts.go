package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

const districtColumns = `id, name, code, population, contact_person, contact_number, created_at`

func scanDistrict(row pgx.Row) (domain.District, error) {
	var d domain.District
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Population, &d.ContactPerson, &d.ContactNumber, &d.CreatedAt)
	return d, err
}

// UpsertDistrict inserts d unless its code is already present
func (r *queries) UpsertDistrict(ctx context.Context, d *domain.District) (bool, error) {
	ctx, done := r.bound(ctx, "upsert_district")
	defer done()

	tag, err := r.q.Exec(ctx, `
		INSERT INTO districts (id, name, code, population, contact_person, contact_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING`,
		d.ID, d.Name, d.Code, d.Population, d.ContactPerson, d.ContactNumber, d.CreatedAt,
	)
	if err != nil {
		return false, translate(err, "district", d.Code, "failed to upsert district")
	}
	return tag.RowsAffected() == 1, nil
}

// GetDistrict finds a district by ID
func (r *queries) GetDistrict(ctx context.Context, id types.ID) (*domain.District, error) {
	ctx, done := r.bound(ctx, "get_district")
	defer done()

	d, err := scanDistrict(r.q.QueryRow(ctx, `SELECT `+districtColumns+` FROM districts WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "district", id.String(), "failed to find district")
	}
	return &d, nil
}

// GetDistrictByCode finds a district by its code
func (r *queries) GetDistrictByCode(ctx context.Context, code string) (*domain.District, error) {
	ctx, done := r.bound(ctx, "get_district_by_code")
	defer done()

	d, err := scanDistrict(r.q.QueryRow(ctx, `SELECT `+districtColumns+` FROM districts WHERE code = $1`, code))
	if err != nil {
		return nil, translate(err, "district", code, "failed to find district")
	}
	return &d, nil
}

// ListDistricts lists districts by name, up to limit when positive
func (r *queries) ListDistricts(ctx context.Context, limit int) ([]domain.District, error) {
	ctx, done := r.bound(ctx, "list_districts")
	defer done()

	query := `SELECT ` + districtColumns + ` FROM districts ORDER BY name`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "district", "", "failed to list districts")
	}
	districts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.District, error) {
		return scanDistrict(row)
	})
	if err != nil {
		return nil, translate(err, "district", "", "failed to scan districts")
	}
	return districts, nil
}

// CountDistricts counts all districts
func (r *queries) CountDistricts(ctx context.Context) (int, error) {
	return r.count(ctx, "count_districts", `SELECT COUNT(*) FROM districts`)
}

func (r *queries) count(ctx context.Context, op, query string, args ...any) (int, error) {
	ctx, done := r.bound(ctx, op)
	defer done()

	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, translate(err, "", "", "failed to "+op)
	}
	return n, nil
}

const resourceColumns = `r.id, r.district_id, r.name, r.type, r.quantity, r.unit, r.condition,
	r.status, r.description, r.created_at, COALESCE(d.name, '')`

// CreateResource inserts a resource
func (r *queries) CreateResource(ctx context.Context, res *domain.Resource) error {
	ctx, done := r.bound(ctx, "create_resource")
	defer done()

	_, err := r.q.Exec(ctx, `
		INSERT INTO resources (id, district_id, name, type, quantity, unit, condition, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID, res.DistrictID, res.Name, res.Type, res.Quantity, res.Unit,
		res.Condition, res.Status, res.Description, res.CreatedAt,
	)
	return translate(err, "resource", res.ID.String(), "failed to create resource")
}

// ListResources lists resources by name, optionally within one district
func (r *queries) ListResources(ctx context.Context, f domain.ResourceFilter) ([]domain.Resource, error) {
	ctx, done := r.bound(ctx, "list_resources")
	defer done()

	rows, err := r.q.Query(ctx, `
		SELECT `+resourceColumns+`
		FROM resources r
		LEFT JOIN districts d ON d.id = r.district_id
		WHERE ($1::uuid IS NULL OR r.district_id = $1)
		ORDER BY r.name`, f.DistrictID)
	if err != nil {
		return nil, translate(err, "resource", "", "failed to list resources")
	}
	resources, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Resource, error) {
		var res domain.Resource
		err := row.Scan(&res.ID, &res.DistrictID, &res.Name, &res.Type, &res.Quantity, &res.Unit,
			&res.Condition, &res.Status, &res.Description, &res.CreatedAt, &res.DistrictName)
		return res, err
	})
	if err != nil {
		return nil, translate(err, "resource", "", "failed to scan resources")
	}
	return resources, nil
}

// CountResources counts all resources
func (r *queries) CountResources(ctx context.Context) (int, error) {
	return r.count(ctx, "count_resources", `SELECT COUNT(*) FROM resources`)
}
