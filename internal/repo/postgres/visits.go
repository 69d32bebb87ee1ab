package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/visit"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

type VisitsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewVisitsRepo(pool *pgxpool.Pool, prom *observability.Prom) *VisitsRepo {
	return &VisitsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *VisitsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const visitColumns = `id, visit_date, notes, project_id, inspector_id, created_at`

func scanVisit(row pgx.Row) (visit.SiteVisit, error) {
	var v visit.SiteVisit

	err := row.Scan(
		&v.ID,
		&v.VisitDate,
		&v.Notes,
		&v.ProjectID,
		&v.InspectorID,
		&v.CreatedAt,
	)

	return v, err
}

func (r *VisitsRepo) Create(ctx context.Context, req visit.CreateSiteVisitRequest, inspectorID string) (visit.SiteVisit, error) {
	v := visit.NewFromCreateRequest(req, inspectorID)

	err := r.observe("visits.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO site_visits (`+visitColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			v.ID, v.VisitDate, v.Notes, v.ProjectID, v.InspectorID, v.CreatedAt,
		)
		return execErr
	})

	if err != nil {
		return visit.SiteVisit{}, err
	}

	return v, nil
}

func (r *VisitsRepo) List(ctx context.Context, projectID *string) ([]visit.SiteVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM site_visits`

	var args []interface{}

	if projectID != nil {
		query += ` WHERE project_id = $1`
		args = append(args, *projectID)
	}

	query += ` ORDER BY visit_date DESC`

	visits := []visit.SiteVisit{}

	err := r.observe("visits.list", func() error {
		rows, queryErr := r.pool.Query(ctx, query, args...)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			v, scanErr := scanVisit(rows)

			if scanErr != nil {
				return scanErr
			}

			visits = append(visits, v)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return visits, nil
}
