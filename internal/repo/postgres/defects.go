package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/defect"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

var ErrDefectNotFound = errors.New("defect not found")

type DefectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDefectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *DefectsRepo {
	return &DefectsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *DefectsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const defectColumns = `id, title, description, location, severity, status, reported_at, fixed_at, approved_at, project_id, created_at, updated_at`

func scanDefect(row pgx.Row) (defect.Defect, error) {
	var d defect.Defect

	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Location,
		&d.Severity,
		&d.Status,
		&d.ReportedAt,
		&d.FixedAt,
		&d.ApprovedAt,
		&d.ProjectID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	return d, err
}

func (r *DefectsRepo) Create(ctx context.Context, req defect.CreateDefectRequest) (defect.Defect, error) {
	d := defect.NewFromCreateRequest(req)

	err := r.observe("defects.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO defects (`+defectColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			d.ID, d.Title, d.Description, d.Location, d.Severity, d.Status, d.ReportedAt, d.FixedAt, d.ApprovedAt, d.ProjectID, d.CreatedAt, d.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return defect.Defect{}, err
	}

	return d, nil
}

func (r *DefectsRepo) GetByID(ctx context.Context, id string) (defect.Defect, error) {
	var d defect.Defect
	var err error

	obsErr := r.observe("defects.get_by_id", func() error {
		d, err = scanDefect(r.pool.QueryRow(ctx,
			`SELECT `+defectColumns+` FROM defects WHERE id = $1`, id))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return defect.Defect{}, ErrDefectNotFound
		}
		return defect.Defect{}, obsErr
	}

	return d, nil
}

// List returns defects, optionally filtered to one project, most
// recently reported first.
func (r *DefectsRepo) List(ctx context.Context, projectID *string) ([]defect.Defect, error) {
	query := `SELECT ` + defectColumns + ` FROM defects`

	var args []interface{}

	if projectID != nil {
		query += ` WHERE project_id = $1`
		args = append(args, *projectID)
	}

	query += ` ORDER BY reported_at DESC`

	defects := []defect.Defect{}

	err := r.observe("defects.list", func() error {
		rows, queryErr := r.pool.Query(ctx, query, args...)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			d, scanErr := scanDefect(rows)

			if scanErr != nil {
				return scanErr
			}

			defects = append(defects, d)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return defects, nil
}

// Update applies the patch. Timestamp stamping for fixed/approved
// transitions happens in the handler, which owns the transition rules;
// the repo just persists fields.
func (r *DefectsRepo) Update(ctx context.Context, id string, req defect.UpdateDefectRequest, fixedAt, approvedAt *time.Time) (defect.Defect, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	argsPosition := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Location != nil {
		addSet("location", *req.Location)
	}
	if req.Severity != nil {
		addSet("severity", *req.Severity)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if fixedAt != nil {
		addSet("fixed_at", *fixedAt)
	}
	if approvedAt != nil {
		addSet("approved_at", *approvedAt)
	}

	query := fmt.Sprintf(
		`UPDATE defects SET %s WHERE id = $%d RETURNING `+defectColumns,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	var d defect.Defect
	var err error

	obsErr := r.observe("defects.update", func() error {
		d, err = scanDefect(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return defect.Defect{}, ErrDefectNotFound
		}
		return defect.Defect{}, obsErr
	}

	return d, nil
}
