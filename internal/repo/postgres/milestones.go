package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/milestone"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

var ErrMilestoneNotFound = errors.New("milestone not found")

type MilestonesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMilestonesRepo(pool *pgxpool.Pool, prom *observability.Prom) *MilestonesRepo {
	return &MilestonesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *MilestonesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const milestoneColumns = `id, title, description, due_date, status, sort_order, project_id, created_at, updated_at`

func scanMilestone(row pgx.Row) (milestone.Milestone, error) {
	var m milestone.Milestone

	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.DueDate,
		&m.Status,
		&m.SortOrder,
		&m.ProjectID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	return m, err
}

func (r *MilestonesRepo) Create(ctx context.Context, req milestone.CreateMilestoneRequest) (milestone.Milestone, error) {
	m := milestone.NewFromCreateRequest(req)

	err := r.observe("milestones.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO milestones (`+milestoneColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			m.ID, m.Title, m.Description, m.DueDate, m.Status, m.SortOrder, m.ProjectID, m.CreatedAt, m.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return milestone.Milestone{}, err
	}

	return m, nil
}

func (r *MilestonesRepo) ListByProject(ctx context.Context, projectID string) ([]milestone.Milestone, error) {
	milestones := []milestone.Milestone{}

	err := r.observe("milestones.list_by_project", func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT `+milestoneColumns+` FROM milestones WHERE project_id = $1 ORDER BY sort_order ASC`,
			projectID)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			m, scanErr := scanMilestone(rows)

			if scanErr != nil {
				return scanErr
			}

			milestones = append(milestones, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *MilestonesRepo) Update(ctx context.Context, id string, req milestone.UpdateMilestoneRequest) (milestone.Milestone, error) {
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
	if req.DueDate != nil {
		addSet("due_date", *req.DueDate)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.SortOrder != nil {
		addSet("sort_order", *req.SortOrder)
	}

	query := fmt.Sprintf(
		`UPDATE milestones SET %s WHERE id = $%d RETURNING `+milestoneColumns,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	var m milestone.Milestone
	var err error

	obsErr := r.observe("milestones.update", func() error {
		m, err = scanMilestone(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return milestone.Milestone{}, ErrMilestoneNotFound
		}
		return milestone.Milestone{}, obsErr
	}

	return m, nil
}
