package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/project"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ProjectsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const projectColumns = `id, name, address, description, status, package, start_date, end_date, client_id, created_at, updated_at`

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Address,
		&p.Description,
		&p.Status,
		&p.Package,
		&p.StartDate,
		&p.EndDate,
		&p.ClientID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func (r *ProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	p := project.NewFromCreateRequest(req)

	err := r.observe("projects.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO projects (`+projectColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			p.ID, p.Name, p.Address, p.Description, p.Status, p.Package, p.StartDate, p.EndDate, p.ClientID, p.CreatedAt, p.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	var p project.Project
	var err error

	obsErr := r.observe("projects.get_by_id", func() error {
		p, err = scanProject(r.pool.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return project.Project{}, ErrProjectNotFound
		}
		return project.Project{}, obsErr
	}

	return p, nil
}

// List returns all projects, newest activity first. Admin view.
func (r *ProjectsRepo) List(ctx context.Context) ([]project.Project, error) {
	return r.list(ctx, "projects.list",
		`SELECT `+projectColumns+` FROM projects ORDER BY updated_at DESC`)
}

// ListByClient scopes the listing to one owner; the client portal never
// sees anyone else's projects.
func (r *ProjectsRepo) ListByClient(ctx context.Context, clientID string) ([]project.Project, error) {
	return r.list(ctx, "projects.list_by_client",
		`SELECT `+projectColumns+` FROM projects WHERE client_id = $1 ORDER BY updated_at DESC`, clientID)
}

func (r *ProjectsRepo) list(ctx context.Context, op, query string, args ...interface{}) ([]project.Project, error) {
	projects := []project.Project{}

	err := r.observe(op, func() error {
		rows, queryErr := r.pool.Query(ctx, query, args...)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			p, scanErr := scanProject(rows)

			if scanErr != nil {
				return scanErr
			}

			projects = append(projects, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	argsPosition := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Address != nil {
		addSet("address", *req.Address)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.Package != nil {
		addSet("package", *req.Package)
	}
	if req.StartDate != nil {
		addSet("start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		addSet("end_date", *req.EndDate)
	}

	query := fmt.Sprintf(
		`UPDATE projects SET %s WHERE id = $%d RETURNING `+projectColumns,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	var p project.Project
	var err error

	obsErr := r.observe("projects.update", func() error {
		p, err = scanProject(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return project.Project{}, ErrProjectNotFound
		}
		return project.Project{}, obsErr
	}

	return p, nil
}

// CountByStatus feeds the admin dashboard stats tiles.
func (r *ProjectsRepo) CountByStatus(ctx context.Context) (map[project.Status]int, error) {
	counts := make(map[project.Status]int)

	err := r.observe("projects.count_by_status", func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT status, COUNT(*) FROM projects GROUP BY status`)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			var status project.Status
			var count int

			if scanErr := rows.Scan(&status, &count); scanErr != nil {
				return scanErr
			}

			counts[status] = count
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return counts, nil
}
