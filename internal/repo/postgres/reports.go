package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/report"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

var ErrReportNotFound = errors.New("report not found")

type ReportsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReportsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReportsRepo {
	return &ReportsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ReportsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const reportColumns = `id, title, content, report_type, project_id, created_at`

func scanReport(row pgx.Row) (report.Report, error) {
	var rep report.Report

	err := row.Scan(
		&rep.ID,
		&rep.Title,
		&rep.Content,
		&rep.Type,
		&rep.ProjectID,
		&rep.CreatedAt,
	)

	return rep, err
}

func (r *ReportsRepo) Create(ctx context.Context, req report.CreateReportRequest) (report.Report, error) {
	rep := report.NewFromCreateRequest(req)

	err := r.observe("reports.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO reports (`+reportColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			rep.ID, rep.Title, rep.Content, rep.Type, rep.ProjectID, rep.CreatedAt,
		)
		return execErr
	})

	if err != nil {
		return report.Report{}, err
	}

	return rep, nil
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (report.Report, error) {
	var rep report.Report
	var err error

	obsErr := r.observe("reports.get_by_id", func() error {
		rep, err = scanReport(r.pool.QueryRow(ctx,
			`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return report.Report{}, ErrReportNotFound
		}
		return report.Report{}, obsErr
	}

	return rep, nil
}

func (r *ReportsRepo) ListByProject(ctx context.Context, projectID string) ([]report.Report, error) {
	reports := []report.Report{}

	err := r.observe("reports.list_by_project", func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT `+reportColumns+` FROM reports WHERE project_id = $1 ORDER BY created_at DESC`,
			projectID)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			rep, scanErr := scanReport(rows)

			if scanErr != nil {
				return scanErr
			}

			reports = append(reports, rep)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return reports, nil
}
