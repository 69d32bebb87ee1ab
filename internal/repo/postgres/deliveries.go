package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/delivery"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

var ErrDeliveryNotFound = errors.New("delivery not found")

type DeliveriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDeliveriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *DeliveriesRepo {
	return &DeliveriesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *DeliveriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const deliveryColumns = `id, item_name, supplier, expected_date, delivered_date, status, notes, project_id, created_at, updated_at`

func scanDelivery(row pgx.Row) (delivery.Delivery, error) {
	var d delivery.Delivery

	err := row.Scan(
		&d.ID,
		&d.ItemName,
		&d.Supplier,
		&d.ExpectedDate,
		&d.DeliveredDate,
		&d.Status,
		&d.Notes,
		&d.ProjectID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	return d, err
}

func (r *DeliveriesRepo) Create(ctx context.Context, req delivery.CreateDeliveryRequest) (delivery.Delivery, error) {
	d := delivery.NewFromCreateRequest(req)

	err := r.observe("deliveries.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO deliveries (`+deliveryColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			d.ID, d.ItemName, d.Supplier, d.ExpectedDate, d.DeliveredDate, d.Status, d.Notes, d.ProjectID, d.CreatedAt, d.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return delivery.Delivery{}, err
	}

	return d, nil
}

func (r *DeliveriesRepo) List(ctx context.Context, projectID *string) ([]delivery.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries`

	var args []interface{}

	if projectID != nil {
		query += ` WHERE project_id = $1`
		args = append(args, *projectID)
	}

	query += ` ORDER BY expected_date ASC`

	deliveries := []delivery.Delivery{}

	err := r.observe("deliveries.list", func() error {
		rows, queryErr := r.pool.Query(ctx, query, args...)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		for rows.Next() {
			d, scanErr := scanDelivery(rows)

			if scanErr != nil {
				return scanErr
			}

			deliveries = append(deliveries, d)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return deliveries, nil
}

func (r *DeliveriesRepo) Update(ctx context.Context, id string, req delivery.UpdateDeliveryRequest) (delivery.Delivery, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	argsPosition := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if req.ExpectedDate != nil {
		addSet("expected_date", *req.ExpectedDate)
	}
	if req.DeliveredDate != nil {
		addSet("delivered_date", *req.DeliveredDate)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.Notes != nil {
		addSet("notes", *req.Notes)
	}

	query := fmt.Sprintf(
		`UPDATE deliveries SET %s WHERE id = $%d RETURNING `+deliveryColumns,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	var d delivery.Delivery
	var err error

	obsErr := r.observe("deliveries.update", func() error {
		d, err = scanDelivery(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return delivery.Delivery{}, ErrDeliveryNotFound
		}
		return delivery.Delivery{}, obsErr
	}

	return d, nil
}
