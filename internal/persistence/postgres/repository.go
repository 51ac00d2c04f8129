// Package postgres stores activities in PostgreSQL and records an outbox
// event in the same transaction as every write.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/observability"
	"example.com/reactivities/internal/outbox"
)

const selectColumns = `SELECT id, title, date, description, category, is_canceled, city, venue, latitude, longitude FROM activities`

// Repository provides Postgres-backed persistence for activities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every activity ordered by date.
func (r *Repository) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY date, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query activities")
	}
	defer rows.Close()

	results := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate activities")
	}
	return results, nil
}

// Get retrieves an activity by id, returning nil, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Activity, error) {
	row := r.pool.QueryRow(ctx, selectColumns+` WHERE id=$1`, id)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// Insert stores a new activity. Ids that exist or were retired by a delete
// affect zero rows.
func (r *Repository) Insert(ctx context.Context, activity domain.Activity) (int64, error) {
	const stmt = `INSERT INTO activities (id, title, date, description, category, is_canceled, city, venue, latitude, longitude)
        SELECT $1::text, $2::text, $3::timestamptz, $4::text, $5::text, $6::boolean, $7::text, $8::text, $9::double precision, $10::double precision
        WHERE NOT EXISTS (SELECT 1 FROM retired_activity_ids WHERE id=$1)
        ON CONFLICT (id) DO NOTHING`

	return r.write(ctx, activity.ID, outbox.EventActivityCreated, outbox.NewActivityPayload(activity), func(tx pgx.Tx) (int64, error) {
		tag, err := tx.Exec(ctx, stmt,
			activity.ID,
			activity.Title,
			activity.Date,
			activity.Description,
			activity.Category,
			activity.IsCanceled,
			activity.City,
			activity.Venue,
			activity.Latitude,
			activity.Longitude,
		)
		if err != nil {
			return 0, errors.Wrap(err, "insert activity")
		}
		return tag.RowsAffected(), nil
	})
}

// Update overwrites every mutable column of an activity.
func (r *Repository) Update(ctx context.Context, activity domain.Activity) (int64, error) {
	const stmt = `UPDATE activities SET title=$2, date=$3, description=$4, category=$5, is_canceled=$6,
        city=$7, venue=$8, latitude=$9, longitude=$10, updated_at=NOW()
        WHERE id=$1`

	return r.write(ctx, activity.ID, outbox.EventActivityUpdated, outbox.NewActivityPayload(activity), func(tx pgx.Tx) (int64, error) {
		tag, err := tx.Exec(ctx, stmt,
			activity.ID,
			activity.Title,
			activity.Date,
			activity.Description,
			activity.Category,
			activity.IsCanceled,
			activity.City,
			activity.Venue,
			activity.Latitude,
			activity.Longitude,
		)
		if err != nil {
			return 0, errors.Wrap(err, "update activity")
		}
		return tag.RowsAffected(), nil
	})
}

// Delete removes an activity and retires its id.
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	payload := outbox.ActivityDeleted{ActivityID: id, OccurredAt: time.Now().UTC()}

	return r.write(ctx, id, outbox.EventActivityDeleted, payload, func(tx pgx.Tx) (int64, error) {
		tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE id=$1`, id)
		if err != nil {
			return 0, errors.Wrap(err, "delete activity")
		}
		if tag.RowsAffected() == 0 {
			return 0, nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO retired_activity_ids (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id); err != nil {
			return 0, errors.Wrap(err, "retire activity id")
		}
		return tag.RowsAffected(), nil
	})
}

// write runs apply and, when it touched a row, enqueues the outbox event
// inside the same transaction.
func (r *Repository) write(ctx context.Context, id, eventType string, payload any, apply func(pgx.Tx) (int64, error)) (rows int64, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil || rows == 0 {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err = apply(tx)
	if err != nil || rows == 0 {
		return 0, err
	}

	if err = outbox.Enqueue(ctx, tx, outbox.Event{AggregateID: id, Type: eventType, Payload: payload}); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	observability.RecordActivityWrite(time.Now())
	return rows, nil
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.Title, &a.Date, &a.Description, &a.Category, &a.IsCanceled, &a.City, &a.Venue, &a.Latitude, &a.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return a, err
		}
		return a, errors.Wrap(err, "scan activity")
	}
	a.Date = a.Date.UTC()
	return a, nil
}
