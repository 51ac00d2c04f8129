package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Execer is satisfied by pgx.Tx, so events can be written alongside the
// entity change they describe.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Enqueue records an event in the outbox table.
func Enqueue(ctx context.Context, tx Execer, event Event) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s payload", event.Type)
	}

	const stmt = `INSERT INTO outbox (aggregate_id, event_type, payload) VALUES ($1,$2,$3)`
	if _, err := tx.Exec(ctx, stmt, event.AggregateID, event.Type, body); err != nil {
		return errors.Wrap(err, "insert outbox event")
	}
	return nil
}

// Message represents a row claimed from the outbox.
type Message struct {
	EventID     int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
}

// PostgresQueue claims and acknowledges outbox rows.
type PostgresQueue struct {
	pool       *pgxpool.Pool
	claimLease time.Duration
}

// NewPostgresQueue constructs a PostgresQueue. Claimed rows that are neither
// published nor released become claimable again after claimLease.
func NewPostgresQueue(pool *pgxpool.Pool, claimLease time.Duration) *PostgresQueue {
	return &PostgresQueue{pool: pool, claimLease: claimLease}
}

// Claim locks up to limit unpublished rows and stamps them as claimed.
func (q *PostgresQueue) Claim(ctx context.Context, limit int) (messages []Message, err error) {
	tx, err := q.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin claim")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const query = `SELECT event_id, aggregate_id, event_type, payload
        FROM outbox
        WHERE published_at IS NULL
          AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, limit, q.claimLease.Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "select outbox")
	}

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.EventID, &msg.AggregateID, &msg.EventType, &msg.Payload); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan outbox")
		}
		messages = append(messages, msg)
		ids = append(ids, msg.EventID)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate outbox")
	}

	if len(ids) == 0 {
		_ = tx.Rollback(ctx)
		return nil, nil
	}

	if _, err = tx.Exec(ctx, `UPDATE outbox SET claimed_at = NOW() WHERE event_id = ANY($1)`, ids); err != nil {
		return nil, errors.Wrap(err, "claim outbox")
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit claim")
	}
	return messages, nil
}

// MarkPublished stamps rows as delivered.
func (q *PostgresQueue) MarkPublished(ctx context.Context, ids []int64) error {
	if _, err := q.pool.Exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE event_id = ANY($1)`, ids); err != nil {
		return errors.Wrap(err, "mark published")
	}
	return nil
}

// Release clears the claim so the rows are retried on the next poll.
func (q *PostgresQueue) Release(ctx context.Context, ids []int64) error {
	if _, err := q.pool.Exec(ctx, `UPDATE outbox SET claimed_at = NULL WHERE event_id = ANY($1)`, ids); err != nil {
		return errors.Wrap(err, "release claim")
	}
	return nil
}
