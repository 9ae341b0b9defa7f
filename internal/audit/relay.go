package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Sink receives serialized outbox payloads. Satisfied by the Kafka publisher.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

const defaultRelayInterval = 2 * time.Second

// Relay drains unpublished outbox rows to the sink. Rows are marked published
// only after the sink acks, so a crash between publish and mark can replay an
// event; the materialized table is idempotent via ON CONFLICT DO NOTHING and
// downstream consumers must tolerate duplicates.
type Relay struct {
	db       *sql.DB
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// RelayOption configures the Relay.
type RelayOption func(*Relay)

// WithRelayInterval overrides the poll interval.
func WithRelayInterval(d time.Duration) RelayOption {
	return func(r *Relay) { r.interval = d }
}

func NewRelay(db *sql.DB, sink Sink, logger *slog.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		db:       db,
		sink:     sink,
		logger:   logger,
		interval: defaultRelayInterval,
		batch:    100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls the outbox until the context is cancelled. Publish failures are
// logged and retried on the next tick rather than stopping the relay.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

func (r *Relay) drainOnce(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, r.batch)
	if err != nil {
		return fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox: %w", err)
	}

	for _, row := range pending {
		if err := r.sink.Publish(ctx, row.aggregateID, row.payload); err != nil {
			return fmt.Errorf("publish outbox entry %s: %w", row.id, err)
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			time.Now(), row.id,
		); err != nil {
			return fmt.Errorf("mark outbox entry %s published: %w", row.id, err)
		}
	}
	return nil
}
