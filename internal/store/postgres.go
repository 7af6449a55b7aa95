// Package store persists engine events to Postgres for off-chain
// monitoring. The engine is authoritative and in-memory; the archive is
// write-behind, so a lost write never affects settlement state.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/betexlabs/saft-engine/internal/engine"
)

var (
	archivedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saft_archive_events_total",
		Help: "Engine events written to the archive, labeled by kind",
	}, []string{"kind"})

	droppedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saft_archive_dropped_events_total",
		Help: "Engine events dropped because the archive queue was full",
	})
)

type Archive struct {
	db     *pgxpool.Pool
	events chan engine.Event
	done   chan struct{}
}

// NewArchive connects to Postgres and prepares the event queue.
func NewArchive(connString string) (*Archive, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Archive{
		db:     pool,
		events: make(chan engine.Event, 1024),
		done:   make(chan struct{}),
	}, nil
}

// EnsureSchema creates the archive tables when missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id BIGINT PRIMARY KEY,
			funder_id BIGINT NOT NULL,
			collector_index INT NOT NULL,
			amount NUMERIC NOT NULL,
			external_tx_ref TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_resolutions (
			order_id BIGINT PRIMARY KEY,
			funder_id BIGINT NOT NULL,
			quote NUMERIC NOT NULL,
			tokens NUMERIC NOT NULL,
			kyc_failed BOOLEAN NOT NULL,
			resolved_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quote_requests (
			request_id TEXT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			price_query TEXT NOT NULL,
			gas_price BIGINT NOT NULL,
			requested_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS custody_transfers (
			order_id BIGINT PRIMARY KEY,
			wallet TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			transferred_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := a.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}

// Notify enqueues an engine event for archival. It is invoked while the
// engine lock is held, so it never blocks: when the queue is full the event
// is dropped and counted.
func (a *Archive) Notify(ev engine.Event) {
	select {
	case a.events <- ev:
	default:
		droppedEventsTotal.Inc()
		slog.Warn("archive queue full, dropping event", slog.String("kind", ev.Kind()))
	}
}

// Run drains the event queue until ctx is cancelled, then flushes whatever
// is left in the queue.
func (a *Archive) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-a.events:
					a.persist(context.Background(), ev)
				default:
					return
				}
			}
		case ev := <-a.events:
			a.persist(ctx, ev)
		}
	}
}

// Close waits for Run to finish and releases the pool.
func (a *Archive) Close() {
	<-a.done
	a.db.Close()
}

func (a *Archive) persist(ctx context.Context, ev engine.Event) {
	var err error
	switch e := ev.(type) {
	case engine.OrderCreated:
		_, err = a.db.Exec(ctx,
			`INSERT INTO orders (order_id, funder_id, collector_index, amount, external_tx_ref, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
			int64(e.OrderID), int64(e.FunderID), e.Collector, e.Amount.String(), e.ExternalTxRef, e.At)
	case engine.OrderResolved:
		_, err = a.db.Exec(ctx,
			`INSERT INTO order_resolutions (order_id, funder_id, quote, tokens, kyc_failed, resolved_at)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
			int64(e.OrderID), int64(e.FunderID), e.Quote.String(), e.Tokens.String(), e.KycFailed, e.At)
	case engine.QuoteRequested:
		_, err = a.db.Exec(ctx,
			`INSERT INTO quote_requests (request_id, order_id, price_query, gas_price, requested_at)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			e.RequestID, int64(e.OrderID), e.PriceQuery, int64(e.GasPrice), e.At)
	case engine.CustodyTransfer:
		_, err = a.db.Exec(ctx,
			`INSERT INTO custody_transfers (order_id, wallet, amount, transferred_at)
			 VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			int64(e.OrderID), e.Wallet, e.Amount.String(), e.At)
	default:
		slog.Warn("unknown event kind, skipping", slog.String("kind", ev.Kind()))
		return
	}

	if err != nil {
		slog.Error("archive write failed", slog.String("kind", ev.Kind()), slog.Any("error", err))
		return
	}
	archivedEventsTotal.WithLabelValues(ev.Kind()).Inc()
}
