package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// LedgerEntry is one committed shop transaction.
type LedgerEntry struct {
	Item    string // "upgrade", "reroll", "reload", "plate", "perk:<id>"
	Cost    int
	Balance int // coins after the purchase
	Wave    int
	AtMs    float64
}

type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Write atomically stores a run's ledger entries in a single transaction.
func (r *LedgerRepo) Write(ctx context.Context, runID int64, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO shop_ledger (run_id, item, cost, balance, wave, at_ms)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, e.Item, e.Cost, e.Balance, e.Wave, e.AtMs,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}
	return tx.Commit(ctx)
}

// ForRun returns a run's ledger in purchase order.
func (r *LedgerRepo) ForRun(ctx context.Context, runID int64) ([]LedgerEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT item, cost, balance, wave, at_ms FROM shop_ledger
		 WHERE run_id = $1 ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LedgerEntry, error) {
		var e LedgerEntry
		err := row.Scan(&e.Item, &e.Cost, &e.Balance, &e.Wave, &e.AtMs)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return out, nil
}

// Spent sums the coins a run paid into the shop.
func Spent(entries []LedgerEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Cost
	}
	return total
}
