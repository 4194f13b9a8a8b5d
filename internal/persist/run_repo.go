package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RunRow is the summary of one finished run.
type RunRow struct {
	ID           int64
	Seed         uint64
	Mode         string
	MapKey       string
	Character    string
	Wave         int
	Kills        int
	Coins        int
	XP           int
	Level        int
	Relics       int
	Wonder       bool
	ElapsedMs    float64
	Died         bool
	HookFailures int
	CreatedAt    time.Time
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

const runColumns = `id, seed, mode, map_key, character, wave, kills, coins, xp, level,
	relics, wonder, elapsed_ms, died, hook_failures, created_at`

// Insert stores a run summary and returns its id.
func (r *RunRepo) Insert(ctx context.Context, row *RunRow) (int64, error) {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO runs (seed, mode, map_key, character, wave, kills, coins, xp, level,
		                   relics, wonder, elapsed_ms, died, hook_failures)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at`,
		int64(row.Seed), row.Mode, row.MapKey, row.Character, row.Wave, row.Kills, row.Coins, row.XP, row.Level,
		row.Relics, row.Wonder, row.ElapsedMs, row.Died, row.HookFailures,
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return row.ID, nil
}

// Load returns nil when the run does not exist.
func (r *RunRepo) Load(ctx context.Context, id int64) (*RunRow, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("load run %d: %w", id, err)
	}
	row, err := pgx.CollectOneRow(rows, scanRun)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run %d: %w", id, err)
	}
	return row, nil
}

// Best lists the deepest runs of a mode, furthest wave first.
func (r *RunRepo) Best(ctx context.Context, mode string, limit int) ([]*RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE mode = $1
		 ORDER BY wave DESC, kills DESC, id
		 LIMIT $2`, mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("best runs: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("best runs: %w", err)
	}
	return out, nil
}

func scanRun(row pgx.CollectableRow) (*RunRow, error) {
	var r RunRow
	var seed int64
	err := row.Scan(
		&r.ID, &seed, &r.Mode, &r.MapKey, &r.Character, &r.Wave, &r.Kills, &r.Coins, &r.XP, &r.Level,
		&r.Relics, &r.Wonder, &r.ElapsedMs, &r.Died, &r.HookFailures, &r.CreatedAt,
	)
	r.Seed = uint64(seed)
	return &r, err
}
