package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nitn/phd-admission/internal/db"
)

const nextSequenceSQL = `
	INSERT INTO sequence_counters (name, value) VALUES ($1, 1)
	ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1
	RETURNING value`

// SequenceRepository mints values from named counters
type SequenceRepository struct {
	db db.Querier
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(q db.Querier) *SequenceRepository {
	return &SequenceRepository{db: q}
}

// nextValue increments and returns the counter in one statement.
// The row lock taken by the upsert serialises concurrent callers.
func nextValue(ctx context.Context, q db.Querier, name string) (int64, error) {
	var value int64
	if err := q.QueryRow(ctx, nextSequenceSQL, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", name, err)
	}
	return value, nil
}

// Current returns the last minted value, 0 if the counter was never used
func (r *SequenceRepository) Current(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.QueryRow(ctx, `SELECT value FROM sequence_counters WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %q: %w", name, err)
	}
	return value, nil
}

// Ensure creates the counter at zero if it does not exist
func (r *SequenceRepository) Ensure(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO sequence_counters (name, value) VALUES ($1, 0) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("failed to initialise counter %q: %w", name, err)
	}
	return nil
}
