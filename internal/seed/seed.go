package seed

import (
	"context"

	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/rs/zerolog"
)

// CounterInitializer creates a sequence counter row when it is missing
type CounterInitializer interface {
	Ensure(ctx context.Context, name string) error
	Current(ctx context.Context, name string) (int64, error)
}

// CreateDefaultData makes sure the application id counter exists.
// An existing counter keeps its value.
func CreateDefaultData(ctx context.Context, counters CounterInitializer, counterName string, lgr zerolog.Logger) error {
	lgr.Info().Str("counter", counterName).Msg("Checking/Creating application id counter...")

	if err := counters.Ensure(ctx, counterName); err != nil {
		lgr.Error().Err(err).Str("counter", counterName).Msg("Error creating application id counter")
		return err
	}

	current, err := counters.Current(ctx, counterName)
	if err != nil {
		return err
	}
	lgr.Info().Str("counter", counterName).Int64("value", current).Msg("Application id counter ready")
	return nil
}

var _ CounterInitializer = (*repositories.SequenceRepository)(nil)
