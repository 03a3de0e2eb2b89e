// Package jobs holds the periodic maintenance tasks run by the API server
package jobs

import (
	"fmt"
	"time"

	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/nitn/phd-admission/internal/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TempSweeper removes staged uploads left behind by interrupted requests
type TempSweeper struct {
	temp   *filestorage.TempDir
	maxAge time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewTempSweeper creates a sweeper removing files older than maxAge
func NewTempSweeper(temp *filestorage.TempDir, maxAge time.Duration) *TempSweeper {
	return &TempSweeper{
		temp:   temp,
		maxAge: maxAge,
		now:    time.Now,
		logger: logger.Component("sweeper"),
	}
}

// Run sweeps once and reports how many files were removed
func (s *TempSweeper) Run() (int, error) {
	removed, err := s.temp.Sweep(s.maxAge, s.now())
	metrics.RecordSweep(removed)
	if err != nil {
		s.logger.Error().Err(err).Int("removed", removed).Msg("Temp upload sweep failed")
		return removed, err
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Str("dir", s.temp.Path()).Msg("Swept stale temp uploads")
	}
	return removed, nil
}

// Scheduler runs maintenance jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewScheduler creates a stopped scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.Component("scheduler"),
	}
}

// Add registers fn under a cron spec such as "@every 10m"
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("Job scheduled")
	return nil
}

// AddSweeper schedules the temp sweeper
func (s *Scheduler) AddSweeper(spec string, sweeper *TempSweeper) error {
	return s.Add("temp-sweep", spec, func() {
		_, _ = sweeper.Run()
	})
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
