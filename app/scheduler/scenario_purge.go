// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/stackvolt/wattwise/app/middleware"
	"github.com/stackvolt/wattwise/repository"
	"github.com/stackvolt/wattwise/utils"
)

// ScenarioPurgeScheduler periodically deletes anonymous scenarios and comparison
// sets whose session owners have aged past the retention window.
type ScenarioPurgeScheduler struct {
	scenarioRepo repository.SavedScenarioRepository
	setRepo      repository.ComparisonSetRepository
	logger       *log.Logger
	interval     time.Duration
	retention    time.Duration
}

func NewScenarioPurgeScheduler(
	scenarioRepo repository.SavedScenarioRepository,
	setRepo repository.ComparisonSetRepository,
	logger *log.Logger,
	interval time.Duration,
	retention time.Duration,
) *ScenarioPurgeScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = utils.AnonymousScenarioRetention
	}

	s := &ScenarioPurgeScheduler{
		scenarioRepo: scenarioRepo,
		setRepo:      setRepo,
		logger:       logger,
		interval:     interval,
		retention:    retention,
	}

	// Initialize scheduler-specific logger (to stdout and rotating file)
	if s.logger == nil {
		if err := s.initSchedulerLogger(); err != nil {
			// Fallback to default stdout logger if file logger init fails
			s.logger = log.Default()
			s.logger.Printf("purge: failed to initialize file logger: %v", err)
		}
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a rotating file under data/ (or /data)
func (s *ScenarioPurgeScheduler) initSchedulerLogger() error {
	// Prefer relative data/ then fallback to /data for containerized environments
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "purge.log"),
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		mw := io.MultiWriter(os.Stdout, rotator)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		s.logger = log.New(mw, "purge ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return os.ErrPermission
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *ScenarioPurgeScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ScenarioPurgeScheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	defer cancel()

	cutoff := utils.UTCNow().Add(-s.retention)

	// Sets go first so a failure between the two sweeps never leaves a set
	// pointing at scenarios that were purged ahead of it.
	sets, err := s.setRepo.DeleteAnonymousOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Printf("purge: comparison set sweep failed: %v", err)
	} else if sets > 0 {
		middleware.RecordPurgedRows("comparison_sets", sets)
		s.logger.Printf("purge: deleted %d anonymous comparison sets older than %s", sets, cutoff.Format(time.RFC3339))
	}

	scenarios, err := s.scenarioRepo.DeleteAnonymousOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Printf("purge: scenario sweep failed: %v", err)
		return
	}
	if scenarios > 0 {
		middleware.RecordPurgedRows("saved_scenarios", scenarios)
		s.logger.Printf("purge: deleted %d anonymous scenarios older than %s", scenarios, cutoff.Format(time.RFC3339))
	}
}
