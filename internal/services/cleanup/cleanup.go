package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/clipforge/media-api/internal/services/jobs"
	"github.com/clipforge/media-api/pkg/download"
)

// Service prunes old temp files left behind by interrupted pipeline runs and
// finished jobs past their retention window
type Service struct {
	tempDir          string
	maxTempAge       time.Duration
	cleanupInterval  time.Duration
	jobService       jobs.Service
	jobRetentionDays int
	cancel           context.CancelFunc
}

// NewService creates a new cleanup service. jobService may be nil when job
// pruning is not wanted.
func NewService(tempDir string, maxTempAge, cleanupInterval time.Duration, jobService jobs.Service, jobRetentionDays int) *Service {
	return &Service{
		tempDir:          tempDir,
		maxTempAge:       maxTempAge,
		cleanupInterval:  cleanupInterval,
		jobService:       jobService,
		jobRetentionDays: jobRetentionDays,
	}
}

// Start begins the cleanup service
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Run initial cleanup
	s.cleanup(ctx)

	// Run periodic cleanup
	go func() {
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanup(ctx)
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, max temp age: %v)", s.cleanupInterval, s.maxTempAge)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// cleanup removes old temp files and finished jobs past retention
func (s *Service) cleanup(ctx context.Context) {
	if err := download.CleanupOldTempFiles(s.tempDir, s.maxTempAge); err != nil {
		log.Printf("[ERROR] Temp file cleanup failed: %v", err)
	}

	if s.jobService == nil || s.jobRetentionDays <= 0 {
		return
	}

	deleted, err := s.jobService.CleanupOldJobs(ctx, s.jobRetentionDays)
	if err != nil {
		log.Printf("[ERROR] Old job cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[DEBUG] Pruned %d finished job(s) older than %d days", deleted, s.jobRetentionDays)
	}
}
