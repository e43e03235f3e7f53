package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scheduler periodically removes orphaned scratch directories. The pipeline
// deletes its own scratch on every exit path; this sweeps up whatever a
// crashed process left behind.
type Scheduler struct {
	tempDir         string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a new cleanup scheduler
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the cleanup scheduler
func (s *Scheduler) Start() {
	// Run initial cleanup on startup
	log.Println("Running initial scratch directory cleanup...")
	s.cleanOldScratch()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.cleanOldScratch()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop stops the cleanup scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

// cleanOldScratch removes split_* scratch directories older than maxAgeHours
func (s *Scheduler) cleanOldScratch() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		log.Printf("Error during cleanup: %v", err)
		return
	}

	var deletedCount int
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "split_") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		age := now.Sub(info.ModTime())
		if age > maxAge {
			path := filepath.Join(s.tempDir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				log.Printf("Failed to delete old scratch dir %s: %v", path, err)
			} else {
				deletedCount++
				log.Printf("Deleted orphaned scratch dir: %s (age: %s)",
					entry.Name(), age.Round(time.Hour))
			}
		}
	}

	if deletedCount > 0 {
		log.Printf("Cleanup complete: %d scratch directories removed", deletedCount)
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return err
	}
	log.Printf("Temp directory ready: %s", tempDir)
	return nil
}
