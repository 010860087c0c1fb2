package serve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named maintenance jobs on cron schedules. The server uses
// it to expire idle sessions.
type Scheduler struct {
	c *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID // job name → cron entry ID
}

// NewScheduler creates an idle Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		c:       cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins the cron runner and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.c.Start()
	slog.Info("scheduler started")
	<-ctx.Done()
	<-s.c.Stop().Done()
	slog.Info("scheduler stopped")
}

// AddJob registers fn under name. If a job with the same name already
// exists it is replaced.
func (s *Scheduler) AddJob(name, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.c.AddFunc(spec, func() {
		slog.Debug("scheduler: firing job", "name", name)
		fn()
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	if id, ok := s.entries[name]; ok {
		s.c.Remove(id)
	}
	s.entries[name] = entryID

	slog.Info("scheduler: job added", "name", name, "cron", spec)
	return nil
}

// RemoveJob removes a job from the cron runner.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	s.c.Remove(id)
	delete(s.entries, name)

	slog.Info("scheduler: job removed", "name", name)
	return nil
}

// ListJobs returns the registered job names in order.
func (s *Scheduler) ListJobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
