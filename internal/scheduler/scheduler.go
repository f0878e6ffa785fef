// Package scheduler provides scheduling logic for QuitPulse.
//
// It allows jobs (such as delivering reminder notifications) to be scheduled
// using cron expressions, and supports removing everything at once when the
// user disables notifications.
package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler provides cron-based job scheduling with bulk removal.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries []cron.EntryID
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	id, err := s.cron.AddFunc(expr, task)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = append(s.entries, id)
	s.mu.Unlock()
	return nil
}

// JobCount returns the number of scheduled jobs.
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RemoveAll unschedules every job added through this scheduler.
func (s *Scheduler) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = nil
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
