package scheduler

import "testing"

func TestAddJobValidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	if err := s.AddJob("0 20 * * *", func() {}); err != nil {
		t.Fatalf("AddJob failed for valid expression: %v", err)
	}
	if got := s.JobCount(); got != 1 {
		t.Errorf("expected 1 job, got %d", got)
	}
}

func TestAddJobInvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	if err := s.AddJob("not a cron", func() {}); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if got := s.JobCount(); got != 0 {
		t.Errorf("expected 0 jobs after failed add, got %d", got)
	}
}

func TestRemoveAll(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	for _, expr := range []string{"0 9 * * *", "30 12 * * *", "0 20 * * *"} {
		if err := s.AddJob(expr, func() {}); err != nil {
			t.Fatalf("AddJob failed: %v", err)
		}
	}
	if got := s.JobCount(); got != 3 {
		t.Fatalf("expected 3 jobs, got %d", got)
	}

	s.RemoveAll()
	if got := s.JobCount(); got != 0 {
		t.Errorf("expected 0 jobs after RemoveAll, got %d", got)
	}
}
