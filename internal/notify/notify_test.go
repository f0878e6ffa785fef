package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/quitpulse/QuitPulse/internal/scheduler"
)

// senderStub captures delivered notifications.
type senderStub struct {
	mu   sync.Mutex
	sent []Notification
}

func (s *senderStub) Send(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func newTestService(t *testing.T, senders ...Sender) *Service {
	t.Helper()
	sched := scheduler.NewScheduler()
	t.Cleanup(sched.Stop)
	return NewService(sched, senders...)
}

func TestScheduleDailyReminder(t *testing.T) {
	svc := newTestService(t)

	if err := svc.ScheduleDailyReminder("20:00"); err != nil {
		t.Fatalf("scheduling failed: %v", err)
	}
	if got := svc.sched.JobCount(); got != 1 {
		t.Errorf("expected 1 scheduled job, got %d", got)
	}
}

func TestScheduleDailyReminderInvalidTime(t *testing.T) {
	svc := newTestService(t)

	for _, hhmm := range []string{"25:00", "8pm", "", "20:00:00"} {
		if err := svc.ScheduleDailyReminder(hhmm); err == nil {
			t.Errorf("expected error for reminder time %q", hhmm)
		}
	}
	if got := svc.sched.JobCount(); got != 0 {
		t.Errorf("expected no jobs after invalid times, got %d", got)
	}
}

func TestScheduleEncouragementNotification(t *testing.T) {
	svc := newTestService(t)

	if err := svc.ScheduleEncouragementNotification(); err != nil {
		t.Fatalf("scheduling failed: %v", err)
	}
	if got := svc.sched.JobCount(); got != 1 {
		t.Errorf("expected 1 scheduled job, got %d", got)
	}
}

func TestScheduleHighRiskWindowNotification(t *testing.T) {
	svc := newTestService(t)

	if err := svc.ScheduleHighRiskWindowNotification(20, "night"); err != nil {
		t.Fatalf("scheduling failed: %v", err)
	}
	if err := svc.ScheduleHighRiskWindowNotification(-1, "late night"); err == nil {
		t.Error("expected error for hour -1")
	}
	if err := svc.ScheduleHighRiskWindowNotification(24, "late night"); err == nil {
		t.Error("expected error for hour 24")
	}
	if got := svc.sched.JobCount(); got != 1 {
		t.Errorf("expected 1 scheduled job, got %d", got)
	}
}

func TestCancelAll(t *testing.T) {
	svc := newTestService(t)

	if err := svc.ScheduleDailyReminder("20:00"); err != nil {
		t.Fatalf("scheduling failed: %v", err)
	}
	if err := svc.ScheduleHighRiskWindowNotification(21, "night"); err != nil {
		t.Fatalf("scheduling failed: %v", err)
	}

	svc.CancelAll()
	if got := svc.sched.JobCount(); got != 0 {
		t.Errorf("expected 0 jobs after CancelAll, got %d", got)
	}
}

func TestDeliverFansOutToAllSenders(t *testing.T) {
	a, b := &senderStub{}, &senderStub{}
	svc := newTestService(t, a, b)

	svc.deliver(Notification{Title: "t", Body: "b", Category: CategoryDailyReminder})

	for i, stub := range []*senderStub{a, b} {
		if len(stub.sent) != 1 {
			t.Errorf("sender %d: expected 1 delivery, got %d", i, len(stub.sent))
			continue
		}
		if stub.sent[0].Category != CategoryDailyReminder {
			t.Errorf("sender %d: unexpected category %q", i, stub.sent[0].Category)
		}
	}
}

func TestDeliverWithoutSendersDoesNotPanic(t *testing.T) {
	svc := newTestService(t)
	svc.deliver(Notification{Title: "t", Body: "b", Category: CategoryEncouragement})
}

func TestRandomEncouragementCountBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		if got := RandomEncouragementCount(); got < 1 || got > 2 {
			t.Fatalf("expected 1 or 2 encouragement slots, got %d", got)
		}
	}
}

func TestCronAt(t *testing.T) {
	if got := cronAt(20, 0); got != "0 20 * * *" {
		t.Errorf("unexpected cron expression: %q", got)
	}
	if got := cronAt(9, 45); got != "45 9 * * *" {
		t.Errorf("unexpected cron expression: %q", got)
	}
}
