// Package notify implements the notification collaborator for QuitPulse.
//
// It schedules daily reminders, encouragement slots, and high-risk window
// alerts via cron, and fans delivery out to the configured senders (web push,
// SMS). Missing delivery configuration degrades to log-only scheduling; it
// never blocks the rest of the application.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/quitpulse/QuitPulse/internal/scheduler"
)

// Notification categories used to tag outgoing messages.
const (
	CategoryDailyReminder = "DAILY_REMINDER"
	CategoryEncouragement = "ENCOURAGEMENT"
	CategoryHighRisk      = "HIGH_RISK"
)

// Encouragement slot bounds: random daily slots fall in [9:00, 20:59].
const (
	encouragementFirstHour = 9
	encouragementLastHour  = 20
)

// DefaultSendTimeout bounds a single delivery attempt.
const DefaultSendTimeout = 10 * time.Second

// Notification is one outgoing message.
type Notification struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// Sender delivers a notification over one channel.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier is the scheduling contract consumed by the rest of the app.
type Notifier interface {
	ScheduleDailyReminder(hhmm string) error
	ScheduleEncouragementNotification() error
	ScheduleHighRiskWindowNotification(hour int, context string) error
	CancelAll()
}

var encouragementMessages = []string{
	"You resisted a craving today. Well done!",
	"Every cigarette not smoked is a win for your health.",
	"Keep going. You are doing great.",
	"Think of how fresh air feels in your lungs.",
	"Your health is worth every bit of this effort.",
}

// Service schedules notifications via cron and delivers through senders.
type Service struct {
	sched   *scheduler.Scheduler
	senders []Sender
}

// NewService creates a notification service. With no senders configured,
// scheduled notifications are logged and dropped.
func NewService(sched *scheduler.Scheduler, senders ...Sender) *Service {
	if len(senders) == 0 {
		slog.Info("notify: no delivery channels configured, notifications will be log-only")
	}
	return &Service{sched: sched, senders: senders}
}

// deliver fans one notification out to every configured sender.
func (s *Service) deliver(n Notification) {
	if len(s.senders) == 0 {
		slog.Info("notify: dropping notification, no senders", "category", n.Category, "title", n.Title)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultSendTimeout)
	defer cancel()
	for _, sender := range s.senders {
		if err := sender.Send(ctx, n); err != nil {
			// Delivery failures degrade the feature, never the app.
			slog.Error("notify: delivery failed", "category", n.Category, "error", err)
		}
	}
}

// cronAt builds a repeating daily cron expression for the given local time.
func cronAt(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// ScheduleDailyReminder schedules the repeating daily logging reminder at the
// given HH:MM local time.
func (s *Service) ScheduleDailyReminder(hhmm string) error {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return fmt.Errorf("invalid reminder time %q: %w", hhmm, err)
	}
	expr := cronAt(t.Hour(), t.Minute())
	err = s.sched.AddJob(expr, func() {
		s.deliver(Notification{
			Title:    "Daily reminder",
			Body:     "Remember to log today's smoking. Keeping track keeps you honest!",
			Category: CategoryDailyReminder,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily reminder: %w", err)
	}
	slog.Info("notify: daily reminder scheduled", "time", hhmm)
	return nil
}

// ScheduleEncouragementNotification schedules one encouragement message at a
// random daytime slot with a random message from the pool.
func (s *Service) ScheduleEncouragementNotification() error {
	hour := encouragementFirstHour + rand.IntN(encouragementLastHour-encouragementFirstHour+1)
	minute := rand.IntN(60)
	body := encouragementMessages[rand.IntN(len(encouragementMessages))]

	err := s.sched.AddJob(cronAt(hour, minute), func() {
		s.deliver(Notification{
			Title:    "Encouragement",
			Body:     body,
			Category: CategoryEncouragement,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to schedule encouragement: %w", err)
	}
	slog.Debug("notify: encouragement scheduled", "hour", hour, "minute", minute)
	return nil
}

// ScheduleHighRiskWindowNotification schedules an alert at the top of the
// given high-risk hour, labeled with its time-of-day context.
func (s *Service) ScheduleHighRiskWindowNotification(hour int, context string) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid high-risk hour %d", hour)
	}
	err := s.sched.AddJob(cronAt(hour, 0), func() {
		s.deliver(Notification{
			Title:    "High-risk window",
			Body:     fmt.Sprintf("This is a time you often feel like smoking (%s). How about waiting it out?", context),
			Category: CategoryHighRisk,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to schedule high-risk notification: %w", err)
	}
	slog.Info("notify: high-risk window scheduled", "hour", hour, "context", context)
	return nil
}

// CancelAll unschedules every pending notification.
func (s *Service) CancelAll() {
	s.sched.RemoveAll()
	slog.Info("notify: all scheduled notifications cancelled")
}

// RandomEncouragementCount returns how many encouragement slots to schedule
// for a day: one or two.
func RandomEncouragementCount() int {
	return 1 + rand.IntN(2)
}
