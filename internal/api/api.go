// Package api provides HTTP handlers and the main API server logic for QuitPulse.
//
// It exposes RESTful endpoints for recording smoking and craving events,
// running intervention timers, deriving statistics, analyzing high-risk hours,
// and managing settings, privacy, and notification scheduling.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quitpulse/QuitPulse/internal/insights"
	"github.com/quitpulse/QuitPulse/internal/intervention"
	"github.com/quitpulse/QuitPulse/internal/notify"
	"github.com/quitpulse/QuitPulse/internal/risk"
	"github.com/quitpulse/QuitPulse/internal/tracker"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server handles HTTP requests and coordinates the application services.
type Server struct {
	addr      string
	tracker   *tracker.Service
	runner    *intervention.Runner
	notifier  notify.Notifier
	generator insights.Generator
	now       func() time.Time
}

// NewServer creates an API server with the given collaborators.
func NewServer(tr *tracker.Service, runner *intervention.Runner, notifier notify.Notifier, gen insights.Generator, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{
		addr:      cfg.Addr,
		tracker:   tr,
		runner:    runner,
		notifier:  notifier,
		generator: gen,
		now:       time.Now,
	}
}

// Handler builds the HTTP routing table for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/cravings", s.recordCravingHandler)
	mux.HandleFunc("/smoking", s.recordSmokingHandler)

	mux.HandleFunc("/interventions", s.startInterventionHandler)
	mux.HandleFunc("/interventions/current", s.currentInterventionHandler)
	mux.HandleFunc("/interventions/resolve", s.resolveInterventionHandler)
	mux.HandleFunc("/interventions/cancel", s.cancelInterventionHandler)

	mux.HandleFunc("/stats/today", s.statsTodayHandler)
	mux.HandleFunc("/stats/weekly", s.statsWeeklyHandler)
	mux.HandleFunc("/stats/lifetime", s.statsLifetimeHandler)

	mux.HandleFunc("/risk/windows", s.riskWindowsHandler)
	mux.HandleFunc("/insights", s.insightsHandler)
	mux.HandleFunc("/export", s.exportHandler)

	mux.HandleFunc("/settings", s.settingsHandler)
	mux.HandleFunc("/settings/notifications", s.notificationSettingsHandler)
	mux.HandleFunc("/notifications/subscription", s.pushSubscriptionHandler)

	mux.HandleFunc("/privacy/anonymize", s.anonymizeHandler)
	mux.HandleFunc("/privacy/cleanup", s.cleanupHandler)
	mux.HandleFunc("/privacy/all", s.deleteAllHandler)

	mux.HandleFunc("/health", s.healthHandler)

	return mux
}

// Run performs startup housekeeping, schedules notifications, and serves HTTP
// until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.tracker.RecordAppLaunch(); err != nil {
		slog.Warn("Server.Run: failed to record app launch", "error", err)
	}
	if err := s.tracker.CleanupOldData(); err != nil {
		slog.Warn("Server.Run: retention cleanup failed", "error", err)
	}
	s.rescheduleNotifications()

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("QuitPulse API listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.runner.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	}
}

// rescheduleNotifications rebuilds the notification schedule from current
// settings and the craving log. Called at startup and whenever notification
// settings change.
func (s *Server) rescheduleNotifications() {
	s.notifier.CancelAll()

	settings := s.tracker.Settings()
	if !settings.NotifyEnabled {
		slog.Info("notifications disabled, nothing scheduled")
		return
	}
	ns := s.tracker.NotificationSettings()

	if ns.DailyReminderEnabled {
		if err := s.notifier.ScheduleDailyReminder(ns.DailyReminderTime); err != nil {
			slog.Error("failed to schedule daily reminder", "error", err, "time", ns.DailyReminderTime)
		}
	}
	if ns.EncouragementEnabled {
		for i := 0; i < notify.RandomEncouragementCount(); i++ {
			if err := s.notifier.ScheduleEncouragementNotification(); err != nil {
				slog.Error("failed to schedule encouragement", "error", err)
			}
		}
	}
	if ns.HighRiskEnabled {
		windows := risk.Schedulable(risk.Analyze(s.tracker.CravingEvents()))
		for _, w := range windows {
			if err := s.notifier.ScheduleHighRiskWindowNotification(w.Hour, w.Context); err != nil {
				slog.Error("failed to schedule high-risk alert", "error", err, "hour", w.Hour)
			}
		}
	}
}
