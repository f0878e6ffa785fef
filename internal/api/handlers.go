package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/quitpulse/QuitPulse/internal/insights"
	"github.com/quitpulse/QuitPulse/internal/models"
	"github.com/quitpulse/QuitPulse/internal/risk"
	"github.com/quitpulse/QuitPulse/internal/stats"
	"github.com/quitpulse/QuitPulse/internal/tracker"
	"github.com/quitpulse/QuitPulse/internal/util"
)

// recordCravingRequest is the body for POST /cravings. All fields are
// optional; an empty body records a high-intensity unresisted craving.
type recordCravingRequest struct {
	Intensity          models.CravingIntensity `json:"intensity"`
	Context            string                  `json:"context"`
	Resisted           bool                    `json:"resisted"`
	ResistanceDuration *float64                `json:"resistance_duration,omitempty"`
}

// recordSmokingRequest is the body for POST /smoking. An empty body records a
// single cigarette.
type recordSmokingRequest struct {
	Cigarettes int    `json:"cigarettes"`
	Context    string `json:"context"`
}

// decodeOptionalJSON decodes a request body into v, treating an empty body as
// valid. Malformed JSON is reported as an error.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// recordCravingHandler handles POST /cravings.
func (s *Server) recordCravingHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	req := recordCravingRequest{Intensity: models.IntensityHigh}
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Warn("recordCravingHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	event := models.NewCravingEvent(s.now(), req.Intensity, req.Context)
	event.Resisted = req.Resisted
	if req.Resisted {
		event.ResistanceDuration = req.ResistanceDuration
	}

	if err := s.tracker.AppendCravingEvent(event); err != nil {
		s.writeAppendError(w, "craving", err)
		return
	}
	slog.Info("craving recorded", "id", event.ID, "intensity", event.Intensity, "resisted", event.Resisted)
	writeJSONResponse(w, http.StatusCreated, models.Recorded(event))
}

// recordSmokingHandler handles POST /smoking.
func (s *Server) recordSmokingHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	req := recordSmokingRequest{Cigarettes: 1}
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Warn("recordSmokingHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	event := models.NewSmokingEvent(s.now(), req.Cigarettes, req.Context)
	if err := s.tracker.AppendSmokingEvent(event); err != nil {
		s.writeAppendError(w, "smoking", err)
		return
	}
	slog.Info("smoking recorded", "id", event.ID, "cigarettes", event.Cigarettes)
	writeJSONResponse(w, http.StatusCreated, models.Recorded(event))
}

// writeAppendError maps event append failures onto HTTP statuses: validation
// failures are the client's fault, persistence failures are ours.
func (s *Server) writeAppendError(w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCigaretteCount),
		errors.Is(err, models.ErrInvalidIntensity),
		errors.Is(err, models.ErrDanglingDuration),
		errors.Is(err, models.ErrMissingDuration):
		slog.Warn("event validation failed", "kind", kind, "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
	default:
		slog.Error("event persistence failed", "kind", kind, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error(fmt.Sprintf("Failed to record %s event", kind)))
	}
}

// statsTodayHandler handles GET /stats/today.
func (s *Server) statsTodayHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	today := stats.Today(s.tracker.SmokingEvents(), s.tracker.CravingEvents(), s.tracker.Settings(), s.now())
	writeJSONResponse(w, http.StatusOK, models.Success(today))
}

// statsWeeklyHandler handles GET /stats/weekly.
func (s *Server) statsWeeklyHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	weekly := stats.Weekly(s.tracker.SmokingEvents(), s.tracker.CravingEvents(), s.tracker.Settings(), s.now())
	writeJSONResponse(w, http.StatusOK, models.Success(weekly))
}

// statsLifetimeHandler handles GET /stats/lifetime.
func (s *Server) statsLifetimeHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	lifetime := stats.Lifetime(s.tracker.SmokingEvents(), s.tracker.Settings(), s.now())
	writeJSONResponse(w, http.StatusOK, models.Success(lifetime))
}

// riskWindowsResult pairs the analytical top windows with the subset that
// clears the scheduling threshold.
type riskWindowsResult struct {
	Windows     []risk.Window `json:"windows"`
	Schedulable []risk.Window `json:"schedulable"`
}

// riskWindowsHandler handles GET /risk/windows.
func (s *Server) riskWindowsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	windows := risk.Analyze(s.tracker.CravingEvents())
	result := riskWindowsResult{
		Windows:     windows,
		Schedulable: risk.Schedulable(windows),
	}
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// insightsHandler handles GET /insights.
func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	smoking := s.tracker.SmokingEvents()
	craving := s.tracker.CravingEvents()
	settings := s.tracker.Settings()
	now := s.now()

	snap := insights.Snapshot{
		Today:    stats.Today(smoking, craving, settings, now),
		Weekly:   stats.Weekly(smoking, craving, settings, now),
		Windows:  risk.Analyze(craving),
		QuitDays: stats.QuitDuration(settings, now).Hours() / 24,
	}
	generated, err := s.generator.Generate(r.Context(), snap)
	if err != nil {
		slog.Error("insightsHandler: generation failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to generate insights"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(generated))
}

// exportHandler handles GET /export: the full data bundle as a JSON download.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	export, err := s.tracker.Export()
	if err != nil {
		slog.Error("exportHandler: export failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build export"))
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", util.GenerateExportID()+".json"))
	writeJSONResponse(w, http.StatusOK, export)
}

// settingsHandler handles GET and PUT /settings.
func (s *Server) settingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSONResponse(w, http.StatusOK, models.Success(s.tracker.Settings()))
	case http.MethodPut:
		var settings models.UserSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			slog.Warn("settingsHandler: invalid JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		defer r.Body.Close()

		if err := settings.Validate(); err != nil {
			slog.Warn("settingsHandler: validation failed", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		if err := s.tracker.SaveSettings(settings); err != nil {
			slog.Error("settingsHandler: save failed", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save settings"))
			return
		}
		s.rescheduleNotifications()
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Settings updated", settings))
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
	}
}

// notificationSettingsHandler handles PUT /settings/notifications.
func (s *Server) notificationSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}

	var settings models.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		slog.Warn("notificationSettingsHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	defer r.Body.Close()

	if err := settings.Validate(); err != nil {
		slog.Warn("notificationSettingsHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.tracker.SaveNotificationSettings(settings); err != nil {
		slog.Error("notificationSettingsHandler: save failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save notification settings"))
		return
	}
	s.rescheduleNotifications()
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Notification settings updated", settings))
}

// pushSubscriptionHandler handles POST /notifications/subscription: stores the
// browser push subscription used by the web-push delivery channel.
func (s *Server) pushSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 16<<10))
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	if !json.Valid(raw) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.tracker.SavePushSubscription(raw); err != nil {
		slog.Error("pushSubscriptionHandler: save failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save push subscription"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Push subscription saved", nil))
}

// anonymizeHandler handles POST /privacy/anonymize.
func (s *Server) anonymizeHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.tracker.Anonymize(); err != nil {
		slog.Error("anonymizeHandler: anonymization failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to anonymize data"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Data anonymized", nil))
}

// cleanupHandler handles POST /privacy/cleanup: drops events past retention.
func (s *Server) cleanupHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.tracker.CleanupOldData(); err != nil {
		slog.Error("cleanupHandler: cleanup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to clean up old data"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(
		fmt.Sprintf("Events older than %d days removed", tracker.DefaultRetentionDays), nil))
}

// deleteAllHandler handles DELETE /privacy/all: full local data erasure.
func (s *Server) deleteAllHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	if err := s.tracker.DeleteAll(); err != nil {
		slog.Error("deleteAllHandler: deletion failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete data"))
		return
	}
	s.notifier.CancelAll()
	slog.Info("all user data deleted")
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("All data deleted", nil))
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"state": "running"}))
}
