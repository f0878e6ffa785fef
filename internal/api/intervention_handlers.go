// Package api provides HTTP handlers for intervention timer management.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/quitpulse/QuitPulse/internal/intervention"
	"github.com/quitpulse/QuitPulse/internal/models"
)

// startInterventionRequest is the body for POST /interventions. A zero or
// missing duration starts the standard five-minute episode.
type startInterventionRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// resolveInterventionRequest is the body for POST /interventions/resolve.
type resolveInterventionRequest struct {
	Outcome string `json:"outcome"` // "resisted" or "gave_in"
}

// startInterventionHandler handles POST /interventions. Starting a new episode
// cancels any episode already in flight; this is a single-user timer.
func (s *Server) startInterventionHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req startInterventionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Warn("startInterventionHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	snap := s.runner.Start(req.DurationSeconds)
	slog.Info("intervention started", "total_seconds", snap.Total)
	writeJSONResponse(w, http.StatusCreated, models.Success(snap))
}

// currentInterventionHandler handles GET /interventions/current.
func (s *Server) currentInterventionHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	snap, err := s.runner.Snapshot()
	if err != nil {
		if errors.Is(err, intervention.ErrNoEpisode) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No intervention in progress"))
			return
		}
		slog.Error("currentInterventionHandler: snapshot failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read intervention state"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(snap))
}

// resolveInterventionHandler handles POST /interventions/resolve. A resisted
// outcome records a resisted craving event with the elapsed duration.
func (s *Server) resolveInterventionHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req resolveInterventionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Warn("resolveInterventionHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	var resisted bool
	switch req.Outcome {
	case "resisted":
		resisted = true
	case "gave_in":
		resisted = false
	default:
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Outcome must be 'resisted' or 'gave_in'"))
		return
	}

	snap, err := s.runner.Resolve(resisted)
	if err != nil {
		switch {
		case errors.Is(err, intervention.ErrNoEpisode):
			writeJSONResponse(w, http.StatusNotFound, models.Error("No intervention in progress"))
		case errors.Is(err, intervention.ErrEpisodeTerminal):
			writeJSONResponse(w, http.StatusConflict, models.Error("Intervention already finished"))
		default:
			slog.Error("resolveInterventionHandler: resolve failed", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to resolve intervention"))
		}
		return
	}
	slog.Info("intervention resolved", "outcome", req.Outcome, "elapsed", snap.Elapsed)
	writeJSONResponse(w, http.StatusOK, models.Success(snap))
}

// cancelInterventionHandler handles POST /interventions/cancel. Cancellation
// leaves no trace in the event log.
func (s *Server) cancelInterventionHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.runner.Cancel(); err != nil {
		if errors.Is(err, intervention.ErrNoEpisode) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No intervention in progress"))
			return
		}
		slog.Error("cancelInterventionHandler: cancel failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to cancel intervention"))
		return
	}
	slog.Info("intervention cancelled")
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Intervention cancelled", nil))
}
