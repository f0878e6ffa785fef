// Package intervention implements the guided craving-intervention countdown.
//
// An episode is a small state machine advanced by one-second ticks. All
// transitions are synchronous so tests can simulate N ticks directly; the
// Runner in this package drives a live episode from a single ticker loop.
package intervention

import (
	"errors"
	"time"
)

// DefaultDurationSeconds is the standard episode length.
const DefaultDurationSeconds = 300

// State identifies where an episode is in its lifecycle.
type State string

const (
	// StateRunning means the countdown is active.
	StateRunning State = "RUNNING"
	// StateCompleted means the countdown reached zero and awaits resolution.
	StateCompleted State = "COMPLETED"
	// StateResisted is the terminal outcome for a successfully resisted craving.
	StateResisted State = "RESISTED"
	// StateGaveIn is the terminal outcome when the user acknowledges relapse.
	// No event is recorded; only an explicit smoking record produces one.
	StateGaveIn State = "GAVE_IN"
	// StateCancelled means the episode was abandoned without an outcome.
	StateCancelled State = "CANCELLED"
)

// Error variables for episode transitions.
var (
	ErrEpisodeTerminal = errors.New("episode already reached a terminal state")
)

// Episode is a single countdown episode. It is not safe for concurrent use;
// the Runner serializes access.
type Episode struct {
	total     int
	remaining int
	state     State
	startedAt time.Time
}

// NewEpisode starts a countdown of the given length in seconds. Non-positive
// lengths fall back to the default of five minutes.
func NewEpisode(totalSeconds int) *Episode {
	if totalSeconds <= 0 {
		totalSeconds = DefaultDurationSeconds
	}
	return &Episode{
		total:     totalSeconds,
		remaining: totalSeconds,
		state:     StateRunning,
		startedAt: time.Now(),
	}
}

// State returns the current episode state.
func (e *Episode) State() State { return e.state }

// Remaining returns the seconds left on the countdown.
func (e *Episode) Remaining() int { return e.remaining }

// Total returns the configured episode length in seconds.
func (e *Episode) Total() int { return e.total }

// Elapsed returns the seconds counted down so far.
func (e *Episode) Elapsed() int { return e.total - e.remaining }

// Terminal reports whether the episode reached a terminal state.
func (e *Episode) Terminal() bool {
	switch e.state {
	case StateResisted, StateGaveIn, StateCancelled:
		return true
	}
	return false
}

// Tick advances the countdown by one second. When the countdown reaches zero
// the episode transitions to Completed and further ticks are no-ops.
func (e *Episode) Tick() State {
	if e.state != StateRunning {
		return e.state
	}
	e.remaining--
	if e.remaining <= 0 {
		e.remaining = 0
		e.state = StateCompleted
	}
	return e.state
}

// Resolve ends the episode with a user-chosen outcome. Resisted resolution is
// allowed both from Completed and directly from Running (early exit); the
// reported duration is the elapsed seconds at that moment. A non-resisted
// resolution transitions to GaveIn.
func (e *Episode) Resolve(resisted bool) (durationSeconds int, err error) {
	if e.Terminal() {
		return 0, ErrEpisodeTerminal
	}
	if resisted {
		e.state = StateResisted
		return e.Elapsed(), nil
	}
	e.state = StateGaveIn
	return 0, nil
}

// Cancel abandons the episode from any non-terminal state. Cancellation
// produces no event.
func (e *Episode) Cancel() error {
	if e.Terminal() {
		return ErrEpisodeTerminal
	}
	e.state = StateCancelled
	return nil
}

// Guidance phrases shown during the countdown, selected by remaining time.
var guidancePhrases = [5]string{
	"The craving is a wave. It will pass.",
	"Every craving you resist makes you stronger.",
	"Think of how fresh air feels in your lungs.",
	"Your health is worth these five minutes.",
	"This is not giving up. This is choosing a better you.",
}

// Phrase returns the guidance text for the current remaining time. The bands
// are presentational only and not part of the state contract.
func (e *Episode) Phrase() string {
	switch {
	case e.remaining > 240:
		return guidancePhrases[0]
	case e.remaining > 180:
		return guidancePhrases[1]
	case e.remaining > 120:
		return guidancePhrases[2]
	case e.remaining > 60:
		return guidancePhrases[3]
	default:
		return guidancePhrases[4]
	}
}
