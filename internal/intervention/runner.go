package intervention

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
)

// resistedContext labels craving events produced by a resisted episode.
const resistedContext = "intervention resisted"

// ErrNoEpisode is returned when no intervention episode is in flight.
var ErrNoEpisode = errors.New("no active intervention episode")

// Recorder receives the craving event produced by a resisted episode.
type Recorder interface {
	AppendCravingEvent(e models.CravingEvent) error
}

// Snapshot is a point-in-time view of the running episode for the UI layer.
type Snapshot struct {
	State     State  `json:"state"`
	Remaining int    `json:"remaining_seconds"`
	Elapsed   int    `json:"elapsed_seconds"`
	Total     int    `json:"total_seconds"`
	Phrase    string `json:"phrase"`
}

// Opts holds configuration options for the runner.
type Opts struct {
	TickInterval time.Duration
	Clock        func() time.Time
}

// Option defines a configuration option for the runner.
type Option func(*Opts)

// WithTickInterval overrides the one-second tick period (used by tests).
func WithTickInterval(d time.Duration) Option {
	return func(o *Opts) { o.TickInterval = d }
}

// WithClock overrides the time source for event timestamps (used by tests).
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// Runner drives at most one live episode at a time. A single ticker goroutine
// advances the countdown; all state transitions happen under one lock so they
// stay serialized, mirroring a single-threaded control loop.
type Runner struct {
	recorder Recorder
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	episode *Episode
	stop    chan struct{}
}

// NewRunner creates a runner that records resisted outcomes via recorder.
func NewRunner(recorder Recorder, opts ...Option) *Runner {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Runner{recorder: recorder, interval: cfg.TickInterval, now: cfg.Clock}
}

// Start begins a new episode, cancelling any episode already in flight.
func (r *Runner) Start(totalSeconds int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.episode = NewEpisode(totalSeconds)
	r.stop = make(chan struct{})
	go r.loop(r.episode, r.stop)

	slog.Info("intervention: episode started", "total_seconds", r.episode.Total())
	return r.snapshotLocked()
}

// loop is the per-episode tick loop. It exits once the countdown leaves the
// Running state or the episode is stopped.
func (r *Runner) loop(ep *Episode, stop chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.episode != ep {
				r.mu.Unlock()
				return
			}
			state := ep.Tick()
			r.mu.Unlock()
			if state != StateRunning {
				slog.Debug("intervention: countdown finished", "state", state)
				return
			}
		}
	}
}

// Snapshot returns the current episode view, or ErrNoEpisode when idle.
func (r *Runner) Snapshot() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.episode == nil {
		return Snapshot{}, ErrNoEpisode
	}
	return r.snapshotLocked(), nil
}

func (r *Runner) snapshotLocked() Snapshot {
	ep := r.episode
	return Snapshot{
		State:     ep.State(),
		Remaining: ep.Remaining(),
		Elapsed:   ep.Elapsed(),
		Total:     ep.Total(),
		Phrase:    ep.Phrase(),
	}
}

// Resolve ends the live episode with the user's choice. A resisted outcome
// appends exactly one craving event with the measured duration; giving in
// records nothing.
func (r *Runner) Resolve(resisted bool) (Snapshot, error) {
	r.mu.Lock()
	if r.episode == nil {
		r.mu.Unlock()
		return Snapshot{}, ErrNoEpisode
	}
	duration, err := r.episode.Resolve(resisted)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}
	snap := r.snapshotLocked()
	r.stopLocked()
	r.episode = nil
	r.mu.Unlock()

	if resisted {
		event := models.NewResistedCravingEvent(r.now(), resistedContext, float64(duration))
		if err := r.recorder.AppendCravingEvent(event); err != nil {
			slog.Error("intervention: failed to record resisted craving", "error", err)
			return snap, err
		}
		slog.Info("intervention: resisted craving recorded", "duration_seconds", duration)
	} else {
		slog.Info("intervention: episode resolved as gave in")
	}
	return snap, nil
}

// Cancel abandons the live episode without recording anything.
func (r *Runner) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.episode == nil {
		return ErrNoEpisode
	}
	if err := r.episode.Cancel(); err != nil {
		return err
	}
	r.stopLocked()
	r.episode = nil
	slog.Info("intervention: episode cancelled")
	return nil
}

// Stop shuts down any live tick loop. Safe to call when idle.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.episode = nil
}

func (r *Runner) stopLocked() {
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}
