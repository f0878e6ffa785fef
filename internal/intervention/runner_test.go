package intervention

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
)

// recorderStub captures appended craving events.
type recorderStub struct {
	mu     sync.Mutex
	events []models.CravingEvent
}

func (r *recorderStub) AppendCravingEvent(e models.CravingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorderStub) recorded() []models.CravingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CravingEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestRunnerSnapshotWithoutEpisode(t *testing.T) {
	r := NewRunner(&recorderStub{})
	defer r.Stop()

	if _, err := r.Snapshot(); !errors.Is(err, ErrNoEpisode) {
		t.Errorf("expected ErrNoEpisode, got %v", err)
	}
}

func TestRunnerStartAndSnapshot(t *testing.T) {
	r := NewRunner(&recorderStub{}, WithTickInterval(time.Hour))
	defer r.Stop()

	snap := r.Start(300)
	if snap.State != StateRunning {
		t.Errorf("expected running, got %q", snap.State)
	}
	if snap.Total != 300 || snap.Remaining != 300 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.Phrase == "" {
		t.Error("expected a guidance phrase")
	}

	got, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if got.State != StateRunning {
		t.Errorf("expected running, got %q", got.State)
	}
}

func TestRunnerResolveResistedRecordsEvent(t *testing.T) {
	rec := &recorderStub{}
	now := time.Date(2026, time.March, 5, 18, 30, 0, 0, time.Local)
	r := NewRunner(rec,
		WithTickInterval(time.Hour),
		WithClock(func() time.Time { return now }))
	defer r.Stop()

	r.Start(300)
	snap, err := r.Resolve(true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if snap.State != StateResisted {
		t.Errorf("expected resisted, got %q", snap.State)
	}

	events := rec.recorded()
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 recorded event, got %d", len(events))
	}
	e := events[0]
	if !e.Resisted {
		t.Error("expected recorded event to be resisted")
	}
	if e.ResistanceDuration == nil {
		t.Fatal("expected resistance duration set")
	}
	if !e.Timestamp.Equal(now) {
		t.Errorf("expected event timestamp %v, got %v", now, e.Timestamp)
	}

	// Runner is idle again.
	if _, err := r.Snapshot(); !errors.Is(err, ErrNoEpisode) {
		t.Errorf("expected ErrNoEpisode after resolve, got %v", err)
	}
}

func TestRunnerResolveGaveInRecordsNothing(t *testing.T) {
	rec := &recorderStub{}
	r := NewRunner(rec, WithTickInterval(time.Hour))
	defer r.Stop()

	r.Start(300)
	snap, err := r.Resolve(false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if snap.State != StateGaveIn {
		t.Errorf("expected gave-in, got %q", snap.State)
	}
	if got := len(rec.recorded()); got != 0 {
		t.Errorf("gave-in must not record events, got %d", got)
	}
}

func TestRunnerCancelRecordsNothing(t *testing.T) {
	rec := &recorderStub{}
	r := NewRunner(rec, WithTickInterval(time.Hour))
	defer r.Stop()

	r.Start(300)
	if err := r.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := len(rec.recorded()); got != 0 {
		t.Errorf("cancel must not record events, got %d", got)
	}
	if _, err := r.Snapshot(); !errors.Is(err, ErrNoEpisode) {
		t.Errorf("expected ErrNoEpisode after cancel, got %v", err)
	}
	if err := r.Cancel(); !errors.Is(err, ErrNoEpisode) {
		t.Errorf("expected ErrNoEpisode on double cancel, got %v", err)
	}
}

func TestRunnerStartReplacesInFlightEpisode(t *testing.T) {
	rec := &recorderStub{}
	r := NewRunner(rec, WithTickInterval(time.Hour))
	defer r.Stop()

	r.Start(300)
	snap := r.Start(60)
	if snap.Total != 60 {
		t.Errorf("expected new episode length 60, got %d", snap.Total)
	}
	if got := len(rec.recorded()); got != 0 {
		t.Errorf("replacing an episode must not record events, got %d", got)
	}
}

func TestRunnerTicksCountDown(t *testing.T) {
	r := NewRunner(&recorderStub{}, WithTickInterval(5*time.Millisecond))
	defer r.Stop()

	r.Start(3)
	deadline := time.After(2 * time.Second)
	for {
		snap, err := r.Snapshot()
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if snap.State == StateCompleted {
			if snap.Remaining != 0 {
				t.Errorf("expected 0 remaining at completion, got %d", snap.Remaining)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("countdown never completed, state %q remaining %d", snap.State, snap.Remaining)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
