package intervention

import (
	"errors"
	"testing"
)

func TestNewEpisodeDefaults(t *testing.T) {
	ep := NewEpisode(0)
	if ep.Total() != DefaultDurationSeconds {
		t.Errorf("expected default length %d, got %d", DefaultDurationSeconds, ep.Total())
	}
	if ep.State() != StateRunning {
		t.Errorf("expected running state, got %q", ep.State())
	}
	if ep.Remaining() != DefaultDurationSeconds {
		t.Errorf("expected full countdown, got %d", ep.Remaining())
	}

	ep = NewEpisode(-5)
	if ep.Total() != DefaultDurationSeconds {
		t.Errorf("negative length: expected default %d, got %d", DefaultDurationSeconds, ep.Total())
	}
}

func TestFullCountdownCompletes(t *testing.T) {
	ep := NewEpisode(300)
	for i := 0; i < 299; i++ {
		if got := ep.Tick(); got != StateRunning {
			t.Fatalf("tick %d: expected running, got %q", i+1, got)
		}
	}
	if got := ep.Tick(); got != StateCompleted {
		t.Errorf("expected completed after 300 ticks, got %q", got)
	}
	if ep.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", ep.Remaining())
	}

	// Further ticks are no-ops.
	if got := ep.Tick(); got != StateCompleted {
		t.Errorf("expected tick after completion to be a no-op, got %q", got)
	}
	if ep.Remaining() != 0 {
		t.Errorf("remaining went below zero: %d", ep.Remaining())
	}
}

func TestEarlyResolveReportsElapsed(t *testing.T) {
	ep := NewEpisode(300)
	for i := 0; i < 120; i++ {
		ep.Tick()
	}

	duration, err := ep.Resolve(true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if duration != 120 {
		t.Errorf("expected duration 120, got %d", duration)
	}
	if ep.State() != StateResisted {
		t.Errorf("expected resisted state, got %q", ep.State())
	}
}

func TestResolveAfterCompletion(t *testing.T) {
	ep := NewEpisode(2)
	ep.Tick()
	ep.Tick()
	if ep.State() != StateCompleted {
		t.Fatalf("expected completed, got %q", ep.State())
	}

	duration, err := ep.Resolve(true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if duration != 2 {
		t.Errorf("expected full duration 2, got %d", duration)
	}
}

func TestResolveGaveIn(t *testing.T) {
	ep := NewEpisode(300)
	ep.Tick()

	if _, err := ep.Resolve(false); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if ep.State() != StateGaveIn {
		t.Errorf("expected gave-in state, got %q", ep.State())
	}
}

func TestTerminalEpisodeRejectsTransitions(t *testing.T) {
	ep := NewEpisode(300)
	if _, err := ep.Resolve(true); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if _, err := ep.Resolve(false); !errors.Is(err, ErrEpisodeTerminal) {
		t.Errorf("expected ErrEpisodeTerminal on double resolve, got %v", err)
	}
	if err := ep.Cancel(); !errors.Is(err, ErrEpisodeTerminal) {
		t.Errorf("expected ErrEpisodeTerminal on cancel after resolve, got %v", err)
	}
	if got := ep.Tick(); got != StateResisted {
		t.Errorf("expected tick on terminal episode to be a no-op, got %q", got)
	}
}

func TestCancel(t *testing.T) {
	ep := NewEpisode(300)
	ep.Tick()
	if err := ep.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if ep.State() != StateCancelled {
		t.Errorf("expected cancelled state, got %q", ep.State())
	}
}

func TestPhraseBands(t *testing.T) {
	cases := []struct {
		remaining int
		expected  string
	}{
		{300, guidancePhrases[0]},
		{241, guidancePhrases[0]},
		{240, guidancePhrases[1]},
		{181, guidancePhrases[1]},
		{180, guidancePhrases[2]},
		{121, guidancePhrases[2]},
		{120, guidancePhrases[3]},
		{61, guidancePhrases[3]},
		{60, guidancePhrases[4]},
		{0, guidancePhrases[4]},
	}
	for _, tc := range cases {
		ep := &Episode{total: 300, remaining: tc.remaining, state: StateRunning}
		if got := ep.Phrase(); got != tc.expected {
			t.Errorf("remaining %d: expected %q, got %q", tc.remaining, tc.expected, got)
		}
	}
}
