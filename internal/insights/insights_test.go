package insights

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStaticGeneratorReturnsCuratedSet(t *testing.T) {
	g := &StaticGenerator{Delay: 0}

	got, err := g.Generate(context.Background(), Snapshot{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one insight")
	}
	for i, in := range got {
		if in.Title == "" || in.Description == "" || in.ActionTip == "" {
			t.Errorf("insight %d has empty fields: %+v", i, in)
		}
		switch in.Confidence {
		case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		default:
			t.Errorf("insight %d has invalid confidence %q", i, in.Confidence)
		}
	}
}

func TestStaticGeneratorHonorsCancellation(t *testing.T) {
	g := &StaticGenerator{Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Generate(ctx, Snapshot{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewStaticGeneratorDefaultDelay(t *testing.T) {
	if g := NewStaticGenerator(); g.Delay != DefaultDelay {
		t.Errorf("expected default delay %v, got %v", DefaultDelay, g.Delay)
	}
}

func TestNewOpenAIGeneratorRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIGenerator(); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := NewOpenAIGenerator(WithAPIKey("sk-test")); err != nil {
		t.Errorf("expected generator with explicit key, got error %v", err)
	}
}
