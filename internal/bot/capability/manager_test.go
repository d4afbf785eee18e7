package capability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/web3realty/bot/internal/bot/embedding"
	"github.com/web3realty/bot/internal/bot/llm"
)

type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return "ok", nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

// flakyAcquire fails the first failures attempts, then succeeds.
func flakyAcquire(failures int) AcquireFunc {
	attempt := 0
	return func(ctx context.Context) (llm.Generator, embedding.Embedder, error) {
		attempt++
		if attempt <= failures {
			return nil, nil, errors.New("backend unavailable")
		}
		return fakeGenerator{}, fakeEmbedder{}, nil
	}
}

type fakeMarker struct {
	acquired bool
	recorded int
}

func (m *fakeMarker) WasAcquired(ctx context.Context) (bool, error) { return m.acquired, nil }
func (m *fakeMarker) RecordAcquired(ctx context.Context) error {
	m.acquired = true
	m.recorded++
	return nil
}

func TestManager_AcquireFirstTry(t *testing.T) {
	marker := &fakeMarker{}
	m := NewManager(Config{
		Acquire:    flakyAcquire(0),
		RetryDelay: time.Millisecond,
		Marker:     marker,
	})

	if m.State() != Loading {
		t.Fatalf("initial state = %v, want Loading", m.State())
	}

	state := m.Acquire(context.Background())
	if state != Ready {
		t.Fatalf("Acquire() = %v, want Ready", state)
	}
	if m.Attempts() != 1 {
		t.Errorf("Attempts() = %d, want 1", m.Attempts())
	}
	if !m.GenerationReady() || !m.EmbeddingReady() {
		t.Error("capabilities not ready after successful acquisition")
	}
	if m.Generator() == nil {
		t.Error("Generator() = nil after successful acquisition")
	}
	if marker.recorded != 1 {
		t.Errorf("marker recorded %d times, want 1", marker.recorded)
	}
}

func TestManager_AcquireRecoversWithinBudget(t *testing.T) {
	m := NewManager(Config{
		Acquire:    flakyAcquire(2),
		RetryDelay: time.Millisecond,
	})

	state := m.Acquire(context.Background())
	if state != Ready {
		t.Fatalf("Acquire() = %v, want Ready after recovery on third attempt", state)
	}
	if m.Attempts() != 3 {
		t.Errorf("Attempts() = %d, want 3", m.Attempts())
	}
}

func TestManager_AcquireDegradesAfterBudget(t *testing.T) {
	marker := &fakeMarker{}
	m := NewManager(Config{
		Acquire:    flakyAcquire(10),
		RetryDelay: time.Millisecond,
		Marker:     marker,
	})

	state := m.Acquire(context.Background())
	if state != Degraded {
		t.Fatalf("Acquire() = %v, want Degraded", state)
	}
	if m.Attempts() != DefaultMaxAttempts {
		t.Errorf("Attempts() = %d, want %d", m.Attempts(), DefaultMaxAttempts)
	}
	if m.GenerationReady() || m.EmbeddingReady() {
		t.Error("capabilities report ready while degraded")
	}
	if m.Generator() != nil {
		t.Error("Generator() != nil while degraded")
	}
	if marker.recorded != 0 {
		t.Errorf("marker recorded %d times, want 0 on failure", marker.recorded)
	}

	// Degraded is terminal: a second Acquire must not run new attempts.
	if again := m.Acquire(context.Background()); again != Degraded {
		t.Errorf("second Acquire() = %v, want Degraded", again)
	}
	if m.Attempts() != DefaultMaxAttempts {
		t.Errorf("Attempts() after re-acquire = %d, want unchanged %d", m.Attempts(), DefaultMaxAttempts)
	}
}

func TestManager_AcquireDegradesImmediatelyOnPermanentError(t *testing.T) {
	calls := 0
	m := NewManager(Config{
		Acquire: func(ctx context.Context) (llm.Generator, embedding.Embedder, error) {
			calls++
			return nil, nil, fmt.Errorf("capabilities disabled: %w", ErrPermanent)
		},
		RetryDelay: time.Minute, // must never be waited on
	})

	state := m.Acquire(context.Background())
	if state != Degraded {
		t.Fatalf("Acquire() = %v, want Degraded", state)
	}
	if calls != 1 {
		t.Errorf("acquire func called %d times, want 1 for a permanent error", calls)
	}
}

func TestManager_EmbedderHandleBeforeAcquisition(t *testing.T) {
	m := NewManager(Config{
		Acquire:    flakyAcquire(0),
		RetryDelay: time.Millisecond,
	})

	// The handle can be taken before acquisition and behaves as a no-op.
	handle := m.Embedder()
	vec, err := handle.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() before acquisition error = %v, want nil", err)
	}
	if vec != nil {
		t.Fatalf("Embed() before acquisition = %v, want nil vector", vec)
	}

	if state := m.Acquire(context.Background()); state != Ready {
		t.Fatalf("Acquire() = %v, want Ready", state)
	}

	// The same handle now delegates to the acquired embedder.
	vec, err = handle.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() after acquisition error = %v, want nil", err)
	}
	if len(vec) == 0 {
		t.Error("Embed() after acquisition returned an empty vector")
	}
}

func TestManager_AcquireCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(Config{
		Acquire:    flakyAcquire(10),
		RetryDelay: time.Minute, // must never be waited on
	})

	state := m.Acquire(ctx)
	if state != Degraded {
		t.Fatalf("Acquire() with cancelled context = %v, want Degraded", state)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Loading, "loading"},
		{Ready, "ready"},
		{Degraded, "degraded"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestManager_PreviouslyAcquired(t *testing.T) {
	marker := &fakeMarker{acquired: true}
	m := NewManager(Config{Acquire: flakyAcquire(0), Marker: marker})
	if !m.PreviouslyAcquired(context.Background()) {
		t.Error("PreviouslyAcquired() = false, want true with set marker")
	}

	noMarker := NewManager(Config{Acquire: flakyAcquire(0)})
	if noMarker.PreviouslyAcquired(context.Background()) {
		t.Error("PreviouslyAcquired() = true, want false without marker store")
	}
}
