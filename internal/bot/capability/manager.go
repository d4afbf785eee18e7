// Package capability manages acquisition and lifecycle of the two model
// capabilities the reply pipeline depends on: text generation and text
// embedding.
//
// Both capabilities are acquired together as a pair at startup, with bounded
// retry. The system prefers either both-available or keyword-only fallback;
// it never starts in a half-initialised mixed mode. After startup each
// capability is used independently and per-call failures are not retried —
// they fall through the reply pipeline instead.
package capability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/web3realty/bot/common/retry"
	"github.com/web3realty/bot/internal/bot/embedding"
	"github.com/web3realty/bot/internal/bot/llm"
)

// State is the lifecycle state of a capability pair.
type State int

const (
	// Loading means acquisition has not yet succeeded or failed permanently.
	Loading State = iota
	// Ready means both capabilities were acquired and can be called.
	Ready
	// Degraded means acquisition failed after the retry budget was spent.
	// Terminal for the process lifetime.
	Degraded
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Acquisition defaults: 3 total attempts with a fixed 3-second pause between
// them, then permanent degradation.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 3 * time.Second
)

// ErrPermanent marks an acquisition failure as non-retryable. AcquireFuncs
// wrap deterministic failures (capabilities disabled, no credential
// configured) with it so the manager degrades immediately instead of
// spending the retry budget on an outcome that cannot change.
var ErrPermanent = errors.New("permanent acquisition failure")

// AcquireFunc obtains the generation and embedding capabilities as a pair.
// Implementations typically construct API clients and run a cheap probe
// call; an error from either half fails the whole acquisition.
type AcquireFunc func(ctx context.Context) (llm.Generator, embedding.Embedder, error)

// Marker persists the non-authoritative "acquisition previously succeeded"
// flag. It only controls whether a loading notice is shown — it has no
// effect on actual acquisition.
type Marker interface {
	// WasAcquired reports whether a previous process acquired successfully.
	WasAcquired(ctx context.Context) (bool, error)
	// RecordAcquired stores the success flag.
	RecordAcquired(ctx context.Context) error
}

// Config configures a Manager.
type Config struct {
	// Acquire obtains the capability pair. Required.
	Acquire AcquireFunc
	// MaxAttempts is the total acquisition attempts. Defaults to 3.
	MaxAttempts int
	// RetryDelay is the fixed wait between attempts. Defaults to 3 s.
	RetryDelay time.Duration
	// Marker is the optional previously-succeeded flag store.
	Marker Marker
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Manager owns the capability pair and its lifecycle state.
// Safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	state     State
	attempts  int
	generator llm.Generator
	embedder  embedding.Embedder

	cfg Config
}

// NewManager creates a Manager in the Loading state. Acquire must be called
// before the capabilities can be used.
func NewManager(cfg Config) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{state: Loading, cfg: cfg}
}

// Acquire attempts to obtain both capabilities, retrying failed attempts up
// to the configured budget with a fixed delay. On success the manager
// transitions to Ready and records the previously-succeeded marker; after
// the budget is spent it transitions to Degraded permanently. Acquire
// returns the final state. Calling Acquire again after a terminal state is
// a no-op.
func (m *Manager) Acquire(ctx context.Context) State {
	m.mu.Lock()
	if m.state != Loading {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.mu.Unlock()

	var gen llm.Generator
	var emb embedding.Embedder

	err := retry.Do(ctx, retry.Config{
		MaxAttempts: m.cfg.MaxAttempts,
		Delay:       m.cfg.RetryDelay,
		Multiplier:  1, // fixed delay between attempts
		ShouldRetry: func(err error) bool {
			return !errors.Is(err, ErrPermanent)
		},
	}, func() error {
		m.mu.Lock()
		m.attempts++
		attempt := m.attempts
		m.mu.Unlock()

		g, e, err := m.cfg.Acquire(ctx)
		if err != nil {
			m.cfg.Logger.Warn("capability: acquisition attempt failed",
				"attempt", attempt, "max", m.cfg.MaxAttempts, "err", err)
			return err
		}
		gen, emb = g, e
		return nil
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.state = Degraded
		m.cfg.Logger.Warn("capability: acquisition failed permanently, running keyword-only",
			"attempts", m.attempts)
		return m.state
	}

	m.generator = gen
	m.embedder = emb
	m.state = Ready
	m.cfg.Logger.Info("capability: generation and embedding ready",
		"attempts", m.attempts)

	if m.cfg.Marker != nil {
		if err := m.cfg.Marker.RecordAcquired(ctx); err != nil {
			m.cfg.Logger.Warn("capability: failed to record acquisition marker", "err", err)
		}
	}
	return m.state
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Attempts returns the number of acquisition attempts made so far.
func (m *Manager) Attempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempts
}

// GenerationReady reports whether the generation capability can be called.
func (m *Manager) GenerationReady() bool {
	return m.State() == Ready
}

// EmbeddingReady reports whether the embedding capability can be called.
func (m *Manager) EmbeddingReady() bool {
	return m.State() == Ready
}

// Generator returns the generation capability, or nil unless Ready.
func (m *Manager) Generator() llm.Generator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != Ready {
		return nil
	}
	return m.generator
}

// Embedder returns a stable handle on the embedding capability. The handle
// delegates to the manager on every call, so it can be held before
// acquisition completes: it behaves as a no-op embedder until the manager
// is Ready.
func (m *Manager) Embedder() embedding.Embedder {
	return managedEmbedder{m}
}

// managedEmbedder resolves the manager's current embedder on each call.
type managedEmbedder struct {
	m *Manager
}

func (e managedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.m.mu.RLock()
	emb := e.m.embedder
	ready := e.m.state == Ready
	e.m.mu.RUnlock()

	if !ready || emb == nil {
		return nil, nil
	}
	return emb.Embed(ctx, text)
}

// PreviouslyAcquired reports whether a past process acquired the pair
// successfully, per the marker store. Used only to skip the loading notice;
// errors and a missing marker both read as false.
func (m *Manager) PreviouslyAcquired(ctx context.Context) bool {
	if m.cfg.Marker == nil {
		return false
	}
	ok, err := m.cfg.Marker.WasAcquired(ctx)
	if err != nil {
		m.cfg.Logger.Warn("capability: failed to read acquisition marker", "err", err)
		return false
	}
	return ok
}
