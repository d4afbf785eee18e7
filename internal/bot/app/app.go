// Package app wires the reply pipeline to its collaborators: the SQLite
// store, the capability lifecycle manager, the embedding cache, the
// conversation tracker, and the Matrix front-end.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"maunium.net/go/mautrix/event"

	"github.com/web3realty/bot/common/redact"
	"github.com/web3realty/bot/common/trace"
	"github.com/web3realty/bot/internal/bot/capability"
	"github.com/web3realty/bot/internal/bot/embedding"
	"github.com/web3realty/bot/internal/bot/intent"
	"github.com/web3realty/bot/internal/bot/llm"
	"github.com/web3realty/bot/internal/bot/matrix"
	"github.com/web3realty/bot/internal/bot/memory"
	"github.com/web3realty/bot/internal/bot/mortgage"
	"github.com/web3realty/bot/internal/bot/orchestrator"
	"github.com/web3realty/bot/internal/bot/store"
)

// PriorityIntents are pre-embedded at startup so semantic fallback covers
// the most common categories before any user-triggered embedding call.
var PriorityIntents = []string{
	"greeting",
	"home_buying_process_steps",
	"tokenized_real_estate_platforms",
	"defi_mortgage_protocols",
}

// loadingNotice is sent to each chat room on a cold start, before the model
// capabilities have been acquired. Suppressed when a previous process
// recorded a successful acquisition.
const loadingNotice = "Warming up the models - keyword answers only for a moment."

// Provider names accepted by Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	Matrix       matrix.Config

	// Provider selects the model backend: "openai" (default), "gemini", or
	// "none" to run keyword-only from the start.
	Provider string

	// APIKey is the credential for the selected provider. When empty and
	// Provider is not "none", acquisition fails and the bot degrades to
	// keyword-only resolution after the retry budget.
	APIKey string

	// GenerationModel and EmbeddingModel override the backend defaults.
	GenerationModel string
	EmbeddingModel  string

	// BaseURL overrides the OpenAI-compatible endpoint (ignored for gemini).
	BaseURL string

	// IntentsPath optionally points at an intent table YAML file; the
	// embedded default table is used when empty.
	IntentsPath string

	// MarketDataPath optionally points at a market data YAML file.
	MarketDataPath string

	// AcquireMaxAttempts and AcquireRetryDelay tune capability acquisition.
	// Zero values use the package defaults (3 attempts, 3 s fixed delay).
	AcquireMaxAttempts int
	AcquireRetryDelay  time.Duration
}

// App is the assembled bot
type App struct {
	cfg    Config
	db     *store.Store
	table  intent.Table
	market intent.MarketData
	caps   *capability.Manager
	cache  *embedding.Cache
	orch   *orchestrator.Orchestrator
	client *matrix.Client
	logger *slog.Logger
}

// New assembles the application from configuration.
func New(cfg Config) (*App, error) {
	logger := slog.Default()

	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	table, err := loadTable(cfg.IntentsPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	market, err := loadMarketData(cfg.MarketDataPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	caps := capability.NewManager(capability.Config{
		Acquire:     acquireFunc(cfg),
		MaxAttempts: cfg.AcquireMaxAttempts,
		RetryDelay:  cfg.AcquireRetryDelay,
		Marker:      db.Markers(),
		Logger:      logger,
	})

	cache := embedding.NewCache(caps.Embedder(), caps.EmbeddingReady, logger)
	tracker := memory.NewTracker()
	orch := orchestrator.New(table, caps, cache, tracker, market, logger)

	cfg.Matrix.DB = db.DB()
	client, err := matrix.New(&cfg.Matrix)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("app: create matrix client: %w", err)
	}

	return &App{
		cfg:    cfg,
		db:     db,
		table:  table,
		market: market,
		caps:   caps,
		orch:   orch,
		cache:  cache,
		client: client,
		logger: logger,
	}, nil
}

// Run acquires the model capabilities in the background, starts the Matrix
// sync loop, and blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coldStart := !a.caps.PreviouslyAcquired(ctx)

	// Capability acquisition happens off the sync loop; the bot answers
	// keyword-only until it completes.
	go func() {
		state := a.caps.Acquire(ctx)
		if state == capability.Ready {
			a.cache.Ensure(ctx, a.table.PriorityKeywords(PriorityIntents))
			a.logger.Info("app: embedding cache warmed",
				"keywords", a.cache.Len())
		}
	}()

	if err := a.client.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("app: start matrix client: %w", err)
	}

	if coldStart {
		for _, roomID := range a.cfg.Matrix.ChatRooms {
			if err := a.client.SendNotice(roomID, loadingNotice); err != nil {
				a.logger.Warn("app: failed to send loading notice",
					"room", roomID, "err", err)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	return nil
}

// Stop releases the Matrix connection and the database.
func (a *App) Stop() {
	a.client.Stop()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("app: failed to close store", "err", err)
	}
}

// handleMessage processes one incoming room message.
func (a *App) handleMessage(ctx context.Context, evt *event.Event) {
	traceID := trace.GenerateID()
	ctx = trace.WithTraceID(ctx, traceID)
	logger := a.logger.With("trace_id", traceID)

	roomID := evt.RoomID.String()
	senderID := evt.Sender.String()
	body := strings.TrimSpace(evt.Content.AsMessage().Body)

	if body == "!clear" {
		a.orch.Tracker().Reset(roomID, senderID)
		if err := a.client.SendNotice(roomID, "New chat, fresh vibes! Homes, crypto, or something wild?"); err != nil {
			logger.Warn("app: failed to send clear notice", "room", roomID, "err", err)
		}
		return
	}

	// Mortgage calculations short-circuit the reply pipeline. The user turn
	// still enters the window so a later "what was that payment?" has context.
	if strings.Contains(strings.ToLower(body), mortgage.TriggerPhrase) {
		a.orch.Tracker().Record(roomID, senderID, memory.SpeakerUser, body)
		text := mortgage.Usage
		if req, ok := mortgage.ParseRequest(body); ok {
			text = mortgage.Reply(req)
		}
		a.orch.Tracker().Record(roomID, senderID, memory.SpeakerBot, text)
		if err := a.client.SendMessage(roomID, text); err != nil {
			logger.Error("app: failed to send mortgage reply", "room", roomID, "err", err)
		}
		return
	}

	_ = a.client.SetTyping(roomID, true, 10*time.Second)
	defer a.client.SetTyping(roomID, false, 0)

	reply := a.orch.Respond(ctx, roomID, senderID, body)
	text := formatReply(reply)

	if err := a.client.SendMessage(roomID, text); err != nil {
		logger.Error("app: failed to send reply", "room", roomID, "err", err)
		return
	}

	a.recordTranscript(ctx, roomID, senderID, body, reply)
}

// formatReply renders a Reply as a plain-text room message.
func formatReply(reply orchestrator.Reply) string {
	var b strings.Builder
	if reply.DidYouMean != "" {
		b.WriteString(reply.DidYouMean)
		b.WriteString(" ")
	}
	b.WriteString(reply.Text)
	if len(reply.QuickReplies) > 0 {
		b.WriteString("\n\nTry: ")
		b.WriteString(strings.Join(reply.QuickReplies, " | "))
	}
	return b.String()
}

// recordTranscript appends the user turn and the bot reply to the
// transcript log. Failures are logged, never surfaced to the room.
func (a *App) recordTranscript(ctx context.Context, roomID, senderID, input string, reply orchestrator.Reply) {
	now := time.Now()
	convID := roomID + ":" + senderID

	entries := []store.TranscriptEntry{
		{
			Timestamp:      now,
			ConversationID: convID,
			RoomID:         roomID,
			SenderID:       senderID,
			Speaker:        string(memory.SpeakerUser),
			Text:           input,
		},
		{
			Timestamp:      now,
			ConversationID: convID,
			RoomID:         roomID,
			SenderID:       senderID,
			Speaker:        string(memory.SpeakerBot),
			Text:           reply.Text,
			Fallback:       reply.Fallback,
			DidYouMean:     sql.NullString{String: reply.DidYouMean, Valid: reply.DidYouMean != ""},
		},
	}
	for _, e := range entries {
		if err := a.db.WriteTranscript(ctx, e); err != nil {
			a.logger.Warn("app: failed to write transcript", "err", err)
			return
		}
	}
}

// acquireFunc builds the capability acquisition function for the configured
// provider. Acquisition constructs both clients and runs one cheap probe
// embedding so a bad credential fails fast instead of on the first user turn.
func acquireFunc(cfg Config) capability.AcquireFunc {
	return func(ctx context.Context) (llm.Generator, embedding.Embedder, error) {
		switch cfg.Provider {
		case ProviderNone:
			return nil, nil, fmt.Errorf("app: model capabilities disabled by configuration: %w", capability.ErrPermanent)

		case ProviderGemini:
			gen, err := llm.NewGenAI(ctx, cfg.APIKey, cfg.GenerationModel)
			if err != nil {
				return nil, nil, redactErr(err, cfg.APIKey)
			}
			emb, err := embedding.NewGenAIEmbedder(ctx, cfg.APIKey, cfg.EmbeddingModel)
			if err != nil {
				return nil, nil, redactErr(err, cfg.APIKey)
			}
			if err := probe(ctx, emb); err != nil {
				return nil, nil, redactErr(err, cfg.APIKey)
			}
			return gen, emb, nil

		default: // openai-compatible
			if cfg.APIKey == "" {
				return nil, nil, fmt.Errorf("app: no API key configured: %w", capability.ErrPermanent)
			}
			gen := llm.NewOpenAI(llm.OpenAIConfig{
				APIKey:  cfg.APIKey,
				BaseURL: cfg.BaseURL,
				Model:   cfg.GenerationModel,
			})
			emb := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
				APIKey:  cfg.APIKey,
				BaseURL: cfg.BaseURL,
				Model:   cfg.EmbeddingModel,
			})
			if err := probe(ctx, emb); err != nil {
				return nil, nil, redactErr(err, cfg.APIKey)
			}
			return gen, emb, nil
		}
	}
}

// redactErr strips secrets from an error before it reaches log output.
func redactErr(err error, secrets ...string) error {
	return errors.New(redact.String(err.Error(), secrets...))
}

// probe verifies the embedding half of the pair with one short call.
func probe(ctx context.Context, emb embedding.Embedder) error {
	vec, err := emb.Embed(ctx, "hello")
	if err != nil {
		return fmt.Errorf("app: embedding probe failed: %w", err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("app: embedding probe returned an empty vector")
	}
	return nil
}

// loadTable reads the intent table from path, or the embedded default.
func loadTable(path string) (intent.Table, error) {
	if path == "" {
		return intent.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read intents file: %w", err)
	}
	table, err := intent.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("app: load intents file: %w", err)
	}
	return table, nil
}

// loadMarketData reads market data from path, or the built-in defaults.
func loadMarketData(path string) (intent.MarketData, error) {
	if path == "" {
		return intent.DefaultMarketData(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return intent.MarketData{}, fmt.Errorf("app: read market data file: %w", err)
	}
	md, err := intent.ParseMarketData(data)
	if err != nil {
		return intent.MarketData{}, fmt.Errorf("app: load market data file: %w", err)
	}
	return md, nil
}
