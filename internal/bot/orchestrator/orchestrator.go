// Package orchestrator implements the tiered reply pipeline: generation
// first, then keyword matching, then semantic fallback, then the default
// reply. Every tier absorbs its own failures and falls through to the next;
// a turn always terminates in a reply, never an error.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/web3realty/bot/internal/bot/capability"
	"github.com/web3realty/bot/internal/bot/embedding"
	"github.com/web3realty/bot/internal/bot/intent"
	"github.com/web3realty/bot/internal/bot/llm"
	"github.com/web3realty/bot/internal/bot/memory"
	"github.com/web3realty/bot/internal/bot/nlp"
)

// DefaultReply is returned when no tier produces an accepted reply.
const DefaultReply = "Hmm, didn't catch that - house hunt, crypto deal, or something wild?"

// TooShortReply short-circuits inputs under two characters without entering
// the pipeline or touching the conversation window.
const TooShortReply = `Too short! Try "buy a house" or "what's Web3?" to get going!`

// SecondaryGateThreshold is the minimum similarity between the normalised
// input and the matched intent's joined keyword list before a keyword match
// is accepted outright. The primary resolver already scored per keyword;
// this second gate guards against accepting a low-quality aggregate match.
const SecondaryGateThreshold = 0.5

// fallbackPhrases mark a generated reply as low-confidence when any of them
// appears in the lowercased text.
var fallbackPhrases = []string{"not sure", "i don't know", "cannot help"}

// quickReplies are the shortcut suggestions attached to fallback replies
// that carry no "did you mean" annotation.
var quickReplies = []string{"Buy a home", "Crypto deals", "Market trends"}

// Reply is the outcome of one user turn, handed to the presentation layer.
type Reply struct {
	// Text is the reply body (market data already rendered for canned replies).
	Text string
	// DidYouMean is the low-confidence-match annotation ("did you mean
	// <intent>?"), empty when the match needed no disclosure.
	DidYouMean string
	// QuickReplies are shortcut suggestions; non-nil only on fallback
	// replies without a DidYouMean annotation.
	QuickReplies []string
	// Fallback is true when the reply did not come from the generation tier.
	Fallback bool
}

// Orchestrator composes the resolvers, capability manager, conversation
// tracker, and intent table into the per-turn reply pipeline.
type Orchestrator struct {
	table   intent.Table
	caps    *capability.Manager
	cache   *embedding.Cache
	tracker *memory.Tracker
	market  intent.MarketData
	logger  *slog.Logger
}

// New creates an Orchestrator. All collaborators are required except the
// logger, which defaults to slog.Default.
func New(table intent.Table, caps *capability.Manager, cache *embedding.Cache, tracker *memory.Tracker, market intent.MarketData, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		table:   table,
		caps:    caps,
		cache:   cache,
		tracker: tracker,
		market:  market,
		logger:  logger,
	}
}

// Tracker exposes the conversation tracker for presentation-layer commands
// (conversation reset).
func (o *Orchestrator) Tracker() *memory.Tracker {
	return o.tracker
}

// Respond processes one user turn for the given conversation and returns
// the reply. The user message and the accepted reply are both appended to
// the conversation window (oldest turn evicted beyond six).
//
// Tiers run in order and short-circuit on first acceptance:
//
//  1. generation (capability Ready, low-confidence output rejected)
//  2. keyword match (double gate, "did you mean" annotation)
//  3. semantic match (cosine over cached keyword vectors)
//  4. unaccepted keyword candidate with "did you mean"
//  5. default reply
func (o *Orchestrator) Respond(ctx context.Context, roomID, senderID, rawInput string) Reply {
	if len(strings.TrimSpace(rawInput)) < 2 {
		return Reply{Text: TooShortReply, Fallback: true}
	}

	o.tracker.Record(roomID, senderID, memory.SpeakerUser, rawInput)

	normalized := nlp.Normalize(rawInput)
	contextText := memory.PromptContext(o.tracker.Turns(roomID, senderID), normalized)

	reply := o.resolve(ctx, normalized, contextText)

	if reply.Fallback && reply.DidYouMean == "" {
		reply.QuickReplies = quickReplies
	}

	o.tracker.Record(roomID, senderID, memory.SpeakerBot, reply.Text)
	return reply
}

// resolve runs the tier pipeline. Generation sees the full decorated
// context; the matching tiers score the normalised input alone, because
// "User:"/"Bot:" decoration and prior turns dilute edit-distance scores
// below their thresholds on every realistic input.
func (o *Orchestrator) resolve(ctx context.Context, normalized, contextText string) Reply {
	// --- 1. GENERATE ---------------------------------------------------------
	generated, modelFailed := o.generate(ctx, contextText)

	// --- 2. FALLBACK_CHECK ---------------------------------------------------
	if !modelFailed && !lowConfidence(generated) {
		return Reply{Text: generated}
	}

	// --- 3. KEYWORD_MATCH ----------------------------------------------------
	candidate, haveCandidate := nlp.ResolveKeyword(normalized, o.table)
	var candidateRecord intent.Record
	if haveCandidate {
		candidateRecord, _ = o.table.Find(candidate.IntentID)
		joined := strings.Join(candidateRecord.Keywords, " ")
		if nlp.Similarity(normalized, joined) > SecondaryGateThreshold {
			return Reply{
				Text:       o.render(candidateRecord),
				DidYouMean: didYouMean(candidateRecord),
				Fallback:   true,
			}
		}
	}

	// --- 4. SEMANTIC_MATCH ---------------------------------------------------
	if o.caps.EmbeddingReady() {
		if match, ok := embedding.ResolveSemantic(ctx, normalized, o.table, o.cache); ok {
			record, _ := o.table.Find(match.IntentID)
			return Reply{Text: o.render(record), Fallback: true}
		}
		// No semantic match, but a keyword candidate existed that did not
		// clear the secondary gate: disclose it rather than going blank.
		if haveCandidate {
			return Reply{
				Text:       o.render(candidateRecord),
				DidYouMean: didYouMean(candidateRecord),
				Fallback:   true,
			}
		}
	}

	// --- 5. DEFAULT ----------------------------------------------------------
	return Reply{Text: DefaultReply, Fallback: true}
}

// generate runs the generation tier. Returns the extracted reply and whether
// the call failed. A nil generator (capability not Ready) counts as failure
// so the fallback tiers take over.
func (o *Orchestrator) generate(ctx context.Context, contextText string) (string, bool) {
	gen := o.caps.Generator()
	if gen == nil {
		return "", true
	}

	prompt := strings.Replace(systemPrompt, contextPlaceholder, contextText, 1)
	result, err := gen.Generate(ctx, prompt, llm.DefaultOptions)
	if err != nil {
		o.logger.Warn("orchestrator: text generation failed", "err", err)
		return "", true
	}

	// Models echo the prompt scaffold; keep only the text after the final
	// response-boundary marker.
	if idx := strings.LastIndex(result, boundaryMarker); idx >= 0 {
		result = result[idx+len(boundaryMarker):]
	}
	return strings.TrimSpace(result), false
}

// lowConfidence reports whether a generated reply must be rejected: empty
// text or any of the fixed low-confidence phrases.
func lowConfidence(reply string) bool {
	lower := strings.ToLower(reply)
	if lower == "" {
		return true
	}
	for _, phrase := range fallbackPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// render substitutes market data into a record's canned reply template.
func (o *Orchestrator) render(record intent.Record) string {
	return intent.RenderReply(record.Reply, o.market)
}

func didYouMean(record intent.Record) string {
	return fmt.Sprintf("Did you mean %q?", record.DisplayName())
}
