// Package memory implements short-term conversation memory for the reply
// pipeline: a bounded rolling window of recent turns per conversation, and
// the prompt-context string built from it.
package memory

import "strings"

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Label returns the prompt-context label for the speaker.
func (s Speaker) Label() string {
	if s == SpeakerBot {
		return "Bot"
	}
	return "User"
}

// Turn is a single message in a conversation.
type Turn struct {
	Speaker Speaker
	Text    string
}

// WindowSize is the maximum number of turns kept per conversation: the last
// 3 user and 3 bot messages under normal alternation. Eviction is strict
// FIFO by count, not by role.
const WindowSize = 6

// Window is the bounded rolling window of recent turns, oldest first.
// Not safe for concurrent use; the Tracker serialises access.
type Window struct {
	turns []Turn
}

// Append adds a turn, evicting the oldest when the window exceeds WindowSize.
func (w *Window) Append(speaker Speaker, text string) {
	w.turns = append(w.turns, Turn{Speaker: speaker, Text: text})
	if len(w.turns) > WindowSize {
		w.turns = w.turns[1:]
	}
}

// Turns returns a copy of the current window contents, oldest first.
func (w *Window) Turns() []Turn {
	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len returns the number of turns currently held.
func (w *Window) Len() int {
	return len(w.turns)
}

// PromptContext builds the generation-prompt context: the window's turns
// oldest to newest as "User: …" / "Bot: …" lines, followed by the current
// (already normalised) input as a final User line.
func PromptContext(turns []Turn, normalizedInput string) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Speaker.Label())
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(normalizedInput)
	return b.String()
}
