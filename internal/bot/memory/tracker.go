package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Conversation is one tracked conversation: a stable ID plus its rolling
// window of recent turns.
type Conversation struct {
	ID     string // unique conversation ID (UUID)
	Window Window
}

// Tracker manages per-conversation windows keyed by room+sender. A single
// logical turn mutates one window at a time, but the host (Matrix sync loop)
// is multi-threaded, so mutation is mutex-guarded.
type Tracker struct {
	mu     sync.Mutex
	convos map[string]*Conversation // key: roomID + ":" + senderID
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{convos: make(map[string]*Conversation)}
}

// Record appends a turn to the conversation for the given room+sender pair,
// creating the conversation on first contact. Returns the conversation ID.
func (t *Tracker) Record(roomID, senderID string, speaker Speaker, text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := sessionKey(roomID, senderID)
	conv := t.convos[key]
	if conv == nil {
		conv = &Conversation{ID: uuid.New().String()}
		t.convos[key] = conv
	}
	conv.Window.Append(speaker, text)
	return conv.ID
}

// Turns returns a snapshot of the conversation window for the given
// room+sender pair, oldest first. Nil when no conversation exists yet.
func (t *Tracker) Turns(roomID, senderID string) []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	conv := t.convos[sessionKey(roomID, senderID)]
	if conv == nil {
		return nil
	}
	return conv.Window.Turns()
}

// Reset discards the conversation for the given room+sender pair. The next
// message starts a fresh conversation with a new ID.
func (t *Tracker) Reset(roomID, senderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.convos, sessionKey(roomID, senderID))
}

func sessionKey(roomID, senderID string) string {
	return roomID + ":" + senderID
}
