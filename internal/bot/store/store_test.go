package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrations(t *testing.T) {
	s := newTestStore(t)

	var version int
	err := s.DB().QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		t.Fatalf("query schema version: %v", err)
	}
	if version < 1 {
		t.Errorf("schema version = %d, want at least 1", version)
	}

	// Reopening the same database must not re-apply migrations.
	path := filepath.Join(t.TempDir(), "reopen.db")
	first, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing database error = %v", err)
	}
	second.Close()
}

func TestMarkers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	markers := s.Markers()

	ok, err := markers.WasAcquired(ctx)
	if err != nil {
		t.Fatalf("WasAcquired() error = %v", err)
	}
	if ok {
		t.Error("WasAcquired() = true on a fresh database, want false")
	}

	if err := markers.RecordAcquired(ctx); err != nil {
		t.Fatalf("RecordAcquired() error = %v", err)
	}

	ok, err = markers.WasAcquired(ctx)
	if err != nil {
		t.Fatalf("WasAcquired() after record error = %v", err)
	}
	if !ok {
		t.Error("WasAcquired() = false after RecordAcquired(), want true")
	}

	// Recording twice is an upsert, not an error.
	if err := markers.RecordAcquired(ctx); err != nil {
		t.Errorf("second RecordAcquired() error = %v", err)
	}
}

func TestTranscript(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := []TranscriptEntry{
		{Timestamp: base, ConversationID: "conv1", RoomID: "!room", SenderID: "@alice", Speaker: "user", Text: "hello"},
		{Timestamp: base.Add(time.Second), ConversationID: "conv1", RoomID: "!room", SenderID: "@alice", Speaker: "bot", Text: "Hey there!", Fallback: true,
			DidYouMean: sql.NullString{String: `Did you mean "greeting"?`, Valid: true}},
		{Timestamp: base.Add(2 * time.Second), ConversationID: "conv2", RoomID: "!room", SenderID: "@bob", Speaker: "user", Text: "bye"},
	}
	for _, e := range entries {
		if err := s.WriteTranscript(ctx, e); err != nil {
			t.Fatalf("WriteTranscript() error = %v", err)
		}
	}

	got, err := s.RecentTranscript(ctx, "conv1", 10)
	if err != nil {
		t.Fatalf("RecentTranscript() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentTranscript() returned %d entries, want 2", len(got))
	}
	if got[0].Text != "hello" || got[1].Text != "Hey there!" {
		t.Errorf("entries out of order: %q then %q", got[0].Text, got[1].Text)
	}
	if !got[1].Fallback {
		t.Error("bot turn Fallback = false, want true")
	}
	if !got[1].DidYouMean.Valid || got[1].DidYouMean.String == "" {
		t.Error("bot turn DidYouMean not persisted")
	}
	if !got[0].Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, base)
	}
}

func TestRecentTranscript_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := TranscriptEntry{
			Timestamp:      time.Now(),
			ConversationID: "conv",
			RoomID:         "!room",
			SenderID:       "@alice",
			Speaker:        "user",
			Text:           string(rune('a' + i)),
		}
		if err := s.WriteTranscript(ctx, e); err != nil {
			t.Fatalf("WriteTranscript() error = %v", err)
		}
	}

	got, err := s.RecentTranscript(ctx, "conv", 2)
	if err != nil {
		t.Fatalf("RecentTranscript() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentTranscript(limit=2) returned %d entries", len(got))
	}
	// The two most recent, oldest first.
	if got[0].Text != "d" || got[1].Text != "e" {
		t.Errorf("entries = [%q, %q], want [d, e]", got[0].Text, got[1].Text)
	}

	if got, err := s.RecentTranscript(ctx, "conv", 0); err != nil || got != nil {
		t.Errorf("RecentTranscript(limit=0) = %v, %v, want nil, nil", got, err)
	}
}
