package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TranscriptEntry is one recorded turn of a conversation. The transcript is
// append-only: turns are written after each reply and never updated.
type TranscriptEntry struct {
	ID             int64
	Timestamp      time.Time
	ConversationID string
	RoomID         string
	SenderID       string
	Speaker        string // "user" or "bot"
	Text           string
	Fallback       bool
	DidYouMean     sql.NullString
}

// WriteTranscript appends one turn to the transcript log.
func (s *Store) WriteTranscript(ctx context.Context, entry TranscriptEntry) error {
	var didYouMean sql.NullString
	if entry.DidYouMean.Valid && entry.DidYouMean.String != "" {
		didYouMean = entry.DidYouMean
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript (ts, conversation_id, room_id, sender_id, speaker, text, fallback, did_you_mean)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.ConversationID,
		entry.RoomID,
		entry.SenderID,
		entry.Speaker,
		entry.Text,
		boolToInt(entry.Fallback),
		didYouMean,
	)
	if err != nil {
		return fmt.Errorf("transcript: insert turn: %w", err)
	}
	return nil
}

// RecentTranscript returns the most recent limit turns for a conversation,
// oldest first.
func (s *Store) RecentTranscript(ctx context.Context, conversationID string, limit int) ([]TranscriptEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, conversation_id, room_id, sender_id, speaker, text, fallback, did_you_mean
		FROM (
			SELECT * FROM transcript
			WHERE conversation_id = ?
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("transcript: query turns: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		var ts string
		var fallback int
		if err := rows.Scan(&e.ID, &ts, &e.ConversationID, &e.RoomID, &e.SenderID, &e.Speaker, &e.Text, &fallback, &e.DidYouMean); err != nil {
			return nil, fmt.Errorf("transcript: scan row: %w", err)
		}
		if parsed, perr := time.Parse(time.RFC3339, ts); perr == nil {
			e.Timestamp = parsed
		}
		e.Fallback = fallback != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: iterate rows: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
