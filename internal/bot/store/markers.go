package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// acquiredMarkerKey is the markers-table key recording that a previous
// process acquired the model capabilities successfully. Non-authoritative:
// it only suppresses the loading notice on later startups.
const acquiredMarkerKey = "capabilities_acquired"

// MarkerStore persists the non-authoritative capability acquisition flag.
// It implements capability.Marker.
type MarkerStore struct {
	store *Store
}

// Markers returns the marker store view of s.
func (s *Store) Markers() *MarkerStore {
	return &MarkerStore{store: s}
}

// WasAcquired reports whether a previous process recorded a successful
// capability acquisition.
func (m *MarkerStore) WasAcquired(ctx context.Context) (bool, error) {
	var value string
	err := m.store.db.QueryRowContext(ctx,
		`SELECT value FROM markers WHERE key = ?`, acquiredMarkerKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("markers: read %q: %w", acquiredMarkerKey, err)
	}
	return value == "true", nil
}

// RecordAcquired stores the success flag with the current UTC timestamp.
func (m *MarkerStore) RecordAcquired(ctx context.Context) error {
	_, err := m.store.db.ExecContext(ctx, `
		INSERT INTO markers (key, value, updated_at)
		VALUES (?, 'true', ?)
		ON CONFLICT (key) DO UPDATE SET value = 'true', updated_at = excluded.updated_at`,
		acquiredMarkerKey,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("markers: write %q: %w", acquiredMarkerKey, err)
	}
	return nil
}
