package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/searchforge/searchforge/internal/domain"
)

// SessionStore persists session records and conversation histories in the
// embedded key-value table. Values are JSON with an explicit schema tag;
// records without a recognized tag are treated as legacy and ignored, which
// forces regeneration instead of misreading an old shape.
type SessionStore struct {
	db            *DB
	maxHistoryLen int
}

// NewSessionStore creates a new session store. maxHistoryLen caps the number
// of turns kept per conversation, oldest evicted first.
func NewSessionStore(db *DB, maxHistoryLen int) *SessionStore {
	return &SessionStore{db: db, maxHistoryLen: maxHistoryLen}
}

// HistoryKey returns the key under which a session's turns are stored.
func HistoryKey(sessionID string) string {
	return sessionID + "_history"
}

// Get retrieves a raw value by key. Returns domain.ErrNotFound on miss.
func (s *SessionStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put stores a raw value, overwriting any previous one.
func (s *SessionStore) Put(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

// GetRecord retrieves the flat session record for a session id.
// Legacy values without the current schema tag surface as ErrNotFound.
func (s *SessionStore) GetRecord(sessionID string) (*domain.SessionRecord, error) {
	value, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var rec domain.SessionRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil || rec.Schema != domain.SchemaVersion {
		// Pre-versioning records stored the bare transcript string; force a
		// refresh rather than guess at their shape.
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// PutRecord stores the flat session record for a session id.
func (s *SessionStore) PutRecord(sessionID string, rec *domain.SessionRecord) error {
	rec.Schema = domain.SchemaVersion
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	return s.Put(sessionID, string(b))
}

// GetHistory retrieves the stored turns for a session, oldest first.
// A missing or legacy record yields an empty history.
func (s *SessionStore) GetHistory(sessionID string) ([]domain.Turn, error) {
	value, err := s.Get(HistoryKey(sessionID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec domain.HistoryRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil || rec.Schema != domain.SchemaVersion {
		return nil, nil
	}
	return rec.Turns, nil
}

// AppendTurn appends a turn to a session's history, evicting the oldest
// turns beyond the configured cap. Reads and writes back the whole record;
// last writer wins, which is acceptable since one user drives a session.
func (s *SessionStore) AppendTurn(sessionID string, turn domain.Turn) error {
	turns, err := s.GetHistory(sessionID)
	if err != nil {
		return err
	}

	if s.maxHistoryLen > 0 && len(turns) > s.maxHistoryLen-1 {
		turns = turns[len(turns)-(s.maxHistoryLen-1):]
	}
	turns = append(turns, turn)

	b, err := json.Marshal(domain.HistoryRecord{Schema: domain.SchemaVersion, Turns: turns})
	if err != nil {
		return fmt.Errorf("failed to encode history record: %w", err)
	}
	return s.Put(HistoryKey(sessionID), string(b))
}
