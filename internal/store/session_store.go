package store

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// SQLiteSessionStore implements session.Store backed by SQLite. Loaded
// sessions are cached so a turn always sees the same *domain.Session
// pointer; turn locks live in memory only.
type SQLiteSessionStore struct {
	db *DB

	mu    sync.Mutex
	cache map[string]*domain.Session
	locks map[string]*sync.Mutex
}

// NewSQLiteSessionStore creates a session store using the given database.
func NewSQLiteSessionStore(db *DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{
		db:    db,
		cache: make(map[string]*domain.Session),
		locks: make(map[string]*sync.Mutex),
	}
}

// Get returns the session for the ID, loading it from the database or
// creating it if absent.
func (s *SQLiteSessionStore) Get(id string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *SQLiteSessionStore) getLocked(id string) *domain.Session {
	if sess, ok := s.cache[id]; ok {
		return sess
	}

	if sess := s.load(id); sess != nil {
		s.cache[id] = sess
		return sess
	}

	sess := &domain.Session{
		ID:        id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.insert(sess)
	s.cache[id] = sess
	return sess
}

// Lock acquires the per-session turn lock and returns the release func.
func (s *SQLiteSessionStore) Lock(id string) func() {
	s.mu.Lock()
	s.getLocked(id)
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Touch updates the session's last-activity timestamp.
func (s *SQLiteSessionStore) Touch(id string) {
	now := time.Now()

	s.mu.Lock()
	if sess, ok := s.cache[id]; ok {
		sess.UpdatedAt = now
	}
	s.mu.Unlock()

	_, err := s.db.sql.Exec(
		`UPDATE sessions SET updated_at = ? WHERE id = ?`,
		now.UTC().Format(time.DateTime), id,
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("session", id).Msg("failed to touch session")
	}
}

// Save writes the session's full state through to the database.
func (s *SQLiteSessionStore) Save(sess *domain.Session) {
	sess.UpdatedAt = time.Now()

	location := marshalNullable(sess.Location)
	addresses := marshalNullable(sess.Addresses)
	cart := marshalNullable(sess.Cart)

	_, err := s.db.sql.Exec(
		`UPDATE sessions
		 SET location = ?, addresses = ?, cart = ?, bootstrapped = ?, phone_bound = ?, updated_at = ?
		 WHERE id = ?`,
		location, addresses, cart,
		boolInt(sess.Bootstrapped), boolInt(sess.PhoneBound),
		sess.UpdatedAt.UTC().Format(time.DateTime), sess.ID,
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("session", sess.ID).Msg("failed to save session")
		return
	}

	s.saveMessages(sess)
}

// Expire removes sessions idle longer than maxAge.
func (s *SQLiteSessionStore) Expire(now time.Time, maxAge time.Duration) int {
	cutoff := now.Add(-maxAge).UTC().Format(time.DateTime)

	res, err := s.db.sql.Exec(`DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to expire sessions")
		return 0
	}

	s.mu.Lock()
	for id, sess := range s.cache {
		if now.Sub(sess.UpdatedAt) > maxAge {
			delete(s.cache, id)
			delete(s.locks, id)
		}
	}
	s.mu.Unlock()

	n, _ := res.RowsAffected()
	return int(n)
}

// List returns all session IDs, most recently active first.
func (s *SQLiteSessionStore) List() []string {
	rows, err := s.db.sql.Query(`SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *SQLiteSessionStore) load(id string) *domain.Session {
	var sess domain.Session
	var location, addresses, cart sql.NullString
	var bootstrapped, phoneBound int
	var createdAt, updatedAt string

	err := s.db.sql.QueryRow(
		`SELECT id, location, addresses, cart, bootstrapped, phone_bound, created_at, updated_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &location, &addresses, &cart, &bootstrapped, &phoneBound, &createdAt, &updatedAt)
	if err != nil {
		return nil
	}

	if location.Valid && location.String != "" && location.String != "null" {
		var loc domain.Location
		if json.Unmarshal([]byte(location.String), &loc) == nil {
			sess.Location = &loc
		}
	}
	if addresses.Valid && addresses.String != "" {
		_ = json.Unmarshal([]byte(addresses.String), &sess.Addresses)
	}
	if cart.Valid && cart.String != "" {
		_ = json.Unmarshal([]byte(cart.String), &sess.Cart)
	}
	sess.Bootstrapped = bootstrapped != 0
	sess.PhoneBound = phoneBound != 0
	sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)

	sess.Messages = s.loadMessages(id)
	return &sess
}

func (s *SQLiteSessionStore) insert(sess *domain.Session) {
	_, err := s.db.sql.Exec(
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)`,
		sess.ID,
		sess.CreatedAt.UTC().Format(time.DateTime),
		sess.UpdatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("session", sess.ID).Msg("failed to create session")
	}
}

// saveMessages rewrites the session's message rows. Conversations are
// short so full replacement beats bookkeeping over deltas.
func (s *SQLiteSessionStore) saveMessages(sess *domain.Session) {
	tx, err := s.db.sql.Begin()
	if err != nil {
		s.db.log.Error().Err(err).Str("session", sess.ID).Msg("failed to begin message save")
		return
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sess.ID); err != nil {
		tx.Rollback()
		s.db.log.Error().Err(err).Str("session", sess.ID).Msg("failed to clear messages")
		return
	}

	for _, msg := range sess.Messages {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.Exec(
			`INSERT INTO messages (session_id, role, content, tool_name, timestamp)
			 VALUES (?, ?, ?, ?, ?)`,
			sess.ID, msg.Role, msg.Content, msg.ToolName, ts.UTC().Format(time.DateTime),
		); err != nil {
			tx.Rollback()
			s.db.log.Error().Err(err).Str("session", sess.ID).Msg("failed to insert message")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		s.db.log.Error().Err(err).Str("session", sess.ID).Msg("failed to commit message save")
	}
}

func (s *SQLiteSessionStore) loadMessages(sessionID string) []domain.Message {
	rows, err := s.db.sql.Query(
		`SELECT role, content, tool_name, timestamp
		 FROM messages WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var ts string
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.ToolName, &ts); err != nil {
			continue
		}
		msg.Timestamp, _ = time.Parse(time.DateTime, ts)
		msgs = append(msgs, msg)
	}
	return msgs
}

func marshalNullable(v any) sql.NullString {
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
