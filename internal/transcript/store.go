// Package transcript keeps a write-mostly log of conversations in SQLite.
//
// Sessions are never rehydrated from here; the log exists for history
// listings, search and aggregate stats. Turn text is indexed with FTS5.
package transcript

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/curhat/internal/dialogue"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is replaced in tests for deterministic timestamps.
var timeNow = time.Now

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("transcript: session not found")

const timeLayout = "2006-01-02 15:04:05"

// ─── Types ───────────────────────────────────────────────────────────────────

// Session is one logged conversation.
type Session struct {
	ID        string  `json:"id"`
	UserName  string  `json:"user_name"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// Turn is one logged exchange.
type Turn struct {
	ID        int64   `json:"id"`
	SessionID string  `json:"session_id"`
	Seq       int     `json:"seq"`
	UserText  string  `json:"user_text"`
	BotReply  string  `json:"bot_reply"`
	Stage     string  `json:"stage"`
	Topic     *string `json:"topic,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// SessionSummary is a compact view of a session with its turn count.
type SessionSummary struct {
	ID        string  `json:"id"`
	UserName  string  `json:"user_name"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	TurnCount int     `json:"turn_count"`
}

// TopicCount is how many sessions touched a topic.
type TopicCount struct {
	Topic    string `json:"topic"`
	Sessions int    `json:"sessions"`
}

// Stats holds aggregate transcript statistics.
type Stats struct {
	TotalSessions int          `json:"total_sessions"`
	OpenSessions  int          `json:"open_sessions"`
	TotalTurns    int          `json:"total_turns"`
	Topics        []TopicCount `json:"topics"`
}

// SearchResult embeds a Turn with its FTS5 rank.
type SearchResult struct {
	Turn
	Rank float64 `json:"rank"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config controls where the database lives.
type Config struct {
	DataDir          string
	FileName         string
	MaxSearchResults int
}

// DefaultConfig stores the transcript under ~/.curhat.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".curhat"),
		FileName:         "transcript.db",
		MaxSearchResults: 50,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed transcript log. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates the data directory if needed, opens SQLite in WAL mode and
// runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.FileName == "" {
		cfg.FileName = "transcript.db"
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 50
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("transcript: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, cfg.FileName))
	if err != nil {
		return nil, fmt.Errorf("transcript: open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them all in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("transcript: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("transcript: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, s.cfg.FileName)
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			user_name  TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at   TEXT,
			summary    TEXT
		);

		CREATE TABLE IF NOT EXISTS turns (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT    NOT NULL,
			seq        INTEGER NOT NULL,
			user_text  TEXT    NOT NULL,
			bot_reply  TEXT    NOT NULL,
			stage      TEXT    NOT NULL,
			topic      TEXT,
			created_at TEXT    NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id),
			UNIQUE (session_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
		CREATE INDEX IF NOT EXISTS idx_turns_topic   ON turns(topic);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS turns_fts USING fts5(
			user_text,
			bot_reply,
			content='turns',
			content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS turns_ai AFTER INSERT ON turns BEGIN
			INSERT INTO turns_fts(rowid, user_text, bot_reply) VALUES (new.id, new.user_text, new.bot_reply);
		END;
		CREATE TRIGGER IF NOT EXISTS turns_ad AFTER DELETE ON turns BEGIN
			INSERT INTO turns_fts(turns_fts, rowid, user_text, bot_reply) VALUES ('delete', old.id, old.user_text, old.bot_reply);
		END;
	`)
	return err
}

// ─── Sessions ────────────────────────────────────────────────────────────────

// StartSession registers a conversation. Re-registering an id is a no-op.
func (s *Store) StartSession(id, userName string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (id, user_name, started_at) VALUES (?, ?, ?)`,
		id, userName, now(),
	)
	if err != nil {
		return fmt.Errorf("transcript: start session %s: %w", id, err)
	}
	return nil
}

// EndSession marks a session as ended with an optional summary.
func (s *Store) EndSession(id, summary string) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ?, summary = ? WHERE id = ?`,
		now(), nullableString(summary), id,
	)
	if err != nil {
		return fmt.Errorf("transcript: end session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, user_name, started_at, ended_at, summary FROM sessions WHERE id = ?`, id,
	)
	var sess Session
	if err := row.Scan(&sess.ID, &sess.UserName, &sess.StartedAt, &sess.EndedAt, &sess.Summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("transcript: get session %s: %w", id, err)
	}
	return &sess, nil
}

// RecentSessions returns the most recently started sessions with turn counts.
func (s *Store) RecentSessions(limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.Query(`
		SELECT s.id, s.user_name, s.started_at, s.ended_at, COUNT(t.id)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC, s.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("transcript: recent sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SessionSummary
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.ID, &ss.UserName, &ss.StartedAt, &ss.EndedAt, &ss.TurnCount); err != nil {
			return nil, err
		}
		results = append(results, ss)
	}
	return results, rows.Err()
}

// ─── Turns ───────────────────────────────────────────────────────────────────

// RecordTurn appends a turn to a session. Sequence numbers start at 1.
func (s *Store) RecordTurn(sessionID string, t dialogue.Turn) error {
	created := t.Timestamp
	if created.IsZero() {
		created = timeNow()
	}

	_, err := s.db.Exec(`
		INSERT INTO turns (session_id, seq, user_text, bot_reply, stage, topic, created_at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?
		FROM turns WHERE session_id = ?`,
		sessionID, t.UserText, t.BotReply, string(t.Stage), nullableString(t.Topic),
		created.UTC().Format(timeLayout), sessionID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return fmt.Errorf("transcript: record turn for %s: %w", sessionID, err)
	}
	return nil
}

// Turns returns every turn of a session in order.
func (s *Store) Turns(sessionID string) ([]Turn, error) {
	return s.queryTurns(`
		SELECT id, session_id, seq, user_text, bot_reply, stage, topic, created_at
		FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
}

// Search finds turns whose text matches query, best match first.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 || limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT t.id, t.session_id, t.seq, t.user_text, t.bot_reply, t.stage, t.topic, t.created_at, fts.rank
		FROM turns_fts fts
		JOIN turns t ON t.id = fts.rowid
		WHERE turns_fts MATCH ?
		ORDER BY fts.rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("transcript: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Seq, &r.UserText, &r.BotReply, &r.Stage, &r.Topic, &r.CreatedAt, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate statistics over the whole log.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM sessions", &stats.TotalSessions},
		{"SELECT COUNT(*) FROM sessions WHERE ended_at IS NULL", &stats.OpenSessions},
		{"SELECT COUNT(*) FROM turns", &stats.TotalTurns},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("transcript: stats: %w", err)
		}
	}

	rows, err := s.db.Query(`
		SELECT topic, COUNT(DISTINCT session_id) AS n
		FROM turns WHERE topic IS NOT NULL
		GROUP BY topic ORDER BY n DESC, topic`)
	if err != nil {
		return nil, fmt.Errorf("transcript: topic stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tc TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Sessions); err != nil {
			return nil, err
		}
		stats.Topics = append(stats.Topics, tc)
	}
	return stats, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Store) queryTurns(query string, args ...any) ([]Turn, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("transcript: query turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Seq, &t.UserText, &t.BotReply, &t.Stage, &t.Topic, &t.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

func now() string {
	return timeNow().UTC().Format(timeLayout)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "aku lelah" → `"aku" "lelah"`
func sanitizeFTS(query string) string {
	var words []string
	for _, w := range strings.Fields(query) {
		w = strings.ReplaceAll(w, `"`, "")
		if w != "" {
			words = append(words, `"`+w+`"`)
		}
	}
	return strings.Join(words, " ")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
