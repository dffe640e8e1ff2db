// Package visits keeps a privacy-conscious log of page views and section
// selections. Client IPs are only ever stored as salted hashes.
package visits

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqlite's own datetime() format, so SQL date functions work on the column.
const timeLayout = "2006-01-02 15:04:05"

// Visit is one recorded hit. Section is empty for page views.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Section   string    `json:"section,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type SectionCount struct {
	Section string `json:"section"`
	Count   int64  `json:"count"`
}

type Stats struct {
	PageViews      int64          `json:"page_views"`
	Selections     int64          `json:"selections"`
	UniqueVisitors int64          `json:"unique_visitors"`
	VisitsToday    int64          `json:"visits_today"`
	VisitsThisWeek int64          `json:"visits_this_week"`
	TopSections    []SectionCount `json:"top_sections"`
	RecentVisits   []Visit        `json:"recent_visits"`
}

// Store is the SQLite-backed visit log.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newStore(db)
}

// OpenMemory creates an in-memory store, used by tests and dry runs.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	salt, err := randomSalt()
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db, salt: salt, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	section TEXT NOT NULL DEFAULT '',
	timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
CREATE INDEX IF NOT EXISTS idx_visits_section ON visits(section);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

func randomSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashIP is stable for one process; the salt is never persisted, so hashes
// cannot be linked across restarts.
func (s *Store) HashIP(ip string) string {
	h := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(h[:])[:16]
}

// Record stores v. A zero Timestamp means now.
func (s *Store) Record(ctx context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (hashed_ip, user_agent, path, section, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		v.HashedIP, v.UserAgent, v.Path, v.Section, v.Timestamp.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	return nil
}

// Cleanup deletes visits older than retention and returns how many went. A
// retention of zero or less keeps everything.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention).UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up visits: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats summarises the log.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := now.Format("2006-01-02")
	weekAgo := now.Add(-7 * 24 * time.Hour).Format(timeLayout)

	stats := &Stats{TopSections: []SectionCount{}, RecentVisits: []Visit{}}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.PageViews, `SELECT COUNT(*) FROM visits WHERE section = ''`, nil},
		{&stats.Selections, `SELECT COUNT(*) FROM visits WHERE section != ''`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visits`, nil},
		{&stats.VisitsToday, `SELECT COUNT(*) FROM visits WHERE section = '' AND DATE(timestamp) = ?`, []any{today}},
		{&stats.VisitsThisWeek, `SELECT COUNT(*) FROM visits WHERE section = '' AND timestamp >= ?`, []any{weekAgo}},
	}
	for _, q := range counts {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("querying stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT section, COUNT(*) AS n
		FROM visits
		WHERE section != ''
		GROUP BY section
		ORDER BY n DESC, section ASC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("querying top sections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SectionCount
		if err := rows.Scan(&sc.Section, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning top sections: %w", err)
		}
		stats.TopSections = append(stats.TopSections, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := s.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisits = recent
	return stats, nil
}

// Recent returns the newest visits first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, section, timestamp
		FROM visits
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent visits: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		var v Visit
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Section, &ts); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		v.Timestamp, _ = parseTimestamp(ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func parseTimestamp(ts string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, ts); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, ts)
}

// RunRetention deletes expired visits now and then every interval until ctx
// is done.
func (s *Store) RunRetention(ctx context.Context, retention, interval time.Duration, onError func(error), onCleanup func(int64)) {
	if retention <= 0 {
		return
	}
	sweep := func() {
		n, err := s.Cleanup(ctx, retention)
		if err != nil {
			if onError != nil && ctx.Err() == nil {
				onError(err)
			}
			return
		}
		if n > 0 && onCleanup != nil {
			onCleanup(n)
		}
	}

	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}
