package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/umputun/jobtrack/app/job"
)

// ErrMalformedData is reported when a stored collection can't be decoded
var ErrMalformedData = errors.New("malformed data")

const (
	collectionKeyPrefix = "jobs_"
	connectionKey       = "gas_endpoint"
)

// SQLiteStore implements local persistence using SQLite
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and initializes the schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("%w (also failed to close db: %v)", err, closeErr)
		}
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	query := `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

// LoadCollection returns all jobs stored for the collection. Missing or malformed data
// results in an empty list, the problem is logged and never returned to the caller.
func (s *SQLiteStore) LoadCollection(name string) []job.Job {
	blob, err := s.get(collectionKey(name))
	if err != nil {
		log.Printf("[WARN] failed to load collection %q: %v", name, err)
		return []job.Job{}
	}
	if blob == "" {
		return []job.Job{}
	}

	jobs, err := decodeJobs(blob)
	if err != nil {
		log.Printf("[WARN] discarding stored collection %q: %v", name, err)
		return []job.Job{}
	}
	return jobs
}

// SaveCollection replaces the stored snapshot of the collection with jobs
func (s *SQLiteStore) SaveCollection(name string, jobs []job.Job) error {
	if jobs == nil {
		jobs = []job.Job{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", name, err)
	}
	if err := s.put(collectionKey(name), string(data)); err != nil {
		return fmt.Errorf("failed to save collection %q: %w", name, err)
	}
	log.Printf("[DEBUG] saved %d jobs to local collection %q", len(jobs), name)
	return nil
}

// LoadConnection returns the stored remote endpoint, empty for local mode
func (s *SQLiteStore) LoadConnection() string {
	url, err := s.get(connectionKey)
	if err != nil {
		log.Printf("[WARN] failed to load connection: %v", err)
		return ""
	}
	return url
}

// SaveConnection stores the remote endpoint, empty url switches back to local mode
func (s *SQLiteStore) SaveConnection(url string) error {
	if err := s.put(connectionKey, url); err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(key string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) put(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix())
	return err
}

func collectionKey(name string) string {
	return collectionKeyPrefix + name
}

func decodeJobs(blob string) ([]job.Job, error) {
	var jobs []job.Job
	if err := json.Unmarshal([]byte(blob), &jobs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if jobs == nil {
		jobs = []job.Job{}
	}
	return jobs, nil
}
