package fetch

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"credence/internal/source"
)

// Cache is a URL-keyed document cache in SQLite. Any read-side problem
// (missing row, stale row, corrupt JSON) is a miss, never an error: the
// caller just fetches again.
type Cache struct {
	db     *sql.DB
	maxAge time.Duration
}

// OpenCache opens or creates the cache DB at path, creating the parent
// directory (e.g. .credence) if needed.
func OpenCache(path string, maxAge time.Duration) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	c := &Cache{db: db, maxAge: maxAge}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			url        TEXT PRIMARY KEY,
			fetched_at TEXT NOT NULL,
			doc_json   TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Get returns the cached document for url, or (nil, false) on any miss.
func (c *Cache) Get(url string) (*source.FetchedDocument, bool) {
	var fetchedAt, docJSON string
	err := c.db.QueryRow(
		"SELECT fetched_at, doc_json FROM documents WHERE url = ?", url,
	).Scan(&fetchedAt, &docJSON)
	if err != nil {
		return nil, false
	}
	ts, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil || time.Since(ts) > c.maxAge {
		return nil, false
	}
	var doc source.FetchedDocument
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		// Corrupt row: treat as a miss and drop it.
		_, _ = c.db.Exec("DELETE FROM documents WHERE url = ?", url)
		return nil, false
	}
	return &doc, true
}

// Put stores a document, replacing any previous row for the URL.
func (c *Cache) Put(url string, doc *source.FetchedDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO documents (url, fetched_at, doc_json) VALUES (?, ?, ?)",
		url, time.Now().UTC().Format(time.RFC3339), string(docJSON),
	)
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}
