// Package cache is a SQLite-backed translation memory: an exact-match
// cache of batch prompt -> translator response, scoped by language pair,
// consulted before every HTTP call so idempotent reruns cost no network
// traffic. Exact-hash only, scoped to whole-batch prompts rather than
// individual lines; a fuzzy Levenshtein match does not carry over at this
// granularity since a batch prompt rarely repeats with only minor edits.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"sync"

	"github.com/agnivade/levenshtein"
	_ "modernc.org/sqlite"
)

// Cache is a thread-safe translation-memory store.
type Cache struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the SQLite database at path, enabling WAL mode for
// safe concurrent access from multiple translator workers.
func Open(path string) (*Cache, error) {
	if path == "" {
		path = "lottr.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	c := &Cache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return c, nil
}

func (c *Cache) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS batch_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt_hash TEXT NOT NULL,
		prompt_text TEXT NOT NULL,
		response_text TEXT NOT NULL,
		lang_pair TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used DATETIME DEFAULT CURRENT_TIMESTAMP,
		use_count INTEGER DEFAULT 1,
		UNIQUE(prompt_hash, lang_pair)
	);
	CREATE INDEX IF NOT EXISTS idx_batch_prompt_hash ON batch_cache(prompt_hash);
	CREATE INDEX IF NOT EXISTS idx_batch_lang_pair ON batch_cache(lang_pair);
	`
	_, err := c.db.Exec(schema)
	return err
}

func hashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%x", sum)
}

// Lookup returns a cached response for the given batch prompt and language
// pair, if present.
func (c *Cache) Lookup(prompt, langPair string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hash := hashPrompt(prompt)
	var response string
	err := c.db.QueryRow(`
		SELECT response_text FROM batch_cache
		WHERE prompt_hash = ? AND lang_pair = ?
		LIMIT 1
	`, hash, langPair).Scan(&response)
	if err != nil {
		return "", false
	}
	go c.touch(hash, langPair)
	return response, true
}

// Store saves a translator response for future idempotent reruns,
// replacing any prior entry for the same prompt and language pair.
func (c *Cache) Store(prompt, response, langPair string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := hashPrompt(prompt)
	_, _ = c.db.Exec(`
		INSERT INTO batch_cache (prompt_hash, prompt_text, response_text, lang_pair)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(prompt_hash, lang_pair) DO UPDATE SET
			response_text = excluded.response_text,
			last_used = CURRENT_TIMESTAMP,
			use_count = use_count + 1
	`, hash, prompt, response, langPair)
}

func (c *Cache) touch(hash, langPair string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.db.Exec(`
		UPDATE batch_cache SET last_used = CURRENT_TIMESTAMP, use_count = use_count + 1
		WHERE prompt_hash = ? AND lang_pair = ?
	`, hash, langPair)
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// promptDistance exposes the Levenshtein distance between two batch
// prompts for diagnostic tooling and tests; the production lookup path
// above is exact-hash only (see package doc), but the metric is kept
// alive here rather than imported and left unused.
func promptDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
