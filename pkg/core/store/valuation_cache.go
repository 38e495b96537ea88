// Package store memoizes computed valuations. The engine is pure, so a
// result is fully determined by its (ticker, assumptions, schedule, bridge)
// key and can be served from cache until any input changes.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"valuation_engine/pkg/core/dcf"
)

// ValuationCache stores valuation runs. Hybrid: DB (primary) + file system
// (fallback/local). Entries are written whole and never patched, matching
// the recompute-wholesale contract of the engine.
type ValuationCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewValuationCache creates a cache. If pool is nil it falls back to a
// file cache in dir, defaulting to .cache/valuations.
func NewValuationCache(pool *pgxpool.Pool, dir string) *ValuationCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "valuations")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check ValuationCache dir: %v\n", err)
		}
	}
	return &ValuationCache{pool: pool, fileDir: dir}
}

// CacheEntry is one stored valuation run.
type CacheEntry struct {
	ID         string                `json:"id"`
	Ticker     string                `json:"ticker"`
	Key        string                `json:"key"`
	ModelType  string                `json:"model_type"`
	Schedule   []float64             `json:"schedule"`
	Series     dcf.ProjectionSeries  `json:"series"`
	Summary    *dcf.ValuationSummary `json:"summary"`
	ComputedAt time.Time             `json:"computed_at"`
}

// CacheKey derives the memoization key for a (ticker, assumptions,
// schedule, bridge) tuple: a hex sha256 over the canonical JSON of the
// inputs. The bridge is part of the key because the equity side of the
// summary moves with net debt even when the projection does not.
func CacheKey(ticker string, a *dcf.Assumptions, schedule []float64, bridge dcf.BridgeInputs) string {
	payload, _ := json.Marshal(struct {
		Ticker      string           `json:"ticker"`
		Assumptions *dcf.Assumptions `json:"assumptions"`
		Schedule    []float64        `json:"schedule"`
		Bridge      dcf.BridgeInputs `json:"bridge"`
	}{strings.ToUpper(ticker), a, schedule, bridge})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get retrieves a stored run by key. A miss returns (nil, nil).
func (c *ValuationCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	if c.pool != nil {
		query := `
			SELECT entry
			FROM valuation_runs
			WHERE cache_key = $1
			LIMIT 1
		`
		var entryJSON []byte
		err := c.pool.QueryRow(ctx, query, key).Scan(&entryJSON)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // cache miss
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query db cache: %w", err)
		}
		var entry CacheEntry
		if err := json.Unmarshal(entryJSON, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db cached entry: %w", err)
		}
		return &entry, nil
	}

	if c.fileDir != "" {
		return c.loadEntry(c.keyPath(key))
	}
	return nil, nil
}

// Save stores a run under its key, assigning a run id and timestamp when
// absent.
func (c *ValuationCache) Save(ctx context.Context, entry *CacheEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("cache entry has no key")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ComputedAt.IsZero() {
		entry.ComputedAt = time.Now()
	}

	entryJSON, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO valuation_runs (id, ticker, cache_key, model_type, entry, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (cache_key)
			DO UPDATE SET
				entry = EXCLUDED.entry,
				created_at = EXCLUDED.created_at
		`
		_, err = c.pool.Exec(ctx, query,
			entry.ID, strings.ToUpper(entry.Ticker), entry.Key, entry.ModelType, entryJSON, entry.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
	}

	if c.fileDir != "" {
		if err := os.WriteFile(c.keyPath(entry.Key), entryJSON, 0644); err != nil {
			return fmt.Errorf("failed to save to file cache: %w", err)
		}
	}
	return nil
}

// Exists reports whether a run is already cached under key.
func (c *ValuationCache) Exists(ctx context.Context, key string) bool {
	if c.pool != nil {
		query := `SELECT 1 FROM valuation_runs WHERE cache_key = $1 LIMIT 1`
		var one int
		if err := c.pool.QueryRow(ctx, query, key).Scan(&one); err == nil {
			return true
		}
	}
	if c.fileDir != "" {
		if _, err := os.Stat(c.keyPath(key)); err == nil {
			return true
		}
	}
	return false
}

// LatestByTicker scans the file cache for the most recent run for a
// ticker. DB-backed installs query by ticker directly.
func (c *ValuationCache) LatestByTicker(ctx context.Context, ticker string) (*CacheEntry, error) {
	if c.pool != nil {
		query := `
			SELECT entry
			FROM valuation_runs
			WHERE ticker = $1
			ORDER BY created_at DESC
			LIMIT 1
		`
		var entryJSON []byte
		err := c.pool.QueryRow(ctx, query, strings.ToUpper(ticker)).Scan(&entryJSON)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query db cache: %w", err)
		}
		var entry CacheEntry
		if err := json.Unmarshal(entryJSON, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db cached entry: %w", err)
		}
		return &entry, nil
	}

	if c.fileDir == "" {
		return nil, nil
	}
	files, err := os.ReadDir(c.fileDir)
	if err != nil {
		return nil, nil
	}
	var best *CacheEntry
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		entry, err := c.loadEntry(filepath.Join(c.fileDir, f.Name()))
		if err != nil || entry == nil {
			continue
		}
		if !strings.EqualFold(entry.Ticker, ticker) {
			continue
		}
		if best == nil || entry.ComputedAt.After(best.ComputedAt) {
			best = entry
		}
	}
	return best, nil
}

func (c *ValuationCache) keyPath(key string) string {
	return filepath.Join(c.fileDir, key+".json")
}

func (c *ValuationCache) loadEntry(path string) (*CacheEntry, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached entry: %w", err)
	}
	var entry CacheEntry
	if err := json.Unmarshal(bytes, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
