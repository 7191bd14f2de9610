package kegg

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// The response cache keeps raw API bodies in a sqlite file keyed by URL.
// Entries older than the TTL (default 30 days) are refetched. Cache
// failures degrade to uncached fetches.

var (
	cacheMu          sync.Mutex
	cacheDB          *sql.DB
	cacheOpened      bool
	cacheFilePath    string
	cacheTTLOverride int64
)

// cache TTL in seconds (default 30 days)
func cacheTTL() int64 {
	cacheMu.Lock()
	override := cacheTTLOverride
	cacheMu.Unlock()
	if override != 0 {
		return override
	}
	if s := os.Getenv("KEGG_CACHE_TTL_SECONDS"); s != "" {
		if v, err := time.ParseDuration(s + "s"); err == nil {
			return int64(v.Seconds())
		}
	}
	return int64(30 * 24 * 3600)
}

// SetCacheTTLSeconds overrides the cache TTL. A negative value disables
// expiry checks entirely.
func SetCacheTTLSeconds(secs int64) {
	cacheMu.Lock()
	cacheTTLOverride = secs
	cacheMu.Unlock()
}

// SetCacheFilePath overrides the on-disk cache location. Callers should set
// this before the first fetch.
func SetCacheFilePath(path string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheDB != nil {
		_ = cacheDB.Close()
		cacheDB = nil
	}
	cacheOpened = false
	cacheFilePath = path
}

// FlushCache closes the cache database. Safe to call multiple times.
func FlushCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheDB != nil {
		_ = cacheDB.Close()
		cacheDB = nil
	}
	cacheOpened = false
}

func defaultCachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "kegger")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "kegg_cache.db")
	}
	return filepath.Join(os.TempDir(), "kegger_cache.db")
}

// openCache lazily opens the sqlite file and creates the schema. Returns
// nil when the cache is unavailable.
func openCache() *sql.DB {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheOpened {
		return cacheDB
	}
	cacheOpened = true
	db, err := sql.Open("sqlite", defaultCachePath())
	if err != nil {
		return nil
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS responses (
        url TEXT PRIMARY KEY,
        body BLOB,
        retrieved_at INTEGER
    )`); err != nil {
		_ = db.Close()
		return nil
	}
	cacheDB = db
	return cacheDB
}

func getCached(url string) (string, bool) {
	db := openCache()
	if db == nil {
		return "", false
	}
	var body string
	var retrievedAt int64
	err := db.QueryRow(`SELECT body, retrieved_at FROM responses WHERE url = ?`, url).
		Scan(&body, &retrievedAt)
	if err != nil {
		return "", false
	}
	ttl := cacheTTL()
	if ttl > 0 && time.Now().Unix()-retrievedAt > ttl {
		return "", false
	}
	return body, true
}

func setCached(url, body string) {
	if url == "" || body == "" {
		return
	}
	db := openCache()
	if db == nil {
		return
	}
	_, _ = db.Exec(`INSERT OR REPLACE INTO responses (url, body, retrieved_at) VALUES (?, ?, ?)`,
		url, body, time.Now().Unix())
}
