package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fandomtools/wikicrawl/internal/model"
)

// Workspace subdirectories and the index database file name.
const (
	rawDirName       = "raw"
	processedDirName = "processed"
	cacheDirName     = "cache"
	indexFile        = "pages.db"
)

// Archive stores extracted page content and maintains an SQLite index
// over it.
//
// Design decision: content lives in per-page JSON files while only the
// metadata goes into SQLite, because:
//  1. Content files stay directly readable and greppable by downstream
//     tooling without database access.
//  2. The index stays small, so dedup and status queries are cheap even
//     for large crawls.
//  3. A half-written content file cannot corrupt the index; the row is
//     only upserted after the file write succeeds.
type Archive struct {
	// db is the SQLite index connection.
	db *sql.DB

	// projectDir is the project workspace root.
	projectDir string

	// rawDir holds raw HTML snapshots.
	rawDir string

	// processedDir holds extracted-content JSON documents.
	processedDir string
}

// Options configures Archive behavior.
type Options struct {
	// CreateIfNotExists creates the workspace directories and index
	// database if they don't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging on the index database.
	EnableWAL bool
}

// DefaultOptions returns the default archive options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a content archive rooted at projectDir.
// If CreateIfNotExists is false and the index database doesn't exist,
// an error is returned.
func Open(projectDir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(projectDir, cacheDirName, indexFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive index not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive index path: %w", err)
		}
	}

	a := &Archive{
		projectDir:   projectDir,
		rawDir:       filepath.Join(projectDir, rawDirName),
		processedDir: filepath.Join(projectDir, processedDirName),
	}

	if opts.CreateIfNotExists {
		for _, dir := range []string{a.rawDir, a.processedDir, filepath.Dir(dbPath)} {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create archive directory: %w", err)
			}
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive index: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a.db = db

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	return a, nil
}

// Close closes the index database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// createTables creates the index schema if it doesn't exist.
func (a *Archive) createTables() error {
	schema := `
	-- Page records index one extracted document per URL
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT,
		namespace TEXT,
		status_code INTEGER,
		content_hash TEXT,
		is_disambiguation INTEGER DEFAULT 0,
		file_path TEXT NOT NULL,
		crawled_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pages_namespace ON pages(namespace);
	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(content_hash);
	CREATE INDEX IF NOT EXISTS idx_pages_crawled ON pages(crawled_at);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// document is the on-disk shape of a saved page.
type document struct {
	URL     string               `json:"url"`
	SavedAt time.Time            `json:"saved_at"`
	Content *model.ExtractResult `json:"content"`
}

// Save writes the extracted content to the processed directory and
// upserts its index row. It returns the content file's path relative to
// the project workspace, which is what gets recorded as the page's
// storage location.
func (a *Archive) Save(ctx context.Context, page *model.Page, result *model.ExtractResult) (string, error) {
	if result == nil || result.URL == "" {
		return "", errors.New("archive: nothing to save")
	}

	subdir := "articles"
	if result.IsDisambiguation {
		subdir = "disambiguation"
	}
	dir := filepath.Join(a.processedDir, subdir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	path := filepath.Join(dir, filenameFor(result.URL))
	doc := document{URL: result.URL, SavedAt: time.Now().UTC(), Content: result}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize content: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write content file: %w", err)
	}

	relPath, err := filepath.Rel(a.projectDir, path)
	if err != nil {
		relPath = path
	}

	query := `
	INSERT INTO pages (url, title, namespace, status_code, content_hash, is_disambiguation, file_path)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		namespace = excluded.namespace,
		status_code = excluded.status_code,
		content_hash = excluded.content_hash,
		is_disambiguation = excluded.is_disambiguation,
		file_path = excluded.file_path,
		crawled_at = CURRENT_TIMESTAMP
	`

	var statusCode int
	var contentHash string
	if page != nil {
		statusCode = page.StatusCode
		contentHash = page.ContentHash()
	}

	if _, err := a.db.ExecContext(ctx, query,
		result.URL,
		result.Title,
		result.Namespace,
		statusCode,
		contentHash,
		boolToInt(result.IsDisambiguation),
		relPath,
	); err != nil {
		return "", fmt.Errorf("failed to index page: %w", err)
	}

	return relPath, nil
}

// SaveRawHTML snapshots the undecoded page body under the raw directory
// and returns the snapshot's workspace-relative path. Raw snapshots are
// not indexed.
func (a *Archive) SaveRawHTML(page *model.Page) (string, error) {
	if page == nil || page.URL == "" {
		return "", errors.New("archive: nothing to save")
	}

	path := filepath.Join(a.rawDir, rawFilenameFor(page.URL))
	if err := os.WriteFile(path, []byte(page.Body), 0600); err != nil {
		return "", fmt.Errorf("failed to write raw snapshot: %w", err)
	}

	relPath, err := filepath.Rel(a.projectDir, path)
	if err != nil {
		relPath = path
	}
	return relPath, nil
}

// PageRecord is an indexed page's metadata.
type PageRecord struct {
	// ID is the row's identifier in the index.
	ID int64

	// URL is the page URL, unique across the archive.
	URL string

	// Title is the extracted article title.
	Title string

	// Namespace is the page's wiki namespace.
	Namespace string

	// StatusCode is the HTTP status the page was fetched with.
	StatusCode int

	// ContentHash is the SHA-256 digest of the fetched body.
	ContentHash string

	// IsDisambiguation reports whether the page is a disambiguation page.
	IsDisambiguation bool

	// FilePath is the content file's path relative to the workspace.
	FilePath string

	// CrawledAt is when the page was last saved.
	CrawledAt time.Time
}

// Lookup retrieves a page's index record by URL. It returns nil when
// the URL has never been archived.
func (a *Archive) Lookup(ctx context.Context, url string) (*PageRecord, error) {
	query := `
	SELECT id, url, title, namespace, status_code, content_hash, is_disambiguation, file_path, crawled_at
	FROM pages
	WHERE url = ?
	`

	var rec PageRecord
	var disambiguation int
	var crawledAt string

	err := a.db.QueryRowContext(ctx, query, url).Scan(
		&rec.ID,
		&rec.URL,
		&rec.Title,
		&rec.Namespace,
		&rec.StatusCode,
		&rec.ContentHash,
		&disambiguation,
		&rec.FilePath,
		&crawledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up page: %w", err)
	}

	rec.IsDisambiguation = disambiguation != 0
	rec.CrawledAt = parseTimestamp(crawledAt)
	return &rec, nil
}

// HasContent reports whether the URL already has archived content with
// the given body hash. Used to skip re-saving unchanged pages.
func (a *Archive) HasContent(ctx context.Context, url, contentHash string) (bool, error) {
	query := `SELECT COUNT(*) FROM pages WHERE url = ? AND content_hash = ?`

	var count int
	if err := a.db.QueryRowContext(ctx, query, url, contentHash).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check page content: %w", err)
	}
	return count > 0, nil
}

// Stats summarizes the archive's contents.
type Stats struct {
	// TotalPages is the number of indexed pages.
	TotalPages int `json:"total_pages"`

	// ByNamespace counts indexed pages per wiki namespace.
	ByNamespace map[string]int `json:"by_namespace"`
}

// ContentStats returns aggregate counts over the index.
func (a *Archive) ContentStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByNamespace: make(map[string]int)}

	rows, err := a.db.QueryContext(ctx, `SELECT namespace, COUNT(*) FROM pages GROUP BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ns string
		var count int
		if err := rows.Scan(&ns, &count); err != nil {
			return nil, fmt.Errorf("failed to scan archive stats: %w", err)
		}
		stats.ByNamespace[ns] = count
		stats.TotalPages += count
	}

	return stats, rows.Err()
}

// filenameFor derives a stable content file name from a URL. A hash
// name sidesteps every filesystem restriction on wiki article titles.
func filenameFor(url string) string {
	return "page_" + urlHash(url) + ".json"
}

func rawFilenameFor(url string) string {
	return "page_" + urlHash(url) + ".html"
}

func urlHash(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
