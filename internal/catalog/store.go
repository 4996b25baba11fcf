package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// Store is the persistent, indexed catalog of video records.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (or creates) the catalog database at dbPath. The parent
// directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Catalog database path: %s", dbPath)

	// WAL mode lets lane upserts proceed while readers page through
	// listings; busy_timeout prevents "database is locked" errors.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT NOT NULL,
		folder_name TEXT NOT NULL,
		full_path TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		creation_date INTEGER NOT NULL,
		modified_date INTEGER NOT NULL,
		duration REAL,
		width INTEGER,
		height INTEGER,
		fps REAL,
		codec TEXT,
		thumbnail_path TEXT,
		indexed_at INTEGER NOT NULL,
		blob_url TEXT,
		is_preloaded INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_videos_creation_date ON videos(creation_date);
	CREATE INDEX IF NOT EXISTS idx_videos_modified_date ON videos(modified_date);
	CREATE INDEX IF NOT EXISTS idx_videos_folder_name ON videos(folder_name);
	CREATE INDEX IF NOT EXISTS idx_videos_file_name ON videos(file_name COLLATE NOCASE);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or fully replaces the record keyed by its FullPath.
func (s *Store) Upsert(ctx context.Context, rec *VideoRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	INSERT INTO videos (
		id, folder_name, full_path, file_name, file_size,
		creation_date, modified_date, duration, width, height,
		fps, codec, thumbnail_path, indexed_at, blob_url, is_preloaded
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(full_path) DO UPDATE SET
		id = excluded.id,
		folder_name = excluded.folder_name,
		file_name = excluded.file_name,
		file_size = excluded.file_size,
		creation_date = excluded.creation_date,
		modified_date = excluded.modified_date,
		duration = excluded.duration,
		width = excluded.width,
		height = excluded.height,
		fps = excluded.fps,
		codec = excluded.codec,
		thumbnail_path = excluded.thumbnail_path,
		indexed_at = excluded.indexed_at,
		blob_url = excluded.blob_url,
		is_preloaded = excluded.is_preloaded
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.FolderName,
		rec.FullPath,
		rec.FileName,
		rec.FileSize,
		rec.CreationDate,
		rec.ModifiedDate,
		rec.Duration,
		rec.Width,
		rec.Height,
		rec.FPS,
		rec.Codec,
		nullString(rec.ThumbnailPath),
		rec.IndexedAt,
		nullString(rec.BlobURL),
		rec.IsPreloaded,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", rec.FullPath, err)
	}
	return nil
}

// GetByPath returns the record stored for path, or nil if absent.
func (s *Store) GetByPath(ctx context.Context, path string) (*VideoRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_by_path", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, selectColumns+` FROM videos WHERE full_path = ?`, path)

	rec, scanErr := scanRecord(row)
	if scanErr == sql.ErrNoRows {
		return nil, nil
	}
	if scanErr != nil {
		err = scanErr
		return nil, fmt.Errorf("get by path %s: %w", path, scanErr)
	}
	return rec, nil
}

// Clear removes every record from the catalog.
func (s *Store) Clear(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("clear", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, "DELETE FROM videos")
	if err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

// UpdateConnMetrics exports database connection gauge values.
func (s *Store) UpdateConnMetrics() {
	metrics.DBConnectionsOpen.Set(float64(s.db.Stats().OpenConnections))
}

// recordQuery records store query metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// nullString maps "" to NULL so optional text columns stay NULL rather than
// empty strings.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
