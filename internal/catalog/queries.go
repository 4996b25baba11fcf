package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const selectColumns = `
	SELECT id, folder_name, full_path, file_name, file_size,
	       creation_date, modified_date, duration, width, height,
	       fps, codec, thumbnail_path, indexed_at, blob_url, is_preloaded`

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*VideoRecord, error) {
	var rec VideoRecord
	var thumbnail, blobURL sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.FolderName,
		&rec.FullPath,
		&rec.FileName,
		&rec.FileSize,
		&rec.CreationDate,
		&rec.ModifiedDate,
		&rec.Duration,
		&rec.Width,
		&rec.Height,
		&rec.FPS,
		&rec.Codec,
		&thumbnail,
		&rec.IndexedAt,
		&blobURL,
		&rec.IsPreloaded,
	)
	if err != nil {
		return nil, err
	}

	rec.ThumbnailPath = thumbnail.String
	rec.BlobURL = blobURL.String
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*VideoRecord, error) {
	defer func() { _ = rows.Close() }()

	records := make([]*VideoRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// orderClause maps a sort field and order to a deterministic ORDER BY.
// rowid breaks ties so paging never repeats or drops rows across pages.
func orderClause(field SortField, order SortOrder) string {
	column := "creation_date"
	switch field {
	case SortByModified:
		column = "modified_date"
	case SortByName:
		column = "file_name COLLATE NOCASE"
	case SortBySize:
		column = "file_size"
	case SortByCreated:
	}

	direction := "DESC"
	if order == SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, rowid %s", column, direction, direction)
}

// List returns every record sorted by field and order.
func (s *Store) List(ctx context.Context, field SortField, order SortOrder) ([]*VideoRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := selectColumns + " FROM videos " + orderClause(field, order)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return collectRecords(rows)
}

// ListPage returns one page of records. Pages are 1-based; page and
// pageSize values below 1 are clamped to defaults.
func (s *Store) ListPage(ctx context.Context, field SortField, order SortOrder, page, pageSize int) (*Page, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_page", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	page, pageSize = clampPage(page, pageSize)
	offset := (page - 1) * pageSize

	var total int
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&total); err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}

	query := selectColumns + " FROM videos " + orderClause(field, order) + " LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list page: %w", err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      records,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    offset+len(records) < total,
	}, nil
}

// ListByFolder returns every record in the named folder.
func (s *Store) ListByFolder(ctx context.Context, folder string, field SortField, order SortOrder) ([]*VideoRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_by_folder", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := selectColumns + " FROM videos WHERE folder_name = ? " + orderClause(field, order)
	rows, err := s.db.QueryContext(ctx, query, folder)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}
	return collectRecords(rows)
}

// ListFolderPage returns one page of records from the named folder.
func (s *Store) ListFolderPage(ctx context.Context, folder string, field SortField, order SortOrder, page, pageSize int) (*Page, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_folder_page", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	page, pageSize = clampPage(page, pageSize)
	offset := (page - 1) * pageSize

	var total int
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos WHERE folder_name = ?", folder).Scan(&total); err != nil {
		return nil, fmt.Errorf("count folder %s: %w", folder, err)
	}

	query := selectColumns + " FROM videos WHERE folder_name = ? " + orderClause(field, order) + " LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, folder, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list folder page %s: %w", folder, err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      records,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    offset+len(records) < total,
	}, nil
}

// DistinctFolders returns the sorted set of folder names in the catalog.
func (s *Store) DistinctFolders(ctx context.Context) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("distinct_folders", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT folder_name FROM videos ORDER BY folder_name ASC")
	if err != nil {
		return nil, fmt.Errorf("distinct folders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	folders := make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan folder name: %w", err)
		}
		folders = append(folders, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return folders, nil
}

// escapeLike escapes LIKE metacharacters so the term matches literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// Search returns records whose file name, folder name, or codec contains
// term as a case-insensitive substring.
func (s *Store) Search(ctx context.Context, term string, field SortField, order SortOrder) ([]*VideoRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("search", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pattern := "%" + escapeLike(term) + "%"
	query := selectColumns + ` FROM videos
	WHERE file_name LIKE ? ESCAPE '\'
	   OR folder_name LIKE ? ESCAPE '\'
	   OR codec LIKE ? ESCAPE '\' ` + orderClause(field, order)

	rows, err := s.db.QueryContext(ctx, query, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	return collectRecords(rows)
}

// Count returns the number of records in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}

// CatalogStats returns aggregate counts over the catalog.
func (s *Store) CatalogStats(ctx context.Context) (*Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats Stats
	query := `SELECT COUNT(*), COUNT(DISTINCT folder_name), COALESCE(SUM(file_size), 0) FROM videos`
	if err = s.db.QueryRowContext(ctx, query).Scan(&stats.TotalVideos, &stats.TotalFolders, &stats.TotalBytes); err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	return &stats, nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	return page, pageSize
}
