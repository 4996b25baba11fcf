package catalog

// VideoRecord is one catalog entry describing an indexed video file.
// FullPath is the unique key; ID is a display identifier derived from the
// parent folder and file name and is not guaranteed unique across folders.
type VideoRecord struct {
	ID           string   `json:"id"`
	FolderName   string   `json:"folder_name"`
	FullPath     string   `json:"full_path"`
	FileName     string   `json:"file_name"`
	FileSize     int64    `json:"file_size"`
	CreationDate int64    `json:"creation_date"`
	ModifiedDate int64    `json:"modified_date"`
	Duration     *float64 `json:"duration,omitempty"`
	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
	FPS          *float64 `json:"fps,omitempty"`
	Codec        *string  `json:"codec,omitempty"`
	ThumbnailPath string  `json:"thumbnail_path,omitempty"`
	IndexedAt    int64    `json:"indexed_at"`

	// BlobURL and IsPreloaded are owned by the presentation layer and
	// stored verbatim; the core never interprets them.
	BlobURL     string `json:"blobUrl,omitempty"`
	IsPreloaded bool   `json:"isPreloaded,omitempty"`
}

// SortField selects the column used for ordered listings.
type SortField string

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	SortByCreated  SortField = "created"
	SortByModified SortField = "modified"
	SortByName     SortField = "name"
	SortBySize     SortField = "size"

	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page is one page of an ordered listing. HasMore is true when a strictly
// later page is non-empty.
type Page struct {
	Items      []*VideoRecord `json:"items"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	HasMore    bool          `json:"hasMore"`
}

// Stats summarizes the catalog contents.
type Stats struct {
	TotalVideos  int   `json:"totalVideos"`
	TotalFolders int   `json:"totalFolders"`
	TotalBytes   int64 `json:"totalBytes"`
}
