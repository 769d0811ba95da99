package storage

import "time"

// Campaign is the root of ownership for uploads and content rows.
type Campaign struct {
	ID        string    `json:"campaignID"`
	Name      string    `json:"campaignName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upload records one ingested file for a campaign.
type Upload struct {
	ID         string    `json:"uploadID"`
	CampaignID string    `json:"campaignID"`
	FileName   string    `json:"fileName"`
	StoredPath string    `json:"storedPath"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ContentRow is the atomic fact record: one row per source delivery record.
// Impressions and Quartile100 are already defaulted to 0 at the ingestion
// boundary; the storage layer never re-interprets them.
type ContentRow struct {
	CampaignID      string `json:"campaignID"`
	CampaignNameSrc string `json:"campaignNameSrc,omitempty"`
	ContentTitle    string `json:"contentTitle,omitempty"`
	NetworkName     string `json:"networkName"`
	Impressions     int64  `json:"impressions"`
	Quartile100     int64  `json:"quartile100"`
}

// ContentAlias maps a canonicalized content title to a stable grouping key.
// Aliases are campaign-agnostic.
type ContentAlias struct {
	TitleCanon string `json:"titleCanon"`
	ContentKey string `json:"contentKey"`
}

// GenreMapping maps a raw label to a canonical genre name. The lookup key is
// the raw network name as received, matched exactly.
type GenreMapping struct {
	RawGenre   string `json:"rawGenre"`
	GenreCanon string `json:"genreCanon"`
}

// BundleMapping resolves fragmented app bundle ids to one canonical bundle.
// Persisted for seed completeness; no rollup consumes it yet.
type BundleMapping struct {
	Raw        string `json:"raw"`
	Bundle     string `json:"bundle"`
	AppName    string `json:"appName"`
	Publisher  string `json:"publisher"`
	MaskReason string `json:"maskReason,omitempty"`
}

// Backend is the uniform storage contract. Both implementations (durable
// sqlite, in-process) must produce identical results for identical inputs;
// the fallback decorator relies on that parity.
//
// Lookups of missing entities return (nil, nil): absence is a normal outcome,
// not an error. Write-path rejections use the sentinel errors in errors.go.
type Backend interface {
	// CreateCampaign allocates a campaign id from the name and persists the
	// campaign. Id collisions are retried internally, never surfaced.
	CreateCampaign(name string) (*Campaign, error)

	// Campaigns returns all campaigns, newest CreatedAt first.
	Campaigns() ([]Campaign, error)

	// Campaign returns the campaign with the given id, or (nil, nil).
	Campaign(id string) (*Campaign, error)

	// DeleteCampaign removes the campaign and cascades to its content rows
	// and uploads. Deleting a non-existent id is not an error.
	DeleteCampaign(id string) error

	// CreateUpload records an ingested file. Fails with ErrNoSuchCampaign if
	// the campaign does not exist.
	CreateUpload(campaignID, fileName, storedPath string) (*Upload, error)

	// Uploads returns the uploads for one campaign, oldest first.
	Uploads(campaignID string) ([]Upload, error)

	// InsertContentRows bulk-appends rows, preserving input order. Fails with
	// ErrInvalidRow (and inserts nothing) if any row lacks a campaign id.
	InsertContentRows(rows []ContentRow) (int, error)

	// ContentRows returns rows for one campaign, or all rows when campaignID
	// is empty, in insertion order.
	ContentRows(campaignID string) ([]ContentRow, error)

	// UpsertContentAlias inserts or updates the alias for a canonical title.
	UpsertContentAlias(titleCanon, contentKey string) error

	// UpsertGenreMapping inserts or updates the mapping for a raw genre label.
	UpsertGenreMapping(rawGenre, genreCanon string) error

	// UpsertBundleMapping inserts or updates a bundle mapping keyed by Raw.
	UpsertBundleMapping(m BundleMapping) error

	// ContentAliases returns all aliases.
	ContentAliases() ([]ContentAlias, error)

	// GenreMappings returns all genre mappings.
	GenreMappings() ([]GenreMapping, error)

	// Close releases the backend. For the in-process backend this discards
	// all data.
	Close() error
}
