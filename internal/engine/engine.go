// Package engine is the facade over storage, normalization, and aggregation:
// campaign lifecycle, batch ingestion, and the rollup queries the HTTP layer
// serves. It holds no derived state; every rollup query recomputes from the
// raw rows and a fresh reference-table snapshot.
package engine

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/reachreport/ctv-rollup/internal/ingest"
	"github.com/reachreport/ctv-rollup/internal/normalize"
	"github.com/reachreport/ctv-rollup/internal/rollup"
	"github.com/reachreport/ctv-rollup/internal/storage"
)

// Engine coordinates one storage backend.
type Engine struct {
	store storage.Backend
}

// New creates an engine over the given backend.
func New(store storage.Backend) *Engine {
	return &Engine{store: store}
}

// CreateCampaign allocates and persists a campaign.
func (e *Engine) CreateCampaign(name string) (*storage.Campaign, error) {
	return e.store.CreateCampaign(name)
}

// Campaigns lists all campaigns, newest first.
func (e *Engine) Campaigns() ([]storage.Campaign, error) {
	return e.store.Campaigns()
}

// Campaign returns one campaign, or (nil, nil) when absent.
func (e *Engine) Campaign(id string) (*storage.Campaign, error) {
	return e.store.Campaign(id)
}

// DeleteCampaign removes a campaign and all its dependent rows. Idempotent.
func (e *Engine) DeleteCampaign(id string) error {
	return e.store.DeleteCampaign(id)
}

// Uploads lists the ingested files for one campaign.
func (e *Engine) Uploads(campaignID string) ([]storage.Upload, error) {
	return e.store.Uploads(campaignID)
}

// InsertBatch persists a batch of records under an existing campaign and
// returns the number inserted. The campaign reference is checked before any
// write; a rejected batch has no effect.
func (e *Engine) InsertBatch(campaignID string, records []ingest.Record) (int, error) {
	c, err := e.store.Campaign(campaignID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("%w: %s", storage.ErrNoSuchCampaign, campaignID)
	}

	rows := make([]storage.ContentRow, len(records))
	for i, rec := range records {
		rows[i] = storage.ContentRow{
			CampaignID:      campaignID,
			CampaignNameSrc: rec.CampaignNameSrc,
			ContentTitle:    rec.ContentTitle,
			NetworkName:     rec.NetworkName,
			Impressions:     rec.Impressions,
			Quartile100:     rec.Quartile100,
		}
	}

	return e.store.InsertContentRows(rows)
}

// IngestResult summarizes one file ingestion.
type IngestResult struct {
	Campaign      storage.Campaign
	Upload        storage.Upload
	RowsProcessed int
	RowsInserted  int
	RowsSkipped   int
}

// IngestFile runs the full ingestion flow for one uploaded CSV: derive the
// campaign name from the file name unless overridden, create the campaign,
// record the upload, parse, and bulk-insert. The file itself is not retained;
// the stored path is a virtual reference.
func (e *Engine) IngestFile(fileName, nameOverride string, r io.Reader) (*IngestResult, error) {
	name := nameOverride
	if name == "" {
		name = ingest.CampaignName(fileName)
	}

	campaign, err := e.store.CreateCampaign(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	storedPath := fmt.Sprintf("virtual://%s/%s", campaign.ID, fileName)
	upload, err := e.store.CreateUpload(campaign.ID, fileName, storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	records, skipped, err := ingest.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}

	inserted, err := e.InsertBatch(campaign.ID, records)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rows: %w", err)
	}

	log.Printf("Ingested %s: campaign=%s rows=%d skipped=%d", fileName, campaign.ID, inserted, skipped)

	return &IngestResult{
		Campaign:      *campaign,
		Upload:        *upload,
		RowsProcessed: len(records) + skipped,
		RowsInserted:  inserted,
		RowsSkipped:   skipped,
	}, nil
}

// AppRollup computes the app/network rollup, optionally scoped to one
// campaign (empty id means all campaigns).
func (e *Engine) AppRollup(campaignID string) ([]rollup.App, error) {
	rows, err := e.store.ContentRows(campaignID)
	if err != nil {
		return nil, err
	}
	return rollup.Apps(rows, campaignID), nil
}

// GenreRollup computes the genre rollup against the current genre table.
func (e *Engine) GenreRollup(campaignID string) ([]rollup.Genre, error) {
	rows, err := e.store.ContentRows(campaignID)
	if err != nil {
		return nil, err
	}
	tables, err := e.tables()
	if err != nil {
		return nil, err
	}
	return rollup.Genres(rows, tables), nil
}

// ContentRollup computes the content rollup against the current alias table.
func (e *Engine) ContentRollup(campaignID string) ([]rollup.Content, error) {
	rows, err := e.store.ContentRows(campaignID)
	if err != nil {
		return nil, err
	}
	tables, err := e.tables()
	if err != nil {
		return nil, err
	}
	return rollup.Contents(rows, tables), nil
}

// CampaignStats summarizes one campaign's raw rows.
type CampaignStats struct {
	TotalImpressions int64   `json:"totalImpressions"`
	TotalCompletes   int64   `json:"totalCompletes"`
	OverallVCR       float64 `json:"overallVCR"`
	MappedGenres     int     `json:"mappedGenres"`
	TotalRows        int     `json:"totalRows"`
	MappedPercentage int     `json:"mappedPercentage"`
}

// Stats computes totals and genre-mapping coverage for one campaign.
func (e *Engine) Stats(campaignID string) (*CampaignStats, error) {
	rows, err := e.store.ContentRows(campaignID)
	if err != nil {
		return nil, err
	}
	tables, err := e.tables()
	if err != nil {
		return nil, err
	}

	stats := &CampaignStats{TotalRows: len(rows)}
	genres := make(map[string]struct{})
	for _, row := range rows {
		stats.TotalImpressions += row.Impressions
		stats.TotalCompletes += row.Quartile100
		genres[tables.Genre(row.NetworkName)] = struct{}{}
	}
	stats.OverallVCR = rollup.VCR(stats.TotalCompletes, stats.TotalImpressions)
	stats.MappedGenres = len(genres)
	if stats.TotalRows > 0 {
		stats.MappedPercentage = int(math.Round(float64(stats.MappedGenres) / float64(stats.TotalRows) * 100))
	}
	return stats, nil
}

// tables snapshots the reference tables for one query.
func (e *Engine) tables() (*normalize.Tables, error) {
	aliasRows, err := e.store.ContentAliases()
	if err != nil {
		return nil, err
	}
	genreRows, err := e.store.GenreMappings()
	if err != nil {
		return nil, err
	}

	aliases := make([]normalize.Alias, len(aliasRows))
	for i, a := range aliasRows {
		aliases[i] = normalize.Alias{TitleCanon: a.TitleCanon, ContentKey: a.ContentKey}
	}
	genres := make([]normalize.GenreMapping, len(genreRows))
	for i, g := range genreRows {
		genres[i] = normalize.GenreMapping{RawGenre: g.RawGenre, GenreCanon: g.GenreCanon}
	}
	return normalize.NewTables(aliases, genres), nil
}
