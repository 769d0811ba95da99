// Package sqlite provides the durable storage backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/reachreport/ctv-rollup/internal/storage"
)

// createRetries bounds internal id-collision retries in CreateCampaign.
const createRetries = 3

// Store implements storage.Backend using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite storage with the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// CreateCampaign allocates a campaign id and persists the campaign. A unique
// constraint collision on the generated id is retried with a fresh suffix.
func (s *Store) CreateCampaign(name string) (*storage.Campaign, error) {
	createdAt := time.Now().UTC()

	for attempt := 0; ; attempt++ {
		id := storage.NewCampaignID(name)

		_, err := s.db.Exec(
			`INSERT INTO campaigns (campaign_id, campaign_name, created_at) VALUES (?, ?, ?)`,
			id, name, createdAt,
		)
		if err == nil {
			return &storage.Campaign{ID: id, Name: name, CreatedAt: createdAt}, nil
		}

		if isConstraintErr(err) {
			if attempt < createRetries {
				continue
			}
			return nil, storage.ErrConflict
		}
		return nil, storage.Unavailable(fmt.Errorf("failed to insert campaign: %w", err))
	}
}

// Campaigns returns all campaigns, newest first.
func (s *Store) Campaigns() ([]storage.Campaign, error) {
	rows, err := s.db.Query(
		`SELECT campaign_id, campaign_name, created_at
		 FROM campaigns ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to query campaigns: %w", err))
	}
	defer rows.Close()

	var campaigns []storage.Campaign
	for rows.Next() {
		var c storage.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, storage.Unavailable(fmt.Errorf("failed to scan campaign: %w", err))
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("row iteration error: %w", err))
	}

	return campaigns, nil
}

// Campaign returns the campaign with the given id, or (nil, nil).
func (s *Store) Campaign(id string) (*storage.Campaign, error) {
	var c storage.Campaign
	err := s.db.QueryRow(
		`SELECT campaign_id, campaign_name, created_at FROM campaigns WHERE campaign_id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to get campaign: %w", err))
	}
	return &c, nil
}

// DeleteCampaign removes the campaign and cascades to its content rows and
// uploads in one transaction, children first. Idempotent.
func (s *Store) DeleteCampaign(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storage.Unavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM campaign_content_raw WHERE campaign_id = ?`, id); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to delete content rows: %w", err))
	}
	if _, err := tx.Exec(`DELETE FROM campaign_uploads WHERE campaign_id = ?`, id); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to delete uploads: %w", err))
	}
	if _, err := tx.Exec(`DELETE FROM campaigns WHERE campaign_id = ?`, id); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to delete campaign: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to commit delete: %w", err))
	}
	return nil
}

// CreateUpload records an ingested file for an existing campaign.
func (s *Store) CreateUpload(campaignID, fileName, storedPath string) (*storage.Upload, error) {
	exists, err := s.campaignExists(campaignID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storage.ErrNoSuchCampaign
	}

	u := storage.Upload{
		ID:         storage.NewUploadID(),
		CampaignID: campaignID,
		FileName:   fileName,
		StoredPath: storedPath,
		UploadedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT INTO campaign_uploads (upload_id, campaign_id, file_name, stored_path, uploaded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.CampaignID, u.FileName, u.StoredPath, u.UploadedAt,
	)
	if err != nil {
		if isConstraintErr(err) {
			// Campaign deleted between the check and the insert.
			return nil, storage.ErrNoSuchCampaign
		}
		return nil, storage.Unavailable(fmt.Errorf("failed to insert upload: %w", err))
	}

	return &u, nil
}

// Uploads returns the uploads for one campaign, oldest first.
func (s *Store) Uploads(campaignID string) ([]storage.Upload, error) {
	rows, err := s.db.Query(
		`SELECT upload_id, campaign_id, file_name, stored_path, uploaded_at
		 FROM campaign_uploads WHERE campaign_id = ? ORDER BY uploaded_at ASC, rowid ASC`,
		campaignID,
	)
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to query uploads: %w", err))
	}
	defer rows.Close()

	var uploads []storage.Upload
	for rows.Next() {
		var u storage.Upload
		if err := rows.Scan(&u.ID, &u.CampaignID, &u.FileName, &u.StoredPath, &u.UploadedAt); err != nil {
			return nil, storage.Unavailable(fmt.Errorf("failed to scan upload: %w", err))
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("row iteration error: %w", err))
	}

	return uploads, nil
}

// InsertContentRows bulk-appends rows inside one transaction so a failed
// batch has no partial effect. Input order is preserved by autoincrement ids.
func (s *Store) InsertContentRows(rows []storage.ContentRow) (int, error) {
	for _, r := range rows {
		if r.CampaignID == "" {
			return 0, storage.ErrInvalidRow
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, storage.Unavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO campaign_content_raw
		 (campaign_id, campaign_name_src, content_title, content_network_name, impression, quartile100)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, storage.Unavailable(fmt.Errorf("failed to prepare insert: %w", err))
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(
			r.CampaignID, r.CampaignNameSrc, r.ContentTitle, r.NetworkName, r.Impressions, r.Quartile100,
		); err != nil {
			if isConstraintErr(err) {
				return 0, storage.ErrNoSuchCampaign
			}
			return 0, storage.Unavailable(fmt.Errorf("failed to insert content row: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storage.Unavailable(fmt.Errorf("failed to commit batch: %w", err))
	}
	return len(rows), nil
}

// ContentRows returns rows scoped to one campaign, or all rows when
// campaignID is empty, in insertion order.
func (s *Store) ContentRows(campaignID string) ([]storage.ContentRow, error) {
	query := `SELECT campaign_id, COALESCE(campaign_name_src, ''), COALESCE(content_title, ''),
	                 content_network_name, impression, quartile100
	          FROM campaign_content_raw`
	args := []interface{}{}

	if campaignID != "" {
		query += " WHERE campaign_id = ?"
		args = append(args, campaignID)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to query content rows: %w", err))
	}
	defer rows.Close()

	var out []storage.ContentRow
	for rows.Next() {
		var r storage.ContentRow
		if err := rows.Scan(
			&r.CampaignID, &r.CampaignNameSrc, &r.ContentTitle, &r.NetworkName, &r.Impressions, &r.Quartile100,
		); err != nil {
			return nil, storage.Unavailable(fmt.Errorf("failed to scan content row: %w", err))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("row iteration error: %w", err))
	}

	return out, nil
}

// UpsertContentAlias inserts or updates the alias for a canonical title.
func (s *Store) UpsertContentAlias(titleCanon, contentKey string) error {
	_, err := s.db.Exec(
		`INSERT INTO content_aliases (content_title_canon, content_key)
		 VALUES (?, ?)
		 ON CONFLICT(content_title_canon) DO UPDATE SET content_key = excluded.content_key`,
		titleCanon, contentKey,
	)
	if err != nil {
		return storage.Unavailable(fmt.Errorf("failed to upsert content alias: %w", err))
	}
	return nil
}

// UpsertGenreMapping inserts or updates the mapping for a raw genre label.
func (s *Store) UpsertGenreMapping(rawGenre, genreCanon string) error {
	_, err := s.db.Exec(
		`INSERT INTO genre_map (raw_genre, genre_canon)
		 VALUES (?, ?)
		 ON CONFLICT(raw_genre) DO UPDATE SET genre_canon = excluded.genre_canon`,
		rawGenre, genreCanon,
	)
	if err != nil {
		return storage.Unavailable(fmt.Errorf("failed to upsert genre mapping: %w", err))
	}
	return nil
}

// UpsertBundleMapping inserts or updates a bundle mapping keyed by Raw.
func (s *Store) UpsertBundleMapping(m storage.BundleMapping) error {
	_, err := s.db.Exec(
		`INSERT INTO bundle_map (raw, app_bundle, app_name, publisher, mask_reason)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(raw) DO UPDATE SET
			app_bundle = excluded.app_bundle,
			app_name = excluded.app_name,
			publisher = excluded.publisher,
			mask_reason = excluded.mask_reason`,
		m.Raw, m.Bundle, m.AppName, m.Publisher, m.MaskReason,
	)
	if err != nil {
		return storage.Unavailable(fmt.Errorf("failed to upsert bundle mapping: %w", err))
	}
	return nil
}

// ContentAliases returns all aliases, sorted by canonical title.
func (s *Store) ContentAliases() ([]storage.ContentAlias, error) {
	rows, err := s.db.Query(
		`SELECT content_title_canon, content_key FROM content_aliases ORDER BY content_title_canon ASC`,
	)
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to query content aliases: %w", err))
	}
	defer rows.Close()

	var aliases []storage.ContentAlias
	for rows.Next() {
		var a storage.ContentAlias
		if err := rows.Scan(&a.TitleCanon, &a.ContentKey); err != nil {
			return nil, storage.Unavailable(fmt.Errorf("failed to scan alias: %w", err))
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("row iteration error: %w", err))
	}

	return aliases, nil
}

// GenreMappings returns all genre mappings, sorted by raw label.
func (s *Store) GenreMappings() ([]storage.GenreMapping, error) {
	rows, err := s.db.Query(
		`SELECT raw_genre, genre_canon FROM genre_map ORDER BY raw_genre ASC`,
	)
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to query genre mappings: %w", err))
	}
	defer rows.Close()

	var mappings []storage.GenreMapping
	for rows.Next() {
		var m storage.GenreMapping
		if err := rows.Scan(&m.RawGenre, &m.GenreCanon); err != nil {
			return nil, storage.Unavailable(fmt.Errorf("failed to scan genre mapping: %w", err))
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("row iteration error: %w", err))
	}

	return mappings, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// campaignExists reports whether a campaign row exists.
func (s *Store) campaignExists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM campaigns WHERE campaign_id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storage.Unavailable(fmt.Errorf("failed to check campaign: %w", err))
	}
	return true, nil
}

// isConstraintErr reports whether err is a sqlite constraint violation
// (unique or foreign key).
func isConstraintErr(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
