// Package memory provides the in-process storage backend. Data lives for the
// life of the process and is discarded on Close. A single RWMutex guards all
// containers; write volume is low enough that finer locking buys nothing.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/reachreport/ctv-rollup/internal/storage"
)

// createRetries bounds internal id-collision retries in CreateCampaign.
const createRetries = 3

// Store implements storage.Backend with process-lifetime containers.
type Store struct {
	mu        sync.RWMutex
	campaigns []storage.Campaign
	uploads   []storage.Upload
	rows      []storage.ContentRow
	aliases   map[string]string                // title canon -> content key
	genres    map[string]string                // raw genre -> canonical genre
	bundles   map[string]storage.BundleMapping // raw bundle -> mapping
}

// NewStore creates an empty in-process store.
func NewStore() *Store {
	return &Store{
		aliases: make(map[string]string),
		genres:  make(map[string]string),
		bundles: make(map[string]storage.BundleMapping),
	}
}

// CreateCampaign allocates an id and persists the campaign.
func (s *Store) CreateCampaign(name string) (*storage.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	for attempt := 0; ; attempt++ {
		id = storage.NewCampaignID(name)
		if s.findCampaign(id) < 0 {
			break
		}
		if attempt == createRetries {
			return nil, storage.ErrConflict
		}
	}

	c := storage.Campaign{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.campaigns = append(s.campaigns, c)
	return &c, nil
}

// Campaigns returns all campaigns, newest first. Equal timestamps keep the
// most recently created one first.
func (s *Store) Campaigns() ([]storage.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Campaign, len(s.campaigns))
	for i, c := range s.campaigns {
		out[len(s.campaigns)-1-i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Campaign returns the campaign with the given id, or (nil, nil).
func (s *Store) Campaign(id string) (*storage.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.findCampaign(id); i >= 0 {
		c := s.campaigns[i]
		return &c, nil
	}
	return nil, nil
}

// DeleteCampaign removes the campaign and cascades to its rows and uploads.
// Children go first so a reader never sees orphans under a visible campaign.
func (s *Store) DeleteCampaign(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.rows[:0]
	for _, r := range s.rows {
		if r.CampaignID != id {
			rows = append(rows, r)
		}
	}
	s.rows = rows

	uploads := s.uploads[:0]
	for _, u := range s.uploads {
		if u.CampaignID != id {
			uploads = append(uploads, u)
		}
	}
	s.uploads = uploads

	if i := s.findCampaign(id); i >= 0 {
		s.campaigns = append(s.campaigns[:i], s.campaigns[i+1:]...)
	}
	return nil
}

// CreateUpload records an ingested file for an existing campaign.
func (s *Store) CreateUpload(campaignID, fileName, storedPath string) (*storage.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findCampaign(campaignID) < 0 {
		return nil, storage.ErrNoSuchCampaign
	}

	u := storage.Upload{
		ID:         storage.NewUploadID(),
		CampaignID: campaignID,
		FileName:   fileName,
		StoredPath: storedPath,
		UploadedAt: time.Now().UTC(),
	}
	s.uploads = append(s.uploads, u)
	return &u, nil
}

// Uploads returns the uploads for one campaign, oldest first.
func (s *Store) Uploads(campaignID string) ([]storage.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.Upload
	for _, u := range s.uploads {
		if u.CampaignID == campaignID {
			out = append(out, u)
		}
	}
	return out, nil
}

// InsertContentRows appends rows in input order. The whole batch is validated
// before anything is appended, so a rejected batch has no partial effect.
func (s *Store) InsertContentRows(rows []storage.ContentRow) (int, error) {
	for _, r := range rows {
		if r.CampaignID == "" {
			return 0, storage.ErrInvalidRow
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, rows...)
	return len(rows), nil
}

// ContentRows returns rows scoped to one campaign, or all rows when
// campaignID is empty, in insertion order.
func (s *Store) ContentRows(campaignID string) ([]storage.ContentRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if campaignID == "" {
		out := make([]storage.ContentRow, len(s.rows))
		copy(out, s.rows)
		return out, nil
	}

	var out []storage.ContentRow
	for _, r := range s.rows {
		if r.CampaignID == campaignID {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpsertContentAlias inserts or updates the alias for a canonical title.
func (s *Store) UpsertContentAlias(titleCanon, contentKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aliases[titleCanon] = contentKey
	return nil
}

// UpsertGenreMapping inserts or updates the mapping for a raw genre label.
func (s *Store) UpsertGenreMapping(rawGenre, genreCanon string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.genres[rawGenre] = genreCanon
	return nil
}

// UpsertBundleMapping inserts or updates a bundle mapping keyed by Raw.
func (s *Store) UpsertBundleMapping(m storage.BundleMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bundles[m.Raw] = m
	return nil
}

// ContentAliases returns all aliases, sorted by canonical title.
func (s *Store) ContentAliases() ([]storage.ContentAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.ContentAlias, 0, len(s.aliases))
	for canon, key := range s.aliases {
		out = append(out, storage.ContentAlias{TitleCanon: canon, ContentKey: key})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TitleCanon < out[j].TitleCanon })
	return out, nil
}

// GenreMappings returns all genre mappings, sorted by raw label.
func (s *Store) GenreMappings() ([]storage.GenreMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.GenreMapping, 0, len(s.genres))
	for raw, canon := range s.genres {
		out = append(out, storage.GenreMapping{RawGenre: raw, GenreCanon: canon})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RawGenre < out[j].RawGenre })
	return out, nil
}

// Close discards all data.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.campaigns = nil
	s.uploads = nil
	s.rows = nil
	s.aliases = make(map[string]string)
	s.genres = make(map[string]string)
	s.bundles = make(map[string]storage.BundleMapping)
	return nil
}

// findCampaign returns the index of the campaign with the given id, or -1.
// Callers must hold the lock.
func (s *Store) findCampaign(id string) int {
	for i, c := range s.campaigns {
		if c.ID == id {
			return i
		}
	}
	return -1
}
