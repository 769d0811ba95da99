// Package fallback decorates a durable backend with a one-shot switch to an
// in-process standby. When the primary reports a transient failure
// (storage.ErrUnavailable) the same operation is retried exactly once against
// the standby and the degradation is logged. Semantic rejections (validation,
// missing references, conflicts) pass through untouched.
//
// This is an availability-over-consistency trade: an operation served by the
// standby is durable only for the life of the process.
package fallback

import (
	"log"

	"github.com/reachreport/ctv-rollup/internal/storage"
)

// Store implements storage.Backend over a primary and a standby backend.
type Store struct {
	primary storage.Backend
	standby storage.Backend
}

// New creates a fallback store. Both backends must be non-nil.
func New(primary, standby storage.Backend) *Store {
	return &Store{primary: primary, standby: standby}
}

func (s *Store) degraded(op string, err error) {
	log.Printf("storage degraded: %s failed on primary backend, serving from in-process standby: %v", op, err)
}

func (s *Store) CreateCampaign(name string) (*storage.Campaign, error) {
	c, err := s.primary.CreateCampaign(name)
	if storage.IsUnavailable(err) {
		s.degraded("create campaign", err)
		return s.standby.CreateCampaign(name)
	}
	return c, err
}

func (s *Store) Campaigns() ([]storage.Campaign, error) {
	campaigns, err := s.primary.Campaigns()
	if storage.IsUnavailable(err) {
		s.degraded("list campaigns", err)
		return s.standby.Campaigns()
	}
	return campaigns, err
}

func (s *Store) Campaign(id string) (*storage.Campaign, error) {
	c, err := s.primary.Campaign(id)
	if storage.IsUnavailable(err) {
		s.degraded("get campaign", err)
		return s.standby.Campaign(id)
	}
	return c, err
}

func (s *Store) DeleteCampaign(id string) error {
	err := s.primary.DeleteCampaign(id)
	if storage.IsUnavailable(err) {
		s.degraded("delete campaign", err)
		return s.standby.DeleteCampaign(id)
	}
	return err
}

func (s *Store) CreateUpload(campaignID, fileName, storedPath string) (*storage.Upload, error) {
	u, err := s.primary.CreateUpload(campaignID, fileName, storedPath)
	if storage.IsUnavailable(err) {
		s.degraded("create upload", err)
		return s.standby.CreateUpload(campaignID, fileName, storedPath)
	}
	return u, err
}

func (s *Store) Uploads(campaignID string) ([]storage.Upload, error) {
	uploads, err := s.primary.Uploads(campaignID)
	if storage.IsUnavailable(err) {
		s.degraded("list uploads", err)
		return s.standby.Uploads(campaignID)
	}
	return uploads, err
}

func (s *Store) InsertContentRows(rows []storage.ContentRow) (int, error) {
	n, err := s.primary.InsertContentRows(rows)
	if storage.IsUnavailable(err) {
		s.degraded("insert content rows", err)
		return s.standby.InsertContentRows(rows)
	}
	return n, err
}

func (s *Store) ContentRows(campaignID string) ([]storage.ContentRow, error) {
	rows, err := s.primary.ContentRows(campaignID)
	if storage.IsUnavailable(err) {
		s.degraded("get content rows", err)
		return s.standby.ContentRows(campaignID)
	}
	return rows, err
}

func (s *Store) UpsertContentAlias(titleCanon, contentKey string) error {
	err := s.primary.UpsertContentAlias(titleCanon, contentKey)
	if storage.IsUnavailable(err) {
		s.degraded("upsert content alias", err)
		return s.standby.UpsertContentAlias(titleCanon, contentKey)
	}
	return err
}

func (s *Store) UpsertGenreMapping(rawGenre, genreCanon string) error {
	err := s.primary.UpsertGenreMapping(rawGenre, genreCanon)
	if storage.IsUnavailable(err) {
		s.degraded("upsert genre mapping", err)
		return s.standby.UpsertGenreMapping(rawGenre, genreCanon)
	}
	return err
}

func (s *Store) UpsertBundleMapping(m storage.BundleMapping) error {
	err := s.primary.UpsertBundleMapping(m)
	if storage.IsUnavailable(err) {
		s.degraded("upsert bundle mapping", err)
		return s.standby.UpsertBundleMapping(m)
	}
	return err
}

func (s *Store) ContentAliases() ([]storage.ContentAlias, error) {
	aliases, err := s.primary.ContentAliases()
	if storage.IsUnavailable(err) {
		s.degraded("list content aliases", err)
		return s.standby.ContentAliases()
	}
	return aliases, err
}

func (s *Store) GenreMappings() ([]storage.GenreMapping, error) {
	mappings, err := s.primary.GenreMappings()
	if storage.IsUnavailable(err) {
		s.degraded("list genre mappings", err)
		return s.standby.GenreMappings()
	}
	return mappings, err
}

// Close closes both backends, reporting the primary's error first.
func (s *Store) Close() error {
	primaryErr := s.primary.Close()
	standbyErr := s.standby.Close()
	if primaryErr != nil {
		return primaryErr
	}
	return standbyErr
}
