package registry

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"updateserver/internal/models"
	"updateserver/internal/version"
)

var (
	ErrDuplicateVersion = errors.New("version already exists")
	ErrNotFound         = errors.New("version not found")
)

// Store provides access to published release records.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateInput is the admin payload for publishing a release.
type CreateInput struct {
	Version            string `json:"version"`
	ReleaseNotes       string `json:"release_notes"`
	DownloadURL        string `json:"download_url"`
	FileSize           int64  `json:"file_size"`
	ChecksumSHA256     string `json:"checksum_sha256"`
	UpdateType         string `json:"update_type"`
	ForceUpdate        bool   `json:"force_update"`
	MinRequiredVersion string `json:"min_required_version"`
}

// Create publishes a new release. Version strings are canonicalized to
// the 4-component form before storing, so duplicates are detected on
// semantic equality ("1.2" collides with "1.2.0.0"). Returns
// version.ErrInvalidFormat for malformed versions and
// ErrDuplicateVersion when the canonical version is already published.
func (s *Store) Create(in CreateInput) (*models.Release, error) {
	canonical, err := version.Canonicalize(in.Version)
	if err != nil {
		return nil, err
	}
	minRequired := in.MinRequiredVersion
	if minRequired == "" {
		minRequired = "1.0.0.0"
	}
	minCanonical, err := version.Canonicalize(minRequired)
	if err != nil {
		return nil, err
	}
	updateType := in.UpdateType
	if updateType == "" {
		updateType = models.UpdateTypeOptional
	}
	if updateType != models.UpdateTypeOptional && updateType != models.UpdateTypeMandatory {
		return nil, fmt.Errorf("unknown update type %q", in.UpdateType)
	}

	rel := models.Release{
		Version:            canonical,
		ReleaseDate:        time.Now().UTC(),
		ReleaseNotes:       in.ReleaseNotes,
		DownloadURL:        in.DownloadURL,
		FileSize:           in.FileSize,
		ChecksumSHA256:     in.ChecksumSHA256,
		UpdateType:         updateType,
		ForceUpdate:        in.ForceUpdate,
		MinRequiredVersion: minCanonical,
		IsActive:           true,
	}
	// Uniqueness is enforced by the index on the canonical version, so
	// concurrent creates of the same version cannot race past a probe.
	if err := s.db.Create(&rel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVersion, canonical)
		}
		return nil, fmt.Errorf("registry create: %w", err)
	}
	return &rel, nil
}

// LatestActive returns the active release with the most recent release
// date, or (nil, nil) when nothing is published. Release date, not the
// numerically highest version, defines "latest" on purpose: republishing
// an older version line makes it the current offer.
func (s *Store) LatestActive() (*models.Release, error) {
	var rel models.Release
	err := s.db.Where("is_active = ?", true).Order("release_date desc").First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry latest: %w", err)
	}
	return &rel, nil
}

// ListAll returns every release, newest release date first.
func (s *Store) ListAll() ([]models.Release, error) {
	var releases []models.Release
	if err := s.db.Order("release_date desc").Find(&releases).Error; err != nil {
		return nil, fmt.Errorf("registry list: %w", err)
	}
	return releases, nil
}

// Deactivate soft-deletes a release by flipping its active flag.
func (s *Store) Deactivate(id uint) (*models.Release, error) {
	rel, err := s.byID(id)
	if err != nil {
		return nil, err
	}
	rel.IsActive = false
	if err := s.db.Save(rel).Error; err != nil {
		return nil, fmt.Errorf("registry deactivate: %w", err)
	}
	return rel, nil
}

// Delete permanently removes a release record.
func (s *Store) Delete(id uint) (*models.Release, error) {
	rel, err := s.byID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(rel).Error; err != nil {
		return nil, fmt.Errorf("registry delete: %w", err)
	}
	return rel, nil
}

func (s *Store) byID(id uint) (*models.Release, error) {
	var rel models.Release
	err := s.db.First(&rel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}
	return &rel, nil
}
