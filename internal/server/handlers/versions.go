package handlers

import (
	"errors"
	"log"
	"math"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"updateserver/internal/models"
	"updateserver/internal/registry"
	"updateserver/internal/utils"
	"updateserver/internal/version"
)

type versionResponse struct {
	ID                 uint   `json:"id"`
	Version            string `json:"version"`
	ReleaseDate        string `json:"release_date"`
	ReleaseNotes       string `json:"release_notes"`
	DownloadURL        string `json:"download_url"`
	FileSize           int64  `json:"file_size"`
	ChecksumSHA256     string `json:"checksum_sha256"`
	UpdateType         string `json:"update_type"`
	ForceUpdate        bool   `json:"force_update"`
	MinRequiredVersion string `json:"min_required_version"`
	IsActive           bool   `json:"is_active"`
	CreatedAt          string `json:"created_at"`
}

func toVersionResponse(rel models.Release) versionResponse {
	return versionResponse{
		ID:                 rel.ID,
		Version:            rel.Version,
		ReleaseDate:        rel.ReleaseDate.UTC().Format(time.RFC3339),
		ReleaseNotes:       rel.ReleaseNotes,
		DownloadURL:        rel.DownloadURL,
		FileSize:           rel.FileSize,
		ChecksumSHA256:     rel.ChecksumSHA256,
		UpdateType:         rel.UpdateType,
		ForceUpdate:        rel.ForceUpdate,
		MinRequiredVersion: rel.MinRequiredVersion,
		IsActive:           rel.IsActive,
		CreatedAt:          rel.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListVersions returns every release, newest first.
func ListVersions(c *fiber.Ctx) error {
	releases, err := reg.ListAll()
	if err != nil {
		log.Printf("list versions: %v", err)
		return fiber.ErrInternalServerError
	}
	out := make([]versionResponse, 0, len(releases))
	for _, rel := range releases {
		out = append(out, toVersionResponse(rel))
	}
	return c.JSON(out)
}

// CreateVersion publishes a new release.
func CreateVersion(c *fiber.Ctx) error {
	var in registry.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if in.Version == "" {
		return fiber.NewError(fiber.StatusBadRequest, "version required")
	}
	rel, err := reg.Create(in)
	switch {
	case errors.Is(err, registry.ErrDuplicateVersion):
		return fiber.NewError(fiber.StatusBadRequest, "version "+in.Version+" already exists")
	case errors.Is(err, version.ErrInvalidFormat):
		return fiber.NewError(fiber.StatusBadRequest, "invalid version format")
	case err != nil:
		log.Printf("create version: %v", err)
		return fiber.ErrInternalServerError
	}
	return c.JSON(toVersionResponse(*rel))
}

// DeactivateVersion flips a release's active flag.
func DeactivateVersion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid version id")
	}
	rel, err := reg.Deactivate(uint(id))
	if errors.Is(err, registry.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "version not found")
	}
	if err != nil {
		log.Printf("deactivate version: %v", err)
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"status": "deactivated", "version": rel.Version})
}

// DeleteVersion permanently removes a release record.
func DeleteVersion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid version id")
	}
	rel, err := reg.Delete(uint(id))
	if errors.Is(err, registry.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "version not found")
	}
	if err != nil {
		log.Printf("delete version: %v", err)
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"status": "deleted", "version": rel.Version})
}

// Statistics returns the aggregated usage summary.
func Statistics(c *fiber.Ctx) error {
	sum, err := usage.Summarize()
	if err != nil {
		log.Printf("statistics: %v", err)
		return fiber.ErrInternalServerError
	}
	return c.JSON(sum)
}

// CalculateChecksum hashes a server-local file; utility for admins
// preparing a release record.
func CalculateChecksum(c *fiber.Ctx) error {
	var in struct {
		FilePath string `json:"file_path"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if in.FilePath == "" {
		return fiber.NewError(fiber.StatusBadRequest, "file_path required")
	}
	sum, size, err := utils.FileSHA256(in.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return fiber.NewError(fiber.StatusNotFound, "file not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "checksum failed")
	}
	return c.JSON(fiber.Map{
		"file_path":       in.FilePath,
		"checksum_sha256": sum,
		"file_size_bytes": size,
		"file_size_mb":    math.Round(float64(size)/(1024*1024)*100) / 100,
	})
}
