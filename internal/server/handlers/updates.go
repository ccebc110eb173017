package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"updateserver/internal/metrics"
	"updateserver/internal/models"
	"updateserver/internal/update"
	"updateserver/internal/version"
)

type checkRequest struct {
	Product        string `json:"product"`
	CurrentVersion string `json:"currentVersion"`
	RevitVersion   string `json:"revitVersion"`
	MachineHash    string `json:"machineHash"`
	OS             string `json:"os"`
}

// checkResponse is the explicit wire mapping for the desktop client;
// field names follow the published client contract.
type checkResponse struct {
	UpdateAvailable        bool   `json:"updateAvailable"`
	LatestVersion          string `json:"latestVersion"`
	MinimumRequiredVersion string `json:"minimumRequiredVersion"`
	ReleaseDate            string `json:"releaseDate"`
	ReleaseNotes           string `json:"releaseNotes"`
	DownloadURL            string `json:"downloadUrl"`
	FileSize               int64  `json:"fileSize"`
	ChecksumSHA256         string `json:"checksumSHA256"`
	UpdateType             string `json:"updateType"`
	ForceUpdate            bool   `json:"forceUpdate"`
	NotificationMessage    string `json:"notificationMessage"`
}

// CheckUpdate answers whether a newer release exists for the reported
// version. The usage log write is best-effort: a statistics failure is
// logged and never fails the response.
func CheckUpdate(c *fiber.Ctx) error {
	var in checkRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if in.CurrentVersion == "" {
		return fiber.NewError(fiber.StatusBadRequest, "currentVersion required")
	}

	latest, err := reg.LatestActive()
	if err != nil {
		log.Printf("update check: %v", err)
		return fiber.ErrInternalServerError
	}

	decision, err := update.Decide(in.CurrentVersion, latest)
	if errors.Is(err, version.ErrInvalidFormat) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid version format: "+in.CurrentVersion)
	}
	if err != nil {
		log.Printf("update check: %v", err)
		return fiber.ErrInternalServerError
	}

	if err := usage.Record(models.UsageEvent{
		MachineHash:    in.MachineHash,
		CurrentVersion: in.CurrentVersion,
		TargetVersion:  decision.TargetVersion(),
		RevitVersion:   in.RevitVersion,
		OSVersion:      in.OS,
		Action:         models.ActionCheck,
		Status:         models.StatusSuccess,
	}); err != nil {
		log.Printf("usage log: %v", err)
	}
	switch {
	case decision.ForceUpdate:
		metrics.RecordCheck("forced")
	case decision.UpdateAvailable:
		metrics.RecordCheck("update_available")
	default:
		metrics.RecordCheck("up_to_date")
	}

	return c.JSON(checkResponse{
		UpdateAvailable:        decision.UpdateAvailable,
		LatestVersion:          decision.LatestVersion,
		MinimumRequiredVersion: decision.MinimumRequiredVersion,
		ReleaseDate:            decision.ReleaseDate.UTC().Format(time.RFC3339),
		ReleaseNotes:           decision.ReleaseNotes,
		DownloadURL:            decision.DownloadURL,
		FileSize:               decision.FileSize,
		ChecksumSHA256:         decision.ChecksumSHA256,
		UpdateType:             decision.UpdateType,
		ForceUpdate:            decision.ForceUpdate,
		NotificationMessage:    decision.NotificationMessage,
	})
}

// DownloadStats logs that a client started downloading an update.
func DownloadStats(c *fiber.Ctx) error {
	var in struct {
		Version     string `json:"version"`
		MachineHash string `json:"machineHash"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if err := usage.Record(models.UsageEvent{
		MachineHash:   in.MachineHash,
		TargetVersion: in.Version,
		Action:        models.ActionDownload,
		Status:        models.StatusStarted,
	}); err != nil {
		log.Printf("usage log: %v", err)
		return fiber.ErrInternalServerError
	}
	metrics.RecordDownload()
	return c.JSON(fiber.Map{"status": "logged"})
}

// InstallStats logs the result of an install attempt.
func InstallStats(c *fiber.Ctx) error {
	var in struct {
		Version      string `json:"version"`
		MachineHash  string `json:"machineHash"`
		Success      bool   `json:"success"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	status := models.StatusFailed
	if in.Success {
		status = models.StatusSuccess
	}
	if err := usage.Record(models.UsageEvent{
		MachineHash:   in.MachineHash,
		TargetVersion: in.Version,
		Action:        models.ActionInstall,
		Status:        status,
		ErrorMessage:  in.ErrorMessage,
	}); err != nil {
		log.Printf("usage log: %v", err)
		return fiber.ErrInternalServerError
	}
	metrics.RecordInstall(status)
	return c.JSON(fiber.Map{"status": "logged"})
}

// Health reports service liveness and the latest known release. A
// registry failure answers 503 degraded rather than pretending to be
// healthy.
func Health(c *fiber.Ctx) error {
	latest, err := reg.LatestActive()
	if err != nil {
		log.Printf("health: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "degraded",
			"service": "SimpleBIM Update Service",
			"version": "1.0.0",
		})
	}
	var latestKnown interface{}
	if latest != nil {
		latestKnown = latest.Version
	}
	return c.JSON(fiber.Map{
		"status":               "healthy",
		"service":              "SimpleBIM Update Service",
		"version":              "1.0.0",
		"latest_version_known": latestKnown,
	})
}
