package stats

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"updateserver/internal/models"
)

// Store appends and aggregates usage events. Writes are single-row
// inserts against an append-only table; callers on the check path treat
// failures as best-effort (log and move on) so statistics can never
// abort a client response.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends one usage event.
func (s *Store) Record(ev models.UsageEvent) error {
	if err := s.db.Create(&ev).Error; err != nil {
		return fmt.Errorf("stats record: %w", err)
	}
	return nil
}

// Summary aggregates the usage log for the admin statistics endpoint.
type Summary struct {
	TotalChecks         int64            `json:"total_checks"`
	TotalDownloads      int64            `json:"total_downloads"`
	TotalInstalls       int64            `json:"total_installs"`
	SuccessInstalls     int64            `json:"success_installs"`
	SuccessRate         float64          `json:"success_rate"`
	VersionDistribution map[string]int64 `json:"version_distribution"`
}

// Summarize computes event totals, the install success rate (0 when no
// installs, else a percentage rounded to two decimals) and the
// distribution of reported versions among check events.
func (s *Store) Summarize() (Summary, error) {
	sum := Summary{VersionDistribution: map[string]int64{}}

	counts := []struct {
		action string
		status string
		dest   *int64
	}{
		{models.ActionCheck, "", &sum.TotalChecks},
		{models.ActionDownload, "", &sum.TotalDownloads},
		{models.ActionInstall, "", &sum.TotalInstalls},
		{models.ActionInstall, models.StatusSuccess, &sum.SuccessInstalls},
	}
	for _, c := range counts {
		q := s.db.Model(&models.UsageEvent{}).Where("action = ?", c.action)
		if c.status != "" {
			q = q.Where("status = ?", c.status)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return Summary{}, fmt.Errorf("stats count %s: %w", c.action, err)
		}
	}

	if sum.TotalInstalls > 0 {
		rate := 100 * float64(sum.SuccessInstalls) / float64(sum.TotalInstalls)
		sum.SuccessRate = math.Round(rate*100) / 100
	}

	var rows []struct {
		CurrentVersion string
		Count          int64
	}
	err := s.db.Model(&models.UsageEvent{}).
		Select("current_version, count(*) as count").
		Where("action = ? AND current_version <> ''", models.ActionCheck).
		Group("current_version").
		Scan(&rows).Error
	if err != nil {
		return Summary{}, fmt.Errorf("stats distribution: %w", err)
	}
	for _, r := range rows {
		sum.VersionDistribution[r.CurrentVersion] = r.Count
	}
	return sum, nil
}
