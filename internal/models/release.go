package models

import "time"

const (
	UpdateTypeOptional  = "optional"
	UpdateTypeMandatory = "mandatory"
)

// Release represents a published add-in version (metadata only; the
// installer itself is hosted at DownloadURL). Immutable once published
// except for the IsActive flag.
type Release struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Version            string    `gorm:"size:64;uniqueIndex;not null"` // canonical 4-component form
	ReleaseDate        time.Time `gorm:"index;not null"`
	ReleaseNotes       string    `gorm:"type:text"`
	DownloadURL        string    `gorm:"size:512;not null"`
	FileSize           int64     `gorm:"not null"`
	ChecksumSHA256     string    `gorm:"size:64"`
	UpdateType         string    `gorm:"size:16;default:optional"`
	ForceUpdate        bool      `gorm:"default:false"`
	MinRequiredVersion string    `gorm:"size:64;not null"`
	IsActive           bool      `gorm:"default:true;index"`
}

const (
	ActionCheck    = "check"
	ActionDownload = "download"
	ActionInstall  = "install"

	StatusSuccess = "success"
	StatusStarted = "started"
	StatusFailed  = "failed"
)

// UsageEvent is one append-only audit record of a client interaction.
// Never updated or deleted.
type UsageEvent struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	MachineHash    string `gorm:"size:128;index"`
	CurrentVersion string `gorm:"size:64;index"`
	TargetVersion  string `gorm:"size:64"`
	RevitVersion   string `gorm:"size:32"`
	OSVersion      string `gorm:"size:128"`
	Action         string `gorm:"size:16;index;not null"`
	Status         string `gorm:"size:16;index;not null"`
	ErrorMessage   string `gorm:"type:text"`
}
