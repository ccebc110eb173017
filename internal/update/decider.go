package update

import (
	"time"

	"updateserver/internal/models"
	"updateserver/internal/version"
)

// Fixed notification texts returned to clients.
const (
	MsgNoRelease  = "No release has been published yet"
	MsgMandatory  = "MANDATORY UPDATE - your version is no longer supported"
	MsgNewVersion = "A new version is available! Update for the best experience"
	MsgUpToDate   = "You are running the latest version"
)

// Decision is the full answer to an update check.
type Decision struct {
	UpdateAvailable        bool
	LatestVersion          string
	MinimumRequiredVersion string
	ReleaseDate            time.Time
	ReleaseNotes           string
	DownloadURL            string
	FileSize               int64
	ChecksumSHA256         string
	UpdateType             string
	ForceUpdate            bool
	NotificationMessage    string
}

// Decide compares a client's reported version against the latest active
// release. A nil release means nothing has been published: the client's
// own version is echoed back as latest. When the client's version falls
// below the release's minimum required version the stored update type is
// overridden to mandatory.
//
// Returns version.ErrInvalidFormat (wrapped) when currentVersion does not
// parse; registry canonicalization guarantees stored versions always do.
func Decide(currentVersion string, latest *models.Release) (Decision, error) {
	if latest == nil {
		return Decision{
			UpdateAvailable:        false,
			LatestVersion:          currentVersion,
			MinimumRequiredVersion: currentVersion,
			ReleaseDate:            time.Now().UTC(),
			ReleaseNotes:           MsgNoRelease,
			UpdateType:             models.UpdateTypeOptional,
			NotificationMessage:    MsgNoRelease,
		}, nil
	}

	current, err := version.Parse(currentVersion)
	if err != nil {
		return Decision{}, err
	}
	latestVer, err := version.Parse(latest.Version)
	if err != nil {
		return Decision{}, err
	}
	minRequired, err := version.Parse(latest.MinRequiredVersion)
	if err != nil {
		return Decision{}, err
	}

	updateAvailable := current.Less(latestVer)
	forceUpdate := current.Less(minRequired)

	updateType := latest.UpdateType
	if forceUpdate {
		updateType = models.UpdateTypeMandatory
	}

	var msg string
	switch {
	case forceUpdate:
		msg = MsgMandatory
	case updateAvailable:
		msg = MsgNewVersion
	default:
		msg = MsgUpToDate
	}

	return Decision{
		UpdateAvailable:        updateAvailable,
		LatestVersion:          latest.Version,
		MinimumRequiredVersion: latest.MinRequiredVersion,
		ReleaseDate:            latest.ReleaseDate,
		ReleaseNotes:           latest.ReleaseNotes,
		DownloadURL:            latest.DownloadURL,
		FileSize:               latest.FileSize,
		ChecksumSHA256:         latest.ChecksumSHA256,
		UpdateType:             updateType,
		ForceUpdate:            forceUpdate,
		NotificationMessage:    msg,
	}, nil
}

// TargetVersion returns the version a check event should record as its
// target: the latest version when an update is offered, empty otherwise.
func (d Decision) TargetVersion() string {
	if d.UpdateAvailable {
		return d.LatestVersion
	}
	return ""
}
