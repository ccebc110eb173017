package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"updateserver/internal/models"
	"updateserver/internal/version"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// single connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Release{}, &models.UsageEvent{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateCanonicalizesVersion(t *testing.T) {
	s := New(openTestDB(t))
	rel, err := s.Create(CreateInput{Version: "v1.2", DownloadURL: "https://dl/x.msi"})
	if err != nil {
		t.Fatal(err)
	}
	if rel.Version != "1.2.0.0" {
		t.Errorf("stored version = %q, want canonical 1.2.0.0", rel.Version)
	}
	if rel.MinRequiredVersion != "1.0.0.0" {
		t.Errorf("min required = %q, want default 1.0.0.0", rel.MinRequiredVersion)
	}
	if !rel.IsActive {
		t.Error("new release should be active")
	}
}

func TestCreateDuplicateAcrossForms(t *testing.T) {
	s := New(openTestDB(t))
	if _, err := s.Create(CreateInput{Version: "1.2", DownloadURL: "https://dl/x.msi"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(CreateInput{Version: "v1.2.0.0", DownloadURL: "https://dl/x.msi"})
	if !errors.Is(err, ErrDuplicateVersion) {
		t.Errorf("err = %v, want ErrDuplicateVersion", err)
	}
}

func TestCreateDuplicateSurfacesFromUniqueIndex(t *testing.T) {
	s := New(openTestDB(t))
	// a competing writer that won the race: the row exists without
	// Create ever having seen it
	rel := models.Release{
		Version:            "2.0.0.0",
		ReleaseDate:        time.Now().UTC(),
		MinRequiredVersion: "1.0.0.0",
		IsActive:           true,
	}
	if err := s.db.Create(&rel).Error; err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(CreateInput{Version: "v2.0", DownloadURL: "https://dl/x.msi"})
	if !errors.Is(err, ErrDuplicateVersion) {
		t.Errorf("err = %v, want ErrDuplicateVersion from the unique index", err)
	}
}

func TestCreateRejectsMalformedVersions(t *testing.T) {
	s := New(openTestDB(t))
	if _, err := s.Create(CreateInput{Version: "1.x"}); !errors.Is(err, version.ErrInvalidFormat) {
		t.Errorf("version err = %v, want ErrInvalidFormat", err)
	}
	if _, err := s.Create(CreateInput{Version: "1.0", MinRequiredVersion: "nope"}); !errors.Is(err, version.ErrInvalidFormat) {
		t.Errorf("min required err = %v, want ErrInvalidFormat", err)
	}
	if _, err := s.Create(CreateInput{Version: "1.0", UpdateType: "urgent"}); err == nil {
		t.Error("unknown update type should be rejected")
	}
}

func TestLatestActiveByReleaseDate(t *testing.T) {
	s := New(openTestDB(t))

	older, err := s.Create(CreateInput{Version: "3.0.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	newer, err := s.Create(CreateInput{Version: "2.5.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	// 2.5 republished after 3.0: a later release date wins even though
	// the version number is lower
	s.db.Model(older).Update("release_date", time.Now().UTC().Add(-48*time.Hour))
	s.db.Model(newer).Update("release_date", time.Now().UTC())

	latest, err := s.LatestActive()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.Version != "2.5.0.0" {
		t.Fatalf("latest = %+v, want 2.5.0.0 (most recent release date)", latest)
	}
}

func TestLatestActiveSkipsDeactivated(t *testing.T) {
	s := New(openTestDB(t))
	rel, err := s.Create(CreateInput{Version: "1.0.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Deactivate(rel.ID); err != nil {
		t.Fatal(err)
	}
	latest, err := s.LatestActive()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil after deactivating the only release", latest)
	}
}

func TestLatestActiveEmptyRegistry(t *testing.T) {
	s := New(openTestDB(t))
	latest, err := s.LatestActive()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil", latest)
	}
}

func TestListAllNewestFirst(t *testing.T) {
	s := New(openTestDB(t))
	a, _ := s.Create(CreateInput{Version: "1.0.0.0"})
	b, _ := s.Create(CreateInput{Version: "1.1.0.0"})
	s.db.Model(a).Update("release_date", time.Now().UTC().Add(-time.Hour))
	s.db.Model(b).Update("release_date", time.Now().UTC())

	all, err := s.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Version != "1.1.0.0" || all[1].Version != "1.0.0.0" {
		t.Errorf("order = [%s %s], want newest first", all[0].Version, all[1].Version)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := New(openTestDB(t))
	rel, err := s.Create(CreateInput{Version: "1.0.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Delete(rel.ID); err != nil {
		t.Fatal(err)
	}
	all, err := s.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("len = %d, want 0 after delete", len(all))
	}
}

func TestDeactivateAndDeleteUnknownID(t *testing.T) {
	s := New(openTestDB(t))
	if _, err := s.Deactivate(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("deactivate err = %v, want ErrNotFound", err)
	}
	if _, err := s.Delete(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete err = %v, want ErrNotFound", err)
	}
}
