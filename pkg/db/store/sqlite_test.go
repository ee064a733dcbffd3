package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mwantia/tierd/pkg/db/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "tierd.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() returned error: %v", err)
	}
	return s
}

func newDisk(url string, tier *models.Tier) *models.Disk {
	return &models.Disk{
		URL:    url,
		Name:   filepath.Base(url),
		Type:   models.External(models.ExternalUSB),
		TierID: &tier.ID,
	}
}

func TestMigrateSeedsCanonicalTiers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tiers, err := s.ListTiers(ctx)
	if err != nil {
		t.Fatalf("ListTiers() returned error: %v", err)
	}
	if len(tiers) != 2 || tiers[0].Level != 1 || tiers[1].Level != 2 {
		t.Fatalf("expected canonical tiers 1 and 2, got %+v", tiers)
	}

	// Running migrations again must not duplicate anything.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() returned error: %v", err)
	}
	tiers, _ = s.ListTiers(ctx)
	if len(tiers) != 2 {
		t.Errorf("expected 2 tiers after second migrate, got %d", len(tiers))
	}

	statuses, err := s.Migrations().Status(ctx)
	if err != nil {
		t.Fatalf("Status() returned error: %v", err)
	}
	for _, status := range statuses {
		if !status.Applied {
			t.Errorf("migration %d not applied", status.Version)
		}
	}
}

func TestEnsureTier(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	primary, err := s.EnsureTier(ctx, models.TierPrimary, "Local")
	if err != nil {
		t.Fatalf("EnsureTier() returned error: %v", err)
	}
	if primary.Name == nil || *primary.Name != "Local" {
		t.Errorf("expected tier to be renamed to Local, got %v", primary.Name)
	}

	again, err := s.EnsureTier(ctx, models.TierPrimary, "")
	if err != nil {
		t.Fatalf("EnsureTier() returned error: %v", err)
	}
	if again.ID != primary.ID {
		t.Errorf("expected same tier id, got %s and %s", primary.ID, again.ID)
	}

	cloud, err := s.EnsureTier(ctx, 3, "Cloud")
	if err != nil {
		t.Fatalf("EnsureTier(3) returned error: %v", err)
	}
	if cloud.ID == "" || cloud.Level != 3 {
		t.Errorf("unexpected tier: %+v", cloud)
	}

	tiers, _ := s.ListTiers(ctx)
	if len(tiers) != 3 {
		t.Errorf("expected 3 tiers, got %d", len(tiers))
	}
}

func TestCreateTierRejectsDuplicateLevel(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateTier(context.Background(), &models.Tier{Level: models.TierPrimary}); err == nil {
		t.Error("expected unique constraint violation on tier level")
	}
}

func TestCreateDiskRejectsDuplicateURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tier, _ := s.GetTierByLevel(ctx, models.TierSecondary)

	first := newDisk("/Volumes/Backup", tier)
	if err := s.CreateDisk(ctx, first); err != nil {
		t.Fatalf("CreateDisk() returned error: %v", err)
	}
	if first.ID == "" {
		t.Error("expected generated disk id")
	}

	if err := s.CreateDisk(ctx, newDisk("/Volumes/Backup", tier)); err == nil {
		t.Error("expected unique constraint violation on disk url")
	}

	urls, err := s.ListDiskURLs(ctx)
	if err != nil {
		t.Fatalf("ListDiskURLs() returned error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "/Volumes/Backup" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestDeleteTierCascadesToDisks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	primary, _ := s.GetTierByLevel(ctx, models.TierPrimary)
	secondary, _ := s.GetTierByLevel(ctx, models.TierSecondary)

	if err := s.CreateDisk(ctx, newDisk("/", primary)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateDisk(ctx, newDisk("/Volumes/Backup", secondary)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateDisk(ctx, newDisk("/Volumes/Photos", secondary)); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTier(ctx, secondary.ID); err != nil {
		t.Fatalf("DeleteTier() returned error: %v", err)
	}

	disks, _ := s.ListDisks(ctx)
	if len(disks) != 1 || disks[0].URL != "/" {
		t.Errorf("expected only root disk to remain, got %+v", disks)
	}

	if err := s.DeleteTier(ctx, secondary.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted tier, got %v", err)
	}
}

func TestDeleteDiskKeepsTier(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secondary, _ := s.GetTierByLevel(ctx, models.TierSecondary)
	disk := newDisk("/Volumes/Backup", secondary)
	if err := s.CreateDisk(ctx, disk); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDisk(ctx, disk.ID); err != nil {
		t.Fatalf("DeleteDisk() returned error: %v", err)
	}

	tier, err := s.GetTier(ctx, secondary.ID)
	if err != nil {
		t.Fatalf("expected tier to survive, got %v", err)
	}
	if len(tier.Disks) != 0 {
		t.Errorf("expected no member disks, got %d", len(tier.Disks))
	}

	if _, err := s.GetDisk(ctx, disk.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteDisk(ctx, disk.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMoveDisk(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	primary, _ := s.GetTierByLevel(ctx, models.TierPrimary)
	secondary, _ := s.GetTierByLevel(ctx, models.TierSecondary)

	disk := newDisk("/Volumes/Fast", secondary)
	if err := s.CreateDisk(ctx, disk); err != nil {
		t.Fatal(err)
	}

	if err := s.MoveDisk(ctx, disk.ID, &primary.ID); err != nil {
		t.Fatalf("MoveDisk() returned error: %v", err)
	}
	moved, _ := s.GetDisk(ctx, disk.ID)
	if moved.TierID == nil || *moved.TierID != primary.ID {
		t.Errorf("expected disk in primary tier, got %v", moved.TierID)
	}

	missing := "does-not-exist"
	if err := s.MoveDisk(ctx, disk.ID, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown tier, got %v", err)
	}

	if err := s.MoveDisk(ctx, disk.ID, nil); err != nil {
		t.Fatalf("MoveDisk(nil) returned error: %v", err)
	}
	detached, _ := s.GetDisk(ctx, disk.ID)
	if detached.TierID != nil {
		t.Errorf("expected detached disk, got tier %s", *detached.TierID)
	}
}

func TestUpdateDiskCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secondary, _ := s.GetTierByLevel(ctx, models.TierSecondary)
	disk := newDisk("/Volumes/NAS", secondary)
	if err := s.CreateDisk(ctx, disk); err != nil {
		t.Fatal(err)
	}

	port := 22
	creds := models.SFTPCredentials(models.SFTPConfig{Host: "nas.local", Username: "u", Password: "p", Port: &port})
	if err := s.UpdateDiskCredentials(ctx, disk.ID, creds); err != nil {
		t.Fatalf("UpdateDiskCredentials() returned error: %v", err)
	}

	stored, _ := s.GetDiskByURL(ctx, "/Volumes/NAS")
	if stored.Credentials == nil || stored.Credentials.Kind != models.CredentialSFTP {
		t.Fatalf("expected sftp credentials, got %+v", stored.Credentials)
	}
	if stored.Credentials.SFTP.Host != "nas.local" || *stored.Credentials.SFTP.Port != 22 {
		t.Errorf("unexpected sftp config: %+v", stored.Credentials.SFTP)
	}

	if err := s.UpdateDiskCredentials(ctx, disk.ID, nil); err != nil {
		t.Fatalf("clearing credentials returned error: %v", err)
	}
	cleared, _ := s.GetDisk(ctx, disk.ID)
	if cleared.Credentials != nil {
		t.Errorf("expected cleared credentials, got %+v", cleared.Credentials)
	}
}

func TestTransactionSavepointIsolatesFailures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secondary, _ := s.GetTierByLevel(ctx, models.TierSecondary)

	err := s.Transaction(ctx, func(tx MetadataStore) error {
		for _, url := range []string{"/Volumes/A", "/Volumes/A", "/Volumes/B"} {
			disk := newDisk(url, secondary)
			_ = tx.Transaction(ctx, func(inner MetadataStore) error {
				return inner.CreateDisk(ctx, disk)
			})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction() returned error: %v", err)
	}

	urls, _ := s.ListDiskURLs(ctx)
	if len(urls) != 2 {
		t.Errorf("expected 2 committed disks, got %v", urls)
	}
}

func TestStoredStorageTypeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secondary, _ := s.GetTierByLevel(ctx, models.TierSecondary)
	disk := newDisk("/Volumes/Cloud", secondary)
	disk.Type = models.Cloud(models.CloudDropbox)
	if err := s.CreateDisk(ctx, disk); err != nil {
		t.Fatal(err)
	}

	stored, _ := s.GetDisk(ctx, disk.ID)
	if stored.Type != models.Cloud(models.CloudDropbox) {
		t.Errorf("expected cloud(dropbox), got %s", stored.Type)
	}

	var kind, subtype string
	row := s.DB().Raw("SELECT type_kind, type_subtype FROM disks WHERE id = ?", disk.ID).Row()
	if err := row.Scan(&kind, &subtype); err != nil {
		t.Fatalf("failed to read raw columns: %v", err)
	}
	if kind != "cloud" || subtype != "dropbox" {
		t.Errorf("unexpected raw columns: %s/%s", kind, subtype)
	}
}
