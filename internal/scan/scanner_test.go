package scan

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	config "github.com/mwantia/tierd/internal/config/server"
	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/db/models"
	"github.com/mwantia/tierd/pkg/db/store"
	"github.com/mwantia/tierd/pkg/log"
)

const testVolumes = `
volumes:
  - name: Macintosh HD
    path: /
    available_capacity: 100000000000
    total_capacity: 500000000000
    type_name: apfs
    local: true
    removable: false
    ejectable: false
    root_filesystem: true
  - name: Backup
    path: /Volumes/Backup
    available_capacity: 50000000000
    total_capacity: 250000000000
    type_name: USB External
    local: true
    removable: true
    ejectable: true
    root_filesystem: false
  - name: Preboot
    path: /System/Volumes/Preboot
    available_capacity: 1000
    total_capacity: 2000
    local: true
  - name: Installer.dmg
    path: /Volumes/Installer
    available_capacity: 1000
    total_capacity: 2000
    local: true
  - path: /Volumes/Broken
    error: permission denied
`

type staticSource struct {
	entries []volume.Entry
	err     error
}

func (s *staticSource) Enumerate(ctx context.Context) ([]volume.Entry, error) {
	return s.entries, s.err
}

func parseSource(t *testing.T, data string) *staticSource {
	t.Helper()

	entries, err := volume.ParseDescriptors([]byte(data))
	if err != nil {
		t.Fatalf("ParseDescriptors() returned error: %v", err)
	}
	return &staticSource{entries: entries}
}

func newTestStore(t *testing.T) store.MetadataStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "tierd.db")})
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

func newTestScanner(source volume.Source, st store.MetadataStore) *Scanner {
	defaults := config.GetServerDefault()
	logger := log.NewLoggerServiceWithWriter("scanner", defaults.Log, io.Discard)

	return NewScanner(source, st, volume.NewFilter(defaults.Scan), defaults.Tiers, logger)
}

func TestScanAssignsVolumesToTiers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	report, err := newTestScanner(parseSource(t, testVolumes), st).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}

	if report.Enumerated != 5 {
		t.Errorf("Enumerated = %d, expected 5", report.Enumerated)
	}
	if len(report.Added) != 2 {
		t.Fatalf("expected 2 added disks, got %+v", report.Added)
	}
	if len(report.Excluded) != 2 {
		t.Errorf("expected 2 excluded volumes, got %+v", report.Excluded)
	}
	if len(report.Failures) != 1 {
		t.Errorf("expected 1 failure, got %v", report.Failures)
	}
	var rve *ResourceValueError
	if !errors.As(report.Failures[0], &rve) || rve.MountPoint != "/Volumes/Broken" {
		t.Errorf("expected ResourceValueError for /Volumes/Broken, got %v", report.Failures[0])
	}

	root, err := st.GetDiskByURL(ctx, "/")
	if err != nil {
		t.Fatalf("GetDiskByURL(/) returned error: %v", err)
	}
	if root.Type != models.Local() {
		t.Errorf("root type = %s, expected local", root.Type)
	}

	backup, err := st.GetDiskByURL(ctx, "/Volumes/Backup")
	if err != nil {
		t.Fatalf("GetDiskByURL(/Volumes/Backup) returned error: %v", err)
	}
	if backup.Type != models.External(models.ExternalUSB) {
		t.Errorf("backup type = %s, expected external(usb)", backup.Type)
	}
	if backup.UsedCapacity != 200_000_000_000 {
		t.Errorf("backup used = %d, expected 200000000000", backup.UsedCapacity)
	}
	if got := backup.FormattedPercentageUsed(); got != "80.0%" {
		t.Errorf("backup percentage = %s, expected 80.0%%", got)
	}

	primary, _ := st.GetTierByLevel(ctx, models.TierPrimary)
	secondary, _ := st.GetTierByLevel(ctx, models.TierSecondary)
	if root.TierID == nil || *root.TierID != primary.ID {
		t.Error("root disk should belong to tier 1")
	}
	if backup.TierID == nil || *backup.TierID != secondary.ID {
		t.Error("backup disk should belong to tier 2")
	}
	if primary.DisplayName() != "Local" || secondary.DisplayName() != "Attached" {
		t.Errorf("unexpected tier names: %s, %s", primary.DisplayName(), secondary.DisplayName())
	}
}

func TestScanIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	scanner := newTestScanner(parseSource(t, testVolumes), st)

	if _, err := scanner.Scan(ctx); err != nil {
		t.Fatalf("first Scan() returned error: %v", err)
	}
	before, _ := st.ListDisks(ctx)

	report, err := scanner.Scan(ctx)
	if err != nil {
		t.Fatalf("second Scan() returned error: %v", err)
	}
	if len(report.Added) != 0 {
		t.Errorf("expected nothing added on rescan, got %+v", report.Added)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("expected 2 skipped disks on rescan, got %v", report.Skipped)
	}

	after, _ := st.ListDisks(ctx)
	if len(after) != len(before) {
		t.Errorf("disk count changed from %d to %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("disk %s changed id on rescan", before[i].URL)
		}
	}
}

func TestScanKeepsEachDiskInOneTier(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	source := parseSource(t, `
volumes:
  - name: Backup
    path: /Volumes/Backup
    available_capacity: 10
    total_capacity: 20
    local: true
    removable: true
  - name: Backup
    path: /Volumes/Backup
    available_capacity: 10
    total_capacity: 20
    local: true
    root_filesystem: true
`)

	report, err := newTestScanner(source, st).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(report.Added) != 1 || report.Added[0].Level != models.TierSecondary {
		t.Errorf("expected single disk in tier 2, got %+v", report.Added)
	}

	tiers, _ := st.ListTiers(ctx)
	members := 0
	for _, tier := range tiers {
		for _, disk := range tier.Disks {
			if disk.URL == "/Volumes/Backup" {
				members++
			}
		}
	}
	if members != 1 {
		t.Errorf("expected disk to belong to exactly one tier, found %d", members)
	}
}

func TestScanEnumerationErrorWritesNothing(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	cause := errors.New("mount table unavailable")

	_, err := newTestScanner(&staticSource{err: cause}, st).Scan(ctx)
	if !errors.Is(err, ErrEnumeration) {
		t.Fatalf("expected ErrEnumeration, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}

	disks, _ := st.ListDisks(ctx)
	if len(disks) != 0 {
		t.Errorf("expected no disks, got %d", len(disks))
	}
}

func TestScanCancelledContext(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestScanner(parseSource(t, testVolumes), st).Scan(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	disks, _ := st.ListDisks(context.Background())
	if len(disks) != 0 {
		t.Errorf("expected no disks after cancelled scan, got %d", len(disks))
	}
}

func TestScanDefaultsMissingFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	source := parseSource(t, `
volumes:
  - path: /media/stick
    total_capacity: 1000
`)

	report, err := newTestScanner(source, st).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(report.Added) != 1 {
		t.Fatalf("expected 1 added disk, got %+v", report.Added)
	}

	disk, err := st.GetDiskByURL(ctx, "/media/stick")
	if err != nil {
		t.Fatalf("GetDiskByURL() returned error: %v", err)
	}
	if disk.Name != models.UnknownName {
		t.Errorf("Name = %s, expected %s", disk.Name, models.UnknownName)
	}
	if disk.Type != models.Unknown() {
		t.Errorf("Type = %s, expected unknown", disk.Type)
	}
	if disk.UsedCapacity != 1000 {
		t.Errorf("UsedCapacity = %d, expected 1000", disk.UsedCapacity)
	}
	if report.Added[0].Level != models.TierSecondary {
		t.Errorf("expected tier 2 for disk without root flag, got %d", report.Added[0].Level)
	}
}

func TestScanCreatesExtraTiers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	scanner := newTestScanner(&staticSource{}, st)
	scanner.tiers.Extra = []config.TierEntryConfig{{Level: 3, Name: "Archive"}}

	if _, err := scanner.Scan(ctx); err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}

	tier, err := st.GetTierByLevel(ctx, 3)
	if err != nil {
		t.Fatalf("GetTierByLevel(3) returned error: %v", err)
	}
	if tier.DisplayName() != "Archive" {
		t.Errorf("DisplayName = %s, expected Archive", tier.DisplayName())
	}
}
