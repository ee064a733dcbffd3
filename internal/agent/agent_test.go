package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	config "github.com/mwantia/tierd/internal/config/server"
)

const volumes = `
volumes:
  - name: Root
    path: /
    available_capacity: 10
    total_capacity: 100
    local: true
    root_filesystem: true
  - name: Stick
    path: /media/stick
    available_capacity: 5
    total_capacity: 20
    type_name: usb
    local: true
    removable: true
`

func newTestAgent(t *testing.T) *TierdAgent {
	t.Helper()

	dir := t.TempDir()
	file := filepath.Join(dir, "volumes.yaml")
	if err := os.WriteFile(file, []byte(volumes), 0644); err != nil {
		t.Fatalf("failed to write volume file: %v", err)
	}

	cfg := config.GetServerDefault()
	cfg.Log.NoTerminal = true
	cfg.Log.File = filepath.Join(dir, "tierd.log")
	cfg.Metadata.SQLite.Path = filepath.Join(dir, "tierd.db")
	cfg.Scan.Source = "file"
	cfg.Scan.File = file

	return NewAgent(&cfg)
}

func TestAgentScan(t *testing.T) {
	ta := newTestAgent(t)
	ctx := context.Background()

	if err := ta.setupServices(ctx); err != nil {
		t.Fatalf("setupServices() returned error: %v", err)
	}
	if err := ta.openStore(ctx); err != nil {
		t.Fatalf("openStore() returned error: %v", err)
	}
	defer ta.store.Close()

	report, err := ta.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(report.Added) != 2 {
		t.Fatalf("expected 2 added disks, got %+v", report.Added)
	}

	tiers, err := ta.store.ListTiers(ctx)
	if err != nil {
		t.Fatalf("ListTiers() returned error: %v", err)
	}
	if len(tiers) != 2 || len(tiers[0].Disks) != 1 || len(tiers[1].Disks) != 1 {
		t.Errorf("expected one disk per canonical tier, got %+v", tiers)
	}
}

func TestAgentNamedLogger(t *testing.T) {
	ta := newTestAgent(t)

	if _, err := ta.namedLogger(context.Background(), "scanner"); err == nil {
		t.Fatal("expected error before the logger is registered")
	}

	if err := ta.setupServices(context.Background()); err != nil {
		t.Fatalf("setupServices() returned error: %v", err)
	}
	logger, err := ta.namedLogger(context.Background(), "scanner")
	if err != nil || logger == nil {
		t.Fatalf("namedLogger() = %v, %v", logger, err)
	}
}

func TestAgentScanWithoutSetup(t *testing.T) {
	ta := newTestAgent(t)

	if _, err := ta.Scan(context.Background()); err == nil {
		t.Fatal("expected error when scanning before setup")
	}
}
