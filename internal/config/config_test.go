package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsFillMissingSections(t *testing.T) {
	path := writeConfig(t, "app:\n  environment: test\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Session.Timezone != "Asia/Shanghai" {
		t.Errorf("session.timezone = %q, want Asia/Shanghai", cfg.Session.Timezone)
	}
	if cfg.Session.AuctionMatch != "09:25:01" {
		t.Errorf("session.auction_match = %q, want 09:25:01", cfg.Session.AuctionMatch)
	}
	if cfg.Limits.MainBoardPct != 9.5 || cfg.Limits.BeijingPct != 29.5 {
		t.Errorf("unexpected limit defaults: %+v", cfg.Limits)
	}
	if len(cfg.Limits.STMarkers) != 2 {
		t.Errorf("st_markers = %v, want 2 defaults", cfg.Limits.STMarkers)
	}
	if cfg.Feed.Timeout != 5*time.Second {
		t.Errorf("feed.timeout = %v, want 5s", cfg.Feed.Timeout)
	}
	if cfg.Scheduler.PollInterval != 3*time.Second {
		t.Errorf("scheduler.poll_interval = %v, want 3s", cfg.Scheduler.PollInterval)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"limits:",
		"  main_board_pct: 9.8",
		"scheduler:",
		"  poll_interval: 10s",
	}, "\n"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Limits.MainBoardPct != 9.8 {
		t.Errorf("main_board_pct = %v, want 9.8", cfg.Limits.MainBoardPct)
	}
	if cfg.Scheduler.PollInterval != 10*time.Second {
		t.Errorf("poll_interval = %v, want 10s", cfg.Scheduler.PollInterval)
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"limits:",
		"  special_pct: -1",
		"scheduler:",
		"  poll_interval: 0s",
	}, "\n"))

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
