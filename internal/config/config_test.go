package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// Second load reads the file it just wrote.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reload = %+v", again)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "initial_days: 14\ndefault_day_type: off\nnotifications: false\ndb_path: /tmp/custom.db\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InitialDays != 14 || cfg.DefaultDayType != "off" || cfg.Notifications {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Unset fields keep their defaults.
	if cfg.HistoryScanDays != 60 || cfg.CompletionRoot != "completions" {
		t.Fatalf("cfg = %+v", cfg)
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil || dbPath != "/tmp/custom.db" {
		t.Fatalf("dbPath = %q, %v", dbPath, err)
	}
}

func TestLoadNormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "initial_days: 0\nhistory_scan_days: -5\ndefault_day_type: holiday\ntemplate_path: \"\"\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InitialDays != 7 || cfg.HistoryScanDays != 60 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DefaultDayType != "work" || cfg.TemplatePath != "schedules/templates" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
