package gateway

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, map[string]string{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.RunMode != RunModeDispatch {
		t.Fatalf("expected dispatch run mode, got %q", cfg.RunMode)
	}
	if cfg.MaxPlayers != -1 {
		t.Fatalf("expected unlimited players, got %d", cfg.MaxPlayers)
	}
	if !cfg.AutoCreate {
		t.Fatal("expected auto-create enabled by default")
	}
}

func TestParseConfig_EnvOverride(t *testing.T) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, map[string]string{
		"LUNARGATE_HTTP_ADDR":   ":9999",
		"LUNARGATE_RUN_MODE":    "hybrid",
		"LUNARGATE_MAX_PLAYERS": "75",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.HTTPAddr != ":9999" || cfg.RunMode != RunModeHybrid || cfg.MaxPlayers != 75 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestParseConfig_FlagsWin(t *testing.T) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", ":7777"}, map[string]string{
		"LUNARGATE_HTTP_ADDR": ":9999",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.HTTPAddr != ":7777" {
		t.Fatalf("expected flag to win, got %q", cfg.HTTPAddr)
	}
}

func TestParseConfig_UnknownRunMode(t *testing.T) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-run-mode", "standalone"}, map[string]string{}); err == nil {
		t.Fatal("expected error for unknown run mode")
	}
}

func TestLoadRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.json")
	content := `[{"name":"os_usa","title":"America","ip":"1.2.3.4","port":22101}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	regions, err := loadRegions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(regions) != 1 || regions[0].Name != "os_usa" || regions[0].Port != 22101 {
		t.Fatalf("unexpected regions: %+v", regions)
	}
}

func TestLoadRegions_EmptyPath(t *testing.T) {
	regions, err := loadRegions("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if regions != nil {
		t.Fatalf("expected no regions, got %+v", regions)
	}
}

func TestDecodeHexKey(t *testing.T) {
	key, err := decodeHexKey("secret key", "deadbeef")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(key) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(key))
	}

	if _, err := decodeHexKey("secret key", "zz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}
