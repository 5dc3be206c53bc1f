package vmmconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
}

func TestValidateRejectsZeroOffsetWidth(t *testing.T) {
	cfg := Default()
	cfg.OffsetWidth = 0

	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with zero offset_width = nil, want error")
	}
}

func TestValidateRejectsNarrowVirtualWidth(t *testing.T) {
	cfg := Default()
	cfg.VirtualAddressWidth = cfg.OffsetWidth - 1

	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with virtual_address_width < offset_width = nil, want error")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	const body = `{
		"offset_width": 4,
		"virtual_address_width": 12,
		"physical_address_width": 7,
		"page_file_path": "x.pagefile",
		"stats_addr": "",
		"verbose": true
	}`

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OffsetWidth != 4 || cfg.VirtualAddressWidth != 12 || cfg.PhysicalAddressWidth != 7 {
		t.Fatalf("Load() = %+v, widths don't match file", cfg)
	}

	if !cfg.Verbose {
		t.Fatalf("Load().Verbose = false, want true")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := os.WriteFile(path, []byte(`{"offset_width": 0}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("Load() of an invalid config = nil error, want error")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Load() of a missing file = nil error, want error")
	}
}

func TestSameDeployment(t *testing.T) {
	a := Default()
	b := Default()
	b.Verbose = !a.Verbose
	b.StatsAddr = "127.0.0.1:9999"

	if !sameDeployment(a, b) {
		t.Fatalf("sameDeployment: operational-only differences should still count as the same deployment")
	}

	b.OffsetWidth++

	if sameDeployment(a, b) {
		t.Fatalf("sameDeployment: a changed OffsetWidth should not count as the same deployment")
	}
}
