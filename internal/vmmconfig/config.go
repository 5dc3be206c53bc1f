// Package vmmconfig loads and live-reloads the operational configuration of
// a vmemtrans deployment: where its backing store lives, whether to run the
// read-only stats server, and how verbose to be. It follows the same shape
// as the teacher codebase's cmd/orizon-config: a typed struct decoded with
// encoding/json, no third-party config library.
//
// The compile-time constants of spec.md §3 (OFFSET_WIDTH,
// VIRTUAL_ADDRESS_WIDTH, PHYSICAL_ADDRESS_WIDTH) are part of this struct for
// convenience of driving different deployment sizes from one binary, but
// they are fixed for a deployment's lifetime: a reload that tries to change
// them is rejected rather than silently applied (see Watcher).
package vmmconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the JSON-decodable operational configuration of a deployment.
type Config struct {
	OffsetWidth          uint   `json:"offset_width"`
	VirtualAddressWidth  uint   `json:"virtual_address_width"`
	PhysicalAddressWidth uint   `json:"physical_address_width"`
	PageFilePath         string `json:"page_file_path"`
	StatsAddr            string `json:"stats_addr"`
	Verbose              bool   `json:"verbose"`
}

// Default returns the configuration matching vmm.DefaultDeployment, with
// the stats server disabled and a page file path relative to the working
// directory.
func Default() Config {
	return Config{
		OffsetWidth:          4,
		VirtualAddressWidth:  12,
		PhysicalAddressWidth: 7,
		PageFilePath:         "vmemtrans.pagefile",
		StatsAddr:            "",
		Verbose:              false,
	}
}

// Load reads a Config from a JSON file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("vmmconfig: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("vmmconfig: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects a configuration whose widths are inconsistent: a zero
// offset width, or a virtual or physical width narrower than the offset
// width. It does not check the NUM_FRAMES >= TABLES_DEPTH + 1 precondition;
// vmm.NewDeployment rejects that case.
func (c Config) Validate() error {
	if c.OffsetWidth == 0 {
		return fmt.Errorf("vmmconfig: offset_width must be positive")
	}

	if c.VirtualAddressWidth < c.OffsetWidth {
		return fmt.Errorf("vmmconfig: virtual_address_width must be at least offset_width")
	}

	if c.PhysicalAddressWidth < c.OffsetWidth {
		return fmt.Errorf("vmmconfig: physical_address_width must be at least offset_width")
	}

	return nil
}

// sameDeployment reports whether two configs agree on the compile-time
// deployment widths, i.e. whether moving from one to the other is a legal
// live reload rather than a restart-required change.
func sameDeployment(a, b Config) bool {
	return a.OffsetWidth == b.OffsetWidth &&
		a.VirtualAddressWidth == b.VirtualAddressWidth &&
		a.PhysicalAddressWidth == b.PhysicalAddressWidth
}
