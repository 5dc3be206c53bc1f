// Package vmm implements the hierarchical virtual-memory translator: address
// decomposition, the page-table tree walk, and the frame allocator that backs
// it with demand paging over a small fixed-size physical memory.
package vmm

import (
	vmerrors "github.com/orizon-lang/vmemtrans/internal/errors"
)

// Word is the unit of storage read and written by the translator, matching
// the physical-memory collaborator's word granularity.
type Word uint64

// Deployment holds the compile-time parameters of spec.md §3. A real
// deployment of this translator fixes these for its lifetime; they are
// modeled as a struct (rather than literal constants) so the same binary can
// be driven against more than one deployment size, e.g. in tests.
type Deployment struct {
	OffsetWidth          uint // bits of intra-page offset
	VirtualAddressWidth  uint // total virtual address bits
	PhysicalAddressWidth uint // total physical address bits

	PageSize             uint64 // 1 << OffsetWidth, words per page/table
	VirtualMemorySize    uint64 // 1 << VirtualAddressWidth, words
	PhysicalMemorySize   uint64 // 1 << PhysicalAddressWidth, words
	NumFrames            uint64 // PhysicalMemorySize / PageSize
	NumPages             uint64 // VirtualMemorySize / PageSize
	TablesDepth          uint   // levels of tables above leaves
}

// DefaultDeployment returns the deployment constants documented in
// SPEC_FULL.md §13: a 2-level table tree over a 4096-word virtual address
// space backed by 128 words (8 frames) of physical memory.
func DefaultDeployment() Deployment {
	d, err := NewDeployment(4, 12, 7)
	if err != nil {
		// DefaultDeployment is a fixed, known-good constant; a failure here
		// would mean the constant itself regressed.
		panic(err)
	}

	return d
}

// NewDeployment computes the derived quantities of spec.md §3 from the three
// independent compile-time widths and validates spec.md §4.3's sizing
// precondition (NUM_FRAMES >= TABLES_DEPTH + 1).
func NewDeployment(offsetWidth, virtualAddressWidth, physicalAddressWidth uint) (Deployment, error) {
	if offsetWidth == 0 {
		return Deployment{}, vmerrors.InvalidDeployment("OFFSET_WIDTH must be positive")
	}

	if virtualAddressWidth < offsetWidth {
		return Deployment{}, vmerrors.InvalidDeployment("VIRTUAL_ADDRESS_WIDTH must be at least OFFSET_WIDTH")
	}

	if physicalAddressWidth < offsetWidth {
		return Deployment{}, vmerrors.InvalidDeployment("PHYSICAL_ADDRESS_WIDTH must be at least OFFSET_WIDTH")
	}

	pageSize := uint64(1) << offsetWidth
	virtMemSize := uint64(1) << virtualAddressWidth
	physMemSize := uint64(1) << physicalAddressWidth

	numFrames := physMemSize / pageSize
	numPages := virtMemSize / pageSize

	// ceil((VIRTUAL_ADDRESS_WIDTH - OFFSET_WIDTH) / OFFSET_WIDTH)
	pageIndexBits := virtualAddressWidth - offsetWidth
	tablesDepth := (pageIndexBits + offsetWidth - 1) / offsetWidth
	if tablesDepth == 0 {
		tablesDepth = 1
	}

	d := Deployment{
		OffsetWidth:          offsetWidth,
		VirtualAddressWidth:  virtualAddressWidth,
		PhysicalAddressWidth: physicalAddressWidth,
		PageSize:             pageSize,
		VirtualMemorySize:    virtMemSize,
		PhysicalMemorySize:   physMemSize,
		NumFrames:            numFrames,
		NumPages:             numPages,
		TablesDepth:          tablesDepth,
	}

	if numFrames < uint64(tablesDepth)+1 {
		return Deployment{}, vmerrors.InvalidDeployment(
			"NUM_FRAMES must be at least TABLES_DEPTH + 1 for a translation to always complete")
	}

	return d, nil
}
