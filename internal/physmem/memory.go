// Package physmem provides a concrete physical-memory collaborator: a
// word-addressable array of fixed size, paired with a backing store for
// page eviction and restoration. It implements vmm.PhysicalMemory, the
// narrow interface spec.md assumes is provided by an external collaborator.
//
// This mirrors the shape of the teacher codebase's own
// PhysicalMemoryManager (internal/runtime/kernel/memory.go): a flat
// allocation-free array plus bookkeeping, with no concurrency control,
// because nothing above it needs one.
package physmem

import (
	"fmt"

	"github.com/orizon-lang/vmemtrans/internal/vmm"
)

// BackingStore is the page-file abstraction consumed by Memory: store a
// page's words under a virtual-page index, and restore them later.
type BackingStore interface {
	Store(vpage uint64, words []vmm.Word) error
	Load(vpage uint64) ([]vmm.Word, error)
}

// Memory is a word-addressable array of PhysicalMemorySize words, backed by
// a BackingStore for PMevict/PMrestore. It implements vmm.PhysicalMemory.
type Memory struct {
	words    []vmm.Word
	pageSize uint64
	store    BackingStore
}

// New creates a Memory of size words (must be a multiple of pageSize),
// fronting the given backing store.
func New(size, pageSize uint64, store BackingStore) (*Memory, error) {
	if pageSize == 0 || size%pageSize != 0 {
		return nil, fmt.Errorf("physmem: size %d is not a multiple of page size %d", size, pageSize)
	}

	return &Memory{
		words:    make([]vmm.Word, size),
		pageSize: pageSize,
		store:    store,
	}, nil
}

// ReadWord implements vmm.PhysicalMemory.
func (m *Memory) ReadWord(addr uint64) (vmm.Word, error) {
	if addr >= uint64(len(m.words)) {
		return 0, fmt.Errorf("physmem: read address %d out of range [0,%d)", addr, len(m.words))
	}

	return m.words[addr], nil
}

// WriteWord implements vmm.PhysicalMemory.
func (m *Memory) WriteWord(addr uint64, w vmm.Word) error {
	if addr >= uint64(len(m.words)) {
		return fmt.Errorf("physmem: write address %d out of range [0,%d)", addr, len(m.words))
	}

	m.words[addr] = w

	return nil
}

// EvictPage implements vmm.PhysicalMemory: it persists frame's current
// PageSize words to the backing store under vpage.
func (m *Memory) EvictPage(frame, vpage uint64) error {
	base := frame * m.pageSize
	page := make([]vmm.Word, m.pageSize)
	copy(page, m.words[base:base+m.pageSize])

	return m.store.Store(vpage, page)
}

// RestorePage implements vmm.PhysicalMemory: it loads vpage's PAGE_SIZE
// words from the backing store into frame, yielding all-zero words if the
// page was never previously evicted.
func (m *Memory) RestorePage(frame, vpage uint64) error {
	page, err := m.store.Load(vpage)
	if err != nil {
		return err
	}

	base := frame * m.pageSize
	copy(m.words[base:base+m.pageSize], page)

	return nil
}
