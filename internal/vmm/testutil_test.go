package vmm

// fakePhysicalMemory is an in-process PhysicalMemory for unit tests, backed
// by a plain slice and an in-memory page store. It lets tests exercise the
// translator and allocator without involving internal/physmem or real I/O.
type fakePhysicalMemory struct {
	words    []Word
	pageSize uint64
	store    map[uint64][]Word
}

func newFakePhysicalMemory(dep Deployment) *fakePhysicalMemory {
	return &fakePhysicalMemory{
		words:    make([]Word, dep.PhysicalMemorySize),
		pageSize: dep.PageSize,
		store:    make(map[uint64][]Word),
	}
}

func (m *fakePhysicalMemory) ReadWord(addr uint64) (Word, error) {
	return m.words[addr], nil
}

func (m *fakePhysicalMemory) WriteWord(addr uint64, w Word) error {
	m.words[addr] = w
	return nil
}

func (m *fakePhysicalMemory) EvictPage(frame, vpage uint64) error {
	base := frame * m.pageSize
	page := make([]Word, m.pageSize)
	copy(page, m.words[base:base+m.pageSize])
	m.store[vpage] = page

	return nil
}

func (m *fakePhysicalMemory) RestorePage(frame, vpage uint64) error {
	base := frame * m.pageSize
	page, ok := m.store[vpage]

	if !ok {
		for i := uint64(0); i < m.pageSize; i++ {
			m.words[base+i] = 0
		}

		return nil
	}

	copy(m.words[base:base+m.pageSize], page)

	return nil
}
