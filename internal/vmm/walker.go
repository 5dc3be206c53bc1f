package vmm

// translator performs the page-table tree walk of spec.md §4.2.
type translator struct {
	dep   Deployment
	alloc *allocator
}

func newTranslator(dep Deployment) *translator {
	return &translator{dep: dep, alloc: newAllocator(dep)}
}

// translate walks the D-level table tree rooted at frame 0 for virtual
// address v (already validated to be in range), materializing any missing
// edge along the way, and returns the physical word address of v. onFault,
// if non-nil, is notified of each allocation this translation performs
// (Engine uses this to keep the allocator counters that internal/vmmstat
// serves).
func (t *translator) translate(pm PhysicalMemory, v uint64, onFault func(allocOutcome)) (uint64, error) {
	vpage, offset := t.dep.decompose(v)

	current := uint64(0)

	for level := uint(1); level <= t.dep.TablesDepth; level++ {
		idx := t.dep.tableIndex(vpage, level)
		slot := t.dep.slot(current, idx)

		next, err := pm.ReadWord(slot)
		if err != nil {
			return 0, err
		}

		if next == 0 {
			// current holds the missing entry, so it is the frame that must
			// not be reclaimed while its new child is being allocated.
			f, outcome, err := t.alloc.allocate(pm, current, vpage)
			if err != nil {
				return 0, err
			}

			if onFault != nil {
				onFault(outcome)
			}

			if level < t.dep.TablesDepth {
				if err := clearTable(pm, t.dep, f); err != nil {
					return 0, err
				}
			} else {
				// Last level: f becomes the leaf data page, populated from
				// the backing store rather than zero-filled. Zero-filling
				// here would silently discard a previously evicted page.
				if err := pm.RestorePage(f, vpage); err != nil {
					return 0, err
				}
			}

			if err := pm.WriteWord(slot, Word(f)); err != nil {
				return 0, err
			}

			next = Word(f)
		}

		current = uint64(next)
	}

	return t.dep.slot(current, offset), nil
}

// clearTable zero-fills a freshly allocated table frame, per spec.md §3's
// page-table-frame lifecycle ("Created zeroed by the walker via
// clearTable").
func clearTable(pm PhysicalMemory, dep Deployment, frame uint64) error {
	for i := uint64(0); i < dep.PageSize; i++ {
		if err := pm.WriteWord(dep.slot(frame, i), 0); err != nil {
			return err
		}
	}

	return nil
}
