package vmm

import vmerrors "github.com/orizon-lang/vmemtrans/internal/errors"

// furthestCandidate tracks the best (largest cyclic-distance) victim seen so
// far during a traversal.
type furthestCandidate struct {
	have       bool
	distance   uint64
	frame      uint64 // the leaf frame to evict
	vpage      uint64 // the virtual page it holds
	parentSlot uint64 // physical address of the parent's entry pointing to it
}

// scanState accumulates two of the three signals the allocator's single DFS
// pass collects, per spec.md §4.3; the third, a reclaimable empty table, is
// the return value of visit.
type scanState struct {
	maxFrame uint64
	furthest furthestCandidate
}

// allocator implements spec.md §4.3's frame allocator: reclaim an empty
// table, else bump-allocate, else evict the furthest mapped page.
type allocator struct {
	dep Deployment
}

func newAllocator(dep Deployment) *allocator {
	return &allocator{dep: dep}
}

// allocOutcome identifies which of spec.md §4.3's three preferences produced
// an allocated frame, purely for observability (internal/vmmstat).
type allocOutcome int

const (
	allocReclaimed allocOutcome = iota
	allocBumped
	allocEvicted
)

// allocate produces a frame index in [1, NUM_FRAMES) usable for immediate
// reuse. protected is the immediate parent of the translation edge that
// triggered this allocation (spec.md §4.2's rationale for why a single
// protected frame suffices); faultingVPage is the virtual page index the
// ongoing translation is resolving, used by the victim-distance metric.
func (a *allocator) allocate(pm PhysicalMemory, protected, faultingVPage uint64) (uint64, allocOutcome, error) {
	st := &scanState{furthest: furthestCandidate{vpage: faultingVPage}}

	reclaimed, err := a.visit(pm, protected, faultingVPage, 0, 0, 0, 0, st)
	if err != nil {
		return 0, 0, err
	}

	if reclaimed != 0 {
		return reclaimed, allocReclaimed, nil
	}

	if st.maxFrame+1 < a.dep.NumFrames {
		return st.maxFrame + 1, allocBumped, nil
	}

	if !st.furthest.have {
		return 0, 0, vmerrors.AllocatorExhausted(protected, faultingVPage)
	}

	if err := pm.WriteWord(st.furthest.parentSlot, 0); err != nil {
		return 0, 0, err
	}

	if err := pm.EvictPage(st.furthest.frame, st.furthest.vpage); err != nil {
		return 0, 0, err
	}

	return st.furthest.frame, allocEvicted, nil
}

// visit is the recursive descent of spec.md §4.3's "Traversal structure".
// depth counts how many table reads have already been followed to reach
// frame: depth 0 is the root, and depth == TablesDepth means frame is itself
// a leaf page, whose PAGE_SIZE words are literal data rather than child
// pointers. parentSlot is the physical address of the entry (in frame's
// parent) that points to frame; it is meaningless at depth 0 (the root has
// no parent link) and is never dereferenced there because frame 0 is never a
// reclaim candidate.
//
// A non-zero return short-circuits the caller immediately, matching
// spec.md's early-return-on-reclaim rule; the parent link of the reclaimed
// frame has already been zeroed by the time it propagates up.
func (a *allocator) visit(pm PhysicalMemory, protected, faultingVPage, frame, parentSlot, vprefix uint64, depth uint, st *scanState) (uint64, error) {
	empty := true

	if depth < a.dep.TablesDepth {
		for i := uint64(0); i < a.dep.PageSize; i++ {
			slot := a.dep.slot(frame, i)

			w, err := pm.ReadWord(slot)
			if err != nil {
				return 0, err
			}

			child := uint64(w)
			if child == 0 {
				continue
			}

			empty = false
			childPrefix := (vprefix << a.dep.OffsetWidth) | i

			reclaimed, err := a.visit(pm, protected, faultingVPage, child, slot, childPrefix, depth+1, st)
			if err != nil {
				return 0, err
			}

			if reclaimed != 0 {
				return reclaimed, nil
			}

			if child > st.maxFrame {
				st.maxFrame = child
			}
		}
	} else {
		// frame is a leaf page: its PAGE_SIZE entries are the page's own
		// data words, not child pointers. Spec.md §4.3/§9 directs the
		// allocator to treat a non-zero word here exactly like a non-zero
		// child pointer elsewhere: it marks the leaf in use, contributes to
		// max_frame (even though the word is data, not a frame index — a
		// documented conflation carried over from the source this spec was
		// distilled from), and updates the furthest-victim candidate using
		// the virtual page index accumulated along the DFS path, without
		// adding a per-word offset (the eviction unit is the page).
		for i := uint64(0); i < a.dep.PageSize; i++ {
			w, err := pm.ReadWord(a.dep.slot(frame, i))
			if err != nil {
				return 0, err
			}

			if uint64(w) == 0 {
				continue
			}

			empty = false

			if uint64(w) > st.maxFrame {
				st.maxFrame = uint64(w)
			}

			a.updateFurthest(st, vprefix, frame, parentSlot, faultingVPage)
		}
	}

	if empty && frame != 0 && frame != protected {
		if err := pm.WriteWord(parentSlot, 0); err != nil {
			return 0, err
		}

		return frame, nil
	}

	return 0, nil
}

// updateFurthest records candidate as the new furthest victim if its cyclic
// distance from faultingVPage strictly exceeds the best seen so far,
// preserving the "first encountered in DFS order wins" tie-break.
func (a *allocator) updateFurthest(st *scanState, candidateVPage, frame, parentSlot, faultingVPage uint64) {
	dist := cyclicDistance(candidateVPage, faultingVPage, a.dep.NumPages)

	if !st.furthest.have || dist > st.furthest.distance {
		st.furthest = furthestCandidate{
			have:       true,
			distance:   dist,
			frame:      frame,
			vpage:      candidateVPage,
			parentSlot: parentSlot,
		}
	}
}

// cyclicDistance computes min(|u-v|, numPages-|u-v|), the victim-selection
// metric of spec.md §4.3.
func cyclicDistance(u, v, numPages uint64) uint64 {
	var d uint64
	if u >= v {
		d = u - v
	} else {
		d = v - u
	}

	if alt := numPages - d; alt < d {
		return alt
	}

	return d
}
