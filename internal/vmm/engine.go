package vmm

import "sync/atomic"

// Stats publishes a point-in-time snapshot of allocator activity. It exists
// purely for external observability (internal/vmmstat's read-only
// introspection endpoint) and is never consulted by the translator itself —
// the synchronous, single-threaded translation path of spec.md §5 does not
// read it back.
type Stats struct {
	Reads            uint64
	Writes           uint64
	RejectedAccesses uint64
	Faults           uint64
	FramesReclaimed  uint64
	FramesBumped     uint64
	PagesEvicted     uint64
}

// Engine is the public translator of spec.md §6: Initialize, Read word,
// Write word, backed by a deployment's compile-time constants and a
// PhysicalMemory collaborator.
type Engine struct {
	dep   Deployment
	pm    PhysicalMemory
	trans *translator

	reads, writes, rejected, faults, reclaimed, bumped, evicted atomic.Uint64
}

// NewEngine constructs an Engine for the given deployment and physical
// memory collaborator. Callers must call Initialize before the first Read
// or Write.
func NewEngine(dep Deployment, pm PhysicalMemory) *Engine {
	return &Engine{dep: dep, pm: pm, trans: newTranslator(dep)}
}

// Initialize zero-fills the root frame, per spec.md §6's initialization
// contract. It must run before any Read or Write.
func (e *Engine) Initialize() error {
	return clearTable(e.pm, e.dep, 0)
}

// Read fills out with the value stored at virtual address v. It returns
// false (and leaves out unmodified) if v is out of range, matching spec.md
// §7's user-visible failure behavior.
func (e *Engine) Read(v uint64, out *Word) bool {
	if !e.dep.inRange(v) {
		e.rejected.Add(1)
		return false
	}

	addr, err := e.trans.translate(e.pm, v, e.recordFault)
	if err != nil {
		panic(err)
	}

	w, err := e.pm.ReadWord(addr)
	if err != nil {
		panic(err)
	}

	*out = w
	e.reads.Add(1)

	return true
}

// Write stores w at virtual address v. It returns false (and leaves virtual
// memory unmodified) if v is out of range.
func (e *Engine) Write(v uint64, w Word) bool {
	if !e.dep.inRange(v) {
		e.rejected.Add(1)
		return false
	}

	addr, err := e.trans.translate(e.pm, v, e.recordFault)
	if err != nil {
		panic(err)
	}

	if err := e.pm.WriteWord(addr, w); err != nil {
		panic(err)
	}

	e.writes.Add(1)

	return true
}

// Deployment returns the constants this engine was built with.
func (e *Engine) Deployment() Deployment {
	return e.dep
}

func (e *Engine) recordFault(outcome allocOutcome) {
	e.faults.Add(1)

	switch outcome {
	case allocReclaimed:
		e.reclaimed.Add(1)
	case allocBumped:
		e.bumped.Add(1)
	case allocEvicted:
		e.evicted.Add(1)
	}
}

// Snapshot returns the current counters. Safe to call concurrently with
// Read/Write, though spec.md §5 does not require the translation path
// itself to support concurrent callers.
func (e *Engine) Snapshot() Stats {
	return Stats{
		Reads:            e.reads.Load(),
		Writes:           e.writes.Load(),
		RejectedAccesses: e.rejected.Load(),
		Faults:           e.faults.Load(),
		FramesReclaimed:  e.reclaimed.Load(),
		FramesBumped:     e.bumped.Load(),
		PagesEvicted:     e.evicted.Load(),
	}
}
