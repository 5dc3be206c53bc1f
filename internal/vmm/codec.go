package vmm

// decompose splits a virtual address into its page index and intra-page
// offset, per spec.md §4.1.
func (d Deployment) decompose(v uint64) (vpage uint64, offset uint64) {
	mask := d.PageSize - 1

	return v >> d.OffsetWidth, v & mask
}

// tableIndex returns the table index used at table level i (1-indexed,
// counting from the root) when walking toward virtual page vpage.
func (d Deployment) tableIndex(vpage uint64, level uint) uint64 {
	shift := (uint64(d.TablesDepth) - uint64(level)) * uint64(d.OffsetWidth)
	mask := d.PageSize - 1

	return (vpage >> shift) & mask
}

// slot returns the physical word address of table-frame entry idx within
// frame.
func (d Deployment) slot(frame, idx uint64) uint64 {
	return frame*d.PageSize + idx
}

// inRange reports whether virtual address v is a legal address for this
// deployment.
func (d Deployment) inRange(v uint64) bool {
	return v < d.VirtualMemorySize
}
