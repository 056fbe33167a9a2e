package state

// JumpTo brings message index into view JumpPadding rows below the top edge,
// mounting its chunk first when needed, and marks it. The persistent marker
// stays until the next jump or click; the transient one is cleared after
// HighlightDuration. Out-of-range indices are ignored.
func (s *AppState) JumpTo(index int) bool {
	target, ok := s.scrollToIndex(index, s.JumpPadding)
	if !ok {
		return false
	}
	s.MarkedIndex = target
	s.TransientIndex = target
	s.transientSeq++
	s.schedule(s.HighlightDuration, TransientClearAction{Seq: s.transientSeq})
	return true
}

// scrollToIndex scrolls so that the block for index starts padding rows
// below the top of the viewport and returns the index the block carries.
func (s *AppState) scrollToIndex(index, padding int) (int, bool) {
	w := s.Window()
	if w == nil {
		return -1, false
	}
	ci := w.ChunkFor(index)
	if ci < 0 {
		return -1, false
	}
	if vh := w.Viewport().Height; padding >= vh {
		padding = vh - 1
	}
	if padding < 0 {
		padding = 0
	}

	w.Mount(ci)
	row, block, ok := w.Locate(index)
	if !ok {
		return -1, false
	}
	// Syncing can re-measure chunks above the target; settle on a stable row.
	for attempt := 0; attempt < 3; attempt++ {
		w.ScrollTo(row - padding)
		w.Sync()
		w.Mount(ci)
		next, b, found := w.Locate(index)
		if !found {
			return -1, false
		}
		block = b
		if next == row {
			break
		}
		row = next
	}

	if block.Index >= 0 {
		return block.Index, true
	}
	return index, true
}
