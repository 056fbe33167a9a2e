package virtual

import (
	"github.com/kk-code-lab/rchat/internal/debuglog"
)

const (
	// DefaultChunkSize is the number of messages per chunk.
	DefaultChunkSize = 50
	// DefaultMarginRows is how far outside the viewport chunks stay mounted.
	DefaultMarginRows = 40
	// defaultRowsPerMessage seeds height estimates before anything has been
	// measured.
	defaultRowsPerMessage = 2
)

// ChunkState is the mount state of a chunk.
type ChunkState int

const (
	Unmounted ChunkState = iota
	Mounted
)

func (s ChunkState) String() string {
	if s == Mounted {
		return "mounted"
	}
	return "unmounted"
}

// Chunk is a fixed, contiguous range of messages [First, Last).
type Chunk struct {
	Index      int
	First      int
	Last       int
	State      ChunkState
	LastHeight int
	HasHeight  bool

	blocks []Block
	height int
}

// Len returns the number of messages in the chunk.
func (c Chunk) Len() int {
	return c.Last - c.First
}

// Blocks returns the materialized blocks of a mounted chunk.
func (c Chunk) Blocks() []Block {
	return c.blocks
}

// Viewport is the visible row range [Top, Top+Height).
type Viewport struct {
	Top    int
	Height int
}

// Signal tells a chunk whether it is within the margin of the viewport.
type Signal struct {
	Chunk   int
	Visible bool
}

// Window keeps only the chunks near the viewport materialized. It is not
// safe for concurrent use.
type Window struct {
	total     int
	chunkSize int
	margin    int
	mat       Materializer
	chunks    []Chunk

	top    int
	height int
}

// NewWindow splits n messages into ceil(n/chunkSize) chunks, all unmounted.
func NewWindow(n, chunkSize, margin int, mat Materializer) *Window {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if margin < 0 {
		margin = 0
	}
	if n < 0 {
		n = 0
	}
	count := (n + chunkSize - 1) / chunkSize
	w := &Window{
		total:     n,
		chunkSize: chunkSize,
		margin:    margin,
		mat:       mat,
		chunks:    make([]Chunk, count),
	}
	for i := range w.chunks {
		last := (i + 1) * chunkSize
		if last > n {
			last = n
		}
		w.chunks[i] = Chunk{Index: i, First: i * chunkSize, Last: last}
	}
	return w
}

// Len returns the number of messages covered by the window.
func (w *Window) Len() int { return w.total }

// ChunkSize returns the configured chunk size.
func (w *Window) ChunkSize() int { return w.chunkSize }

// ChunkCount returns the number of chunks.
func (w *Window) ChunkCount() int { return len(w.chunks) }

// Chunk returns a copy of chunk i.
func (w *Window) Chunk(i int) (Chunk, bool) {
	if i < 0 || i >= len(w.chunks) {
		return Chunk{}, false
	}
	return w.chunks[i], true
}

// ChunkFor returns the chunk holding message index, or -1.
func (w *Window) ChunkFor(index int) int {
	if index < 0 || index >= w.total {
		return -1
	}
	return index / w.chunkSize
}

// MountedCount returns the number of mounted chunks.
func (w *Window) MountedCount() int {
	n := 0
	for i := range w.chunks {
		if w.chunks[i].State == Mounted {
			n++
		}
	}
	return n
}

// Viewport returns the current viewport.
func (w *Window) Viewport() Viewport {
	return Viewport{Top: w.top, Height: w.height}
}

// SetViewportHeight changes the number of visible rows.
func (w *Window) SetViewportHeight(h int) {
	if h < 0 {
		h = 0
	}
	w.height = h
	w.clampTop()
}

// ScrollTop returns the first visible row.
func (w *Window) ScrollTop() int { return w.top }

// ScrollTo moves the first visible row to top, clamped to the layout.
func (w *Window) ScrollTo(top int) {
	w.top = top
	w.clampTop()
}

// ScrollBy moves the viewport by delta rows.
func (w *Window) ScrollBy(delta int) {
	w.ScrollTo(w.top + delta)
}

// ScrollToEnd shows the last page.
func (w *Window) ScrollToEnd() {
	w.ScrollTo(w.TotalHeight())
}

// MaxTop returns the largest valid scroll top.
func (w *Window) MaxTop() int {
	m := w.TotalHeight() - w.height
	if m < 0 {
		return 0
	}
	return m
}

func (w *Window) clampTop() {
	if limit := w.MaxTop(); w.top > limit {
		w.top = limit
	}
	if w.top < 0 {
		w.top = 0
	}
}

// estimatedRowsPerMessage averages over every chunk that has been measured.
func (w *Window) estimatedRowsPerMessage() float64 {
	rows, msgs := 0, 0
	for i := range w.chunks {
		c := &w.chunks[i]
		switch {
		case c.State == Mounted:
			rows += c.height
			msgs += c.Len()
		case c.HasHeight:
			rows += c.LastHeight
			msgs += c.Len()
		}
	}
	if msgs == 0 {
		return defaultRowsPerMessage
	}
	return float64(rows) / float64(msgs)
}

func (w *Window) heightOf(c *Chunk, estimate float64) int {
	switch {
	case c.State == Mounted:
		return c.height
	case c.HasHeight:
		return c.LastHeight
	}
	h := int(estimate*float64(c.Len()) + 0.5)
	if h < 1 && c.Len() > 0 {
		h = 1
	}
	return h
}

// layout returns the row offset of every chunk plus the total height.
func (w *Window) layout() ([]int, int) {
	offsets := make([]int, len(w.chunks))
	estimate := w.estimatedRowsPerMessage()
	y := 0
	for i := range w.chunks {
		offsets[i] = y
		y += w.heightOf(&w.chunks[i], estimate)
	}
	return offsets, y
}

// TotalHeight returns the height of the whole layout in rows.
func (w *Window) TotalHeight() int {
	_, total := w.layout()
	return total
}

// ChunkOffset returns the first row of chunk i in the current layout.
func (w *Window) ChunkOffset(i int) int {
	if i < 0 || i >= len(w.chunks) {
		return 0
	}
	offsets, _ := w.layout()
	return offsets[i]
}

// Observe reports, for every chunk, whether it lies within the margin of vp.
func (w *Window) Observe(vp Viewport) []Signal {
	offsets, _ := w.layout()
	estimate := w.estimatedRowsPerMessage()
	lo := vp.Top - w.margin
	hi := vp.Top + vp.Height + w.margin
	signals := make([]Signal, len(w.chunks))
	for i := range w.chunks {
		start := offsets[i]
		end := start + w.heightOf(&w.chunks[i], estimate)
		signals[i] = Signal{Chunk: i, Visible: start < hi && end > lo}
	}
	return signals
}

// Apply performs the transition a signal asks for and reports whether
// anything changed. Repeated signals are no-ops.
func (w *Window) Apply(sig Signal) bool {
	if sig.Chunk < 0 || sig.Chunk >= len(w.chunks) {
		return false
	}
	if sig.Visible {
		return w.Mount(sig.Chunk)
	}
	return w.Unmount(sig.Chunk)
}

// Sync observes the current viewport and applies the resulting signals until
// nothing changes.
func (w *Window) Sync() {
	for pass := 0; pass <= len(w.chunks); pass++ {
		changed := false
		for _, sig := range w.Observe(w.Viewport()) {
			if w.Apply(sig) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
	debuglog.Logf(debuglog.TopicWindow, "sync did not settle after %d passes", len(w.chunks)+1)
}

// Mount materializes chunk i. Row positions are re-anchored so that the
// content at the top of the viewport stays put when the chunk, or the
// estimate for unmeasured chunks, changes height above it.
func (w *Window) Mount(i int) bool {
	if i < 0 || i >= len(w.chunks) {
		return false
	}
	c := &w.chunks[i]
	if c.State == Mounted {
		return false
	}
	before := w.heightOf(c, w.estimatedRowsPerMessage())
	w.keepAnchor(func() {
		c.blocks = w.materialize(c.First, c.Last)
		c.height = blocksHeight(c.blocks)
		c.State = Mounted
	})
	debuglog.Logf(debuglog.TopicWindow, "mount chunk %d [%d,%d) height %d (was %d)", i, c.First, c.Last, c.height, before)
	return true
}

// Unmount drops the content of chunk i and keeps its measured height as the
// placeholder height.
func (w *Window) Unmount(i int) bool {
	if i < 0 || i >= len(w.chunks) {
		return false
	}
	c := &w.chunks[i]
	if c.State != Mounted {
		return false
	}
	w.keepAnchor(func() {
		c.LastHeight = c.height
		c.HasHeight = true
		c.blocks = nil
		c.height = 0
		c.State = Unmounted
	})
	debuglog.Logf(debuglog.TopicWindow, "unmount chunk %d height %d", i, c.LastHeight)
	return true
}

// Rerender re-materializes every mounted chunk in place, keeping the chunk
// layout and the content at the top of the viewport.
func (w *Window) Rerender() {
	w.keepAnchor(func() {
		for i := range w.chunks {
			c := &w.chunks[i]
			if c.State != Mounted {
				continue
			}
			c.blocks = w.materialize(c.First, c.Last)
			c.height = blocksHeight(c.blocks)
		}
	})
}

// Invalidate forgets measured heights of unmounted chunks, for example after
// the wrap width changed.
func (w *Window) Invalidate() {
	w.keepAnchor(func() {
		for i := range w.chunks {
			if w.chunks[i].State != Mounted {
				w.chunks[i].HasHeight = false
				w.chunks[i].LastHeight = 0
			}
		}
	})
}

// keepAnchor runs mutate and then moves the scroll top so that it keeps the
// same distance from the start of the chunk it was in.
func (w *Window) keepAnchor(mutate func()) {
	if len(w.chunks) == 0 {
		mutate()
		return
	}
	offsets, _ := w.layout()
	anchor := 0
	for i, off := range offsets {
		if off > w.top {
			break
		}
		anchor = i
	}
	within := w.top - offsets[anchor]

	mutate()

	offsets, _ = w.layout()
	w.top = offsets[anchor] + within
	w.clampTop()
}

func (w *Window) materialize(first, last int) []Block {
	if w.mat == nil || first >= last {
		return nil
	}
	return w.mat.Materialize(first, last)
}

func blocksHeight(blocks []Block) int {
	h := 0
	for _, b := range blocks {
		h += b.Height()
	}
	return h
}

// Locate finds the block for message index in its mounted chunk and returns
// its first row. When no block carries the index it falls back to the block
// at the message's position in the chunk, then the one before it.
func (w *Window) Locate(index int) (row int, block Block, ok bool) {
	ci := w.ChunkFor(index)
	if ci < 0 || w.chunks[ci].State != Mounted {
		return 0, Block{}, false
	}
	c := &w.chunks[ci]
	row = w.ChunkOffset(ci)

	y := row
	for _, b := range c.blocks {
		if b.Index == index {
			return y, b, true
		}
		y += b.Height()
	}

	local := index - c.First
	for _, pos := range []int{local, local - 1} {
		if pos < 0 || pos >= len(c.blocks) {
			continue
		}
		y := row
		for _, b := range c.blocks[:pos] {
			y += b.Height()
		}
		return y, c.blocks[pos], true
	}
	return 0, Block{}, false
}

// VisibleLine is a row inside the viewport. Placeholder rows belong to
// chunks that are not mounted.
type VisibleLine struct {
	Line        Line
	Index       int
	First       bool
	Placeholder bool
}

// VisibleLines returns one entry per row of the current viewport, fewer when
// the layout ends early.
func (w *Window) VisibleLines() []VisibleLine {
	if w.height <= 0 {
		return nil
	}
	offsets, _ := w.layout()
	estimate := w.estimatedRowsPerMessage()
	end := w.top + w.height
	out := make([]VisibleLine, 0, w.height)
	for i := range w.chunks {
		c := &w.chunks[i]
		start := offsets[i]
		h := w.heightOf(c, estimate)
		if start+h <= w.top {
			continue
		}
		if start >= end {
			break
		}
		if c.State != Mounted {
			for y := max(start, w.top); y < min(start+h, end); y++ {
				out = append(out, VisibleLine{Index: -1, Placeholder: true})
			}
			continue
		}
		y := start
		for _, b := range c.blocks {
			for li, line := range b.Lines {
				if y >= w.top && y < end {
					out = append(out, VisibleLine{Line: line, Index: b.Index, First: li == 0})
				}
				y++
			}
			if y >= end {
				break
			}
		}
	}
	return out
}

// IndexAtRow returns the message rendered at viewport row, or -1.
func (w *Window) IndexAtRow(row int) int {
	lines := w.VisibleLines()
	if row < 0 || row >= len(lines) {
		return -1
	}
	return lines[row].Index
}
