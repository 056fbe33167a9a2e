package virtual

// RunKind tells the renderer how to style a run of text.
type RunKind int

const (
	RunPlain RunKind = iota
	RunMatch
	RunSender
	RunTimestamp
	RunReaction
	RunMedia
	RunMeta
)

// Run is a styled piece of a line.
type Run struct {
	Text string
	Kind RunKind
}

// Line is one terminal row of materialized content. Indent is the number of
// blank columns before the first run.
type Line struct {
	Runs   []Run
	Indent int
}

// Text concatenates the runs of the line, ignoring the indent.
func (l Line) Text() string {
	switch len(l.Runs) {
	case 0:
		return ""
	case 1:
		return l.Runs[0].Text
	}
	n := 0
	for _, r := range l.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range l.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// Block is the rendered form of one message, tagged with its global index.
type Block struct {
	Index int
	Lines []Line
}

// Height returns the number of rows the block occupies.
func (b Block) Height() int {
	return len(b.Lines)
}

// Materializer renders the messages in [first, last) into blocks, one per
// message, in order.
type Materializer interface {
	Materialize(first, last int) []Block
}

// MaterializerFunc adapts a function to the Materializer interface.
type MaterializerFunc func(first, last int) []Block

// Materialize calls f(first, last).
func (f MaterializerFunc) Materialize(first, last int) []Block {
	return f(first, last)
}
