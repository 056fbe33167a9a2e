package state

import (
	"github.com/kk-code-lab/rchat/internal/virtual"
)

// PlainLayout renders every message as a single unstyled "sender: text"
// line. It is the fallback when no LayoutFactory is installed.
func PlainLayout(s *AppState) virtual.Materializer {
	return virtual.MaterializerFunc(func(first, last int) []virtual.Block {
		thread := s.Thread()
		if thread == nil {
			return nil
		}
		blocks := make([]virtual.Block, 0, last-first)
		for i := first; i < last && i < thread.Len(); i++ {
			m := thread.Messages[i]
			blocks = append(blocks, virtual.Block{
				Index: m.Index,
				Lines: []virtual.Line{{Runs: []virtual.Run{
					{Text: m.Sender, Kind: virtual.RunSender},
					{Text: ": " + m.Text},
				}}},
			})
		}
		return blocks
	})
}
