package transcript

import (
	"sort"
	"strings"
)

// ParticipantStats summarises one sender's share of the transcript.
type ParticipantStats struct {
	Name     string
	Count    int
	Percent  float64
	AvgWords float64
}

// Stats summarises a transcript.
type Stats struct {
	Total        int
	Participants []ParticipantStats
}

// ComputeStats counts messages and words per sender. Participants are ordered
// by message count, busiest first, then by name.
func ComputeStats(thread *Thread) Stats {
	total := thread.Len()
	if total == 0 {
		return Stats{}
	}

	counts := make(map[string]int)
	words := make(map[string]int)
	var order []string
	for _, m := range thread.Messages {
		if _, ok := counts[m.Sender]; !ok {
			order = append(order, m.Sender)
		}
		counts[m.Sender]++
		words[m.Sender] += len(strings.Fields(m.Text))
	}

	stats := Stats{Total: total, Participants: make([]ParticipantStats, 0, len(order))}
	for _, name := range order {
		count := counts[name]
		stats.Participants = append(stats.Participants, ParticipantStats{
			Name:     name,
			Count:    count,
			Percent:  float64(count) * 100 / float64(total),
			AvgWords: float64(words[name]) / float64(count),
		})
	}
	sort.SliceStable(stats.Participants, func(i, j int) bool {
		a, b := stats.Participants[i], stats.Participants[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return stats
}
