package tasks

import "math"

// Filtered returns the tasks matching mode in their original order.
// The result never aliases the input.
func Filtered(collection []Task, mode Filter) []Task {
	out := make([]Task, 0, len(collection))
	for _, t := range collection {
		switch mode {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func ComputeStats(collection []Task) Stats {
	s := Stats{Total: len(collection)}
	for _, t := range collection {
		if t.Completed {
			s.Completed++
		}
	}
	s.Active = s.Total - s.Completed
	if s.Total > 0 {
		s.Progress = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	}
	return s
}
