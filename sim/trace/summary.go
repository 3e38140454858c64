package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions  int
	AdmittedCount   int
	RejectedCount   int
	RejectedByClass map[string]int // request class → count of rejections
	RejectReasons   map[string]int // reason → count
	ScaleUps        int
	ScaleDowns      int
	// OverlappingScaleUps counts scale-ups made while another window was already open.
	OverlappingScaleUps int
	MaxActiveWindows    int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectedByClass: make(map[string]int),
		RejectReasons:   make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
			continue
		}
		summary.RejectedCount++
		summary.RejectedByClass[a.Class]++
		summary.RejectReasons[a.Reason]++
	}

	for _, s := range st.Scalings {
		switch s.Direction {
		case ScaleUp:
			summary.ScaleUps++
			if s.ActiveWindows > 1 {
				summary.OverlappingScaleUps++
			}
		case ScaleDown:
			summary.ScaleDowns++
		}
		summary.MaxActiveWindows = max(summary.MaxActiveWindows, s.ActiveWindows)
	}

	return summary
}
