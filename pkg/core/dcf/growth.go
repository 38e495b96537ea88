package dcf

import (
	"fmt"
	"math"
)

// HorizonYears is the explicit projection horizon. Both schedule modes and
// the projection engine produce exactly this many annual values.
const HorizonYears = 10

// GrowthStage is one contiguous slice of the projection horizon carrying a
// blended growth assumption. GDPWeight is the fraction of the blend
// attributed to macro (GDP) growth rather than company-specific growth.
// Rationale and Confidence are display metadata and never enter the math.
type GrowthStage struct {
	StartYear  int     `json:"start_year"`
	EndYear    int     `json:"end_year"`
	GrowthRate float64 `json:"growth_rate"` // %
	GDPWeight  float64 `json:"gdp_weight"`  // 0..1
	Rationale  string  `json:"rationale,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
}

// ResolveStageSchedule maps a stage table onto per-year growth rates, one
// per projection year in year order. Each year takes its stage's configured
// rate directly. Stages must be ordered, non-overlapping and cover years
// 1..HorizonYears exactly once each.
func ResolveStageSchedule(stages []GrowthStage) ([]float64, error) {
	if len(stages) == 0 {
		return nil, &ConfigurationError{Field: "stages", Reason: "no growth stages supplied"}
	}

	schedule := make([]float64, 0, HorizonYears)
	expected := 1
	for i, st := range stages {
		if st.StartYear > st.EndYear {
			return nil, &ConfigurationError{
				Field:  "stages",
				Reason: fmt.Sprintf("stage %d: start year %d is after end year %d", i+1, st.StartYear, st.EndYear),
			}
		}
		if st.StartYear != expected {
			return nil, &ConfigurationError{
				Field:  "stages",
				Reason: fmt.Sprintf("stage %d: starts at year %d, want year %d (stages must be contiguous and non-overlapping)", i+1, st.StartYear, expected),
			}
		}
		if st.EndYear > HorizonYears {
			return nil, &ConfigurationError{
				Field:  "stages",
				Reason: fmt.Sprintf("stage %d: ends at year %d, beyond the %d-year horizon", i+1, st.EndYear, HorizonYears),
			}
		}
		for y := st.StartYear; y <= st.EndYear; y++ {
			schedule = append(schedule, st.GrowthRate)
		}
		expected = st.EndYear + 1
	}

	if expected != HorizonYears+1 {
		return nil, &ConfigurationError{
			Field:  "stages",
			Reason: fmt.Sprintf("stages cover years 1-%d, want full coverage of years 1-%d", expected-1, HorizonYears),
		}
	}
	return schedule, nil
}

// ResolveConvergenceSchedule linearly converges from initial (year 1) to
// terminal (year HorizonYears). This is the fallback mode when no explicit
// stage table is supplied. The endpoints are exact: w = i/(HorizonYears-1)
// is 0 at the first year and exactly 1 at the last.
func ResolveConvergenceSchedule(initial, terminal float64) []float64 {
	schedule := make([]float64, HorizonYears)
	for i := 0; i < HorizonYears; i++ {
		w := float64(i) / float64(HorizonYears-1)
		schedule[i] = initial*(1-w) + terminal*w
	}
	return schedule
}

// CheckTerminalLinkage reports whether the final stage's rate lands on the
// terminal growth rate used for the post-horizon perpetuity. Advisory: the
// resolver itself does not reject a mismatch, callers surface it.
func CheckTerminalLinkage(stages []GrowthStage, terminalGrowth float64) bool {
	if len(stages) == 0 {
		return false
	}
	last := stages[len(stages)-1]
	return math.Abs(last.GrowthRate-terminalGrowth) < 1e-9
}
