package report

import (
	"fmt"
	"math"
)

// Abbreviate renders a base-currency amount in compact form (12.4K, 3.2M,
// 1.1B, 2.0T). The engine emits raw floats; all display formatting lives
// on this side of the boundary.
func Abbreviate(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}

	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%s%.2fT", sign, abs/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s%.1fK", sign, abs/1e3)
	default:
		return fmt.Sprintf("%s%.2f", sign, abs)
	}
}

// Percent renders a percentage with an explicit sign for deltas.
func Percent(v float64, signed bool) string {
	if signed && v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}
