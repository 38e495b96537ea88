package dcf

import (
	"fmt"
	"math"
)

// Project builds the 10-year projection table from assumptions and a
// resolved growth schedule. Pure function: no I/O, no retained state,
// safe for concurrent callers.
func Project(a *Assumptions, schedule []float64) (ProjectionSeries, error) {
	r, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if len(schedule) != HorizonYears {
		return nil, &ConfigurationError{
			Field:  "schedule",
			Reason: fmt.Sprintf("got %d growth rates, want %d", len(schedule), HorizonYears),
		}
	}

	series := make(ProjectionSeries, 0, HorizonYears)
	prevRevenue := r.baseRevenue
	for i := 0; i < HorizonYears; i++ {
		year := i + 1
		growth := schedule[i]

		revenue := prevRevenue * (1 + growth/100)
		ebitda := revenue * r.ebitdaMargin / 100
		da := revenue * r.depreciationPct / 100
		ebit := ebitda - da

		// Tax on EBIT, never EBITDA, floored at zero: negative EBIT
		// carries no tax benefit.
		tax := ebit * r.taxRate / 100
		if tax < 0 {
			tax = 0
		}
		nopat := ebit - tax

		capex := revenue * r.capexPct / 100

		// Year 1 has no prior-year revenue to diff against and uses the
		// absolute revenue level instead of a delta.
		var wcChange float64
		if year == 1 {
			wcChange = revenue * r.workingCapitalPct / 100
		} else {
			wcChange = (revenue - prevRevenue) * r.workingCapitalPct / 100
		}

		// FCFF = NOPAT + D&A - CapEx - change in working capital
		fcff := nopat + da - capex - wcChange

		df := 1 / math.Pow(1+r.wacc/100, float64(year))

		series = append(series, YearProjection{
			Year:                     year,
			RevenueGrowthRate:        growth,
			Revenue:                  revenue,
			EBITDA:                   ebitda,
			DepreciationAmortization: da,
			EBIT:                     ebit,
			Tax:                      tax,
			NOPAT:                    nopat,
			Capex:                    capex,
			WorkingCapitalChange:     wcChange,
			FreeCashFlow:             fcff,
			DiscountFactor:           df,
			PresentValue:             fcff * df,
		})
		prevRevenue = revenue
	}
	return series, nil
}

// Summarize rolls a projection series up into the valuation aggregates.
// When bridge.TerminalValuePV is nil the terminal value is computed here
// via a Gordon-growth perpetuity on year-10 FCFF, which requires
// wacc > terminal growth.
func Summarize(series ProjectionSeries, a *Assumptions, bridge BridgeInputs) (*ValuationSummary, error) {
	r, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if len(series) != HorizonYears {
		return nil, &ConfigurationError{
			Field:  "series",
			Reason: fmt.Sprintf("got %d projected years, want %d", len(series), HorizonYears),
		}
	}

	var sumPV float64
	for _, y := range series {
		sumPV += y.PresentValue
	}

	var tvPV float64
	if bridge.TerminalValuePV != nil {
		tvPV = *bridge.TerminalValuePV
	} else {
		if r.wacc <= r.terminalGrowth {
			return nil, &DomainError{
				Reason: fmt.Sprintf("wacc %.2f%% must exceed terminal growth %.2f%% for a finite perpetuity", r.wacc, r.terminalGrowth),
			}
		}
		final := series[HorizonYears-1]
		tv := final.FreeCashFlow * (1 + r.terminalGrowth/100) / ((r.wacc - r.terminalGrowth) / 100)
		tvPV = tv * final.DiscountFactor
	}

	ev := sumPV + tvPV
	equity := ev - bridge.NetDebt

	perShare := 0.0
	if r.sharesOutstanding != 0 {
		perShare = equity / r.sharesOutstanding
	}
	upside := 0.0
	if r.currentPrice != 0 {
		upside = (perShare - r.currentPrice) / r.currentPrice * 100
	}

	return &ValuationSummary{
		SumOfPV:                sumPV,
		TerminalValuePV:        tvPV,
		EnterpriseValue:        ev,
		EquityValue:            equity,
		IntrinsicValuePerShare: perShare,
		UpsideDownsidePct:      upside,
	}, nil
}

// Run is the convenience wrapper combining Project and Summarize for a
// single (assumptions, schedule) pair.
func Run(a *Assumptions, schedule []float64, bridge BridgeInputs) (ProjectionSeries, *ValuationSummary, error) {
	series, err := Project(a, schedule)
	if err != nil {
		return nil, nil, err
	}
	summary, err := Summarize(series, a, bridge)
	if err != nil {
		return nil, nil, err
	}
	return series, summary, nil
}
