// Package report renders committee-style valuation reports from the plain
// numeric output of the projection engine. The core emits raw values in
// base currency units; every display decision (abbreviation, percent
// formatting, table layout) happens here.
package report

import (
	"fmt"
	"strings"
	"time"

	"valuation_engine/pkg/core/dcf"
)

// Input carries everything a report needs. Series and Summary come from
// the engine unmodified.
type Input struct {
	Ticker      string
	CompanyName string
	ModelType   string
	Assumptions *dcf.Assumptions
	Schedule    []float64
	Series      dcf.ProjectionSeries
	Summary     *dcf.ValuationSummary
	GeneratedAt time.Time
}

// Build assembles the markdown report. It fails rather than emit a
// partial document when the series or summary is missing.
func Build(in Input) (string, error) {
	if len(in.Series) != dcf.HorizonYears {
		return "", fmt.Errorf("report needs a full %d-year series, got %d years", dcf.HorizonYears, len(in.Series))
	}
	if in.Summary == nil {
		return "", fmt.Errorf("report needs a valuation summary")
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	var b strings.Builder

	title := in.Ticker
	if in.CompanyName != "" {
		title = fmt.Sprintf("%s (%s)", in.CompanyName, in.Ticker)
	}
	fmt.Fprintf(&b, "# DCF Valuation — %s\n\n", title)
	fmt.Fprintf(&b, "Model: %s · Generated: %s\n\n", in.ModelType, in.GeneratedAt.Format("2006-01-02"))

	writeAssumptionSection(&b, in.Assumptions)
	writeProjectionTable(&b, in.Series)
	writeValuationBridge(&b, in.Summary)

	out := CleanMarkdown(b.String())
	if !ValidateMarkdown(out) {
		return "", fmt.Errorf("generated report failed markdown validation")
	}
	return out, nil
}

func writeAssumptionSection(b *strings.Builder, a *dcf.Assumptions) {
	if a == nil {
		return
	}
	b.WriteString("## Assumptions\n\n")
	b.WriteString("| Assumption | Value |\n|---|---|\n")

	row := func(label string, v *float64, unit string) {
		if v == nil {
			return
		}
		if unit == "%" {
			fmt.Fprintf(b, "| %s | %.2f%% |\n", label, *v)
		} else {
			fmt.Fprintf(b, "| %s | %s |\n", label, Abbreviate(*v))
		}
	}
	row("Base Revenue", a.BaseRevenue, "")
	row("EBITDA Margin", a.EBITDAMargin, "%")
	row("Tax Rate", a.TaxRate, "%")
	row("D&A (% of Revenue)", a.DepreciationPct, "%")
	row("CapEx (% of Revenue)", a.CapexPct, "%")
	row("Working Capital (% of Growth)", a.WorkingCapitalPct, "%")
	row("WACC", a.WACC, "%")
	row("Terminal Growth", a.TerminalGrowthRate, "%")
	row("Current Price", a.CurrentPrice, "")
	b.WriteString("\n")
}

func writeProjectionTable(b *strings.Builder, series dcf.ProjectionSeries) {
	b.WriteString("## 10-Year Cash Flow Projection\n\n")
	b.WriteString("| Year | Growth | Revenue | EBITDA | D&A | EBIT | Tax | NOPAT | CapEx | ΔWC | FCFF | PV |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, y := range series {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			y.Year,
			Percent(y.RevenueGrowthRate, false),
			Abbreviate(y.Revenue),
			Abbreviate(y.EBITDA),
			Abbreviate(y.DepreciationAmortization),
			Abbreviate(y.EBIT),
			Abbreviate(y.Tax),
			Abbreviate(y.NOPAT),
			Abbreviate(y.Capex),
			Abbreviate(y.WorkingCapitalChange),
			Abbreviate(y.FreeCashFlow),
			Abbreviate(y.PresentValue),
		)
	}
	b.WriteString("\n")
}

func writeValuationBridge(b *strings.Builder, s *dcf.ValuationSummary) {
	b.WriteString("## Valuation Bridge\n\n")
	b.WriteString("| Line Item | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| PV of Explicit FCFF (10y) | %s |\n", Abbreviate(s.SumOfPV))
	fmt.Fprintf(b, "| PV of Terminal Value | %s |\n", Abbreviate(s.TerminalValuePV))
	fmt.Fprintf(b, "| Enterprise Value | %s |\n", Abbreviate(s.EnterpriseValue))
	fmt.Fprintf(b, "| Equity Value | %s |\n", Abbreviate(s.EquityValue))
	fmt.Fprintf(b, "| Intrinsic Value / Share | %.2f |\n", s.IntrinsicValuePerShare)
	fmt.Fprintf(b, "| Upside / Downside | %s |\n", Percent(s.UpsideDownsidePct, true))
	b.WriteString("\n")

	switch {
	case s.UpsideDownsidePct > 0:
		fmt.Fprintf(b, "The model implies the shares trade **below** intrinsic value (%s upside).\n", Percent(s.UpsideDownsidePct, true))
	case s.UpsideDownsidePct < 0:
		fmt.Fprintf(b, "The model implies the shares trade **above** intrinsic value (%s downside).\n", Percent(s.UpsideDownsidePct, true))
	default:
		b.WriteString("The model implies the shares trade at intrinsic value.\n")
	}
}
