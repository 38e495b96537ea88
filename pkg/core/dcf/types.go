// Package dcf implements the multi-year discounted cash flow projection
// core: growth-schedule resolution plus the year-by-year free-cash-flow
// engine and its valuation roll-up. Everything here is pure computation
// over in-memory inputs; callers own fetching, persistence and display.
package dcf

// Fallback percentages substituted when the caller omits the corresponding
// optional assumption. All other assumptions are required.
const (
	DefaultDepreciationPct   = 3.5
	DefaultCapexPct          = 5.0
	DefaultWorkingCapitalPct = 2.0
)

// Assumptions is the flat scalar input record for a projection run. Fields
// are pointers so an absent value is distinguishable from zero. All rate
// fields are percentages (12 means 12%); BaseRevenue is in base currency
// units and SharesOutstanding in share units consistent with it.
type Assumptions struct {
	EBITDAMargin       *float64 `json:"ebitda_margin"`
	TaxRate            *float64 `json:"tax_rate"`
	WACC               *float64 `json:"wacc"`
	TerminalGrowthRate *float64 `json:"terminal_growth_rate"`
	BaseRevenue        *float64 `json:"base_revenue"`
	CurrentPrice       *float64 `json:"current_price"`
	SharesOutstanding  *float64 `json:"shares_outstanding"`

	// Optional; fallback constants apply when nil.
	DepreciationPct   *float64 `json:"depreciation_percentage,omitempty"`
	CapexPct          *float64 `json:"capex_percentage,omitempty"`
	WorkingCapitalPct *float64 `json:"working_capital_percentage,omitempty"`
}

// Float returns a pointer to v, for building Assumptions from literals.
func Float(v float64) *float64 { return &v }

// resolved is the fully populated copy the engine iterates over.
type resolved struct {
	ebitdaMargin      float64
	taxRate           float64
	wacc              float64
	terminalGrowth    float64
	baseRevenue       float64
	currentPrice      float64
	sharesOutstanding float64
	depreciationPct   float64
	capexPct          float64
	workingCapitalPct float64
}

// resolve validates required fields and applies the three documented
// fallbacks. It fails before any projection row is built.
func (a *Assumptions) resolve() (resolved, error) {
	required := []struct {
		name string
		v    *float64
	}{
		{"ebitda_margin", a.EBITDAMargin},
		{"tax_rate", a.TaxRate},
		{"wacc", a.WACC},
		{"terminal_growth_rate", a.TerminalGrowthRate},
		{"base_revenue", a.BaseRevenue},
		{"current_price", a.CurrentPrice},
		{"shares_outstanding", a.SharesOutstanding},
	}
	for _, f := range required {
		if f.v == nil {
			return resolved{}, &ConfigurationError{Field: f.name, Reason: "required assumption missing"}
		}
	}

	r := resolved{
		ebitdaMargin:      *a.EBITDAMargin,
		taxRate:           *a.TaxRate,
		wacc:              *a.WACC,
		terminalGrowth:    *a.TerminalGrowthRate,
		baseRevenue:       *a.BaseRevenue,
		currentPrice:      *a.CurrentPrice,
		sharesOutstanding: *a.SharesOutstanding,
		depreciationPct:   DefaultDepreciationPct,
		capexPct:          DefaultCapexPct,
		workingCapitalPct: DefaultWorkingCapitalPct,
	}
	if a.DepreciationPct != nil {
		r.depreciationPct = *a.DepreciationPct
	}
	if a.CapexPct != nil {
		r.capexPct = *a.CapexPct
	}
	if a.WorkingCapitalPct != nil {
		r.workingCapitalPct = *a.WorkingCapitalPct
	}
	return r, nil
}

// YearProjection is one projected fiscal year. Values are plain base
// currency units; formatting belongs to consumers.
type YearProjection struct {
	Year                     int     `json:"year"`
	RevenueGrowthRate        float64 `json:"revenue_growth_rate"`
	Revenue                  float64 `json:"revenue"`
	EBITDA                   float64 `json:"ebitda"`
	DepreciationAmortization float64 `json:"depreciation_amortization"`
	EBIT                     float64 `json:"ebit"`
	Tax                      float64 `json:"tax"`
	NOPAT                    float64 `json:"nopat"`
	Capex                    float64 `json:"capex"`
	WorkingCapitalChange     float64 `json:"working_capital_change"`
	FreeCashFlow             float64 `json:"free_cash_flow"`
	DiscountFactor           float64 `json:"discount_factor"`
	PresentValue             float64 `json:"present_value"`
}

// ProjectionSeries holds the ten projected years in order. Rows are
// immutable after creation; any assumption change recomputes the whole
// series.
type ProjectionSeries []YearProjection

// BridgeInputs carries the externally sourced enterprise-to-equity bridge
// items. TerminalValuePV, when set, replaces the engine's internal
// Gordon-growth terminal value.
type BridgeInputs struct {
	NetDebt         float64  `json:"net_debt"`
	TerminalValuePV *float64 `json:"terminal_value_pv,omitempty"`
}

// ValuationSummary is the roll-up over a ProjectionSeries.
type ValuationSummary struct {
	SumOfPV                float64 `json:"sum_of_pv"`
	TerminalValuePV        float64 `json:"terminal_value_pv"`
	EnterpriseValue        float64 `json:"enterprise_value"`
	EquityValue            float64 `json:"equity_value"`
	IntrinsicValuePerShare float64 `json:"intrinsic_value_per_share"`
	UpsideDownsidePct      float64 `json:"upside_downside_pct"`
}
