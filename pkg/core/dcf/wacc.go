package dcf

// WACCInput holds the cost-of-capital drivers. Rates are percentages to
// stay consistent with Assumptions; DebtToEquityRatio is unitless.
type WACCInput struct {
	UnleveredBeta     float64 `json:"unlevered_beta"`
	RiskFreeRate      float64 `json:"risk_free_rate"`      // %
	MarketRiskPremium float64 `json:"market_risk_premium"` // %
	PreTaxCostOfDebt  float64 `json:"pretax_cost_of_debt"` // %
	TaxRate           float64 `json:"tax_rate"`            // %
	DebtToEquityRatio float64 `json:"debt_to_equity"`      // target D/E
}

// WACCResult holds the derived rates, all in percent.
type WACCResult struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // after-tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// CalculateWACC derives a discount rate from CAPM plus the Hamada
// relevering equation. Useful for seeding the wacc assumption when the
// caller prefers building it bottom-up instead of supplying it directly.
func CalculateWACC(input WACCInput) WACCResult {
	t := input.TaxRate / 100

	// Hamada: BetaL = BetaU * (1 + (1-t)*(D/E))
	leveredBeta := input.UnleveredBeta * (1 + (1-t)*input.DebtToEquityRatio)

	// CAPM: Ke = Rf + BetaL * ERP
	ke := input.RiskFreeRate + leveredBeta*input.MarketRiskPremium

	// After-tax cost of debt
	kd := input.PreTaxCostOfDebt * (1 - t)

	// With D/E = x: Wd = x/(1+x), We = 1/(1+x)
	wd := input.DebtToEquityRatio / (1 + input.DebtToEquityRatio)
	we := 1.0 / (1 + input.DebtToEquityRatio)

	return WACCResult{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         ke*we + kd*wd,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}
