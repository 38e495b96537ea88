// Package assumption supplies the per-model-type assumption catalogs that
// drive the valuation input panels. Each catalog entry carries a key, a
// [min,max] range, a step and a display category; range enforcement is a
// presentation concern, the projection engine only checks domain invariants.
//
// Only the generic DCF model feeds the projection engine. The banking and
// pharma models ship definitions only: their projection formulas were never
// specified, so nothing downstream consumes their values numerically.
package assumption

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"

	"valuation_engine/pkg/core/dcf"
)

// ModelType selects an assumption catalog.
type ModelType string

const (
	ModelGenericDCF    ModelType = "generic_dcf"
	ModelBankingExcess ModelType = "banking_excess_return"
	ModelPharmaRnD     ModelType = "pharma_rnd"
)

// Definition describes one configurable assumption.
type Definition struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Step     float64 `json:"step"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	Default  float64 `json:"default"`
}

// Catalog holds the definition tables for all model types. A Catalog is
// immutable after construction apart from LoadOverrides, which replaces
// tables wholesale.
type Catalog struct {
	models map[ModelType][]Definition
}

// NewCatalog returns a catalog populated with the built-in tables.
func NewCatalog() *Catalog {
	return &Catalog{models: map[ModelType][]Definition{
		ModelGenericDCF:    genericDefinitions(),
		ModelBankingExcess: bankingDefinitions(),
		ModelPharmaRnD:     pharmaDefinitions(),
	}}
}

// Models lists the supported model types in stable order.
func (c *Catalog) Models() []ModelType {
	return []ModelType{ModelGenericDCF, ModelBankingExcess, ModelPharmaRnD}
}

// Definitions returns the ordered assumption list for a model type.
func (c *Catalog) Definitions(model ModelType) ([]Definition, error) {
	defs, ok := c.models[model]
	if !ok {
		return nil, fmt.Errorf("unknown model type: %s", model)
	}
	out := make([]Definition, len(defs))
	copy(out, defs)
	return out, nil
}

// DefaultValues returns the seed value map for a model type.
func (c *Catalog) DefaultValues(model ModelType) (map[string]float64, error) {
	defs, ok := c.models[model]
	if !ok {
		return nil, fmt.Errorf("unknown model type: %s", model)
	}
	values := make(map[string]float64, len(defs))
	for _, d := range defs {
		values[d.Key] = d.Default
	}
	return values, nil
}

// LoadOverrides replaces catalog tables from an hjson file keyed by model
// type. A malformed file leaves the catalog untouched; there is no partial
// merge.
func (c *Catalog) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overrides %s: %w", path, err)
	}

	var raw map[string][]Definition
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse overrides %s: %w", path, err)
	}

	staged := make(map[ModelType][]Definition, len(raw))
	for key, defs := range raw {
		model := ModelType(key)
		if _, known := c.models[model]; !known {
			return fmt.Errorf("overrides %s: unknown model type %q", path, key)
		}
		if len(defs) == 0 {
			return fmt.Errorf("overrides %s: model %q has no definitions", path, key)
		}
		for _, d := range defs {
			if d.Key == "" {
				return fmt.Errorf("overrides %s: model %q has a definition without a key", path, key)
			}
		}
		staged[model] = defs
	}

	for model, defs := range staged {
		c.models[model] = defs
	}
	return nil
}

// BuildAssumptions maps a value map onto the engine's assumption record.
// Only keys present in the map are set, so the engine's required-field and
// fallback semantics stay in one place.
func BuildAssumptions(values map[string]float64) *dcf.Assumptions {
	a := &dcf.Assumptions{}
	set := func(key string, dst **float64) {
		if v, ok := values[key]; ok {
			vv := v
			*dst = &vv
		}
	}
	set("ebitda_margin", &a.EBITDAMargin)
	set("tax_rate", &a.TaxRate)
	set("wacc", &a.WACC)
	set("terminal_growth_rate", &a.TerminalGrowthRate)
	set("base_revenue", &a.BaseRevenue)
	set("current_price", &a.CurrentPrice)
	set("shares_outstanding", &a.SharesOutstanding)
	set("depreciation_percentage", &a.DepreciationPct)
	set("capex_percentage", &a.CapexPct)
	set("working_capital_percentage", &a.WorkingCapitalPct)
	return a
}

func genericDefinitions() []Definition {
	return []Definition{
		{Key: "initial_growth_rate", Label: "Initial Revenue Growth", Min: -20, Max: 60, Step: 0.5, Unit: "%", Category: "growth", Default: 10},
		{Key: "terminal_growth_rate", Label: "Terminal Growth Rate", Min: 0, Max: 6, Step: 0.25, Unit: "%", Category: "growth", Default: 3},
		{Key: "ebitda_margin", Label: "EBITDA Margin", Min: 0, Max: 60, Step: 0.5, Unit: "%", Category: "margins", Default: 22},
		{Key: "tax_rate", Label: "Effective Tax Rate", Min: 0, Max: 50, Step: 0.5, Unit: "%", Category: "margins", Default: 25},
		{Key: "depreciation_percentage", Label: "D&A (% of Revenue)", Min: 0, Max: 15, Step: 0.25, Unit: "%", Category: "reinvestment", Default: dcf.DefaultDepreciationPct},
		{Key: "capex_percentage", Label: "CapEx (% of Revenue)", Min: 0, Max: 20, Step: 0.25, Unit: "%", Category: "reinvestment", Default: dcf.DefaultCapexPct},
		{Key: "working_capital_percentage", Label: "Working Capital (% of Revenue Growth)", Min: 0, Max: 15, Step: 0.25, Unit: "%", Category: "reinvestment", Default: dcf.DefaultWorkingCapitalPct},
		{Key: "wacc", Label: "WACC", Min: 4, Max: 25, Step: 0.25, Unit: "%", Category: "discounting", Default: 10},
	}
}

func bankingDefinitions() []Definition {
	return []Definition{
		{Key: "return_on_equity", Label: "Return on Equity", Min: 0, Max: 35, Step: 0.5, Unit: "%", Category: "profitability", Default: 13},
		{Key: "cost_of_equity", Label: "Cost of Equity", Min: 4, Max: 20, Step: 0.25, Unit: "%", Category: "discounting", Default: 11},
		{Key: "cet1_ratio", Label: "CET1 Capital Ratio", Min: 8, Max: 20, Step: 0.25, Unit: "%", Category: "capital", Default: 12.5},
		{Key: "rwa_growth", Label: "Risk-Weighted Asset Growth", Min: -5, Max: 20, Step: 0.5, Unit: "%", Category: "growth", Default: 6},
		{Key: "payout_ratio", Label: "Dividend Payout Ratio", Min: 0, Max: 100, Step: 1, Unit: "%", Category: "capital", Default: 40},
		{Key: "terminal_growth_rate", Label: "Terminal Growth Rate", Min: 0, Max: 5, Step: 0.25, Unit: "%", Category: "growth", Default: 2.5},
	}
}

func pharmaDefinitions() []Definition {
	return []Definition{
		{Key: "rd_percentage", Label: "R&D (% of Revenue)", Min: 5, Max: 35, Step: 0.5, Unit: "%", Category: "reinvestment", Default: 18},
		{Key: "success_probability", Label: "Pipeline Success Probability", Min: 0, Max: 100, Step: 1, Unit: "%", Category: "pipeline", Default: 30},
		{Key: "peak_sales_growth", Label: "Peak Sales Growth", Min: 0, Max: 40, Step: 0.5, Unit: "%", Category: "growth", Default: 15},
		{Key: "patent_cliff_year", Label: "Patent Cliff Year", Min: 1, Max: 10, Step: 1, Unit: "yr", Category: "pipeline", Default: 7},
		{Key: "wacc", Label: "WACC", Min: 6, Max: 20, Step: 0.25, Unit: "%", Category: "discounting", Default: 9.5},
		{Key: "terminal_growth_rate", Label: "Terminal Growth Rate", Min: 0, Max: 5, Step: 0.25, Unit: "%", Category: "growth", Default: 2},
	}
}
