package assumption

import (
	"os"
	"path/filepath"
	"testing"

	"valuation_engine/pkg/core/dcf"
)

func TestCatalog_Definitions(t *testing.T) {
	c := NewCatalog()

	for _, model := range c.Models() {
		defs, err := c.Definitions(model)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", model, err)
		}
		if len(defs) == 0 {
			t.Errorf("%s: catalog should not be empty", model)
		}
		for _, d := range defs {
			if d.Key == "" {
				t.Errorf("%s: definition without key", model)
			}
			if d.Min > d.Max {
				t.Errorf("%s/%s: min %v above max %v", model, d.Key, d.Min, d.Max)
			}
			if d.Default < d.Min || d.Default > d.Max {
				t.Errorf("%s/%s: default %v outside [%v,%v]", model, d.Key, d.Default, d.Min, d.Max)
			}
		}
	}
}

func TestCatalog_UnknownModel(t *testing.T) {
	c := NewCatalog()
	if _, err := c.Definitions(ModelType("crypto")); err == nil {
		t.Fatal("expected error for unknown model type, got nil")
	}
	if _, err := c.DefaultValues(ModelType("crypto")); err == nil {
		t.Fatal("expected error for unknown model type, got nil")
	}
}

func TestCatalog_DefaultValuesFeedEngine(t *testing.T) {
	c := NewCatalog()
	values, err := c.DefaultValues(ModelGenericDCF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Company-specific inputs come from the fundamentals collaborator.
	values["base_revenue"] = 100000
	values["current_price"] = 42
	values["shares_outstanding"] = 500

	a := BuildAssumptions(values)
	schedule := dcf.ResolveConvergenceSchedule(values["initial_growth_rate"], values["terminal_growth_rate"])
	if _, _, err := dcf.Run(a, schedule, dcf.BridgeInputs{}); err != nil {
		t.Fatalf("generic defaults should produce a valid run: %v", err)
	}
}

func TestBuildAssumptions_OmitsAbsentKeys(t *testing.T) {
	a := BuildAssumptions(map[string]float64{"ebitda_margin": 26, "tax_rate": 0})

	if a.EBITDAMargin == nil || *a.EBITDAMargin != 26 {
		t.Error("present key should be set")
	}
	if a.TaxRate == nil || *a.TaxRate != 0 {
		t.Error("explicit zero must survive as zero, not as missing")
	}
	if a.WACC != nil {
		t.Error("absent key must stay nil so the engine can flag it")
	}
}

func TestCatalog_LoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.hjson")
	content := `{
  // trimmed-down generic panel
  generic_dcf: [
    {key: "ebitda_margin", label: "EBITDA Margin", min: 0, max: 80, step: 1, unit: "%", category: "margins", default: 30}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c := NewCatalog()
	if err := c.LoadOverrides(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defs, _ := c.Definitions(ModelGenericDCF)
	if len(defs) != 1 || defs[0].Max != 80 {
		t.Errorf("override should replace the generic table, got %+v", defs)
	}

	// Untouched models keep their built-in tables.
	banking, _ := c.Definitions(ModelBankingExcess)
	if len(banking) == 0 {
		t.Error("banking table should be untouched by a generic-only override")
	}
}

func TestCatalog_LoadOverridesRejectsUnknownModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.hjson")
	content := `{crypto: [{key: "volatility", min: 0, max: 1, step: 0.1}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c := NewCatalog()
	if err := c.LoadOverrides(path); err == nil {
		t.Fatal("expected error for unknown model type, got nil")
	}

	// Catalog must be left untouched on failure.
	defs, _ := c.Definitions(ModelGenericDCF)
	if len(defs) == 0 {
		t.Error("failed override must not clear built-in tables")
	}
}
