// Command dcf runs the projection engine against a YAML scenario file and
// renders the 10-year table and valuation summary to the terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"valuation_engine/pkg/core/assumption"
	"valuation_engine/pkg/core/dcf"
	"valuation_engine/pkg/core/report"
)

// Scenario is the YAML input shape. Growth comes either from a stage
// table or from an (initial, terminal) pair.
type Scenario struct {
	Ticker      string             `yaml:"ticker"`
	ModelType   string             `yaml:"model_type"`
	Assumptions map[string]float64 `yaml:"assumptions"`
	Stages      []dcf.GrowthStage  `yaml:"stages"`
	Growth      *struct {
		Initial  float64 `yaml:"initial"`
		Terminal float64 `yaml:"terminal"`
	} `yaml:"growth"`
	NetDebt float64 `yaml:"net_debt"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dcf",
		Short: "10-year DCF projection and valuation",
	}
	rootCmd.AddCommand(runCmd(), waccCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var asMarkdown bool

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a DCF scenario file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly 1 scenario file argument")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.AutomaticEnv()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var sc Scenario
			if err := yaml.Unmarshal(data, &sc); err != nil {
				return fmt.Errorf("parse yaml %s: %w", args[0], err)
			}
			if sc.ModelType == "" {
				sc.ModelType = string(assumption.ModelGenericDCF)
			}
			// Env override, e.g. DCF_NET_DEBT=0 for quick sensitivity checks
			if s := viper.GetString("DCF_NET_DEBT"); s != "" {
				nd, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("parse DCF_NET_DEBT: %w", err)
				}
				sc.NetDebt = nd
			}

			a := assumption.BuildAssumptions(sc.Assumptions)

			var schedule []float64
			switch {
			case len(sc.Stages) > 0:
				schedule, err = dcf.ResolveStageSchedule(sc.Stages)
				if err != nil {
					return err
				}
			case sc.Growth != nil:
				schedule = dcf.ResolveConvergenceSchedule(sc.Growth.Initial, sc.Growth.Terminal)
			default:
				return errors.New("scenario needs either stages or a growth: {initial, terminal} pair")
			}

			series, summary, err := dcf.Run(a, schedule, dcf.BridgeInputs{NetDebt: sc.NetDebt})
			if err != nil {
				return err
			}

			if asMarkdown {
				md, err := report.Build(report.Input{
					Ticker:      sc.Ticker,
					ModelType:   sc.ModelType,
					Assumptions: a,
					Schedule:    schedule,
					Series:      series,
					Summary:     summary,
				})
				if err != nil {
					return err
				}
				fmt.Println(md)
				return nil
			}

			renderSeries(series)
			renderSummary(sc, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "emit the committee report as markdown instead of tables")
	return cmd
}

func renderSeries(series dcf.ProjectionSeries) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Year", "Growth", "Revenue", "EBITDA", "EBIT", "NOPAT", "FCFF", "DF", "PV"})
	for _, y := range series {
		t.AppendRow(table.Row{
			y.Year,
			report.Percent(y.RevenueGrowthRate, false),
			report.Abbreviate(y.Revenue),
			report.Abbreviate(y.EBITDA),
			report.Abbreviate(y.EBIT),
			report.Abbreviate(y.NOPAT),
			report.Abbreviate(y.FreeCashFlow),
			fmt.Sprintf("%.4f", y.DiscountFactor),
			report.Abbreviate(y.PresentValue),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	t.Render()
}

func renderSummary(sc Scenario, s *dcf.ValuationSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Valuation", sc.Ticker})
	t.AppendRows([]table.Row{
		{"PV of FCFF (10y)", report.Abbreviate(s.SumOfPV)},
		{"PV of Terminal Value", report.Abbreviate(s.TerminalValuePV)},
		{"Enterprise Value", report.Abbreviate(s.EnterpriseValue)},
		{"Net Debt", report.Abbreviate(sc.NetDebt)},
		{"Equity Value", report.Abbreviate(s.EquityValue)},
		{"Intrinsic Value / Share", fmt.Sprintf("%.2f", s.IntrinsicValuePerShare)},
		{"Upside / Downside", report.Percent(s.UpsideDownsidePct, true)},
	})
	t.Render()
}

func waccCmd() *cobra.Command {
	input := dcf.WACCInput{}

	cmd := &cobra.Command{
		Use:   "wacc",
		Short: "Derive a discount rate via CAPM + Hamada",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := dcf.CalculateWACC(input)

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendRows([]table.Row{
				{"Levered Beta", fmt.Sprintf("%.3f", res.LeveredBeta)},
				{"Cost of Equity", report.Percent(res.CostOfEquity, false)},
				{"Cost of Debt (after-tax)", report.Percent(res.CostOfDebt, false)},
				{"Weight Equity", fmt.Sprintf("%.1f%%", res.WeightEquity*100)},
				{"Weight Debt", fmt.Sprintf("%.1f%%", res.WeightDebt*100)},
				{"WACC", report.Percent(res.WACC, false)},
			})
			t.Render()
			return nil
		},
	}

	cmd.Flags().Float64Var(&input.UnleveredBeta, "beta", 1.0, "unlevered beta")
	cmd.Flags().Float64Var(&input.RiskFreeRate, "risk-free", 4.0, "risk-free rate (%)")
	cmd.Flags().Float64Var(&input.MarketRiskPremium, "erp", 5.0, "equity risk premium (%)")
	cmd.Flags().Float64Var(&input.PreTaxCostOfDebt, "pretax-debt", 6.0, "pre-tax cost of debt (%)")
	cmd.Flags().Float64Var(&input.TaxRate, "tax", 25.0, "tax rate (%)")
	cmd.Flags().Float64Var(&input.DebtToEquityRatio, "de", 0.5, "target debt/equity ratio")
	return cmd
}
