package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"valuation_engine/pkg/core/assumption"
	"valuation_engine/pkg/core/dcf"
	"valuation_engine/pkg/core/fundamentals"
	"valuation_engine/pkg/core/report"
	"valuation_engine/pkg/core/store"
)

var (
	cache      *store.ValuationCache
	fundClient *fundamentals.Client
	catalog    *assumption.Catalog
)

// InitHandler wires the handler's collaborators. Call once at startup.
func InitHandler(c *store.ValuationCache, f *fundamentals.Client, cat *assumption.Catalog) {
	cache = c
	fundClient = f
	catalog = cat
}

// DCFRequest is the valuation request body. Assumptions absent from the
// map fall back to fundamentals-supplied defaults where available; the
// engine flags anything still missing.
type DCFRequest struct {
	Ticker            string             `json:"ticker"`
	ModelType         string             `json:"model_type,omitempty"`
	Assumptions       map[string]float64 `json:"assumptions,omitempty"`
	GrowthStages      []dcf.GrowthStage  `json:"growth_stages,omitempty"`
	InitialGrowthRate *float64           `json:"initial_growth_rate,omitempty"`
	NetDebt           *float64           `json:"net_debt,omitempty"`
}

// DCFResponse is the valuation response payload.
type DCFResponse struct {
	Ticker         string                `json:"ticker"`
	CompanyName    string                `json:"company_name,omitempty"`
	ModelType      string                `json:"model_type"`
	Key            string                `json:"key"`
	Cached         bool                  `json:"cached"`
	Schedule       []float64             `json:"schedule"`
	Series         dcf.ProjectionSeries  `json:"series"`
	Summary        *dcf.ValuationSummary `json:"summary"`
	TerminalLinked *bool                 `json:"terminal_linked,omitempty"`
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// writeEngineError maps the core error taxonomy onto HTTP statuses:
// caller-input problems are 400, mathematically invalid combinations 422.
func writeEngineError(w http.ResponseWriter, err error) {
	var cfgErr *dcf.ConfigurationError
	if errors.As(err, &cfgErr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var domErr *dcf.DomainError
	if errors.As(err, &domErr) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// HandleDCFValuation computes (or serves from cache) a full 10-year DCF
// for a ticker.
func HandleDCFValuation(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, status, err := runValuation(r)
	if err != nil {
		if status == 0 {
			writeEngineError(w, err)
		} else {
			http.Error(w, err.Error(), status)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleDCFReport runs the same valuation and responds with the rendered
// markdown report instead of raw JSON.
func HandleDCFReport(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, status, err := runValuation(r)
	if err != nil {
		if status == 0 {
			writeEngineError(w, err)
		} else {
			http.Error(w, err.Error(), status)
		}
		return
	}

	md, err := report.Build(report.Input{
		Ticker:      resp.Ticker,
		CompanyName: resp.CompanyName,
		ModelType:   resp.ModelType,
		Assumptions: resp.assumptions,
		Schedule:    resp.Schedule,
		Series:      resp.Series,
		Summary:     resp.Summary,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("report build failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

// internal carries the assumptions through to the report path without
// exposing them in the JSON response.
type valuationResult struct {
	DCFResponse
	assumptions *dcf.Assumptions
}

func runValuation(r *http.Request) (*valuationResult, int, error) {
	var req DCFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("ticker is required")
	}

	model := req.ModelType
	if model == "" {
		model = string(assumption.ModelGenericDCF)
	}
	if _, err := catalog.Definitions(assumption.ModelType(model)); err != nil {
		return nil, http.StatusBadRequest, err
	}

	values := make(map[string]float64, len(req.Assumptions))
	for k, v := range req.Assumptions {
		values[k] = v
	}

	// Pull company-level inputs from the analysis API only when the caller
	// left a base input unset. Net debt alone never triggers a fetch; an
	// absent net_debt rides along as backfill when a fetch happens anyway
	// and defaults to zero otherwise.
	var companyName string
	netDebt := 0.0
	if req.NetDebt != nil {
		netDebt = *req.NetDebt
	}
	needsFundamentals := false
	for _, key := range []string{"base_revenue", "current_price", "shares_outstanding"} {
		if _, ok := values[key]; !ok {
			needsFundamentals = true
		}
	}
	if needsFundamentals && fundClient != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		fund, err := fundClient.GetCompany(ctx, ticker)
		if err != nil {
			fmt.Printf("[VALUATION] Fundamentals fetch failed for %s: %v\n", ticker, err)
		} else {
			companyName = fund.Name
			fill := func(key string, v float64) {
				if _, ok := values[key]; !ok {
					values[key] = v
				}
			}
			fill("base_revenue", fund.BaseRevenue)
			fill("current_price", fund.CurrentPrice)
			fill("shares_outstanding", fund.SharesOutstanding)
			for k, v := range fund.Defaults {
				fill(k, v)
			}
			if req.NetDebt == nil {
				netDebt = fund.NetDebt
			}
		}
	}

	assumptions := assumption.BuildAssumptions(values)

	// Growth schedule: explicit stage table wins, else linear convergence
	// from the initial rate down to the terminal rate.
	var (
		schedule       []float64
		terminalLinked *bool
		err            error
	)
	if len(req.GrowthStages) > 0 {
		schedule, err = dcf.ResolveStageSchedule(req.GrowthStages)
		if err != nil {
			return nil, 0, err
		}
		if assumptions.TerminalGrowthRate != nil {
			linked := dcf.CheckTerminalLinkage(req.GrowthStages, *assumptions.TerminalGrowthRate)
			terminalLinked = &linked
			if !linked {
				fmt.Printf("[VALUATION] %s: final growth stage does not land on the terminal rate\n", ticker)
			}
		}
	} else {
		initial := 0.0
		switch {
		case req.InitialGrowthRate != nil:
			initial = *req.InitialGrowthRate
		default:
			v, ok := values["initial_growth_rate"]
			if !ok {
				return nil, 0, &dcf.ConfigurationError{Field: "initial_growth_rate", Reason: "required when no stage table is supplied"}
			}
			initial = v
		}
		if assumptions.TerminalGrowthRate == nil {
			return nil, 0, &dcf.ConfigurationError{Field: "terminal_growth_rate", Reason: "required assumption missing"}
		}
		schedule = dcf.ResolveConvergenceSchedule(initial, *assumptions.TerminalGrowthRate)
	}

	bridge := dcf.BridgeInputs{NetDebt: netDebt}
	key := store.CacheKey(ticker, assumptions, schedule, bridge)
	if cache != nil {
		entry, err := cache.Get(r.Context(), key)
		if err != nil {
			fmt.Printf("[WARNING] Cache lookup failed for %s: %v\n", ticker, err)
		}
		if entry != nil {
			fmt.Printf("[VALUATION] CACHE HIT for %s (%s)\n", ticker, key[:12])
			return &valuationResult{
				DCFResponse: DCFResponse{
					Ticker:         ticker,
					CompanyName:    companyName,
					ModelType:      model,
					Key:            key,
					Cached:         true,
					Schedule:       entry.Schedule,
					Series:         entry.Series,
					Summary:        entry.Summary,
					TerminalLinked: terminalLinked,
				},
				assumptions: assumptions,
			}, 0, nil
		}
	}

	series, summary, err := dcf.Run(assumptions, schedule, bridge)
	if err != nil {
		return nil, 0, err
	}
	fmt.Printf("[VALUATION] Computed %s: EV=%.0f, per-share=%.2f\n", ticker, summary.EnterpriseValue, summary.IntrinsicValuePerShare)

	if cache != nil {
		entry := &store.CacheEntry{
			Ticker:    ticker,
			Key:       key,
			ModelType: model,
			Schedule:  schedule,
			Series:    series,
			Summary:   summary,
		}
		if err := cache.Save(r.Context(), entry); err != nil {
			fmt.Printf("[WARNING] Failed to cache valuation: %v\n", err)
		}
	}

	return &valuationResult{
		DCFResponse: DCFResponse{
			Ticker:         ticker,
			CompanyName:    companyName,
			ModelType:      model,
			Key:            key,
			Cached:         false,
			Schedule:       schedule,
			Series:         series,
			Summary:        summary,
			TerminalLinked: terminalLinked,
		},
		assumptions: assumptions,
	}, 0, nil
}
