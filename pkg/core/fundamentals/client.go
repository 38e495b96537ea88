// Package fundamentals is the thin client for the backend analysis API
// that supplies company base data (revenue, price, shares, net debt and
// per-ticker default assumptions). The valuation core treats this data as
// opaque input and never recomputes it.
package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// CompanyFundamentals is the per-ticker payload the analysis API returns.
// Monetary values are in base currency units.
type CompanyFundamentals struct {
	Ticker            string             `json:"ticker"`
	Name              string             `json:"name"`
	BaseRevenue       float64            `json:"base_revenue"`
	CurrentPrice      float64            `json:"current_price"`
	SharesOutstanding float64            `json:"shares_outstanding"`
	NetDebt           float64            `json:"net_debt"`
	Defaults          map[string]float64 `json:"default_assumptions,omitempty"`
}

// Client talks to the analysis API. The API key is read from
// ANALYSIS_API_KEY (loaded via godotenv at startup).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("ANALYSIS_API_KEY"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GetCompany fetches fundamentals for a ticker.
func (c *Client) GetCompany(ctx context.Context, ticker string) (*CompanyFundamentals, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	url := fmt.Sprintf("%s/api/company/%s", c.baseURL, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fundamentals fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("ticker not found: %s", ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fundamentals fetch: unexpected status %d", resp.StatusCode)
	}

	var out CompanyFundamentals
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode fundamentals: %w", err)
	}
	if out.Ticker == "" {
		out.Ticker = ticker
	}
	return &out, nil
}
