package fundamentals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_GetCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/company/ACME" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ticker": "ACME",
			"name": "Acme Corp",
			"base_revenue": 100000,
			"current_price": 50,
			"shares_outstanding": 1000,
			"net_debt": 20000,
			"default_assumptions": {"ebitda_margin": 26}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.GetCompany(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BaseRevenue != 100000 || got.CurrentPrice != 50 || got.SharesOutstanding != 1000 {
		t.Errorf("unexpected fundamentals: %+v", got)
	}
	if got.Defaults["ebitda_margin"] != 26 {
		t.Errorf("default assumptions should pass through, got %+v", got.Defaults)
	}
}

func TestClient_GetCompanyNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.GetCompany(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for unknown ticker, got nil")
	}
}

func TestClient_EmptyTicker(t *testing.T) {
	c := NewClient("http://localhost:9")
	if _, err := c.GetCompany(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty ticker, got nil")
	}
}

func TestGrowthEstimateFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table>
			<tr><td>Current Qtr.</td><td>4.1%</td></tr>
			<tr><td>Growth Estimate Next 5 Years (per annum)</td><td>12.50%</td></tr>
		</table></body></html>`))
	}))
	defer srv.Close()

	f := NewGrowthEstimateFetcher()
	rate, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 12.5 {
		t.Errorf("expected 12.5, got %v", rate)
	}
}

func TestGrowthEstimateFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>no tables here</p></body></html>`))
	}))
	defer srv.Close()

	f := NewGrowthEstimateFetcher()
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error when no estimate is present, got nil")
	}
}

func TestParsePercent(t *testing.T) {
	cases := map[string]float64{
		"12.5%":  12.5,
		" 3 %":   3,
		"1,250%": 1250,
		"-4.2":   -4.2,
	}
	for in, want := range cases {
		got, err := ParsePercent(in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", in, got, want)
		}
	}

	if _, err := ParsePercent("n/a"); err == nil {
		t.Error("expected error for non-numeric input, got nil")
	}
}
