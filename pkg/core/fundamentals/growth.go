package fundamentals

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// GrowthEstimateFetcher scrapes a published analyst growth-estimate page
// for the consensus multi-year growth rate. Used to seed the initial
// growth rate when the caller supplies neither a stage table nor an
// explicit initial rate.
type GrowthEstimateFetcher struct {
	http      *http.Client
	userAgent string
}

func NewGrowthEstimateFetcher() *GrowthEstimateFetcher {
	return &GrowthEstimateFetcher{
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Fetch returns the growth rate in percent found on the estimate page.
// It looks for the label cell containing "next 5 years" and reads the
// adjacent value cell.
func (f *GrowthEstimateFetcher) Fetch(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("growth estimate fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("growth estimate fetch: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse estimate page: %w", err)
	}

	var rate float64
	found := false
	doc.Find("td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(s.Text()))
		if !strings.Contains(label, "next 5 years") {
			return true
		}
		value := strings.TrimSpace(s.Next().Text())
		r, err := ParsePercent(value)
		if err != nil {
			return true
		}
		rate = r
		found = true
		return false
	})

	if !found {
		return 0, fmt.Errorf("no growth estimate found at %s", url)
	}
	return rate, nil
}

// ParsePercent parses "12.5%" or "12.5" into 12.5.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse percent %q: %w", s, err)
	}
	return v, nil
}
