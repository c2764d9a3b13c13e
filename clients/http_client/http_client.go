package http_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"moatmap/types"

	"go.uber.org/zap"
)

var client = &http.Client{
	Timeout: 15 * time.Second,
}

// statementPath maps a statement kind to the provider's endpoint segment.
var statementPath = map[string]string{
	"income":   "income-statement",
	"balance":  "balance-sheet-statement",
	"cashflow": "cash-flow-statement",
}

func baseURL() string {
	return os.Getenv("FUNDAMENTALS_API_URL")
}

func get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Add("apikey", os.Getenv("FUNDAMENTALS_API_KEY"))
	endpoint := fmt.Sprintf("%s/%s?%s", baseURL(), path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request to fundamentals API: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching from fundamentals API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		zap.L().Error("Received non-200 response code",
			zap.Int("status_code", resp.StatusCode),
			zap.String("path", path),
			zap.String("body", string(bodyBytes)))
		return nil, fmt.Errorf("received non-200 response code from fundamentals API: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// GetProfile fetches the company profile record for a ticker. The provider
// returns a one-element array; absent fields stay at their zero value.
func GetProfile(ctx context.Context, ticker string) (types.CompanyProfile, error) {
	var profile types.CompanyProfile

	body, err := get(ctx, "profile/"+url.PathEscape(ticker), url.Values{})
	if err != nil {
		return profile, err
	}

	var profiles []types.CompanyProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		zap.L().Error("Failed to unmarshal profile response", zap.String("ticker", ticker), zap.Error(err))
		return profile, err
	}
	if len(profiles) == 0 {
		return profile, fmt.Errorf("empty profile response for %s", ticker)
	}
	profile = profiles[0]
	if profile.Ticker == "" {
		profile.Ticker = ticker
	}
	return profile, nil
}

// GetStatement fetches up to limit annual periods of one statement for a
// ticker, newest-first as the provider delivers them.
func GetStatement(ctx context.Context, ticker, kind string, limit int) ([]types.Period, error) {
	path, ok := statementPath[kind]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind: %s", kind)
	}

	params := url.Values{}
	params.Add("period", "annual")
	params.Add("limit", fmt.Sprintf("%d", limit))

	body, err := get(ctx, path+"/"+url.PathEscape(ticker), params)
	if err != nil {
		return nil, err
	}

	var periods []types.Period
	if err := json.Unmarshal(body, &periods); err != nil {
		zap.L().Error("Failed to unmarshal statement response",
			zap.String("ticker", ticker), zap.String("kind", kind), zap.Error(err))
		return nil, err
	}
	return periods, nil
}

// GetPage fetches an arbitrary HTML page, used for scraping index
// constituents into the ticker universe.
func GetPage(pageURL string) (io.ReadCloser, error) {
	resp, err := client.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the URL: %v", err)
	}
	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to retrieve the content, status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
