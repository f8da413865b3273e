package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/username/lotfolio/backend/src/config"
	"github.com/username/lotfolio/backend/src/logger"
	"golang.org/x/net/publicsuffix"
)

// yahooChartResponse mirrors the subset of the chart endpoint we read: a
// symbol is considered recognized when the response carries a regular
// market price for it.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

type tickerServiceImpl struct {
	httpClient  *http.Client
	baseURL     string
	tickerCache *cache.Cache
}

// NewTickerService builds the market data lookup client. The cookie jar
// keeps Yahoo's consent cookies across calls, which the chart endpoint
// requires for some regions.
func NewTickerService(tickerCache *cache.Cache) TickerService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Warn("Failed to create cookie jar for ticker lookups, proceeding without one", "error", err)
	}
	return &tickerServiceImpl{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: config.Cfg.TickerLookupTimeout,
		},
		baseURL:     config.Cfg.MarketDataBaseURL,
		tickerCache: tickerCache,
	}
}

// ValidateSymbol asks the provider whether the symbol exists. Verdicts are
// cached either way; transport or decode failures are returned as errors so
// callers can decide whether to accept the trade anyway.
func (s *tickerServiceImpl) ValidateSymbol(symbol string) (bool, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false, nil
	}

	cacheKey := "ticker:" + symbol
	if cached, found := s.tickerCache.Get(cacheKey); found {
		if valid, ok := cached.(bool); ok {
			return valid, nil
		}
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", s.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("building ticker lookup request for %s: %w", symbol, err)
	}
	// The endpoint rejects requests without a browser-like User-Agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("ticker lookup for %s failed: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		s.tickerCache.Set(cacheKey, false, TickerCacheExpiration)
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.L.Warn("Unexpected status from market data provider", "symbol", symbol, "status", resp.StatusCode, "body", string(body))
		return false, fmt.Errorf("ticker lookup for %s returned status %d", symbol, resp.StatusCode)
	}

	var chartResp yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartResp); err != nil {
		return false, fmt.Errorf("decoding ticker lookup response for %s: %w", symbol, err)
	}

	valid := len(chartResp.Chart.Result) > 0 && chartResp.Chart.Result[0].Meta.RegularMarketPrice > 0
	s.tickerCache.Set(cacheKey, valid, TickerCacheExpiration)
	logger.L.Debug("Ticker symbol validated", "symbol", symbol, "valid", valid)
	return valid, nil
}
