package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/username/lotfolio/backend/src/logger"
	"github.com/username/lotfolio/backend/src/model"
	"github.com/username/lotfolio/backend/src/models"
	"github.com/username/lotfolio/backend/src/processors"
	"github.com/username/lotfolio/backend/src/security/validation"
	"github.com/username/lotfolio/backend/src/utils"
)

type reportServiceImpl struct {
	db                *sql.DB
	gainProcessor     *processors.GainProcessor
	washSaleProcessor *processors.WashSaleProcessor
	reportCache       *cache.Cache
}

func NewReportService(
	db *sql.DB,
	gainProcessor *processors.GainProcessor,
	washSaleProcessor *processors.WashSaleProcessor,
	reportCache *cache.Cache,
) ReportService {
	return &reportServiceImpl{
		db:                db,
		gainProcessor:     gainProcessor,
		washSaleProcessor: washSaleProcessor,
		reportCache:       reportCache,
	}
}

// cacheKey builds a per-user, per-filter key. The filter is hashed so that
// every distinct combination caches independently.
func (s *reportServiceImpl) cacheKey(userID int64, filter models.TradeFilter) string {
	filterHash, err := utils.GenerateETag(filter)
	if err != nil {
		// Marshal of a plain struct cannot realistically fail; fall back to
		// an uncached-style key rather than erroring the report.
		filterHash = fmt.Sprintf("%+v", filter)
	}
	return fmt.Sprintf("report:%d:%s", userID, filterHash)
}

// GetReport fetches one consistent, ordered snapshot of the user's trades
// and runs both processors over it. The matcher and the detector are
// independent; an engine error from the matcher aborts the whole report.
func (s *reportServiceImpl) GetReport(userID int64, filter models.TradeFilter) (*models.ReportResult, error) {
	key := s.cacheKey(userID, filter)
	if cached, found := s.reportCache.Get(key); found {
		if result, ok := cached.(*models.ReportResult); ok {
			logger.L.Debug("Report served from cache", "userID", userID)
			return result, nil
		}
	}

	trades, err := model.GetTradesForUser(s.db, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("fetching trades for report: %w", err)
	}

	// Storage already orders by date; re-sort defensively since the matcher
	// depends on it for correctness.
	processors.SortByDate(trades)

	gains, err := s.gainProcessor.Process(trades)
	if err != nil {
		return nil, err
	}
	washSales := s.washSaleProcessor.Detect(trades)

	if gains == nil {
		gains = []models.RealizedGain{}
	}
	if washSales == nil {
		washSales = []models.WashSaleDisallowance{}
	}
	result := &models.ReportResult{Gains: gains, WashSales: washSales}

	s.reportCache.Set(key, result, cache.DefaultExpiration)
	logger.L.Info("Report computed", "userID", userID, "trades", len(trades), "gains", len(gains), "washSales", len(washSales))
	return result, nil
}

// WriteReportCSV renders the two-section CSV export: realized gains, a
// blank line, then wash-sale disallowances. Prices and losses use exactly
// two decimals; gain keeps its sign. Free-text fields go through the
// formula-injection guard.
func (s *reportServiceImpl) WriteReportCSV(w io.Writer, result *models.ReportResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Date", "Ticker", "Quantity", "Price Bought", "Price Sold", "Gain", "Notes"}); err != nil {
		return fmt.Errorf("writing gains header: %w", err)
	}
	for _, g := range result.Gains {
		record := []string{
			g.SellDate,
			g.Ticker,
			strconv.Itoa(g.Quantity),
			fmt.Sprintf("%.2f", g.PriceBought),
			fmt.Sprintf("%.2f", g.PriceSold),
			fmt.Sprintf("%.2f", g.Gain),
			validation.SanitizeForFormulaInjection(g.Notes),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing gain record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	// Blank line between the two sections.
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	writer = csv.NewWriter(w)
	if err := writer.Write([]string{"Sell Date", "Ticker", "Disallowed Loss", "Matched Buy Date"}); err != nil {
		return fmt.Errorf("writing wash sales header: %w", err)
	}
	for _, ws := range result.WashSales {
		record := []string{
			ws.SellDate,
			ws.Ticker,
			fmt.Sprintf("%.2f", ws.DisallowedLoss),
			ws.MatchedBuyDate,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing wash sale record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// InvalidateUserCache drops every cached report for the user. Called after
// any trade mutation.
func (s *reportServiceImpl) InvalidateUserCache(userID int64) {
	prefix := fmt.Sprintf("report:%d:", userID)
	for key := range s.reportCache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Report cache invalidated", "userID", userID)
}
