package services

import (
	"io"
	"time"

	"github.com/username/lotfolio/backend/src/models"
)

const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute

	// Validated ticker symbols change rarely; cache lookups for a day.
	TickerCacheExpiration = 24 * time.Hour
)

// ReportService generates capital-gains reports from one user's trade
// history: realized gains (FIFO) and wash-sale disallowances, computed over
// a single consistent snapshot.
type ReportService interface {
	GetReport(userID int64, filter models.TradeFilter) (*models.ReportResult, error)
	WriteReportCSV(w io.Writer, result *models.ReportResult) error
	InvalidateUserCache(userID int64)
}

// TickerService answers whether a symbol is recognized by the market data
// provider. Lookups are cached; a provider outage returns an error rather
// than a verdict.
type TickerService interface {
	ValidateSymbol(symbol string) (bool, error)
}
