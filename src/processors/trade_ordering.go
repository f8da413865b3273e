package processors

import (
	"sort"

	"github.com/username/lotfolio/backend/src/models"
)

// ordKey builds a lexically sortable key from a trade's date and optional
// time. Both are fixed-width ("2006-01-02", "15:04:05"), so string
// comparison matches chronological order, and an absent time sorts before
// any specified time on the same date.
func ordKey(t models.Trade) string {
	return t.TradeDate + " " + t.TradeTime
}

// SortByDate sorts trades ascending by (trade date, trade time), keeping
// insertion order for exact ties. This is the order the gain processor
// requires; callers re-sort defensively rather than trusting storage.
func SortByDate(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return ordKey(trades[i]) < ordKey(trades[j])
	})
}

// SortByTickerDate sorts trades ascending by (ticker, trade date, trade
// time). The wash-sale processor scans this order so that each ticker's
// history is contiguous and chronological.
func SortByTickerDate(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].Ticker != trades[j].Ticker {
			return trades[i].Ticker < trades[j].Ticker
		}
		return ordKey(trades[i]) < ordKey(trades[j])
	})
}
