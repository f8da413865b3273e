package processors

import (
	"time"

	"github.com/username/lotfolio/backend/src/models"
	"github.com/username/lotfolio/backend/src/utils"
)

// washSaleWindowDays is the IRS replacement window on each side of a sell:
// a buy from 30 days before through 30 days after, inclusive, disallows
// the loss.
const washSaleWindowDays = 30

// WashSaleProcessor flags loss-making sells that have a replacement
// purchase of the same ticker inside the wash-sale window. It runs
// independently of the gain processor and never fails: trades it cannot
// flag are simply not reported.
type WashSaleProcessor struct{}

func NewWashSaleProcessor() *WashSaleProcessor { return &WashSaleProcessor{} }

// Detect scans the trades, sorted by (ticker, date), and emits one
// disallowance per flagged sell, in that traversal order.
//
// The loss check uses the price of the most recent buy before the sell as
// the cost basis, not a FIFO-matched basis. That is a trade-level
// approximation of the per-lot tax rule, kept on purpose so the detector
// stays independent of the gain processor's matching.
func (p *WashSaleProcessor) Detect(trades []models.Trade) []models.WashSaleDisallowance {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	SortByTickerDate(sorted)

	var flagged []models.WashSaleDisallowance
	for i, trade := range sorted {
		if trade.Action != models.ActionSell {
			continue
		}

		// Most recent prior buy of the same ticker. A sell with no prior
		// purchase cannot realize a wash-sale-relevant loss here.
		var costBasis float64
		hasPriorBuy := false
		for j := 0; j < i; j++ {
			if sorted[j].Action == models.ActionBuy && sorted[j].Ticker == trade.Ticker {
				costBasis = sorted[j].Price
				hasPriorBuy = true
			}
		}
		if !hasPriorBuy {
			continue
		}

		realized := (trade.Price - costBasis) * float64(trade.Quantity)
		if realized >= 0 {
			continue
		}

		sellDate := utils.ParseDate(trade.TradeDate)
		windowStart := sellDate.AddDate(0, 0, -washSaleWindowDays)
		windowEnd := sellDate.AddDate(0, 0, washSaleWindowDays)

		// First buy of the same ticker inside the window wins, replacement
		// purchases after the sell included. No attempt to find a nearest
		// or best match.
		for _, buy := range sorted {
			if buy.Action != models.ActionBuy || buy.Ticker != trade.Ticker {
				continue
			}
			if inWindow(utils.ParseDate(buy.TradeDate), windowStart, windowEnd) {
				flagged = append(flagged, models.WashSaleDisallowance{
					SellDate:       trade.TradeDate,
					Ticker:         trade.Ticker,
					DisallowedLoss: utils.RoundFloat(-realized, 2),
					MatchedBuyDate: buy.TradeDate,
				})
				break
			}
		}
	}
	return flagged
}

// inWindow reports whether d falls in [start, end], bounds included.
func inWindow(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
