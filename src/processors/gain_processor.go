package processors

import (
	"github.com/username/lotfolio/backend/src/models"
	"github.com/username/lotfolio/backend/src/utils"
)

// GainProcessor computes realized gains for SELL trades by consuming prior
// purchase lots First-In-First-Out. It holds no state between runs; the lot
// queues live only for the duration of one Process call.
type GainProcessor struct{}

func NewGainProcessor() *GainProcessor { return &GainProcessor{} }

// Process walks the trade snapshot in order and emits one RealizedGain per
// SELL trade. The input must be sorted ascending by (trade date, trade
// time); matching state is partitioned per ticker, so interleaved tickers
// are fine.
//
// A BUY appends a lot to its ticker's queue. A SELL consumes lots from the
// front of the queue until its quantity is covered, accumulating cost basis
// across every lot it touches; PriceBought is the quantity-weighted average
// of the consumed lots. A SELL with no lots at all fails with *NoMatchError;
// a SELL that exhausts the queue before being covered fails with
// *InsufficientLotsError. Either failure aborts the run with no output.
func (p *GainProcessor) Process(trades []models.Trade) ([]models.RealizedGain, error) {
	lots := make(map[string][]*models.BuyLot)
	var gains []models.RealizedGain

	for _, trade := range trades {
		switch trade.Action {
		case models.ActionBuy:
			lots[trade.Ticker] = append(lots[trade.Ticker], &models.BuyLot{
				Ticker:   trade.Ticker,
				Quantity: trade.Quantity,
				Price:    trade.Price,
				Date:     trade.TradeDate,
			})

		case models.ActionSell:
			queue := lots[trade.Ticker]
			if len(queue) == 0 {
				return nil, &NoMatchError{Ticker: trade.Ticker, Date: trade.TradeDate}
			}

			remaining := trade.Quantity
			costBasis := 0.0
			matched := 0

			for remaining > 0 && len(queue) > 0 {
				lot := queue[0]
				consumed := utils.MinInt(remaining, lot.Quantity)

				costBasis += float64(consumed) * lot.Price
				matched += consumed
				remaining -= consumed
				lot.Quantity -= consumed

				if lot.Quantity == 0 {
					queue = queue[1:]
				}
			}
			lots[trade.Ticker] = queue

			if remaining > 0 {
				return nil, &InsufficientLotsError{
					Ticker:    trade.Ticker,
					Date:      trade.TradeDate,
					Requested: trade.Quantity,
					Available: matched,
				}
			}

			gains = append(gains, models.RealizedGain{
				Ticker:      trade.Ticker,
				Quantity:    matched,
				PriceBought: utils.RoundFloat(costBasis/float64(matched), 2),
				PriceSold:   trade.Price,
				Gain:        utils.RoundFloat(float64(matched)*trade.Price-costBasis, 2),
				SellDate:    trade.TradeDate,
				Notes:       trade.Notes,
			})
		}
	}
	return gains, nil
}
