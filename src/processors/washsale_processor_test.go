package processors

import (
	"reflect"
	"testing"

	"github.com/username/lotfolio/backend/src/models"
)

func TestWashSaleProcessor_Detect(t *testing.T) {
	tests := []struct {
		name   string
		trades []models.Trade
		want   []models.WashSaleDisallowance
	}{
		{
			"no trades",
			nil,
			nil,
		},
		{
			"loss with replacement buy after the sell",
			[]models.Trade{
				buy("AAPL", 10, 20, "2024-01-01"),
				sell("AAPL", 10, 15, "2024-02-01"),
				buy("AAPL", 10, 16, "2024-02-20"),
			},
			[]models.WashSaleDisallowance{
				{SellDate: "2024-02-01", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-02-20"},
			},
		},
		{
			"profit is never flagged",
			[]models.Trade{
				buy("AAPL", 10, 20, "2024-01-15"),
				sell("AAPL", 10, 25, "2024-02-01"),
				buy("AAPL", 10, 24, "2024-02-10"),
			},
			nil,
		},
		{
			"sell with no prior buys is skipped",
			[]models.Trade{
				sell("AAPL", 10, 15, "2024-02-01"),
				buy("AAPL", 10, 16, "2024-02-10"),
			},
			nil,
		},
		{
			"replacement exactly 30 days before the sell",
			[]models.Trade{
				buy("AAPL", 10, 20, "2024-01-31"),
				sell("AAPL", 10, 15, "2024-03-01"),
			},
			[]models.WashSaleDisallowance{
				{SellDate: "2024-03-01", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-01-31"},
			},
		},
		{
			"buy 31 days before the sell is outside the window",
			[]models.Trade{
				buy("AAPL", 10, 20, "2024-01-30"),
				sell("AAPL", 10, 15, "2024-03-01"),
			},
			nil,
		},
		{
			"replacement exactly 30 days after the sell",
			[]models.Trade{
				buy("AAPL", 10, 20, "2023-12-01"),
				sell("AAPL", 10, 15, "2024-01-15"),
				buy("AAPL", 10, 16, "2024-02-14"),
			},
			[]models.WashSaleDisallowance{
				{SellDate: "2024-01-15", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-02-14"},
			},
		},
		{
			"buy 31 days after the sell is outside the window",
			[]models.Trade{
				buy("AAPL", 10, 20, "2023-12-01"),
				sell("AAPL", 10, 15, "2024-01-15"),
				buy("AAPL", 10, 16, "2024-02-15"),
			},
			nil,
		},
		{
			"first replacement in the window wins",
			[]models.Trade{
				buy("AAPL", 10, 20, "2024-01-20"),
				sell("AAPL", 10, 15, "2024-02-01"),
				buy("AAPL", 10, 16, "2024-02-10"),
				buy("AAPL", 10, 14, "2024-02-12"),
			},
			[]models.WashSaleDisallowance{
				{SellDate: "2024-02-01", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-01-20"},
			},
		},
		{
			"basis comes from the most recent prior buy",
			[]models.Trade{
				buy("AAPL", 10, 50, "2023-06-01"),
				buy("AAPL", 10, 20, "2024-01-20"),
				sell("AAPL", 10, 15, "2024-02-01"),
			},
			[]models.WashSaleDisallowance{
				// Loss is (15-20)*10, not (15-50)*10; the January buy is the basis
				// and also the in-window replacement.
				{SellDate: "2024-02-01", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-01-20"},
			},
		},
		{
			"replacement buys never match across tickers",
			[]models.Trade{
				buy("AAPL", 10, 20, "2024-01-01"),
				sell("AAPL", 10, 15, "2024-02-05"),
				buy("MSFT", 10, 16, "2024-02-10"),
			},
			nil,
		},
		{
			"output follows ticker then date order",
			[]models.Trade{
				buy("MSFT", 5, 30, "2024-01-02"),
				buy("AAPL", 5, 20, "2024-01-05"),
				sell("MSFT", 5, 10, "2024-01-20"),
				sell("AAPL", 5, 10, "2024-01-25"),
			},
			[]models.WashSaleDisallowance{
				{SellDate: "2024-01-25", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-01-05"},
				{SellDate: "2024-01-20", Ticker: "MSFT", DisallowedLoss: 100, MatchedBuyDate: "2024-01-02"},
			},
		},
	}

	p := NewWashSaleProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Detect(tt.trades)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWashSaleProcessor_DoesNotMutateInput(t *testing.T) {
	p := NewWashSaleProcessor()
	trades := []models.Trade{
		sell("MSFT", 5, 10, "2024-01-20"),
		buy("AAPL", 5, 20, "2024-01-05"),
		buy("MSFT", 5, 30, "2024-01-02"),
	}
	snapshot := make([]models.Trade, len(trades))
	copy(snapshot, trades)

	first := p.Detect(trades)
	second := p.Detect(trades)

	if !reflect.DeepEqual(trades, snapshot) {
		t.Errorf("input order was mutated: %+v", trades)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %+v vs %+v", first, second)
	}
}
