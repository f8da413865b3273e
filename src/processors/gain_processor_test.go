package processors

import (
	"errors"
	"reflect"
	"testing"

	"github.com/username/lotfolio/backend/src/models"
)

func buy(ticker string, qty int, price float64, date string) models.Trade {
	return models.Trade{Ticker: ticker, Action: models.ActionBuy, Quantity: qty, Price: price, TradeDate: date}
}

func sell(ticker string, qty int, price float64, date string) models.Trade {
	return models.Trade{Ticker: ticker, Action: models.ActionSell, Quantity: qty, Price: price, TradeDate: date}
}

func TestGainProcessor_Process(t *testing.T) {
	tests := []struct {
		name   string
		trades []models.Trade
		want   []models.RealizedGain
	}{
		{
			"no trades",
			nil,
			nil,
		},
		{
			"buys alone produce no gains",
			[]models.Trade{
				buy("AAPL", 10, 100, "2024-01-01"),
				buy("AAPL", 5, 110, "2024-01-05"),
			},
			nil,
		},
		{
			"single lot fully sold",
			[]models.Trade{
				buy("AAPL", 10, 10, "2024-01-01"),
				sell("AAPL", 10, 15, "2024-02-01"),
			},
			[]models.RealizedGain{
				{Ticker: "AAPL", Quantity: 10, PriceBought: 10, PriceSold: 15, Gain: 50, SellDate: "2024-02-01"},
			},
		},
		{
			"sell spans two lots with weighted average basis",
			[]models.Trade{
				buy("AAPL", 5, 10, "2024-01-01"),
				buy("AAPL", 5, 20, "2024-01-05"),
				sell("AAPL", 8, 12, "2024-01-10"),
			},
			[]models.RealizedGain{
				{Ticker: "AAPL", Quantity: 8, PriceBought: 13.75, PriceSold: 12, Gain: -14, SellDate: "2024-01-10"},
			},
		},
		{
			"oldest lot is consumed first",
			[]models.Trade{
				buy("AAPL", 5, 10, "2024-01-01"),
				buy("AAPL", 5, 20, "2024-01-05"),
				sell("AAPL", 5, 30, "2024-01-10"),
			},
			[]models.RealizedGain{
				{Ticker: "AAPL", Quantity: 5, PriceBought: 10, PriceSold: 30, Gain: 100, SellDate: "2024-01-10"},
			},
		},
		{
			"partially consumed lot serves later sells",
			[]models.Trade{
				buy("AAPL", 10, 10, "2024-01-01"),
				sell("AAPL", 4, 20, "2024-01-10"),
				sell("AAPL", 6, 5, "2024-01-20"),
			},
			[]models.RealizedGain{
				{Ticker: "AAPL", Quantity: 4, PriceBought: 10, PriceSold: 20, Gain: 40, SellDate: "2024-01-10"},
				{Ticker: "AAPL", Quantity: 6, PriceBought: 10, PriceSold: 5, Gain: -30, SellDate: "2024-01-20"},
			},
		},
		{
			"interleaved tickers are matched independently",
			[]models.Trade{
				buy("AAPL", 10, 10, "2024-01-01"),
				buy("MSFT", 3, 100, "2024-01-02"),
				sell("MSFT", 3, 90, "2024-01-15"),
				sell("AAPL", 10, 11, "2024-01-20"),
			},
			[]models.RealizedGain{
				{Ticker: "MSFT", Quantity: 3, PriceBought: 100, PriceSold: 90, Gain: -30, SellDate: "2024-01-15"},
				{Ticker: "AAPL", Quantity: 10, PriceBought: 10, PriceSold: 11, Gain: 10, SellDate: "2024-01-20"},
			},
		},
		{
			"notes are carried onto the gain record",
			[]models.Trade{
				buy("AAPL", 1, 10, "2024-01-01"),
				{Ticker: "AAPL", Action: models.ActionSell, Quantity: 1, Price: 12, TradeDate: "2024-01-02", Notes: "tax harvest"},
			},
			[]models.RealizedGain{
				{Ticker: "AAPL", Quantity: 1, PriceBought: 10, PriceSold: 12, Gain: 2, SellDate: "2024-01-02", Notes: "tax harvest"},
			},
		},
	}

	p := NewGainProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Process(tt.trades)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Process() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGainProcessor_NoMatchError(t *testing.T) {
	p := NewGainProcessor()
	trades := []models.Trade{
		buy("MSFT", 10, 100, "2024-01-01"),
		sell("AAPL", 5, 20, "2024-01-10"),
	}

	gains, err := p.Process(trades)
	if gains != nil {
		t.Errorf("expected no gains on failure, got %+v", gains)
	}
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected *NoMatchError, got %v", err)
	}
	if noMatch.Ticker != "AAPL" || noMatch.Date != "2024-01-10" {
		t.Errorf("NoMatchError = %+v, want ticker AAPL on 2024-01-10", noMatch)
	}
}

func TestGainProcessor_InsufficientLotsError(t *testing.T) {
	p := NewGainProcessor()
	trades := []models.Trade{
		buy("AAPL", 5, 10, "2024-01-01"),
		sell("AAPL", 10, 20, "2024-01-10"),
	}

	gains, err := p.Process(trades)
	if gains != nil {
		t.Errorf("expected no gains on failure, got %+v", gains)
	}
	var insufficient *InsufficientLotsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *InsufficientLotsError, got %v", err)
	}
	if insufficient.Requested != 10 || insufficient.Available != 5 {
		t.Errorf("InsufficientLotsError = %+v, want requested 10, available 5", insufficient)
	}
}

// All-buys-then-all-sells that exactly exhaust the buys must conserve
// quantity: matched sell totals equal bought totals per ticker.
func TestGainProcessor_Conservation(t *testing.T) {
	p := NewGainProcessor()
	trades := []models.Trade{
		buy("AAPL", 7, 10, "2024-01-01"),
		buy("AAPL", 3, 12, "2024-01-02"),
		buy("AAPL", 5, 14, "2024-01-03"),
		sell("AAPL", 9, 20, "2024-02-01"),
		sell("AAPL", 6, 21, "2024-02-02"),
	}

	gains, err := p.Process(trades)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	matched := 0
	for _, g := range gains {
		matched += g.Quantity
	}
	if matched != 15 {
		t.Errorf("matched quantity = %d, want 15", matched)
	}
}

func TestGainProcessor_Idempotence(t *testing.T) {
	p := NewGainProcessor()
	trades := []models.Trade{
		buy("AAPL", 5, 10, "2024-01-01"),
		buy("AAPL", 5, 20, "2024-01-05"),
		sell("AAPL", 8, 12, "2024-01-10"),
	}
	snapshot := make([]models.Trade, len(trades))
	copy(snapshot, trades)

	first, err := p.Process(trades)
	if err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	second, err := p.Process(trades)
	if err != nil {
		t.Fatalf("second Process() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(trades, snapshot) {
		t.Errorf("input snapshot was mutated: %+v", trades)
	}
}
