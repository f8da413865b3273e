package processors

import (
	"reflect"
	"testing"

	"github.com/username/lotfolio/backend/src/models"
)

func TestSortByDate(t *testing.T) {
	trades := []models.Trade{
		{Ticker: "AAPL", TradeDate: "2024-02-01"},
		{Ticker: "MSFT", TradeDate: "2024-01-05", TradeTime: "14:30:00"},
		{Ticker: "MSFT", TradeDate: "2024-01-05", TradeTime: "09:15:00"},
		{Ticker: "AAPL", TradeDate: "2024-01-05"}, // no time sorts first on its date
		{Ticker: "AAPL", TradeDate: "2023-12-31"},
	}

	SortByDate(trades)

	got := make([]string, len(trades))
	for i, tr := range trades {
		got[i] = tr.Ticker + " " + tr.TradeDate + " " + tr.TradeTime
	}
	want := []string{
		"AAPL 2023-12-31 ",
		"AAPL 2024-01-05 ",
		"MSFT 2024-01-05 09:15:00",
		"MSFT 2024-01-05 14:30:00",
		"AAPL 2024-02-01 ",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByDate() order = %v, want %v", got, want)
	}
}

func TestSortByDate_StableOnTies(t *testing.T) {
	trades := []models.Trade{
		{ID: 1, Ticker: "AAPL", TradeDate: "2024-01-05"},
		{ID: 2, Ticker: "MSFT", TradeDate: "2024-01-05"},
		{ID: 3, Ticker: "GOOG", TradeDate: "2024-01-05"},
	}

	SortByDate(trades)

	for i, wantID := range []int64{1, 2, 3} {
		if trades[i].ID != wantID {
			t.Fatalf("tie order not preserved: position %d has ID %d, want %d", i, trades[i].ID, wantID)
		}
	}
}

func TestSortByTickerDate(t *testing.T) {
	trades := []models.Trade{
		{Ticker: "MSFT", TradeDate: "2024-01-02"},
		{Ticker: "AAPL", TradeDate: "2024-03-01"},
		{Ticker: "AAPL", TradeDate: "2024-01-10"},
		{Ticker: "MSFT", TradeDate: "2023-11-20"},
	}

	SortByTickerDate(trades)

	got := make([]string, len(trades))
	for i, tr := range trades {
		got[i] = tr.Ticker + " " + tr.TradeDate
	}
	want := []string{
		"AAPL 2024-01-10",
		"AAPL 2024-03-01",
		"MSFT 2023-11-20",
		"MSFT 2024-01-02",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByTickerDate() order = %v, want %v", got, want)
	}
}
