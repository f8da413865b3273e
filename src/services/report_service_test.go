package services

import (
	"bytes"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/username/lotfolio/backend/src/models"
	"github.com/username/lotfolio/backend/src/processors"
)

func newTestReportService() ReportService {
	return NewReportService(
		nil, // no database needed for rendering
		processors.NewGainProcessor(),
		processors.NewWashSaleProcessor(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
}

func TestWriteReportCSV(t *testing.T) {
	s := newTestReportService()
	result := &models.ReportResult{
		Gains: []models.RealizedGain{
			{Ticker: "AAPL", Quantity: 10, PriceBought: 10, PriceSold: 15, Gain: 50, SellDate: "2024-02-01", Notes: "core position"},
			{Ticker: "MSFT", Quantity: 8, PriceBought: 13.75, PriceSold: 12, Gain: -14, SellDate: "2024-01-10"},
		},
		WashSales: []models.WashSaleDisallowance{
			{SellDate: "2024-02-01", Ticker: "AAPL", DisallowedLoss: 50, MatchedBuyDate: "2024-02-20"},
		},
	}

	var buf bytes.Buffer
	if err := s.WriteReportCSV(&buf, result); err != nil {
		t.Fatalf("WriteReportCSV() error = %v", err)
	}

	want := "Date,Ticker,Quantity,Price Bought,Price Sold,Gain,Notes\n" +
		"2024-02-01,AAPL,10,10.00,15.00,50.00,core position\n" +
		"2024-01-10,MSFT,8,13.75,12.00,-14.00,\n" +
		"\n" +
		"Sell Date,Ticker,Disallowed Loss,Matched Buy Date\n" +
		"2024-02-01,AAPL,50.00,2024-02-20\n"
	if buf.String() != want {
		t.Errorf("WriteReportCSV() output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteReportCSV_EmptyReport(t *testing.T) {
	s := newTestReportService()
	var buf bytes.Buffer
	if err := s.WriteReportCSV(&buf, &models.ReportResult{}); err != nil {
		t.Fatalf("WriteReportCSV() error = %v", err)
	}

	want := "Date,Ticker,Quantity,Price Bought,Price Sold,Gain,Notes\n" +
		"\n" +
		"Sell Date,Ticker,Disallowed Loss,Matched Buy Date\n"
	if buf.String() != want {
		t.Errorf("WriteReportCSV() output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteReportCSV_GuardsFormulaInjection(t *testing.T) {
	s := newTestReportService()
	result := &models.ReportResult{
		Gains: []models.RealizedGain{
			{Ticker: "AAPL", Quantity: 1, PriceBought: 10, PriceSold: 11, Gain: 1, SellDate: "2024-02-01", Notes: "=HYPERLINK(evil)"},
		},
	}

	var buf bytes.Buffer
	if err := s.WriteReportCSV(&buf, result); err != nil {
		t.Fatalf("WriteReportCSV() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("'=HYPERLINK(evil)")) {
		t.Errorf("notes were not escaped against formula injection:\n%s", buf.String())
	}
}
