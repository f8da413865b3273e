package models

// RealizedGain is the outcome of one SELL trade after FIFO matching against
// prior purchase lots. PriceBought is the quantity-weighted average cost of
// the lots consumed, rounded to 2 decimals; Gain keeps its sign.
type RealizedGain struct {
	Ticker      string  `json:"ticker"`
	Quantity    int     `json:"quantity"`
	PriceBought float64 `json:"price_bought"`
	PriceSold   float64 `json:"price_sold"`
	Gain        float64 `json:"gain"`
	SellDate    string  `json:"sell_date"`
	Notes       string  `json:"notes,omitempty"`
}

// WashSaleDisallowance flags a loss-making sell with a replacement purchase
// of the same ticker within 30 days either side of the sell date.
// DisallowedLoss is the positive magnitude of the disallowed loss.
type WashSaleDisallowance struct {
	SellDate       string  `json:"sell_date"`
	Ticker         string  `json:"ticker"`
	DisallowedLoss float64 `json:"disallowed_loss"`
	MatchedBuyDate string  `json:"matched_buy_date"`
}

// ReportResult is the full capital-gains report payload for one user and
// filter, as returned by the report endpoint and cached between requests.
type ReportResult struct {
	Gains     []RealizedGain         `json:"gains"`
	WashSales []WashSaleDisallowance `json:"wash_sales"`
}
