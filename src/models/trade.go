package models

import "time"

// Trade actions. The storage layer only ever persists these two values;
// the processors trust that and do not re-validate.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Trade represents a single recorded buy or sell of a security, as stored
// for one user. Dates are kept as "2006-01-02" strings, matching the column
// format; TradeTime is optional and only breaks same-date ordering ties.
type Trade struct {
	ID        int64     `json:"id,omitempty"`
	UserID    int64     `json:"user_id,omitempty"`
	Ticker    string    `json:"ticker"`
	Action    string    `json:"action"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	TradeDate string    `json:"trade_date"`
	TradeTime string    `json:"trade_time,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// BuyLot is an open purchase lot inside the matcher's per-ticker FIFO queue.
// It is rebuilt from the trade snapshot on every run and never persisted.
type BuyLot struct {
	Ticker   string
	Quantity int
	Price    float64
	Date     string
}

// TradeFilter narrows the trade snapshot fetched for a report. Zero values
// mean "no filter". Month uses "2006-01"; the date bounds use "2006-01-02".
type TradeFilter struct {
	Ticker    string `json:"ticker,omitempty"`
	Month     string `json:"month,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// IsZero reports whether no filter criteria are set.
func (f TradeFilter) IsZero() bool {
	return f.Ticker == "" && f.Month == "" && f.StartDate == "" && f.EndDate == ""
}
