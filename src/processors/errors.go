package processors

import "fmt"

// NoMatchError reports a SELL trade with no prior purchase lots at all for
// its ticker. The whole matching run is aborted; emitting partial gains
// would make downstream totals silently wrong.
type NoMatchError struct {
	Ticker string
	Date   string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching buy trades found for %s on %s", e.Ticker, e.Date)
}

// InsufficientLotsError reports a SELL trade whose quantity exceeds the
// remaining prior purchase lots for its ticker. Same abort semantics as
// NoMatchError.
type InsufficientLotsError struct {
	Ticker    string
	Date      string
	Requested int
	Available int
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("not enough shares to sell for %s on %s: requested %d, available %d",
		e.Ticker, e.Date, e.Requested, e.Available)
}
