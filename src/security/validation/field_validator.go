package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrValidationFailed is the sentinel wrapped by every validator error, so
// handlers can classify failures with errors.Is.
var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxTickerLength = 10
	MaxNotesLength  = 1024
	MaxQuantity     = 1_000_000_000
	MaxPrice        = 1_000_000_000
)

var tickerRegex = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]*$`)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateTicker checks length and format of an already-uppercased ticker symbol.
func ValidateTicker(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "ticker"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxTickerLength, "ticker"); err != nil {
		return err
	}
	if !tickerRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: ticker ('%s') is not in the expected format (uppercase letters, digits, '.' or '-')", ErrValidationFailed, s)
	}
	return nil
}

// ValidateAction checks the trade action against the closed BUY/SELL set.
func ValidateAction(s string) error {
	if s != "BUY" && s != "SELL" {
		return fmt.Errorf("%w: action must be either BUY or SELL, got '%s'", ErrValidationFailed, s)
	}
	return nil
}

// ValidateQuantity checks that the share count is a positive integer within bounds.
func ValidateQuantity(q int) error {
	if q <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer, got %d", ErrValidationFailed, q)
	}
	if q > MaxQuantity {
		return fmt.Errorf("%w: quantity must be at most %d, got %d", ErrValidationFailed, MaxQuantity, q)
	}
	return nil
}

// ValidatePrice checks that the per-share price is positive and within bounds.
func ValidatePrice(p float64) error {
	if p <= 0 {
		return fmt.Errorf("%w: price must be a positive number, got %v", ErrValidationFailed, p)
	}
	if p > MaxPrice {
		return fmt.Errorf("%w: price must be at most %d, got %v", ErrValidationFailed, MaxPrice, p)
	}
	return nil
}

// ValidateTradeDate checks if a string is a valid "YYYY-MM-DD" calendar date
// that is not in the future.
func ValidateTradeDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "trade date"); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: trade date ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, s, err)
	}
	if t.Format("2006-01-02") != trimmed {
		return time.Time{}, fmt.Errorf("%w: trade date ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, s)
	}
	if t.After(time.Now()) {
		return time.Time{}, fmt.Errorf("%w: trade date ('%s') cannot be in the future", ErrValidationFailed, s)
	}
	return t, nil
}

// ValidateTradeTime checks the optional "HH:MM:SS" time of day. Empty is allowed.
func ValidateTradeTime(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if _, err := time.Parse("15:04:05", trimmed); err != nil {
		return fmt.Errorf("%w: trade time ('%s') is not a valid time (expected HH:MM:SS): %v", ErrValidationFailed, s, err)
	}
	return nil
}

// ValidateMonth checks a "YYYY-MM" report filter value. Empty is allowed.
func ValidateMonth(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if _, err := time.Parse("2006-01", trimmed); err != nil {
		return fmt.Errorf("%w: month ('%s') is not a valid month (expected YYYY-MM): %v", ErrValidationFailed, s, err)
	}
	return nil
}

// ParseQuantityString parses a raw form value into a positive integer count.
func ParseQuantityString(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "quantity"); err != nil {
		return 0, err
	}
	q, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity ('%s') is not a valid integer: %v", ErrValidationFailed, s, err)
	}
	if err := ValidateQuantity(q); err != nil {
		return 0, err
	}
	return q, nil
}

// ParsePriceString parses a raw form value into a positive price.
func ParsePriceString(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "price"); err != nil {
		return 0, err
	}
	p, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price ('%s') is not a valid number: %v", ErrValidationFailed, s, err)
	}
	if err := ValidatePrice(p); err != nil {
		return 0, err
	}
	return p, nil
}
