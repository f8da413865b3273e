package validation

import (
	"errors"
	"testing"
	"time"
)

func TestValidateTicker(t *testing.T) {
	tests := []struct {
		ticker  string
		wantErr bool
	}{
		{"AAPL", false},
		{"MSFT", false},
		{"BRK.B", false},
		{"VOW3-DE", false},
		{"A", false},
		{"", true},
		{"aapl", true},
		{".AAPL", true},
		{"TOOLONGTICKER", true},
		{"AA PL", true},
	}
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			err := ValidateTicker(tt.ticker)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTicker(%q) error = %v, wantErr %v", tt.ticker, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("ValidateTicker(%q) error does not wrap ErrValidationFailed: %v", tt.ticker, err)
			}
		})
	}
}

func TestValidateAction(t *testing.T) {
	for _, action := range []string{"BUY", "SELL"} {
		if err := ValidateAction(action); err != nil {
			t.Errorf("ValidateAction(%q) unexpected error: %v", action, err)
		}
	}
	for _, action := range []string{"", "buy", "HOLD", "SHORT"} {
		if err := ValidateAction(action); err == nil {
			t.Errorf("ValidateAction(%q) expected error, got nil", action)
		}
	}
}

func TestValidateTradeDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"valid past date", "2024-01-15", false},
		{"empty", "", true},
		{"wrong format", "15-01-2024", true},
		{"non-padded", "2024-1-5", true},
		{"impossible day", "2024-02-30", true},
		{"future date", time.Now().AddDate(1, 0, 0).Format("2006-01-02"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTradeDate(tt.date)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTradeDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTradeTime(t *testing.T) {
	if err := ValidateTradeTime(""); err != nil {
		t.Errorf("empty trade time should be allowed, got %v", err)
	}
	if err := ValidateTradeTime("14:30:00"); err != nil {
		t.Errorf("ValidateTradeTime(14:30:00) unexpected error: %v", err)
	}
	if err := ValidateTradeTime("25:00:00"); err == nil {
		t.Error("ValidateTradeTime(25:00:00) expected error, got nil")
	}
}

func TestValidateMonth(t *testing.T) {
	if err := ValidateMonth(""); err != nil {
		t.Errorf("empty month should be allowed, got %v", err)
	}
	if err := ValidateMonth("2024-02"); err != nil {
		t.Errorf("ValidateMonth(2024-02) unexpected error: %v", err)
	}
	if err := ValidateMonth("2024-13"); err == nil {
		t.Error("ValidateMonth(2024-13) expected error, got nil")
	}
}

func TestParseQuantityString(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"10", 10, false},
		{" 3 ", 3, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"2.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseQuantityString(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseQuantityString(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseQuantityString(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParsePriceString(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"12.50", 12.50, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-3.2", 0, true},
		{"free", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePriceString(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriceString(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePriceString(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain note", "plain note"},
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+1234", "'+1234"},
		{"-loss", "'-loss"},
		{"@cmd", "'@cmd"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeForFormulaInjection(tt.in); got != tt.want {
			t.Errorf("SanitizeForFormulaInjection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	if got := SanitizeText(`<script>alert(1)</script>note`); got != "note" {
		t.Errorf("SanitizeText stripped to %q, want %q", got, "note")
	}
	if got := SanitizeText("holding for earnings"); got != "holding for earnings" {
		t.Errorf("SanitizeText mangled plain text: %q", got)
	}
}
