package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/lotfolio/backend/src/database"
	"github.com/username/lotfolio/backend/src/logger"
	"github.com/username/lotfolio/backend/src/model"
	"github.com/username/lotfolio/backend/src/models"
	"github.com/username/lotfolio/backend/src/security/validation"
	"github.com/username/lotfolio/backend/src/services"
)

type TradeHandler struct {
	reportService services.ReportService
	tickerService services.TickerService
}

func NewTradeHandler(reportService services.ReportService, tickerService services.TickerService) *TradeHandler {
	return &TradeHandler{
		reportService: reportService,
		tickerService: tickerService,
	}
}

type tradeRequest struct {
	Ticker    string  `json:"ticker"`
	Action    string  `json:"action"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	TradeDate string  `json:"trade_date"`
	TradeTime string  `json:"trade_time"`
	Notes     string  `json:"notes"`
}

// validateAndBuildTrade normalizes and validates one submitted trade. The
// returned trade carries no ID or user yet; callers fill those in.
func (h *TradeHandler) validateAndBuildTrade(req tradeRequest) (*models.Trade, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	action := strings.ToUpper(strings.TrimSpace(req.Action))

	if err := validation.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if err := validation.ValidateAction(action); err != nil {
		return nil, err
	}
	if err := validation.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrice(req.Price); err != nil {
		return nil, err
	}
	if _, err := validation.ValidateTradeDate(req.TradeDate); err != nil {
		return nil, err
	}
	if err := validation.ValidateTradeTime(req.TradeTime); err != nil {
		return nil, err
	}
	notes := validation.SanitizeText(validation.StripUnprintable(req.Notes))
	if err := validation.ValidateStringMaxLength(notes, validation.MaxNotesLength, "notes"); err != nil {
		return nil, err
	}

	return &models.Trade{
		Ticker:    ticker,
		Action:    action,
		Quantity:  req.Quantity,
		Price:     req.Price,
		TradeDate: strings.TrimSpace(req.TradeDate),
		TradeTime: strings.TrimSpace(req.TradeTime),
		Notes:     notes,
	}, nil
}

// checkSymbolKnown asks the market data provider about the ticker. A
// provider failure counts as "not verifiable" and rejects the trade, the
// same way the report of an unknown symbol does.
func (h *TradeHandler) checkSymbolKnown(ticker string) error {
	valid, err := h.tickerService.ValidateSymbol(ticker)
	if err != nil {
		logger.L.Warn("Ticker validation lookup failed", "ticker", ticker, "error", err)
		return errors.New("unable to verify ticker symbol, try again later")
	}
	if !valid {
		return errors.New("unknown ticker symbol: " + ticker)
	}
	return nil
}

// checkAggregateQuantity enforces the write-time invariant: for one ticker,
// cumulative sells must never exceed cumulative buys. excludeID removes the
// row being replaced from the sums on update.
func checkAggregateQuantity(userID int64, t *models.Trade, excludeID int64) error {
	bought, sold, err := model.GetCumulativeQuantities(database.DB, userID, t.Ticker, excludeID)
	if err != nil {
		return err
	}
	switch t.Action {
	case models.ActionSell:
		if sold+t.Quantity > bought {
			return errors.New("cannot sell more than you have bought")
		}
	case models.ActionBuy:
		// Replacing a BUY with a smaller one (or re-dating it) can strand
		// existing sells; the quantity check still holds in aggregate.
		if sold > bought+t.Quantity {
			return errors.New("remaining trades would sell more than was bought")
		}
	}
	return nil
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	filter, err := parseTradeFilter(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	trades, err := model.GetTradesForUser(database.DB, userID, filter)
	if err != nil {
		logger.L.Error("Failed to query trades", "userID", userID, "error", err)
		sendJSONError(w, "Failed to fetch trades", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.validateAndBuildTrade(req)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.checkSymbolKnown(trade.Ticker); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := checkAggregateQuantity(userID, trade, 0); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	trade.UserID = userID
	if err := model.CreateTrade(database.DB, trade); err != nil {
		logger.L.Error("Failed to insert trade", "userID", userID, "error", err)
		sendJSONError(w, "Failed to save trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.FromContext(r.Context()).Info("Trade created", "tradeID", trade.ID, "ticker", trade.Ticker, "action", trade.Action)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid trade id", http.StatusBadRequest)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.validateAndBuildTrade(req)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.checkSymbolKnown(trade.Ticker); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := checkAggregateQuantity(userID, trade, tradeID); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	trade.ID = tradeID
	trade.UserID = userID
	if err := model.UpdateTrade(database.DB, trade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update trade", "userID", userID, "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.FromContext(r.Context()).Info("Trade updated", "tradeID", tradeID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid trade id", http.StatusBadRequest)
		return
	}

	if err := model.DeleteTrade(database.DB, tradeID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete trade", "userID", userID, "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.FromContext(r.Context()).Info("Trade deleted", "tradeID", tradeID)
	w.WriteHeader(http.StatusNoContent)
}

// parseTradeFilter reads the optional ticker/month/date-range query
// parameters shared by the trade list and report endpoints.
func parseTradeFilter(r *http.Request) (models.TradeFilter, error) {
	filter := models.TradeFilter{
		Ticker:    strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker"))),
		Month:     strings.TrimSpace(r.URL.Query().Get("month")),
		StartDate: strings.TrimSpace(r.URL.Query().Get("start_date")),
		EndDate:   strings.TrimSpace(r.URL.Query().Get("end_date")),
	}

	if filter.Ticker != "" {
		if err := validation.ValidateTicker(filter.Ticker); err != nil {
			return models.TradeFilter{}, err
		}
	}
	if err := validation.ValidateMonth(filter.Month); err != nil {
		return models.TradeFilter{}, err
	}
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return models.TradeFilter{}, errors.New("invalid date filter (expected YYYY-MM-DD): " + d)
		}
	}
	return filter, nil
}
