package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/lotfolio/backend/src/logger"
	"github.com/username/lotfolio/backend/src/processors"
	"github.com/username/lotfolio/backend/src/services"
	"github.com/username/lotfolio/backend/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// HandleGetReport computes the capital-gains report for the authenticated
// user, optionally filtered by ticker, month, or date range. Engine
// failures (a sell that prior buys cannot cover) are the client's data
// problem, not a server fault, and map to 422.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.reportService.GetReport(userID, filter)
	if err != nil {
		h.respondReportError(w, r, err)
		return
	}

	// Reports are pure functions of the trade set, so an ETag lets clients
	// skip re-downloading unchanged results.
	if etag, etagErr := utils.GenerateETag(result); etagErr == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleExportReport streams the same report as a two-section CSV download.
func (h *ReportHandler) HandleExportReport(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.reportService.GetReport(userID, filter)
	if err != nil {
		h.respondReportError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=report.csv`)
	if err := h.reportService.WriteReportCSV(w, result); err != nil {
		// Headers are already out; all we can do is log.
		logger.FromContext(r.Context()).Error("Failed to stream CSV report", "userID", userID, "error", err)
	}
}

// respondReportError distinguishes the matcher's structured failures from
// storage faults. Matching errors abort the whole report by design; the
// caller gets the offending ticker and date and no partial data.
func (h *ReportHandler) respondReportError(w http.ResponseWriter, r *http.Request, err error) {
	var noMatch *processors.NoMatchError
	var insufficient *processors.InsufficientLotsError
	if errors.As(err, &noMatch) || errors.As(err, &insufficient) {
		logger.FromContext(r.Context()).Warn("Report aborted by matching failure", "error", err)
		sendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	logger.FromContext(r.Context()).Error("Failed to generate report", "error", err)
	sendJSONError(w, "Failed to generate report", http.StatusInternalServerError)
}
