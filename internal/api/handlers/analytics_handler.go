package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/engine/analytics"
	"qrgen/internal/engine/scans"
	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/auth"
)

type AnalyticsHandler struct {
	service  *analytics.Service
	scanRepo *scans.Repository
	qr       *QRHandler
}

func NewAnalyticsHandler(service *analytics.Service, scanRepo *scans.Repository, qr *QRHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:  service,
		scanRepo: scanRepo,
		qr:       qr,
	}
}

type QRAnalyticsResponse struct {
	TotalScans int                        `json:"total_scans"`
	ScansByDay []analytics.DayCount       `json:"scans_by_day"`
	Devices    []analytics.DimensionCount `json:"devices"`
	Browsers   []analytics.DimensionCount `json:"browsers"`
	Countries  []analytics.DimensionCount `json:"countries"`
}

// GetQRAnalytics aggregates the per-record dashboard: a 30-day daily series
// (overridable with ?days=N) plus device, browser and country breakdowns.
func (h *AnalyticsHandler) GetQRAnalytics(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.qr.ownedRecord(w, r)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	resp := QRAnalyticsResponse{
		ScansByDay: []analytics.DayCount{},
		Devices:    []analytics.DimensionCount{},
		Browsers:   []analytics.DimensionCount{},
		Countries:  []analytics.DimensionCount{},
	}

	total, err := h.scanRepo.CountByQRCode(qr.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	resp.TotalScans = total

	if series, err := h.service.ScansByDay(qr.ID, days); err == nil && series != nil {
		resp.ScansByDay = series
	}
	if devices, err := h.service.Breakdown(qr.ID, "device"); err == nil && devices != nil {
		resp.Devices = devices
	}
	if browsers, err := h.service.Breakdown(qr.ID, "browser"); err == nil && browsers != nil {
		resp.Browsers = browsers
	}
	if countries, err := h.service.Breakdown(qr.ID, "country"); err == nil && countries != nil {
		resp.Countries = countries
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *AnalyticsHandler) GetQRScans(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.qr.ownedRecord(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	list, err := h.scanRepo.ListByQRCode(qr.ID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if list == nil {
		list = []*scans.Scan{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	overview, err := h.service.Overview(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(overview)
}
