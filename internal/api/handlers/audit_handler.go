package handlers

import (
	"encoding/json"
	"net/http"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/auth"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(auditLogger *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: auditLogger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	limit, offset := pagination(r)
	entries, err := h.audit.ListByUser(claims.UserID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
