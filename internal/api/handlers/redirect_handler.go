package handlers

import (
	goerrors "errors"
	"net"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/engine/redirect"
	"qrgen/internal/engine/scans"
)

type RedirectHandler struct {
	resolver   *redirect.Resolver
	scanLogger *scans.Logger
}

func NewRedirectHandler(resolver *redirect.Resolver, scanLogger *scans.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver:   resolver,
		scanLogger: scanLogger,
	}
}

// Handle resolves the short-link token and issues a 302. The scan record is
// written before responding but its failure never blocks the redirect.
func (h *RedirectHandler) Handle(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	token := params.ByName("token")

	target, err := h.resolver.Resolve(token)
	if err != nil {
		if goerrors.Is(err, redirect.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Service unavailable", http.StatusInternalServerError)
		return
	}

	ip, _, splitErr := net.SplitHostPort(r.RemoteAddr)
	if splitErr != nil {
		ip = r.RemoteAddr
	}
	h.scanLogger.LogBestEffort(target.QRCodeID, ip, r.UserAgent())

	http.Redirect(w, r, target.DestinationURL, http.StatusFound)
}
