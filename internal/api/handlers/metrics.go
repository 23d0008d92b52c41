package handlers

import (
	"fmt"
	"net/http"
)

// MetricsHandler exports liveness in the Prometheus text format without
// pulling in the client library.
type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "# HELP qrgen_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE qrgen_up gauge\n")
	fmt.Fprintf(w, "qrgen_up 1\n")
}
