package handlers

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/engine/qrcodes"
	"qrgen/internal/engine/redirect"
	"qrgen/internal/engine/render"
	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/auth"
)

type QRHandler struct {
	codes    *qrcodes.Service
	resolver *redirect.Resolver
	audit    *audit.Logger
	logoDir  string
}

func NewQRHandler(codes *qrcodes.Service, resolver *redirect.Resolver, auditLogger *audit.Logger, logoDir string) *QRHandler {
	return &QRHandler{
		codes:    codes,
		resolver: resolver,
		audit:    auditLogger,
		logoDir:  logoDir,
	}
}

type CreateQRRequest struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Data            string `json:"data"`
	DestinationURL  string `json:"destination_url"`
	FillColor       string `json:"fill_color"`
	BackColor       string `json:"back_color"`
	ErrorCorrection string `json:"error_correction"`
	Size            int    `json:"size"`
}

func (h *QRHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req CreateQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	qr, err := h.codes.Create(&qrcodes.QRCode{
		UserID:          claims.UserID,
		Name:            req.Name,
		Kind:            req.Kind,
		Data:            req.Data,
		DestinationURL:  req.DestinationURL,
		FillColor:       req.FillColor,
		BackColor:       req.BackColor,
		ErrorCorrection: req.ErrorCorrection,
		Size:            req.Size,
	})
	if err != nil {
		writeQRError(w, err)
		return
	}

	h.audit.Log(r.Context(), "qrcode.create", "qr_code", qr.ID, r.RemoteAddr, map[string]interface{}{"kind": qr.Kind})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(qr)
}

func (h *QRHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	limit, offset := pagination(r)
	list, err := h.codes.List(claims.UserID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if list == nil {
		list = []*qrcodes.QRCode{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *QRHandler) Get(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.ownedRecord(w, r)
	if !ok {
		return
	}

	scanCount, _ := h.codes.ScanCount(qr.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		*qrcodes.QRCode
		ScanCount int `json:"scan_count"`
	}{qr, scanCount})
}

type UpdateDestinationRequest struct {
	DestinationURL string `json:"destination_url"`
}

func (h *QRHandler) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.ownedRecord(w, r)
	if !ok {
		return
	}

	var req UpdateDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	updated, err := h.codes.UpdateDestination(qr.ID, req.DestinationURL)
	if err != nil {
		writeQRError(w, err)
		return
	}

	// Drop the cached target so the next redirect sees the new URL.
	h.resolver.Invalidate(updated.ShortLink)
	h.audit.Log(r.Context(), "qrcode.update_destination", "qr_code", qr.ID, r.RemoteAddr, map[string]interface{}{"destination_url": req.DestinationURL})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *QRHandler) Delete(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.ownedRecord(w, r)
	if !ok {
		return
	}

	if err := h.codes.Delete(qr.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	if qr.ShortLink != "" {
		h.resolver.Invalidate(qr.ShortLink)
	}
	h.audit.Log(r.Context(), "qrcode.delete", "qr_code", qr.ID, r.RemoteAddr, nil)

	w.WriteHeader(http.StatusNoContent)
}

// Image serves the rendered symbol inline for embedding in a page.
func (h *QRHandler) Image(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.ownedRecord(w, r)
	if !ok {
		return
	}

	img, err := h.renderRecord(qr, r)
	if err != nil {
		writeQRError(w, err)
		return
	}

	pngBytes, err := render.EncodePNG(img)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to encode image", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(pngBytes)
}

// Download serves the symbol as an attachment in png, svg or pdf format.
func (h *QRHandler) Download(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.ownedRecord(w, r)
	if !ok {
		return
	}

	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	format := params.ByName("format")

	opts := render.Options{
		FillColor:       qr.FillColor,
		BackColor:       qr.BackColor,
		ErrorCorrection: qr.ErrorCorrection,
		Size:            qr.Size,
	}
	payload := qr.DataURL(requestScheme(r), r.Host)

	var body []byte
	var contentType string
	var err error

	switch format {
	case "png":
		var img *image.RGBA
		img, err = h.renderRecord(qr, r)
		if err == nil {
			body, err = render.EncodePNG(img)
		}
		contentType = "image/png"
	case "svg":
		body, err = render.EncodeSVG(payload, opts)
		contentType = "image/svg+xml"
	case "pdf":
		var img *image.RGBA
		img, err = h.renderRecord(qr, r)
		if err == nil {
			body, err = render.EncodePDF(img)
		}
		contentType = "application/pdf"
	default:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, fmt.Sprintf("Unsupported format %q", format), nil)
		return
	}

	if err != nil {
		writeQRError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", qr.Name+"."+format))
	w.Write(body)
}

// Preview renders a PNG from request parameters without persisting anything.
func (h *QRHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req CreateQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	payload := req.Data
	if payload == "" {
		payload = req.DestinationURL
	}
	if payload == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Nothing to encode", nil)
		return
	}

	img, err := render.Generate(payload, render.Options{
		FillColor:       req.FillColor,
		BackColor:       req.BackColor,
		ErrorCorrection: req.ErrorCorrection,
		Size:            req.Size,
	})
	if err != nil {
		writeQRError(w, err)
		return
	}

	pngBytes, err := render.EncodePNG(img)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to encode image", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(pngBytes)
}

// UploadLogo stores a center-overlay image for the record. PNG and JPEG
// are accepted; the overlay is scaled at render time.
func (h *QRHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	qr, ok := h.ownedRecord(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid multipart body", nil)
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing logo file", nil)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.logoDir, 0o755); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Logo must be PNG or JPEG", nil)
		return
	}

	logoPath := filepath.Join(h.logoDir, qr.ID+ext)
	dst, err := os.Create(logoPath)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
		return
	}

	if err := h.codes.AttachLogo(qr.ID, logoPath); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.audit.Log(r.Context(), "qrcode.upload_logo", "qr_code", qr.ID, r.RemoteAddr, nil)

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "logo attached"}`))
}

func (h *QRHandler) renderRecord(qr *qrcodes.QRCode, r *http.Request) (*image.RGBA, error) {
	opts := render.Options{
		FillColor:       qr.FillColor,
		BackColor:       qr.BackColor,
		ErrorCorrection: qr.ErrorCorrection,
		Size:            qr.Size,
	}

	if qr.LogoPath != "" {
		logo, err := render.LoadLogo(qr.LogoPath)
		if err == nil {
			opts.Logo = logo
		}
	}

	return render.Generate(qr.DataURL(requestScheme(r), r.Host), opts)
}

// ownedRecord loads the record named by the qr_id route param and enforces
// ownership. Records owned by other users 404 rather than 403 so record IDs
// are not probeable.
func (h *QRHandler) ownedRecord(w http.ResponseWriter, r *http.Request) (*qrcodes.QRCode, bool) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	qrID := params.ByName("qr_id")

	qr, err := h.codes.Get(qrID)
	if err != nil {
		if goerrors.Is(err, qrcodes.ErrNotFound) {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "QR code not found", nil)
		} else {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		}
		return nil, false
	}
	if qr.UserID != claims.UserID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "QR code not found", nil)
		return nil, false
	}
	return qr, true
}

func writeQRError(w http.ResponseWriter, err error) {
	switch {
	case goerrors.Is(err, qrcodes.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "QR code not found", nil)
	case goerrors.Is(err, render.ErrInvalidColor):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidColor, err.Error(), nil)
	case goerrors.Is(err, render.ErrEncodingOverflow):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeEncodingOverflow, err.Error(), nil)
	case goerrors.Is(err, qrcodes.ErrNotDynamic):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeNotDynamic, "Record is not dynamic", nil)
	case goerrors.Is(err, qrcodes.ErrShortLinkExhausted):
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
	case goerrors.Is(err, qrcodes.ErrMissingPayload), goerrors.Is(err, qrcodes.ErrMissingDestination):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
	default:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
	}
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

func pagination(r *http.Request) (limit, offset int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return limit, (page - 1) * limit
}
