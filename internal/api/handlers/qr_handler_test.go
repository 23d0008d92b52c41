package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/engine/qrcodes"
	"qrgen/internal/engine/redirect"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/auth"
)

func setupQRHandler(t *testing.T) (*sql.DB, *QRHandler) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A single connection keeps every statement, including the async audit
	// insert, on the same in-memory database.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE qr_codes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		data TEXT DEFAULT '',
		short_link TEXT UNIQUE,
		destination_url TEXT DEFAULT '',
		fill_color TEXT DEFAULT '#000000',
		back_color TEXT DEFAULT '#FFFFFF',
		error_correction TEXT DEFAULT 'M',
		size INTEGER DEFAULT 300,
		logo_path TEXT DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE scans (
		id TEXT PRIMARY KEY,
		qr_code_id TEXT NOT NULL,
		ip_address TEXT DEFAULT '',
		user_agent TEXT DEFAULT '',
		country TEXT DEFAULT 'Unknown',
		city TEXT DEFAULT 'Unknown',
		device_type TEXT DEFAULT 'Desktop',
		browser TEXT DEFAULT 'Unknown',
		os TEXT DEFAULT 'Unknown',
		scanned_at INTEGER NOT NULL
	);
	CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT DEFAULT '',
		action TEXT NOT NULL,
		resource_type TEXT DEFAULT '',
		resource_id TEXT DEFAULT '',
		metadata TEXT DEFAULT '{}',
		ip_address TEXT DEFAULT '',
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	repo := qrcodes.NewRepository(db)
	service := qrcodes.NewService(repo, 10)
	resolver := redirect.NewResolver(repo, time.Minute)
	handler := NewQRHandler(service, resolver, audit.NewLogger(db), t.TempDir())

	return db, handler
}

func authedRequest(method, path string, body []byte, userID string, params httprouter.Params) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), apiContext.Claims, &auth.Claims{UserID: userID, Email: userID + "@example.com"})
	if params != nil {
		ctx = context.WithValue(ctx, apiContext.Params, params)
	}
	return req.WithContext(ctx)
}

func TestQRHandler_CreateStatic(t *testing.T) {
	_, handler := setupQRHandler(t)

	body, _ := json.Marshal(CreateQRRequest{
		Name: "wifi",
		Kind: "static",
		Data: "WIFI:S:guest;;",
	})
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest("POST", "/api/v1/qrcodes", body, "usr_1", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var qr qrcodes.QRCode
	if err := json.Unmarshal(rec.Body.Bytes(), &qr); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if qr.UserID != "usr_1" || qr.Kind != "static" {
		t.Errorf("unexpected record: %+v", qr)
	}
	if qr.ShortLink != "" {
		t.Error("static record must not carry a short link")
	}
	if qr.FillColor != "#000000" || qr.Size != 300 {
		t.Errorf("defaults not applied: %+v", qr)
	}
}

func TestQRHandler_CreateDynamic(t *testing.T) {
	_, handler := setupQRHandler(t)

	body, _ := json.Marshal(CreateQRRequest{
		Name:           "campaign",
		Kind:           "dynamic",
		DestinationURL: "https://example.com/spring",
	})
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest("POST", "/api/v1/qrcodes", body, "usr_1", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var qr qrcodes.QRCode
	json.Unmarshal(rec.Body.Bytes(), &qr)
	if len(qr.ShortLink) != 8 {
		t.Errorf("expected 8-char short link, got %q", qr.ShortLink)
	}
}

func TestQRHandler_CreateValidationErrors(t *testing.T) {
	_, handler := setupQRHandler(t)

	tests := []struct {
		name string
		req  CreateQRRequest
		code string
	}{
		{"static without data", CreateQRRequest{Name: "x", Kind: "static"}, "INVALID_INPUT"},
		{"dynamic without destination", CreateQRRequest{Name: "x", Kind: "dynamic"}, "INVALID_INPUT"},
		{"bad color", CreateQRRequest{Name: "x", Kind: "static", Data: "y", FillColor: "red"}, "INVALID_COLOR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			rec := httptest.NewRecorder()
			handler.Create(rec, authedRequest("POST", "/api/v1/qrcodes", body, "usr_1", nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var resp struct {
				Code string `json:"code"`
			}
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
		})
	}
}

func TestQRHandler_OwnershipHidden(t *testing.T) {
	_, handler := setupQRHandler(t)

	body, _ := json.Marshal(CreateQRRequest{Name: "mine", Kind: "static", Data: "x"})
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest("POST", "/api/v1/qrcodes", body, "usr_1", nil))

	var qr qrcodes.QRCode
	json.Unmarshal(rec.Body.Bytes(), &qr)

	// Another user sees 404, not 403.
	params := httprouter.Params{{Key: "qr_id", Value: qr.ID}}
	rec = httptest.NewRecorder()
	handler.Get(rec, authedRequest("GET", "/api/v1/qrcodes/"+qr.ID, nil, "usr_2", params))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign record, got %d", rec.Code)
	}
}

func TestQRHandler_DownloadFormats(t *testing.T) {
	_, handler := setupQRHandler(t)

	body, _ := json.Marshal(CreateQRRequest{Name: "menu", Kind: "static", Data: "https://example.com/menu"})
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest("POST", "/api/v1/qrcodes", body, "usr_1", nil))

	var qr qrcodes.QRCode
	json.Unmarshal(rec.Body.Bytes(), &qr)

	tests := []struct {
		format      string
		contentType string
		prefix      []byte
	}{
		{"png", "image/png", []byte("\x89PNG")},
		{"svg", "image/svg+xml", []byte("<svg")},
		{"pdf", "application/pdf", []byte("%PDF")},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			params := httprouter.Params{
				{Key: "qr_id", Value: qr.ID},
				{Key: "format", Value: tt.format},
			}
			rec := httptest.NewRecorder()
			handler.Download(rec, authedRequest("GET", "/api/v1/qrcodes/"+qr.ID+"/download/"+tt.format, nil, "usr_1", params))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("expected %s, got %s", tt.contentType, ct)
			}
			if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="menu.`+tt.format+`"` {
				t.Errorf("unexpected disposition %q", cd)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), tt.prefix) {
				t.Errorf("body does not look like %s", tt.format)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		params := httprouter.Params{
			{Key: "qr_id", Value: qr.ID},
			{Key: "format", Value: "gif"},
		}
		rec := httptest.NewRecorder()
		handler.Download(rec, authedRequest("GET", "/api/v1/qrcodes/"+qr.ID+"/download/gif", nil, "usr_1", params))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestQRHandler_UpdateDestinationStaticRejected(t *testing.T) {
	_, handler := setupQRHandler(t)

	body, _ := json.Marshal(CreateQRRequest{Name: "card", Kind: "static", Data: "x"})
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest("POST", "/api/v1/qrcodes", body, "usr_1", nil))

	var qr qrcodes.QRCode
	json.Unmarshal(rec.Body.Bytes(), &qr)

	params := httprouter.Params{{Key: "qr_id", Value: qr.ID}}
	update, _ := json.Marshal(UpdateDestinationRequest{DestinationURL: "https://example.com/new"})
	rec = httptest.NewRecorder()
	handler.UpdateDestination(rec, authedRequest("PATCH", "/api/v1/qrcodes/"+qr.ID+"/destination", update, "usr_1", params))

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for static record, got %d", rec.Code)
	}
}

func TestQRHandler_Preview(t *testing.T) {
	_, handler := setupQRHandler(t)

	body, _ := json.Marshal(CreateQRRequest{Data: "https://example.com"})
	rec := httptest.NewRecorder()
	handler.Preview(rec, authedRequest("POST", "/api/v1/qrcodes/preview", body, "usr_1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("preview did not return a PNG")
	}

	var db *sql.DB
	db, handler = setupQRHandler(t)
	handler.Preview(httptest.NewRecorder(), authedRequest("POST", "/api/v1/qrcodes/preview", body, "usr_1", nil))
	var count int
	db.QueryRow("SELECT COUNT(*) FROM qr_codes").Scan(&count)
	if count != 0 {
		t.Errorf("preview must not persist records, got %d rows", count)
	}
}
