package qrcodes

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

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
		ip_address TEXT,
		user_agent TEXT,
		country TEXT,
		city TEXT,
		device_type TEXT,
		browser TEXT,
		os TEXT,
		scanned_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func newStaticRecord(id, userID string) *QRCode {
	now := time.Now().Unix()
	return &QRCode{
		ID:              id,
		UserID:          userID,
		Name:            "test",
		Kind:            KindStatic,
		Data:            "https://example.com",
		FillColor:       "#000000",
		BackColor:       "#FFFFFF",
		ErrorCorrection: "M",
		Size:            300,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	if err := repo.Create(newStaticRecord("qr_1", "usr_1")); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	fetched, err := repo.GetByID("qr_1")
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if fetched.Kind != KindStatic || fetched.Data != "https://example.com" {
		t.Errorf("unexpected record: %+v", fetched)
	}

	if _, err := repo.GetByID("qr_missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ShortLinkUniqueConstraint(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	a := newStaticRecord("qr_1", "usr_1")
	a.Kind = KindDynamic
	a.Data = ""
	a.ShortLink = "abc12345"
	a.DestinationURL = "https://example.com"
	if err := repo.Create(a); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	b := newStaticRecord("qr_2", "usr_1")
	b.Kind = KindDynamic
	b.Data = ""
	b.ShortLink = "abc12345"
	b.DestinationURL = "https://example.org"
	if err := repo.Create(b); err == nil {
		t.Error("expected unique constraint violation for duplicate short link")
	}
}

func TestRepository_MultipleStaticRecordsWithoutShortLink(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	// Static records store NULL short links; two of them must not collide
	// on the UNIQUE constraint.
	if err := repo.Create(newStaticRecord("qr_1", "usr_1")); err != nil {
		t.Fatalf("failed to create first static record: %v", err)
	}
	if err := repo.Create(newStaticRecord("qr_2", "usr_1")); err != nil {
		t.Errorf("second static record should not collide: %v", err)
	}
}

func TestRepository_GetDynamicByShortLink(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	dyn := newStaticRecord("qr_1", "usr_1")
	dyn.Kind = KindDynamic
	dyn.Data = ""
	dyn.ShortLink = "dyn00001"
	dyn.DestinationURL = "https://example.com/landing"
	if err := repo.Create(dyn); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	got, err := repo.GetDynamicByShortLink("dyn00001")
	if err != nil {
		t.Fatalf("failed to resolve short link: %v", err)
	}
	if got.DestinationURL != "https://example.com/landing" {
		t.Errorf("unexpected destination: %s", got.DestinationURL)
	}

	if _, err := repo.GetDynamicByShortLink("missing1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown token, got %v", err)
	}
}

func TestRepository_ListByUserOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	older := newStaticRecord("qr_old", "usr_1")
	older.CreatedAt = 1000
	newer := newStaticRecord("qr_new", "usr_1")
	newer.CreatedAt = 2000
	other := newStaticRecord("qr_other", "usr_2")

	for _, qr := range []*QRCode{older, newer, other} {
		if err := repo.Create(qr); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}
	}

	records, err := repo.ListByUser("usr_1", 50, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "qr_new" || records[1].ID != "qr_old" {
		t.Errorf("expected newest-first ordering, got %s, %s", records[0].ID, records[1].ID)
	}
}

func TestRepository_ScanCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	if err := repo.Create(newStaticRecord("qr_1", "usr_1")); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	for i, id := range []string{"scan_1", "scan_2"} {
		_, err := db.Exec(`INSERT INTO scans (id, qr_code_id, scanned_at) VALUES (?, ?, ?)`, id, "qr_1", 1000+i)
		if err != nil {
			t.Fatalf("failed to insert scan: %v", err)
		}
	}

	count, err := repo.ScanCount("qr_1")
	if err != nil {
		t.Fatalf("failed to count scans: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 scans, got %d", count)
	}
}
