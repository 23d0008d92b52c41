package bulk

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"qrgen/internal/engine/qrcodes"
)

func setupBulkDB(t *testing.T) *sql.DB {
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
	CREATE TABLE bulk_jobs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		file_path TEXT DEFAULT '',
		result_path TEXT DEFAULT '',
		error_message TEXT DEFAULT '',
		created_at INTEGER NOT NULL,
		completed_at INTEGER
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func newTestJob(t *testing.T, jobs *Repository, filePath string) *Job {
	t.Helper()
	job := &Job{
		ID:        "bulk_test",
		UserID:    "usr_1",
		Status:    StatusPending,
		FilePath:  filePath,
		CreatedAt: time.Now().Unix(),
	}
	if err := jobs.Create(job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func TestProcessor_Completes(t *testing.T) {
	db := setupBulkDB(t)
	dir := t.TempDir()

	csvContent := "name,data,fill_color,back_color,error_correction,size\n" +
		"promo,https://example.com/a,#FF0000,#FFFFFF,H,200\n" +
		"promo,https://example.com/b,,,,\n" +
		"menu,https://example.com/c,#0000FF,,L,150\n" +
		"skipped,,,,,\n"
	filePath := writeCSV(t, dir, csvContent)

	jobs := NewRepository(db)
	codes := qrcodes.NewService(qrcodes.NewRepository(db), 10)
	proc := NewProcessor(jobs, codes, dir, 100)

	job := newTestJob(t, jobs, filePath)
	if err := proc.Process(job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := jobs.GetByID(job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", got.Status, got.ErrorMessage)
	}
	if got.ResultPath == "" || got.CompletedAt == nil {
		t.Fatal("completed job missing result path or completion time")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM qr_codes WHERE user_id = 'usr_1'").Scan(&count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 records (empty-data row skipped), got %d", count)
	}

	raw, err := os.ReadFile(got.ResultPath)
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"promo.png", "promo-2.png", "menu.png"} {
		if !names[want] {
			t.Errorf("archive missing entry %s (have %v)", want, names)
		}
	}
}

func TestProcessor_FailsOnBadRow(t *testing.T) {
	db := setupBulkDB(t)
	dir := t.TempDir()

	// Second row carries an invalid fill color; the first row's record
	// should survive the failure.
	csvContent := "name,data,fill_color\n" +
		"ok,https://example.com/a,#00FF00\n" +
		"bad,https://example.com/b,notacolor\n"
	filePath := writeCSV(t, dir, csvContent)

	jobs := NewRepository(db)
	codes := qrcodes.NewService(qrcodes.NewRepository(db), 10)
	proc := NewProcessor(jobs, codes, dir, 100)

	job := newTestJob(t, jobs, filePath)
	if err := proc.Process(job); err == nil {
		t.Fatal("expected processing error")
	}

	got, err := jobs.GetByID(job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Error("failed job missing error message")
	}
	if got.ResultPath != "" {
		t.Errorf("failed job should have no result, got %s", got.ResultPath)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM qr_codes").Scan(&count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected the pre-failure record to survive, got %d rows", count)
	}
}

func TestProcessor_MissingColumns(t *testing.T) {
	db := setupBulkDB(t)
	dir := t.TempDir()

	filePath := writeCSV(t, dir, "title,payload\nx,y\n")

	jobs := NewRepository(db)
	codes := qrcodes.NewService(qrcodes.NewRepository(db), 10)
	proc := NewProcessor(jobs, codes, dir, 100)

	job := newTestJob(t, jobs, filePath)
	if err := proc.Process(job); err == nil {
		t.Fatal("expected error for missing columns")
	}

	got, _ := jobs.GetByID(job.ID)
	if got.Status != StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
}

func TestRepository_ClaimNext(t *testing.T) {
	db := setupBulkDB(t)
	jobs := NewRepository(db)

	older := &Job{ID: "bulk_a", UserID: "usr_1", Status: StatusPending, CreatedAt: 100}
	newer := &Job{ID: "bulk_b", UserID: "usr_1", Status: StatusPending, CreatedAt: 200}
	if err := jobs.Create(older); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := jobs.Create(newer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claimed, err := jobs.ClaimNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed == nil || claimed.ID != "bulk_a" {
		t.Fatalf("expected oldest pending job, got %+v", claimed)
	}
	if claimed.Status != StatusProcessing {
		t.Errorf("claimed job should be processing, got %s", claimed.Status)
	}

	second, err := jobs.ClaimNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == nil || second.ID != "bulk_b" {
		t.Fatalf("expected second job, got %+v", second)
	}

	third, err := jobs.ClaimNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third != nil {
		t.Errorf("expected empty queue, got %+v", third)
	}
}
