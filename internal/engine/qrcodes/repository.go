package qrcodes

import (
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("QR code not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(qr *QRCode) error {
	query := `
		INSERT INTO qr_codes (
			id, user_id, name, kind, data, short_link, destination_url,
			fill_color, back_color, error_correction, size, logo_path,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// short_link carries a UNIQUE constraint; records without a token must
	// store NULL rather than "" so static rows don't collide with each other.
	var shortLink interface{}
	if qr.ShortLink != "" {
		shortLink = qr.ShortLink
	}

	_, err := r.db.Exec(query,
		qr.ID,
		qr.UserID,
		qr.Name,
		qr.Kind,
		qr.Data,
		shortLink,
		qr.DestinationURL,
		qr.FillColor,
		qr.BackColor,
		qr.ErrorCorrection,
		qr.Size,
		qr.LogoPath,
		qr.CreatedAt,
		qr.UpdatedAt,
	)
	return err
}

func (r *Repository) GetByID(id string) (*QRCode, error) {
	query := `
		SELECT id, user_id, name, kind, data, short_link, destination_url,
		       fill_color, back_color, error_correction, size, logo_path,
		       created_at, updated_at
		FROM qr_codes WHERE id = ?
	`
	return scanRecord(r.db.QueryRow(query, id))
}

// GetDynamicByShortLink resolves a token to its dynamic record. Static
// records are never reachable through this path.
func (r *Repository) GetDynamicByShortLink(token string) (*QRCode, error) {
	query := `
		SELECT id, user_id, name, kind, data, short_link, destination_url,
		       fill_color, back_color, error_correction, size, logo_path,
		       created_at, updated_at
		FROM qr_codes WHERE short_link = ? AND kind = 'dynamic'
	`
	return scanRecord(r.db.QueryRow(query, token))
}

func (r *Repository) ExistsByShortLink(token string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM qr_codes WHERE short_link = ?)"
	err := r.db.QueryRow(query, token).Scan(&exists)
	return exists, err
}

func (r *Repository) UpdateDestination(id, destinationURL string) error {
	query := `UPDATE qr_codes SET destination_url = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, destinationURL, time.Now().Unix(), id)
	return err
}

func (r *Repository) UpdateLogoPath(id, logoPath string) error {
	query := `UPDATE qr_codes SET logo_path = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, logoPath, time.Now().Unix(), id)
	return err
}

func (r *Repository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM qr_codes WHERE id = ?", id)
	return err
}

func (r *Repository) ListByUser(userID string, limit, offset int) ([]*QRCode, error) {
	query := `
		SELECT id, user_id, name, kind, data, short_link, destination_url,
		       fill_color, back_color, error_correction, size, logo_path,
		       created_at, updated_at
		FROM qr_codes
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*QRCode
	for rows.Next() {
		qr, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, qr)
	}
	return records, rows.Err()
}

func (r *Repository) ScanCount(id string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM scans WHERE qr_code_id = ?", id).Scan(&count)
	return count, err
}

func scanRecord(s interface {
	Scan(dest ...interface{}) error
}) (*QRCode, error) {
	var qr QRCode
	var shortLink sql.NullString

	err := s.Scan(
		&qr.ID,
		&qr.UserID,
		&qr.Name,
		&qr.Kind,
		&qr.Data,
		&shortLink,
		&qr.DestinationURL,
		&qr.FillColor,
		&qr.BackColor,
		&qr.ErrorCorrection,
		&qr.Size,
		&qr.LogoPath,
		&qr.CreatedAt,
		&qr.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	qr.ShortLink = shortLink.String
	return &qr, nil
}
