package scans

import "database/sql"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(scan *Scan) error {
	query := `
		INSERT INTO scans (
			id, qr_code_id, ip_address, user_agent, country, city,
			device_type, browser, os, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		scan.ID,
		scan.QRCodeID,
		scan.IPAddress,
		scan.UserAgent,
		scan.Country,
		scan.City,
		scan.DeviceType,
		scan.Browser,
		scan.OS,
		scan.ScannedAt,
	)
	return err
}

func (r *Repository) ListByQRCode(qrID string, limit, offset int) ([]*Scan, error) {
	query := `
		SELECT id, qr_code_id, ip_address, user_agent, country, city,
		       device_type, browser, os, scanned_at
		FROM scans
		WHERE qr_code_id = ?
		ORDER BY scanned_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, qrID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Scan
	for rows.Next() {
		var s Scan
		if err := rows.Scan(&s.ID, &s.QRCodeID, &s.IPAddress, &s.UserAgent, &s.Country, &s.City, &s.DeviceType, &s.Browser, &s.OS, &s.ScannedAt); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}

func (r *Repository) CountByQRCode(qrID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM scans WHERE qr_code_id = ?", qrID).Scan(&count)
	return count, err
}
