package analytics

import (
	"database/sql"
	"fmt"
)

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

type DimensionCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Overview struct {
	TotalCodes   int          `json:"total_codes"`
	StaticCodes  int          `json:"static_codes"`
	DynamicCodes int          `json:"dynamic_codes"`
	TotalScans   int          `json:"total_scans"`
	RecentScans  []RecentScan `json:"recent_scans"`
}

// RecentScan is a scan row joined with the name of the code it hit, for the
// dashboard's activity feed.
type RecentScan struct {
	QRCodeID   string `json:"qr_code_id"`
	QRCodeName string `json:"qr_code_name"`
	DeviceType string `json:"device_type"`
	Browser    string `json:"browser"`
	Country    string `json:"country"`
	ScannedAt  int64  `json:"scanned_at"`
}

// Dimensions scans can be grouped by. The map doubles as a whitelist so the
// group-by column is never interpolated from raw input.
var dimensionColumns = map[string]string{
	"device":  "device_type",
	"browser": "browser",
	"country": "country",
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ScansPerDay groups scans since the given unix timestamp by UTC calendar
// date, ascending. Days without scans produce no row.
func (r *Repository) ScansPerDay(qrID string, since int64) ([]DayCount, error) {
	query := `
		SELECT date(scanned_at, 'unixepoch') AS day, COUNT(*)
		FROM scans
		WHERE qr_code_id = ? AND scanned_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.Query(query, qrID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *Repository) Breakdown(qrID, dimension string) ([]DimensionCount, error) {
	column, ok := dimensionColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dimension)
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) AS c
		FROM scans
		WHERE qr_code_id = ?
		GROUP BY %s
		ORDER BY c DESC
	`, column, column)

	rows, err := r.db.Query(query, qrID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DimensionCount
	for rows.Next() {
		var d DimensionCount
		if err := rows.Scan(&d.Value, &d.Count); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *Repository) GetOverview(userID string) (*Overview, error) {
	o := &Overview{}

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN kind = 'static' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN kind = 'dynamic' THEN 1 ELSE 0 END), 0)
		FROM qr_codes WHERE user_id = ?
	`, userID).Scan(&o.TotalCodes, &o.StaticCodes, &o.DynamicCodes)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*)
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.user_id = ?
	`, userID).Scan(&o.TotalScans)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT s.qr_code_id, q.name, s.device_type, s.browser, s.country, s.scanned_at
		FROM scans s
		JOIN qr_codes q ON q.id = s.qr_code_id
		WHERE q.user_id = ?
		ORDER BY s.scanned_at DESC
		LIMIT 10
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	o.RecentScans = []RecentScan{}
	for rows.Next() {
		var rs RecentScan
		if err := rows.Scan(&rs.QRCodeID, &rs.QRCodeName, &rs.DeviceType, &rs.Browser, &rs.Country, &rs.ScannedAt); err != nil {
			return nil, err
		}
		o.RecentScans = append(o.RecentScans, rs)
	}
	return o, rows.Err()
}
