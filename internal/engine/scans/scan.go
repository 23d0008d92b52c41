package scans

// Scan is an immutable log entry created each time a dynamic QR code's short
// link is resolved. Rows are never updated or deleted by the application.
type Scan struct {
	ID         string `json:"id"`
	QRCodeID   string `json:"qr_code_id"`
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	Country    string `json:"country"`
	City       string `json:"city"`
	DeviceType string `json:"device_type"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	ScannedAt  int64  `json:"scanned_at"`
}
