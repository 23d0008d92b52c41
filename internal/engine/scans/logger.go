package scans

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"qrgen/internal/pkg/geoip"
	"qrgen/internal/pkg/useragent"
)

// Logger composes user-agent classification, geolocation and persistence
// into a single scan record per redirect.
type Logger struct {
	repo     *Repository
	resolver geoip.Resolver
}

func NewLogger(repo *Repository, resolver geoip.Resolver) *Logger {
	return &Logger{repo: repo, resolver: resolver}
}

func (l *Logger) Log(qrID, ip, ua string) (*Scan, error) {
	country, err := l.resolver.Country(ip)
	if err != nil {
		country = "Unknown"
	}
	city, err := l.resolver.City(ip)
	if err != nil {
		city = "Unknown"
	}

	scan := &Scan{
		ID:         "scan_" + uuid.NewString(),
		QRCodeID:   qrID,
		IPAddress:  ip,
		UserAgent:  ua,
		Country:    country,
		City:       city,
		DeviceType: useragent.ClassifyDevice(ua),
		Browser:    useragent.ClassifyBrowser(ua),
		OS:         useragent.ClassifyOS(ua),
		ScannedAt:  time.Now().Unix(),
	}

	if err := l.repo.Create(scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// LogBestEffort records the scan and swallows failures: scan logging must
// never prevent the redirect response.
func (l *Logger) LogBestEffort(qrID, ip, ua string) {
	if _, err := l.Log(qrID, ip, ua); err != nil {
		log.Error().Err(err).Str("qr_code_id", qrID).Msg("failed to log scan")
	}
}
