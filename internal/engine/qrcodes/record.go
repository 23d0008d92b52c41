package qrcodes

import "fmt"

const (
	KindStatic  = "static"
	KindDynamic = "dynamic"
)

// QRCode is a user-owned QR configuration. Exactly one payload side is
// active depending on Kind: Data for static records, ShortLink plus
// DestinationURL for dynamic ones.
type QRCode struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Data           string `json:"data,omitempty"`
	ShortLink      string `json:"short_link,omitempty"`
	DestinationURL string `json:"destination_url,omitempty"`

	FillColor       string `json:"fill_color"`
	BackColor       string `json:"back_color"`
	ErrorCorrection string `json:"error_correction"`
	Size            int    `json:"size"`
	LogoPath        string `json:"-"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// DataURL returns the string a rendered symbol encodes. Static records
// encode their literal payload. Dynamic records encode the redirect URL,
// built from the requesting scheme and host when available and falling back
// to a root-relative path otherwise.
func (q *QRCode) DataURL(scheme, host string) string {
	if q.Kind == KindStatic {
		return q.Data
	}
	if host != "" {
		if scheme == "" {
			scheme = "http"
		}
		return fmt.Sprintf("%s://%s/redirect/%s/", scheme, host, q.ShortLink)
	}
	return fmt.Sprintf("/redirect/%s/", q.ShortLink)
}
