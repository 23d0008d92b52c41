package qrcodes

import (
	"errors"
	"fmt"
	"net/url"

	"qrgen/internal/engine/render"
)

const (
	MinSize = 100
	MaxSize = 1000
)

var (
	ErrMissingPayload     = errors.New("static QR codes require data to encode")
	ErrMissingDestination = errors.New("dynamic QR codes require a destination URL")
	ErrNotDynamic         = errors.New("not a dynamic QR code")
)

// ValidateRecord checks a record before it touches the datastore.
func ValidateRecord(qr *QRCode) error {
	if qr.Name == "" {
		return errors.New("name is required")
	}

	switch qr.Kind {
	case KindStatic:
		if qr.Data == "" {
			return ErrMissingPayload
		}
	case KindDynamic:
		if qr.DestinationURL == "" {
			return ErrMissingDestination
		}
		if err := validateURL(qr.DestinationURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("kind must be %q or %q", KindStatic, KindDynamic)
	}

	if _, err := render.ParseHexColor(qr.FillColor); err != nil {
		return err
	}
	if _, err := render.ParseHexColor(qr.BackColor); err != nil {
		return err
	}

	switch qr.ErrorCorrection {
	case "L", "M", "Q", "H":
	default:
		return fmt.Errorf("error_correction must be one of L, M, Q, H")
	}

	if qr.Size < MinSize || qr.Size > MaxSize {
		return fmt.Errorf("size must be between %d and %d", MinSize, MaxSize)
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid destination URL format")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("destination URL must start with http:// or https://")
	}
	return nil
}
