package qrcodes

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo        *Repository
	maxAttempts int
}

func NewService(repo *Repository, maxAttempts int) *Service {
	return &Service{repo: repo, maxAttempts: maxAttempts}
}

// Create validates the request, assigns a short-link token to dynamic
// records and persists. Validation happens before any datastore write.
func (s *Service) Create(req *QRCode) (*QRCode, error) {
	applyDefaults(req)

	if err := ValidateRecord(req); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	qr := &QRCode{
		ID:              "qr_" + uuid.NewString(),
		UserID:          req.UserID,
		Name:            req.Name,
		Kind:            req.Kind,
		Data:            req.Data,
		DestinationURL:  req.DestinationURL,
		FillColor:       req.FillColor,
		BackColor:       req.BackColor,
		ErrorCorrection: req.ErrorCorrection,
		Size:            req.Size,
		LogoPath:        req.LogoPath,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if qr.Kind == KindDynamic {
		token, err := GenerateShortLink(s.repo, s.maxAttempts)
		if err != nil {
			return nil, err
		}
		qr.ShortLink = token
	}

	if err := s.repo.Create(qr); err != nil {
		return nil, err
	}

	return qr, nil
}

func (s *Service) Get(id string) (*QRCode, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(userID string, limit, offset int) ([]*QRCode, error) {
	return s.repo.ListByUser(userID, limit, offset)
}

// UpdateDestination changes where a dynamic record redirects. Static
// records are immutable after creation.
func (s *Service) UpdateDestination(id, destinationURL string) (*QRCode, error) {
	qr, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if qr.Kind != KindDynamic {
		return nil, ErrNotDynamic
	}
	if destinationURL == "" {
		return nil, ErrMissingDestination
	}
	if err := validateURL(destinationURL); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDestination(id, destinationURL); err != nil {
		return nil, err
	}

	qr.DestinationURL = destinationURL
	return qr, nil
}

func (s *Service) AttachLogo(id, logoPath string) error {
	return s.repo.UpdateLogoPath(id, logoPath)
}

func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

func (s *Service) ScanCount(id string) (int, error) {
	return s.repo.ScanCount(id)
}

func applyDefaults(req *QRCode) {
	if req.Kind == "" {
		req.Kind = KindStatic
	}
	if req.FillColor == "" {
		req.FillColor = "#000000"
	}
	if req.BackColor == "" {
		req.BackColor = "#FFFFFF"
	}
	if req.ErrorCorrection == "" {
		req.ErrorCorrection = "M"
	}
	if req.Size == 0 {
		req.Size = 300
	}
}
