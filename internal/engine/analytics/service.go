package analytics

import "time"

const DefaultWindowDays = 30

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ScansByDay returns the per-day scan counts over the trailing window,
// oldest first. The result is sparse: zero-filling is a presentation
// concern.
func (s *Service) ScansByDay(qrID string, windowDays int) ([]DayCount, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays).Unix()
	return s.repo.ScansPerDay(qrID, since)
}

func (s *Service) Breakdown(qrID, dimension string) ([]DimensionCount, error) {
	return s.repo.Breakdown(qrID, dimension)
}

func (s *Service) Overview(userID string) (*Overview, error) {
	return s.repo.GetOverview(userID)
}
