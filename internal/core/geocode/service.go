package geocode

import (
	"context"
	"log/slog"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Resolve looks up a free-text label. Absence is reported, not raised.
func (service *Service) Resolve(context context.Context, label string) (GeoCode, bool, error) {
	return service.repo.Resolve(context, label)
}

// List returns all geo codes at the requested level.
func (service *Service) List(context context.Context, level Level) ([]GeoCode, error) {
	return service.repo.List(context, level)
}
