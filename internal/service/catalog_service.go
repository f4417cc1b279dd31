package service

import (
	"context"
	"sort"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

// CatalogService reads the treatment and dentist reference lists.
type CatalogService struct {
	catalog repository.CatalogRepository
}

// NewCatalogService builds the reader.
func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ListTreatments returns every treatment sorted by name. An empty list is not an error.
func (s *CatalogService) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	list, err := s.catalog.ListTreatments(ctx)
	if err != nil {
		return nil, storeError(err, "treatment")
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ListDentists returns every dentist sorted by name, including unavailable ones.
func (s *CatalogService) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	list, err := s.catalog.ListDentists(ctx)
	if err != nil {
		return nil, storeError(err, "dentist")
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// AvailableDentists returns the dentists offered for new bookings.
func (s *CatalogService) AvailableDentists(ctx context.Context) ([]domain.Dentist, error) {
	list, err := s.ListDentists(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterAvailable(list), nil
}
