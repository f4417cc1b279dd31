package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-booking/internal/api/dto"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/service"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// CatalogHandler serves the treatment and dentist reference lists.
type CatalogHandler struct {
	catalog *service.CatalogService
	booking *service.BookingService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService, booking *service.BookingService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, booking: booking}
}

// Treatments handles GET /api/v1/catalog/treatments.
func (h *CatalogHandler) Treatments(c *fiber.Ctx) error {
	list, err := h.catalog.ListTreatments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// Dentists handles GET /api/v1/catalog/dentists. ?available=true limits the list to
// dentists offered for new bookings.
func (h *CatalogHandler) Dentists(c *fiber.Ctx) error {
	var q dto.DentistsQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationRejected("invalid query", map[string]any{"available": "boolean"})
	}

	var (
		list []domain.Dentist
		err  error
	)
	if q.Available {
		list, err = h.catalog.AvailableDentists(c.UserContext())
	} else {
		list, err = h.catalog.ListDentists(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// Seed handles POST /api/v1/catalog/seed.
func (h *CatalogHandler) Seed(c *fiber.Ctx) error {
	res, err := h.booking.SeedCatalog(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": res})
}
