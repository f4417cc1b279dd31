package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-booking/internal/api/dto"
	"github.com/spec-kit/clinic-booking/internal/auth"
	"github.com/spec-kit/clinic-booking/internal/service"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// AppointmentsHandler exposes the booking workflow for the signed-in user.
type AppointmentsHandler struct {
	booking *service.BookingService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(booking *service.BookingService) *AppointmentsHandler {
	return &AppointmentsHandler{booking: booking}
}

// Options handles GET /api/v1/appointments/options.
func (h *AppointmentsHandler) Options(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.booking.Options()})
}

// Dashboard handles GET /api/v1/appointments. Partial failures are reported inside the
// payload, so the status is 200 unless every read failed.
func (h *AppointmentsHandler) Dashboard(c *fiber.Ctx) error {
	sess, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	dash, err := h.booking.Dashboard(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dash, "state": dash.State()})
}

// Create handles POST /api/v1/appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	sess, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationRejected("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	appt, err := h.booking.Create(c.UserContext(), sess, req.DraftInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appt})
}

// Cancel handles POST /api/v1/appointments/:id/cancel.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	sess, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	appt, err := h.booking.Cancel(c.UserContext(), sess, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appt})
}

// Reschedule handles PUT /api/v1/appointments/:id.
func (h *AppointmentsHandler) Reschedule(c *fiber.Ctx) error {
	sess, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationRejected("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	appt, err := h.booking.Reschedule(c.UserContext(), sess, c.Params("id"), req.DraftInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appt})
}
