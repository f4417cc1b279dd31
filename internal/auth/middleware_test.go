package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-booking/internal/domain"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

type stubResolver struct {
	calls []string
}

func (s *stubResolver) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	s.calls = append(s.calls, token)
	if token != "good" {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return &domain.Session{Identity: domain.Identity{UserID: "u-1"}}, nil
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &stubResolver{}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/me", NewAuthMiddleware(resolver).Handle, func(c *fiber.Ctx) error {
		session, err := RequireSession(c)
		if err != nil {
			return err
		}
		return c.SendString(session.UserID)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "rejected", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "accepted", header: "bearer good", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}

	if len(resolver.calls) != 2 {
		t.Errorf("resolver calls = %v, want 2", resolver.calls)
	}
}
