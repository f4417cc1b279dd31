package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/bootstrap"
	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/observability"
	"github.com/spec-kit/clinic-booking/internal/repository/memory"
)

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{
			Name:                  "clinic-test",
			Version:               "test",
			RequestTimeoutSeconds: 5,
			CORSAllowOrigins:      "*",
		},
		Store:     config.StoreConfig{Driver: config.StoreDriverMemory},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		Identity:  config.IdentityConfig{Provider: config.IdentityProviderLocal, Locale: "en"},
		Booking:   config.BookingConfig{Timezone: "UTC", WindowDays: 90, ClosedWeekday: time.Sunday},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	a, err := bootstrap.New(context.Background(), cfg, zap.NewNop(), bootstrap.Options{
		Store:   memory.NewStore().Repositories(),
		Metrics: observability.NewMetrics("test"),
	})
	if err != nil {
		t.Fatalf("bootstrap.New() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a.HTTP()
}

type response struct {
	status int
	body   map[string]any
}

func (r response) data(t *testing.T) map[string]any {
	t.Helper()
	d, ok := r.body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", r.body)
	}
	return d
}

func (r response) errorCode() string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (r response) errorDetail(key string) any {
	e, _ := r.body["error"].(map[string]any)
	details, _ := e["details"].(map[string]any)
	return details[key]
}

func call(t *testing.T, app *fiber.App, method, path string, body any, token string) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.body)
	}
	return out
}

func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	res := call(t, app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"displayName": "Ana",
		"email":       email,
		"password":    "secret1",
	}, "")
	if res.status != http.StatusCreated {
		t.Fatalf("register status = %d body = %v", res.status, res.body)
	}
	token, _ := res.data(t)["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

// nextOpenDay returns a bookable date a few days ahead.
func nextOpenDay() string {
	d := time.Now().UTC().AddDate(0, 0, 2)
	for d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, testConfig())

	if res := call(t, app, http.MethodGet, "/health/live", nil, ""); res.status != http.StatusOK {
		t.Fatalf("live status = %d", res.status)
	}
	res := call(t, app, http.MethodGet, "/health/ready", nil, "")
	if res.status != http.StatusOK || res.body["status"] != "ready" {
		t.Fatalf("ready = %d %v", res.status, res.body)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.Contains(raw, []byte("test_http_requests_total")) {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	app := newTestApp(t, testConfig())
	res := call(t, app, http.MethodGet, "/api/v1/nothing", nil, "")
	if res.status != http.StatusNotFound || res.errorCode() != "NOT_FOUND" {
		t.Fatalf("status = %d body = %v", res.status, res.body)
	}
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, testConfig())
	token := register(t, app, "ana@example.com")

	dup := call(t, app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"displayName": "Ana", "email": "ana@example.com", "password": "secret1",
	}, "")
	if dup.status != http.StatusConflict || dup.errorCode() != "AUTH_REJECTED" || dup.errorDetail("reason") != "email-already-in-use" {
		t.Fatalf("duplicate register = %d %v", dup.status, dup.body)
	}

	missing := call(t, app, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ana@example.com"}, "")
	if missing.status != http.StatusBadRequest || missing.errorDetail("password") != "required" {
		t.Fatalf("login without password = %d %v", missing.status, missing.body)
	}

	wrong := call(t, app, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "ana@example.com", "password": "nope-nope",
	}, "")
	if wrong.status != http.StatusUnauthorized || wrong.errorDetail("reason") != "wrong-password" {
		t.Fatalf("wrong password = %d %v", wrong.status, wrong.body)
	}

	me := call(t, app, http.MethodGet, "/api/v1/auth/me", nil, token)
	if me.status != http.StatusOK || me.data(t)["email"] != "ana@example.com" {
		t.Fatalf("me = %d %v", me.status, me.body)
	}

	if res := call(t, app, http.MethodPost, "/api/v1/auth/logout", nil, token); res.status != http.StatusNoContent {
		t.Fatalf("logout status = %d", res.status)
	}
	after := call(t, app, http.MethodGet, "/api/v1/auth/me", nil, token)
	if after.status != http.StatusUnauthorized || after.errorCode() != "UNAUTHORIZED" {
		t.Fatalf("me after logout = %d %v", after.status, after.body)
	}
}

func TestBookingFlow(t *testing.T) {
	app := newTestApp(t, testConfig())

	if res := call(t, app, http.MethodGet, "/api/v1/appointments", nil, ""); res.status != http.StatusUnauthorized {
		t.Fatalf("anonymous dashboard status = %d", res.status)
	}

	token := register(t, app, "paciente@example.com")

	dash := call(t, app, http.MethodGet, "/api/v1/appointments", nil, token)
	if dash.status != http.StatusOK || dash.data(t)["catalogNotInitialized"] != true {
		t.Fatalf("empty dashboard = %d %v", dash.status, dash.body)
	}

	if res := call(t, app, http.MethodPost, "/api/v1/catalog/seed", nil, token); res.status != http.StatusCreated {
		t.Fatalf("seed status = %d %v", res.status, res.body)
	}
	if res := call(t, app, http.MethodPost, "/api/v1/catalog/seed", nil, token); res.status != http.StatusConflict {
		t.Fatalf("second seed status = %d", res.status)
	}

	treatments := call(t, app, http.MethodGet, "/api/v1/catalog/treatments", nil, "")
	tList, _ := treatments.body["data"].([]any)
	dentists := call(t, app, http.MethodGet, "/api/v1/catalog/dentists?available=true", nil, "")
	dList, _ := dentists.body["data"].([]any)
	if len(tList) == 0 || len(dList) == 0 {
		t.Fatalf("catalog lists empty after seed: %d %d", len(tList), len(dList))
	}
	treatmentID := tList[0].(map[string]any)["id"].(string)
	dentistID := dList[0].(map[string]any)["id"].(string)

	bad := call(t, app, http.MethodPost, "/api/v1/appointments", map[string]string{
		"treatmentId": treatmentID, "dentistId": dentistID, "date": nextOpenDay(), "time": "13:00",
	}, token)
	if bad.status != http.StatusBadRequest || bad.errorDetail("time") != "invalid_slot" {
		t.Fatalf("lunch slot = %d %v", bad.status, bad.body)
	}

	created := call(t, app, http.MethodPost, "/api/v1/appointments", map[string]string{
		"treatmentId": treatmentID, "dentistId": dentistID, "date": nextOpenDay(), "time": "08:00",
	}, token)
	if created.status != http.StatusCreated {
		t.Fatalf("create = %d %v", created.status, created.body)
	}
	id := created.data(t)["id"].(string)

	dash = call(t, app, http.MethodGet, "/api/v1/appointments", nil, token)
	entries, _ := dash.data(t)["appointments"].([]any)
	if len(entries) != 1 || dash.body["state"] != "ready" {
		t.Fatalf("dashboard after create = %v", dash.body)
	}

	other := register(t, app, "otro@example.com")
	if res := call(t, app, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", nil, other); res.status != http.StatusNotFound {
		t.Fatalf("foreign cancel status = %d", res.status)
	}

	move := map[string]string{"treatmentId": treatmentID, "dentistId": dentistID, "date": nextOpenDay(), "time": "16:00"}
	if res := call(t, app, http.MethodPut, "/api/v1/appointments/"+id, move, other); res.status != http.StatusNotFound {
		t.Fatalf("foreign reschedule status = %d", res.status)
	}
	moved := call(t, app, http.MethodPut, "/api/v1/appointments/"+id, move, token)
	if moved.status != http.StatusOK || moved.data(t)["time"] != "16:00" || moved.data(t)["status"] != "booked" {
		t.Fatalf("reschedule = %d %v", moved.status, moved.body)
	}

	for i := 0; i < 2; i++ {
		res := call(t, app, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", nil, token)
		if res.status != http.StatusOK || res.data(t)["status"] != "cancelled" {
			t.Fatalf("cancel #%d = %d %v", i+1, res.status, res.body)
		}
	}
}

func TestBookingOptions(t *testing.T) {
	app := newTestApp(t, testConfig())
	res := call(t, app, http.MethodGet, "/api/v1/appointments/options", nil, "")
	slots, _ := res.data(t)["slots"].([]any)
	if res.status != http.StatusOK || len(slots) != 17 {
		t.Fatalf("options = %d %v", res.status, res.body)
	}
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	app := newTestApp(t, cfg)

	body := map[string]string{"email": "x@example.com", "password": "secret1"}
	_ = call(t, app, http.MethodPost, "/api/v1/auth/login", body, "")
	res := call(t, app, http.MethodPost, "/api/v1/auth/login", body, "")
	if res.status != http.StatusTooManyRequests || res.errorCode() != "TOO_MANY_REQUESTS" {
		t.Fatalf("second login = %d %v", res.status, res.body)
	}
}
