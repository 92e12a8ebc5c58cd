package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/payment"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

const secret = "test-secret"

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

type testServer struct {
	e     *echo.Echo
	clock *stepClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &stepClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg := prometheus.NewRegistry()
	m := metrics.NewEscrowMetrics(reg)
	escrowRepo := memory.NewEscrowRepository()
	paymentRepo := memory.NewPaymentRepository()
	audit := memory.NewAuditLog()

	escrowUc := escrow.NewDefaultEscrowUsecase(escrowRepo, paymentRepo, nil, audit, nil, clock, m, logger, escrow.Config{})
	paymentUc := payment.NewDefaultPaymentUsecase(paymentRepo, nil, audit, clock, m, logger)

	e := New(Deps{
		EscrowHandler:  handlers.NewEscrowHandler(escrowUc, clock, logger),
		PaymentHandler: handlers.NewPaymentHandler(paymentUc, logger),
		HealthHandler:  handlers.NewHealthHandler(nil),
		JWTSecret:      secret,
		Logger:         logger,
		Gatherer:       reg,
	})
	return &testServer{e: e, clock: clock}
}

func token(t *testing.T, subject string, staff bool) string {
	t.Helper()
	tok, err := middleware.IssueToken(secret, middleware.Claims{
		IsStaff: staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec.Code, out
}

func TestEscrowLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin", true)
	alice := token(t, "alice", false)

	code, body := s.do(t, http.MethodPost, "/api/v1/escrows", admin,
		`{"payer_id":"alice","receiver_id":"bob","amount":"250.00","description":"logo design"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, body)
	}
	id := body["id"].(string)
	if body["status"] != "pending" || body["amount"] != "250.00" {
		t.Fatalf("create body = %v", body)
	}
	if body["release_at"] != "2025-03-08T12:00:00Z" {
		t.Errorf("release_at = %v", body["release_at"])
	}

	code, _ = s.do(t, http.MethodGet, "/api/v1/escrows/"+id, alice, "")
	if code != http.StatusOK {
		t.Fatalf("party get: %d", code)
	}
	code, body = s.do(t, http.MethodGet, "/api/v1/me/escrows", alice, "")
	if code != http.StatusOK || body["pagination"].(map[string]any)["total_items"].(float64) != 1 {
		t.Fatalf("me/escrows: %d %v", code, body)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/escrows/"+id+"/release", alice, "")
	if code != http.StatusForbidden {
		t.Fatalf("payer release: %d, want 403", code)
	}

	code, body = s.do(t, http.MethodPost, "/api/v1/escrows/"+id+"/dispute", alice, "")
	if code != http.StatusOK || body["status"] != "disputed" {
		t.Fatalf("dispute: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/v1/escrows/"+id+"/release", admin, "")
	if code != http.StatusConflict {
		t.Fatalf("release disputed: %d, want 409", code)
	}
	details := body["details"].(map[string]any)
	if body["code"] != "invalid_state" || details["current_status"] != "disputed" {
		t.Errorf("error body = %v", body)
	}

	code, body = s.do(t, http.MethodPost, "/api/v1/escrows/"+id+"/refund", admin, "")
	if code != http.StatusOK || body["status"] != "refunded" || body["refunded_at"] == nil {
		t.Fatalf("refund: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/api/v1/escrows/summary", admin, "")
	if code != http.StatusOK || body["refunded_total"] != "250.00" {
		t.Fatalf("summary: %d %v", code, body)
	}
}

func TestCreateEscrowValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin", true)

	code, body := s.do(t, http.MethodPost, "/api/v1/escrows", admin,
		`{"payer_id":"alice","receiver_id":"bob","amount":"-5"}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("negative amount: %d, want 422", code)
	}
	if body["details"].(map[string]any)["amount"] == nil {
		t.Errorf("details = %v", body["details"])
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/escrows", admin, `{"amount": "ten"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("malformed amount: %d, want 400", code)
	}

	code, body = s.do(t, http.MethodGet, "/api/v1/escrows", admin, "")
	if code != http.StatusOK || body["pagination"].(map[string]any)["total_items"].(float64) != 0 {
		t.Fatalf("nothing may be persisted: %d %v", code, body)
	}
}

func TestSweepOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin", true)

	code, body := s.do(t, http.MethodPost, "/api/v1/escrows", admin,
		`{"payer_id":"alice","receiver_id":"bob","amount":"10"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, body)
	}

	s.clock.now = s.clock.now.Add(6 * 24 * time.Hour)
	_, body = s.do(t, http.MethodPost, "/api/v1/escrows/sweep", admin, "")
	if body["count"].(float64) != 0 {
		t.Fatalf("early sweep released %v", body["count"])
	}

	s.clock.now = s.clock.now.Add(2 * 24 * time.Hour)
	code, body = s.do(t, http.MethodPost, "/api/v1/escrows/sweep", admin, "")
	if code != http.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("sweep: %d %v", code, body)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/escrows/sweep", token(t, "alice", false), "")
	if code != http.StatusForbidden {
		t.Fatalf("non-staff sweep: %d", code)
	}
}

func TestPaymentsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin", true)
	alice := token(t, "alice", false)

	code, body := s.do(t, http.MethodPost, "/api/v1/payments", alice, `{"booking_id":"b-1","payee_id":"bob","amount":"99.90"}`)
	if code != http.StatusCreated || body["payer_id"] != "alice" {
		t.Fatalf("initiate: %d %v", code, body)
	}
	id := body["id"].(string)

	code, _ = s.do(t, http.MethodPost, "/api/v1/payments", alice, `{"booking_id":"b-1","amount":"1"}`)
	if code != http.StatusConflict {
		t.Fatalf("duplicate booking: %d, want 409", code)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/payments/"+id+"/release", admin, "")
	if code != http.StatusConflict {
		t.Fatalf("release initiated: %d, want 409", code)
	}
	code, body = s.do(t, http.MethodPost, "/api/v1/payments/"+id+"/hold", admin, "")
	if code != http.StatusOK || body["status"] != "held" {
		t.Fatalf("hold: %d %v", code, body)
	}
	code, body = s.do(t, http.MethodGet, "/api/v1/payments/by-booking/b-1", alice, "")
	if code != http.StatusOK || body["id"] != id {
		t.Fatalf("by booking: %d %v", code, body)
	}
}

func TestAuthAndOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/v1/me/escrows", "", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	forged, _ := middleware.IssueToken("other-secret", middleware.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"}})
	code, _ = s.do(t, http.MethodGet, "/api/v1/me/escrows", forged, "")
	if code != http.StatusUnauthorized {
		t.Fatalf("forged token: %d", code)
	}

	code, body := s.do(t, http.MethodGet, "/healthz", "", "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %d %v", code, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
