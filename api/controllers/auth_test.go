package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authsvc "github.com/ivdgroup/medlab-backend/internal/auth"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

type stubAuthService struct {
	signupInput  *authsvc.SignupInput
	signupErr    error
	loginErr     error
	requestedFor string
	verifyToken  string
	verifyErr    error
}

func (s *stubAuthService) Signup(ctx context.Context, input authsvc.SignupInput) (*authsvc.UserView, error) {
	s.signupInput = &input
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &authsvc.UserView{ID: uuid.New(), Email: input.Email, Name: input.Name, Role: "user"}, nil
}

func (s *stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &authsvc.Session{Token: "jwt"}, nil
}

func (s *stubAuthService) RequestMagicLink(ctx context.Context, email string) error {
	s.requestedFor = email
	return nil
}

func (s *stubAuthService) VerifyMagicLink(ctx context.Context, token string) (*authsvc.Session, error) {
	s.verifyToken = token
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &authsvc.Session{Token: "jwt"}, nil
}

func TestAuthSignup(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"email":"not-an-email"}`))
		rec := httptest.NewRecorder()
		AuthSignup(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.signupInput != nil {
			t.Fatalf("service must not run on invalid payload")
		}
	})

	t.Run("duplicate email maps to 400", func(t *testing.T) {
		stub := &stubAuthService{signupErr: pkgerrors.New(pkgerrors.CodeValidation, "email already registered")}
		body := `{"email":"lab@clinic.example","password":"longenough","name":"Dr. Kowalska"}`
		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthSignup(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{}
		body := `{"email":"lab@clinic.example","password":"longenough","name":"Dr. Kowalska"}`
		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthSignup(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "lab@clinic.example") {
			t.Fatalf("expected user payload, got %s", rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "password") {
			t.Fatalf("password must never appear in the response")
		}
	})
}

func TestAuthLogin(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		stub := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
		body := `{"email":"lab@clinic.example","password":"wrong-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		body := `{"email":"lab@clinic.example","password":"longenough"}`
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestMagicLinkRequestAlwaysSucceeds(t *testing.T) {
	stub := &stubAuthService{}
	body := `{"email":"nobody@clinic.example"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/magic-link", strings.NewReader(body))
	rec := httptest.NewRecorder()
	MagicLinkRequest(stub, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.requestedFor != "nobody@clinic.example" {
		t.Fatalf("email not passed through: %q", stub.requestedFor)
	}
}

func TestMagicLinkVerify(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/magic-link/verify", nil)
		rec := httptest.NewRecorder()
		MagicLinkVerify(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("redeemed token rejected", func(t *testing.T) {
		stub := &stubAuthService{verifyErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "link already used")}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/magic-link/verify?token=used", nil)
		rec := httptest.NewRecorder()
		MagicLinkVerify(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/magic-link/verify?token=fresh", nil)
		rec := httptest.NewRecorder()
		MagicLinkVerify(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.verifyToken != "fresh" {
			t.Fatalf("token not passed through: %q", stub.verifyToken)
		}
	})
}
