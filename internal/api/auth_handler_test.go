package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// stubRecoveryService scripts the outcome per method.
type stubRecoveryService struct {
	requestErr error
	issue      *service.RecoveryIssue
	verifyErr  error
	resetErr   error
}

func (s *stubRecoveryService) RequestReset(_ context.Context, email string) (*service.RecoveryIssue, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	return s.issue, nil
}

func (s *stubRecoveryService) VerifyCode(_ context.Context, email, code string) error {
	return s.verifyErr
}

func (s *stubRecoveryService) ResetPassword(_ context.Context, email, code, newPassword string) error {
	return s.resetErr
}

// stubAuthService only supports Login for the cookie test.
type stubAuthService struct {
	token string
	user  *domain.User
	err   error
}

func (s *stubAuthService) Register(_ context.Context, input service.RegisterInput) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubAuthService) Login(_ context.Context, email, password string, remember bool) (string, time.Duration, *domain.User, error) {
	if s.err != nil {
		return "", 0, nil, s.err
	}
	return s.token, 24 * time.Hour, s.user, nil
}

func (s *stubAuthService) GetJWTSecret() string { return testSecret }

func recoveryRouter(stub *stubRecoveryService) *gin.Engine {
	router := gin.New()
	h := NewAuthHandler(&stubAuthService{}, stub, nil, false)
	router.POST("/recover", h.Recover)
	router.POST("/verify-code", h.VerifyCode)
	router.POST("/reset-password", h.ResetPassword)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRecoverReturnsCooldownAndQueueState(t *testing.T) {
	router := recoveryRouter(&stubRecoveryService{
		issue: &service.RecoveryIssue{EmailQueued: true, CooldownMs: 60_000},
	})

	w := postJSON(router, "/recover", `{"email":"ana@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var body struct {
		Success     bool  `json:"success"`
		EmailQueued bool  `json:"emailQueued"`
		CooldownMs  int64 `json:"cooldownMs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.Success || !body.EmailQueued || body.CooldownMs != 60_000 {
		t.Errorf("body = %+v", body)
	}
}

func TestRecoverStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown email", service.ErrUserNotFound, http.StatusNotFound},
		{"rate limited", service.ErrTooManyAttempts, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := recoveryRouter(&stubRecoveryService{requestErr: tc.err})
			w := postJSON(router, "/recover", `{"email":"ana@example.com"}`)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			if !strings.Contains(w.Body.String(), `"success":false`) {
				t.Errorf("error body %s lacks success:false", w.Body.String())
			}
		})
	}
}

func TestRecoverRejectsMalformedEmail(t *testing.T) {
	router := recoveryRouter(&stubRecoveryService{})
	w := postJSON(router, "/recover", `{"email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestVerifyCodeStatusMapping(t *testing.T) {
	router := recoveryRouter(&stubRecoveryService{verifyErr: service.ErrCodeInvalid})
	w := postJSON(router, "/verify-code", `{"email":"ana@example.com","code":"000000"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	router = recoveryRouter(&stubRecoveryService{})
	w = postJSON(router, "/verify-code", `{"email":"ana@example.com","code":"123456"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestResetPasswordStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"bad code", service.ErrCodeInvalid, http.StatusBadRequest},
		{"not verified", service.ErrVerificationRequired, http.StatusBadRequest},
		{"unknown email", service.ErrUserNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := recoveryRouter(&stubRecoveryService{resetErr: tc.err})
			w := postJSON(router, "/reset-password", `{"email":"ana@example.com","code":"123456","password":"newsecret"}`)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestLoginSetsHTTPOnlyCookie(t *testing.T) {
	router := gin.New()
	h := NewAuthHandler(&stubAuthService{
		token: "signed-token",
		user:  &domain.User{ID: 1, Email: "ana@example.com", Role: domain.RoleUser},
	}, &stubRecoveryService{}, nil, false)
	router.POST("/login", h.Login)

	w := postJSON(router, "/login", `{"email":"ana@example.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie was set")
	}
	if !session.HttpOnly {
		t.Error("session cookie must be HTTP-only")
	}
	if session.Value != "signed-token" {
		t.Errorf("cookie value = %q", session.Value)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := gin.New()
	h := NewAuthHandler(&stubAuthService{err: service.ErrAuthenticationFailed}, &stubRecoveryService{}, nil, false)
	router.POST("/login", h.Login)

	w := postJSON(router, "/login", `{"email":"ana@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
