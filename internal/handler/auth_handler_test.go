package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coringas/sistema-coringas/internal/auth"
	"github.com/coringas/sistema-coringas/internal/model"
)

// --- Definição dos mocks ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*auth.CallbackResult, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*auth.CallbackResult, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

type mockMemberGetter struct {
	getByUserIDFn func(ctx context.Context, userID string) (*model.Member, error)
}

var _ MemberGetter = (*mockMemberGetter)(nil)

func (m *mockMemberGetter) GetByUserID(ctx context.Context, userID string) (*model.Member, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func callbackResultWith(classification model.Classification) *auth.CallbackResult {
	return &auth.CallbackResult{
		Session: &model.Session{
			ID:        "session-id-abc",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
		User: &model.User{ID: "user-1", Email: "maria@example.com", Name: "Maria"},
		Member: &model.Member{
			ID:             "member-1",
			UserID:         "user-1",
			Classification: classification,
			Nickname:       "Maria",
		},
	}
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

// --- Testes ---

func TestAuthHandler_Login_RedirectsToOAuthURL(t *testing.T) {
	svc := &mockAuthService{
		getLoginURLFn: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("Location = %q, should contain google oauth URL", loc)
	}

	// o state do redirect deve estar no cookie
	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Fatal("expected oauth_state cookie to be set")
	}
	if !stateCookie.HttpOnly {
		t.Error("oauth_state cookie should be HttpOnly")
	}
}

func TestAuthHandler_Callback_SetsSessionCookieAndRedirects(t *testing.T) {
	tests := []struct {
		name           string
		classification model.Classification
		wantTarget     string
	}{
		{name: "admin vai para o dashboard", classification: model.ClassificationAdmin, wantTarget: "/dashboard"},
		{name: "membro vai para o perfil", classification: model.ClassificationMember, wantTarget: "/profile"},
		{name: "inativo vai para o dashboard", classification: model.ClassificationInactive, wantTarget: "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				handleCallbackFn: func(ctx context.Context, code string) (*auth.CallbackResult, error) {
					if code != "test-code" {
						t.Errorf("code = %q, want %q", code, "test-code")
					}
					return callbackResultWith(tt.classification), nil
				},
			}
			h := NewAuthHandler(svc, nil, testAuthConfig())

			req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=test-code&state=test-state", nil)
			req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
			w := httptest.NewRecorder()

			h.Callback(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusTemporaryRedirect {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
			}

			if loc := resp.Header.Get("Location"); loc != "http://localhost:3000"+tt.wantTarget {
				t.Errorf("Location = %q, want %q", loc, "http://localhost:3000"+tt.wantTarget)
			}

			var sessionCookie *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "session_id" {
					sessionCookie = c
				}
			}
			if sessionCookie == nil {
				t.Fatal("expected session_id cookie to be set")
			}
			if sessionCookie.Value != "session-id-abc" {
				t.Errorf("session cookie = %q, want %q", sessionCookie.Value, "session-id-abc")
			}
			if !sessionCookie.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		})
	}
}

func TestAuthHandler_Callback_StateMismatch_ReturnsBadRequest(t *testing.T) {
	tests := []struct {
		name        string
		queryState  string
		cookieState string
		withCookie  bool
	}{
		{name: "state divergente", queryState: "attacker-state", cookieState: "real-state", withCookie: true},
		{name: "cookie ausente", queryState: "some-state", withCookie: false},
		{name: "cookie vazio", queryState: "some-state", cookieState: "", withCookie: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockAuthService{
				handleCallbackFn: func(ctx context.Context, code string) (*auth.CallbackResult, error) {
					called = true
					return callbackResultWith(model.ClassificationMember), nil
				},
			}
			h := NewAuthHandler(svc, nil, testAuthConfig())

			req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=test-code&state="+tt.queryState, nil)
			if tt.withCookie {
				req.AddCookie(&http.Cookie{Name: "oauth_state", Value: tt.cookieState})
			}
			w := httptest.NewRecorder()

			h.Callback(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if called {
				t.Error("HandleCallback should not be called on state mismatch")
			}
		})
	}
}

func TestAuthHandler_Callback_MissingCode_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_Callback_ServiceError_ReturnsInternalError(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*auth.CallbackResult, error) {
			return nil, errors.New("exchange failed")
		},
	}
	h := NewAuthHandler(svc, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=bad&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestAuthHandler_Logout_DeletesSessionAndClearsCookie(t *testing.T) {
	var loggedOut string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-to-kill"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if loggedOut != "session-to-kill" {
		t.Errorf("logged out session = %q, want %q", loggedOut, "session-to-kill")
	}

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	for _, c := range resp.Cookies() {
		if c.Name == "session_id" && c.MaxAge != -1 {
			t.Errorf("session cookie MaxAge = %d, want -1", c.MaxAge)
		}
	}
}

func TestAuthHandler_Logout_WithoutCookie_StillRedirects(t *testing.T) {
	called := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			called = true
			return nil
		},
	}
	h := NewAuthHandler(svc, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if called {
		t.Error("Logout should not hit the service without a cookie")
	}
	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
}

func TestAuthHandler_Me_ReturnsUserInfo(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "maria@example.com", Name: "Maria"}, nil
		},
	}
	h := NewAuthHandler(svc, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["email"] != "maria@example.com" {
		t.Errorf("email = %v, want %q", body["email"], "maria@example.com")
	}
}

func TestAuthHandler_Me_WithoutSession_ReturnsUnauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("error code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
}

func TestAuthHandler_Check_WithoutCookie_ReturnsUnauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	w := httptest.NewRecorder()

	h.Check(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body checkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Authenticated {
		t.Error("authenticated = true, want false")
	}
}

func TestAuthHandler_Check_ValidSession_ReturnsUserAndClassification(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "maria@example.com", Name: "Maria"}, nil
		},
	}
	members := &mockMemberGetter{
		getByUserIDFn: func(ctx context.Context, userID string) (*model.Member, error) {
			return &model.Member{UserID: userID, Classification: model.ClassificationMember}, nil
		},
	}
	h := NewAuthHandler(svc, members, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	h.Check(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body checkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !body.Authenticated {
		t.Fatal("authenticated = false, want true")
	}
	if body.User == nil || body.User.Email != "maria@example.com" {
		t.Errorf("user = %+v, want email maria@example.com", body.User)
	}
	if body.Classification != "member" {
		t.Errorf("classification = %q, want %q", body.Classification, "member")
	}
}

func TestAuthHandler_Check_ExpiredSession_ReturnsUnauthenticated(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return nil, errors.New("session expired")
		},
	}
	h := NewAuthHandler(svc, nil, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale-session"})
	w := httptest.NewRecorder()

	h.Check(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body checkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Authenticated {
		t.Error("authenticated = true, want false")
	}
}

// A consulta de sessão que excede o prazo vira 408, nunca espera indefinida.
func TestAuthHandler_Check_LookupTimeout_ReturnsRequestTimeout(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	h := NewAuthHandler(svc, nil, AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		SessionMaxAge: 86400,
		LookupTimeout: 20 * time.Millisecond,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "slow-session"})
	w := httptest.NewRecorder()

	h.Check(w, req)

	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestTimeout)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Code != model.ErrCodeAuthTimeout {
		t.Errorf("error code = %q, want %q", body.Code, model.ErrCodeAuthTimeout)
	}
}
