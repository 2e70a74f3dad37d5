// Package handler provê os handlers HTTP.
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coringas/sistema-coringas/internal/auth"
	"github.com/coringas/sistema-coringas/internal/gate"
	"github.com/coringas/sistema-coringas/internal/model"
)

const (
	sessionCookieName = "session_id"
	oauthStateCookie  = "oauth_state"
)

// AuthServiceInterface é a interface de serviço exigida pelo handler de
// autenticação.
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*auth.CallbackResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// MemberGetter busca o registro de filiação do usuário atual.
// Usado pelo probe de sessão para incluir a classificação na resposta.
type MemberGetter interface {
	GetByUserID(ctx context.Context, userID string) (*model.Member, error)
}

// AuthHandlerConfig é a configuração do handler de autenticação.
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int           // validade do cookie de sessão em segundos
	LookupTimeout time.Duration // prazo do probe de sessão
}

// AuthHandler é o handler HTTP do fluxo OAuth.
type AuthHandler struct {
	service AuthServiceInterface
	members MemberGetter
	config  AuthHandlerConfig
}

// NewAuthHandler cria um AuthHandler.
func NewAuthHandler(service AuthServiceInterface, members MemberGetter, config AuthHandlerConfig) *AuthHandler {
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = gate.DefaultLookupTimeout
	}
	return &AuthHandler{
		service: service,
		members: members,
		config:  config,
	}
}

// Login inicia o fluxo Google OAuth.
// GET /auth/google/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// guarda o state em cookie (proteção CSRF)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutos
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.service.GetLoginURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback processa o callback OAuth.
// GET /auth/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. valida o state (proteção CSRF)
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}

	// remove o cookie de state
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. código de autorização
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	// 3. processamento da autenticação
	result, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// 4. cookie de sessão (HTTP Only)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.Session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 5. redireciona conforme a classificação: admin para o painel, membro
	// para o perfil, pendente para o painel (o gate encaminha para a página
	// de aprovação pendente)
	target := gate.PostLoginTarget(gate.StateFromClassification(result.Member.Classification))
	http.Redirect(w, r, h.config.BaseURL+target, http.StatusTemporaryRedirect)
}

// Logout destrói a sessão.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// mesmo com falha o cookie é limpo
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// Me retorna as informações do usuário logado.
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
	})
}

// checkResponse é a resposta do probe de sessão.
type checkResponse struct {
	Authenticated  bool       `json:"authenticated"`
	User           *checkUser `json:"user,omitempty"`
	Classification string     `json:"classification,omitempty"`
}

type checkUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Check é o probe diagnóstico de sessão.
// GET /api/auth/check
// Sem sessão válida responde 200 com authenticated=false; consulta que excede
// o prazo responde 408 com o erro de timeout, nunca um spinner indefinido no
// cliente.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}

	sessionID := cookie.Value
	user, err := gate.WithTimeout(r.Context(), h.config.LookupTimeout, func(ctx context.Context) (*model.User, error) {
		return h.service.GetCurrentUser(ctx, sessionID)
	})
	if errors.Is(err, gate.ErrLookupTimeout) {
		writeAPIErrorResponse(w, http.StatusRequestTimeout, model.NewAuthTimeoutError())
		return
	}
	if err != nil {
		// sessão expirada ou inexistente
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}

	resp := checkResponse{
		Authenticated: true,
		User: &checkUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		},
	}

	if h.members != nil {
		member, err := gate.WithTimeout(r.Context(), h.config.LookupTimeout, func(ctx context.Context) (*model.Member, error) {
			return h.members.GetByUserID(ctx, user.ID)
		})
		if errors.Is(err, gate.ErrLookupTimeout) {
			writeAPIErrorResponse(w, http.StatusRequestTimeout, model.NewAuthTimeoutError())
			return
		}
		if err == nil && member != nil {
			resp.Classification = string(member.Classification)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// generateState gera um valor de state aleatório para proteção CSRF.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
