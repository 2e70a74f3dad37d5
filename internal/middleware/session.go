// Package middleware provê os middlewares HTTP.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coringas/sistema-coringas/internal/model"
)

const sessionCookieName = "session_id"

// contextKey é o tipo das chaves de contexto, para evitar colisão.
type contextKey string

// userIDContextKey é a chave do ID do usuário no contexto da requisição.
var userIDContextKey = contextKey("user_id")

// SessionFinder é a interface necessária para buscar sessões.
// Subconjunto de repository.SessionRepository.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware retorna o middleware que lê a sessão do cookie HTTP
// Only e valida sua vigência. O ID do usuário autenticado é injetado no
// contexto da requisição. Requisições não autenticadas recebem 401 em JSON.
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. lê o ID de sessão do cookie
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. valida a vigência da sessão
			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. injeta o ID do usuário autenticado no contexto
			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext obtém o ID do usuário do contexto da requisição.
// Válido apenas em requisições que passaram pelo middleware de sessão.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID injeta o ID do usuário no contexto.
// Usado em testes e fora do fluxo do middleware.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
