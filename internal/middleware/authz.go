package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coringas/sistema-coringas/internal/model"
)

// MemberFinder é a interface necessária para buscar o registro de filiação.
// Subconjunto de repository.MemberRepository.
type MemberFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Member, error)
}

// NewRequireAdminMiddleware retorna o middleware que restringe a rota a
// administradores. Deve ser posicionado após o middleware de sessão: o ID do
// usuário é lido do contexto, a classificação vem do registro de filiação.
// Usuários sem registro ou sem classificação admin recebem 403 em JSON.
func NewRequireAdminMiddleware(memberFinder MemberFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			member, err := memberFinder.FindByUserID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to find membership record for authorization",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				// falha na consulta não concede acesso
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}
			if member == nil || !member.Classification.IsAdmin() {
				slog.Warn("admin route denied",
					slog.String("user_id", userID),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
