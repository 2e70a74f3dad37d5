package gate

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// sessionCookieName é o cookie HTTP Only de sessão lido pelo gate.
const sessionCookieName = "session_id"

// DecisionRecorder recebe o resultado de cada avaliação do gate.
// Implementado pelo coletor de métricas; pode ser nil.
type DecisionRecorder interface {
	RecordGateDecision(state string, allowed bool, reason string)
}

// StateResolver resolve o estado do visitante para uma requisição.
type StateResolver interface {
	Resolve(ctx context.Context, sessionID string) State
}

// NewMiddleware cria o middleware do gate para as rotas de navegação.
//
// O gate fica na frente de toda navegação do site, então nenhuma falha na
// sua própria avaliação pode derrubar a requisição: um panic ao resolver ou
// decidir é registrado e a requisição segue adiante (fail open para
// passagem, nunca 500). O handler seguinte roda fora desse recover; um panic
// dele sobe para o middleware de recovery externo, sem reexecução.
func NewMiddleware(resolver StateResolver, recorder DecisionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verdict := evaluate(resolver, recorder, r)

			if verdict.clearCookie {
				clearSessionCookie(w)
			}

			if verdict.allow {
				next.ServeHTTP(w, r)
				return
			}

			http.Redirect(w, r, verdict.redirectTo, verdict.status)
		})
	}
}

// gateVerdict é o resultado da avaliação do gate para uma requisição.
type gateVerdict struct {
	allow       bool
	clearCookie bool
	redirectTo  string
	status      int
}

// evaluate avalia a requisição e devolve o veredito do gate.
// Um panic aqui dentro é recuperado e vira passagem.
func evaluate(resolver StateResolver, recorder DecisionRecorder, r *http.Request) (verdict gateVerdict) {
	// falha inesperada no gate não pode quebrar o site inteiro
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("gate: panic recovered, passing request through",
				slog.Any("panic", rec),
				slog.String("path", r.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			verdict = gateVerdict{allow: true}
		}
	}()

	path := r.URL.Path

	// 1. rota de callback OAuth passa intocada, sem consultar sessão
	if IsCallbackPath(path) {
		return gateVerdict{allow: true}
	}

	// 2. intenção de logout: remove o marcador e redireciona para a
	// URL limpa, sem consultar classificação
	if target, ok := LogoutRedirectTarget(path, r.URL.Query()); ok {
		return gateVerdict{clearCookie: true, redirectTo: target, status: http.StatusSeeOther}
	}

	// 3. resolve sessão e classificação do zero para esta requisição
	state := resolver.Resolve(r.Context(), sessionCookieValue(r))

	// 4. aplica a linha da tabela de decisão
	decision := Decide(state, path)

	if recorder != nil {
		recorder.RecordGateDecision(state.String(), decision.Allow, decision.Reason)
	}

	if decision.Allow {
		return gateVerdict{allow: true}
	}

	slog.Info("gate: redirecting",
		slog.String("path", path),
		slog.String("state", state.String()),
		slog.String("target", decision.RedirectTo),
		slog.String("reason", decision.Reason),
	)
	return gateVerdict{redirectTo: decision.RedirectTo, status: http.StatusFound}
}

// sessionCookieValue extrai o valor do cookie de sessão, ou vazio.
func sessionCookieValue(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// clearSessionCookie expira o cookie de sessão no navegador.
// O logout navegacional limpa o estado local mesmo quando a remoção da
// sessão no banco não aconteceu.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
