package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coringas/sistema-coringas/internal/gate"
	"github.com/coringas/sistema-coringas/internal/middleware"
	"github.com/coringas/sistema-coringas/internal/repository"
	"github.com/coringas/sistema-coringas/internal/security"
)

// HealthChecker verifica a disponibilidade das dependências do serviço.
// *sql.DB satisfaz a interface.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps são as dependências necessárias para NewRouter.
type RouterDeps struct {
	// Dependências de middleware
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	MemberFinder      middleware.MemberFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// Gate de navegação
	GateResolver gate.StateResolver
	GateRecorder gate.DecisionRecorder

	// Autenticação
	AuthService  AuthServiceInterface
	MemberGetter MemberGetter
	AuthConfig   AuthHandlerConfig

	// Domínio
	ProfileService ProfileServiceInterface
	AdminService   AdminServiceInterface
	EventRepo      repository.EventRepository
	ChargeRepo     repository.ChargeRepository
	SSRFGuard      security.SSRFGuardService

	// Observabilidade
	MetricsHandler http.Handler
	StatusRecorder middleware.HTTPStatusRecorder
}

// NewRouter monta o roteamento completo e a cadeia de middlewares.
//
// Ordem da pilha de middlewares:
//
//	SecurityHeaders → CORS → Recovery → Logging
//
// As rotas de autenticação (/auth/*) ficam fora do gate e da sessão.
// As páginas de navegação passam pelo gate; as rotas /api/* passam por
// sessão e rate limit, com o subgrupo administrativo exigindo
// classificação admin.
func NewRouter(deps *RouterDeps) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default(), deps.StatusRecorder))

	authHandler := NewAuthHandler(deps.AuthService, deps.MemberGetter, deps.AuthConfig)
	memberHandler := NewMemberHandler(deps.ProfileService)
	adminHandler := NewAdminHandler(deps.AdminService)
	eventHandler := NewEventHandler(deps.EventRepo)
	chargeHandler := NewChargeHandler(deps.ChargeRepo, deps.ProfileService)
	avatarHandler := NewAvatarHandler(deps.SSRFGuard)

	pageHandler, err := NewPageHandler()
	if err != nil {
		return nil, err
	}

	// --- Rotas sem autenticação ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// Fluxo OAuth
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// Probe de sessão. Responde authenticated=false em vez de 401, então fica
	// fora do middleware de sessão.
	r.Get("/api/auth/check", authHandler.Check)

	// Token CSRF para as mutações da API
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- Páginas de navegação, controladas pelo gate ---

	r.Group(func(r chi.Router) {
		r.Use(gate.NewMiddleware(deps.GateResolver, deps.GateRecorder))
		for _, route := range pageHandler.Routes() {
			r.Get(route, pageHandler.ServePage(route))
		}
	})

	// --- Rotas /api, exigem sessão ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", memberHandler.GetProfile)
			r.Put("/", memberHandler.UpdateProfile)
		})

		r.Get("/api/events", eventHandler.ListEvents)
		r.Get("/api/charges/pending", chargeHandler.ListPendingCharges)
		r.Get("/api/avatar", avatarHandler.GetAvatar)

		// Subgrupo administrativo
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAdminMiddleware(deps.MemberFinder))
			r.Use(deps.RateLimiter.AdminActionMiddleware())

			r.Get("/api/pending-users/count", adminHandler.CountPendingUsers)
			r.Get("/api/pending-users", adminHandler.ListPendingUsers)
			r.Post("/api/approve-user", adminHandler.ApproveUser)
			r.Post("/api/reject-user", adminHandler.RejectUser)
			r.Post("/api/events", eventHandler.CreateEvent)
		})
	})

	return r, nil
}
