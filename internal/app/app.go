// Package app faz a inicialização e o wiring da aplicação.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/coringas/sistema-coringas/internal/auth"
	"github.com/coringas/sistema-coringas/internal/config"
	"github.com/coringas/sistema-coringas/internal/database"
	"github.com/coringas/sistema-coringas/internal/gate"
	"github.com/coringas/sistema-coringas/internal/handler"
	"github.com/coringas/sistema-coringas/internal/logger"
	"github.com/coringas/sistema-coringas/internal/member"
	"github.com/coringas/sistema-coringas/internal/metrics"
	"github.com/coringas/sistema-coringas/internal/middleware"
	"github.com/coringas/sistema-coringas/internal/repository"
	"github.com/coringas/sistema-coringas/internal/security"
	"github.com/coringas/sistema-coringas/internal/worker/cleanup"
)

// Init inicializa a aplicação.
// Sobe o log JSON estruturado e carrega a Config das variáveis de ambiente.
// Quando w é indicado, os logs são escritos nesse writer.
func Init(w io.Writer) (*config.Config, error) {
	// 1. log primeiro, para que o carregamento da config já possa logar
	logger.SetupDefault(w)

	// 2. configuração via ambiente
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run é o ponto de entrada da aplicação.
// Interpreta o subcomando dos argumentos e inicia o modo correspondente.
// args recebe os.Args[1:].
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck é leve e dispensa a inicialização completa
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe inicia o servidor HTTP.
// Abre a conexão com o banco, monta todas as dependências e sobe o servidor.
// SIGINT ou SIGTERM fazem o shutdown gracioso.
func runServe(cfg *config.Config) error {
	// 1. conexão com o banco
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. repositórios
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	memberRepo := repository.NewPostgresMemberRepo(db)
	eventRepo := repository.NewPostgresEventRepo(db)
	chargeRepo := repository.NewPostgresChargeRepo(db)

	// 3. métricas
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. serviços de segurança
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 5. serviços de domínio
	memberService := member.NewService(memberRepo, sanitizer, collector)

	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo,
		memberService, collector,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	gateResolver := gate.NewResolver(sessionRepo, memberRepo, cfg.AuthLookupTimeout)
	gateResolver.LatencyRecorder = collector

	// 6. rate limiting (req/min da config para req/s do limiter)
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitAdminAction > 0 {
		rateLimiterCfg.AdminActionRate = rate.Limit(float64(cfg.RateLimitAdminAction) / 60.0)
		rateLimiterCfg.AdminActionBurst = cfg.RateLimitAdminAction
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. roteador
	deps := &handler.RouterDeps{
		HealthChecker:     db,
		SessionFinder:     sessionRepo,
		MemberFinder:      memberRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		GateResolver: gateResolver,
		GateRecorder: collector,

		AuthService:  authService,
		MemberGetter: memberService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
			LookupTimeout: cfg.AuthLookupTimeout,
		},

		ProfileService: memberService,
		AdminService:   memberService,
		EventRepo:      eventRepo,
		ChargeRepo:     chargeRepo,
		SSRFGuard:      ssrfGuard,

		MetricsHandler: metrics.SetupMetricsRoute(registry),
		StatusRecorder: collector,
	}

	router, err := handler.NewRouter(deps)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	// 8. servidor HTTP
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// shutdown gracioso por sinal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("HTTP server stopped gracefully")
	return nil
}

// runWorker inicia o modo worker.
// Abre a conexão com o banco e roda o job de limpeza de sessões expiradas no
// intervalo configurado, até receber SIGINT ou SIGTERM.
func runWorker(cfg *config.Config) error {
	// 1. conexão com o banco
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. dependências do job
	sessionRepo := repository.NewPostgresSessionRepo(db)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, collector, slog.Default())

	// shutdown gracioso por sinal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	// o scheduler roda na goroutine principal (bloqueante)
	cleanupJob.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate aplica as migrações de banco pendentes, em ordem.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck executa o health check.
// Subcomando usado pelo Docker em imagem distroless: faz uma requisição ao
// endpoint /health e devolve o resultado.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL mascara as credenciais da URL do banco para o log.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
