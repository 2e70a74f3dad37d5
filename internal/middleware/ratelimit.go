package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig guarda a configuração de rate limiting.
type RateLimiterConfig struct {
	GeneralRate      rate.Limit    // taxa da API em geral (req/s). 120/60 = 2 req/s
	GeneralBurst     int           // burst da API em geral
	AdminActionRate  rate.Limit    // taxa das ações administrativas (req/s). 30/60
	AdminActionBurst int           // burst das ações administrativas
	CleanupInterval  time.Duration // intervalo de limpeza de entradas ociosas
}

// DefaultRateLimiterConfig retorna a configuração padrão.
// API em geral: 120 req/min/usuário; ações administrativas (aprovar/rejeitar
// cadastros, criar eventos): 30 req/min/usuário.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:      rate.Limit(120.0 / 60.0), // 2 req/s
		GeneralBurst:     120,
		AdminActionRate:  rate.Limit(30.0 / 60.0), // 0.5 req/s
		AdminActionBurst: 30,
		CleanupInterval:  5 * time.Minute,
	}
}

// userLimiter guarda o limitador de um usuário e o horário do último acesso.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter gerencia o rate limiting por usuário.
// Provê dois limites independentes: API em geral e ações administrativas.
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*userLimiter

	adminMu       sync.RWMutex
	adminLimiters map[string]*userLimiter

	stopCh chan struct{}
}

// NewRateLimiter cria um RateLimiter.
// Inicia em background a limpeza das entradas ociosas.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*userLimiter),
		adminLimiters:   make(map[string]*userLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop encerra a goroutine de limpeza.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware retorna o middleware de rate limiting da API em geral.
// O contexto da requisição precisa conter o ID do usuário (posicionar após o
// middleware de sessão).
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			limiter := rl.getOrCreateLimiter(&rl.generalMu, rl.generalLimiters, userID, rl.config.GeneralRate, rl.config.GeneralBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminActionMiddleware retorna o middleware de rate limiting das ações
// administrativas. Opera de forma independente do limite geral.
func (rl *RateLimiter) AdminActionMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			limiter := rl.getOrCreateLimiter(&rl.adminMu, rl.adminLimiters, userID, rl.config.AdminActionRate, rl.config.AdminActionBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.AdminActionRate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "admin_action"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount retorna o número de limitadores gerais ativos.
// Para testes e métricas.
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// AdminLimiterCount retorna o número de limitadores administrativos ativos.
// Para testes e métricas.
func (rl *RateLimiter) AdminLimiterCount() int {
	rl.adminMu.RLock()
	defer rl.adminMu.RUnlock()
	return len(rl.adminLimiters)
}

// getOrCreateLimiter obtém ou cria o limitador do usuário no mapa indicado.
func (rl *RateLimiter) getOrCreateLimiter(mu *sync.RWMutex, limiters map[string]*userLimiter, userID string, r rate.Limit, burst int) *rate.Limiter {
	mu.RLock()
	ul, exists := limiters[userID]
	mu.RUnlock()

	if exists {
		mu.Lock()
		ul.lastAccess = time.Now()
		mu.Unlock()
		return ul.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// double-check
	if ul, exists := limiters[userID]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	limiters[userID] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop limpa periodicamente as entradas ociosas em background.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup remove entradas sem acesso há mais de 2x o CleanupInterval.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.generalMu.Lock()
	for userID, ul := range rl.generalLimiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.generalLimiters, userID)
		}
	}
	rl.generalMu.Unlock()

	rl.adminMu.Lock()
	for userID, ul := range rl.adminLimiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.adminLimiters, userID)
		}
	}
	rl.adminMu.Unlock()
}

// writeRateLimitResponse escreve a resposta 429 Too Many Requests.
// O header Retry-After traz a estimativa em segundos até a reposição de um
// token.
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "Muitas requisições. Tente novamente em instantes.",
		"category": "system",
		"action":   "Aguarde o tempo indicado e tente novamente.",
	})
}
