// Package cleanup provê o job de remoção de sessões expiradas.
// Sessões vencidas ficam na tabela até serem varridas por este job; a
// validação de login já as ignora, então a varredura é só higiene de
// armazenamento e pode rodar em qualquer intervalo.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger remove sessões expiradas e retorna a quantidade removida.
// Subconjunto de repository.SessionRepository.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// PurgeRecorder recebe a quantidade de sessões removidas a cada execução.
// Implementado pelo coletor de métricas; pode ser nil.
type PurgeRecorder interface {
	RecordSessionsPurged(count int64)
}

// CleanupJob é o job de remoção de sessões expiradas.
// Idempotente: executar sem sessões vencidas não é erro.
type CleanupJob struct {
	sessions SessionPurger
	recorder PurgeRecorder
	logger   *slog.Logger
}

// NewCleanupJob cria um CleanupJob. recorder pode ser nil.
func NewCleanupJob(sessions SessionPurger, recorder PurgeRecorder, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
	}
}

// Start executa o job imediatamente e depois no intervalo indicado, até o
// cancelamento do contexto.
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("session cleanup scheduler started",
		slog.Duration("interval", interval),
	)

	// primeira varredura logo na subida
	if err := j.Run(ctx); err != nil {
		j.logger.Error("session cleanup run failed",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session cleanup scheduler stopped")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("session cleanup run failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Run remove as sessões com expires_at no passado.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purged, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("session cleanup job failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsPurged(purged)
	}

	j.logger.Info("session cleanup job completed",
		slog.Int64("purged_count", purged),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}
