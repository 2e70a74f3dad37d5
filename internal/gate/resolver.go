package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coringas/sistema-coringas/internal/model"
)

// ErrLookupTimeout sinaliza que uma consulta de sessão ou classificação
// excedeu o prazo limite. Para o gate o timeout equivale ao estado
// não verificável, nunca a uma falha da requisição.
var ErrLookupTimeout = errors.New("consulta de autenticação excedeu o tempo limite")

// DefaultLookupTimeout é o prazo padrão das consultas de autenticação.
const DefaultLookupTimeout = 3 * time.Second

// WithTimeout executa fn com um prazo limite derivado de ctx.
// Timeout é convertido no erro tipado ErrLookupTimeout, o contrato único de
// falha usado pelo gate e pelas rotas de API de diagnóstico. O resultado de
// uma chamada que estoura o prazo é descartado sem alcançar o chamador.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}

	// canal com buffer: a goroutine termina mesmo quando o select já saiu
	// pelo ramo do timeout
	ch := make(chan result, 1)
	go func() {
		value, err := fn(tctx)
		ch <- result{value: value, err: err}
	}()

	select {
	case res := <-ch:
		if errors.Is(res.err, context.DeadlineExceeded) {
			return zero, fmt.Errorf("lookup aborted: %w", ErrLookupTimeout)
		}
		return res.value, res.err
	case <-tctx.Done():
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("lookup aborted: %w", ErrLookupTimeout)
		}
		return zero, tctx.Err()
	}
}

// SessionFinder é o subconjunto de repository.SessionRepository que o gate
// precisa.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// MemberFinder é o subconjunto de repository.MemberRepository que o gate
// precisa.
type MemberFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Member, error)
}

// LatencyRecorder recebe a duração das consultas de resolução de estado.
// Implementado pelo coletor de métricas; pode ser nil.
type LatencyRecorder interface {
	RecordAuthLookupLatency(duration time.Duration)
}

// Resolver deriva o State do visitante a partir do cookie de sessão.
// Cada chamada consulta sessão e classificação do zero, com prazo limitado.
type Resolver struct {
	sessions SessionFinder
	members  MemberFinder
	timeout  time.Duration

	// LatencyRecorder, quando definido, recebe a duração de cada resolução
	// que tocou o banco.
	LatencyRecorder LatencyRecorder
}

// NewResolver cria um Resolver. timeout não positivo usa DefaultLookupTimeout.
func NewResolver(sessions SessionFinder, members MemberFinder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Resolver{
		sessions: sessions,
		members:  members,
		timeout:  timeout,
	}
}

// Resolve deriva o estado de navegação para o sessionID informado.
//
// Ordem de avaliação:
//  1. sem cookie de sessão: anônimo;
//  2. sessão não encontrada ou expirada: anônimo;
//  3. falha/timeout em qualquer consulta: não verificável;
//  4. sessão válida sem registro de filiação: inativo (o reconciliador
//     criará o registro no próximo login);
//  5. caso contrário, o estado segue a classificação do registro.
func (r *Resolver) Resolve(ctx context.Context, sessionID string) State {
	if sessionID == "" {
		return StateAnonymous
	}

	start := time.Now()
	defer func() {
		if r.LatencyRecorder != nil {
			r.LatencyRecorder.RecordAuthLookupLatency(time.Since(start))
		}
	}()

	session, err := WithTimeout(ctx, r.timeout, func(ctx context.Context) (*model.Session, error) {
		return r.sessions.FindByID(ctx, sessionID)
	})
	if err != nil {
		slog.Warn("gate: session lookup failed",
			slog.String("error", err.Error()),
		)
		return StateUnverifiable
	}
	if session == nil {
		return StateAnonymous
	}

	member, err := WithTimeout(ctx, r.timeout, func(ctx context.Context) (*model.Member, error) {
		return r.members.FindByUserID(ctx, session.UserID)
	})
	if err != nil {
		slog.Warn("gate: classification lookup failed",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		return StateUnverifiable
	}
	if member == nil {
		return StateInactive
	}

	return StateFromClassification(member.Classification)
}

// StateFromClassification converte a classificação persistida no estado de
// navegação correspondente.
func StateFromClassification(c model.Classification) State {
	switch c {
	case model.ClassificationAdmin:
		return StateAdmin
	case model.ClassificationMember:
		return StateMember
	default:
		return StateInactive
	}
}
