// Package repository define as interfaces de persistência de dados.
package repository

import (
	"context"

	"github.com/coringas/sistema-coringas/internal/model"
)

// UserRepository é a interface de persistência de usuários.
type UserRepository interface {
	// FindByID busca o usuário pelo ID. Retorna nil quando não encontrado.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity cria usuário e identity na mesma transação.
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository é a interface de persistência do vínculo com o IdP externo.
type IdentityRepository interface {
	// FindByProviderAndProviderUserID busca a identity por provider e
	// provider_user_id. Retorna nil quando não encontrada.
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository é a interface de persistência de sessões.
type SessionRepository interface {
	// Create cria uma sessão.
	Create(ctx context.Context, session *model.Session) error
	// FindByID busca a sessão pelo ID. Retorna nil quando expirada ou inexistente.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID remove a sessão pelo ID.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID remove todas as sessões do usuário.
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired remove sessões expiradas e retorna a quantidade removida.
	DeleteExpired(ctx context.Context) (int64, error)
}

// MemberRepository é a interface de persistência dos registros de filiação.
type MemberRepository interface {
	// FindByID busca o registro pelo ID. Retorna nil quando não encontrado.
	FindByID(ctx context.Context, id string) (*model.Member, error)

	// FindByUserID busca o registro pelo user_id. Retorna nil quando não encontrado.
	FindByUserID(ctx context.Context, userID string) (*model.Member, error)

	// Create insere um novo registro de filiação. Violação da constraint UNIQUE
	// de user_id retorna model.ErrDuplicateMember.
	Create(ctx context.Context, member *model.Member) error

	// UpdateClassification efetua a transição de classificação de forma
	// condicional: a linha só é atualizada se a classificação atual for `from`.
	// Retorna o registro atualizado, ou nil quando nenhuma linha foi afetada.
	UpdateClassification(ctx context.Context, id string, from, to model.Classification) (*model.Member, error)

	// ListPending retorna os registros com classificação inactive, do mais
	// antigo para o mais recente.
	ListPending(ctx context.Context) ([]*model.Member, error)

	// CountPending retorna a quantidade de registros com classificação inactive.
	CountPending(ctx context.Context) (int, error)

	// UpdateProfile atualiza os campos editáveis do perfil (nickname, bio,
	// avatar_url). Retorna o registro atualizado, ou nil quando não encontrado.
	UpdateProfile(ctx context.Context, id, nickname, bio, avatarURL string) (*model.Member, error)
}

// EventRepository é a interface de persistência de eventos.
type EventRepository interface {
	// ListUpcoming retorna eventos com início a partir do momento atual,
	// ordenados pela data de início.
	ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error)

	// Create cria um evento.
	Create(ctx context.Context, event *model.Event) error
}

// ChargeRepository é a interface de persistência de cobranças.
type ChargeRepository interface {
	// ListPendingByMember retorna as cobranças em aberto do membro,
	// ordenadas pelo vencimento.
	ListPendingByMember(ctx context.Context, memberID string) ([]*model.Charge, error)
}
