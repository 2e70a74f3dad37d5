// Package member provê a lógica de domínio dos registros de filiação:
// criação preguiçosa no primeiro login, aprovação e rejeição de cadastros
// pendentes e edição de perfil.
package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coringas/sistema-coringas/internal/model"
	"github.com/coringas/sistema-coringas/internal/repository"
)

// defaultNickname é o apelido atribuído quando nenhuma dica de perfil está
// disponível.
const defaultNickname = "Novo Membro"

// ProfileHints são os dados de perfil fornecidos pelo IdP no login, usados
// para derivar os valores iniciais do registro de filiação.
type ProfileHints struct {
	FullName  string
	Name      string
	Email     string
	AvatarURL string
}

// ProfileSanitizer limpa texto livre de perfil antes da persistência.
type ProfileSanitizer interface {
	Sanitize(raw string) string
}

// CreationRecorder registra a criação de registros de filiação nas métricas.
// Pode ser nil.
type CreationRecorder interface {
	RecordMemberCreated()
}

// Service é a camada de serviço dos registros de filiação.
type Service struct {
	memberRepo repository.MemberRepository
	sanitizer  ProfileSanitizer
	recorder   CreationRecorder
}

// NewService cria um Service.
func NewService(memberRepo repository.MemberRepository, sanitizer ProfileSanitizer, recorder CreationRecorder) *Service {
	return &Service{
		memberRepo: memberRepo,
		sanitizer:  sanitizer,
		recorder:   recorder,
	}
}

// EnsureMembershipRecord garante que o usuário possua exatamente um registro
// de filiação, criando um com classificação inactive quando ausente.
//
// A operação é idempotente: quando o registro já existe, ele é retornado sem
// efeito colateral. A invocação concorrente (duas abas logando ao mesmo
// tempo) é tolerada: a violação da constraint UNIQUE de user_id é tratada
// como corrida benigna e a linha existente é relida em vez de propagar erro.
func (s *Service) EnsureMembershipRecord(ctx context.Context, userID string, hints ProfileHints) (*model.Member, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	// 1. caminho idempotente: registro já existe
	existing, err := s.memberRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up membership record: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	// 2. registro ausente: insere com os defaults de cadastro pendente
	now := time.Now()
	member := &model.Member{
		ID:             uuid.New().String(),
		UserID:         userID,
		Classification: model.ClassificationInactive,
		Nickname:       deriveNickname(hints),
		AvatarURL:      hints.AvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.memberRepo.Create(ctx, member)
	if errors.Is(err, model.ErrDuplicateMember) {
		// 3. corrida benigna: outra aba/processo inseriu primeiro; relê a
		// linha existente e segue como se encontrada
		slog.Info("membership record already created concurrently",
			slog.String("user_id", userID),
		)
		winner, findErr := s.memberRepo.FindByUserID(ctx, userID)
		if findErr != nil {
			return nil, fmt.Errorf("failed to re-read membership record after duplicate insert: %w", findErr)
		}
		if winner == nil {
			return nil, fmt.Errorf("membership record vanished after duplicate insert for user %s", userID)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create membership record: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordMemberCreated()
	}

	slog.Info("membership record created",
		slog.String("member_id", member.ID),
		slog.String("user_id", userID),
		slog.String("nickname", member.Nickname),
	)

	return member, nil
}

// deriveNickname escolhe o apelido inicial na ordem: nome completo, nome,
// parte local do e-mail, default.
func deriveNickname(hints ProfileHints) string {
	if name := strings.TrimSpace(hints.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(hints.Name); name != "" {
		return name
	}
	if local := emailLocalPart(hints.Email); local != "" {
		return local
	}
	return defaultNickname
}

// emailLocalPart extrai a parte antes do @ de um e-mail, ou vazio.
func emailLocalPart(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return ""
	}
	return email[:at]
}

// Approve efetua a transição inactive -> member do registro indicado.
// Registros fora do estado pendente retornam erro de transição inválida sem
// nenhuma mutação.
func (s *Service) Approve(ctx context.Context, memberID string) (*model.Member, error) {
	return s.transition(ctx, memberID, model.ClassificationMember, "approved")
}

// Reject efetua a transição inactive -> rejected do registro indicado.
// O registro é mantido para auditoria; a remoção física só acontece por ação
// administrativa explícita fora deste fluxo.
func (s *Service) Reject(ctx context.Context, memberID string) (*model.Member, error) {
	return s.transition(ctx, memberID, model.ClassificationRejected, "rejected")
}

// transition aplica uma transição a partir de inactive, validando o estado
// atual antes de mutar.
func (s *Service) transition(ctx context.Context, memberID string, to model.Classification, action string) (*model.Member, error) {
	if memberID == "" {
		return nil, model.NewInvalidRequestError("memberId é obrigatório")
	}

	current, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find membership record: %w", err)
	}
	if current == nil {
		return nil, model.NewMemberNotFoundError(memberID)
	}
	if current.Classification != model.ClassificationInactive {
		return nil, model.NewInvalidTransitionError(current.Classification)
	}

	updated, err := s.memberRepo.UpdateClassification(ctx, memberID, model.ClassificationInactive, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update classification: %w", err)
	}
	if updated == nil {
		// a classificação mudou entre a leitura e a atualização condicional
		fresh, findErr := s.memberRepo.FindByID(ctx, memberID)
		if findErr != nil || fresh == nil {
			return nil, model.NewMemberNotFoundError(memberID)
		}
		return nil, model.NewInvalidTransitionError(fresh.Classification)
	}

	slog.Info("membership classification changed",
		slog.String("member_id", memberID),
		slog.String("action", action),
		slog.String("classification", string(updated.Classification)),
	)

	return updated, nil
}

// ListPending retorna os cadastros aguardando aprovação.
func (s *Service) ListPending(ctx context.Context) ([]*model.Member, error) {
	members, err := s.memberRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending members: %w", err)
	}
	return members, nil
}

// CountPending retorna a quantidade de cadastros aguardando aprovação.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	count, err := s.memberRepo.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending members: %w", err)
	}
	return count, nil
}

// GetByUserID retorna o registro de filiação do usuário, ou nil.
func (s *Service) GetByUserID(ctx context.Context, userID string) (*model.Member, error) {
	member, err := s.memberRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find membership record: %w", err)
	}
	return member, nil
}

// UpdateProfile atualiza os campos editáveis do perfil do usuário.
// A bio passa pelo sanitizador antes da persistência; apelido vazio mantém o
// default.
func (s *Service) UpdateProfile(ctx context.Context, userID, nickname, bio, avatarURL string) (*model.Member, error) {
	current, err := s.memberRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find membership record: %w", err)
	}
	if current == nil {
		return nil, model.NewMemberNotFoundError(userID)
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = defaultNickname
	}

	if s.sanitizer != nil {
		bio = s.sanitizer.Sanitize(bio)
	}

	updated, err := s.memberRepo.UpdateProfile(ctx, current.ID, nickname, bio, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if updated == nil {
		return nil, model.NewMemberNotFoundError(current.ID)
	}

	return updated, nil
}
