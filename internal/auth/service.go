// Package auth provê o fluxo de autenticação OAuth e o gerenciamento de
// sessões.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coringas/sistema-coringas/internal/member"
	"github.com/coringas/sistema-coringas/internal/model"
	"github.com/coringas/sistema-coringas/internal/repository"
)

// OAuthUserInfo representa as informações do usuário obtidas do provedor
// OAuth.
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	FullName       string
	Name           string
	AvatarURL      string
	Provider       string // "google", "github" etc.
}

// OAuthProvider é a interface de um provedor de autenticação OAuth.
// Abstração para suportar múltiplos IdPs (Google, GitHub etc.) no futuro.
type OAuthProvider interface {
	// GetLoginURL gera a URL de autorização OAuth.
	GetLoginURL(state string) string
	// ExchangeCode troca o código de autorização por um token e obtém as
	// informações do usuário.
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// MembershipReconciler garante o registro de filiação após o sign-in.
type MembershipReconciler interface {
	EnsureMembershipRecord(ctx context.Context, userID string, hints member.ProfileHints) (*model.Member, error)
}

// SignInRecorder registra sign-ins para fins de observabilidade.
type SignInRecorder interface {
	RecordSignIn(newUser bool)
}

// ServiceConfig é a configuração do serviço de autenticação.
type ServiceConfig struct {
	SessionMaxAge int // validade da sessão em segundos
}

// CallbackResult é o resultado do processamento do callback OAuth.
type CallbackResult struct {
	Session *model.Session
	User    *model.User
	Member  *model.Member
	NewUser bool
}

// Service provê a lógica de negócio de autenticação.
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	reconciler  MembershipReconciler
	recorder    SignInRecorder
	config      ServiceConfig
}

// NewService cria um Service.
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	reconciler MembershipReconciler,
	recorder SignInRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		reconciler:  reconciler,
		recorder:    recorder,
		config:      config,
	}
}

// GetLoginURL gera a URL de autorização OAuth.
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback processa o callback OAuth e emite uma sessão.
// Usuários não cadastrados recebem registros em users e identities na mesma
// transação; usuários já cadastrados são localizados pela identidade. Em
// ambos os casos o registro de filiação é garantido antes do retorno, de modo
// que nenhuma sessão exista sem a linha correspondente em members.
func (s *Service) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	// 1. troca o código por token e obtém as informações do usuário
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. localiza usuário existente pela identidade
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	var (
		user    *model.User
		newUser bool
	)

	if identity != nil {
		// 3a. usuário existente: recupera pelo ID da identidade
		user, err = s.userRepo.FindByID(ctx, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("identity %s references missing user %s", identity.ID, identity.UserID)
		}
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
			slog.String("provider", userInfo.Provider),
		)
	} else {
		// 3b. usuário novo: cria users e identities juntos
		now := time.Now()
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     userInfo.Email,
			Name:      userInfo.FullName,
			AvatarURL: userInfo.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		newIdentity := &model.Identity{
			ID:             uuid.New().String(),
			UserID:         user.ID,
			Provider:       userInfo.Provider,
			ProviderUserID: userInfo.ProviderUserID,
			CreatedAt:      now,
		}

		if err := s.userRepo.CreateWithIdentity(ctx, user, newIdentity); err != nil {
			return nil, fmt.Errorf("failed to create user and identity: %w", err)
		}

		newUser = true
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("email", userInfo.Email),
			slog.String("provider", userInfo.Provider),
		)
	}

	// 4. garante o registro de filiação (idempotente)
	membership, err := s.reconciler.EnsureMembershipRecord(ctx, user.ID, member.ProfileHints{
		FullName:  userInfo.FullName,
		Name:      userInfo.Name,
		Email:     userInfo.Email,
		AvatarURL: userInfo.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure membership record: %w", err)
	}

	// 5. emite a sessão
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordSignIn(newUser)
	}

	return &CallbackResult{
		Session: session,
		User:    user,
		Member:  membership,
		NewUser: newUser,
	}, nil
}

// Logout destrói a sessão.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser obtém o usuário atual a partir da sessão.
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// createSession cria e persiste a sessão.
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID gera um ID de sessão criptograficamente seguro.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
