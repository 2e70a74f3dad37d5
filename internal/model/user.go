// Package model define os modelos de domínio.
package model

import "time"

// User representa um usuário autenticado do sistema.
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity representa o vínculo com o provedor de identidade externo.
// Estrutura preparada para múltiplos IdPs (Google, GitHub etc.).
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session representa a sessão de login de um usuário.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
