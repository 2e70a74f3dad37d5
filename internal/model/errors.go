// Package model define os modelos de domínio.
package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateMember sinaliza violação da constraint UNIQUE de members.user_id.
// No caminho de criação preguiçosa do registro de filiação isso é uma corrida
// benigna (duas abas logando ao mesmo tempo): o chamador deve reler a linha
// existente em vez de propagar o erro.
var ErrDuplicateMember = errors.New("registro de filiação já existe para o usuário")

// APIError representa o formato unificado de erro da API.
// Inclui categoria da causa e orientação de correção exibidas na UI.
type APIError struct {
	Code     string // código do erro
	Message  string // mensagem do erro
	Category string // categoria: auth, validation, member, system
	Action   string // orientação para o usuário
}

// Error implementa a interface error.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Códigos de erro definidos
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeMemberNotFound    = "MEMBER_NOT_FOUND"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeAuthTimeout       = "AUTH_TIMEOUT"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidAvatarURL  = "INVALID_AVATAR_URL"
)

// NewUnauthorizedError gera o erro de requisição não autenticada.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Autenticação necessária.",
		Category: "auth",
		Action:   "Faça login e tente novamente.",
	}
}

// NewForbiddenError gera o erro de classificação insuficiente para a rota.
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "Acesso restrito a administradores.",
		Category: "auth",
		Action:   "Solicite acesso a um administrador do time.",
	}
}

// NewMemberNotFoundError gera o erro de registro de filiação inexistente.
func NewMemberNotFoundError(memberID string) *APIError {
	return &APIError{
		Code:     ErrCodeMemberNotFound,
		Message:  fmt.Sprintf("Registro de filiação não encontrado: %s", memberID),
		Category: "member",
		Action:   "Atualize a lista de pendentes e tente novamente.",
	}
}

// NewInvalidTransitionError gera o erro de transição de classificação inválida.
// Aprovação e rejeição só se aplicam a registros com classificação inactive.
func NewInvalidTransitionError(current Classification) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("O registro não está pendente de aprovação (classificação atual: %s).", current),
		Category: "member",
		Action:   "Apenas cadastros pendentes podem ser aprovados ou rejeitados.",
	}
}

// NewAuthTimeoutError gera o erro de verificação de sessão expirada por timeout.
func NewAuthTimeoutError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthTimeout,
		Message:  "A verificação da sessão excedeu o tempo limite.",
		Category: "system",
		Action:   "Tente novamente; se o problema persistir, faça login novamente.",
	}
}

// NewInvalidRequestError gera o erro de corpo de requisição inválido.
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Requisição inválida: %s", reason),
		Category: "validation",
		Action:   "Verifique os campos enviados e tente novamente.",
	}
}

// NewInvalidAvatarURLError gera o erro de URL de avatar rejeitada pelo guard.
func NewInvalidAvatarURLError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAvatarURL,
		Message:  "A URL do avatar foi bloqueada pela política de segurança.",
		Category: "validation",
		Action:   "Somente URLs públicas https são aceitas para avatares.",
	}
}
