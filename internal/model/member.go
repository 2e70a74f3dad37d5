// Package model define os modelos de domínio.
package model

import (
	"sort"
	"strings"
	"time"
)

// Classification representa a classificação de um membro no sistema.
// É o único insumo de toda decisão de controle de acesso.
type Classification string

const (
	// ClassificationInactive indica cadastro aguardando aprovação de um admin.
	ClassificationInactive Classification = "inactive"
	// ClassificationMember indica membro aprovado do time.
	ClassificationMember Classification = "member"
	// ClassificationAdmin indica administrador do time.
	ClassificationAdmin Classification = "admin"
	// ClassificationRejected indica cadastro rejeitado por um admin.
	ClassificationRejected Classification = "rejected"
)

// classificationAliases mapeia grafias legadas encontradas no banco para o
// valor canônico. Dados antigos gravaram a classificação em português e com
// capitalização inconsistente ("Inativo", "ADMIN", "Membro").
var classificationAliases = map[string]Classification{
	"inactive":  ClassificationInactive,
	"inativo":   ClassificationInactive,
	"member":    ClassificationMember,
	"membro":    ClassificationMember,
	"admin":     ClassificationAdmin,
	"rejected":  ClassificationRejected,
	"rejeitado": ClassificationRejected,
}

// ParseClassification normaliza um valor bruto de classificação vindo do banco.
// A comparação é case-insensitive e aceita as grafias legadas em português.
// Valores desconhecidos ou vazios normalizam para ClassificationInactive, que é
// o estado mais restritivo entre os que possuem sessão.
func ParseClassification(raw string) Classification {
	if c, ok := classificationAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return ClassificationInactive
}

// ClassificationSpellings retorna todas as grafias armazenadas que normalizam
// para c, em minúsculas e ordenadas. Consultas que comparam a classificação
// direto no SQL devem usar esta lista, nunca só o valor canônico, para que
// as linhas legadas em português recebam o mesmo tratamento.
func ClassificationSpellings(c Classification) []string {
	var spellings []string
	for raw, canonical := range classificationAliases {
		if canonical == c {
			spellings = append(spellings, raw)
		}
	}
	if len(spellings) == 0 {
		spellings = append(spellings, strings.ToLower(string(c)))
	}
	sort.Strings(spellings)
	return spellings
}

// IsAdmin informa se a classificação é de administrador.
func (c Classification) IsAdmin() bool {
	return c == ClassificationAdmin
}

// IsMember informa se a classificação é de membro aprovado.
func (c Classification) IsMember() bool {
	return c == ClassificationMember
}

// IsApproved informa se a classificação dá acesso às áreas protegidas
// (membro aprovado ou administrador).
func (c Classification) IsApproved() bool {
	return c.IsAdmin() || c.IsMember()
}

// Member representa o registro de filiação de um usuário.
// Invariante: no máximo um Member por UserID (constraint UNIQUE no banco);
// todo usuário autenticado passa a ter exatamente um registro, criado de forma
// preguiçosa pelo reconciliador no primeiro login.
type Member struct {
	ID             string
	UserID         string
	Classification Classification
	Nickname       string
	Bio            string
	AvatarURL      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
