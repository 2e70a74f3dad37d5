// Package model define os modelos de domínio.
package model

import "time"

// Event representa um evento do time exibido na agenda.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
}

// ChargeStatus representa o estado de uma cobrança.
type ChargeStatus string

const (
	// ChargeStatusPending indica cobrança em aberto.
	ChargeStatusPending ChargeStatus = "pending"
	// ChargeStatusPaid indica cobrança quitada.
	ChargeStatusPaid ChargeStatus = "paid"
)

// Charge representa uma cobrança pendente ou quitada de um membro.
// O valor é armazenado em centavos para evitar aritmética de ponto flutuante.
type Charge struct {
	ID          string
	MemberID    string
	Description string
	AmountCents int64
	Status      ChargeStatus
	DueDate     time.Time
	CreatedAt   time.Time
}
