package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coringas/sistema-coringas/internal/model"
)

// PostgresChargeRepo é o repositório de cobranças sobre PostgreSQL.
type PostgresChargeRepo struct {
	db *sql.DB
}

// NewPostgresChargeRepo cria um PostgresChargeRepo.
func NewPostgresChargeRepo(db *sql.DB) *PostgresChargeRepo {
	return &PostgresChargeRepo{db: db}
}

// ListPendingByMember retorna as cobranças em aberto do membro, ordenadas
// pelo vencimento.
func (r *PostgresChargeRepo) ListPendingByMember(ctx context.Context, memberID string) ([]*model.Charge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, description, amount_cents, status, due_date, created_at
		 FROM charges
		 WHERE member_id = $1 AND status = 'pending'
		 ORDER BY due_date ASC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending charges: %w", err)
	}
	defer rows.Close()

	var charges []*model.Charge
	for rows.Next() {
		c := &model.Charge{}
		var status string
		if err := rows.Scan(&c.ID, &c.MemberID, &c.Description, &c.AmountCents, &status, &c.DueDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		c.Status = model.ChargeStatus(status)
		charges = append(charges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate charges: %w", err)
	}

	return charges, nil
}

// compile-time interface check
var _ ChargeRepository = (*PostgresChargeRepo)(nil)
