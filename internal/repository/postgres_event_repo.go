package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coringas/sistema-coringas/internal/model"
)

// PostgresEventRepo é o repositório de eventos sobre PostgreSQL.
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo cria um PostgresEventRepo.
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// ListUpcoming retorna eventos com início a partir do momento atual,
// ordenados pela data de início.
func (r *PostgresEventRepo) ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, location, starts_at, ends_at, created_at
		 FROM events
		 WHERE starts_at >= now()
		 ORDER BY starts_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		e := &model.Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// Create cria um evento.
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, location, starts_at, ends_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
