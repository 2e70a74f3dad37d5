package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/coringas/sistema-coringas/internal/model"
)

// uniqueViolationCode é o código SQLSTATE de violação de constraint UNIQUE.
const uniqueViolationCode = "23505"

// PostgresMemberRepo é o repositório dos registros de filiação sobre PostgreSQL.
type PostgresMemberRepo struct {
	db *sql.DB
}

// NewPostgresMemberRepo cria um PostgresMemberRepo.
func NewPostgresMemberRepo(db *sql.DB) *PostgresMemberRepo {
	return &PostgresMemberRepo{db: db}
}

// memberColumns são as colunas lidas em toda consulta de members, na ordem
// esperada por scanMember.
const memberColumns = `id, user_id, classification, nickname, bio, avatar_url, created_at, updated_at`

// scanMember materializa uma linha de members, normalizando a classificação
// na fronteira com o banco.
func scanMember(row *sql.Row) (*model.Member, error) {
	m := &model.Member{}
	var rawClassification string
	err := row.Scan(&m.ID, &m.UserID, &rawClassification, &m.Nickname, &m.Bio, &m.AvatarURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Classification = model.ParseClassification(rawClassification)
	return m, nil
}

// FindByID busca o registro pelo ID. Retorna nil quando não encontrado.
func (r *PostgresMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`,
		id,
	)

	member, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by ID: %w", err)
	}

	return member, nil
}

// FindByUserID busca o registro pelo user_id. Retorna nil quando não encontrado.
func (r *PostgresMemberRepo) FindByUserID(ctx context.Context, userID string) (*model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE user_id = $1`,
		userID,
	)

	member, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by user ID: %w", err)
	}

	return member, nil
}

// Create insere um novo registro de filiação.
// Violação da constraint UNIQUE de user_id retorna model.ErrDuplicateMember,
// permitindo ao chamador tratar a corrida de inserção concorrente como benigna.
func (r *PostgresMemberRepo) Create(ctx context.Context, member *model.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, user_id, classification, nickname, bio, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		member.ID, member.UserID, string(member.Classification), member.Nickname,
		member.Bio, member.AvatarURL, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateMember
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// UpdateClassification efetua a transição de classificação de forma condicional.
// A cláusula WHERE garante que a linha só é atualizada se a classificação atual
// for `from`; aprovações concorrentes sobre o mesmo registro afetam uma única vez.
// A comparação aceita qualquer grafia armazenada que normalize para `from`,
// cobrindo as linhas legadas em português.
// Retorna nil quando nenhuma linha foi afetada.
func (r *PostgresMemberRepo) UpdateClassification(ctx context.Context, id string, from, to model.Classification) (*model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE members
		 SET classification = $1, updated_at = now()
		 WHERE id = $2 AND lower(classification) = ANY($3)
		 RETURNING `+memberColumns,
		string(to), id, pq.Array(model.ClassificationSpellings(from)),
	)

	member, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update member classification: %w", err)
	}

	return member, nil
}

// ListPending retorna os registros com classificação inactive, do mais antigo
// para o mais recente. A comparação em lower() cobre os dados legados.
func (r *PostgresMemberRepo) ListPending(ctx context.Context) ([]*model.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+`
		 FROM members
		 WHERE lower(classification) = ANY($1)
		 ORDER BY created_at ASC`,
		pq.Array(model.ClassificationSpellings(model.ClassificationInactive)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		m := &model.Member{}
		var rawClassification string
		if err := rows.Scan(&m.ID, &m.UserID, &rawClassification, &m.Nickname, &m.Bio, &m.AvatarURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending member: %w", err)
		}
		m.Classification = model.ParseClassification(rawClassification)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending members: %w", err)
	}

	return members, nil
}

// CountPending retorna a quantidade de registros com classificação inactive.
func (r *PostgresMemberRepo) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM members WHERE lower(classification) = ANY($1)`,
		pq.Array(model.ClassificationSpellings(model.ClassificationInactive)),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending members: %w", err)
	}
	return count, nil
}

// UpdateProfile atualiza os campos editáveis do perfil.
// Retorna nil quando o registro não existe.
func (r *PostgresMemberRepo) UpdateProfile(ctx context.Context, id, nickname, bio, avatarURL string) (*model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE members
		 SET nickname = $1, bio = $2, avatar_url = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING `+memberColumns,
		nickname, bio, avatarURL, id,
	)

	member, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update member profile: %w", err)
	}

	return member, nil
}

// isUniqueViolation identifica violação de constraint UNIQUE reportada pelo
// driver lib/pq (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}

// compile-time interface check
var _ MemberRepository = (*PostgresMemberRepo)(nil)
