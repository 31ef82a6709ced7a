package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examforge/examforge-backend/internal/model"
)

type QuestionBankRepository struct {
	db *pgxpool.Pool
}

func NewQuestionBankRepository(db *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{db: db}
}

const bankColumns = `id, name, description, subject, created_by, is_active, created_at, updated_at`

func scanBank(row pgx.Row) (*model.QuestionBank, error) {
	var b model.QuestionBank
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Description,
		&b.Subject,
		&b.CreatedBy,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *QuestionBankRepository) Create(ctx context.Context, req *model.CreateQuestionBankRequest, createdBy int) (*model.QuestionBank, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO question_banks (name, description, subject, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+bankColumns+`
	`, req.Name, req.Description, req.Subject, createdBy)

	return scanBank(row)
}

func (r *QuestionBankRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+bankColumns+`
		FROM question_banks
		WHERE id = $1
	`, id)

	bank, err := scanBank(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bank, nil
}

func (r *QuestionBankRepository) List(ctx context.Context, limit, offset int) ([]model.QuestionBank, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM question_banks WHERE is_active = TRUE
	`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT qb.id, qb.name, qb.description, qb.subject, qb.created_by,
		       qb.is_active, qb.created_at, qb.updated_at,
		       COUNT(q.id) FILTER (WHERE q.is_active) AS question_count
		FROM question_banks qb
		LEFT JOIN questions q ON q.question_bank_id = qb.id
		WHERE qb.is_active = TRUE
		GROUP BY qb.id
		ORDER BY qb.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var b model.QuestionBank
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Description,
			&b.Subject,
			&b.CreatedBy,
			&b.IsActive,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.QuestionCount,
		)
		if err != nil {
			return nil, 0, err
		}
		banks = append(banks, b)
	}
	return banks, total, rows.Err()
}

func (r *QuestionBankRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionBankRequest) (*model.QuestionBank, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE question_banks
		SET name        = COALESCE(NULLIF($2, ''), name),
		    description = COALESCE($3, description),
		    subject     = COALESCE(NULLIF($4, ''), subject),
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING `+bankColumns+`
	`, id, req.Name, req.Description, req.Subject)

	bank, err := scanBank(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bank, nil
}

func (r *QuestionBankRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE question_banks
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
