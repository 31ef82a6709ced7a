package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examforge/examforge-backend/internal/model"
)

type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, question_bank_id, question_text, question_type, difficulty,
	options, option_order, correct_answer, marks, negative_marks, explanation,
	is_active, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var q model.Question
	err := row.Scan(
		&q.ID,
		&q.QuestionBankID,
		&q.QuestionText,
		&q.QuestionType,
		&q.Difficulty,
		&q.Options,
		&q.OptionOrder,
		&q.CorrectAnswer,
		&q.Marks,
		&q.NegativeMarks,
		&q.Explanation,
		&q.IsActive,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuestionRows(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) Create(ctx context.Context, bankID uuid.UUID, req *model.AddQuestionRequest, difficulty model.Difficulty, marks float64) (*model.Question, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO questions (
			question_bank_id, question_text, question_type, difficulty,
			options, option_order, correct_answer, marks, negative_marks, explanation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+questionColumns+`
	`,
		bankID, req.QuestionText, req.QuestionType, difficulty,
		req.Options, req.OptionOrder, req.CorrectAnswer, marks, req.NegativeMarks, req.Explanation,
	)

	return scanQuestion(row)
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE id = $1
	`, id)

	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepository) ListByBank(ctx context.Context, bankID uuid.UUID, limit, offset int) ([]model.Question, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM questions WHERE question_bank_id = $1 AND is_active = TRUE
	`, bankID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE question_bank_id = $1 AND is_active = TRUE
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, bankID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	questions, err := scanQuestionRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// ListActiveByBank returns every active question of a bank, optionally
// filtered to one difficulty tier. Used by paper generation.
func (r *QuestionRepository) ListActiveByBank(ctx context.Context, bankID uuid.UUID, difficulty *model.Difficulty) ([]model.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE question_bank_id = $1 AND is_active = TRUE
	`
	args := []any{bankID}
	if difficulty != nil {
		query += ` AND difficulty = $2`
		args = append(args, *difficulty)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanQuestionRows(rows)
}

// ListByIDs fetches questions by id regardless of active flag. Evaluation
// uses it so deactivating a question mid-exam cannot orphan a paper slot.
func (r *QuestionRepository) ListByIDs(ctx context.Context, q Querier, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := q.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	return scanQuestionRows(rows)
}

func (r *QuestionRepository) CountActiveByBank(ctx context.Context, bankID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM questions WHERE question_bank_id = $1 AND is_active = TRUE
	`, bankID).Scan(&count)
	return count, err
}

func (r *QuestionRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE questions
		SET question_text  = COALESCE(NULLIF($2, ''), question_text),
		    difficulty     = COALESCE(NULLIF($3, ''), difficulty),
		    options        = COALESCE($4, options),
		    option_order   = COALESCE($5, option_order),
		    correct_answer = COALESCE(NULLIF($6, ''), correct_answer),
		    marks          = COALESCE($7, marks),
		    negative_marks = COALESCE($8, negative_marks),
		    explanation    = COALESCE($9, explanation),
		    is_active      = COALESCE($10, is_active),
		    updated_at     = NOW()
		WHERE id = $1
		RETURNING `+questionColumns+`
	`,
		id, req.QuestionText, req.Difficulty, req.Options, req.OptionOrder,
		req.CorrectAnswer, req.Marks, req.NegativeMarks, req.Explanation, req.IsActive,
	)

	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE questions
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
