package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examforge/examforge-backend/internal/model"
)

type ResponseRepository struct {
	db *pgxpool.Pool
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// SaveAnswer overwrites one answer slot. Last write wins. Returns false when
// the question is not part of the paper (no pre-created slot exists).
func (r *ResponseRepository) SaveAnswer(ctx context.Context, paperID, questionID uuid.UUID, selectedAnswer *string, markedForReview bool, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE student_responses
		SET selected_answer = $3, is_marked_for_review = $4, answered_at = $5
		WHERE paper_id = $1 AND question_id = $2
	`, paperID, questionID, selectedAnswer, markedForReview, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SaveAnswers bulk-overwrites answer slots. Returns how many slots matched;
// entries naming questions outside the paper simply match nothing.
func (r *ResponseRepository) SaveAnswers(ctx context.Context, paperID uuid.UUID, answers []model.SaveAnswerRequest, at time.Time) (int, error) {
	questionIDs := make([]uuid.UUID, len(answers))
	selected := make([]*string, len(answers))
	marked := make([]bool, len(answers))
	for i, a := range answers {
		questionIDs[i] = a.QuestionID
		selected[i] = a.SelectedAnswer
		marked[i] = a.IsMarkedForReview
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE student_responses AS sr
		SET selected_answer = u.selected_answer,
		    is_marked_for_review = u.is_marked_for_review,
		    answered_at = $5
		FROM (
			SELECT unnest($2::uuid[]) AS question_id,
			       unnest($3::text[]) AS selected_answer,
			       unnest($4::bool[]) AS is_marked_for_review
		) AS u
		WHERE sr.paper_id = $1 AND sr.question_id = u.question_id
	`, paperID, questionIDs, selected, marked, at)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

const responseColumns = `id, paper_id, question_id, selected_answer, is_marked_for_review,
	is_correct, marks_obtained, answered_at, time_spent_seconds`

func (r *ResponseRepository) ListByPaper(ctx context.Context, q Querier, paperID uuid.UUID) ([]model.StudentResponse, error) {
	rows, err := q.Query(ctx, `
		SELECT `+responseColumns+`
		FROM student_responses
		WHERE paper_id = $1
	`, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.StudentResponse
	for rows.Next() {
		var resp model.StudentResponse
		err := rows.Scan(
			&resp.ID,
			&resp.PaperID,
			&resp.QuestionID,
			&resp.SelectedAnswer,
			&resp.IsMarkedForReview,
			&resp.IsCorrect,
			&resp.MarksObtained,
			&resp.AnsweredAt,
			&resp.TimeSpentSeconds,
		)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// ResponseGrade is one graded slot to persist.
type ResponseGrade struct {
	QuestionID    uuid.UUID
	IsCorrect     *bool
	MarksObtained float64
}

// ApplyGrades persists per-question grading in one batched update. Runs
// inside the evaluation transaction.
func (r *ResponseRepository) ApplyGrades(ctx context.Context, tx pgx.Tx, paperID uuid.UUID, grades []ResponseGrade) error {
	questionIDs := make([]uuid.UUID, len(grades))
	correct := make([]*bool, len(grades))
	marks := make([]float64, len(grades))
	for i, g := range grades {
		questionIDs[i] = g.QuestionID
		correct[i] = g.IsCorrect
		marks[i] = g.MarksObtained
	}

	_, err := tx.Exec(ctx, `
		UPDATE student_responses AS sr
		SET is_correct = u.is_correct,
		    marks_obtained = u.marks_obtained
		FROM (
			SELECT unnest($2::uuid[]) AS question_id,
			       unnest($3::bool[]) AS is_correct,
			       unnest($4::float8[]) AS marks_obtained
		) AS u
		WHERE sr.paper_id = $1 AND sr.question_id = u.question_id
	`, paperID, questionIDs, correct, marks)
	return err
}

// CountAnswered returns how many slots of a paper carry a non-empty answer.
func (r *ResponseRepository) CountAnswered(ctx context.Context, paperID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM student_responses
		WHERE paper_id = $1 AND selected_answer IS NOT NULL AND selected_answer <> ''
	`, paperID).Scan(&count)
	return count, err
}
