package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examforge/examforge-backend/internal/model"
)

type PaperRepository struct {
	db *pgxpool.Pool
}

func NewPaperRepository(db *pgxpool.Pool) *PaperRepository {
	return &PaperRepository{db: db}
}

const paperColumns = `id, exam_id, student_id, paper_data, status, attempt_number,
	started_at, submitted_at, time_remaining_seconds, last_activity_at, created_at`

func scanPaper(row pgx.Row) (*model.StudentExamPaper, error) {
	var (
		p         model.StudentExamPaper
		remaining *int
	)
	err := row.Scan(
		&p.ID,
		&p.ExamID,
		&p.StudentID,
		&p.PaperData,
		&p.Status,
		&p.AttemptNumber,
		&p.StartedAt,
		&p.SubmittedAt,
		&remaining,
		&p.LastActivityAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if remaining != nil {
		p.TimeRemainingSeconds = *remaining
	}
	return &p, nil
}

func (r *PaperRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.StudentExamPaper, error) {
	row := q.QueryRow(ctx, `
		SELECT `+paperColumns+`
		FROM student_exam_papers
		WHERE id = $1
	`, id)

	paper, err := scanPaper(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return paper, nil
}

// GetByIDForUpdate locks the paper row for the duration of the transaction.
// Submission takes this lock so concurrent submits serialize on the row.
func (r *PaperRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.StudentExamPaper, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+paperColumns+`
		FROM student_exam_papers
		WHERE id = $1
		FOR UPDATE
	`, id)

	paper, err := scanPaper(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return paper, nil
}

// GetLatest returns the student's most recent attempt for an exam, or nil.
func (r *PaperRepository) GetLatest(ctx context.Context, examID uuid.UUID, studentID int) (*model.StudentExamPaper, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paperColumns+`
		FROM student_exam_papers
		WHERE exam_id = $1 AND student_id = $2
		ORDER BY attempt_number DESC
		LIMIT 1
	`, examID, studentID)

	paper, err := scanPaper(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return paper, nil
}

func (r *PaperRepository) GetOwned(ctx context.Context, paperID uuid.UUID, studentID int) (*model.StudentExamPaper, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paperColumns+`
		FROM student_exam_papers
		WHERE id = $1 AND student_id = $2
	`, paperID, studentID)

	paper, err := scanPaper(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return paper, nil
}

func (r *PaperRepository) CountAttempts(ctx context.Context, examID uuid.UUID, studentID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM student_exam_papers
		WHERE exam_id = $1 AND student_id = $2
	`, examID, studentID).Scan(&count)
	return count, err
}

// CreateWithResponses inserts a paper and its empty answer slots in one
// transaction. The conditional insert makes concurrent calls race safely:
// the loser gets no row back and returns nil, and the caller re-fetches the
// winner's paper.
func (r *PaperRepository) CreateWithResponses(ctx context.Context, examID uuid.UUID, studentID, attempt int, data model.PaperData, remainingSeconds int) (*model.StudentExamPaper, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO student_exam_papers (exam_id, student_id, paper_data, attempt_number, time_remaining_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (exam_id, student_id, attempt_number) DO NOTHING
		RETURNING `+paperColumns+`
	`, examID, studentID, data, attempt, remainingSeconds)

	paper, err := scanPaper(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	questionIDs := make([]uuid.UUID, len(data.Questions))
	for i, pq := range data.Questions {
		questionIDs[i] = pq.QuestionID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO student_responses (paper_id, question_id)
		SELECT $1, unnest($2::uuid[])
	`, paper.ID, questionIDs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return paper, nil
}

// Start moves a paper from NOT_STARTED to IN_PROGRESS. Returns false when the
// paper was already started, so the "students started" counter is bumped at
// most once per paper.
func (r *PaperRepository) Start(ctx context.Context, paperID uuid.UUID, startedAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE student_exam_papers
		SET status = $2, started_at = $3, last_activity_at = $3
		WHERE id = $1 AND status = $4
	`, paperID, model.PaperStatusInProgress, startedAt, model.PaperStatusNotStarted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// TouchActivity refreshes the activity timestamp and persisted timer value.
// The persisted value is informational; the authoritative remaining time is
// always recomputed from started_at.
func (r *PaperRepository) TouchActivity(ctx context.Context, paperID uuid.UUID, remainingSeconds int, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE student_exam_papers
		SET time_remaining_seconds = $2, last_activity_at = $3
		WHERE id = $1
	`, paperID, remainingSeconds, at)
	return err
}

// MarkSubmitted finalizes an in-progress paper. Guarded on status so a
// concurrent submit (or auto-submit) wins exactly once.
func (r *PaperRepository) MarkSubmitted(ctx context.Context, q Querier, paperID uuid.UUID, status model.PaperStatus, submittedAt time.Time, remainingSeconds int) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE student_exam_papers
		SET status = $2, submitted_at = $3, time_remaining_seconds = $4, last_activity_at = $3
		WHERE id = $1 AND status = $5
	`, paperID, status, submittedAt, remainingSeconds, model.PaperStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PaperRepository) MarkEvaluated(ctx context.Context, q Querier, paperID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		UPDATE student_exam_papers
		SET status = $2
		WHERE id = $1
	`, paperID, model.PaperStatusEvaluated)
	return err
}
