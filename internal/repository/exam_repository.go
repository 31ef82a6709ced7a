package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examforge/examforge-backend/internal/model"
)

type ExamRepository struct {
	db *pgxpool.Pool
}

func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = `id, title, description, question_bank_id, total_questions,
	duration_minutes, total_marks, passing_marks, start_time, end_time, status,
	shuffle_questions, shuffle_options, show_result_immediately, allow_review,
	max_attempts, difficulty_distribution, created_by, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	var e model.Exam
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.QuestionBankID,
		&e.TotalQuestions,
		&e.DurationMinutes,
		&e.TotalMarks,
		&e.PassingMarks,
		&e.StartTime,
		&e.EndTime,
		&e.Status,
		&e.ShuffleQuestions,
		&e.ShuffleOptions,
		&e.ShowResultImmediately,
		&e.AllowReview,
		&e.MaxAttempts,
		&e.DifficultyDistribution,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) (*model.Exam, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO exams (
			title, description, question_bank_id, total_questions, duration_minutes,
			total_marks, passing_marks, start_time, end_time, status,
			shuffle_questions, shuffle_options, show_result_immediately, allow_review,
			max_attempts, difficulty_distribution, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+examColumns+`
	`,
		e.Title, e.Description, e.QuestionBankID, e.TotalQuestions, e.DurationMinutes,
		e.TotalMarks, e.PassingMarks, e.StartTime, e.EndTime, e.Status,
		e.ShuffleQuestions, e.ShuffleOptions, e.ShowResultImmediately, e.AllowReview,
		e.MaxAttempts, e.DifficultyDistribution, e.CreatedBy,
	)

	return scanExam(row)
}

func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+examColumns+`
		FROM exams
		WHERE id = $1
	`, id)

	exam, err := scanExam(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (r *ExamRepository) List(ctx context.Context, status *model.ExamStatus, limit, offset int) ([]model.Exam, int, error) {
	countQuery := `SELECT COUNT(*) FROM exams`
	listQuery := `SELECT ` + examColumns + ` FROM exams`
	var countArgs, listArgs []any
	if status != nil {
		countQuery += ` WHERE status = $1`
		listQuery += ` WHERE status = $1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`
		countArgs = []any{*status}
		listArgs = []any{*status, limit, offset}
	} else {
		listQuery += ` ORDER BY start_time DESC LIMIT $1 OFFSET $2`
		listArgs = []any{limit, offset}
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) (*model.Exam, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE exams
		SET title = $2, description = $3, total_questions = $4, duration_minutes = $5,
		    total_marks = $6, passing_marks = $7, start_time = $8, end_time = $9,
		    shuffle_questions = $10, shuffle_options = $11, allow_review = $12,
		    max_attempts = $13, difficulty_distribution = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING `+examColumns+`
	`,
		e.ID, e.Title, e.Description, e.TotalQuestions, e.DurationMinutes,
		e.TotalMarks, e.PassingMarks, e.StartTime, e.EndTime,
		e.ShuffleQuestions, e.ShuffleOptions, e.AllowReview,
		e.MaxAttempts, e.DifficultyDistribution,
	)

	exam, err := scanExam(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return exam, nil
}

// UpdateStatusIf moves an exam from one status to another. Returns false when
// the exam was not in the expected status, which callers treat as "someone
// else advanced it first".
func (r *ExamRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to model.ExamStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE exams
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM exams
		WHERE id = $1 AND status = $2
	`, id, model.ExamStatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AssignStudents inserts assignments, skipping students already assigned.
// Returns the number of new assignments.
func (r *ExamRepository) AssignStudents(ctx context.Context, examID uuid.UUID, studentIDs []int) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO exam_assignments (exam_id, student_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT (exam_id, student_id) DO NOTHING
	`, examID, studentIDs)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *ExamRepository) IsAssigned(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM exam_assignments
			WHERE exam_id = $1 AND student_id = $2
		)
	`, examID, studentID).Scan(&exists)
	return exists, err
}

func (r *ExamRepository) CountAssigned(ctx context.Context, examID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM exam_assignments WHERE exam_id = $1
	`, examID).Scan(&count)
	return count, err
}

// ListForStudent returns exams assigned to a student that are visible to
// students (anything past DRAFT), newest window first.
func (r *ExamRepository) ListForStudent(ctx context.Context, studentID int) ([]model.StudentExamEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.title, e.description, e.question_bank_id, e.total_questions,
		       e.duration_minutes, e.total_marks, e.passing_marks, e.start_time, e.end_time,
		       e.status, e.shuffle_questions, e.shuffle_options, e.show_result_immediately,
		       e.allow_review, e.max_attempts, e.difficulty_distribution, e.created_by,
		       e.created_at, e.updated_at,
		       EXISTS (
		           SELECT 1 FROM student_exam_papers p
		           WHERE p.exam_id = e.id AND p.student_id = $1
		             AND p.status IN ('SUBMITTED', 'AUTO_SUBMITTED', 'EVALUATED')
		       ) AS is_completed
		FROM exams e
		JOIN exam_assignments a ON a.exam_id = e.id
		WHERE a.student_id = $1 AND e.status <> 'DRAFT' AND e.status <> 'CANCELLED'
		ORDER BY e.start_time DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.StudentExamEntry
	for rows.Next() {
		var entry model.StudentExamEntry
		e := &entry.Exam
		err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.QuestionBankID, &e.TotalQuestions,
			&e.DurationMinutes, &e.TotalMarks, &e.PassingMarks, &e.StartTime, &e.EndTime,
			&e.Status, &e.ShuffleQuestions, &e.ShuffleOptions, &e.ShowResultImmediately,
			&e.AllowReview, &e.MaxAttempts, &e.DifficultyDistribution, &e.CreatedBy,
			&e.CreatedAt, &e.UpdatedAt,
			&entry.IsCompleted,
		)
		if err != nil {
			return nil, err
		}
		entry.IsAssigned = true
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
