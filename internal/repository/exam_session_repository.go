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

type ExamSessionRepository struct {
	db *pgxpool.Pool
}

func NewExamSessionRepository(db *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{db: db}
}

const sessionColumns = `id, exam_id, started_at, ended_at, total_students,
	students_started, students_submitted, is_active`

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	var s model.ExamSession
	err := row.Scan(
		&s.ID,
		&s.ExamID,
		&s.StartedAt,
		&s.EndedAt,
		&s.TotalStudents,
		&s.StudentsStarted,
		&s.StudentsSubmitted,
		&s.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create opens a monitoring session for an exam run.
func (r *ExamSessionRepository) Create(ctx context.Context, examID uuid.UUID, totalStudents int) (*model.ExamSession, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO exam_sessions (exam_id, total_students)
		VALUES ($1, $2)
		RETURNING `+sessionColumns+`
	`, examID, totalStudents)

	return scanSession(row)
}

func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM exam_sessions
		WHERE id = $1
	`, id)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *ExamSessionRepository) GetActiveByExam(ctx context.Context, examID uuid.UUID) (*model.ExamSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM exam_sessions
		WHERE exam_id = $1 AND is_active = TRUE
		ORDER BY started_at DESC
		LIMIT 1
	`, examID)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListActive returns all open sessions with their exam titles.
func (r *ExamSessionRepository) ListActive(ctx context.Context) ([]model.ExamSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.exam_id, s.started_at, s.ended_at, s.total_students,
		       s.students_started, s.students_submitted, s.is_active, e.title
		FROM exam_sessions s
		JOIN exams e ON e.id = s.exam_id
		WHERE s.is_active = TRUE
		ORDER BY s.started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		var s model.ExamSession
		err := rows.Scan(
			&s.ID, &s.ExamID, &s.StartedAt, &s.EndedAt, &s.TotalStudents,
			&s.StudentsStarted, &s.StudentsSubmitted, &s.IsActive, &s.ExamTitle,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *ExamSessionRepository) End(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE exam_sessions
		SET is_active = FALSE, ended_at = $2
		WHERE id = $1 AND is_active = TRUE
	`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CounterDelta is one pending increment against a session's counters.
type CounterDelta struct {
	SessionID      uuid.UUID
	StartedDelta   int
	SubmittedDelta int
}

// ApplyCounterDeltas applies queued counter increments in one batched update.
func (r *ExamSessionRepository) ApplyCounterDeltas(ctx context.Context, deltas []CounterDelta) error {
	ids := make([]uuid.UUID, len(deltas))
	started := make([]int, len(deltas))
	submitted := make([]int, len(deltas))
	for i, d := range deltas {
		ids[i] = d.SessionID
		started[i] = d.StartedDelta
		submitted[i] = d.SubmittedDelta
	}

	_, err := r.db.Exec(ctx, `
		UPDATE exam_sessions AS s
		SET students_started = s.students_started + u.started,
		    students_submitted = s.students_submitted + u.submitted
		FROM (
			SELECT unnest($1::uuid[]) AS id,
			       unnest($2::int[]) AS started,
			       unnest($3::int[]) AS submitted
		) AS u
		WHERE s.id = u.id
	`, ids, started, submitted)
	return err
}

// ApplyCounterDelta applies one increment, used as the per-row fallback when
// a batch fails.
func (r *ExamSessionRepository) ApplyCounterDelta(ctx context.Context, d CounterDelta) error {
	_, err := r.db.Exec(ctx, `
		UPDATE exam_sessions
		SET students_started = students_started + $2,
		    students_submitted = students_submitted + $3
		WHERE id = $1
	`, d.SessionID, d.StartedDelta, d.SubmittedDelta)
	return err
}

// ListStudentProgress returns live per-student progress for a session's exam.
func (r *ExamSessionRepository) ListStudentProgress(ctx context.Context, examID uuid.UUID) ([]model.StudentProgress, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.student_id, u.full_name, p.status,
		       COUNT(sr.id) FILTER (WHERE sr.selected_answer IS NOT NULL AND sr.selected_answer <> ''),
		       COALESCE(p.time_remaining_seconds, 0),
		       p.last_activity_at
		FROM student_exam_papers p
		JOIN users u ON u.id = p.student_id
		LEFT JOIN student_responses sr ON sr.paper_id = p.id
		WHERE p.exam_id = $1
		GROUP BY p.id, u.full_name
		ORDER BY u.full_name
	`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []model.StudentProgress
	for rows.Next() {
		var sp model.StudentProgress
		err := rows.Scan(
			&sp.StudentID,
			&sp.StudentName,
			&sp.Status,
			&sp.QuestionsAttempted,
			&sp.TimeRemainingSeconds,
			&sp.LastActivityAt,
		)
		if err != nil {
			return nil, err
		}
		progress = append(progress, sp)
	}
	return progress, rows.Err()
}

func (r *ExamSessionRepository) CreateFlag(ctx context.Context, sessionID uuid.UUID, studentID, flaggedBy int, flagType string, description *string) (*model.SessionFlag, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO session_flags (session_id, student_id, flagged_by, flag_type, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, session_id, student_id, flagged_by, flag_type, description, created_at
	`, sessionID, studentID, flaggedBy, flagType, description)

	var f model.SessionFlag
	err := row.Scan(&f.ID, &f.SessionID, &f.StudentID, &f.FlaggedBy, &f.FlagType, &f.Description, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *ExamSessionRepository) ListFlags(ctx context.Context, sessionID uuid.UUID) ([]model.SessionFlag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, student_id, flagged_by, flag_type, description, created_at
		FROM session_flags
		WHERE session_id = $1
		ORDER BY created_at DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.SessionFlag
	for rows.Next() {
		var f model.SessionFlag
		err := rows.Scan(&f.ID, &f.SessionID, &f.StudentID, &f.FlaggedBy, &f.FlagType, &f.Description, &f.CreatedAt)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
