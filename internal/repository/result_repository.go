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

type ResultRepository struct {
	db *pgxpool.Pool
}

func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `id, exam_id, student_id, paper_id, total_questions, attempted,
	correct, wrong, total_marks, marks_obtained, percentage, is_passed, rank,
	difficulty_wise_score, evaluated_at`

func scanResult(row pgx.Row) (*model.Result, error) {
	var res model.Result
	err := row.Scan(
		&res.ID,
		&res.ExamID,
		&res.StudentID,
		&res.PaperID,
		&res.TotalQuestions,
		&res.Attempted,
		&res.Correct,
		&res.Wrong,
		&res.TotalMarks,
		&res.MarksObtained,
		&res.Percentage,
		&res.IsPassed,
		&res.Rank,
		&res.DifficultyWiseScore,
		&res.EvaluatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create inserts the evaluation outcome inside the evaluation transaction.
// The unique index on paper_id backs the one-result-per-paper guarantee.
func (r *ResultRepository) Create(ctx context.Context, tx pgx.Tx, res *model.Result) (*model.Result, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO results (
			exam_id, student_id, paper_id, total_questions, attempted, correct, wrong,
			total_marks, marks_obtained, percentage, is_passed, difficulty_wise_score, evaluated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+resultColumns+`
	`,
		res.ExamID, res.StudentID, res.PaperID, res.TotalQuestions, res.Attempted,
		res.Correct, res.Wrong, res.TotalMarks, res.MarksObtained, res.Percentage,
		res.IsPassed, res.DifficultyWiseScore, res.EvaluatedAt,
	)

	return scanResult(row)
}

func (r *ResultRepository) GetByPaper(ctx context.Context, paperID uuid.UUID) (*model.Result, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+resultColumns+`
		FROM results
		WHERE paper_id = $1
	`, paperID)

	res, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RankRow is the slice of a result that ranking needs.
type RankRow struct {
	ID            uuid.UUID
	MarksObtained float64
	EvaluatedAt   time.Time
}

// ListForRanking returns all results of an exam in rank order, locking the
// rows so concurrent evaluations recompute ranks one at a time.
func (r *ResultRepository) ListForRanking(ctx context.Context, tx pgx.Tx, examID uuid.UUID) ([]RankRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, marks_obtained, evaluated_at
		FROM results
		WHERE exam_id = $1
		ORDER BY marks_obtained DESC, evaluated_at ASC
		FOR UPDATE
	`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankRow
	for rows.Next() {
		var row RankRow
		if err := rows.Scan(&row.ID, &row.MarksObtained, &row.EvaluatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpdateRanks applies a full rank assignment in one batched update.
func (r *ResultRepository) UpdateRanks(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, ranks []int) error {
	_, err := tx.Exec(ctx, `
		UPDATE results AS res
		SET rank = u.rank
		FROM (
			SELECT unnest($1::uuid[]) AS id, unnest($2::int[]) AS rank
		) AS u
		WHERE res.id = u.id
	`, ids, ranks)
	return err
}

// ListByExam returns the exam leaderboard, ranked results first.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]model.ResultView, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM results WHERE exam_id = $1
	`, examID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT res.id, res.exam_id, res.student_id, res.paper_id, res.total_questions,
		       res.attempted, res.correct, res.wrong, res.total_marks, res.marks_obtained,
		       res.percentage, res.is_passed, res.rank, res.difficulty_wise_score,
		       res.evaluated_at, e.title, u.full_name
		FROM results res
		JOIN exams e ON e.id = res.exam_id
		JOIN users u ON u.id = res.student_id
		WHERE res.exam_id = $1
		ORDER BY res.rank NULLS LAST, res.marks_obtained DESC
		LIMIT $2 OFFSET $3
	`, examID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	views, err := scanResultViews(rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListByStudent returns a student's result history, newest first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID int) ([]model.ResultView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT res.id, res.exam_id, res.student_id, res.paper_id, res.total_questions,
		       res.attempted, res.correct, res.wrong, res.total_marks, res.marks_obtained,
		       res.percentage, res.is_passed, res.rank, res.difficulty_wise_score,
		       res.evaluated_at, e.title, u.full_name
		FROM results res
		JOIN exams e ON e.id = res.exam_id
		JOIN users u ON u.id = res.student_id
		WHERE res.student_id = $1
		ORDER BY res.evaluated_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResultViews(rows)
}

func scanResultViews(rows pgx.Rows) ([]model.ResultView, error) {
	var views []model.ResultView
	for rows.Next() {
		var v model.ResultView
		err := rows.Scan(
			&v.ID, &v.ExamID, &v.StudentID, &v.PaperID, &v.TotalQuestions,
			&v.Attempted, &v.Correct, &v.Wrong, &v.TotalMarks, &v.MarksObtained,
			&v.Percentage, &v.IsPassed, &v.Rank, &v.DifficultyWiseScore,
			&v.EvaluatedAt, &v.ExamTitle, &v.StudentName,
		)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// Summary aggregates an exam's results. Nil when the exam does not exist.
func (r *ResultRepository) Summary(ctx context.Context, examID uuid.UUID) (*model.ResultSummary, error) {
	row := r.db.QueryRow(ctx, `
		SELECT e.id, e.title,
		       (SELECT COUNT(*) FROM exam_assignments a WHERE a.exam_id = e.id),
		       COUNT(res.id),
		       COUNT(res.id) FILTER (WHERE res.is_passed),
		       COALESCE(AVG(res.marks_obtained), 0),
		       COALESCE(MAX(res.marks_obtained), 0),
		       COALESCE(MIN(res.marks_obtained), 0)
		FROM exams e
		LEFT JOIN results res ON res.exam_id = e.id
		WHERE e.id = $1
		GROUP BY e.id
	`, examID)

	var s model.ResultSummary
	err := row.Scan(
		&s.ExamID,
		&s.ExamTitle,
		&s.TotalStudents,
		&s.StudentsAppeared,
		&s.StudentsPassed,
		&s.AverageScore,
		&s.HighestScore,
		&s.LowestScore,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
