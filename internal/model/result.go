package model

import (
	"time"

	"github.com/google/uuid"
)

// DifficultyScore is the per-tier evaluation breakdown.
type DifficultyScore struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Marks   float64 `json:"marks"`
}

// Result is the final scored outcome of one paper. Exactly one Result exists
// per paper; only the Rank field is mutated after creation.
type Result struct {
	ID                  uuid.UUID                      `json:"id"`
	ExamID              uuid.UUID                      `json:"exam_id"`
	StudentID           int                            `json:"student_id"`
	PaperID             uuid.UUID                      `json:"paper_id"`
	TotalQuestions      int                            `json:"total_questions"`
	Attempted           int                            `json:"attempted"`
	Correct             int                            `json:"correct"`
	Wrong               int                            `json:"wrong"`
	TotalMarks          float64                        `json:"total_marks"`
	MarksObtained       float64                        `json:"marks_obtained"`
	Percentage          float64                        `json:"percentage"`
	IsPassed            bool                           `json:"is_passed"`
	Rank                *int                           `json:"rank,omitempty"`
	DifficultyWiseScore map[Difficulty]DifficultyScore `json:"difficulty_wise_score,omitempty"`
	EvaluatedAt         time.Time                      `json:"evaluated_at"`
}

// ResultView is a result joined with exam and student display fields.
type ResultView struct {
	Result
	ExamTitle   string `json:"exam_title"`
	StudentName string `json:"student_name"`
}

// ResultSummary aggregates all results of one exam.
type ResultSummary struct {
	ExamID           uuid.UUID `json:"exam_id"`
	ExamTitle        string    `json:"exam_title"`
	TotalStudents    int       `json:"total_students"`
	StudentsAppeared int       `json:"students_appeared"`
	StudentsPassed   int       `json:"students_passed"`
	AverageScore     float64   `json:"average_score"`
	HighestScore     float64   `json:"highest_score"`
	LowestScore      float64   `json:"lowest_score"`
}
