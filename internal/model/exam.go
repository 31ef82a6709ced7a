package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusScheduled ExamStatus = "SCHEDULED"
	ExamStatusActive    ExamStatus = "ACTIVE"
	ExamStatusCompleted ExamStatus = "COMPLETED"
	ExamStatusCancelled ExamStatus = "CANCELLED"
)

// Exam represents a schedulable assessment instance.
type Exam struct {
	ID                    uuid.UUID          `json:"id"`
	Title                 string             `json:"title"`
	Description           *string            `json:"description,omitempty"`
	QuestionBankID        uuid.UUID          `json:"question_bank_id"`
	TotalQuestions        int                `json:"total_questions"`
	DurationMinutes       int                `json:"duration_minutes"`
	TotalMarks            float64            `json:"total_marks"`
	PassingMarks          float64            `json:"passing_marks"`
	StartTime             time.Time          `json:"start_time"`
	EndTime               time.Time          `json:"end_time"`
	Status                ExamStatus         `json:"status"`
	ShuffleQuestions      bool               `json:"shuffle_questions"`
	ShuffleOptions        bool               `json:"shuffle_options"`
	ShowResultImmediately bool               `json:"show_result_immediately"`
	AllowReview           bool               `json:"allow_review"`
	MaxAttempts           int                `json:"max_attempts"`
	// DifficultyDistribution maps tier → question count; nil means a plain
	// uniform draw of TotalQuestions from the bank.
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution,omitempty"`
	CreatedBy              int                `json:"created_by"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// DurationSeconds returns the exam duration in seconds.
func (e *Exam) DurationSeconds() int {
	return e.DurationMinutes * 60
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title                  string             `json:"title" binding:"required,min=3,max=255"`
	Description            *string            `json:"description" binding:"omitempty,max=2000"`
	QuestionBankID         uuid.UUID          `json:"question_bank_id" binding:"required"`
	TotalQuestions         int                `json:"total_questions" binding:"required,min=1"`
	DurationMinutes        int                `json:"duration_minutes" binding:"required,min=1,max=480"`
	TotalMarks             float64            `json:"total_marks" binding:"required,gt=0"`
	PassingMarks           float64            `json:"passing_marks" binding:"min=0"`
	StartTime              time.Time          `json:"start_time" binding:"required"`
	EndTime                time.Time          `json:"end_time" binding:"required,gtfield=StartTime"`
	ShuffleQuestions       *bool              `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions         *bool              `json:"shuffle_options" binding:"omitempty"`
	ShowResultImmediately  bool               `json:"show_result_immediately"`
	AllowReview            *bool              `json:"allow_review" binding:"omitempty"`
	MaxAttempts            int                `json:"max_attempts" binding:"omitempty,min=1"`
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution" binding:"omitempty"`
}

// UpdateExamRequest is the payload for updating a draft/scheduled exam.
type UpdateExamRequest struct {
	Title                  string             `json:"title" binding:"omitempty,min=3,max=255"`
	Description            *string            `json:"description" binding:"omitempty,max=2000"`
	TotalQuestions         *int               `json:"total_questions" binding:"omitempty,min=1"`
	DurationMinutes        *int               `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	TotalMarks             *float64           `json:"total_marks" binding:"omitempty,gt=0"`
	PassingMarks           *float64           `json:"passing_marks" binding:"omitempty,min=0"`
	StartTime              *time.Time         `json:"start_time" binding:"omitempty"`
	EndTime                *time.Time         `json:"end_time" binding:"omitempty"`
	ShuffleQuestions       *bool              `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions         *bool              `json:"shuffle_options" binding:"omitempty"`
	AllowReview            *bool              `json:"allow_review" binding:"omitempty"`
	MaxAttempts            *int               `json:"max_attempts" binding:"omitempty,min=1"`
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution" binding:"omitempty"`
}

// AssignStudentsRequest is the payload for assigning students to an exam.
type AssignStudentsRequest struct {
	StudentIDs []int `json:"student_ids" binding:"required,min=1,dive,min=1"`
}

// StudentExamEntry is an exam as listed for a student, with attempt overlay.
type StudentExamEntry struct {
	Exam        Exam `json:"exam"`
	IsAssigned  bool `json:"is_assigned"`
	IsCompleted bool `json:"is_completed"`
}
