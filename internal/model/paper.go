package model

import (
	"time"

	"github.com/google/uuid"
)

// PaperStatus enumerates a paper's forward-only lifecycle.
// NOT_STARTED → IN_PROGRESS → {SUBMITTED | AUTO_SUBMITTED} → EVALUATED.
type PaperStatus string

const (
	PaperStatusNotStarted    PaperStatus = "NOT_STARTED"
	PaperStatusInProgress    PaperStatus = "IN_PROGRESS"
	PaperStatusSubmitted     PaperStatus = "SUBMITTED"
	PaperStatusAutoSubmitted PaperStatus = "AUTO_SUBMITTED"
	PaperStatusEvaluated     PaperStatus = "EVALUATED"
)

// IsTerminal reports whether the paper has been handed in (no further answers
// are accepted and no new paper state except evaluation can follow).
func (s PaperStatus) IsTerminal() bool {
	switch s {
	case PaperStatusSubmitted, PaperStatusAutoSubmitted, PaperStatusEvaluated:
		return true
	}
	return false
}

// PaperQuestion is one frozen slot of a paper snapshot. It carries everything
// needed to render the question but not the correct answer — correctness is
// resolved from the live question bank at evaluation time.
type PaperQuestion struct {
	QuestionID    uuid.UUID         `json:"question_id"`
	Sequence      int               `json:"sequence"`
	QuestionText  string            `json:"question_text"`
	QuestionType  QuestionType      `json:"question_type"`
	Marks         float64           `json:"marks"`
	NegativeMarks float64           `json:"negative_marks"`
	OptionOrder   []string          `json:"option_order,omitempty"`
	Options       map[string]string `json:"options,omitempty"`
}

// PaperData is the immutable snapshot stored on a paper. A fixed tagged
// record rather than an open map so option order and marks are strongly
// typed at rest.
type PaperData struct {
	Questions []PaperQuestion `json:"questions"`
}

// StudentExamPaper is one student's one attempt at an exam. The question and
// option selection in PaperData never changes after creation; only status and
// timer fields are mutated.
type StudentExamPaper struct {
	ID            uuid.UUID   `json:"id"`
	ExamID        uuid.UUID   `json:"exam_id"`
	StudentID     int         `json:"student_id"`
	PaperData     PaperData   `json:"paper_data"`
	Status        PaperStatus `json:"status"`
	AttemptNumber int         `json:"attempt_number"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	SubmittedAt   *time.Time  `json:"submitted_at,omitempty"`
	// TimeRemainingSeconds is recomputed server-side from StartedAt; it is
	// never read back from the client.
	TimeRemainingSeconds int        `json:"time_remaining_seconds"`
	LastActivityAt       *time.Time `json:"last_activity_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// StudentResponse is one answer slot, pre-created per paper question.
type StudentResponse struct {
	ID                uuid.UUID  `json:"id"`
	PaperID           uuid.UUID  `json:"paper_id"`
	QuestionID        uuid.UUID  `json:"question_id"`
	SelectedAnswer    *string    `json:"selected_answer,omitempty"`
	IsMarkedForReview bool       `json:"is_marked_for_review"`
	IsCorrect         *bool      `json:"is_correct,omitempty"`
	MarksObtained     *float64   `json:"marks_obtained,omitempty"`
	AnsweredAt        *time.Time `json:"answered_at,omitempty"`
	// TimeSpentSeconds is stored but nothing computes or updates it.
	TimeSpentSeconds int `json:"time_spent_seconds"`
}

// SaveAnswerRequest is the payload for saving a single answer.
type SaveAnswerRequest struct {
	QuestionID        uuid.UUID `json:"question_id" binding:"required"`
	SelectedAnswer    *string   `json:"selected_answer" binding:"omitempty,max=500"`
	IsMarkedForReview bool      `json:"is_marked_for_review"`
}

// SaveAnswersRequest is the payload for bulk answer saves.
type SaveAnswersRequest struct {
	Answers []SaveAnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// ViolationRequest is an anti-cheat violation report from the client.
// The engine only records it; detection logic lives elsewhere.
type ViolationRequest struct {
	ViolationType string `json:"violation_type" binding:"required,max=50"`
	Detail        string `json:"detail" binding:"omitempty,max=2000"`
}

// SavedAnswer echoes a stored answer back to the client on resume.
type SavedAnswer struct {
	QuestionID        uuid.UUID `json:"question_id"`
	SelectedAnswer    *string   `json:"selected_answer"`
	IsMarkedForReview bool      `json:"is_marked_for_review"`
}

// PaperView is the student-facing rendering of a paper.
type PaperView struct {
	PaperID              uuid.UUID       `json:"paper_id"`
	ExamID               uuid.UUID       `json:"exam_id"`
	ExamTitle            string          `json:"exam_title"`
	TotalQuestions       int             `json:"total_questions"`
	DurationMinutes      int             `json:"duration_minutes"`
	TotalMarks           float64         `json:"total_marks"`
	Status               PaperStatus     `json:"status"`
	AttemptNumber        int             `json:"attempt_number"`
	TimeRemainingSeconds int             `json:"time_remaining_seconds"`
	StartedAt            *time.Time      `json:"started_at,omitempty"`
	Questions            []PaperQuestion `json:"questions"`
	Answers              []SavedAnswer   `json:"answers,omitempty"`
}
