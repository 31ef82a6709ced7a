package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamSession is the live monitoring aggregate for one exam run. Its counters
// are maintained by the session-stats worker, so they are eventually
// consistent with paper state.
type ExamSession struct {
	ID                uuid.UUID  `json:"id"`
	ExamID            uuid.UUID  `json:"exam_id"`
	ExamTitle         string     `json:"exam_title,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	TotalStudents     int        `json:"total_students"`
	StudentsStarted   int        `json:"students_started"`
	StudentsSubmitted int        `json:"students_submitted"`
	IsActive          bool       `json:"is_active"`
}

// StudentProgress is one student's live progress inside a session.
type StudentProgress struct {
	StudentID            int         `json:"student_id"`
	StudentName          string      `json:"student_name"`
	Status               PaperStatus `json:"status"`
	QuestionsAttempted   int         `json:"questions_attempted"`
	TimeRemainingSeconds int         `json:"time_remaining_seconds"`
	LastActivityAt       *time.Time  `json:"last_activity_at,omitempty"`
}

// SessionFlag records suspicious activity raised by an invigilator or a
// client violation report.
type SessionFlag struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	StudentID   int       `json:"student_id"`
	FlaggedBy   int       `json:"flagged_by"`
	FlagType    string    `json:"flag_type"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FlagStudentRequest is the payload for flagging a student in a session.
type FlagStudentRequest struct {
	StudentID   int     `json:"student_id" binding:"required,min=1"`
	FlagType    string  `json:"flag_type" binding:"required,max=50"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}
