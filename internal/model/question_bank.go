package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank groups questions under a subject.
type QuestionBank struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Subject       string    `json:"subject"`
	CreatedBy     int       `json:"created_by"`
	IsActive      bool      `json:"is_active"`
	QuestionCount int       `json:"question_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateQuestionBankRequest is the payload for creating a question bank.
type CreateQuestionBankRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Subject     string  `json:"subject" binding:"required,min=2,max=100"`
}

// UpdateQuestionBankRequest is the payload for updating a question bank.
type UpdateQuestionBankRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Subject     string  `json:"subject" binding:"omitempty,min=2,max=100"`
	IsActive    *bool   `json:"is_active" binding:"omitempty"`
}
