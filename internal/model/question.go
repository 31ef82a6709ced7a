package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates supported question formats.
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "MCQ"
	QuestionTypeTrueFalse QuestionType = "TRUE_FALSE"
	QuestionTypeFillBlank QuestionType = "FILL_BLANK"
)

// Difficulty enumerates question difficulty tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists all tiers in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Question is an item-bank entry. CorrectAnswer never leaves the server:
// student-facing views are built from paper snapshots, and grading resolves
// correctness from this live record at evaluation time.
type Question struct {
	ID             uuid.UUID         `json:"id"`
	QuestionBankID uuid.UUID         `json:"question_bank_id"`
	QuestionText   string            `json:"question_text"`
	QuestionType   QuestionType      `json:"question_type"`
	Difficulty     Difficulty        `json:"difficulty"`
	Options        map[string]string `json:"options,omitempty"`
	// OptionOrder is the bank's natural option-key order, kept separately
	// because JSON object keys carry no ordering.
	OptionOrder   []string `json:"option_order,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Marks         float64  `json:"marks"`
	NegativeMarks float64  `json:"negative_marks"`
	Explanation   *string  `json:"explanation,omitempty"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AddQuestionRequest is the payload for adding a question to a bank.
type AddQuestionRequest struct {
	QuestionText  string            `json:"question_text" binding:"required,min=1,max=5000"`
	QuestionType  string            `json:"question_type" binding:"required,oneof=MCQ TRUE_FALSE FILL_BLANK"`
	Difficulty    string            `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	Options       map[string]string `json:"options" binding:"omitempty"`
	OptionOrder   []string          `json:"option_order" binding:"omitempty"`
	CorrectAnswer string            `json:"correct_answer" binding:"required,max=500"`
	Marks         float64           `json:"marks" binding:"omitempty,min=0"`
	NegativeMarks float64           `json:"negative_marks" binding:"omitempty,min=0"`
	Explanation   *string           `json:"explanation" binding:"omitempty,max=5000"`
}

// UpdateQuestionRequest is the payload for updating an existing question.
type UpdateQuestionRequest struct {
	QuestionText  string            `json:"question_text" binding:"omitempty,min=1,max=5000"`
	Difficulty    string            `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	Options       map[string]string `json:"options" binding:"omitempty"`
	OptionOrder   []string          `json:"option_order" binding:"omitempty"`
	CorrectAnswer string            `json:"correct_answer" binding:"omitempty,max=500"`
	Marks         *float64          `json:"marks" binding:"omitempty,min=0"`
	NegativeMarks *float64          `json:"negative_marks" binding:"omitempty,min=0"`
	Explanation   *string           `json:"explanation" binding:"omitempty,max=5000"`
	IsActive      *bool             `json:"is_active" binding:"omitempty"`
}
