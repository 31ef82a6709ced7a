package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

// Question management errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidOptions   = errors.New("options do not match the question type")
)

// QuestionService handles question bank and question administration.
type QuestionService struct {
	bankRepo     *repository.QuestionBankRepository
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(bankRepo *repository.QuestionBankRepository, questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{bankRepo: bankRepo, questionRepo: questionRepo}
}

// CreateBank creates a question bank.
func (s *QuestionService) CreateBank(ctx context.Context, req *model.CreateQuestionBankRequest, createdBy int) (*model.QuestionBank, error) {
	bank, err := s.bankRepo.Create(ctx, req, createdBy)
	if err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}
	return bank, nil
}

// GetBank fetches a question bank.
func (s *QuestionService) GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	bank, err := s.bankRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	if bank == nil {
		return nil, ErrBankNotFound
	}
	return bank, nil
}

// ListBanks returns active banks with question counts.
func (s *QuestionService) ListBanks(ctx context.Context, limit, offset int) ([]model.QuestionBank, int, error) {
	return s.bankRepo.List(ctx, limit, offset)
}

// UpdateBank edits a question bank.
func (s *QuestionService) UpdateBank(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionBankRequest) (*model.QuestionBank, error) {
	bank, err := s.bankRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update bank: %w", err)
	}
	if bank == nil {
		return nil, ErrBankNotFound
	}
	return bank, nil
}

// DeleteBank soft-deletes a bank. Existing paper snapshots are unaffected.
func (s *QuestionService) DeleteBank(ctx context.Context, id uuid.UUID) error {
	ok, err := s.bankRepo.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivate bank: %w", err)
	}
	if !ok {
		return ErrBankNotFound
	}
	return nil
}

// AddQuestion adds a question to a bank.
func (s *QuestionService) AddQuestion(ctx context.Context, bankID uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	bank, err := s.bankRepo.GetByID(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	if bank == nil || !bank.IsActive {
		return nil, ErrBankNotFound
	}

	if err := validateOptions(model.QuestionType(req.QuestionType), req.Options, req.CorrectAnswer); err != nil {
		return nil, err
	}

	difficulty := model.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	marks := req.Marks
	if marks == 0 {
		marks = 1.0
	}

	question, err := s.questionRepo.Create(ctx, bankID, req, difficulty, marks)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

// GetQuestion fetches a question with its correct answer (admin view).
func (s *QuestionService) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// ListQuestions returns a bank's active questions.
func (s *QuestionService) ListQuestions(ctx context.Context, bankID uuid.UUID, limit, offset int) ([]model.Question, int, error) {
	return s.questionRepo.ListByBank(ctx, bankID, limit, offset)
}

// UpdateQuestion edits a question. Papers already generated keep their frozen
// snapshot; evaluation of those papers will use the updated correct answer.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.questionRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// DeleteQuestion soft-deletes a question, removing it from future draws.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	ok, err := s.questionRepo.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivate question: %w", err)
	}
	if !ok {
		return ErrQuestionNotFound
	}
	return nil
}

// validateOptions enforces per-type option shape.
func validateOptions(qt model.QuestionType, options map[string]string, correctAnswer string) error {
	switch qt {
	case model.QuestionTypeMCQ:
		if len(options) < 2 {
			return fmt.Errorf("%w: MCQ needs at least two options", ErrInvalidOptions)
		}
		if _, ok := options[correctAnswer]; !ok {
			return fmt.Errorf("%w: correct answer must be an option key", ErrInvalidOptions)
		}
	case model.QuestionTypeTrueFalse:
		if correctAnswer != "true" && correctAnswer != "false" {
			return fmt.Errorf("%w: TRUE_FALSE answer must be \"true\" or \"false\"", ErrInvalidOptions)
		}
	case model.QuestionTypeFillBlank:
		if len(options) != 0 {
			return fmt.Errorf("%w: FILL_BLANK takes no options", ErrInvalidOptions)
		}
	}
	return nil
}
