package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

// Result errors.
var ErrResultNotReady = errors.New("result not available yet")

// ResultService exposes evaluated results to students and staff.
type ResultService struct {
	resultRepo *repository.ResultRepository
	paperRepo  *repository.PaperRepository
	examRepo   *repository.ExamRepository

	now func() time.Time
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository, paperRepo *repository.PaperRepository, examRepo *repository.ExamRepository) *ResultService {
	return &ResultService{
		resultRepo: resultRepo,
		paperRepo:  paperRepo,
		examRepo:   examRepo,
		now:        time.Now,
	}
}

// GetForStudent returns a student's result for their latest attempt at an
// exam. Unless the exam publishes results immediately, the result stays
// hidden until the exam window closes.
func (s *ResultService) GetForStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Result, error) {
	paper, err := s.paperRepo.GetLatest(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}

	result, err := s.resultRepo.GetByPaper(ctx, paper.ID)
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	if result == nil {
		return nil, ErrResultNotReady
	}

	exam, err := s.examRepo.GetByID(ctx, paper.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if !exam.ShowResultImmediately {
		status, _ := AdvanceExamStatus(exam.Status, exam.StartTime, exam.EndTime, s.now())
		if status != model.ExamStatusCompleted {
			return nil, ErrResultNotReady
		}
	}

	return result, nil
}

// ListForStudent returns a student's result history.
func (s *ResultService) ListForStudent(ctx context.Context, studentID int) ([]model.ResultView, error) {
	return s.resultRepo.ListByStudent(ctx, studentID)
}

// Leaderboard returns ranked results for an exam (staff view).
func (s *ResultService) Leaderboard(ctx context.Context, examID uuid.UUID, limit, offset int) ([]model.ResultView, int, error) {
	return s.resultRepo.ListByExam(ctx, examID, limit, offset)
}

// Summary aggregates an exam's outcomes (staff view).
func (s *ResultService) Summary(ctx context.Context, examID uuid.UUID) (*model.ResultSummary, error) {
	summary, err := s.resultRepo.Summary(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	if summary == nil {
		return nil, ErrExamNotFound
	}
	return summary, nil
}
