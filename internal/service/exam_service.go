package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

// Exam management errors.
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotEditable   = errors.New("exam can no longer be edited")
	ErrInvalidTransition = errors.New("invalid exam status transition")
	ErrBankNotFound      = errors.New("question bank not found")
	ErrStudentsNotFound  = errors.New("one or more students not found")
)

// ExamService handles exam administration: CRUD, scheduling, assignment and
// the monitoring session attached to an exam run.
type ExamService struct {
	examRepo     *repository.ExamRepository
	bankRepo     *repository.QuestionBankRepository
	questionRepo *repository.QuestionRepository
	userRepo     *repository.UserRepository
	sessionRepo  *repository.ExamSessionRepository
	logger       zerolog.Logger

	now func() time.Time
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	bankRepo *repository.QuestionBankRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	sessionRepo *repository.ExamSessionRepository,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		bankRepo:     bankRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		logger:       log.With().Str("component", "exam_service").Logger(),
		now:          time.Now,
	}
}

// Create creates a DRAFT exam after validating the bank and the difficulty
// distribution.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest, createdBy int) (*model.Exam, error) {
	bank, err := s.bankRepo.GetByID(ctx, req.QuestionBankID)
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	if bank == nil || !bank.IsActive {
		return nil, ErrBankNotFound
	}

	if req.DifficultyDistribution != nil {
		sum := 0
		for _, n := range req.DifficultyDistribution {
			sum += n
		}
		if sum != req.TotalQuestions {
			return nil, fmt.Errorf("%w: quotas sum to %d, exam wants %d", ErrQuotaMismatch, sum, req.TotalQuestions)
		}
	}

	exam := &model.Exam{
		Title:                  req.Title,
		Description:            req.Description,
		QuestionBankID:         req.QuestionBankID,
		TotalQuestions:         req.TotalQuestions,
		DurationMinutes:        req.DurationMinutes,
		TotalMarks:             req.TotalMarks,
		PassingMarks:           req.PassingMarks,
		StartTime:              req.StartTime,
		EndTime:                req.EndTime,
		Status:                 model.ExamStatusDraft,
		ShuffleQuestions:       boolOr(req.ShuffleQuestions, true),
		ShuffleOptions:         boolOr(req.ShuffleOptions, true),
		ShowResultImmediately:  req.ShowResultImmediately,
		AllowReview:            boolOr(req.AllowReview, true),
		MaxAttempts:            req.MaxAttempts,
		DifficultyDistribution: req.DifficultyDistribution,
		CreatedBy:              createdBy,
	}
	if exam.MaxAttempts < 1 {
		exam.MaxAttempts = 1
	}

	created, err := s.examRepo.Create(ctx, exam)
	if err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return created, nil
}

// Get loads an exam, lazily advancing its schedule-driven status first.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return s.advance(ctx, exam), nil
}

// List returns exams with optional status filter.
func (s *ExamService) List(ctx context.Context, status *model.ExamStatus, limit, offset int) ([]model.Exam, int, error) {
	return s.examRepo.List(ctx, status, limit, offset)
}

// ListForStudent returns a student's assigned exams with their current
// schedule-derived statuses.
func (s *ExamService) ListForStudent(ctx context.Context, studentID int) ([]model.StudentExamEntry, error) {
	entries, err := s.examRepo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	for i := range entries {
		entries[i].Exam = *s.advance(ctx, &entries[i].Exam)
	}
	return entries, nil
}

// Update edits a DRAFT or SCHEDULED exam.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft && exam.Status != model.ExamStatusScheduled {
		return nil, ErrExamNotEditable
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.TotalQuestions != nil {
		exam.TotalQuestions = *req.TotalQuestions
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.TotalMarks != nil {
		exam.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		exam.PassingMarks = *req.PassingMarks
	}
	if req.StartTime != nil {
		exam.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = *req.EndTime
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		exam.ShuffleOptions = *req.ShuffleOptions
	}
	if req.AllowReview != nil {
		exam.AllowReview = *req.AllowReview
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = *req.MaxAttempts
	}
	if req.DifficultyDistribution != nil {
		exam.DifficultyDistribution = req.DifficultyDistribution
	}

	if exam.DifficultyDistribution != nil {
		sum := 0
		for _, n := range exam.DifficultyDistribution {
			sum += n
		}
		if sum != exam.TotalQuestions {
			return nil, fmt.Errorf("%w: quotas sum to %d, exam wants %d", ErrQuotaMismatch, sum, exam.TotalQuestions)
		}
	}
	if !exam.EndTime.After(exam.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrExamNotEditable)
	}

	updated, err := s.examRepo.Update(ctx, exam)
	if err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	if updated == nil {
		return nil, ErrExamNotFound
	}
	return updated, nil
}

// Delete removes a DRAFT exam.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.examRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if !ok {
		return ErrExamNotEditable
	}
	return nil
}

// Schedule publishes a DRAFT exam. The bank must be able to satisfy the
// exam's draw at this point, so misconfigured exams fail loudly here rather
// than on a student's first start.
func (s *ExamService) Schedule(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrInvalidTransition
	}

	if err := s.checkBankCapacity(ctx, exam); err != nil {
		return nil, err
	}

	ok, err := s.examRepo.UpdateStatusIf(ctx, id, model.ExamStatusDraft, model.ExamStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("schedule exam: %w", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	exam.Status = model.ExamStatusScheduled
	return exam, nil
}

// Activate force-starts a SCHEDULED exam and opens its monitoring session.
func (s *ExamService) Activate(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam.Status == model.ExamStatusScheduled {
		ok, err := s.examRepo.UpdateStatusIf(ctx, id, model.ExamStatusScheduled, model.ExamStatusActive)
		if err != nil {
			return nil, fmt.Errorf("activate exam: %w", err)
		}
		if !ok {
			return nil, ErrInvalidTransition
		}
		exam.Status = model.ExamStatusActive
	} else if exam.Status != model.ExamStatusActive {
		return nil, ErrInvalidTransition
	}

	// Open a monitoring session unless one is already running.
	session, err := s.sessionRepo.GetActiveByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		total, err := s.examRepo.CountAssigned(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("count assigned: %w", err)
		}
		if _, err := s.sessionRepo.Create(ctx, id, total); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		s.logger.Info().Str("exam_id", id.String()).Int("students", total).Msg("Monitoring session opened")
	}

	return exam, nil
}

// Complete force-ends an ACTIVE exam and closes its monitoring session.
func (s *ExamService) Complete(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusActive {
		return nil, ErrInvalidTransition
	}

	ok, err := s.examRepo.UpdateStatusIf(ctx, id, model.ExamStatusActive, model.ExamStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("complete exam: %w", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	exam.Status = model.ExamStatusCompleted

	if session, err := s.sessionRepo.GetActiveByExam(ctx, id); err == nil && session != nil {
		_, _ = s.sessionRepo.End(ctx, session.ID, s.now())
	}

	return exam, nil
}

// Cancel withdraws an exam that has not completed.
func (s *ExamService) Cancel(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch exam.Status {
	case model.ExamStatusDraft, model.ExamStatusScheduled, model.ExamStatusActive:
	default:
		return nil, ErrInvalidTransition
	}

	ok, err := s.examRepo.UpdateStatusIf(ctx, id, exam.Status, model.ExamStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel exam: %w", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	exam.Status = model.ExamStatusCancelled

	if session, err := s.sessionRepo.GetActiveByExam(ctx, id); err == nil && session != nil {
		_, _ = s.sessionRepo.End(ctx, session.ID, s.now())
	}

	return exam, nil
}

// AssignStudents assigns students to an exam. Every id must be an active
// student; partial assignment is refused.
func (s *ExamService) AssignStudents(ctx context.Context, id uuid.UUID, req *model.AssignStudentsRequest) (int, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if exam.Status == model.ExamStatusCompleted || exam.Status == model.ExamStatusCancelled {
		return 0, ErrExamNotEditable
	}

	found, err := s.userRepo.FilterActiveStudents(ctx, req.StudentIDs)
	if err != nil {
		return 0, fmt.Errorf("verify students: %w", err)
	}
	if len(found) != len(uniqueInts(req.StudentIDs)) {
		return 0, ErrStudentsNotFound
	}

	added, err := s.examRepo.AssignStudents(ctx, id, req.StudentIDs)
	if err != nil {
		return 0, fmt.Errorf("assign students: %w", err)
	}
	return added, nil
}

// advance writes back a schedule-driven status transition, if any. A lost
// write race just means someone else advanced it to the same place.
func (s *ExamService) advance(ctx context.Context, exam *model.Exam) *model.Exam {
	next, changed := AdvanceExamStatus(exam.Status, exam.StartTime, exam.EndTime, s.now())
	if !changed {
		return exam
	}
	if _, err := s.examRepo.UpdateStatusIf(ctx, exam.ID, exam.Status, next); err != nil {
		s.logger.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to persist status advance")
		return exam
	}
	exam.Status = next
	return exam
}

// checkBankCapacity verifies the bank can satisfy the exam's draw.
func (s *ExamService) checkBankCapacity(ctx context.Context, exam *model.Exam) error {
	if exam.DifficultyDistribution == nil {
		count, err := s.questionRepo.CountActiveByBank(ctx, exam.QuestionBankID)
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}
		if count < exam.TotalQuestions {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientQuestions, exam.TotalQuestions, count)
		}
		return nil
	}

	for tier, want := range exam.DifficultyDistribution {
		if want == 0 {
			continue
		}
		t := tier
		questions, err := s.questionRepo.ListActiveByBank(ctx, exam.QuestionBankID, &t)
		if err != nil {
			return fmt.Errorf("count tier %s: %w", tier, err)
		}
		if len(questions) < want {
			return fmt.Errorf("%w: tier %s needs %d, have %d", ErrInsufficientQuestions, tier, want, len(questions))
		}
	}
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func uniqueInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
