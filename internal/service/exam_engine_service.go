package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examforge/examforge-backend/internal/config"
	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

// Engine errors.
var (
	ErrExamNotAvailable   = errors.New("exam is not available")
	ErrExamNotAssigned    = errors.New("student is not assigned to this exam")
	ErrAttemptsExhausted  = errors.New("maximum attempts reached")
	ErrPaperNotFound      = errors.New("paper not found")
	ErrPaperNotStarted    = errors.New("paper has not been started")
	ErrAlreadySubmitted   = errors.New("paper already submitted")
	ErrQuestionNotInPaper = errors.New("question is not part of this paper")
)

// SessionStatsTask is one queued counter increment for the stats worker.
type SessionStatsTask struct {
	SessionID uuid.UUID `json:"session_id"`
	Started   int       `json:"started"`
	Submitted int       `json:"submitted"`
}

// TimeStatus is the authoritative timer reading for a paper.
type TimeStatus struct {
	PaperID          uuid.UUID         `json:"paper_id"`
	Status           model.PaperStatus `json:"status"`
	RemainingSeconds int               `json:"remaining_seconds"`
}

// SaveOutcome reports what an answer save actually did. When the paper's time
// ran out before the write, nothing is stored: the paper auto-submits and
// Result carries the evaluation.
type SaveOutcome struct {
	AutoSubmitted    bool
	SavedCount       int
	RemainingSeconds int
	Result           *model.Result
}

// ExamEngineService drives the exam-taking flow: paper generation, the
// server-side timer, answer collection, submission and evaluation.
type ExamEngineService struct {
	db           *pgxpool.Pool
	rdb          *redis.Client
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	paperRepo    *repository.PaperRepository
	responseRepo *repository.ResponseRepository
	resultRepo   *repository.ResultRepository
	sessionRepo  *repository.ExamSessionRepository
	logger       zerolog.Logger

	// Injectable for deterministic tests.
	now    func() time.Time
	newRng func() *rand.Rand
}

// NewExamEngineService creates a new ExamEngineService.
func NewExamEngineService(
	db *pgxpool.Pool,
	rdb *redis.Client,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	paperRepo *repository.PaperRepository,
	responseRepo *repository.ResponseRepository,
	resultRepo *repository.ResultRepository,
	sessionRepo *repository.ExamSessionRepository,
) *ExamEngineService {
	return &ExamEngineService{
		db:           db,
		rdb:          rdb,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		paperRepo:    paperRepo,
		responseRepo: responseRepo,
		resultRepo:   resultRepo,
		sessionRepo:  sessionRepo,
		logger:       log.With().Str("component", "exam_engine").Logger(),
		now:          time.Now,
		newRng: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Paper generation
// ────────────────────────────────────────────────────────────────────────────

// StartExam returns the student's paper for an exam, generating one on first
// call, and moves it into IN_PROGRESS. Calling it again while the attempt is
// open is a no-op resume: the same paper comes back with the timer still
// counting from the original start. Resuming an attempt whose time already
// ran out auto-submits it; the scored result comes back instead of a view.
func (s *ExamEngineService) StartExam(ctx context.Context, examID uuid.UUID, studentID int) (*model.PaperView, *model.Result, error) {
	exam, err := s.loadAvailableExam(ctx, examID, studentID)
	if err != nil {
		return nil, nil, err
	}

	paper, err := s.generateOrFetch(ctx, exam, studentID)
	if err != nil {
		return nil, nil, err
	}

	if paper.Status == model.PaperStatusNotStarted {
		startedAt := s.now()
		started, err := s.paperRepo.Start(ctx, paper.ID, startedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("start paper: %w", err)
		}
		if started {
			paper.Status = model.PaperStatusInProgress
			paper.StartedAt = &startedAt
			s.cachePaperStart(ctx, paper.ID, startedAt, exam.DurationSeconds())
			s.enqueueSessionDelta(ctx, exam.ID, 1, 0)
		} else {
			// Lost a concurrent start; reload the winner's state.
			paper, err = s.paperRepo.GetOwned(ctx, paper.ID, studentID)
			if err != nil {
				return nil, nil, fmt.Errorf("reload paper: %w", err)
			}
		}
	}

	if paper.Status == model.PaperStatusInProgress {
		result, err := s.expireIfNeeded(ctx, exam, paper)
		if err != nil {
			return nil, nil, err
		}
		if result != nil {
			return nil, result, nil
		}
	}

	if paper.Status.IsTerminal() {
		return nil, nil, ErrAlreadySubmitted
	}

	view, err := s.buildPaperView(ctx, exam, paper)
	if err != nil {
		return nil, nil, err
	}
	return view, nil, nil
}

// GetPaper returns the student's current paper for an exam without changing
// its state, except that an expired in-progress paper is auto-submitted
// first; the scored result then comes back instead of a view.
func (s *ExamEngineService) GetPaper(ctx context.Context, examID uuid.UUID, studentID int) (*model.PaperView, *model.Result, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("load exam: %w", err)
	}
	if exam == nil {
		return nil, nil, ErrExamNotAvailable
	}

	paper, err := s.paperRepo.GetLatest(ctx, examID, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		return nil, nil, ErrPaperNotFound
	}

	if paper.Status == model.PaperStatusInProgress {
		result, err := s.expireIfNeeded(ctx, exam, paper)
		if err != nil {
			return nil, nil, err
		}
		if result != nil {
			return nil, result, nil
		}
	}

	view, err := s.buildPaperView(ctx, exam, paper)
	if err != nil {
		return nil, nil, err
	}
	return view, nil, nil
}

// generateOrFetch returns the open paper for (exam, student), creating a new
// attempt when allowed. Concurrent calls converge on a single row thanks to
// the conditional insert keyed on attempt number.
func (s *ExamEngineService) generateOrFetch(ctx context.Context, exam *model.Exam, studentID int) (*model.StudentExamPaper, error) {
	latest, err := s.paperRepo.GetLatest(ctx, exam.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load latest paper: %w", err)
	}
	if latest != nil && !latest.Status.IsTerminal() {
		return latest, nil
	}

	attempt := 1
	if latest != nil {
		if latest.AttemptNumber >= exam.MaxAttempts {
			return nil, ErrAttemptsExhausted
		}
		attempt = latest.AttemptNumber + 1
	}

	pool, err := s.questionRepo.ListActiveByBank(ctx, exam.QuestionBankID, nil)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	rng := s.newRng()
	selected, err := SelectQuestions(pool, exam.TotalQuestions, exam.DifficultyDistribution, rng)
	if err != nil {
		return nil, err
	}
	data := ComposePaper(selected, exam.ShuffleQuestions, exam.ShuffleOptions, rng)

	paper, err := s.paperRepo.CreateWithResponses(ctx, exam.ID, studentID, attempt, data, exam.DurationSeconds())
	if err != nil {
		return nil, fmt.Errorf("create paper: %w", err)
	}
	if paper == nil {
		// A concurrent call inserted this attempt first; its snapshot wins.
		paper, err = s.paperRepo.GetLatest(ctx, exam.ID, studentID)
		if err != nil {
			return nil, fmt.Errorf("refetch paper: %w", err)
		}
		if paper == nil {
			return nil, ErrPaperNotFound
		}
		return paper, nil
	}

	s.logger.Info().
		Str("exam_id", exam.ID.String()).
		Int("student_id", studentID).
		Int("attempt", attempt).
		Int("questions", len(data.Questions)).
		Msg("Paper generated")

	return paper, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Timer authority
// ────────────────────────────────────────────────────────────────────────────

// RemainingTime reports the authoritative time left on the student's current
// paper for an exam. Hitting zero auto-submits the paper as a side effect.
func (s *ExamEngineService) RemainingTime(ctx context.Context, examID uuid.UUID, studentID int) (*TimeStatus, error) {
	paper, err := s.paperRepo.GetLatest(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotAvailable
	}

	status := &TimeStatus{PaperID: paper.ID, Status: paper.Status}
	switch paper.Status {
	case model.PaperStatusNotStarted:
		status.RemainingSeconds = exam.DurationSeconds()
	case model.PaperStatusInProgress:
		startedAt, err := s.paperStartedAt(ctx, paper)
		if err != nil {
			return nil, err
		}
		remaining := RemainingSeconds(startedAt, exam.DurationSeconds(), s.now())
		status.RemainingSeconds = remaining
		if remaining == 0 {
			if _, err := s.finalize(ctx, paper.ID, studentID, model.PaperStatusAutoSubmitted); err != nil && !errors.Is(err, ErrAlreadySubmitted) {
				return nil, err
			}
			status.Status = model.PaperStatusAutoSubmitted
		} else {
			_ = s.paperRepo.TouchActivity(ctx, paper.ID, remaining, s.now())
		}
	default:
		status.RemainingSeconds = 0
	}

	return status, nil
}

// paperStartedAt resolves the paper's start instant, preferring the Redis
// cache and self-healing it from the DB row on a miss.
func (s *ExamEngineService) paperStartedAt(ctx context.Context, paper *model.StudentExamPaper) (time.Time, error) {
	key := config.CacheKey.PaperStartKey(paper.ID.String())
	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, cached); perr == nil {
			return t, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("Redis start-time lookup failed, falling back to DB")
	}

	if paper.StartedAt == nil {
		return time.Time{}, ErrPaperNotStarted
	}
	s.rdb.Set(ctx, key, paper.StartedAt.Format(time.RFC3339Nano), 24*time.Hour)
	return *paper.StartedAt, nil
}

func (s *ExamEngineService) cachePaperStart(ctx context.Context, paperID uuid.UUID, startedAt time.Time, durationSeconds int) {
	key := config.CacheKey.PaperStartKey(paperID.String())
	ttl := time.Duration(durationSeconds)*time.Second + time.Hour
	if err := s.rdb.Set(ctx, key, startedAt.Format(time.RFC3339Nano), ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache paper start time")
	}
}

// expireIfNeeded auto-submits an in-progress paper whose time ran out and
// returns its evaluation. A nil result means time is still left.
func (s *ExamEngineService) expireIfNeeded(ctx context.Context, exam *model.Exam, paper *model.StudentExamPaper) (*model.Result, error) {
	startedAt, err := s.paperStartedAt(ctx, paper)
	if err != nil {
		return nil, err
	}
	if RemainingSeconds(startedAt, exam.DurationSeconds(), s.now()) > 0 {
		return nil, nil
	}
	return s.finalize(ctx, paper.ID, paper.StudentID, model.PaperStatusAutoSubmitted)
}

// ────────────────────────────────────────────────────────────────────────────
// Answer ledger
// ────────────────────────────────────────────────────────────────────────────

// SaveAnswer stores one answer. Last write wins; an answer against an expired
// paper is dropped and the paper auto-submits instead.
func (s *ExamEngineService) SaveAnswer(ctx context.Context, examID uuid.UUID, studentID int, req *model.SaveAnswerRequest) (*SaveOutcome, error) {
	paper, exam, err := s.loadOpenPaper(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	result, err := s.expireIfNeeded(ctx, exam, paper)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return &SaveOutcome{AutoSubmitted: true, Result: result}, nil
	}

	ok, err := s.responseRepo.SaveAnswer(ctx, paper.ID, req.QuestionID, req.SelectedAnswer, req.IsMarkedForReview, s.now())
	if err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	if !ok {
		return nil, ErrQuestionNotInPaper
	}

	startedAt, _ := s.paperStartedAt(ctx, paper)
	remaining := RemainingSeconds(startedAt, exam.DurationSeconds(), s.now())
	if err := s.paperRepo.TouchActivity(ctx, paper.ID, remaining, s.now()); err != nil {
		return nil, fmt.Errorf("touch activity: %w", err)
	}
	return &SaveOutcome{SavedCount: 1, RemainingSeconds: remaining}, nil
}

// SaveAnswers stores a batch of answers in one round-trip. Entries naming
// questions outside the paper are skipped, never an error; the outcome
// counts the writes that actually landed.
func (s *ExamEngineService) SaveAnswers(ctx context.Context, examID uuid.UUID, studentID int, req *model.SaveAnswersRequest) (*SaveOutcome, error) {
	paper, exam, err := s.loadOpenPaper(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	result, err := s.expireIfNeeded(ctx, exam, paper)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return &SaveOutcome{AutoSubmitted: true, Result: result}, nil
	}

	applied, err := s.responseRepo.SaveAnswers(ctx, paper.ID, dedupeAnswers(req.Answers), s.now())
	if err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}

	startedAt, _ := s.paperStartedAt(ctx, paper)
	remaining := RemainingSeconds(startedAt, exam.DurationSeconds(), s.now())
	if err := s.paperRepo.TouchActivity(ctx, paper.ID, remaining, s.now()); err != nil {
		return nil, fmt.Errorf("touch activity: %w", err)
	}
	return &SaveOutcome{SavedCount: applied, RemainingSeconds: remaining}, nil
}

// dedupeAnswers collapses repeated question ids to their last occurrence, so
// last-write-wins holds inside a single batch too.
func dedupeAnswers(answers []model.SaveAnswerRequest) []model.SaveAnswerRequest {
	seen := make(map[uuid.UUID]int, len(answers))
	out := make([]model.SaveAnswerRequest, 0, len(answers))
	for _, a := range answers {
		if i, dup := seen[a.QuestionID]; dup {
			out[i] = a
			continue
		}
		seen[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out
}

func (s *ExamEngineService) loadOpenPaper(ctx context.Context, examID uuid.UUID, studentID int) (*model.StudentExamPaper, *model.Exam, error) {
	paper, err := s.paperRepo.GetLatest(ctx, examID, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		return nil, nil, ErrPaperNotFound
	}
	if paper.Status == model.PaperStatusNotStarted {
		return nil, nil, ErrPaperNotStarted
	}
	if paper.Status.IsTerminal() {
		return nil, nil, ErrAlreadySubmitted
	}

	exam, err := s.examRepo.GetByID(ctx, paper.ExamID)
	if err != nil {
		return nil, nil, fmt.Errorf("load exam: %w", err)
	}
	return paper, exam, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Submission and evaluation
// ────────────────────────────────────────────────────────────────────────────

// SubmitExam finalizes the student's current paper for an exam on their own
// request and returns the evaluated result. Submitting again after the paper
// went terminal returns the same result, never a duplicate.
func (s *ExamEngineService) SubmitExam(ctx context.Context, examID uuid.UUID, studentID int) (*model.Result, error) {
	paper, err := s.paperRepo.GetLatest(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}
	return s.finalize(ctx, paper.ID, studentID, model.PaperStatusSubmitted)
}

// finalize moves a paper to its terminal status and evaluates it, all inside
// one transaction. The row lock plus the status guard make the whole thing
// exactly-once: a concurrent submit (or timer-driven auto-submit) either
// wins the guard or observes a terminal status and backs off.
func (s *ExamEngineService) finalize(ctx context.Context, paperID uuid.UUID, studentID int, terminal model.PaperStatus) (*model.Result, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	paper, err := s.paperRepo.GetByIDForUpdate(ctx, tx, paperID)
	if err != nil {
		return nil, fmt.Errorf("lock paper: %w", err)
	}
	if paper == nil || paper.StudentID != studentID {
		return nil, ErrPaperNotFound
	}
	if paper.Status == model.PaperStatusNotStarted {
		return nil, ErrPaperNotStarted
	}
	if paper.Status.IsTerminal() {
		// Already handed in: echo the stored result so repeated submits are
		// idempotent instead of failing.
		result, err := s.resultRepo.GetByPaper(ctx, paper.ID)
		if err != nil {
			return nil, fmt.Errorf("load result: %w", err)
		}
		if result == nil {
			return nil, ErrAlreadySubmitted
		}
		return result, nil
	}

	exam, err := s.examRepo.GetByID(ctx, paper.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}

	now := s.now()
	var remaining int
	if paper.StartedAt != nil {
		remaining = RemainingSeconds(*paper.StartedAt, exam.DurationSeconds(), now)
	}
	ok, err := s.paperRepo.MarkSubmitted(ctx, tx, paper.ID, terminal, now, remaining)
	if err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	if !ok {
		return nil, ErrAlreadySubmitted
	}

	responses, err := s.responseRepo.ListByPaper(ctx, tx, paper.ID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	ids := make([]uuid.UUID, len(paper.PaperData.Questions))
	for i, pq := range paper.PaperData.Questions {
		ids[i] = pq.QuestionID
	}
	bankQuestions, err := s.questionRepo.ListByIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uuid.UUID]model.Question, len(bankQuestions))
	for _, q := range bankQuestions {
		byID[q.ID] = q
	}

	ev := EvaluatePaper(paper.PaperData, responses, byID, exam.TotalMarks, exam.PassingMarks)

	if err := s.responseRepo.ApplyGrades(ctx, tx, paper.ID, ev.Grades); err != nil {
		return nil, fmt.Errorf("apply grades: %w", err)
	}

	result, err := s.resultRepo.Create(ctx, tx, &model.Result{
		ExamID:              exam.ID,
		StudentID:           studentID,
		PaperID:             paper.ID,
		TotalQuestions:      ev.TotalQuestions,
		Attempted:           ev.Attempted,
		Correct:             ev.Correct,
		Wrong:               ev.Wrong,
		TotalMarks:          exam.TotalMarks,
		MarksObtained:       ev.MarksObtained,
		Percentage:          ev.Percentage,
		IsPassed:            ev.IsPassed,
		DifficultyWiseScore: ev.DifficultyWiseScore,
		EvaluatedAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("create result: %w", err)
	}

	if err := s.paperRepo.MarkEvaluated(ctx, tx, paper.ID); err != nil {
		return nil, fmt.Errorf("mark evaluated: %w", err)
	}

	// Recompute the exam's ranks while still holding the transaction, so two
	// finishing students serialize on the locked result rows.
	rows, err := s.resultRepo.ListForRanking(ctx, tx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("rank query: %w", err)
	}
	ranks := AssignRanks(rows)
	rankIDs := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		rankIDs[i] = row.ID
		if row.ID == result.ID {
			r := ranks[i]
			result.Rank = &r
		}
	}
	if err := s.resultRepo.UpdateRanks(ctx, tx, rankIDs, ranks); err != nil {
		return nil, fmt.Errorf("update ranks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.rdb.Del(ctx, config.CacheKey.PaperStartKey(paper.ID.String()))
	s.enqueueSessionDelta(ctx, exam.ID, 0, 1)

	s.logger.Info().
		Str("paper_id", paper.ID.String()).
		Str("status", string(terminal)).
		Float64("marks", result.MarksObtained).
		Bool("passed", result.IsPassed).
		Msg("Paper evaluated")

	return result, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Violations and session stats
// ────────────────────────────────────────────────────────────────────────────

// RecordViolation stores a client-reported anti-cheat event as a session
// flag. Detection happens on the client; the engine only keeps the trail.
func (s *ExamEngineService) RecordViolation(ctx context.Context, examID uuid.UUID, studentID int, req *model.ViolationRequest) error {
	paper, err := s.paperRepo.GetLatest(ctx, examID, studentID)
	if err != nil {
		return fmt.Errorf("load paper: %w", err)
	}
	if paper == nil {
		return ErrPaperNotFound
	}

	session, err := s.sessionRepo.GetActiveByExam(ctx, examID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		// No monitoring session: log and drop rather than fail the client.
		s.logger.Warn().
			Str("paper_id", paper.ID.String()).
			Str("violation", req.ViolationType).
			Msg("Violation reported with no active session")
		return nil
	}

	var desc *string
	if req.Detail != "" {
		desc = &req.Detail
	}
	_, err = s.sessionRepo.CreateFlag(ctx, session.ID, studentID, studentID, req.ViolationType, desc)
	if err != nil {
		return fmt.Errorf("create flag: %w", err)
	}
	return nil
}

// enqueueSessionDelta queues a counter increment for the stats worker. Stats
// are best-effort: failures are logged, never surfaced to the student.
func (s *ExamEngineService) enqueueSessionDelta(ctx context.Context, examID uuid.UUID, started, submitted int) {
	session, err := s.sessionRepo.GetActiveByExam(ctx, examID)
	if err != nil || session == nil {
		if err != nil {
			s.logger.Warn().Err(err).Msg("Session lookup for stats failed")
		}
		return
	}

	payload, err := json.Marshal(SessionStatsTask{
		SessionID: session.ID,
		Started:   started,
		Submitted: submitted,
	})
	if err != nil {
		return
	}
	if err := s.rdb.LPush(ctx, config.WorkerKey.SessionStatsQueue, payload).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to enqueue session stats task")
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────────────

// loadAvailableExam loads an exam, lazily advances its schedule-driven
// status, and verifies the student may sit it right now.
func (s *ExamEngineService) loadAvailableExam(ctx context.Context, examID uuid.UUID, studentID int) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotAvailable
	}

	now := s.now()
	if next, changed := AdvanceExamStatus(exam.Status, exam.StartTime, exam.EndTime, now); changed {
		if _, err := s.examRepo.UpdateStatusIf(ctx, exam.ID, exam.Status, next); err != nil {
			return nil, fmt.Errorf("advance exam status: %w", err)
		}
		exam.Status = next
	}

	if exam.Status != model.ExamStatusActive {
		return nil, ErrExamNotAvailable
	}

	assigned, err := s.examRepo.IsAssigned(ctx, exam.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrExamNotAssigned
	}

	return exam, nil
}

func (s *ExamEngineService) buildPaperView(ctx context.Context, exam *model.Exam, paper *model.StudentExamPaper) (*model.PaperView, error) {
	view := &model.PaperView{
		PaperID:         paper.ID,
		ExamID:          exam.ID,
		ExamTitle:       exam.Title,
		TotalQuestions:  exam.TotalQuestions,
		DurationMinutes: exam.DurationMinutes,
		TotalMarks:      exam.TotalMarks,
		Status:          paper.Status,
		AttemptNumber:   paper.AttemptNumber,
		StartedAt:       paper.StartedAt,
		Questions:       paper.PaperData.Questions,
	}

	switch paper.Status {
	case model.PaperStatusNotStarted:
		view.TimeRemainingSeconds = exam.DurationSeconds()
	case model.PaperStatusInProgress:
		startedAt, err := s.paperStartedAt(ctx, paper)
		if err != nil {
			return nil, err
		}
		view.TimeRemainingSeconds = RemainingSeconds(startedAt, exam.DurationSeconds(), s.now())
	}

	responses, err := s.responseRepo.ListByPaper(ctx, s.db, paper.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	for _, resp := range responses {
		if resp.SelectedAnswer == nil && !resp.IsMarkedForReview {
			continue
		}
		view.Answers = append(view.Answers, model.SavedAnswer{
			QuestionID:        resp.QuestionID,
			SelectedAnswer:    resp.SelectedAnswer,
			IsMarkedForReview: resp.IsMarkedForReview,
		})
	}

	return view, nil
}
