package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/response"
	"github.com/examforge/examforge-backend/internal/service"
	"github.com/examforge/examforge-backend/internal/validator"
)

// StudentExamHandler handles the exam-taking flow for students.
type StudentExamHandler struct {
	engine *service.ExamEngineService
	log    zerolog.Logger
}

// NewStudentExamHandler creates a new StudentExamHandler.
func NewStudentExamHandler(engine *service.ExamEngineService) *StudentExamHandler {
	return &StudentExamHandler{
		engine: engine,
		log:    log.With().Str("component", "student_exam_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/student/exams/:exam_id/start
// Generates the paper on first call, resumes the open attempt otherwise.
func (h *StudentExamHandler) Start(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	view, result, err := h.engine.StartExam(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		h.failEngine(c, err, "Start exam failed")
		return
	}
	if result != nil {
		// Time ran out before the resume; the attempt was auto-submitted.
		response.Success(c, http.StatusOK, result)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Paper godoc
// GET /api/v1/student/exams/:exam_id/paper
func (h *StudentExamHandler) Paper(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	view, result, err := h.engine.GetPaper(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		h.failEngine(c, err, "Get paper failed")
		return
	}
	if result != nil {
		response.Success(c, http.StatusOK, result)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SaveAnswer godoc
// POST /api/v1/student/exams/:exam_id/answer
func (h *StudentExamHandler) SaveAnswer(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.engine.SaveAnswer(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		h.failEngine(c, err, "Save answer failed")
		return
	}

	response.Success(c, http.StatusOK, saveResponse(out, false))
}

// SaveAnswers godoc
// POST /api/v1/student/exams/:exam_id/answers
func (h *StudentExamHandler) SaveAnswers(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	var req model.SaveAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.engine.SaveAnswers(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		h.failEngine(c, err, "Save answers failed")
		return
	}

	response.Success(c, http.StatusOK, saveResponse(out, true))
}

// saveResponse renders a save outcome. An expired paper reports
// auto_submitted with the timer pinned at zero.
func saveResponse(out *service.SaveOutcome, withCount bool) gin.H {
	body := gin.H{
		"status":                 "saved",
		"time_remaining_seconds": out.RemainingSeconds,
	}
	if out.AutoSubmitted {
		body["status"] = "auto_submitted"
	}
	if withCount {
		body["saved_count"] = out.SavedCount
	}
	return body
}

// Submit godoc
// POST /api/v1/student/exams/:exam_id/submit
func (h *StudentExamHandler) Submit(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	result, err := h.engine.SubmitExam(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		h.failEngine(c, err, "Submit failed")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Time godoc
// GET /api/v1/student/exams/:exam_id/time
func (h *StudentExamHandler) Time(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	ts, err := h.engine.RemainingTime(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		h.failEngine(c, err, "Timer read failed")
		return
	}

	response.Success(c, http.StatusOK, ts)
}

// Violation godoc
// POST /api/v1/student/exams/:exam_id/violation
func (h *StudentExamHandler) Violation(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	var req model.ViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.engine.RecordViolation(c.Request.Context(), examID, claims.UserID, &req); err != nil {
		h.failEngine(c, err, "Record violation failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "logged"})
}

func examIDParam(c *gin.Context) (uuid.UUID, bool) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return examID, true
}

// failEngine maps engine errors onto the response envelope.
func (h *StudentExamHandler) failEngine(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrExamNotAvailable):
		response.Fail(c, http.StatusConflict, response.ErrExamNotAvailable)
	case errors.Is(err, service.ErrExamNotAssigned):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotAssigned)
	case errors.Is(err, service.ErrAttemptsExhausted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptsExhausted)
	case errors.Is(err, service.ErrInsufficientQuestions):
		response.Fail(c, http.StatusConflict, response.ErrInsufficientQuestions)
	case errors.Is(err, service.ErrQuotaMismatch):
		response.Fail(c, http.StatusConflict, response.ErrQuotaMismatch)
	case errors.Is(err, service.ErrPaperNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
	case errors.Is(err, service.ErrPaperNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrPaperNotStarted)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrQuestionNotInPaper):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionNotInPaper)
	default:
		h.log.Error().Err(err).Msg(msg)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
