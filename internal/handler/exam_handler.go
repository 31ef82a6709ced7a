package handler

import (
	"context"
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

// ExamHandler handles exam administration endpoints.
type ExamHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// Create godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) Create(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := mustClaims(c)
	exam, err := h.examService.Create(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBankNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuotaMismatch):
			response.Fail(c, http.StatusBadRequest, response.ErrQuotaMismatch)
		default:
			h.log.Error().Err(err).Msg("Create exam failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, exam)
}

// List godoc
// GET /api/v1/admin/exams
func (h *ExamHandler) List(c *gin.Context) {
	page, perPage, offset := parsePagination(c)

	var status *model.ExamStatus
	if raw := c.Query("status"); raw != "" {
		st := model.ExamStatus(raw)
		status = &st
	}

	exams, total, err := h.examService.List(c.Request.Context(), status, perPage, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("List exams failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, exams, buildPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Get(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		h.failExam(c, err, "Get exam failed")
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// Update godoc
// PUT /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Update(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), examID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamNotEditable):
			response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
		case errors.Is(err, service.ErrQuotaMismatch):
			response.Fail(c, http.StatusBadRequest, response.ErrQuotaMismatch)
		default:
			h.log.Error().Err(err).Msg("Update exam failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// Delete godoc
// DELETE /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Delete(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID); err != nil {
		if errors.Is(err, service.ErrExamNotEditable) {
			response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
			return
		}
		h.log.Error().Err(err).Msg("Delete exam failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Schedule godoc
// POST /api/v1/admin/exams/:exam_id/schedule
func (h *ExamHandler) Schedule(c *gin.Context) {
	h.transition(c, h.examService.Schedule, "Schedule exam failed")
}

// Activate godoc
// POST /api/v1/admin/exams/:exam_id/activate
func (h *ExamHandler) Activate(c *gin.Context) {
	h.transition(c, h.examService.Activate, "Activate exam failed")
}

// Complete godoc
// POST /api/v1/admin/exams/:exam_id/complete
func (h *ExamHandler) Complete(c *gin.Context) {
	h.transition(c, h.examService.Complete, "Complete exam failed")
}

// Cancel godoc
// POST /api/v1/admin/exams/:exam_id/cancel
func (h *ExamHandler) Cancel(c *gin.Context) {
	h.transition(c, h.examService.Cancel, "Cancel exam failed")
}

// AssignStudents godoc
// POST /api/v1/admin/exams/:exam_id/assign
func (h *ExamHandler) AssignStudents(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AssignStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	added, err := h.examService.AssignStudents(c.Request.Context(), examID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamNotEditable):
			response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
		case errors.Is(err, service.ErrStudentsNotFound):
			response.Fail(c, http.StatusBadRequest, response.ErrStudentsNotFound)
		default:
			h.log.Error().Err(err).Msg("Assign students failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assigned": added})
}

// ListForStudent godoc
// GET /api/v1/student/exams
func (h *ExamHandler) ListForStudent(c *gin.Context) {
	claims := mustClaims(c)

	entries, err := h.examService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("List student exams failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, entries)
}

// transition runs one of the status-change operations with shared parsing
// and error mapping.
func (h *ExamHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*model.Exam, error), msg string) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := fn(c.Request.Context(), examID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrInvalidTransition):
			response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
		case errors.Is(err, service.ErrInsufficientQuestions):
			response.Fail(c, http.StatusBadRequest, response.ErrInsufficientQuestions)
		default:
			h.log.Error().Err(err).Msg(msg)
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, exam)
}

func (h *ExamHandler) failExam(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrExamNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	h.log.Error().Err(err).Msg(msg)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
