package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examforge/examforge-backend/internal/response"
	"github.com/examforge/examforge-backend/internal/service"
)

// ResultHandler exposes evaluated results.
type ResultHandler struct {
	resultService *service.ResultService
	log           zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		log:           log.With().Str("component", "result_handler").Logger(),
	}
}

// StudentHistory godoc
// GET /api/v1/student/results
func (h *ResultHandler) StudentHistory(c *gin.Context) {
	claims := mustClaims(c)

	results, err := h.resultService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Result history failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, results)
}

// StudentResult godoc
// GET /api/v1/student/exams/:exam_id/result
func (h *ResultHandler) StudentResult(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	result, err := h.resultService.GetForStudent(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
		case errors.Is(err, service.ErrResultNotReady):
			response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
		default:
			h.log.Error().Err(err).Msg("Student result failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Leaderboard godoc
// GET /api/v1/admin/exams/:exam_id/results
func (h *ResultHandler) Leaderboard(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	page, perPage, offset := parsePagination(c)
	results, total, err := h.resultService.Leaderboard(c.Request.Context(), examID, perPage, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("Leaderboard failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, results, buildPagination(page, perPage, total))
}

// Summary godoc
// GET /api/v1/admin/exams/:exam_id/summary
func (h *ResultHandler) Summary(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	summary, err := h.resultService.Summary(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Summary failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, summary)
}
