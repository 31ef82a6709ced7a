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

// QuestionHandler handles question bank and question administration.
type QuestionHandler struct {
	questionService *service.QuestionService
	log             zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		log:             log.With().Str("component", "question_handler").Logger(),
	}
}

// CreateBank godoc
// POST /api/v1/admin/qbanks
func (h *QuestionHandler) CreateBank(c *gin.Context) {
	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := mustClaims(c)
	bank, err := h.questionService.CreateBank(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Create bank failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, bank)
}

// ListBanks godoc
// GET /api/v1/admin/qbanks
func (h *QuestionHandler) ListBanks(c *gin.Context) {
	page, perPage, offset := parsePagination(c)

	banks, total, err := h.questionService.ListBanks(c.Request.Context(), perPage, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("List banks failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, banks, buildPagination(page, perPage, total))
}

// GetBank godoc
// GET /api/v1/admin/qbanks/:bank_id
func (h *QuestionHandler) GetBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.questionService.GetBank(c.Request.Context(), bankID)
	if err != nil {
		h.failBank(c, err, "Get bank failed")
		return
	}

	response.Success(c, http.StatusOK, bank)
}

// UpdateBank godoc
// PUT /api/v1/admin/qbanks/:bank_id
func (h *QuestionHandler) UpdateBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.questionService.UpdateBank(c.Request.Context(), bankID, &req)
	if err != nil {
		h.failBank(c, err, "Update bank failed")
		return
	}

	response.Success(c, http.StatusOK, bank)
}

// DeleteBank godoc
// DELETE /api/v1/admin/qbanks/:bank_id
func (h *QuestionHandler) DeleteBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteBank(c.Request.Context(), bankID); err != nil {
		h.failBank(c, err, "Delete bank failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddQuestion godoc
// POST /api/v1/admin/qbanks/:bank_id/questions
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.AddQuestion(c.Request.Context(), bankID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBankNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrInvalidOptions):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			h.log.Error().Err(err).Msg("Add question failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, question)
}

// ListQuestions godoc
// GET /api/v1/admin/qbanks/:bank_id/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, perPage, offset := parsePagination(c)
	questions, total, err := h.questionService.ListQuestions(c.Request.Context(), bankID, perPage, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("List questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, questions, buildPagination(page, perPage, total))
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:question_id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		h.failQuestion(c, err, "Get question failed")
		return
	}

	response.Success(c, http.StatusOK, question)
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:question_id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		h.failQuestion(c, err, "Update question failed")
		return
	}

	response.Success(c, http.StatusOK, question)
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		h.failQuestion(c, err, "Delete question failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *QuestionHandler) failBank(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrBankNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	h.log.Error().Err(err).Msg(msg)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

func (h *QuestionHandler) failQuestion(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrQuestionNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	h.log.Error().Err(err).Msg(msg)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
