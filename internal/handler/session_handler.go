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

// SessionHandler serves invigilator monitoring endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// ListActive godoc
// GET /api/v1/sessions/active
func (h *SessionHandler) ListActive(c *gin.Context) {
	sessions, err := h.sessionService.ListActive(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List sessions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, sessions)
}

// Get godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.failSession(c, err, "Get session failed")
		return
	}

	response.Success(c, http.StatusOK, session)
}

// StudentProgress godoc
// GET /api/v1/sessions/:session_id/students
func (h *SessionHandler) StudentProgress(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	progress, err := h.sessionService.StudentProgress(c.Request.Context(), sessionID)
	if err != nil {
		h.failSession(c, err, "Student progress failed")
		return
	}

	response.Success(c, http.StatusOK, progress)
}

// FlagStudent godoc
// POST /api/v1/sessions/:session_id/flag
func (h *SessionHandler) FlagStudent(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	claims := mustClaims(c)

	var req model.FlagStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	flag, err := h.sessionService.FlagStudent(c.Request.Context(), sessionID, claims.UserID, &req)
	if err != nil {
		h.failSession(c, err, "Flag student failed")
		return
	}

	response.Success(c, http.StatusCreated, flag)
}

// ListFlags godoc
// GET /api/v1/sessions/:session_id/flags
func (h *SessionHandler) ListFlags(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	flags, err := h.sessionService.ListFlags(c.Request.Context(), sessionID)
	if err != nil {
		h.failSession(c, err, "List flags failed")
		return
	}

	response.Success(c, http.StatusOK, flags)
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return sessionID, true
}

func (h *SessionHandler) failSession(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrSessionNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	h.log.Error().Err(err).Msg(msg)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
