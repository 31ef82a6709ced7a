package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/service"
)

// monitorPushInterval is how often the monitor stream refreshes its snapshot.
const monitorPushInterval = 5 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorWSHandler streams live session state to invigilator dashboards.
type MonitorWSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorWSHandler creates a new MonitorWSHandler.
func NewMonitorWSHandler(sessionService *service.SessionService, allowedOrigins []string) *MonitorWSHandler {
	return &MonitorWSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "monitor_ws").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// monitorSnapshot is one pushed frame: session counters plus per-student state.
type monitorSnapshot struct {
	Session  *model.ExamSession      `json:"session"`
	Students []model.StudentProgress `json:"students"`
	SentAt   time.Time               `json:"sent_at"`
}

// Stream godoc
// WS /ws/v1/monitor/sessions/:session_id
// Pushes a session snapshot every few seconds until the client disconnects
// or the session ends.
func (h *MonitorWSHandler) Stream(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	// Validate before upgrading so bad ids get a proper HTTP error.
	if _, err := h.sessionService.Get(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Monitor connected")

	// Reader goroutine: surfaces client close so the push loop can stop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(monitorPushInterval)
	defer ticker.Stop()

	for {
		session, err := h.sessionService.Get(c.Request.Context(), sessionID)
		if err != nil {
			wsLog.Warn().Err(err).Msg("Session vanished, closing stream")
			return
		}

		students, err := h.sessionService.StudentProgress(c.Request.Context(), sessionID)
		if err != nil {
			wsLog.Warn().Err(err).Msg("Progress query failed")
			return
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(monitorSnapshot{
			Session:  session,
			Students: students,
			SentAt:   time.Now().UTC(),
		}); err != nil {
			wsLog.Debug().Msg("Connection closed")
			return
		}

		if !session.IsActive {
			wsLog.Info().Msg("Session ended, closing stream")
			return
		}

		select {
		case <-done:
			wsLog.Debug().Msg("Client disconnected")
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
