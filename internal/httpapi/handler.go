// Package httpapi exposes the interview over a small JSON API.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sbmn-interviewer/internal/history"
	"sbmn-interviewer/internal/interview"
	"sbmn-interviewer/internal/llm"
)

// Handler handles HTTP requests.
type Handler struct {
	svc *interview.Service
	log *zap.Logger
}

func NewHandler(svc *interview.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log.Named("http")}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.POST("/v1/sessions/:session_id/messages", h.PostMessage)
	e.POST("/v1/sessions/:session_id/reset", h.ResetSession)

	e.GET("/health", h.Health)
}

type sessionResponse struct {
	SessionID    string        `json:"session_id"`
	Handle       string        `json:"handle"`
	Messages     []llm.Message `json:"messages"`
	Count        int           `json:"count"`
	UserMessages int           `json:"user_messages"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply           string `json:"reply"`
	Complete        bool   `json:"complete"`
	Exported        bool   `json:"exported"`
	ExportError     string `json:"export_error,omitempty"`
	GenerationError string `json:"generation_error,omitempty"`
	Discarded       bool   `json:"discarded,omitempty"`
	Count           int    `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func sessionKey(id string) string { return "http:" + id }

func toSessionResponse(id string, snap interview.Snapshot) sessionResponse {
	return sessionResponse{
		SessionID:    id,
		Handle:       snap.Handle,
		Messages:     snap.Messages,
		Count:        snap.Count,
		UserMessages: snap.UserMessages,
	}
}

// CreateSession opens a session under a fresh id.
func (h *Handler) CreateSession(c echo.Context) error {
	id := uuid.NewString()
	snap := h.svc.Open(sessionKey(id))
	return c.JSON(http.StatusCreated, toSessionResponse(id, snap))
}

func (h *Handler) GetSession(c echo.Context) error {
	id := c.Param("session_id")
	snap, ok := h.svc.Snapshot(sessionKey(id))
	if !ok {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, toSessionResponse(id, snap))
}

// Sessions are only created by CreateSession; ids never seen, or swept for
// idleness, are 404 on every route.
func (h *Handler) exists(id string) bool {
	_, ok := h.svc.Snapshot(sessionKey(id))
	return ok
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
}

func (h *Handler) PostMessage(c echo.Context) error {
	id := c.Param("session_id")
	if !h.exists(id) {
		return notFound(c)
	}
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	turn, err := h.svc.Submit(c.Request().Context(), sessionKey(id), req.Text)
	switch {
	case errors.Is(err, interview.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, history.ErrTurnInProgress):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case err != nil:
		h.log.Error("submit failed", zap.String("session", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	resp := messageResponse{
		Reply:     turn.Reply,
		Complete:  turn.Complete,
		Exported:  turn.Exported,
		Discarded: turn.Discarded,
		Count:     turn.Count,
	}
	if turn.ExportErr != nil {
		resp.ExportError = turn.ExportErr.Error()
	}
	if turn.GenerationErr != nil {
		resp.GenerationError = turn.GenerationErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ResetSession(c echo.Context) error {
	id := c.Param("session_id")
	if !h.exists(id) {
		return notFound(c)
	}
	snap := h.svc.Reset(sessionKey(id))
	return c.JSON(http.StatusOK, toSessionResponse(id, snap))
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
