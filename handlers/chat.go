package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/armanmujtaba/Trivanza/calendar"
	"github.com/armanmujtaba/Trivanza/conversation"
	"github.com/armanmujtaba/Trivanza/models"
	"github.com/armanmujtaba/Trivanza/sessions"
	"github.com/armanmujtaba/Trivanza/tripform"
	"github.com/armanmujtaba/Trivanza/workflows"
)

// ChatHandler handles session and chat HTTP requests
type ChatHandler struct {
	store     *sessions.Store
	workflows *workflows.ChatWorkflows
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(store *sessions.Store, wf *workflows.ChatWorkflows, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		store:     store,
		workflows: wf,
		logger:    logger,
	}
}

// CreateSession starts a new conversation
func (h *ChatHandler) CreateSession(c *gin.Context) {
	conv := h.store.Create()
	c.JSON(http.StatusCreated, conv.Snapshot())
}

// GetSession returns the phase, active trip and transcript of a session
func (h *ChatHandler) GetSession(c *gin.Context) {
	conv, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conv.Snapshot())
}

// DeleteSession ends a session and cancels any in-flight completion
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if !h.store.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// GetMessages returns the transcript of a session
func (h *ChatHandler) GetMessages(c *gin.Context) {
	conv, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conv.Turns())
}

// SendMessage classifies a chat message and answers it
func (h *ChatHandler) SendMessage(c *gin.Context) {
	conv, ok := h.session(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	output, err := h.workflows.SendMessageWorkflow(c.Request.Context(), conv, req.Content)
	if errors.Is(err, conversation.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is empty"})
		return
	}
	if err != nil {
		h.logger.Error("send message failed", "session_id", conv.ID(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, response(conv, output))
}

// SubmitTrip validates the trip form and plans the trip. Every validation
// problem is returned at once.
func (h *ChatHandler) SubmitTrip(c *gin.Context) {
	conv, ok := h.session(c)
	if !ok {
		return
	}

	var form models.TripFormRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	output, err := h.workflows.SubmitTripWorkflow(c.Request.Context(), conv, form)
	var verrs tripform.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Invalid trip details",
			"errors": verrs,
		})
		return
	}
	if err != nil {
		h.logger.Error("submit trip failed", "session_id", conv.ID(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to plan trip"})
		return
	}
	c.JSON(http.StatusOK, response(conv, output))
}

// TripCalendar downloads the active trip as an iCalendar file
func (h *ChatHandler) TripCalendar(c *gin.Context) {
	conv, ok := h.session(c)
	if !ok {
		return
	}
	trip := conv.Active()
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No trip has been planned in this session"})
		return
	}

	ics, err := calendar.Export(conv.ID(), *trip, time.Now())
	if err != nil {
		h.logger.Error("calendar export failed", "session_id", conv.ID(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export calendar"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "trivanza-trip.ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (h *ChatHandler) session(c *gin.Context) (*conversation.Conversation, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}
	conv, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return conv, true
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func response(conv *conversation.Conversation, output workflows.SendMessageOutput) models.ChatResponse {
	return models.ChatResponse{
		Route:            output.Route,
		Phase:            conv.Phase(),
		UserMessage:      output.UserMessage,
		AssistantMessage: output.AssistantMessage,
		Stale:            output.Stale,
		Notices:          output.Notices,
	}
}
