// Package server exposes the avatar over HTTP: a JSON chat API on one
// listener and the embeddable chat widget on another.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avatar-agent/internal/logger"
	"avatar-agent/pkg"
)

// ChatService produces one avatar reply for a visitor message.
type ChatService interface {
	Chat(ctx context.Context, message string, history []*schema.Message) (string, error)
}

// HistoryStore persists per-session conversation history.
type HistoryStore interface {
	History(ctx context.Context, sessionID string) ([]*schema.Message, error)
	AppendUser(ctx context.Context, sessionID, content string) error
	AppendAssistant(ctx context.Context, sessionID, content string) error
	Reset(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// PortfolioReader answers project and expertise queries.
type PortfolioReader interface {
	Search(filter pkg.SearchFilter) pkg.SearchResult
	Expertise(category string) map[string]any
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// API handles the JSON endpoints.
type API struct {
	chat      ChatService
	history   HistoryStore
	portfolio PortfolioReader
}

// NewAPI wires the handlers to their services.
func NewAPI(chat ChatService, history HistoryStore, portfolio PortfolioReader) *API {
	return &API{chat: chat, history: history, portfolio: portfolio}
}

// Router builds the gin engine with all API routes registered.
func (a *API) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	r.GET("/", a.handleRoot)
	r.GET("/healthz", a.handleHealth)
	r.POST("/chat/", a.handleChat)
	r.POST("/chat/reset", a.handleReset)
	r.GET("/api/projects", a.handleProjects)
	r.GET("/api/expertise", a.handleExpertise)
	registerDocs(r)

	return r
}

func (a *API) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "avatar-agent",
		"status":  "running",
		"docs":    "/docs",
	})
}

func (a *API) handleHealth(c *gin.Context) {
	if err := a.history.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Status: "error"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required", Status: "error"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := c.Request.Context()

	history, err := a.history.History(ctx, sessionID)
	if err != nil {
		logger.Error().Str("session_id", sessionID).Err(err).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Status: "error"})
		return
	}

	reply, err := a.chat.Chat(ctx, message, history)
	if err != nil {
		logger.Error().Str("session_id", sessionID).Err(err).Msg("chat turn failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Status: "error"})
		return
	}

	if err := a.history.AppendUser(ctx, sessionID, message); err != nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("failed to persist user message")
	}
	if err := a.history.AppendAssistant(ctx, sessionID, reply); err != nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("failed to persist assistant message")
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:  reply,
		SessionID: sessionID,
		Status:    "success",
	})
}

func (a *API) handleReset(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "session_id is required", Status: "error"})
		return
	}

	if err := a.history.Reset(c.Request.Context(), req.SessionID); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Status: "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": req.SessionID, "status": "success"})
}

func (a *API) handleProjects(c *gin.Context) {
	filter := pkg.SearchFilter{
		Domain:      c.Query("dominio"),
		Technology:  c.Query("tecnologia"),
		ProjectType: c.Query("tipo_proyecto"),
	}

	if v := c.Query("incluye_ml"); v != "" {
		mlOnly, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "incluye_ml must be a boolean", Status: "error"})
			return
		}
		filter.MLOnly = mlOnly
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer", Status: "error"})
			return
		}
		filter.Limit = limit
	}

	c.JSON(http.StatusOK, a.portfolio.Search(filter))
}

func (a *API) handleExpertise(c *gin.Context) {
	category := c.DefaultQuery("categoria", "general")
	c.JSON(http.StatusOK, a.portfolio.Expertise(category))
}
