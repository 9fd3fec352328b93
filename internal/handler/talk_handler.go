package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/service"
	"github.com/slidecast/presentation-service/pkg/model"
)

// TalkHandler serves read-only snapshots of the talk and accepts
// commands over plain HTTP for clients that do not hold a socket open.
type TalkHandler struct {
	svc *service.PresentationService
	log *zap.Logger
}

// NewTalkHandler creates the snapshot handler.
func NewTalkHandler(svc *service.PresentationService, log *zap.Logger) *TalkHandler {
	return &TalkHandler{svc: svc, log: log}
}

// TalkResponse is the body of GET /api/talk.
type TalkResponse struct {
	Talk model.Talk `json:"talk"`
}

// SlidesResponse is the body of GET /api/slides.
type SlidesResponse struct {
	Slides []model.Slide `json:"slides"`
}

// ClientsResponse is the body of GET /api/clients.
type ClientsResponse struct {
	Clients []service.ClientInfo `json:"clients"`
}

// GetTalk godoc
// GET /api/talk
func (h *TalkHandler) GetTalk(c *gin.Context) {
	c.JSON(http.StatusOK, TalkResponse{Talk: h.svc.Talks().Talk()})
}

// GetSlides godoc
// GET /api/slides
func (h *TalkHandler) GetSlides(c *gin.Context) {
	c.JSON(http.StatusOK, SlidesResponse{Slides: h.svc.Talks().Slides()})
}

// GetState godoc
// GET /api/state
func (h *TalkHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, model.StateNotification(h.svc.CurrentState()))
}

// GetClients godoc
// GET /api/clients
func (h *TalkHandler) GetClients(c *gin.Context) {
	c.JSON(http.StatusOK, ClientsResponse{Clients: h.svc.Clients().Clients()})
}

// PostCommand godoc
// POST /api/command
func (h *TalkHandler) PostCommand(c *gin.Context) {
	var cmd model.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command", "message": err.Error()})
		return
	}
	if err := cmd.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command", "message": err.Error()})
		return
	}

	notification := h.svc.HandleCommand("http", cmd)
	if notification.Type == model.NotificationError {
		h.log.Warn("command failed",
			zap.String("command", string(cmd.Command)),
			zap.String("message", notification.Message))
	}
	c.JSON(http.StatusOK, notification)
}
