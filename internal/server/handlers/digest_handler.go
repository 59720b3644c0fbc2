package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/reporting"
)

// DigestRunner sends the growth digest immediately.
type DigestRunner interface {
	RunDigest(ctx context.Context) error
}

// MessageSender pushes a manual message to a recipient.
type MessageSender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// DigestHandler previews and sends the growth digest and manual messages.
// runner and sender are nil when WhatsApp is not configured.
type DigestHandler struct {
	reporting *reporting.Service
	runner    DigestRunner
	sender    MessageSender
	logger    *zap.Logger
}

// NewDigestHandler constructs the digest HTTP adapter.
func NewDigestHandler(reportingSvc *reporting.Service, runner DigestRunner, sender MessageSender, logger *zap.Logger) *DigestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DigestHandler{reporting: reportingSvc, runner: runner, sender: sender, logger: logger}
}

// Preview returns today's digest without sending it.
func (h *DigestHandler) Preview(c *gin.Context) {
	digests, message, err := h.reporting.Preview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flocks": digests, "message": message})
}

// Send pushes today's digest to the farm manager.
func (h *DigestHandler) Send(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "whatsapp is not configured"})
		return
	}
	if err := h.runner.RunDigest(c.Request.Context()); err != nil {
		h.logger.Error("failed sending digest", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send digest"})
		return
	}
	c.Status(http.StatusAccepted)
}

// SendMessage sends a manual message to a recipient.
func (h *DigestHandler) SendMessage(c *gin.Context) {
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "whatsapp is not configured"})
		return
	}
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.sender.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}
	c.Status(http.StatusAccepted)
}
