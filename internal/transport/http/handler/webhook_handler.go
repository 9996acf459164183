package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/pkg/logger"
)

// maxWebhookBody caps webhook payloads at 1 MiB
const maxWebhookBody = 1 << 20

// WebhookHandler ingests GitHub push webhooks and keeps watched branches
// fresh
type WebhookHandler struct {
	repoService *service.RepoService
	secret      string
	watched     map[string]bool
	log         *logger.Logger
}

// pushEvent is the part of GitHub's push payload this handler reads
type pushEvent struct {
	Ref string `json:"ref"`
}

// NewWebhookHandler creates a new WebhookHandler instance. An empty
// secret disables signature validation.
func NewWebhookHandler(repoService *service.RepoService, secret string, watchedBranches []string) *WebhookHandler {
	watched := make(map[string]bool, len(watchedBranches))
	for _, branch := range watchedBranches {
		watched[branch] = true
	}

	return &WebhookHandler{
		repoService: repoService,
		secret:      secret,
		watched:     watched,
		log:         logger.Get().WithFields(logger.Component("webhook")),
	}
}

// Handle handles POST /api/hooks/github
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if h.secret != "" && !h.verifySignature(body, c.GetHeader("X-Hub-Signature-256")) {
		h.log.Warn("Webhook signature validation failed",
			logger.ClientIP(c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "invalid webhook signature",
		})
		return
	}

	event := c.GetHeader("X-GitHub-Event")
	if event != "push" {
		c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
		return
	}

	var payload pushEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		respondBadRequest(c, err)
		return
	}

	branch := strings.TrimPrefix(payload.Ref, "refs/heads/")
	if branch == payload.Ref {
		// Tag or other ref, nothing to refresh
		c.JSON(http.StatusOK, gin.H{"message": "ref ignored"})
		return
	}

	current, err := h.repoService.CurrentBranch()
	if err != nil {
		respondError(c, err)
		return
	}
	if branch != current && !h.watched[branch] {
		c.JSON(http.StatusOK, gin.H{"message": "branch not watched"})
		return
	}

	if err := h.repoService.Pull(c.Request.Context(), branch); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("Pulled branch after push event", logger.Branch(branch))
	c.JSON(http.StatusOK, gin.H{"message": "branch updated"})
}

// verifySignature checks the HMAC-SHA256 signature GitHub attaches to
// webhook deliveries
func (h *WebhookHandler) verifySignature(body []byte, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}
