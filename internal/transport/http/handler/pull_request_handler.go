package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

// PullRequestHandler handles pull request and issue requests
type PullRequestHandler struct {
	pullService *service.PullRequestService
}

// NewPullRequestHandler creates a new PullRequestHandler instance
func NewPullRequestHandler(pullService *service.PullRequestService) *PullRequestHandler {
	return &PullRequestHandler{pullService: pullService}
}

// CreatePull handles POST /api/pulls
func (h *PullRequestHandler) CreatePull(c *gin.Context) {
	h.upsert(c)
}

// UpdatePull handles PUT /api/pulls/update. The head branch identifies
// the pull request; both routes share the upsert semantics.
func (h *PullRequestHandler) UpdatePull(c *gin.Context) {
	h.upsert(c)
}

func (h *PullRequestHandler) upsert(c *gin.Context) {
	var req dto.PullRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user := middleware.GetUserFromContext(c)
	pull, err := h.pullService.CreateOrUpdate(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pull)
}

// ClosePull handles POST /api/pull-requests/:number/close
func (h *PullRequestHandler) ClosePull(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "invalid pull request number",
		})
		return
	}

	user := middleware.GetUserFromContext(c)
	if err := h.pullService.Close(c.Request.Context(), user, number); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "pull request closed"})
}

// ListIssues handles GET /api/issues/:state
func (h *PullRequestHandler) ListIssues(c *gin.Context) {
	issues, err := h.pullService.ListIssues(c.Request.Context(), c.Param("state"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues": issues,
		"total":  len(issues),
	})
}
