package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

// RepoHandler handles branch and clone lifecycle requests
type RepoHandler struct {
	repoService *service.RepoService
}

// NewRepoHandler creates a new RepoHandler instance
func NewRepoHandler(repoService *service.RepoService) *RepoHandler {
	return &RepoHandler{repoService: repoService}
}

// ListBranches handles GET /api/branches
func (h *RepoHandler) ListBranches(c *gin.Context) {
	branches, err := h.repoService.Branches()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branches": branches,
		"total":    len(branches),
	})
}

// Checkout handles PUT /api/checkout/branches/:name
func (h *RepoHandler) Checkout(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	branch := c.Param("name")

	if err := h.repoService.Checkout(c.Request.Context(), user, branch); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CurrentBranchResponse{Branch: branch})
}

// Pull handles POST /api/pull/:branch
func (h *RepoHandler) Pull(c *gin.Context) {
	branch := c.Param("branch")

	if err := h.repoService.Pull(c.Request.Context(), branch); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "branch up to date"})
}

// CurrentBranch handles GET /api/current-branch
func (h *RepoHandler) CurrentBranch(c *gin.Context) {
	branch, err := h.repoService.CurrentBranch()
	if err != nil {
		respondError(c, err)
		return
	}

	commit, err := h.repoService.LastCommit()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branch":      branch,
		"last_commit": commit,
	})
}

// Reclone handles POST /api/reclone
func (h *RepoHandler) Reclone(c *gin.Context) {
	if err := h.repoService.Reclone(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "repository recloned"})
}
