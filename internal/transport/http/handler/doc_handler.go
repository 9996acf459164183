package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

// DocHandler handles document read and write requests
type DocHandler struct {
	repoService *service.RepoService
}

// NewDocHandler creates a new DocHandler instance
func NewDocHandler(repoService *service.RepoService) *DocHandler {
	return &DocHandler{repoService: repoService}
}

// docPathParam reads the required path query parameter
func docPathParam(c *gin.Context) (string, bool) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "path query parameter is required",
		})
		return "", false
	}
	return path, true
}

// GetDoc handles GET /api/doc?path=
func (h *DocHandler) GetDoc(c *gin.Context) {
	path, ok := docPathParam(c)
	if !ok {
		return
	}

	contents, err := h.repoService.ReadDoc(path)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DocResponse{
		Path:    path,
		Content: string(contents),
	})
}

// PutDoc handles PUT /api/doc?path=
func (h *DocHandler) PutDoc(c *gin.Context) {
	path, ok := docPathParam(c)
	if !ok {
		return
	}

	var req dto.SaveDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user := middleware.GetUserFromContext(c)
	commit, err := h.repoService.WriteDoc(c.Request.Context(), user, path, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommitResponse{Commit: commit})
}

// DeleteDoc handles DELETE /api/doc?path=
func (h *DocHandler) DeleteDoc(c *gin.Context) {
	path, ok := docPathParam(c)
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	commit, err := h.repoService.DeleteDoc(c.Request.Context(), user, path, c.Query("message"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommitResponse{Commit: commit})
}

// DocTree handles GET /api/tree/doc
func (h *DocHandler) DocTree(c *gin.Context) {
	tree, err := h.repoService.DocTree()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}
