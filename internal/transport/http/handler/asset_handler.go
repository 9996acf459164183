package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

// maxAssetSize caps uploaded asset bodies at 32 MiB
const maxAssetSize = 32 << 20

// AssetHandler handles binary asset requests. Asset bodies are raw
// bytes, not JSON.
type AssetHandler struct {
	repoService *service.RepoService
}

// NewAssetHandler creates a new AssetHandler instance
func NewAssetHandler(repoService *service.RepoService) *AssetHandler {
	return &AssetHandler{repoService: repoService}
}

// assetPathParam reads the wildcard path parameter
func assetPathParam(c *gin.Context) (string, bool) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "asset path is required",
		})
		return "", false
	}
	return path, true
}

// GetAsset handles GET /api/asset/*path
func (h *AssetHandler) GetAsset(c *gin.Context) {
	path, ok := assetPathParam(c)
	if !ok {
		return
	}

	contents, err := h.repoService.ReadAsset(path)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", contents)
}

// PutAsset handles PUT /api/asset/*path with the asset bytes as the body
func (h *AssetHandler) PutAsset(c *gin.Context) {
	path, ok := assetPathParam(c)
	if !ok {
		return
	}

	contents, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAssetSize+1))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if len(contents) > maxAssetSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "too_large",
			"message": "asset exceeds the size limit",
		})
		return
	}

	user := middleware.GetUserFromContext(c)
	commit, err := h.repoService.WriteAsset(c.Request.Context(), user, path, contents, c.Query("message"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommitResponse{Commit: commit})
}

// DeleteAsset handles DELETE /api/asset/*path
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	path, ok := assetPathParam(c)
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	commit, err := h.repoService.DeleteAsset(c.Request.Context(), user, path, c.Query("message"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommitResponse{Commit: commit})
}

// AssetTree handles GET /api/tree/asset
func (h *AssetHandler) AssetTree(c *gin.Context) {
	tree, err := h.repoService.AssetTree()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}
