package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
)

// GroupHandler handles group administration requests
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler instance
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func groupIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "invalid group id",
		})
		return 0, false
	}
	return id, true
}

// ListGroups handles GET /api/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"total":  len(groups),
	})
}

// CreateGroup handles POST /api/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// DeleteGroup handles DELETE /api/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := groupIDParam(c)
	if !ok {
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "group deleted"})
}

// ReplacePermissions handles PUT /api/groups/:id/permissions
func (h *GroupHandler) ReplacePermissions(c *gin.Context) {
	id, ok := groupIDParam(c)
	if !ok {
		return
	}

	var req dto.ReplacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.groupService.ReplacePermissions(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "permissions updated"})
}
