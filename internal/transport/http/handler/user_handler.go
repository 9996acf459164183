package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

// UserHandler handles user administration requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "invalid user id",
		})
		return 0, false
	}
	return id, true
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	detail, err := h.userService.Me(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteMe handles DELETE /api/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if err := h.userService.Delete(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "account deleted"})
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "user deleted"})
}

// AddToGroup handles POST /api/users/groups/:id, where id is the group
func (h *UserHandler) AddToGroup(c *gin.Context) {
	groupID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req dto.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.userService.AddToGroup(c.Request.Context(), groupID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "user added to group"})
}

// RemoveFromGroup handles DELETE /api/users/groups/:id
func (h *UserHandler) RemoveFromGroup(c *gin.Context) {
	groupID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req dto.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.userService.RemoveFromGroup(c.Request.Context(), groupID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "user removed from group"})
}
