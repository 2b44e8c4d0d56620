package handler

import (
	"net/http"

	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	interaction *service.InteractionService
}

func NewFollowHandler(interaction *service.InteractionService) *FollowHandler {
	return &FollowHandler{interaction: interaction}
}

// Toggle follows the user in the body, or unfollows when already following.
func (h *FollowHandler) Toggle(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if !bind(c, &req) {
		return
	}
	following, err := h.interaction.ToggleFollow(c.Request.Context(), u.ID, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"isFollowing": following})
}
