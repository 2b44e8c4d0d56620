package handler

import (
	"net/http"

	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

// EmailHandler serves the password reset flow.
type EmailHandler struct {
	users *service.UserService
}

func NewEmailHandler(users *service.UserService) *EmailHandler {
	return &EmailHandler{users: users}
}

func (h *EmailHandler) SendResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.users.SendResetCode(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "if the address is registered a code has been sent"})
}

func (h *EmailHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordInput
	if !bind(c, &req) {
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "password reset"})
}
