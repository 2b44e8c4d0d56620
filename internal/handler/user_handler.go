package handler

import (
	"net/http"

	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bind(c, &req) {
		return
	}
	u, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "user registered", "user": u.ID})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bind(c, &req) {
		return
	}
	s, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.session(c, s)
}

func (h *UserHandler) GoogleLogin(c *gin.Context) {
	var req struct {
		Credential string `json:"credential"`
	}
	if !bind(c, &req) {
		return
	}
	s, err := h.svc.GoogleLogin(c.Request.Context(), req.Credential)
	if err != nil {
		fail(c, err)
		return
	}
	h.session(c, s)
}

func (h *UserHandler) session(c *gin.Context, s *service.Session) {
	ok(c, http.StatusOK, gin.H{
		"token":        s.Pair.AccessToken,
		"accessToken":  s.Pair.AccessToken,
		"refreshToken": s.Pair.RefreshToken,
		"user":         userJSON(s.User),
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), u.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Refresh trades a refresh token for a new pair.
func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !bind(c, &req) {
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"token":        pair.AccessToken,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !bind(c, &req) {
		return
	}
	u, found := sessionUser(c)
	if !found {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), u, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "password changed"})
}

func (h *UserHandler) SessionUser(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, gin.H{"userId": u.ID})
}

func (h *UserHandler) Profile(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	p, err := h.svc.Profile(c.Request.Context(), u)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": p})
}

// UpdateProfile reads a multipart form with userId and optional name and
// image.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	in := service.UpdateProfileInput{UserID: c.PostForm("userId")}
	if name, has := c.GetPostForm("name"); has {
		in.Name = &name
	}
	up, f, err := formUpload(c, "image")
	if err != nil {
		fail(c, err)
		return
	}
	if f != nil {
		defer f.Close()
		in.Image = up
	}

	p, err := h.svc.UpdateProfile(c.Request.Context(), u, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "profile updated", "user": p})
}

func (h *UserHandler) UserPage(c *gin.Context) {
	page, err := h.svc.UserPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": page.User, "posts": page.Posts})
}
