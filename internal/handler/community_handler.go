package handler

import (
	"net/http"

	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc         *service.CommunityService
	interaction *service.InteractionService
}

func NewCommunityHandler(svc *service.CommunityService, interaction *service.InteractionService) *CommunityHandler {
	return &CommunityHandler{svc: svc, interaction: interaction}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	var req service.CreateCommunityInput
	if !bind(c, &req) {
		return
	}
	community, err := h.svc.Create(c.Request.Context(), u, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"community": community})
}

func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"communities": list})
}

// Detail returns the community with its feed; ?limit and ?before page the
// posts.
func (h *CommunityHandler) Detail(c *gin.Context) {
	q, err := service.ParseFeedQuery(c.Query("limit"), c.Query("before"))
	if err != nil {
		fail(c, err)
		return
	}
	d, err := h.svc.Detail(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"community": d.Community, "posts": d.Posts})
}

func (h *CommunityHandler) Search(c *gin.Context) {
	list, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"communities": list})
}

// ToggleMembership joins the community or leaves it when already a member.
func (h *CommunityHandler) ToggleMembership(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	res, err := h.interaction.ToggleMembership(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "left community"
	if res.Joined {
		msg = "joined community"
	}
	ok(c, http.StatusOK, gin.H{
		"message":     msg,
		"joined":      res.Joined,
		"memberCount": res.MemberCount,
		"members":     res.Members,
	})
}
