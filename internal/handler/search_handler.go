package handler

import (
	"net/http"

	"Social_Hub/internal/middleware"
	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	svc *service.SearchService
}

func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"users": res.Users, "communities": res.Communities})
}

// Random suggests users and communities, leaving out the viewer when signed
// in.
func (h *SearchHandler) Random(c *gin.Context) {
	var viewer string
	if u, found := middleware.CurrentUser(c); found {
		viewer = u.ID
	}
	res, err := h.svc.Random(c.Request.Context(), viewer)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"users": res.Users, "communities": res.Communities})
}
