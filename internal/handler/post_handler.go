package handler

import (
	"net/http"
	"slices"

	"Social_Hub/internal/model"
	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts       *service.PostService
	feed        *service.FeedService
	interaction *service.InteractionService
}

func NewPostHandler(posts *service.PostService, feed *service.FeedService, interaction *service.InteractionService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed, interaction: interaction}
}

// List serves the global feed, newest first, paged by ?limit and ?before.
func (h *PostHandler) List(c *gin.Context) {
	q, err := service.ParseFeedQuery(c.Query("limit"), c.Query("before"))
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.feed.ListFeed(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	body := gin.H{"posts": page.Posts}
	if page.NextCursor != "" {
		body["nextCursor"] = page.NextCursor
	}
	ok(c, http.StatusOK, body)
}

// Create reads a multipart form: title, description, tags, community and
// an optional image or video file.
func (h *PostHandler) Create(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	in := service.CreatePostInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		Community:   c.PostForm("community"),
	}
	up, f, err := formUpload(c, "image")
	if err != nil {
		fail(c, err)
		return
	}
	if f != nil {
		defer f.Close()
		in.Media = up
	}

	p, err := h.posts.Create(c.Request.Context(), u, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"post": p})
}

func (h *PostHandler) React(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if !bind(c, &req) {
		return
	}
	kind := model.ReactionKind(req.Action)
	res, err := h.interaction.ApplyReaction(c.Request.Context(), c.Param("id"), u.ID, kind)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": reactionMessage(u.ID, res), "likes": res.Likes, "dislikes": res.Dislikes})
}

func reactionMessage(userID string, res *service.ReactionResult) string {
	switch {
	case slices.Contains(res.Likes, userID):
		return "post liked"
	case slices.Contains(res.Dislikes, userID):
		return "post disliked"
	}
	return "reaction removed"
}

func (h *PostHandler) Comment(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bind(c, &req) {
		return
	}
	comment, err := h.interaction.AddComment(c.Request.Context(), c.Param("id"), u, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "comment added", "comment": comment})
}

func (h *PostHandler) Delete(c *gin.Context) {
	u, found := sessionUser(c)
	if !found {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), u); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "post deleted"})
}
