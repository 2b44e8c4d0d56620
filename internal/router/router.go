package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"Social_Hub/internal/config"
	"Social_Hub/internal/handler"
	"Social_Hub/internal/middleware"
	"Social_Hub/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the routes need.
type Deps struct {
	Log    *slog.Logger
	Server config.ServerConfig
	Auth   *middleware.Authenticator

	Users       *service.UserService
	Posts       *service.PostService
	Feed        *service.FeedService
	Interaction *service.InteractionService
	Communities *service.CommunityService
	Search      *service.SearchService

	// Health reports whether the backing stores answer. Optional.
	Health func(ctx context.Context) error
	// MediaDir is served under /media when set (local media driver).
	MediaDir string
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Log),
		middleware.Recovery(d.Log),
		middleware.Errors(d.Log),
		cors.New(corsConfig(d.Server.CORSOrigins)),
		middleware.RateLimit(d.Server.RateLimit, d.Server.RateBurst),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				d.Log.WarnContext(c.Request.Context(), "health check failed", "err", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
	if d.MediaDir != "" {
		r.Static("/media", d.MediaDir)
	}

	user := handler.NewUserHandler(d.Users)
	email := handler.NewEmailHandler(d.Users)
	post := handler.NewPostHandler(d.Posts, d.Feed, d.Interaction)
	community := handler.NewCommunityHandler(d.Communities, d.Interaction)
	follow := handler.NewFollowHandler(d.Interaction)
	search := handler.NewSearchHandler(d.Search)

	required := d.Auth.Required()
	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", user.Register)
		auth.POST("/login", user.Login)
		auth.POST("/google", user.GoogleLogin)
		auth.POST("/refresh", user.Refresh)
		auth.POST("/reset/code", email.SendResetCode)
		auth.POST("/reset", email.ResetPassword)
		auth.POST("/logout", required, user.Logout)
		auth.POST("/change-password", required, user.ChangePassword)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", post.List)
		posts.POST("", required, post.Create)
		posts.PUT("/:id", required, post.React)
		posts.POST("/:id", required, post.Comment)
		posts.DELETE("/:id", required, post.Delete)
	}

	communities := api.Group("/community")
	{
		communities.GET("", community.List)
		communities.POST("", required, community.Create)
		communities.GET("/search", community.Search)
		communities.GET("/:id", community.Detail)
		communities.PUT("/:id", required, community.ToggleMembership)
	}

	users := api.Group("/users")
	{
		users.POST("/follow", required, follow.Toggle)
		users.GET("/:id", user.UserPage)
	}

	api.GET("/profile", required, user.Profile)
	api.POST("/profile", required, user.UpdateProfile)
	api.GET("/user", required, user.SessionUser)

	api.GET("/search", search.Search)
	api.GET("/search/random", d.Auth.Optional(), search.Random)

	return r
}

// corsConfig allows the configured origins, or any origin without
// credentials when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
