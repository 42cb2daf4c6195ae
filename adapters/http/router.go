package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khoahotran/social-api/pkg/auth"
	"github.com/khoahotran/social-api/pkg/logger"
)

type RouterDeps struct {
	Logger         logger.Logger
	JWTService     *auth.JWTService
	ProfileHandler *ProfileHandler
	FollowHandler  *FollowHandler
	PostHandler    *PostHandler
	RSSHandler     *RSSHandler
	CORSOrigins    []string
	// MediaFS serves locally stored uploads under /media when set.
	MediaFS http.FileSystem
	// HealthCheck reports dependency health for /health when set.
	HealthCheck func(ctx context.Context) error
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLogger(deps.Logger),
		MetricsMiddleware(),
		cors.New(corsConfig(deps.CORSOrigins)),
		ErrorMiddleware(deps.Logger),
	)

	router.GET("/health", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.Request.Context()); err != nil {
				deps.Logger.Error("Health check failed", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.MediaFS != nil {
		mediaGroup := router.Group("/media", func(c *gin.Context) {
			c.Header("X-Content-Type-Options", "nosniff")
			c.Header("Content-Security-Policy", "default-src 'none'; sandbox")
			c.Next()
		})
		mediaGroup.StaticFS("/", deps.MediaFS)
	}

	requireAuth := AuthMiddleware(deps.JWTService)
	optionalAuth := OptionalAuthMiddleware(deps.JWTService)

	api := router.Group("/api")
	{
		api.GET("/rss", deps.RSSHandler.GenerateRSS)

		profiles := api.Group("/profiles")
		profiles.Use(optionalAuth)
		{
			profiles.GET("/", deps.ProfileHandler.ListProfiles)
			profiles.GET("/:id/", deps.ProfileHandler.GetProfile)

			profilesPrivate := profiles.Group("")
			profilesPrivate.Use(RequireUser())
			{
				profilesPrivate.POST("/", deps.ProfileHandler.CreateProfile)
				profilesPrivate.PUT("/:id/", deps.ProfileHandler.UpdateProfile)
				profilesPrivate.PATCH("/:id/", deps.ProfileHandler.UpdateProfile)
				profilesPrivate.DELETE("/:id/", deps.ProfileHandler.DeleteProfile)
			}
		}

		follows := api.Group("/follows")
		follows.Use(requireAuth)
		{
			follows.GET("/", deps.FollowHandler.ListFollows)
			follows.POST("/follow/", deps.FollowHandler.Follow)
			follows.POST("/unfollow/", deps.FollowHandler.Unfollow)
			follows.GET("/followers/", deps.FollowHandler.ListFollowers)
			follows.GET("/following/", deps.FollowHandler.ListFollowing)
		}

		posts := api.Group("/posts")
		posts.Use(optionalAuth)
		{
			posts.GET("/", deps.PostHandler.ListPosts)
			posts.GET("/by-hashtag/:tag/", deps.PostHandler.ListByHashtag)
			posts.GET("/:id/", deps.PostHandler.GetPost)

			postsPrivate := posts.Group("")
			postsPrivate.Use(RequireUser())
			{
				postsPrivate.POST("/", deps.PostHandler.CreatePost)
				postsPrivate.PUT("/:id/", deps.PostHandler.UpdatePost)
				postsPrivate.PATCH("/:id/", deps.PostHandler.UpdatePost)
				postsPrivate.DELETE("/:id/", deps.PostHandler.DeletePost)
			}
		}
	}

	return router
}
