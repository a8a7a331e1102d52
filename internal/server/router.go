package server

import (
	"net/http"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/config"
	"meetup-backend/internal/metrics"
	"meetup-backend/internal/mw"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// SetupRouter wires middleware and every HTTP route.
func SetupRouter(cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env, cfg.CORSOrigins...))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Credential endpoints are throttled per IP and route.
	limit := mw.RateLimit(rate.Every(time.Second/5), 20)

	// Public Routes
	r.POST("/signup", limit, h.Signup)
	r.POST("/login", limit, h.Login)

	api := r.Group("/api")
	api.POST("/signup", limit, h.Signup)
	api.POST("/login", limit, h.Login)
	api.POST("/recover-password", limit, h.RecoverPassword)
	api.POST("/reset-password", limit, h.ResetPassword)
	api.PUT("/reset-password", limit, h.ResetPasswordBearer)
	api.GET("/event-types", h.ListEventTypes)

	// Protected Routes
	authorized := api.Group("")
	authorized.Use(auth.Middleware(cfg.JWTSecret))
	{
		// USERS
		authorized.GET("/valid-token", h.ValidToken)
		authorized.GET("/users/me", h.Me)
		authorized.DELETE("/users/me", h.DeleteMe)
		authorized.PUT("/users/me/profile", h.PutProfile)
		authorized.GET("/users/:id/profile", h.GetProfile)
		authorized.POST("/users/me/images", h.UploadImage)
		authorized.GET("/users/me/images", h.ListImages)

		// EVENTS
		authorized.POST("/events", h.CreateEvent)
		authorized.GET("/events/mine", h.MyEvents)
		authorized.GET("/events/:id", h.GetEvent)
		authorized.PUT("/events/:id", h.UpdateEvent)
		authorized.DELETE("/events/:id", h.DeleteEvent)
		authorized.GET("/events/:id/status", h.EventStatus)
		authorized.PUT("/events/:id/status", h.SetEventStatus)

		// MEMBERS
		authorized.POST("/events/:id/join", h.JoinEvent)
		authorized.GET("/events/:id/members", h.EventMembers)
		authorized.PUT("/events/:id/members/:member_id", h.SetMemberStatus)

		// FAVORITES
		authorized.POST("/events/:id/favorite", h.AddFavorite)
		authorized.DELETE("/events/:id/favorite", h.RemoveFavorite)
		authorized.GET("/favorites", h.ListFavorites)

		// CHATS
		authorized.POST("/events/:id/private-chats", h.CreatePrivateChat)
		authorized.POST("/events/:id/group-chats", h.CreateGroupChat)
		authorized.POST("/chats/:kind/:chat_id/users", h.AddChatUser)
		authorized.POST("/chats/:kind/:chat_id/messages", h.SendMessage)
		authorized.GET("/chats/:kind/:chat_id/messages", h.ListMessages)
		authorized.DELETE("/chats/:kind/:chat_id", h.DeleteChat)
		authorized.PUT("/messages/:id/delivered", h.MarkDelivered)
		authorized.PUT("/messages/:id/read", h.MarkRead)
	}
	return r
}
