package http

import (
	"time"

	"sales_arena/internal/config"
	"sales_arena/internal/http/handlers"
	"sales_arena/internal/http/middleware"
	"sales_arena/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is what the router needs from main.
type Deps struct {
	Config   *config.Config
	Handler  *handlers.Handler
	Health   *handlers.HealthHandler
	Hub      *ws.Hub
	Limiter  *middleware.MutationLimiter
	Sessions middleware.Authenticator
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestContext(), middleware.AccessLog(), middleware.Metrics())
	r.Use(corsMiddleware(d.Config))

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Websocket authenticates with ?token=
	r.GET("/ws", ws.HandleWS(d.Hub, d.Sessions, d.Config.AllowedOrigins))

	v1 := r.Group("/api/v1")
	v1.Use(
		middleware.RedisRateLimit(d.Config.APIRateLimit, d.Config.APIRateWindow),
		middleware.JWT(d.Sessions),
		d.Limiter.Handler(),
	)
	registerAPIRoutes(v1, d.Handler)
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		// credentials cannot be combined with a literal "*"
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(c)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	// Session
	api.GET("/session", h.Session)
	api.POST("/session/signout", h.SignOut)

	// Profiles
	api.GET("/profile", h.MyProfile)
	api.POST("/profile", h.CreateProfile)
	api.PATCH("/profile", h.UpdateProfile)
	api.GET("/profile/:id", h.Profile)
	api.GET("/profile/:id/stages", h.ProfileStages)
	api.GET("/profile/:id/friends", h.ProfileFriends)
	api.GET("/profile/:id/points-history", h.PointsHistory)
	api.GET("/users/search", h.SearchUsers)
	api.GET("/ranking", h.Ranking)

	// Stages and points
	api.GET("/stages/vocabulary", h.StageVocabulary)
	api.POST("/stages", h.AddStage)
	api.POST("/stages/self", h.AddSelfStage)
	api.POST("/stages/:id/approve", h.ApproveStage)
	api.DELETE("/stages/:id", h.RemoveStage)
	api.POST("/points/adjust", h.AdjustPoints)

	// Teams
	teams := api.Group("/teams")
	{
		teams.GET("", h.MyTeams)
		teams.POST("", h.CreateTeam)
		teams.GET("/rankings", h.TeamRankings)
		teams.GET("/:id", h.Team)
		teams.GET("/:id/members", h.TeamMembers)
		teams.POST("/:id/members", h.InviteMember)
		teams.DELETE("/:id/members/:userId", h.RemoveMember)
		teams.POST("/:id/leave", h.LeaveTeam)
		teams.PATCH("/:id/members/:userId/role", h.UpdateMemberRole)
		teams.PATCH("/:id/members/:userId/rank", h.UpdateMemberRank)
		teams.PATCH("/:id/members/:userId/crystals", h.SetMemberCrystals)
		teams.GET("/:id/stages/pending", h.PendingStages)
		teams.GET("/:id/treasury", h.TreasuryHistory)
		teams.POST("/:id/treasury", h.Contribute)
		teams.GET("/:id/notifications", h.TeamNotifications)
		teams.GET("/:id/notification-settings", h.NotificationSettings)
		teams.PUT("/:id/notification-settings", h.UpdateNotificationSettings)
		teams.GET("/:id/audit", h.TeamAudit)
		teams.GET("/:id/forum/topics", h.ListTopics)
		teams.POST("/:id/forum/topics", h.CreateTopic)
	}

	// Shops
	api.GET("/shop/purchases", h.MyPurchases)
	shop := api.Group("/shop/:kind/items")
	{
		shop.GET("", h.ShopItems)
		shop.POST("", h.CreateShopItem)
		shop.PATCH("/:itemId", h.UpdateShopItem)
		shop.DELETE("/:itemId", h.DeleteShopItem)
		shop.POST("/:itemId/purchase", h.PurchaseItem)
	}

	// Chat
	api.GET("/chat", h.ChatHistory)
	api.POST("/chat", h.SendChat)

	// Forum
	api.GET("/forum/topics/:id", h.GetTopic)
	api.PATCH("/forum/topics/:id", h.UpdateTopic)
	api.DELETE("/forum/topics/:id", h.DeleteTopic)
	api.GET("/forum/topics/:id/replies", h.ListReplies)
	api.POST("/forum/topics/:id/replies", h.CreateReply)
	api.PATCH("/forum/replies/:id", h.UpdateReply)
	api.DELETE("/forum/replies/:id", h.DeleteReply)

	// Friends
	api.GET("/friends", h.Friends)
	api.GET("/friends/incoming", h.IncomingRequests)
	api.POST("/friends", h.SendFriendRequest)
	api.POST("/friends/:id/accept", h.AcceptFriend)
	api.POST("/friends/:id/reject", h.RejectFriend)
	api.DELETE("/friends/:id", h.RemoveFriend)

	// Private messages
	api.GET("/messages", h.Messages)
	api.GET("/messages/conversations", h.Conversations)
	api.GET("/messages/unread", h.UnreadCount)
	api.POST("/messages", h.SendMessage)
	api.POST("/messages/read", h.MarkRead)
}
