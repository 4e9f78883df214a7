package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/middleware"
)

// Services groups the application services exposed over HTTP.
type Services struct {
	Users    core.UserService
	Emotions core.EmotionService
	Schedule core.ScheduleService
	Social   core.SocialService
	Chat     core.ChatService
	Places   core.PlacesService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is expected to be applied to router
// before this function is called. chatLimiter may be nil.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	chatLimiter *middleware.RateLimiter,
	streamer FeedStreamer,
	services Services,
) {
	userHandler := NewUserHandler(services.Users, logger)
	emotionHandler := NewEmotionHandler(services.Emotions, logger)
	scheduleHandler := NewScheduleHandler(services.Schedule, logger)
	chatHandler := NewChatHandler(services.Chat, logger)
	placesHandler := NewPlacesHandler(services.Places, logger)
	friendHandler := NewFriendHandler(services.Social, logger)
	feedHandler := NewFeedHandler(services.Social, logger)
	realtimeHandler := NewRealtimeHandler(streamer, logger)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		users := apiV1.Group("/users")
		{
			users.POST("/initialize", userHandler.InitializeUserProfile)
			users.GET("/me", userHandler.GetCurrentUserProfile)
			users.PUT("/me", userHandler.UpdateProfile)
			users.POST("/me/picture", userHandler.UploadProfilePicture)
			users.GET("/search", userHandler.SearchUsers)
		}

		emotions := apiV1.Group("/emotions")
		{
			emotions.POST("", emotionHandler.RecordEmotion)
			emotions.GET("", emotionHandler.ListEmotions)
			emotions.GET("/daily", emotionHandler.GetDailyAverages)
			emotions.GET("/insights", emotionHandler.GetInsights)
			emotions.DELETE("/:emotionId", emotionHandler.DeleteEmotion)
		}

		schedule := apiV1.Group("/schedule")
		{
			schedule.GET("", scheduleHandler.GetSchedule)
			schedule.PUT("", scheduleHandler.SaveSchedule)
			schedule.GET("/free-slots/:day", scheduleHandler.GetFreeSlots)
			schedule.GET("/sleep", scheduleHandler.GetSleepAnalysis)
			schedule.GET("/summary", scheduleHandler.GetWeeklySummary)
		}

		chat := apiV1.Group("/chat")
		{
			send := []gin.HandlerFunc{chatHandler.SendMessage}
			if chatLimiter != nil {
				send = append([]gin.HandlerFunc{chatLimiter.Middleware()}, send...)
			}
			chat.POST("/messages", send...)
			chat.GET("/messages", chatHandler.GetHistory)
			chat.DELETE("/messages", chatHandler.ClearHistory)
		}

		places := apiV1.Group("/places")
		{
			places.GET("/nearby", placesHandler.Nearby)
			places.GET("/:placeId", placesHandler.PlaceDetails)
		}

		friends := apiV1.Group("/friends")
		{
			friends.POST("/requests", friendHandler.SendFriendRequest)
			friends.GET("/requests", friendHandler.ListRequests)
			friends.POST("/requests/:fromUserId/accept", friendHandler.AcceptFriendRequest)
			friends.POST("/requests/:fromUserId/reject", friendHandler.RejectFriendRequest)
			friends.GET("", friendHandler.ListFriends)
			friends.DELETE("/:friendId", friendHandler.RemoveFriend)
		}

		feed := apiV1.Group("/feed")
		{
			feed.POST("", feedHandler.ShareState)
			feed.GET("", feedHandler.GetFeed)
			feed.DELETE("/:stateId", feedHandler.DeleteSharedState)
			feed.POST("/:stateId/like", feedHandler.LikeState)
			feed.DELETE("/:stateId/like", feedHandler.UnlikeState)
			feed.POST("/:stateId/comments", feedHandler.CommentOnState)
		}
	}

	// Browsers cannot set headers on a websocket handshake.
	router.GET("/ws", authMW.VerifyQueryToken(), realtimeHandler.Connect)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Tranki backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1, /ws and /health.")
}
