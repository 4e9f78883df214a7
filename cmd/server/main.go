package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/api"
	"github.com/tranki-app/tranki-backend/internal/clients/groq"
	"github.com/tranki-app/tranki-backend/internal/clients/media"
	"github.com/tranki-app/tranki-backend/internal/clients/places"
	"github.com/tranki-app/tranki-backend/internal/config"
	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/crypto"
	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/events"
	"github.com/tranki-app/tranki-backend/internal/middleware"
	"github.com/tranki-app/tranki-backend/internal/realtime"
	"github.com/tranki-app/tranki-backend/pkg/cache"
	"github.com/tranki-app/tranki-backend/pkg/messagequeue"
)

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	if os.Getenv("GIN_MODE") != gin.ReleaseMode {
		// A missing .env file is fine; the environment may already be set.
		_ = godotenv.Load()
	}

	// --- 1. Logger ---
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Firebase Admin SDK (Firestore, Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	defer db.Close()

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase clients are nil after initialization. Application cannot start.")
	}

	// --- 4. Encryption ---
	key, err := crypto.DecodeKey(appConfig.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid ENCRYPTION_KEY", zap.Error(err))
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create cipher", zap.Error(err))
	}

	// --- 5. Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	emotionRepo := db.NewFirestoreEmotionRepository(firestoreClient)
	scheduleRepo := db.NewFirestoreScheduleRepository(firestoreClient)
	friendRepo := db.NewFirestoreFriendRepository(firestoreClient)
	feedRepo := db.NewFirestoreFeedRepository(firestoreClient)
	chatRepo := db.NewFirestoreChatRepository(firestoreClient)

	// --- 6. Upstream clients ---
	uploader, err := media.NewCloudinaryUploader(appConfig.CloudinaryURL, appConfig.CloudinaryFolder)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Cloudinary", zap.Error(err))
	}
	chatClient := groq.NewClient(groq.Config{
		BaseURL: appConfig.GroqBaseURL,
		APIKey:  appConfig.GroqAPIKey,
		Model:   appConfig.GroqModel,
	})
	placesClient := places.NewClient(places.Config{
		BaseURL: appConfig.GooglePlacesBaseURL,
		APIKey:  appConfig.GooglePlacesAPIKey,
	})

	var placesCache cache.Cache
	redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
		Address:  appConfig.RedisAddress,
		Password: appConfig.RedisPassword,
		DB:       appConfig.RedisDB,
		Prefix:   "tranki:",
	}, zapLogger)
	if err != nil {
		zapLogger.Warn("Redis unavailable, using in-memory places cache", zap.Error(err))
		placesCache = cache.NewMemoryCache()
	} else {
		defer redisCache.Close()
		placesCache = redisCache
	}

	// --- 7. Social event fan-out ---
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	hub := realtime.NewHub(appConfig.AllowedOrigins(), zapLogger)
	go hub.Run(rootCtx)
	publishers := core.Publishers{hub}

	if appConfig.RabbitMQURL != "" {
		queue, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable, email notifications disabled", zap.Error(err))
		} else {
			defer queue.Close()
			publishers = append(publishers, events.NewQueuePublisher(queue, appConfig.NotificationsQueue, zapLogger))
			zapLogger.Info("Social events published to queue", zap.String("queue", appConfig.NotificationsQueue))
		}
	}

	// --- 8. Services ---
	emotionService := core.NewEmotionService(emotionRepo, appConfig.Location(), zapLogger)
	services := api.Services{
		Users:    core.NewUserService(userRepo, uploader, zapLogger),
		Emotions: emotionService,
		Schedule: core.NewScheduleService(scheduleRepo, zapLogger),
		Social:   core.NewSocialService(userRepo, friendRepo, feedRepo, publishers, zapLogger),
		Chat:     core.NewChatService(chatRepo, chatClient, cipher, emotionService, appConfig.ChatHistorySize, zapLogger),
		Places:   core.NewPlacesService(placesClient, placesCache, appConfig.PlacesCacheTTL, zapLogger),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 9. Gin engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	var chatLimiter *middleware.RateLimiter
	if appConfig.ChatRateLimit > 0 {
		chatLimiter = middleware.NewRateLimiter(appConfig.ChatRateLimit, time.Minute)
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, zapLogger)
	api.SetupRoutes(router, zapLogger, authMW, chatLimiter, hub, services)

	// --- 10. HTTP server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful shutdown ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	cancelRoot()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
