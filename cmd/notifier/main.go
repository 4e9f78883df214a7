package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/config"
	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/events"
	"github.com/tranki-app/tranki-backend/pkg/mailer"
	"github.com/tranki-app/tranki-backend/pkg/messagequeue"
)

// notifier consumes social events from RabbitMQ and emails their target users.
func main() {
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadNotifierConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load notifier configuration", zap.Error(err))
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore", zap.Error(err))
	}
	defer db.Close()

	sender, err := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUser,
		Password: appConfig.SMTPPassword,
		Sender:   appConfig.MailSender,
	})
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid SMTP configuration", zap.Error(err))
	}

	queue, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL, Prefetch: 10}, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer queue.Close()

	notifier := events.NewNotifier(db.NewFirestoreUserRepository(db.GetFirestoreClient()), sender, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Notifier started", zap.String("queue", appConfig.NotificationsQueue))
	if err := queue.Consume(ctx, appConfig.NotificationsQueue, notifier.Handle); err != nil {
		if errors.Is(err, messagequeue.ErrChannelClosed) {
			zapLogger.Error("RabbitMQ closed the delivery channel; exiting so the supervisor restarts the worker")
			os.Exit(1)
		}
		zapLogger.Fatal("Consumer stopped", zap.Error(err))
	}
	zapLogger.Info("Notifier exiting gracefully.")
}
