package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/tranki-app/tranki-backend/internal/config"
)

var (
	// fsClient is the global Firestore client instance.
	fsClient *firestore.Client
	// fbAuthClient is the global Firebase Auth client instance.
	fbAuthClient *auth.Client
)

// InitFirestore initializes the Firebase Admin SDK and sets up the Firestore and Auth clients.
// Credentials come from a service account file, a Base64 encoded service account JSON,
// or Application Default Credentials, in that order.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist; falling back to ADC may fail",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with Base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	var firebaseAppConfig *firebase.Config
	if appConfig.FirebaseProjectID != "" {
		firebaseAppConfig = &firebase.Config{ProjectID: appConfig.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, firebaseAppConfig, opts...)
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authCl, err := app.Auth(ctx)
	if err != nil {
		client.Close() // Best effort close
		return fmt.Errorf("app.Auth: %w", err)
	}

	fsClient = client
	fbAuthClient = authCl
	logger.Info("Firestore and Firebase Auth clients initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the global Firestore client.
// Callers should check if the client is nil, implying InitFirestore hasn't been called or failed.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// Close releases the Firestore client.
func Close() error {
	if fsClient == nil {
		return nil
	}
	return fsClient.Close()
}
