package core

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	maxChatMessageLength = 2000
	// DefaultChatHistorySize is the history window used when none is configured.
	DefaultChatHistorySize = 20
	// DefaultHistoryLimit and MaxHistoryLimit bound GetHistory.
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
	insightContextDays  = 7
)

// SystemPrompt frames the assistant as a supportive wellness companion.
const SystemPrompt = "Eres Tranki, un asistente de bienestar emocional empático y cercano. " +
	"Responde siempre en español, con frases breves y un tono cálido. " +
	"Ofrece técnicas sencillas de respiración, pausas activas y organización del tiempo cuando sea útil. " +
	"No das diagnósticos médicos; si detectas una crisis o riesgo, recomienda buscar ayuda profesional " +
	"o contactar a una línea de emergencia local."

// InsightSource provides the emotion summary used as chat context.
type InsightSource interface {
	GetInsights(ctx context.Context, userID string, days int) (*models.Insights, error)
}

type chatService struct {
	chatRepo    db.ChatRepository
	completer   ChatCompleter
	cipher      TextCipher
	insights    InsightSource
	historySize int
	logger      *zap.Logger
	now         func() time.Time
}

// NewChatService creates a ChatService. insights may be nil to omit the emotion context.
func NewChatService(chatRepo db.ChatRepository, completer ChatCompleter, cipher TextCipher, insights InsightSource, historySize int, logger *zap.Logger) ChatService {
	if historySize <= 0 {
		historySize = DefaultChatHistorySize
	}
	return &chatService{
		chatRepo:    chatRepo,
		completer:   completer,
		cipher:      cipher,
		insights:    insights,
		historySize: historySize,
		logger:      logger,
		now:         time.Now,
	}
}

// SendMessage sends text with the recent history to the model and stores both turns.
// Nothing is stored when the model call fails.
func (s *chatService) SendMessage(ctx context.Context, userID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		return nil, fmt.Errorf("%w: message must be at most %d characters", ErrEmptyMessage, maxChatMessageLength)
	}

	history, err := s.loadHistory(ctx, userID, s.historySize)
	if err != nil {
		return nil, err
	}

	prompt := make([]models.ChatMessage, 0, len(history)+3)
	prompt = append(prompt, models.ChatMessage{Role: models.RoleSystem, Content: SystemPrompt})
	if summary := s.insightSummary(ctx, userID); summary != "" {
		prompt = append(prompt, models.ChatMessage{Role: models.RoleSystem, Content: summary})
	}
	for _, m := range history {
		prompt = append(prompt, *m)
	}
	prompt = append(prompt, models.ChatMessage{Role: models.RoleUser, Content: text})

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("Chat completion failed", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	reply = strings.TrimSpace(reply)

	now := s.now().UTC()
	userMsg := &models.ChatMessage{Role: models.RoleUser, Content: text, CreatedAt: now}
	// The reply sorts after the question even when both land in the same instant.
	assistantMsg := &models.ChatMessage{Role: models.RoleAssistant, Content: reply, CreatedAt: now.Add(time.Millisecond)}
	for _, m := range []*models.ChatMessage{userMsg, assistantMsg} {
		if err := s.store(ctx, userID, m); err != nil {
			return nil, err
		}
	}
	return assistantMsg, nil
}

func (s *chatService) store(ctx context.Context, userID string, msg *models.ChatMessage) error {
	encrypted, err := s.cipher.Encrypt(msg.Content)
	if err != nil {
		return fmt.Errorf("failed to encrypt chat message: %w", err)
	}
	stored := *msg
	stored.Content = encrypted
	id, err := s.chatRepo.Add(ctx, userID, &stored)
	if err != nil {
		return fmt.Errorf("failed to store chat message for user '%s': %w", userID, err)
	}
	msg.ID = id
	return nil
}

// loadHistory returns the last limit messages, decrypted, oldest first.
// Messages that cannot be decrypted are skipped.
func (s *chatService) loadHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	stored, err := s.chatRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history for user '%s': %w", userID, err)
	}
	out := make([]*models.ChatMessage, 0, len(stored))
	for _, m := range stored {
		plain, err := s.cipher.Decrypt(m.Content)
		if err != nil {
			s.logger.Warn("Skipping undecryptable chat message",
				zap.String("userID", userID), zap.String("messageID", m.ID), zap.Error(err))
			continue
		}
		m.Content = plain
		out = append(out, m)
	}
	return out, nil
}

func (s *chatService) insightSummary(ctx context.Context, userID string) string {
	if s.insights == nil {
		return ""
	}
	in, err := s.insights.GetInsights(ctx, userID, insightContextDays)
	if err != nil {
		s.logger.Warn("Chat context without insights", zap.String("userID", userID), zap.Error(err))
		return ""
	}
	if in.TotalRecords == 0 {
		return ""
	}
	return fmt.Sprintf("Contexto del usuario (últimos %d días): %d registros emocionales, "+
		"promedio %.2f en escala de 1 (estresado) a 3 (tranki), emoción predominante %q, tendencia %q, racha de %d días.",
		in.Days, in.TotalRecords, in.AverageValue, in.DominantEmotion, in.Trend, in.StreakDays)
}

func (s *chatService) GetHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.loadHistory(ctx, userID, limit)
}

func (s *chatService) ClearHistory(ctx context.Context, userID string) (int, error) {
	n, err := s.chatRepo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear chat history for user '%s': %w", userID, err)
	}
	s.logger.Info("Cleared chat history", zap.String("userID", userID), zap.Int("messages", n))
	return n, nil
}
