// Package service implements the ChatService.
//
// ============================================================
// ARCHITECTURE: strategy pattern for topic routing
// ============================================================
//
// Flow:
//  1. The handler receives POST /v1/chat with {"query": "..."}
//  2. ChatService.ProcessMessage detects the intent from keywords
//  3. The first registered strategy whose CanHandle accepts the intent
//     answers; a strategy may decline by returning a nil response
//  4. When nobody answers, the default reply is the spending narrative
//
// Strategies answer from the loaded ledger only. Adding a topic means adding
// a strategy and its keywords.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/chat/domain"
	"github.com/boddenberg/spending-insights-go/internal/chat/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var chatTracer = otel.Tracer("chat/service")

// ============================================================
// ChatStrategy
// ============================================================

// ChatStrategy answers questions about one topic.
type ChatStrategy interface {
	// CanHandle reports whether the strategy covers the intent.
	CanHandle(intent string) bool

	// Handle answers, or returns a nil response to let the next strategy try.
	Handle(ctx context.Context, chatCtx *domain.ChatContext) (*domain.ChatResponse, error)
}

// ============================================================
// ChatService
// ============================================================

// ChatService routes chat messages to strategies.
type ChatService struct {
	insights   port.InsightsReader
	strategies []ChatStrategy
	logger     *zap.Logger
	now        func() time.Time
}

// NewChatService creates the ChatService. Order matters: the first strategy
// that accepts the intent and answers wins.
func NewChatService(insights port.InsightsReader, strategies []ChatStrategy, logger *zap.Logger) *ChatService {
	return &ChatService{
		insights:   insights,
		strategies: strategies,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessMessage answers a chat message.
func (s *ChatService) ProcessMessage(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.ProcessMessage")
	defer span.End()

	intent := detectIntent(req.Query)
	span.SetAttributes(attribute.String("chat.intent", intent))

	current, previous, err := s.insights.Periods("", "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat message received",
		zap.String("intent", intent),
		zap.Int("query_length", len(req.Query)),
	)

	chatCtx := &domain.ChatContext{
		Query:          req.Query,
		DetectedIntent: intent,
		Current:        current,
		Previous:       previous,
	}

	resp, err := s.route(ctx, chatCtx)
	if err != nil {
		return nil, err
	}

	resp.ID = uuid.NewString()
	resp.Timestamp = s.now().UTC().Format(time.RFC3339)
	if resp.Intent == "" {
		resp.Intent = intent
	}
	return resp, nil
}

func (s *ChatService) route(ctx context.Context, chatCtx *domain.ChatContext) (*domain.ChatResponse, error) {
	for _, strategy := range s.strategies {
		if !strategy.CanHandle(chatCtx.DetectedIntent) {
			continue
		}
		resp, err := strategy.Handle(ctx, chatCtx)
		if err != nil {
			s.logger.Error("chat strategy failed",
				zap.String("intent", chatCtx.DetectedIntent),
				zap.Error(err),
			)
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}

	s.logger.Debug("no strategy answered, using default reply",
		zap.String("intent", chatCtx.DetectedIntent),
	)
	return s.defaultHandle(ctx, chatCtx), nil
}

// defaultHandle answers with the spending narrative and a usage hint.
func (s *ChatService) defaultHandle(ctx context.Context, chatCtx *domain.ChatContext) *domain.ChatResponse {
	insight := s.insights.Summary(ctx, chatCtx.Current, chatCtx.Previous)
	return &domain.ChatResponse{
		Intent: domain.IntentGeneral,
		Answer: strings.TrimSpace(insight.Narrative) + " I can help you analyze your " +
			periodName(chatCtx.Current) +
			" spending patterns. Try asking about reducing specific expenses, trend analysis, or category breakdowns.",
	}
}

// ============================================================
// detectIntent
// ============================================================

// intentKeywords is checked in order; the first topic with a matching
// keyword wins.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{domain.IntentDining, []string{"reduce", "dining", "expenses", "food"}},
	{domain.IntentTrend, []string{"trend", "analysis", "pattern", "time"}},
	{domain.IntentCategory, []string{"category", "breakdown", "distribution", "where"}},
	{domain.IntentLuxury, []string{"luxury", "retail"}},
}

func detectIntent(query string) string {
	lower := strings.ToLower(query)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent
			}
		}
	}
	return domain.IntentGeneral
}
