package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/pseudolawyer/negotiation-backend/internal/config"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/integration/common"
	pkghttp "github.com/pseudolawyer/negotiation-backend/pkg/http"
	"go.uber.org/zap"
)

const chatCompletionsEndpoint = "/chat/completions"

type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Mediate produces the mediator's conversational reply to the running
// negotiation. The caller supplies the fully composed message list (persona,
// history, contextualized latest message).
func (c *Connector) Mediate(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "requesting mediator response", zap.Int("message_count", len(messages)))

	content, usage, err := c.complete(ctx, messages, c.config.MediationMaxTokens, c.config.MediationTemperature)
	if err != nil {
		return "", fmt.Errorf("mediation request failed: %w", err)
	}

	ctxzap.Info(ctx, "mediator response received",
		zap.Int("result_length", len(content)),
		zap.Int("total_tokens", usage.TotalTokens),
	)

	return content, nil
}

// GenerateContract produces the full text of the final agreement from the
// negotiation transcript and agreed terms.
func (c *Connector) GenerateContract(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "requesting contract generation", zap.Int("message_count", len(messages)))

	content, usage, err := c.complete(ctx, messages, c.config.GenerationMaxTokens, c.config.GenerationTemperature)
	if err != nil {
		return "", fmt.Errorf("contract generation request failed: %w", err)
	}

	ctxzap.Info(ctx, "contract text generated",
		zap.Int("result_length", len(content)),
		zap.Int("total_tokens", usage.TotalTokens),
	)

	return content, nil
}

func (c *Connector) complete(ctx context.Context, messages []entity.ChatMessage, maxTokens int, temperature float64) (
	string, entity.ChatUsage, error,
) {
	req := &entity.ChatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp entity.ChatResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp)
	if err != nil {
		return "", entity.ChatUsage{}, err
	}

	if len(resp.Choices) == 0 {
		return "", entity.ChatUsage{}, fmt.Errorf("invalid completion response: no choices returned")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", entity.ChatUsage{}, fmt.Errorf("invalid completion response: empty message content")
	}

	return content, resp.Usage, nil
}
