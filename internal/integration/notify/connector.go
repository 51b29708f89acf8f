package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/pseudolawyer/negotiation-backend/internal/config"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/integration/common"
	pkghttp "github.com/pseudolawyer/negotiation-backend/pkg/http"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.NotifyConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.NotifyConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// NotifyMessage pushes a message.created event. Failures are logged and
// swallowed: delivery to the webhook never affects the negotiation itself.
func (c *Connector) NotifyMessage(ctx context.Context, negotiationID string, message *entity.Message) {
	err := c.send(ctx, &entity.NotifyEvent{
		Event:         entity.NotifyEventTypeMessage,
		NegotiationID: negotiationID,
		Data:          message,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send message event", zap.Error(err))
	}
}

// NotifyFinalized pushes a negotiation.finalized event.
func (c *Connector) NotifyFinalized(ctx context.Context, negotiationID string, contract *entity.Contract) {
	err := c.send(ctx, &entity.NotifyEvent{
		Event:         entity.NotifyEventTypeFinalized,
		NegotiationID: negotiationID,
		Data:          contract,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send finalized event", zap.Error(err))
	}
}

func (c *Connector) send(ctx context.Context, event *entity.NotifyEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending notify event",
		zap.String("event_type", string(event.Event)),
		zap.String("negotiation_id", event.NegotiationID),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithURL(c.config.Endpoint),
	}

	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, "", event, nil, opts...)
		},
		append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...,
	)
	if err != nil {
		return fmt.Errorf("failed to send notify event, event_type: %s, error: %w", string(event.Event), err)
	}

	ctxzap.Info(ctx, "notify event sent",
		zap.String("event_type", string(event.Event)),
		zap.String("negotiation_id", event.NegotiationID),
	)
	return nil
}

// NoopConnector is used when no webhook endpoint is configured.
type NoopConnector struct{}

func NewNoopConnector() *NoopConnector {
	return &NoopConnector{}
}

func (n *NoopConnector) NotifyMessage(ctx context.Context, negotiationID string, message *entity.Message) {
}

func (n *NoopConnector) NotifyFinalized(ctx context.Context, negotiationID string, contract *entity.Contract) {
}
