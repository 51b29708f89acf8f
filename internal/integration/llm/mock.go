package llm

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is a canned-response stand-in for the text-generation
// gateway, used for local development without an API key.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Mediate(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting mediator response", zap.Int("message_count", len(messages)))

	reply := "Thank you for sharing that. To keep the discussion moving, could the other party " +
		"respond to this point? Once both of you align on it, I will record it as an agreed term. " +
		"If it helps, consider proposing a concrete number or date rather than a range."

	ctxzap.Info(ctx, "[MOCK] mediator response produced", zap.Int("result_length", len(reply)))
	return reply, nil
}

func (m *MockConnector) GenerateContract(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting contract generation", zap.Int("message_count", len(messages)))

	text := `AGREEMENT

This Agreement is entered into by and between the parties identified below.

1. PURPOSE
The parties wish to formalize the terms discussed during their negotiation.

2. TERMS
The parties agree to the terms recorded during the negotiation session. Each
term listed as agreed forms a binding part of this Agreement.

3. TERM AND TERMINATION
This Agreement takes effect on the date of the last signature below and
remains in force until the obligations of both parties are fulfilled.

4. GOVERNING LAW
This Agreement is governed by the laws agreed by the parties or, absent such
agreement, the laws of the jurisdiction where it was signed.

IN WITNESS WHEREOF, the parties have executed this Agreement as of the date
of the last signature.

(Generated by mock gateway)`

	ctxzap.Info(ctx, "[MOCK] contract text produced", zap.Int("result_length", len(text)))
	return text, nil
}
