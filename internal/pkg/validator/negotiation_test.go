package validator

import (
	"strings"
	"testing"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestValidateCreateNegotiation(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     entity.CreateNegotiationRequest
		wantErr error
	}{
		{
			name: "empty request is valid",
			req:  entity.CreateNegotiationRequest{},
		},
		{
			name: "valid counterparty email",
			req:  entity.CreateNegotiationRequest{CounterpartyEmail: strPtr("bob@example.com")},
		},
		{
			name:    "malformed counterparty email",
			req:     entity.CreateNegotiationRequest{CounterpartyEmail: strPtr("not-an-email")},
			wantErr: entity.ErrInvalidParameter,
		},
		{
			name:    "title too long",
			req:     entity.CreateNegotiationRequest{Title: strPtr(strings.Repeat("x", 201))},
			wantErr: entity.ErrInvalidParameter,
		},
		{
			name: "title at limit",
			req:  entity.CreateNegotiationRequest{Title: strPtr(strings.Repeat("x", 200))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreateNegotiation(&tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSendMessage(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateSendMessage(&entity.SendMessageRequest{Content: "hello"}))

	err := v.ValidateSendMessage(&entity.SendMessageRequest{Content: "   "})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	err = v.ValidateSendMessage(&entity.SendMessageRequest{Content: strings.Repeat("x", 8001)})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestValidateAgreeTerm(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateAgreeTerm(&entity.AgreeTermRequest{Key: "payment", Value: "net 30"}))
	assert.NoError(t, v.ValidateAgreeTerm(&entity.AgreeTermRequest{Final: true}))

	err := v.ValidateAgreeTerm(&entity.AgreeTermRequest{})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	err = v.ValidateAgreeTerm(&entity.AgreeTermRequest{Key: "payment"})
	assert.ErrorIs(t, err, entity.ErrMissingField)
}
