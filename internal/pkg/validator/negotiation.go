package validator

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// ValidateCreateNegotiation validates CreateNegotiationRequest
func (v *Validator) ValidateCreateNegotiation(req *entity.CreateNegotiationRequest) error {
	if req.Title != nil && len(*req.Title) > v.maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", entity.ErrInvalidParameter, v.maxTitleLength)
	}

	if req.CounterpartyEmail != nil && *req.CounterpartyEmail != "" {
		if _, err := mail.ParseAddress(*req.CounterpartyEmail); err != nil {
			return fmt.Errorf("%w: counterparty_email", entity.ErrInvalidParameter)
		}
	}

	return nil
}

// ValidateSendMessage validates SendMessageRequest
func (v *Validator) ValidateSendMessage(req *entity.SendMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content", entity.ErrMissingField)
	}
	if len(req.Content) > v.maxMessageLength {
		return fmt.Errorf("%w: content exceeds %d characters", entity.ErrInvalidParameter, v.maxMessageLength)
	}

	return nil
}

// ValidateAgreeTerm validates AgreeTermRequest
func (v *Validator) ValidateAgreeTerm(req *entity.AgreeTermRequest) error {
	if !req.Final && strings.TrimSpace(req.Key) == "" {
		return fmt.Errorf("%w: key", entity.ErrMissingField)
	}
	if req.Key != "" && strings.TrimSpace(req.Value) == "" {
		return fmt.Errorf("%w: value", entity.ErrMissingField)
	}

	return nil
}
