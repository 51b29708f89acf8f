package entity

import "errors"

// Domain errors
var (
	// Lookup errors
	ErrNegotiationNotFound = errors.New("negotiation not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrContractNotFound    = errors.New("contract not found")

	// State errors
	ErrNegotiationNotActive = errors.New("negotiation is not active")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrContractExists       = errors.New("contract already exists for negotiation")
	ErrAlreadyJoined        = errors.New("participant has already joined")

	// Authorization errors
	ErrNotParticipant = errors.New("caller is not a participant of the negotiation")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrSenderMismatch   = errors.New("sender id inconsistent with sender type")
	ErrTooManyParties   = errors.New("negotiations are limited to two parties")

	// External model errors. Both are transient: state is left untouched and
	// the caller decides whether to retry.
	ErrMediationFailed  = errors.New("mediation response failed")
	ErrGenerationFailed = errors.New("contract generation failed")
)
