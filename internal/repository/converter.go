package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func uuidString(id pgtype.UUID) string {
	return uuid.UUID(id.Bytes).String()
}

func optionalUUIDString(id pgtype.UUID) *string {
	if !id.Valid {
		return nil
	}
	s := uuidString(id)
	return &s
}

func scanNegotiation(row rowScanner) (*entity.Negotiation, error) {
	var (
		id, templateID, createdBy pgtype.UUID
		status                    string
		contractData              []byte
		negotiation               entity.Negotiation
		createdAt, updatedAt      pgtype.Timestamptz
	)

	err := row.Scan(&id, &templateID, &negotiation.Title, &status, &contractData, &createdBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	negotiation.ID = uuidString(id)
	negotiation.TemplateID = optionalUUIDString(templateID)
	negotiation.Status = entity.NegotiationStatus(status)
	negotiation.CreatedBy = uuidString(createdBy)
	negotiation.CreatedAt = createdAt.Time
	negotiation.UpdatedAt = updatedAt.Time

	if len(contractData) > 0 {
		if err := json.Unmarshal(contractData, &negotiation.ContractData); err != nil {
			return nil, fmt.Errorf("decode contract data: %w", err)
		}
	}
	if negotiation.ContractData.AgreedTerms == nil {
		negotiation.ContractData = entity.NewContractData(negotiation.ContractData.TemplateName)
	}

	return &negotiation, nil
}

func scanParticipant(row rowScanner) (*entity.Participant, error) {
	var (
		id, negotiationID, userID pgtype.UUID
		role, status              string
		joinedAt, agreedAt        pgtype.Timestamptz
		participant               entity.Participant
	)

	err := row.Scan(&id, &negotiationID, &userID, &participant.Email, &role, &status, &joinedAt, &agreedAt)
	if err != nil {
		return nil, err
	}

	participant.ID = uuidString(id)
	participant.NegotiationID = uuidString(negotiationID)
	participant.UserID = optionalUUIDString(userID)
	participant.Role = entity.ParticipantRole(role)
	participant.Status = entity.ParticipantStatus(status)
	if joinedAt.Valid {
		t := joinedAt.Time
		participant.JoinedAt = &t
	}
	if agreedAt.Valid {
		t := agreedAt.Time
		participant.AgreedAt = &t
	}

	return &participant, nil
}

func scanMessage(row rowScanner) (*entity.Message, error) {
	var (
		id, negotiationID, senderID pgtype.UUID
		senderType                  string
		metadata                    []byte
		createdAt                   pgtype.Timestamptz
		message                     entity.Message
	)

	err := row.Scan(&id, &negotiationID, &senderID, &senderType, &message.Content, &metadata, &createdAt)
	if err != nil {
		return nil, err
	}

	message.ID = uuidString(id)
	message.NegotiationID = uuidString(negotiationID)
	message.SenderID = optionalUUIDString(senderID)
	message.SenderType = entity.SenderType(senderType)
	message.CreatedAt = createdAt.Time

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &message.Metadata); err != nil {
			return nil, fmt.Errorf("decode message metadata: %w", err)
		}
	}

	return &message, nil
}

func scanContract(row rowScanner) (*entity.Contract, error) {
	var (
		id, negotiationID        pgtype.UUID
		finalContent, signatures []byte
		pdfPath                  pgtype.Text
		createdAt                pgtype.Timestamptz
		contract                 entity.Contract
	)

	err := row.Scan(&id, &negotiationID, &contract.Title, &finalContent, &pdfPath, &signatures, &createdAt)
	if err != nil {
		return nil, err
	}

	contract.ID = uuidString(id)
	contract.NegotiationID = uuidString(negotiationID)
	contract.CreatedAt = createdAt.Time
	if pdfPath.Valid {
		p := pdfPath.String
		contract.PDFPath = &p
	}

	if len(finalContent) > 0 {
		if err := json.Unmarshal(finalContent, &contract.FinalContent); err != nil {
			return nil, fmt.Errorf("decode final content: %w", err)
		}
	}
	contract.SignedBy = []entity.SignatureRecord{}
	if len(signatures) > 0 {
		if err := json.Unmarshal(signatures, &contract.SignedBy); err != nil {
			return nil, fmt.Errorf("decode signatures: %w", err)
		}
	}

	return &contract, nil
}

func scanProfile(row rowScanner) (*entity.Profile, error) {
	var (
		id                   pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
		profile              entity.Profile
	)

	err := row.Scan(&id, &profile.FullName, &profile.Email, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	profile.ID = uuidString(id)
	profile.CreatedAt = createdAt.Time
	profile.UpdatedAt = updatedAt.Time

	return &profile, nil
}

func scanTemplate(row rowScanner) (*entity.Template, error) {
	var (
		id          pgtype.UUID
		description pgtype.Text
		content     []byte
		createdAt   pgtype.Timestamptz
		template    entity.Template
	)

	err := row.Scan(&id, &template.Name, &description, &template.Category, &content, &createdAt)
	if err != nil {
		return nil, err
	}

	template.ID = uuidString(id)
	template.CreatedAt = createdAt.Time
	if description.Valid {
		d := description.String
		template.Description = &d
	}

	if len(content) > 0 {
		if err := json.Unmarshal(content, &template.Content); err != nil {
			return nil, fmt.Errorf("decode template content: %w", err)
		}
	}

	return &template, nil
}
