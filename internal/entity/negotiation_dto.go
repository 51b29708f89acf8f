package entity

// CreateNegotiationRequest starts a new negotiation. TemplateID and Title are
// optional; CounterpartyEmail invites the second party at creation time.
type CreateNegotiationRequest struct {
	TemplateID        *string `json:"template_id,omitempty"`
	Title             *string `json:"title,omitempty"`
	CounterpartyEmail *string `json:"counterparty_email,omitempty"`
}

type SendMessageRequest struct {
	Content  string           `json:"content"`
	Metadata *MessageMetadata `json:"metadata,omitempty"`
}

type AgreeTermRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Final marks the caller's overall agreement with the negotiated terms,
	// advancing their participant status to agreed.
	Final bool `json:"final,omitempty"`
}

// ConversationTurn is the outcome of posting one user message: the persisted
// message and, when mediation succeeded, the mediator's reply.
type ConversationTurn struct {
	UserMessage *Message `json:"user_message"`
	AIMessage   *Message `json:"ai_message,omitempty"`
}

// RenderedDocument is a contract exported to a downloadable format.
type RenderedDocument struct {
	Data        []byte
	ContentType string
	Filename    string
}

// NegotiationDTO is the API representation of a negotiation with its roster.
type NegotiationDTO struct {
	Negotiation
	Participants []*Participant `json:"participants,omitempty"`
	TemplateName string         `json:"template_name,omitempty"`
}
