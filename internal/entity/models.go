package entity

import (
	"fmt"
	"time"
)

type NegotiationStatus string

// Negotiation status represents the lifecycle state of a negotiation.
// The only legal transitions are active -> completed and active -> cancelled;
// both terminal states are immutable.
const (
	NegotiationStatusActive    NegotiationStatus = "active"
	NegotiationStatusCompleted NegotiationStatus = "completed"
	NegotiationStatusCancelled NegotiationStatus = "cancelled"
)

func (s NegotiationStatus) Validate() error {
	switch s {
	case NegotiationStatusActive, NegotiationStatusCompleted, NegotiationStatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown negotiation status: %s", s)
	}
}

// Terminal reports whether the status accepts no further mutations.
func (s NegotiationStatus) Terminal() bool {
	return s == NegotiationStatusCompleted || s == NegotiationStatusCancelled
}

type ParticipantRole string

const (
	ParticipantRoleInitiator ParticipantRole = "initiator"
	ParticipantRoleParty     ParticipantRole = "party"
)

// DisplayRole maps the stored role to the label used in generated contracts.
func (r ParticipantRole) DisplayRole() string {
	if r == ParticipantRoleInitiator {
		return "First Party"
	}
	return "Second Party"
}

type ParticipantStatus string

// Participant status only ever advances: pending -> joined -> agreed.
const (
	ParticipantStatusPending ParticipantStatus = "pending"
	ParticipantStatusJoined  ParticipantStatus = "joined"
	ParticipantStatusAgreed  ParticipantStatus = "agreed"
)

func (s ParticipantStatus) rank() int {
	switch s {
	case ParticipantStatusPending:
		return 0
	case ParticipantStatusJoined:
		return 1
	case ParticipantStatusAgreed:
		return 2
	}
	return -1
}

// CanAdvanceTo reports whether moving to next is a legal forward transition.
func (s ParticipantStatus) CanAdvanceTo(next ParticipantStatus) bool {
	return next.rank() > s.rank()
}

type SenderType string

const (
	SenderTypeUser SenderType = "user"
	SenderTypeAI   SenderType = "ai"
)

func (t SenderType) Validate() error {
	switch t {
	case SenderTypeUser, SenderTypeAI:
		return nil
	default:
		return fmt.Errorf("unknown sender type: %s", t)
	}
}

// Profile is an account directory entry. The backend treats the directory
// as read-only: profiles are created by the identity service.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Template is a predefined contract structure (e.g. an NDA) guiding which
// sections and fields a negotiation is expected to settle.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Content     TemplateContent `json:"content"`
	CreatedAt   time.Time       `json:"created_at"`
}

type TemplateContent struct {
	Title        string            `json:"title"`
	Sections     []TemplateSection `json:"sections"`
	DefaultTerms map[string]string `json:"defaultTerms"`
}

type TemplateSection struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Fields      []TemplateField `json:"fields"`
}

type TemplateField struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Type         string   `json:"type"`
	Placeholder  string   `json:"placeholder,omitempty"`
	Options      []string `json:"options,omitempty"`
	Required     bool     `json:"required"`
	DefaultValue string   `json:"defaultValue,omitempty"`
}

// Negotiation is one mediated session over a contract. TemplateID is nil for
// custom contracts.
type Negotiation struct {
	ID           string            `json:"id"`
	TemplateID   *string           `json:"template_id,omitempty"`
	Title        string            `json:"title"`
	Status       NegotiationStatus `json:"status"`
	ContractData ContractData      `json:"contract_data"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ContractData is the mutable negotiated state carried by a negotiation.
type ContractData struct {
	TemplateName  string                  `json:"templateName"`
	AgreedTerms   map[string]string       `json:"agreedTerms"`
	DisputedTerms map[string]DisputedTerm `json:"disputedTerms"`
	Sections      map[string]SectionData  `json:"sections"`
}

type DisputedTerm struct {
	PartyA string `json:"partyA"`
	PartyB string `json:"partyB"`
}

type SectionData map[string]string

// NewContractData returns contract data with all maps initialised so callers
// never nil-check before writing a term.
func NewContractData(templateName string) ContractData {
	return ContractData{
		TemplateName:  templateName,
		AgreedTerms:   map[string]string{},
		DisputedTerms: map[string]DisputedTerm{},
		Sections:      map[string]SectionData{},
	}
}

// Participant is one human party attached to a negotiation. UserID stays nil
// until an invited email is claimed by an account.
type Participant struct {
	ID            string            `json:"id"`
	NegotiationID string            `json:"negotiation_id"`
	UserID        *string           `json:"user_id,omitempty"`
	Email         string            `json:"email"`
	Role          ParticipantRole   `json:"role"`
	Status        ParticipantStatus `json:"status"`
	JoinedAt      *time.Time        `json:"joined_at,omitempty"`
	AgreedAt      *time.Time        `json:"agreed_at,omitempty"`
	Profile       *Profile          `json:"profile,omitempty"`
}

// DisplayName prefers the resolved profile name and falls back to the
// invited email's local part.
func (p *Participant) DisplayName() string {
	if p.Profile != nil && p.Profile.FullName != "" {
		return p.Profile.FullName
	}
	for i := 0; i < len(p.Email); i++ {
		if p.Email[i] == '@' {
			return p.Email[:i]
		}
	}
	if p.Email != "" {
		return p.Email
	}
	return "Unknown"
}

// Message is one turn in a negotiation's conversation. SenderID is non-nil
// exactly when SenderType is user; the log is append-only.
type Message struct {
	ID            string          `json:"id"`
	NegotiationID string          `json:"negotiation_id"`
	SenderID      *string         `json:"sender_id,omitempty"`
	SenderType    SenderType      `json:"sender_type"`
	Content       string          `json:"content"`
	Metadata      MessageMetadata `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
	SenderName    string          `json:"sender_name,omitempty"`
}

// MessageMetadata carries optional structured annotations on a message.
type MessageMetadata struct {
	Suggestion    bool        `json:"suggestion,omitempty"`
	TermReference string      `json:"termReference,omitempty"`
	AgreedTerm    *AgreedTerm `json:"agreedTerm,omitempty"`
}

type AgreedTerm struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Contract is the finalized artifact: at most one per negotiation, immutable
// after creation except for appended signature records.
type Contract struct {
	ID            string            `json:"id"`
	NegotiationID string            `json:"negotiation_id"`
	Title         string            `json:"title"`
	FinalContent  FinalContent      `json:"final_content"`
	PDFPath       *string           `json:"pdf_path,omitempty"`
	SignedBy      []SignatureRecord `json:"signed_by"`
	CreatedAt     time.Time         `json:"created_at"`
}

// FinalContent is the deterministic snapshot persisted at finalize time.
type FinalContent struct {
	TemplateName  string                 `json:"templateName"`
	Parties       []ContractParty        `json:"parties"`
	Terms         map[string]string      `json:"terms"`
	Sections      map[string]SectionData `json:"sections,omitempty"`
	GeneratedText string                 `json:"generatedText"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}

type ContractParty struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type SignatureRecord struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	SignedAt time.Time `json:"signed_at"`
}

// Signed reports whether the given user already has a signature record.
func (c *Contract) Signed(userID string) bool {
	for _, s := range c.SignedBy {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
