package negotiation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. It
// implements every repository interface the use case depends on.
type fakeStore struct {
	mu           sync.Mutex
	now          time.Time
	negotiations map[string]*entity.Negotiation
	participants map[string]*entity.Participant
	messages     []*entity.Message
	contracts    map[string]*entity.Contract
	profiles     map[string]*entity.Profile
	templates    map[string]*entity.Template
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		negotiations: map[string]*entity.Negotiation{},
		participants: map[string]*entity.Participant{},
		contracts:    map[string]*entity.Contract{},
		profiles:     map[string]*entity.Profile{},
		templates:    map[string]*entity.Template{},
	}
}

func (s *fakeStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *fakeStore) addProfile(name, email string) *entity.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Profile{
		ID:       uuid.New().String(),
		FullName: name,
		Email:    strings.ToLower(email),
	}
	s.profiles[p.ID] = p
	return p
}

func (s *fakeStore) addTemplate(name string) *entity.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &entity.Template{
		ID:       uuid.New().String(),
		Name:     name,
		Category: "business",
		Content: entity.TemplateContent{
			Title: name,
			Sections: []entity.TemplateSection{
				{ID: "parties", Title: "Parties", Fields: []entity.TemplateField{
					{ID: "party_a", Label: "First Party", Type: "text", Required: true},
				}},
			},
			DefaultTerms: map[string]string{},
		},
	}
	s.templates[t.ID] = t
	return t
}

// NegotiationRepository

func (s *fakeStore) CreateNegotiation(ctx context.Context, negotiation *entity.Negotiation) (*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *negotiation
	stored.CreatedAt = s.tick()
	stored.UpdatedAt = stored.CreatedAt
	s.negotiations[stored.ID] = &stored
	return &stored, nil
}

func (s *fakeStore) GetNegotiationByID(ctx context.Context, id string) (*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	negotiation, ok := s.negotiations[id]
	if !ok {
		return nil, entity.ErrNegotiationNotFound
	}
	copied := *negotiation
	return &copied, nil
}

func (s *fakeStore) ListNegotiationsByUser(ctx context.Context, userID string) ([]*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.Negotiation
	for _, p := range s.participants {
		if p.UserID != nil && *p.UserID == userID {
			if negotiation, ok := s.negotiations[p.NegotiationID]; ok {
				copied := *negotiation
				result = append(result, &copied)
			}
		}
	}
	return result, nil
}

func (s *fakeStore) TransitionStatus(ctx context.Context, id string, from, to entity.NegotiationStatus) (*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	negotiation, ok := s.negotiations[id]
	if !ok {
		return nil, entity.ErrNegotiationNotFound
	}
	if negotiation.Status != from {
		return nil, entity.ErrInvalidTransition
	}
	negotiation.Status = to
	negotiation.UpdatedAt = s.tick()
	copied := *negotiation
	return &copied, nil
}

func (s *fakeStore) UpdateContractData(ctx context.Context, id string, data entity.ContractData) (*entity.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	negotiation, ok := s.negotiations[id]
	if !ok {
		return nil, entity.ErrNegotiationNotFound
	}
	negotiation.ContractData = data
	negotiation.UpdatedAt = s.tick()
	copied := *negotiation
	return &copied, nil
}

// ParticipantRepository

func (s *fakeStore) CreateParticipant(ctx context.Context, participant *entity.Participant) (*entity.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *participant
	if stored.UserID != nil {
		if profile, ok := s.profiles[*stored.UserID]; ok {
			stored.Profile = profile
		}
	}
	s.participants[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (s *fakeStore) GetParticipantsByNegotiation(ctx context.Context, negotiationID string) ([]*entity.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.Participant
	for _, p := range s.participants {
		if p.NegotiationID == negotiationID {
			copied := *p
			result = append(result, &copied)
		}
	}
	// Initiator first, matching the Postgres ordering.
	for i := range result {
		if result[i].Role == entity.ParticipantRoleInitiator && i != 0 {
			result[0], result[i] = result[i], result[0]
		}
	}
	return result, nil
}

func (s *fakeStore) GetParticipantByUser(ctx context.Context, negotiationID, userID string) (*entity.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.NegotiationID == negotiationID && p.UserID != nil && *p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, entity.ErrParticipantNotFound
}

func (s *fakeStore) AdvanceParticipantStatus(ctx context.Context, id string, status entity.ParticipantStatus) (*entity.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[id]
	if !ok {
		return nil, entity.ErrParticipantNotFound
	}
	participant.Status = status
	now := s.tick()
	switch status {
	case entity.ParticipantStatusJoined:
		participant.JoinedAt = &now
	case entity.ParticipantStatusAgreed:
		participant.AgreedAt = &now
	}
	copied := *participant
	return &copied, nil
}

func (s *fakeStore) AttachUserByEmail(ctx context.Context, negotiationID, email, userID string) (*entity.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.NegotiationID == negotiationID && p.UserID == nil && strings.EqualFold(p.Email, email) {
			p.UserID = &userID
			p.Status = entity.ParticipantStatusJoined
			now := s.tick()
			p.JoinedAt = &now
			if profile, ok := s.profiles[userID]; ok {
				p.Profile = profile
			}
			copied := *p
			return &copied, nil
		}
	}
	return nil, entity.ErrParticipantNotFound
}

// MessageRepository

func (s *fakeStore) CreateMessage(ctx context.Context, message *entity.Message) (*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.negotiations[message.NegotiationID]; !ok {
		return nil, entity.ErrNegotiationNotFound
	}
	stored := *message
	stored.CreatedAt = s.tick()
	s.messages = append(s.messages, &stored)
	s.negotiations[message.NegotiationID].UpdatedAt = stored.CreatedAt
	copied := stored
	return &copied, nil
}

func (s *fakeStore) GetMessagesByNegotiation(ctx context.Context, negotiationID string, limit int) ([]*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.Message
	for _, m := range s.messages {
		if m.NegotiationID == negotiationID {
			copied := *m
			result = append(result, &copied)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// ContractRepository

func (s *fakeStore) CreateContractCompleting(ctx context.Context, contract *entity.Contract) (*entity.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	negotiation, ok := s.negotiations[contract.NegotiationID]
	if !ok {
		return nil, entity.ErrNegotiationNotFound
	}
	if negotiation.Status != entity.NegotiationStatusActive {
		return nil, entity.ErrNegotiationNotActive
	}
	for _, c := range s.contracts {
		if c.NegotiationID == contract.NegotiationID {
			return nil, entity.ErrContractExists
		}
	}
	stored := *contract
	stored.CreatedAt = s.tick()
	s.contracts[stored.ID] = &stored
	negotiation.Status = entity.NegotiationStatusCompleted
	negotiation.UpdatedAt = stored.CreatedAt
	copied := stored
	return &copied, nil
}

func (s *fakeStore) GetContractByID(ctx context.Context, id string) (*entity.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.contracts[id]
	if !ok {
		return nil, entity.ErrContractNotFound
	}
	copied := *contract
	return &copied, nil
}

func (s *fakeStore) GetContractByNegotiation(ctx context.Context, negotiationID string) (*entity.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contracts {
		if c.NegotiationID == negotiationID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, entity.ErrContractNotFound
}

func (s *fakeStore) ListContractsByUser(ctx context.Context, userID string) ([]*entity.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.Contract
	for _, c := range s.contracts {
		for _, p := range s.participants {
			if p.NegotiationID == c.NegotiationID && p.UserID != nil && *p.UserID == userID {
				copied := *c
				result = append(result, &copied)
				break
			}
		}
	}
	return result, nil
}

func (s *fakeStore) AppendSignature(ctx context.Context, contractID string, signature entity.SignatureRecord) (*entity.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.contracts[contractID]
	if !ok {
		return nil, entity.ErrContractNotFound
	}
	if !contract.Signed(signature.UserID) {
		contract.SignedBy = append(contract.SignedBy, signature)
	}
	copied := *contract
	return &copied, nil
}

// ProfileRepository

func (s *fakeStore) GetProfileByID(ctx context.Context, id string) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, entity.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *fakeStore) GetProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, profile := range s.profiles {
		if strings.EqualFold(profile.Email, email) {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, entity.ErrProfileNotFound
}

// TemplateRepository

func (s *fakeStore) GetTemplateByID(ctx context.Context, id string) (*entity.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	template, ok := s.templates[id]
	if !ok {
		return nil, entity.ErrTemplateNotFound
	}
	copied := *template
	return &copied, nil
}

func (s *fakeStore) ListTemplates(ctx context.Context) ([]*entity.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.Template
	for _, t := range s.templates {
		copied := *t
		result = append(result, &copied)
	}
	return result, nil
}

// fakeLLM is a scriptable model gateway.
type fakeLLM struct {
	mu              sync.Mutex
	mediateReply    string
	mediateErr      error
	generateText    string
	generateErr     error
	lastMediation   []entity.ChatMessage
	lastGeneration  []entity.ChatMessage
	mediationCalls  int
	generationCalls int
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		mediateReply: "Thanks for sharing. What does the other party think?",
		generateText: "AGREEMENT\n\n1. TERMS\nThe parties agree as recorded.",
	}
}

func (f *fakeLLM) Mediate(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediationCalls++
	f.lastMediation = messages
	if f.mediateErr != nil {
		return "", f.mediateErr
	}
	return f.mediateReply, nil
}

func (f *fakeLLM) GenerateContract(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generationCalls++
	f.lastGeneration = messages
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.generateText, nil
}

// fakeNotifier records pushed events.
type fakeNotifier struct {
	mu        sync.Mutex
	messages  []*entity.Message
	finalized []string
}

func (f *fakeNotifier) NotifyMessage(ctx context.Context, negotiationID string, message *entity.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) NotifyFinalized(ctx context.Context, negotiationID string, contract *entity.Contract) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized = append(f.finalized, negotiationID)
}
