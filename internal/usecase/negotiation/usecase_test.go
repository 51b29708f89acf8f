package negotiation

import (
	"context"
	"testing"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	store    *fakeStore
	llm      *fakeLLM
	notifier *fakeNotifier
	uc       *NegotiationUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	llm := newFakeLLM()
	notifier := &fakeNotifier{}
	uc := NewUsecase(
		store, store, store, store, store, store,
		validator.NewValidator(),
		llm,
		notifier,
		zap.NewNop(),
	)
	return &testEnv{store: store, llm: llm, notifier: notifier, uc: uc}
}

func strPtr(s string) *string { return &s }

func TestCreateNegotiation_WithTemplateAndKnownCounterparty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	bob := env.store.addProfile("Bob Jones", "bob@example.com")
	template := env.store.addTemplate("Non-Disclosure Agreement")

	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{
		TemplateID:        &template.ID,
		CounterpartyEmail: strPtr("bob@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.NegotiationStatusActive, dto.Status)
	assert.Contains(t, dto.Title, "Non-Disclosure Agreement")
	assert.Equal(t, "Non-Disclosure Agreement", dto.ContractData.TemplateName)
	assert.NotNil(t, dto.ContractData.AgreedTerms)
	require.Len(t, dto.Participants, 2)

	var initiator, party *entity.Participant
	for _, p := range dto.Participants {
		switch p.Role {
		case entity.ParticipantRoleInitiator:
			initiator = p
		case entity.ParticipantRoleParty:
			party = p
		}
	}
	require.NotNil(t, initiator)
	require.NotNil(t, party)
	assert.Equal(t, entity.ParticipantStatusJoined, initiator.Status)
	require.NotNil(t, party.UserID)
	assert.Equal(t, bob.ID, *party.UserID)
	assert.Equal(t, entity.ParticipantStatusJoined, party.Status)

	messages, err := env.uc.ListMessages(ctx, alice.ID, dto.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, entity.SenderTypeAI, messages[0].SenderType)
	assert.Contains(t, messages[0].Content, "Non-Disclosure Agreement")
	assert.Contains(t, messages[0].Content, "Sudo")
}

func TestCreateNegotiation_CustomContractWithUnknownInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")

	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{
		Title:             strPtr("Office Lease"),
		CounterpartyEmail: strPtr("stranger@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Office Lease", dto.Title)
	assert.Equal(t, "Custom Contract", dto.ContractData.TemplateName)

	require.Len(t, dto.Participants, 2)
	for _, p := range dto.Participants {
		if p.Role == entity.ParticipantRoleParty {
			assert.Nil(t, p.UserID)
			assert.Equal(t, entity.ParticipantStatusPending, p.Status)
			assert.Equal(t, "stranger@example.com", p.Email)
		}
	}
}

func TestCreateNegotiation_UnknownTemplateRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addProfile("Alice Smith", "alice@example.com")

	_, err := env.uc.CreateNegotiation(context.Background(), alice.ID, &entity.CreateNegotiationRequest{
		TemplateID: strPtr("11111111-1111-1111-1111-111111111111"),
	})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestCreateNegotiation_CreatorMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.CreateNegotiation(context.Background(), "22222222-2222-2222-2222-222222222222", &entity.CreateNegotiationRequest{})
	assert.ErrorIs(t, err, entity.ErrProfileNotFound)
}

func TestCreateNegotiation_SelfInviteRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addProfile("Alice Smith", "alice@example.com")

	_, err := env.uc.CreateNegotiation(context.Background(), alice.ID, &entity.CreateNegotiationRequest{
		CounterpartyEmail: strPtr("alice@example.com"),
	})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestJoinNegotiation_ClaimsPendingInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{
		CounterpartyEmail: strPtr("carol@example.com"),
	})
	require.NoError(t, err)

	carol := env.store.addProfile("Carol White", "carol@example.com")
	joined, err := env.uc.JoinNegotiation(ctx, carol.ID, dto.ID)
	require.NoError(t, err)

	require.Len(t, joined.Participants, 2)
	for _, p := range joined.Participants {
		if p.Role == entity.ParticipantRoleParty {
			require.NotNil(t, p.UserID)
			assert.Equal(t, carol.ID, *p.UserID)
			assert.Equal(t, entity.ParticipantStatusJoined, p.Status)
			assert.NotNil(t, p.JoinedAt)
		}
	}
}

func TestJoinNegotiation_OpenSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	bob := env.store.addProfile("Bob Jones", "bob@example.com")
	joined, err := env.uc.JoinNegotiation(ctx, bob.ID, dto.ID)
	require.NoError(t, err)
	assert.Len(t, joined.Participants, 2)
}

func TestJoinNegotiation_AlreadyJoined(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	_, err = env.uc.JoinNegotiation(ctx, alice.ID, dto.ID)
	assert.ErrorIs(t, err, entity.ErrAlreadyJoined)
}

func TestJoinNegotiation_RosterFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	bob := env.store.addProfile("Bob Jones", "bob@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{
		CounterpartyEmail: strPtr("bob@example.com"),
	})
	require.NoError(t, err)
	_ = bob

	dave := env.store.addProfile("Dave Green", "dave@example.com")
	_, err = env.uc.JoinNegotiation(ctx, dave.ID, dto.ID)
	assert.ErrorIs(t, err, entity.ErrTooManyParties)
}

func TestCancelNegotiation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	cancelled, err := env.uc.CancelNegotiation(ctx, alice.ID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationStatusCancelled, cancelled.Status)

	// Terminal states are immutable.
	_, err = env.uc.CancelNegotiation(ctx, alice.ID, dto.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestCancelNegotiation_NotParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	mallory := env.store.addProfile("Mallory Black", "mallory@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	_, err = env.uc.CancelNegotiation(ctx, mallory.ID, dto.ID)
	assert.ErrorIs(t, err, entity.ErrNotParticipant)
}

func TestAgreeTerms_RecordsTermAndClearsDispute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	// Seed a disputed term, as the mediator would during discussion.
	negotiation, err := env.store.GetNegotiationByID(ctx, dto.ID)
	require.NoError(t, err)
	negotiation.ContractData.DisputedTerms["payment"] = entity.DisputedTerm{PartyA: "net 30", PartyB: "net 60"}
	_, err = env.store.UpdateContractData(ctx, dto.ID, negotiation.ContractData)
	require.NoError(t, err)

	updated, err := env.uc.AgreeTerms(ctx, alice.ID, dto.ID, &entity.AgreeTermRequest{
		Key:   "payment",
		Value: "net 45",
	})
	require.NoError(t, err)

	assert.Equal(t, "net 45", updated.ContractData.AgreedTerms["payment"])
	assert.NotContains(t, updated.ContractData.DisputedTerms, "payment")
}

func TestAgreeTerms_FinalAdvancesParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	updated, err := env.uc.AgreeTerms(ctx, alice.ID, dto.ID, &entity.AgreeTermRequest{Final: true})
	require.NoError(t, err)
	_ = updated

	participant, err := env.store.GetParticipantByUser(ctx, dto.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ParticipantStatusAgreed, participant.Status)
	assert.NotNil(t, participant.AgreedAt)
}

func TestAgreeTerms_InactiveNegotiation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	_, err = env.uc.CancelNegotiation(ctx, alice.ID, dto.ID)
	require.NoError(t, err)

	_, err = env.uc.AgreeTerms(ctx, alice.ID, dto.ID, &entity.AgreeTermRequest{Key: "k", Value: "v"})
	assert.ErrorIs(t, err, entity.ErrNegotiationNotActive)
}

func TestAgreeTerms_MissingKey(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(context.Background(), alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	_, err = env.uc.AgreeTerms(context.Background(), alice.ID, dto.ID, &entity.AgreeTermRequest{})
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestListNegotiations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	bob := env.store.addProfile("Bob Jones", "bob@example.com")

	_, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)
	_, err = env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{})
	require.NoError(t, err)

	mine, err := env.uc.ListNegotiations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := env.uc.ListNegotiations(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestGetNegotiation_InvitedUserMayView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.store.addProfile("Alice Smith", "alice@example.com")
	dto, err := env.uc.CreateNegotiation(ctx, alice.ID, &entity.CreateNegotiationRequest{
		CounterpartyEmail: strPtr("carol@example.com"),
	})
	require.NoError(t, err)

	carol := env.store.addProfile("Carol White", "carol@example.com")
	viewed, err := env.uc.GetNegotiation(ctx, carol.ID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, viewed.ID)

	mallory := env.store.addProfile("Mallory Black", "mallory@example.com")
	_, err = env.uc.GetNegotiation(ctx, mallory.ID, dto.ID)
	assert.ErrorIs(t, err, entity.ErrNotParticipant)
}
