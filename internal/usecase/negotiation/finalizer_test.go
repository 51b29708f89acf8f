package negotiation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agreeTerm(t *testing.T, env *testEnv, userID, negotiationID, key, value string) {
	t.Helper()
	_, err := env.uc.AgreeTerms(context.Background(), userID, negotiationID, &entity.AgreeTermRequest{
		Key:   key,
		Value: value,
	})
	require.NoError(t, err)
}

func TestFinalize_CreatesContractAndCompletesNegotiation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	agreeTerm(t, env, alice.ID, negotiationID, "term", "12 months")
	agreeTerm(t, env, alice.ID, negotiationID, "payment", "net 45")
	agreeTerm(t, env, alice.ID, negotiationID, "jurisdiction", "Delaware")

	env.llm.generateText = "SERVICE AGREEMENT\n\n1. TERM\nTwelve months."

	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	require.Len(t, contract.FinalContent.Parties, 2)
	roles := []string{contract.FinalContent.Parties[0].Role, contract.FinalContent.Parties[1].Role}
	assert.Contains(t, roles, "First Party")
	assert.Contains(t, roles, "Second Party")

	require.Len(t, contract.FinalContent.Terms, 3)
	assert.Equal(t, "12 months", contract.FinalContent.Terms["term"])
	assert.Equal(t, "net 45", contract.FinalContent.Terms["payment"])
	assert.Equal(t, "Delaware", contract.FinalContent.Terms["jurisdiction"])
	assert.Equal(t, env.llm.generateText, contract.FinalContent.GeneratedText)
	assert.False(t, contract.FinalContent.GeneratedAt.IsZero())
	assert.Empty(t, contract.SignedBy)

	negotiation, err := env.store.GetNegotiationByID(ctx, negotiationID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationStatusCompleted, negotiation.Status)

	assert.Equal(t, []string{negotiationID}, env.notifier.finalized)
}

func TestFinalize_SecondAttemptConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	_, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	_, err = env.uc.Finalize(ctx, alice.ID, negotiationID)
	assert.ErrorIs(t, err, entity.ErrNegotiationNotActive)

	contracts, err := env.uc.ListContracts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, contracts, 1)
}

func TestFinalize_ConcurrentCallsCreateOneContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob, negotiationID := setupActiveNegotiation(t, env)

	start := make(chan struct{})
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, userID := range []string{alice.ID, bob.ID} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			<-start
			_, err := env.uc.Finalize(ctx, uid, negotiationID)
			results <- err
		}(userID)
	}
	close(start)
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, entity.ErrNegotiationNotActive), errors.Is(err, entity.ErrContractExists):
			conflicts++
		default:
			t.Fatalf("unexpected finalize error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	contracts, err := env.uc.ListContracts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, contracts, 1)
}

func TestFinalize_GenerationFailureLeavesNegotiationActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	env.llm.generateErr = errors.New("model overloaded")

	_, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrGenerationFailed)

	negotiation, err := env.store.GetNegotiationByID(ctx, negotiationID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationStatusActive, negotiation.Status)

	_, err = env.uc.ListContracts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, env.notifier.finalized)

	// Retry after the gateway recovers.
	env.llm.generateErr = nil
	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)
	assert.NotEmpty(t, contract.ID)
}

func TestFinalize_CancelledNegotiationRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	_, err := env.uc.CancelNegotiation(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	_, err = env.uc.Finalize(ctx, alice.ID, negotiationID)
	assert.ErrorIs(t, err, entity.ErrNegotiationNotActive)
	assert.Zero(t, env.llm.generationCalls)
}

func TestFinalize_NonParticipantRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _, negotiationID := setupActiveNegotiation(t, env)

	mallory := env.store.addProfile("Mallory Black", "mallory@example.com")
	_, err := env.uc.Finalize(ctx, mallory.ID, negotiationID)
	assert.ErrorIs(t, err, entity.ErrNotParticipant)
}

func TestSignContract_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob, negotiationID := setupActiveNegotiation(t, env)

	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	signed, err := env.uc.SignContract(ctx, alice.ID, contract.ID)
	require.NoError(t, err)
	require.Len(t, signed.SignedBy, 1)
	assert.Equal(t, "Alice Smith", signed.SignedBy[0].UserName)

	// Signing again does not duplicate the record.
	signed, err = env.uc.SignContract(ctx, alice.ID, contract.ID)
	require.NoError(t, err)
	assert.Len(t, signed.SignedBy, 1)

	signed, err = env.uc.SignContract(ctx, bob.ID, contract.ID)
	require.NoError(t, err)
	assert.Len(t, signed.SignedBy, 2)
}

func TestSignContract_NonParticipantRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	mallory := env.store.addProfile("Mallory Black", "mallory@example.com")
	_, err = env.uc.SignContract(ctx, mallory.ID, contract.ID)
	assert.ErrorIs(t, err, entity.ErrNotParticipant)
}

func TestGetContract_RequiresStanding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob, negotiationID := setupActiveNegotiation(t, env)

	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	fetched, err := env.uc.GetContract(ctx, bob.ID, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ID, fetched.ID)

	mallory := env.store.addProfile("Mallory Black", "mallory@example.com")
	_, err = env.uc.GetContract(ctx, mallory.ID, contract.ID)
	assert.ErrorIs(t, err, entity.ErrNotParticipant)
}

func TestRenderDocument_Markdown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	env.llm.generateText = "AGREEMENT BODY TEXT"
	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	_, err = env.uc.SignContract(ctx, alice.ID, contract.ID)
	require.NoError(t, err)

	document, err := env.uc.RenderDocument(ctx, alice.ID, contract.ID, formatter.FormatMarkdown)
	require.NoError(t, err)

	body := string(document.Data)
	assert.Contains(t, body, contract.Title)
	assert.Contains(t, body, "AGREEMENT BODY TEXT")
	assert.Contains(t, body, "Alice Smith")
	assert.Contains(t, document.ContentType, "markdown")
	assert.Contains(t, document.Filename, ".md")
}

func TestRenderDocument_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _, negotiationID := setupActiveNegotiation(t, env)

	contract, err := env.uc.Finalize(ctx, alice.ID, negotiationID)
	require.NoError(t, err)

	_, err = env.uc.RenderDocument(ctx, alice.ID, contract.ID, formatter.DocumentFormat("xlsx"))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
