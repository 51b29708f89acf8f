package negotiation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// mediatorSystemPrompt defines the persona and duties of the conversational
// mediator. It is sent as the system message on every mediation call.
const mediatorSystemPrompt = `You are Sudo, an AI contract negotiation mediator. Your role is to:

1. **Facilitate Discussion**: Help both parties communicate clearly and understand each other's positions.

2. **Explain Legal Terms**: When contract terms come up, explain them in plain, accessible language.

3. **Suggest Compromises**: When parties disagree, propose fair middle-ground solutions.

4. **Track Progress**: Keep track of what's been agreed upon and what's still being negotiated.

5. **Draft Language**: Help write clear, professional contract language for agreed terms.

Guidelines:
- Be neutral and fair to both parties
- Keep responses concise but helpful (2-4 sentences typically)
- Ask clarifying questions when needed
- Summarize agreements when terms are settled
- Flag any concerning or unclear terms
- Use a friendly but professional tone

Current contract context will be provided. Focus on helping reach a fair agreement efficiently.`

// generationSystemPrompt instructs the drafting call that turns the
// negotiation record into the final contract text.
const generationSystemPrompt = `You are an expert legal contract drafter. Based on the negotiation details provided, generate a complete, professional legal contract.

Your contract should:
1. Use proper legal language and formatting
2. Include all standard contract sections (parties, recitals, definitions, terms, etc.)
3. Be comprehensive but clear
4. Include appropriate legal clauses for the contract type
5. Use the actual names and details of the parties involved
6. Incorporate any specific terms discussed in the negotiation

Format the contract as a formal legal document with proper sections, numbering, and professional language.`

// mediationHistoryLimit bounds how many recent messages are replayed to the
// mediator on each turn.
const mediationHistoryLimit = 10

// generationHistoryLimit bounds the transcript included in the drafting
// prompt.
const generationHistoryLimit = 50

const welcomeMessageTemplate = "Welcome to your %s negotiation! I'm Sudo, your AI mediator. " +
	"I'll help both parties discuss terms and reach a fair agreement. " +
	"Let's start by introducing yourselves and outlining your main goals for this contract."

// buildContextBlock renders the negotiation snapshot that prefixes every user
// turn sent to the mediator.
func buildContextBlock(contractCtx *entity.ContractContext, senderName string) string {
	participants := make([]string, 0, len(contractCtx.Participants))
	for _, p := range contractCtx.Participants {
		participants = append(participants, fmt.Sprintf("%s (%s)", p.Name, p.Role))
	}

	agreed := "None yet"
	if len(contractCtx.AgreedTerms) > 0 {
		pairs := make([]string, 0, len(contractCtx.AgreedTerms))
		for _, key := range sortedKeys(contractCtx.AgreedTerms) {
			pairs = append(pairs, fmt.Sprintf("%s: %s", key, contractCtx.AgreedTerms[key]))
		}
		agreed = strings.Join(pairs, "; ")
	}

	open := "None"
	if len(contractCtx.DisputedTerms) > 0 {
		keys := make([]string, 0, len(contractCtx.DisputedTerms))
		for key := range contractCtx.DisputedTerms {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		open = strings.Join(keys, ", ")
	}

	return fmt.Sprintf(`
Contract: %s
Participants: %s
Agreed Terms: %s
Open Items: %s

Message from %s:`,
		contractCtx.TemplateName,
		strings.Join(participants, ", "),
		agreed,
		open,
		senderName,
	)
}

// buildMediationMessages assembles the full message list for one mediator
// turn: persona, then recent history with the context block prefixed to the
// latest user message.
func buildMediationMessages(
	contractCtx *entity.ContractContext,
	history []*entity.Message,
	senderName string,
) []entity.ChatMessage {
	recent := history
	if len(recent) > mediationHistoryLimit {
		recent = recent[len(recent)-mediationHistoryLimit:]
	}

	contextBlock := buildContextBlock(contractCtx, senderName)

	messages := make([]entity.ChatMessage, 0, len(recent)+1)
	messages = append(messages, entity.ChatMessage{
		Role:    entity.ChatRoleSystem,
		Content: mediatorSystemPrompt,
	})

	for i, msg := range recent {
		role := entity.ChatRoleUser
		if msg.SenderType == entity.SenderTypeAI {
			role = entity.ChatRoleAssistant
		}
		content := msg.Content
		// Only the message being answered carries the context block, so the
		// mediator sees the current state exactly once per turn.
		if role == entity.ChatRoleUser && i == len(recent)-1 {
			content = contextBlock + "\n" + content
		}
		messages = append(messages, entity.ChatMessage{Role: role, Content: content})
	}

	return messages
}

// buildGenerationMessages assembles the drafting prompt from the negotiation
// record, its roster and the conversation transcript.
func buildGenerationMessages(
	neg *entity.Negotiation,
	parties []entity.ContractParty,
	template *entity.Template,
	history []*entity.Message,
	participantNames map[string]string,
) ([]entity.ChatMessage, error) {
	templateName := "General Agreement"
	templateStructure := "Standard contract format"
	if template != nil {
		templateName = template.Name
		structure, err := json.MarshalIndent(template.Content, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal template structure: %w", err)
		}
		templateStructure = string(structure)
	}

	recent := history
	if len(recent) > generationHistoryLimit {
		recent = recent[:generationHistoryLimit]
	}

	transcript := make([]string, 0, len(recent))
	for _, msg := range recent {
		sender := "Participant"
		if msg.SenderType == entity.SenderTypeAI {
			sender = "Mediator"
		} else if msg.SenderID != nil {
			if name, ok := participantNames[*msg.SenderID]; ok {
				sender = name
			}
		}
		transcript = append(transcript, fmt.Sprintf("%s: %s", sender, msg.Content))
	}

	conversationSummary := strings.Join(transcript, "\n")
	if conversationSummary == "" {
		conversationSummary = "No specific terms discussed yet."
	}

	partyLines := make([]string, 0, len(parties))
	for i, p := range parties {
		partyLines = append(partyLines, fmt.Sprintf("%d. %s (%s) - %s", i+1, p.Name, p.Email, p.Role))
	}

	agreedTerms, err := json.MarshalIndent(neg.ContractData.AgreedTerms, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal agreed terms: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a complete legal contract with the following details:

CONTRACT TYPE: %s
TITLE: %s

PARTIES:
%s

TEMPLATE STRUCTURE:
%s

NEGOTIATION DISCUSSION SUMMARY:
%s

AGREED TERMS (if any):
%s

Please generate a complete, professional legal contract that:
1. Has a proper title and date
2. Clearly identifies all parties with their full details
3. Includes recitals/background section
4. Has numbered sections with clear terms
5. Includes standard legal clauses (confidentiality, governing law, dispute resolution, etc.)
6. Has signature blocks for all parties
7. Uses the specific terms and agreements from the negotiation discussion

Generate the full contract text now:`,
		templateName,
		neg.Title,
		strings.Join(partyLines, "\n"),
		templateStructure,
		conversationSummary,
		string(agreedTerms),
	)

	return []entity.ChatMessage{
		{Role: entity.ChatRoleSystem, Content: generationSystemPrompt},
		{Role: entity.ChatRoleUser, Content: prompt},
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
