package entity

// Chat roles understood by OpenAI-compatible gateways.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the role-tagged message list plus sampling parameters sent
// to the text-generation gateway.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ContractContext is the snapshot of negotiation state handed to the
// mediator and summarizer prompts. It is assembled by a pure function of the
// negotiation and its participants.
type ContractContext struct {
	TemplateName  string
	AgreedTerms   map[string]string
	DisputedTerms map[string]DisputedTerm
	Participants  []ContextParticipant
}

type ContextParticipant struct {
	Name string
	Role string
}
