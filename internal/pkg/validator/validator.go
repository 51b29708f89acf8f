package validator

// Validator checks API requests before they reach the use cases.
type Validator struct {
	maxTitleLength   int
	maxMessageLength int
}

const (
	defaultMaxTitleLength   = 200
	defaultMaxMessageLength = 8000
)

func NewValidator() *Validator {
	return &Validator{
		maxTitleLength:   defaultMaxTitleLength,
		maxMessageLength: defaultMaxMessageLength,
	}
}
