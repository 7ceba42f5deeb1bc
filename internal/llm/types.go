package llm

// Role identifies who a chat message is attributed to.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the exchange sent to the generative model. The
// answer pipeline sends a system message with grounding rules plus a user
// message carrying the context passages and the question.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is the provider-neutral request for one completion.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is the provider-neutral result of one completion.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
