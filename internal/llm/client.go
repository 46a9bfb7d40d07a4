package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates the next assistant turn for an ordered conversation.
// A leading RoleSystem message carries the instruction prompt; adapters route
// it to the provider's dedicated instruction channel.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// splitSystem separates a leading system message from the rest of the conversation.
func splitSystem(messages []Message) (string, []Message) {
	if len(messages) > 0 && messages[0].Role == RoleSystem {
		return messages[0].Content, messages[1:]
	}
	return "", messages
}
