package llm

import (
	"net/http"
	"time"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32
}

// newHTTPClient returns the shared HTTP client for external service calls.
// Embedding and chat calls are third-party network calls, so a hard timeout
// keeps a stuck upstream from pinning request handlers forever.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
