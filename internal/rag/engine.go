package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks openio-assistant/internal/rag Engine
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks openio-assistant/internal/rag IndexProvider,QueryEmbedder,ChatClient

import (
	"context"
	"fmt"
	"strings"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/index"
	"openio-assistant/internal/llm"
	"openio-assistant/internal/service"
)

// contextSeparator joins retrieved chunks inside the system prompt. It is a
// visible boundary so the model can tell adjacent chunks apart.
const contextSeparator = "\n\n---\n\n"

// degradedAnswer is returned instead of calling the chat service when no
// credential is configured. An explicit instruction beats an empty answer.
const degradedAnswer = "OpenAI API key is required. Please set the OPENAI_API_KEY environment variable."

// IndexProvider hands out the ready index, building or loading it first when
// needed. This interface is defined from the engine's perspective
// (consumer-first).
type IndexProvider interface {
	Ensure(ctx context.Context) (index.Index, index.Meta, error)
}

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// ChatClient is the chat-completion service used for answer synthesis.
type ChatClient interface {
	Configured() bool
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Engine provides retrieval-augmented answering over the indexed document.
type Engine interface {
	// Query retrieves the chunks most relevant to the question and
	// synthesizes a grounded answer from them.
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
}

// Options tune the engine's retrieval and generation behavior.
type Options struct {
	// TopK is the number of chunks retrieved per query.
	TopK int
	// Temperature and MaxTokens are passed to the chat completion call.
	Temperature float32
	MaxTokens   int
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	provider IndexProvider
	embedder QueryEmbedder
	chat     ChatClient
	opts     Options
}

// NewEngine creates a new RAG engine.
func NewEngine(provider IndexProvider, embedder QueryEmbedder, chat ChatClient, opts Options) Engine {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	return &ragEngine{
		provider: provider,
		embedder: embedder,
		chat:     chat,
		opts:     opts,
	}
}

// Query answers a question using RAG.
func (e *ragEngine) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return QueryResponse{}, &service.ValidationError{Field: "question", Message: "cannot be empty"}
	}

	idx, meta, err := e.provider.Ensure(ctx)
	if err != nil {
		return QueryResponse{}, err
	}

	logger.InfoContext(ctx, "RAG query started",
		"question_length", len(req.Question),
		"history_turns", len(req.History),
		"index_chunks", meta.Chunks,
		"k", e.opts.TopK,
	)

	queryVector, err := e.embedder.EmbedText(ctx, req.Question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return QueryResponse{}, service.WrapError(err, "failed to embed question")
	}

	relevant := index.Rank(queryVector, idx, e.opts.TopK)

	contexts := make([]string, len(relevant))
	for i, chunk := range relevant {
		contexts[i] = chunk.Content
	}
	logger.DebugContext(ctx, "chunks retrieved", "count", len(relevant))

	answer, err := e.generateAnswer(ctx, req.Question, contexts, req.History)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return QueryResponse{}, err
	}

	logger.InfoContext(ctx, "RAG query completed", "chunks_used", len(relevant), "answer_length", len(answer))

	return QueryResponse{
		Answer:     answer,
		ChunksUsed: len(relevant),
	}, nil
}

// generateAnswer combines the retrieved context and conversation history into
// one chat completion call. Without a configured chat service it returns a
// fixed instructional message instead of failing the caller.
func (e *ragEngine) generateAnswer(ctx context.Context, question string, contexts []string, history []llm.Message) (string, error) {
	if !e.chat.Configured() {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "chat client unconfigured, returning degraded answer")
		return degradedAnswer, nil
	}

	contextText := strings.Join(contexts, contextSeparator)
	if contextText == "" {
		contextText = "No context available."
	}

	systemPrompt := fmt.Sprintf(`You are an expert assistant for the OpenIO codebase.
Use the provided context when it contains relevant details; cite files, structs, or functions when you can.
If the context is missing or irrelevant, still answer using your broader knowledge, and briefly note that you are answering with general guidance.
Keep answers concise and actionable.

Context from codebase (may be empty or unrelated):
%s`, contextText)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})

	for _, msg := range history {
		role := "assistant"
		if msg.Role == "user" {
			role = "user"
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}

	messages = append(messages, llm.Message{Role: "user", Content: question})

	return e.chat.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
	})
}
