package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"openio-assistant/internal/index"
	"openio-assistant/internal/llm"
	"openio-assistant/internal/rag"
	"openio-assistant/internal/rag/mocks"
	"openio-assistant/internal/service"
)

const degradedAnswer = "OpenAI API key is required. Please set the OPENAI_API_KEY environment variable."

type engineFixture struct {
	engine   rag.Engine
	provider *mocks.MockIndexProvider
	embedder *mocks.MockQueryEmbedder
	chat     *mocks.MockChatClient
}

func newEngineFixture(t *testing.T, opts rag.Options) *engineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockIndexProvider(ctrl)
	embedder := mocks.NewMockQueryEmbedder(ctrl)
	chat := mocks.NewMockChatClient(ctrl)

	return &engineFixture{
		engine:   rag.NewEngine(provider, embedder, chat, opts),
		provider: provider,
		embedder: embedder,
		chat:     chat,
	}
}

func threeChunkIndex() (index.Index, index.Meta) {
	idx := index.Index{
		{Content: "alpha chunk", Embedding: []float64{1, 0}, Index: 0},
		{Content: "beta chunk", Embedding: []float64{0, 1}, Index: 1},
		{Content: "gamma chunk", Embedding: []float64{1, 1}, Index: 2},
	}
	return idx, index.Meta{Chunks: 3, Source: index.SourceLocalOnly}
}

func TestEngine_Query(t *testing.T) {
	f := newEngineFixture(t, rag.Options{TopK: 2, Temperature: 0.3, MaxTokens: 1000})
	idx, meta := threeChunkIndex()

	f.provider.EXPECT().Ensure(gomock.Any()).Return(idx, meta, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), "what is alpha?").Return([]float64{1, 0}, nil)
	f.chat.EXPECT().Configured().Return(true)
	f.chat.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
			if len(messages) != 2 {
				t.Fatalf("got %d messages, want system + user", len(messages))
			}
			if messages[0].Role != "system" {
				t.Errorf("first message role = %q, want system", messages[0].Role)
			}
			// Query vector {1,0} ranks "alpha chunk" first, then "gamma chunk".
			if !strings.Contains(messages[0].Content, "alpha chunk\n\n---\n\ngamma chunk") {
				t.Errorf("system prompt does not carry ranked chunks in order:\n%s", messages[0].Content)
			}
			if messages[1].Role != "user" || messages[1].Content != "what is alpha?" {
				t.Errorf("last message = %+v, want the question", messages[1])
			}
			if params.Temperature != 0.3 || params.MaxTokens != 1000 {
				t.Errorf("params = %+v", params)
			}
			return "alpha is the first chunk", nil
		})

	resp, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "what is alpha?"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Answer != "alpha is the first chunk" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.ChunksUsed != 2 {
		t.Errorf("chunksUsed = %d, want 2", resp.ChunksUsed)
	}
}

func TestEngine_Query_EmptyQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{name: "empty", question: ""},
		{name: "whitespace only", question: "   \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, rag.Options{})

			_, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: tt.question})
			if !errors.Is(err, service.ErrInvalidParameter) {
				t.Errorf("Query() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestEngine_Query_NoIndex(t *testing.T) {
	f := newEngineFixture(t, rag.Options{})

	f.provider.EXPECT().Ensure(gomock.Any()).Return(nil, index.Meta{}, service.ErrNoIndex)

	_, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "anything"})
	if !errors.Is(err, service.ErrNoIndex) {
		t.Errorf("Query() error = %v, want ErrNoIndex", err)
	}
}

func TestEngine_Query_EmbedFailure(t *testing.T) {
	f := newEngineFixture(t, rag.Options{})
	idx, meta := threeChunkIndex()

	f.provider.EXPECT().Ensure(gomock.Any()).Return(idx, meta, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any()).
		Return(nil, service.ErrServiceFailure)

	_, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "anything"})
	if !errors.Is(err, service.ErrServiceFailure) {
		t.Errorf("Query() error = %v, want ErrServiceFailure", err)
	}
}

func TestEngine_Query_DegradedChat(t *testing.T) {
	f := newEngineFixture(t, rag.Options{TopK: 3})
	idx, meta := threeChunkIndex()

	f.provider.EXPECT().Ensure(gomock.Any()).Return(idx, meta, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any()).Return([]float64{1, 0}, nil)
	f.chat.EXPECT().Configured().Return(false)

	resp, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "anything"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Answer != degradedAnswer {
		t.Errorf("answer = %q, want the fixed degraded message", resp.Answer)
	}
	if resp.ChunksUsed != 3 {
		t.Errorf("chunksUsed = %d, want 3", resp.ChunksUsed)
	}
}

func TestEngine_Query_ZeroVectorTies(t *testing.T) {
	// An index built without a credential holds all-zero embeddings. Every
	// score ties at zero, so retrieval degenerates to the first TopK chunks
	// in document order.
	f := newEngineFixture(t, rag.Options{TopK: 2})
	idx := index.Index{
		{Content: "doc start", Embedding: []float64{0, 0}, Index: 0},
		{Content: "doc middle", Embedding: []float64{0, 0}, Index: 1},
		{Content: "doc end", Embedding: []float64{0, 0}, Index: 2},
	}

	f.provider.EXPECT().Ensure(gomock.Any()).Return(idx, index.Meta{Chunks: 3, Source: index.SourceLocalOnly}, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any()).Return([]float64{0, 0}, nil)
	f.chat.EXPECT().Configured().Return(true)
	f.chat.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			if !strings.Contains(messages[0].Content, "doc start\n\n---\n\ndoc middle") {
				t.Errorf("tied chunks not in document order:\n%s", messages[0].Content)
			}
			return "ok", nil
		})

	if _, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "anything"}); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
}

func TestEngine_Query_HistoryRoles(t *testing.T) {
	f := newEngineFixture(t, rag.Options{TopK: 1})
	idx, meta := threeChunkIndex()

	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
		{Role: "tool", Content: "rogue role"},
	}

	f.provider.EXPECT().Ensure(gomock.Any()).Return(idx, meta, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any()).Return([]float64{1, 0}, nil)
	f.chat.EXPECT().Configured().Return(true)
	f.chat.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			// system + 3 history turns + question
			if len(messages) != 5 {
				t.Fatalf("got %d messages, want 5", len(messages))
			}
			wantRoles := []string{"system", "user", "assistant", "assistant", "user"}
			for i, want := range wantRoles {
				if messages[i].Role != want {
					t.Errorf("message %d role = %q, want %q", i, messages[i].Role, want)
				}
			}
			return "ok", nil
		})

	if _, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "follow-up", History: history}); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
}

func TestEngine_Query_EmptyIndexContext(t *testing.T) {
	// An empty (but present) index yields no chunks; the prompt carries the
	// explicit no-context marker instead of an empty string.
	f := newEngineFixture(t, rag.Options{TopK: 5})

	f.provider.EXPECT().Ensure(gomock.Any()).Return(index.Index{}, index.Meta{}, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any()).Return([]float64{1, 0}, nil)
	f.chat.EXPECT().Configured().Return(true)
	f.chat.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			if !strings.Contains(messages[0].Content, "No context available.") {
				t.Errorf("system prompt missing no-context marker:\n%s", messages[0].Content)
			}
			return "general answer", nil
		})

	resp, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "anything"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.ChunksUsed != 0 {
		t.Errorf("chunksUsed = %d, want 0", resp.ChunksUsed)
	}
}

func TestNewEngine_DefaultTopK(t *testing.T) {
	f := newEngineFixture(t, rag.Options{})
	idx, meta := threeChunkIndex()

	f.provider.EXPECT().Ensure(gomock.Any()).Return(idx, meta, nil)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any()).Return([]float64{1, 1}, nil)
	f.chat.EXPECT().Configured().Return(true)
	f.chat.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil)

	resp, err := f.engine.Query(context.Background(), rag.QueryRequest{Question: "anything"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	// Default TopK is 5, capped at the 3 available chunks.
	if resp.ChunksUsed != 3 {
		t.Errorf("chunksUsed = %d, want 3", resp.ChunksUsed)
	}
}
