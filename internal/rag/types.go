package rag

import "openio-assistant/internal/llm"

// QueryRequest represents a RAG query.
type QueryRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// History is the prior conversation, oldest first. Roles other than
	// "user" are treated as assistant turns.
	History []llm.Message `json:"history,omitempty"`
}

// QueryResponse represents the response to a RAG query.
type QueryResponse struct {
	// Answer is the generated answer.
	Answer string `json:"answer"`
	// ChunksUsed is the number of context chunks handed to the synthesizer.
	ChunksUsed int `json:"chunksUsed"`
}
