// Package model provides data models for the Camos assist service.
package model

// QueryResult represents an answer produced for a knowledge-base query.
type QueryResult struct {
	Answer     string        `json:"answer"`
	Sources    []ChunkSource `json:"sources"`
	TokenUsage *TokenUsage   `json:"token_usage,omitempty"`
	ElapsedMs  int64         `json:"elapsed_ms"`
	Cached     bool          `json:"cached"`
}

// ChunkSource represents source information for a retrieved chunk.
type ChunkSource struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Section      string  `json:"section"`
	Type         string  `json:"type"`
	Page         int     `json:"page,omitempty"`
	Content      string  `json:"content"`
	Score        float32 `json:"score"`
}

// TokenUsage records LLM token consumption for a single answer.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// DebugResult represents a code-debugging answer.
type DebugResult struct {
	Answer     string      `json:"answer"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
	ElapsedMs  int64       `json:"elapsed_ms"`
}

// IndexResult summarises an indexing run.
type IndexResult struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Failed    int `json:"failed"`
}
