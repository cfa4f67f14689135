package domain

import "time"

// Workflow is a persisted graph definition with descriptive metadata.
// The engine treats Data as read-only; edits go through the workflow store.
type Workflow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Data        Graph      `json:"data"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Document records an uploaded file available for RAG ingestion.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// DocumentChunk is a contiguous segment of a source document, owned by the
// knowledge index once ingested.
type DocumentChunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SearchResult is a single web search hit used to augment model prompts.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url,omitempty"`
}

// ChatLog records one user/assistant exchange against a workflow.
type ChatLog struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	WorkflowID  string    `json:"workflow_id,omitempty"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Timestamp   time.Time `json:"timestamp"`
}
