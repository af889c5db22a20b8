package model

import "time"

// ChatRequest 是 POST /api/chat 的请求体。SessionID 为空时由服务端生成。
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SourceRef 描述回答引用的一个来源文件。同一文件在检索结果中出现多次时
// 只保留排名最靠前的那个片段作为代表。
type SourceRef struct {
	Filename       string  `json:"filename"`
	ChunkPreview   string  `json:"chunk_preview"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ChatResponse 是 POST /api/chat 的响应体。
type ChatResponse struct {
	Response  string      `json:"response"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Sources   []SourceRef `json:"sources"`
}

// HistoryEntry 代表会话历史中的一次完整问答。
type HistoryEntry struct {
	UserMessage       string      `json:"user_message"`
	AssistantResponse string      `json:"assistant_response"`
	Timestamp         time.Time   `json:"timestamp"`
	Sources           []SourceRef `json:"sources"`
}

// Session 代表一个会话及其全部历史。
type Session struct {
	ID        string         `json:"session_id"`
	CreatedAt time.Time      `json:"created_at"`
	Entries   []HistoryEntry `json:"history"`
}

// ScoredChunk 是检索层返回的带分数的文本块。
type ScoredChunk struct {
	FileID     string  `json:"file_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// HealthResponse 是 GET /api/health 的响应体。
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	AIEnabled bool      `json:"ai_enabled"`
}

// StatsResponse 是 GET /api/stats 的响应体。
type StatsResponse struct {
	Documents        int    `json:"documents"`
	Chunks           int    `json:"chunks"`
	Sessions         int    `json:"sessions"`
	RetrievalBackend string `json:"retrieval_backend"`
	Provider         string `json:"provider"`
	AIEnabled        bool   `json:"ai_enabled"`
}
