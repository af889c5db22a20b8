package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-go/internal/model"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Give me a summary of the report", "summary"},
		{"Can you SUMMARIZE this?", "summary"},
		{"overview please", "summary"},
		{"What is the main topic?", "main_topic"},
		{"What is this document about?", "main_topic"},
		{"List the key points", "key_points"},
		{"What are the most important findings?", "key_points"},
		{"highlights of chapter two", "key_points"},
		{"How does photosynthesis work?", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyQuery(tt.query))
		})
	}
}

func TestSnippetsOf(t *testing.T) {
	texts := []string{
		"This is the first sentence of a longer paragraph. Here comes the second sentence with details. A third sentence should be ignored entirely.",
		"Too short. Also tiny!",
	}

	snippets := snippetsOf(texts)

	// 每段文本最多取前两句, 20 个字符以内的句子丢弃
	require.Len(t, snippets, 2)
	assert.Equal(t, "This is the first sentence of a longer paragraph", snippets[0])
	assert.Equal(t, "Here comes the second sentence with details", snippets[1])
}

func TestSourceNames_DedupesInRankOrder(t *testing.T) {
	results := []model.ScoredChunk{
		{Filename: "b.txt"},
		{Filename: "a.txt"},
		{Filename: "b.txt"},
	}
	assert.Equal(t, []string{"b.txt", "a.txt"}, sourceNames(results))
}

func TestTemplateAnswer_Summary(t *testing.T) {
	results := []model.ScoredChunk{
		{Filename: "report.pdf", Text: "The quarterly revenue grew by twelve percent over the previous period. Expansion into new markets drove most of the gains."},
	}

	answer := templateAnswer("Please provide a summary", results)

	assert.True(t, strings.HasPrefix(answer, "## 📋 Document Summary"))
	assert.Contains(t, answer, "• The quarterly revenue grew by twelve percent over the previous period")
	assert.Contains(t, answer, "**1** document(s): `report.pdf`")
	assert.Contains(t, answer, "Demo Mode")
}

func TestTemplateAnswer_MainTopic(t *testing.T) {
	results := []model.ScoredChunk{
		{Filename: "notes.md", Text: "Distributed consensus protocols coordinate replicas across failures. Leader election is the usual first step in these systems."},
	}

	answer := templateAnswer("What is this about", results)

	assert.True(t, strings.HasPrefix(answer, "## 🎯 Main Topic Analysis"))
	assert.Contains(t, answer, "`notes.md`")
}

func TestTemplateAnswer_KeyPoints(t *testing.T) {
	results := []model.ScoredChunk{
		{Filename: "slo.txt", Text: "The system must respond within one hundred milliseconds. All writes must be durable before acknowledgement happens."},
	}

	answer := templateAnswer("what are the key points", results)

	assert.True(t, strings.HasPrefix(answer, "## 🔑 Key Points Summary"))
	assert.Contains(t, answer, "**Point 1:** The system must respond within one hundred milliseconds")
	assert.Contains(t, answer, "**Point 2:** All writes must be durable before acknowledgement happens")
}

func TestTemplateAnswer_GeneralEchoesQuestion(t *testing.T) {
	results := []model.ScoredChunk{
		{Filename: "faq.txt", Text: "Refunds are processed within five business days of the request."},
	}

	answer := templateAnswer("how long do refunds take", results)

	assert.True(t, strings.HasPrefix(answer, "## 💡 Analysis Results"))
	assert.Contains(t, answer, `*"how long do refunds take"*`)
	assert.Contains(t, answer, "**1** document(s): `faq.txt`")
}

func TestTemplateAnswer_CapsBulletCount(t *testing.T) {
	long := "This sentence is certainly long enough to pass the filter. Another qualifying sentence with plenty of characters."
	results := []model.ScoredChunk{
		{Filename: "a.txt", Text: long},
		{Filename: "b.txt", Text: long},
		{Filename: "c.txt", Text: long},
	}

	answer := templateAnswer("summary", results)

	// 摘要骨架最多渲染 4 条要点
	assert.Equal(t, 4, strings.Count(answer, "• "))
	assert.Contains(t, answer, "**3** document(s)")
}
