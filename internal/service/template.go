package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"docqa-go/internal/model"
)

// 模板回答模式: 不依赖任何生成模型, 用检索片段填充固定的 Markdown 骨架。
// 四类骨架按问题关键词选择, 同样的输入永远得到同样的输出。

const summaryShell = `## 📋 Document Summary

Based on my analysis of your uploaded documents, here's a comprehensive summary:

### Main Content:
%s

### Document Coverage:
This summary is derived from **%d** document(s): %s

### Key Insights:
The documents appear to focus on interconnected themes and provide detailed information across multiple areas of discussion.

---
*🔧 Demo Mode: This response uses keyword matching and pattern recognition. With OpenAI API, you'd get more sophisticated content analysis and better summarization.*`

const topicShell = `## 🎯 Main Topic Analysis

After analyzing your documents, I can identify the following main topics:

### Primary Focus Areas:
%s

### Topic Sources:
Found in **%d** document(s): %s

### Topic Assessment:
The documents appear to center around themes that are well-developed and provide substantial detail on the subject matter.

---
*🔧 Demo Mode: Real AI would provide deeper topic extraction and thematic analysis.*`

const keyPointsShell = `## 🔑 Key Points Summary

Here are the most important points I found in your documents:

### Critical Information:
%s

### Supporting Documents:
These points are extracted from **%d** source(s): %s

### Importance Level:
All identified points appear to be central to the document's main arguments and conclusions.

---
*🔧 Demo Mode: Advanced AI would rank importance and identify relationships between key points.*`

const generalShell = `## 💡 Analysis Results

Based on your question: *"%s"*

### Relevant Information Found:
%s

### Source Analysis:
Information gathered from **%d** document(s): %s

### Response Quality:
The available content provides relevant context for your question, though deeper analysis would reveal additional insights.

---
*🔧 Demo Mode: Full AI capabilities would provide more contextual understanding and nuanced answers.*`

var sentencePattern = regexp.MustCompile(`[.!?]+`)

// templateAnswer 在没有配置生成模型时产出确定性的 Markdown 回答。
func templateAnswer(message string, results []model.ScoredChunk) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	snippets := snippetsOf(texts)
	names := sourceNames(results)

	switch classifyQuery(message) {
	case "summary":
		return summaryAnswer(snippets, names)
	case "main_topic":
		return fmt.Sprintf(topicShell, bulletList(snippets, 3), len(names), backtickList(names))
	case "key_points":
		return fmt.Sprintf(keyPointsShell, numberedPoints(snippets, 4), len(names), backtickList(names))
	default:
		return fmt.Sprintf(generalShell, message, bulletList(snippets, 3), len(names), backtickList(names))
	}
}

// summaryAnswer 渲染摘要类骨架, 文档摘要接口在模板模式下也复用它。
func summaryAnswer(snippets, names []string) string {
	return fmt.Sprintf(summaryShell, bulletList(snippets, 4), len(names), backtickList(names))
}

// classifyQuery 按关键词把问题归入四类模板之一。
func classifyQuery(message string) string {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "summary", "summarize", "overview"):
		return "summary"
	case containsAny(lower, "main topic", "primary topic", "about", "subject"):
		return "main_topic"
	case containsAny(lower, "key points", "important", "highlights", "main points"):
		return "key_points"
	}
	return "general"
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// snippetsOf 按排名顺序从每段文本取前两句, 过短的句子丢弃。
func snippetsOf(texts []string) []string {
	var snippets []string
	for _, text := range texts {
		sentences := sentencePattern.Split(text, -1)
		if len(sentences) > 2 {
			sentences = sentences[:2]
		}
		for _, sentence := range sentences {
			sentence = strings.TrimSpace(sentence)
			if utf8.RuneCountInString(sentence) > 20 {
				snippets = append(snippets, sentence)
			}
		}
	}
	return snippets
}

// sourceNames 返回去重后的来源文件名, 保持排名顺序。
func sourceNames(results []model.ScoredChunk) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, r := range results {
		if _, ok := seen[r.Filename]; ok {
			continue
		}
		seen[r.Filename] = struct{}{}
		names = append(names, r.Filename)
	}
	return names
}

func bulletList(snippets []string, max int) string {
	if len(snippets) > max {
		snippets = snippets[:max]
	}
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, "• "+s)
	}
	return strings.Join(lines, "\n")
}

func numberedPoints(snippets []string, max int) string {
	if len(snippets) > max {
		snippets = snippets[:max]
	}
	lines := make([]string, 0, len(snippets))
	for i, s := range snippets {
		lines = append(lines, fmt.Sprintf("**Point %d:** %s", i+1, s))
	}
	return strings.Join(lines, "\n")
}

func backtickList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, "`"+n+"`")
	}
	return strings.Join(quoted, ", ")
}
