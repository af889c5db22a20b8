// Package chunker 将长文本切分成带重叠的片段，供检索与向量化使用。
package chunker

import "strings"

// Chunker 按固定窗口大小切分文本，优先在句号或空格处断开。
type Chunker struct {
	size    int
	overlap int
}

// New 创建分块器。非法参数回退到安全值，避免切分死循环。
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split 把文本切成片段。窗口按 rune 计数滑动，窗口未到结尾时在
// 超过窗口 80% 位置的最后一个句号（含句号）或空格（不含空格）处
// 截断，每段去除首尾空白后保留非空片段，下一段从 end-overlap 开始。
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= c.size {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + c.size
		if end >= n {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := runes[start:end]
		if p := lastIndex(window, '.'); float64(p) > float64(c.size)*0.8 {
			end = start + p + 1
		} else if s := lastIndex(window, ' '); float64(s) > float64(c.size)*0.8 {
			end = start + s
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - c.overlap
		// 截断点过于靠前时保证窗口仍向前推进
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func lastIndex(window []rune, target rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == target {
			return i
		}
	}
	return -1
}
