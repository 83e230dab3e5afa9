// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"regexp"
	"strings"
)

// ExtractTagged returns the trimmed content between <tag> and </tag> in text.
// The second return value is false when the tag pair is absent.
func ExtractTagged(text, tag string) (string, bool) {
	re, err := regexp.Compile(`(?s)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// CleanJSONBlock removes markdown code block wrappers and conversational text around
// a JSON value. LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Drop any preamble or trailing prose around the first JSON value
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	var value string
	if text[start] == '{' {
		value = extractJSONObject(text[start:])
	} else {
		value = extractJSONArray(text[start:])
	}
	if value == "" {
		return text
	}
	return value
}

// extractJSONObject returns the balanced {...} value at the start of text.
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced [...] value at the start of text.
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, closer byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
