package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled patterns for cleaning up model output before JSON decoding.
var (
	// Matches ```json ... ``` or ``` ... ``` fences, newlines optional
	codeFenceRegex = regexp.MustCompile("(?s)`{3}(?:json)?\\s*\\n?([\\s\\S]*?)\\n?`{3}")

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

	// Greedy so nested structures are captured whole
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ParseResult represents the result of a JSON parse operation.
type ParseResult[T any] struct {
	Success      bool
	Data         T
	Error        string
	OriginalText string
}

// ParseOptions configures JSON parsing behavior.
type ParseOptions struct {
	Context string // Context for error messages
}

// Parse attempts to parse JSON with multiple fallback strategies.
// Model responses often wrap JSON in markdown code fences, leave
// trailing commas, or surround the payload with prose; each strategy
// peels away one of those quirks.
//
// Strategy sequence:
//  1. Direct JSON parse
//  2. Remove code fences and retry
//  3. Strip trailing commas and retry
//  4. Extract the JSON object/array from mixed content and retry
func Parse[T any](text string, opts ...ParseOptions) ParseResult[T] {
	var options ParseOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseError[T]("empty input", text, options.Context)
	}

	// Strategy 1: direct parse
	if result, err := tryDirectParse[T](trimmed); err == nil {
		return ParseResult[T]{Success: true, Data: result, OriginalText: text}
	}

	// Strategy 2: remove code fences
	withoutFences := removeCodeFences(trimmed)
	if withoutFences != trimmed {
		if result, err := tryDirectParse[T](withoutFences); err == nil {
			return ParseResult[T]{Success: true, Data: result, OriginalText: text}
		}
	}

	// Strategy 3: strip trailing commas
	cleaned := strings.TrimSpace(trailingCommaRegex.ReplaceAllString(withoutFences, "$1"))
	if result, err := tryDirectParse[T](cleaned); err == nil {
		return ParseResult[T]{Success: true, Data: result, OriginalText: text}
	}

	// Strategy 4: extract JSON from mixed content
	if extracted := extractJSON(cleaned); extracted != "" {
		if result, err := tryDirectParse[T](extracted); err == nil {
			return ParseResult[T]{Success: true, Data: result, OriginalText: text}
		}
	}

	return parseError[T]("all JSON parsing strategies failed", text, options.Context)
}

func tryDirectParse[T any](text string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(text), &result)
	return result, err
}

func parseError[T any](message, text, context string) ParseResult[T] {
	if context != "" {
		message = fmt.Sprintf("%s (%s)", message, context)
	}
	return ParseResult[T]{Success: false, Error: message, OriginalText: text}
}

// removeCodeFences strips markdown code fences from text.
func removeCodeFences(text string) string {
	cleaned := codeFenceRegex.ReplaceAllString(text, "$1")

	// Single backticks wrapping the entire content
	if strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`") {
		cleaned = strings.TrimPrefix(cleaned, "`")
		cleaned = strings.TrimSuffix(cleaned, "`")
	}

	return strings.TrimSpace(cleaned)
}

// extractJSON pulls a JSON array or object out of mixed content.
// Returns empty string if nothing JSON-like is found. Arrays are
// tried first because generation responses are arrays of test cases.
func extractJSON(text string) string {
	if match := arrayRegex.FindString(text); match != "" {
		return match
	}
	if match := objectRegex.FindString(text); match != "" {
		return match
	}
	return ""
}

// truncateString shortens a string for log and error messages.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
