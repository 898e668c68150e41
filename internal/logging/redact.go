// Package logging provides logging utilities including credential redaction.
// Repair attempts shell out to LLM CLIs and CI tooling, so captured output
// and diagnosis text can contain API keys and tokens; this package keeps
// them out of log files.
package logging

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// secretPatterns matches the credential formats remedy is likely to see in
// sandbox output and collaborator payloads.
var secretPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Anthropic API keys (sk-ant-api...)
	regexp.MustCompile(`sk-ant-api[a-zA-Z0-9_-]+`),

	// OpenAI API keys (sk-...)
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_)
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// Generic key=value secrets
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|token)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
}

// secretFieldNames are field names whose values are always redacted,
// matched case-insensitively.
var secretFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"api_key",
	"apikey",
	"token",
	"secret",
	"password",
	"credential",
	"authorization",
	"anthropic_api_key",
	"github_token",
	"openai_api_key",
}

// RedactHook is a zerolog hook that flags log entries whose message contains
// credential-shaped content. Zerolog hooks cannot rewrite the message, so
// the actual scrubbing happens at call sites via Redact; the hook marks
// entries that slipped through.
type RedactHook struct{}

// Run implements the zerolog.Hook interface.
func (RedactHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSecret(msg) {
		e.Bool("contains_unredacted_data", true)
	}
}

// ContainsSecret reports whether s matches any known credential pattern.
func ContainsSecret(s string) bool {
	for _, pattern := range secretPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact replaces any credential-shaped substrings of value with
// RedactedValue. Use it when logging sandbox output or collaborator text.
func Redact(value string) string {
	result := value
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// RedactField returns RedactedValue when the field name indicates a secret,
// otherwise the value scrubbed through Redact.
func RedactField(fieldName, value string) string {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range secretFieldNames {
		if lower == sensitive || strings.Contains(lower, sensitive) {
			return RedactedValue
		}
	}
	return Redact(value)
}
