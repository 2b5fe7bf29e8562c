// Package redact scrubs sensitive values out of strings before they are logged.
// Error messages from the database driver, the auth layer, and the LLM client can carry
// connection strings, bearer tokens, share tokens, e-mail addresses and raw SQL; none of
// those belong in log aggregation or in client responses.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; connection strings go first so that the userinfo part
// is never seen by the e-mail rule.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?i)(postgres|postgresql|mysql|redis)://[^@\s/]+@`),
		replacement: "$1://" + CredentialPlaceholder + "@",
	},
	{
		pattern:     regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		replacement: "Bearer " + TokenPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		replacement: JWTPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api_key|apikey)(\s*[=:]\s*)['"]?[^'"&\s]+`),
		replacement: "$1$2" + CredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`/shares/[A-Za-z0-9]+`),
		replacement: "/shares/" + TokenPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: EmailPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\w,.*()$=]+\b(FROM|INTO|SET)\b[^;]*`),
		replacement: SQLPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
