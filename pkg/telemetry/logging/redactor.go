package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"mercator-hq/piiaudit/pkg/config"
)

// Redactor scrubs PII and secrets from log attributes.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern is a compiled regex with either a fixed replacement or a
// replacement function.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
	replace     func(string) string
}

// Built-in pattern names.
const (
	PatternEmail       = "email"
	PatternSSN         = "ssn"
	PatternIPv4        = "ipv4"
	PatternPhone       = "phone"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
)

// sensitiveKeys mark attributes whose value is hidden entirely.
var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "dsn", "passphrase",
	"ssn", "private_key",
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// customPatterns. Custom patterns that do not compile are skipped; config
// validation reports them before a logger is built.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}

	// Order matters: emails and SSNs are replaced before the looser phone
	// pattern can consume their digits.
	r.patterns = append(r.patterns,
		redactPattern{
			name:    PatternEmail,
			regex:   regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			replace: RedactEmail,
		},
		redactPattern{
			name:        PatternSSN,
			regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			replacement: "***-**-****",
		},
		redactPattern{
			name:    PatternIPv4,
			regex:   regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			replace: RedactIPv4,
		},
		redactPattern{
			name:        PatternPhone,
			regex:       regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
			replacement: "***-***-****",
		},
		redactPattern{
			name:        PatternBearerToken,
			regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
			replacement: "Bearer ***",
		},
		redactPattern{
			name:        PatternPassword,
			regex:       regexp.MustCompile(`(password|passwd|pwd)[:=]\s*[^\s&;]+`),
			replacement: "$1=***",
		},
	)

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		if p.replace != nil {
			value = p.regex.ReplaceAllStringFunc(value, p.replace)
		} else {
			value = p.regex.ReplaceAllString(value, p.replacement)
		}
	}
	return value
}

// RedactAttr returns a copy of a with sensitive values hidden and string
// values scrubbed. Groups are processed recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		out := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}

	case slog.KindString:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, redactSecret(v.String()))
		}
		return slog.String(a.Key, r.RedactString(v.String()))

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
	}

	return slog.Attr{Key: a.Key, Value: v}
}

// isSensitiveKey reports whether an attribute key names a secret.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// redactSecret keeps a short prefix of long secrets for identification.
func redactSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:4] + "***"
}

// RedactEmail keeps the first character of the local part and the domain.
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if local == "" {
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}

// RedactIPv4 keeps only the first octet.
func RedactIPv4(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}
	return parts[0] + ".*.*.*"
}
