package formskema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeDuplicateKey     = "duplicate_key"
	CodeUnregisteredType = "unregistered_type"
	CodeInvalidPattern   = "invalid_pattern"
	CodeInvalidField     = "invalid_field"
	CodeOverrideDepth    = "override_depth"
	CodeOverrideMismatch = "override_mismatch"
)

// Issue represents a single configuration finding.
type Issue struct {
	Path    string // Dotted field path (for example: address.city).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"pattern": "[a-", "depth": 2})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. duplicate_key at address.city
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) && len(ce.Issues) > 0 {
		return ce.Issues, true
	}
	return nil, false
}

// ConfigurationErrorPrefix starts every ConfigurationError message.
const ConfigurationErrorPrefix = "[Dynamic Forms]"

// ConfigurationError reports a form tree the compiler cannot accept. It is the
// only error kind returned to callers instead of being logged.
type ConfigurationError struct {
	Message string
	Issues  Issues
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return ConfigurationErrorPrefix + " " + e.Message
}

func (e *ConfigurationError) Unwrap() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e.Issues
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
