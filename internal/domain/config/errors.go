package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeConfigParse      = "CONFIG_PARSE"
	ErrCodeConfigFormat     = "CONFIG_FORMAT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodePluginNotFound   = "PLUGIN_NOT_FOUND"
	ErrCodePluginKeyInvalid = "PLUGIN_KEY_INVALID"
	ErrCodeOutputNotFound   = "OUTPUT_NOT_FOUND"
	ErrCodeAudioUnsupported = "AUDIO_UNSUPPORTED"
	ErrCodeInitialiseFailed = "INITIALISE_FAILED"
	ErrCodeBackendUnknown   = "BACKEND_UNKNOWN"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path, plugin key, or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}

	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a new UserError with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	c := *e
	c.Context = ctx
	return &c
}

// WithSuggestion returns a new UserError with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a new UserError wrapping another error.
func (e *UserError) WithUnderlying(err error) *UserError {
	c := *e
	c.Underlying = err
	return &c
}

// ErrorList accumulates multiple errors for comprehensive reporting.
type ErrorList struct {
	errors []*UserError
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{
		errors: make([]*UserError, 0),
	}
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddValidation adds a validation error to the list.
func (l *ErrorList) AddValidation(field, message, suggestion string) {
	l.Add(&UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if there are any errors.
func (l *ErrorList) HasErrors() bool {
	return len(l.errors) > 0
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns the list of errors.
func (l *ErrorList) Errors() []*UserError {
	result := make([]*UserError, len(l.errors))
	copy(result, l.errors)
	return result
}

// Error implements the error interface for ErrorList.
func (l *ErrorList) Error() string {
	if len(l.errors) == 0 {
		return ""
	}
	if len(l.errors) == 1 {
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Format returns a detailed formatted output of all errors.
func (l *ErrorList) Format() string {
	if len(l.errors) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n--- Error %d ---\n", i+1)
		b.WriteString(err.Format())
		b.WriteString("\n")
	}
	return b.String()
}

// AsError returns the ErrorList as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// Common user-friendly error constructors.

// NewConfigNotFoundError creates an error for a missing config file.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("configuration file not found: %s", path),
		Context:    path,
		Suggestion: "Check the --config path, or omit it to use the built-in defaults.",
	}
}

// NewConfigFormatError creates an error for a config file with an unknown
// extension.
func NewConfigFormatError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigFormat,
		Message:    fmt.Sprintf("unsupported configuration format %q", extension(path)),
		Context:    path,
		Suggestion: "Use a .yaml, .yml, .toml or .ini file.",
	}
}

// NewConfigParseError creates an error for TOML or INI parsing failures.
func NewConfigParseError(path string, err error) *UserError {
	suggestion := "Check the file syntax."
	switch extension(path) {
	case ".toml":
		suggestion = "Check your TOML syntax. Strings must be quoted and arrays use [ ]."
	case ".ini":
		suggestion = "Check your INI syntax. Keys use 'name = value' and lists are comma separated."
	}
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "failed to parse configuration file",
		Context:    path,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// NewValidationFailedError creates a validation error.
func NewValidationFailedError(field, message string) *UserError {
	return &UserError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for '%s': %s", field, message),
		Context: field,
	}
}

// NewPluginNotFoundError creates an error for an unknown plugin key.
// Similar lists keys the user may have meant.
func NewPluginNotFoundError(key string, similar []string) *UserError {
	suggestion := "Run 'vamphost list' to see the installed plugins, or 'vamphost path' to see where they are searched for."
	if len(similar) > 0 {
		suggestion = fmt.Sprintf("Did you mean: %s", strings.Join(similar, ", "))
	}
	return &UserError{
		Code:       ErrCodePluginNotFound,
		Message:    fmt.Sprintf("plugin '%s' not found", key),
		Context:    key,
		Suggestion: suggestion,
	}
}

// NewPluginKeyError creates an error for a malformed plugin key.
func NewPluginKeyError(key string, err error) *UserError {
	return &UserError{
		Code:       ErrCodePluginKeyInvalid,
		Message:    fmt.Sprintf("invalid plugin key '%s'", key),
		Suggestion: "Plugin keys have the form library:identifier, for example vamp-example-plugins:percussiononsets.",
		Underlying: err,
	}
}

// NewOutputNotFoundError creates an error for an unknown plugin output.
func NewOutputNotFoundError(key, output string, available []string) *UserError {
	return &UserError{
		Code:       ErrCodeOutputNotFound,
		Message:    fmt.Sprintf("plugin '%s' has no output '%s'", key, output),
		Context:    key,
		Suggestion: fmt.Sprintf("Available outputs: %s", strings.Join(available, ", ")),
	}
}

// NewInitialiseError creates an error for a plugin rejecting a run
// configuration.
func NewInitialiseError(key string, channels, step, block int, err error) *UserError {
	return &UserError{
		Code:       ErrCodeInitialiseFailed,
		Message:    fmt.Sprintf("plugin '%s' rejected %d channel(s), step %d, block %d", key, channels, step, block),
		Context:    key,
		Suggestion: "Try --block-size with a power of two, or leave sizes unset to use the plugin's preferences.",
		Underlying: err,
	}
}

// NewFileNotFoundError creates an error for a missing input file.
func NewFileNotFoundError(path string) *UserError {
	return &UserError{
		Code:    ErrCodeFileNotFound,
		Message: fmt.Sprintf("file not found: %s", path),
		Context: path,
	}
}

// NewAudioUnsupportedError creates an error for audio the host cannot
// decode.
func NewAudioUnsupportedError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeAudioUnsupported,
		Message:    "cannot read audio file",
		Context:    path,
		Suggestion: "Convert the file to integer PCM WAV, for example with 'sox in.flac -b 16 out.wav'.",
		Underlying: err,
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// NewYAMLParseError translates technical YAML errors into user-friendly messages.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	var message, suggestion string

	switch {
	case strings.Contains(errStr, "cannot unmarshal !!map into []string"):
		message = "invalid search_path format"
		suggestion = `search_path should be a list of directories.

Correct format:
  search_path:
    - ~/vamp
    - /opt/vamp`

	case strings.Contains(errStr, "cannot unmarshal !!seq into"):
		message = "expected a single value but found a list"
		suggestion = "Check that you're using 'key: value' format instead of '- item' list format."

	case strings.Contains(errStr, "cannot unmarshal !!str into"):
		message = "unexpected string value"
		suggestion = "Numbers and booleans must not be quoted: block_size: 1024, use_env_path: false."

	case strings.Contains(errStr, "did not find expected key"):
		message = "missing required field or incorrect indentation"
		suggestion = "YAML is sensitive to indentation. Use 2 spaces (not tabs) for each level."

	case strings.Contains(errStr, "mapping values are not allowed"):
		message = "invalid YAML structure"
		suggestion = "Check for missing colons after keys, or incorrect indentation."

	case strings.Contains(errStr, "found character that cannot start"):
		message = "invalid character in YAML"
		suggestion = "Quote string values that contain special characters like ':', '#', or '{'."

	default:
		message = "invalid YAML syntax"
		suggestion = "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters."
	}

	// Extract line number if present
	context := path
	if strings.Contains(errStr, "line ") {
		parts := strings.Split(errStr, "line ")
		if len(parts) > 1 {
			lineInfo := strings.Split(parts[1], ":")[0]
			context = fmt.Sprintf("%s (line %s)", path, lineInfo)
		}
	}

	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    message,
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}
