package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *UserError
		expected string
	}{
		{
			name: "simple message",
			err: &UserError{
				Code:    ErrCodeConfigNotFound,
				Message: "config file not found",
			},
			expected: "config file not found",
		},
		{
			name: "message with context",
			err: &UserError{
				Code:    ErrCodeConfigNotFound,
				Message: "config file not found",
				Context: "vamphost.yaml",
			},
			expected: "config file not found (at vamphost.yaml)",
		},
		{
			name: "message with all fields",
			err: &UserError{
				Code:       ErrCodeConfigNotFound,
				Message:    "config file not found",
				Context:    "vamphost.yaml",
				Suggestion: "run init",
			},
			expected: "config file not found (at vamphost.yaml)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUserError_Format(t *testing.T) {
	t.Parallel()

	err := &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    "config file not found",
		Context:    "vamphost.yaml",
		Suggestion: "Check the --config path",
	}

	formatted := err.Format()

	assert.Contains(t, formatted, "[CONFIG_NOT_FOUND]")
	assert.Contains(t, formatted, "config file not found")
	assert.Contains(t, formatted, "Location: vamphost.yaml")
	assert.Contains(t, formatted, "Suggestion: Check the --config")
}

func TestUserError_Unwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	err := &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "parse failed",
		Underlying: underlying,
	}

	assert.Equal(t, underlying, err.Unwrap())
	assert.ErrorIs(t, err, underlying)
}

func TestUserError_Is(t *testing.T) {
	t.Parallel()

	err1 := &UserError{Code: ErrCodeConfigNotFound, Message: "not found 1"}
	err2 := &UserError{Code: ErrCodeConfigNotFound, Message: "not found 2"}
	err3 := &UserError{Code: ErrCodeConfigParse, Message: "parse error"}

	assert.ErrorIs(t, err1, err2)
	assert.NotErrorIs(t, err1, err3)
}

func TestUserError_WithContext(t *testing.T) {
	t.Parallel()

	original := &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    "not found",
		Suggestion: "fix it",
	}

	withContext := original.WithContext("path/to/file.yaml")

	assert.Equal(t, original.Code, withContext.Code)
	assert.Equal(t, original.Message, withContext.Message)
	assert.Equal(t, original.Suggestion, withContext.Suggestion)
	assert.Equal(t, "path/to/file.yaml", withContext.Context)
	assert.Empty(t, original.Context) // Original unchanged
}

func TestUserError_WithSuggestion(t *testing.T) {
	t.Parallel()

	original := &UserError{
		Code:    ErrCodeConfigNotFound,
		Message: "not found",
		Context: "file.yaml",
	}

	withSuggestion := original.WithSuggestion("Check the path")

	assert.Equal(t, original.Code, withSuggestion.Code)
	assert.Equal(t, original.Message, withSuggestion.Message)
	assert.Equal(t, original.Context, withSuggestion.Context)
	assert.Equal(t, "Check the path", withSuggestion.Suggestion)
	assert.Empty(t, original.Suggestion) // Original unchanged
}

func TestUserError_WithUnderlying(t *testing.T) {
	t.Parallel()

	underlying := errors.New("root cause")
	original := &UserError{
		Code:    ErrCodeConfigParse,
		Message: "parse failed",
	}

	withUnderlying := original.WithUnderlying(underlying)

	assert.Equal(t, underlying, withUnderlying.Underlying)
	assert.NoError(t, original.Underlying) // Original unchanged
}

func TestNewUserError(t *testing.T) {
	t.Parallel()

	err := NewUserError(ErrCodeValidationFailed, "validation error")

	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Equal(t, "validation error", err.Message)
	assert.Empty(t, err.Context)
	assert.Empty(t, err.Suggestion)
}

func TestErrorList_Add(t *testing.T) {
	t.Parallel()

	list := NewErrorList()
	assert.False(t, list.HasErrors())
	assert.Equal(t, 0, list.Len())

	list.Add(&UserError{Code: ErrCodeConfigNotFound, Message: "err1"})
	list.Add(&UserError{Code: ErrCodeConfigParse, Message: "err2"})
	list.Add(nil) // Should be ignored

	assert.True(t, list.HasErrors())
	assert.Equal(t, 2, list.Len())
}

func TestErrorList_AddValidation(t *testing.T) {
	t.Parallel()

	list := NewErrorList()
	list.AddValidation("run.block_size", "must not be negative", "Use 0")

	require.Equal(t, 1, list.Len())
	err := list.Errors()[0]
	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Contains(t, err.Message, "run.block_size")
	assert.Contains(t, err.Message, "must not be negative")
	assert.Equal(t, "Use 0", err.Suggestion)
}

func TestErrorList_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    func(*ErrorList)
		contains []string
	}{
		{
			name:     "empty list",
			setup:    func(_ *ErrorList) {},
			contains: nil,
		},
		{
			name: "single error",
			setup: func(l *ErrorList) {
				l.Add(&UserError{Code: "ERR1", Message: "first error"})
			},
			contains: []string{"first error"},
		},
		{
			name: "multiple errors",
			setup: func(l *ErrorList) {
				l.Add(&UserError{Code: "ERR1", Message: "first error"})
				l.Add(&UserError{Code: "ERR2", Message: "second error"})
			},
			contains: []string{"2 errors occurred", "first error", "second error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list := NewErrorList()
			tt.setup(list)
			errStr := list.Error()

			for _, s := range tt.contains {
				assert.Contains(t, errStr, s)
			}
		})
	}
}

func TestErrorList_Format(t *testing.T) {
	t.Parallel()

	list := NewErrorList()
	list.Add(&UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    "config not found",
		Context:    "vamphost.yaml",
		Suggestion: "Run init",
	})
	list.Add(&UserError{
		Code:    ErrCodeValidationFailed,
		Message: "validation error",
	})

	formatted := list.Format()

	assert.Contains(t, formatted, "Found 2 error(s)")
	assert.Contains(t, formatted, "[CONFIG_NOT_FOUND]")
	assert.Contains(t, formatted, "[VALIDATION_FAILED]")
	assert.Contains(t, formatted, "Location: vamphost.yaml")
	assert.Contains(t, formatted, "Suggestion: Run init")
}

func TestErrorList_Errors(t *testing.T) {
	t.Parallel()

	list := NewErrorList()
	err1 := &UserError{Code: "ERR1", Message: "error 1"}
	err2 := &UserError{Code: "ERR2", Message: "error 2"}
	list.Add(err1)
	list.Add(err2)

	errors := list.Errors()

	assert.Len(t, errors, 2)
	assert.Equal(t, err1, errors[0])
	assert.Equal(t, err2, errors[1])

	// Verify it's a copy
	errors[0] = nil
	assert.NotNil(t, list.Errors()[0])
}

func TestErrorList_AsError(t *testing.T) {
	t.Parallel()

	t.Run("empty list returns nil", func(t *testing.T) {
		t.Parallel()
		list := NewErrorList()
		assert.NoError(t, list.AsError())
	})

	t.Run("non-empty list returns error", func(t *testing.T) {
		t.Parallel()
		list := NewErrorList()
		list.Add(&UserError{Code: "ERR", Message: "error"})
		assert.Error(t, list.AsError())
	})
}

func TestNewConfigNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewConfigNotFoundError("/path/to/vamphost.yaml")

	assert.Equal(t, ErrCodeConfigNotFound, err.Code)
	assert.Contains(t, err.Message, "/path/to/vamphost.yaml")
	assert.Equal(t, "/path/to/vamphost.yaml", err.Context)
	assert.Contains(t, err.Suggestion, "--config")
}

func TestNewConfigFormatError(t *testing.T) {
	t.Parallel()

	err := NewConfigFormatError("settings.JSON")

	assert.Equal(t, ErrCodeConfigFormat, err.Code)
	assert.Contains(t, err.Message, `".json"`)
	assert.Contains(t, err.Suggestion, ".toml")
}

func TestNewConfigParseError(t *testing.T) {
	t.Parallel()

	underlying := errors.New("toml: expected character =")
	err := NewConfigParseError("/path/to/vamphost.toml", underlying)

	assert.Equal(t, ErrCodeConfigParse, err.Code)
	assert.Equal(t, "/path/to/vamphost.toml", err.Context)
	assert.Contains(t, err.Suggestion, "TOML syntax")
	assert.ErrorIs(t, err, underlying)

	err = NewConfigParseError("vamphost.ini", underlying)
	assert.Contains(t, err.Suggestion, "INI syntax")
}

func TestNewPluginNotFoundError(t *testing.T) {
	t.Parallel()

	t.Run("with similar keys", func(t *testing.T) {
		t.Parallel()
		err := NewPluginNotFoundError("vamp-example-plugins:onsets", []string{"vamp-example-plugins:percussiononsets"})

		assert.Equal(t, ErrCodePluginNotFound, err.Code)
		assert.Contains(t, err.Message, "vamp-example-plugins:onsets")
		assert.Contains(t, err.Suggestion, "percussiononsets")
	})

	t.Run("without similar keys", func(t *testing.T) {
		t.Parallel()
		err := NewPluginNotFoundError("nothing:here", nil)

		assert.Equal(t, ErrCodePluginNotFound, err.Code)
		assert.Contains(t, err.Suggestion, "vamphost list")
	})
}

func TestNewPluginKeyError(t *testing.T) {
	t.Parallel()

	underlying := errors.New("missing colon")
	err := NewPluginKeyError("percussiononsets", underlying)

	assert.Equal(t, ErrCodePluginKeyInvalid, err.Code)
	assert.Contains(t, err.Suggestion, "library:identifier")
	assert.ErrorIs(t, err, underlying)
}

func TestNewOutputNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewOutputNotFoundError("ex:onsets", "tempo", []string{"onsets", "detectionfunction"})

	assert.Equal(t, ErrCodeOutputNotFound, err.Code)
	assert.Contains(t, err.Message, "tempo")
	assert.Contains(t, err.Suggestion, "onsets, detectionfunction")
}

func TestNewInitialiseError(t *testing.T) {
	t.Parallel()

	underlying := errors.New("unsupported block size")
	err := NewInitialiseError("ex:onsets", 2, 512, 1000, underlying)

	assert.Equal(t, ErrCodeInitialiseFailed, err.Code)
	assert.Contains(t, err.Message, "2 channel(s), step 512, block 1000")
	assert.ErrorIs(t, err, underlying)
}

func TestNewAudioErrors(t *testing.T) {
	t.Parallel()

	missing := NewFileNotFoundError("take1.wav")
	assert.Equal(t, ErrCodeFileNotFound, missing.Code)
	assert.Equal(t, "take1.wav", missing.Context)

	underlying := errors.New("WAV format 3")
	unsupported := NewAudioUnsupportedError("take1.wav", underlying)
	assert.Equal(t, ErrCodeAudioUnsupported, unsupported.Code)
	assert.Contains(t, unsupported.Suggestion, "PCM WAV")
	assert.ErrorIs(t, unsupported, underlying)
}

func TestNewValidationFailedError(t *testing.T) {
	t.Parallel()

	err := NewValidationFailedError("run.block_size", "must not be negative")

	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Contains(t, err.Message, "run.block_size")
	assert.Contains(t, err.Message, "must not be negative")
	assert.Equal(t, "run.block_size", err.Context)
}

func TestIsUserError(t *testing.T) {
	t.Parallel()

	t.Run("is UserError with matching code", func(t *testing.T) {
		t.Parallel()
		err := NewConfigNotFoundError("path")
		assert.True(t, IsUserError(err, ErrCodeConfigNotFound))
	})

	t.Run("is UserError with different code", func(t *testing.T) {
		t.Parallel()
		err := NewConfigNotFoundError("path")
		assert.False(t, IsUserError(err, ErrCodeConfigParse))
	})

	t.Run("not a UserError", func(t *testing.T) {
		t.Parallel()
		err := errors.New("regular error")
		assert.False(t, IsUserError(err, ErrCodeConfigNotFound))
	})

	t.Run("wrapped UserError", func(t *testing.T) {
		t.Parallel()
		ue := NewConfigNotFoundError("path")
		wrapped := errors.New("wrapped: " + ue.Error())
		// Not wrapped with %w, so this should be false
		assert.False(t, IsUserError(wrapped, ErrCodeConfigNotFound))
	})
}

func TestGetUserError(t *testing.T) {
	t.Parallel()

	t.Run("returns UserError", func(t *testing.T) {
		t.Parallel()
		err := NewConfigNotFoundError("path")
		ue := GetUserError(err)
		require.NotNil(t, ue)
		assert.Equal(t, ErrCodeConfigNotFound, ue.Code)
	})

	t.Run("returns nil for non-UserError", func(t *testing.T) {
		t.Parallel()
		err := errors.New("regular error")
		ue := GetUserError(err)
		assert.Nil(t, ue)
	})
}

func TestNewYAMLParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		path            string
		err             error
		expectedMessage string
		expectedContext string
		suggestionHas   string
	}{
		{
			name:            "map into slice error",
			path:            "vamphost.yaml",
			err:             errors.New("yaml: unmarshal errors:\n  line 5: cannot unmarshal !!map into []string"),
			expectedMessage: "invalid search_path format",
			expectedContext: "vamphost.yaml (line 5)",
			suggestionHas:   "list of directories",
		},
		{
			name:            "seq into map error",
			path:            "vamphost.yml",
			err:             errors.New("yaml: unmarshal errors:\n  line 3: cannot unmarshal !!seq into int"),
			expectedMessage: "expected a single value but found a list",
			expectedContext: "vamphost.yml (line 3)",
			suggestionHas:   "key: value",
		},
		{
			name:            "str into type error",
			path:            "config.yaml",
			err:             errors.New("yaml: cannot unmarshal !!str into int"),
			expectedMessage: "unexpected string value",
			expectedContext: "config.yaml",
			suggestionHas:   "must not be quoted",
		},
		{
			name:            "missing key error",
			path:            "config.yaml",
			err:             errors.New("yaml: did not find expected key"),
			expectedMessage: "missing required field or incorrect indentation",
			expectedContext: "config.yaml",
			suggestionHas:   "2 spaces",
		},
		{
			name:            "mapping values error",
			path:            "config.yaml",
			err:             errors.New("yaml: mapping values are not allowed here"),
			expectedMessage: "invalid YAML structure",
			expectedContext: "config.yaml",
			suggestionHas:   "colons",
		},
		{
			name:            "invalid character error",
			path:            "config.yaml",
			err:             errors.New("yaml: found character that cannot start any token"),
			expectedMessage: "invalid character in YAML",
			expectedContext: "config.yaml",
			suggestionHas:   "special characters",
		},
		{
			name:            "generic yaml error",
			path:            "config.yaml",
			err:             errors.New("yaml: some other error"),
			expectedMessage: "invalid YAML syntax",
			expectedContext: "config.yaml",
			suggestionHas:   "YAML syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userErr := NewYAMLParseError(tt.path, tt.err)

			assert.Equal(t, ErrCodeConfigParse, userErr.Code)
			assert.Equal(t, tt.expectedMessage, userErr.Message)
			assert.Equal(t, tt.expectedContext, userErr.Context)
			assert.Contains(t, userErr.Suggestion, tt.suggestionHas)
			assert.ErrorIs(t, userErr, tt.err)
		})
	}
}
