package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPressErrorIsMatchesByCode(t *testing.T) {
	err := NotFound(CodeTaskNotFound, "tasks.get", fmt.Errorf("id %q", "abc"))
	wrapped := fmt.Errorf("poll: %w", err)

	require.ErrorIs(t, wrapped, ErrTaskNotFound)
	assert.NotErrorIs(t, wrapped, ErrTaskExpired)
	assert.Equal(t, CategoryNotFound, CategoryOf(wrapped))
	assert.Equal(t, CodeTaskNotFound, CodeOf(wrapped))
	assert.Equal(t, "task not found", MessageOf(wrapped))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError(CodeInvalidLevel, "level", "ultra", nil), CodeInvalidLevel},
		{"optimization", NewOptimizationError("a.png", "image", "decode", errors.New("bad")), CodeEntryOptimization},
		{"corrupt", CorruptArchive("archive.open", errors.New("zip: not a valid zip file")), CodeFileCorrupted},
		{"pack", Pack("archive.pack", nil), CodePackFailed},
		{"plain", errors.New("boom"), CodeCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(CodeFileTooLarge, "file", 5<<20, nil)

	assert.True(t, IsValidationError(fmt.Errorf("submit: %w", err)))
	assert.Equal(t, "the file exceeds the maximum allowed size", err.Error())
	assert.NotEmpty(t, SuggestionOf(err))
	assert.Equal(t, CategoryValidation, CategoryOf(err))
}

func TestIsRetryAble(t *testing.T) {
	assert.True(t, Storage("store.save", errors.New("conn reset")).IsRetryAble())
	assert.False(t, CorruptArchive("archive.open", nil).IsRetryAble())
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create: %w", NewValidationError(CodeTaskExists, "taskId", "abc", nil))
	assert.ErrorIs(t, err, ErrTaskExists)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
}
