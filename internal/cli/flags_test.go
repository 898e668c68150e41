package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remedyhq/remedy/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"yaml", false},
		{"", false},
		{"TEXT", false},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.valid, IsValidOutputFormat(tc.format))
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"generic error", stderrors.New("boom"), ExitError},
		{"invalid output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"wrapped invalid output format", errors.Wrap(errors.ErrInvalidOutputFormat, "flag check"), ExitInvalidInput},
		{"unknown flag", stderrors.New(`unknown flag: --frobnicate`), ExitInvalidInput},
		{"unknown command", stderrors.New(`unknown command "frob" for "remedy"`), ExitInvalidInput},
		{"admission timeout", errors.ErrAdmissionTimeout, ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExitCodeForError(tc.err))
		})
	}
}
