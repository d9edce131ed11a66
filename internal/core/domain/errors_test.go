package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allErrors() map[string]error {
	return map[string]error{
		"ErrNotFound":         ErrNotFound,
		"ErrInvalidInput":     ErrInvalidInput,
		"ErrUnsupportedKind":  ErrUnsupportedKind,
		"ErrStoreUnavailable": ErrStoreUnavailable,
	}
}

func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not found"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnsupportedKind, "unsupported entity kind"},
		{ErrStoreUnavailable, "store unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

// TestErrors_Uniqueness ensures no sentinel matches another through errors.Is.
func TestErrors_Uniqueness(t *testing.T) {
	errs := allErrors()
	for nameA, a := range errs {
		for nameB, b := range errs {
			if nameA == nameB {
				continue
			}
			assert.False(t, errors.Is(a, b), "%s should not match %s", nameA, nameB)
		}
	}
}

func TestErrors_WithWrapping(t *testing.T) {
	for name, sentinel := range allErrors() {
		t.Run(name, func(t *testing.T) {
			wrapped := fmt.Errorf("upsert falabella:123: %w", sentinel)
			twice := fmt.Errorf("batch: %w", wrapped)

			assert.ErrorIs(t, wrapped, sentinel)
			assert.ErrorIs(t, twice, sentinel)
			assert.Contains(t, twice.Error(), sentinel.Error())
		})
	}
}

func TestErrors_InSwitchStatement(t *testing.T) {
	classify := func(err error) string {
		switch {
		case errors.Is(err, ErrStoreUnavailable):
			return "abort"
		case errors.Is(err, ErrInvalidInput):
			return "skip"
		case errors.Is(err, ErrNotFound):
			return "missing"
		default:
			return "other"
		}
	}

	assert.Equal(t, "abort", classify(fmt.Errorf("ping: %w", ErrStoreUnavailable)))
	assert.Equal(t, "skip", classify(fmt.Errorf("empty product id: %w", ErrInvalidInput)))
	assert.Equal(t, "missing", classify(ErrNotFound))
	assert.Equal(t, "other", classify(errors.New("boom")))
}
