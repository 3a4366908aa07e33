package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are distinct
func TestErrors_Existence(t *testing.T) {
	all := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrNotImplemented,
		ErrIndexOutOfRange,
		ErrMissingField,
		ErrClusterNotFound,
		ErrNoFocusedCluster,
		ErrInvalidAction,
		ErrConfirmationPending,
		ErrUnknownAction,
		ErrLocked,
	}

	for i, err := range all {
		t.Run(err.Error(), func(t *testing.T) {
			assert.NotEmpty(t, err.Error())
			for j, other := range all {
				if i != j {
					assert.False(t, errors.Is(err, other), "%v matches %v", err, other)
				}
			}
		})
	}
}

// TestErrors_Wrapping tests that wrapped errors still match their sentinel
func TestErrors_Wrapping(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"cluster not found", ErrClusterNotFound},
		{"confirmation pending", ErrConfirmationPending},
		{"locked", ErrLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("apply action 0: %w", tt.sentinel)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Contains(t, wrapped.Error(), tt.sentinel.Error())
		})
	}
}

func TestErrLocked_Message(t *testing.T) {
	assert.Equal(t, "clustering is locked by another session", ErrLocked.Error())
}
