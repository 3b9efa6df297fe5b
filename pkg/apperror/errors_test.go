package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type status string

func (s status) String() string { return string(s) }

func TestErrorsIsMatchesByKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target *AppError
		want   bool
	}{
		{"duplicate", NewDuplicateError("Lead", "Acme"), ErrDuplicate, true},
		{"permission", NewPermissionError("admins only"), ErrForbidden, true},
		{"transition", NewInvalidTransitionError(status("Paid"), status("Unpaid")), ErrInvalidTransition, true},
		{"transition is not permission", NewInvalidTransitionError(status("Paid"), status("Unpaid")), ErrForbidden, false},
		{"permission is not transition", NewPermissionError("no"), ErrInvalidTransition, false},
		{"wrapped validation", fmt.Errorf("create lead: %w", NewFieldError("email", "invalid")), ErrValidation, true},
		{"plain error", errors.New("boom"), ErrPersistence, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("update invoices", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, http.StatusInternalServerError, err.Code)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetAppErrorFallsBackToInternal(t *testing.T) {
	appErr := GetAppError(errors.New("unexpected"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, Kind(""), KindOf(errors.New("unexpected")))
	assert.Equal(t, KindDuplicate, KindOf(NewDuplicateError("Client", "")))
}
