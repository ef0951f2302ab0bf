package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidation("bad input"), CodeValidation, http.StatusBadRequest},
		{"invalid amount", NewInvalidAmount("amount", -5), CodeInvalidAmount, http.StatusBadRequest},
		{"not found", NewNotFound("customer", "abc"), CodeNotFound, http.StatusNotFound},
		{"business rule", NewBusinessRule(CodeDocumentPosted, "already posted"), CodeDocumentPosted, http.StatusUnprocessableEntity},
		{"insufficient stock", NewInsufficientStock("sp-1", 20, 3), CodeInsufficientStock, http.StatusUnprocessableEntity},
		{"insufficient funds", NewInsufficientFunds("ac-1", 50000, 40000), CodeInsufficientFunds, http.StatusUnprocessableEntity},
		{"invalid transfer", NewInvalidTransfer("same account"), CodeInvalidTransfer, http.StatusUnprocessableEntity},
		{"consistency violation", NewConsistencyViolation("missing sibling leg"), CodeConsistencyViolation, http.StatusConflict},
		{"concurrent modification", NewConcurrentModification("sale", "abc"), CodeConcurrentModification, http.StatusConflict},
		{"internal", NewInternal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
		{"unauthorized", NewUnauthorized("bad token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbidden("admins only"), CodeForbidden, http.StatusForbidden},
		{"conflict", NewConflict("busy"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("customer", "code", "CU-001"), CodeDuplicate, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
		})
	}
}

func TestAppError_Error(t *testing.T) {
	err := NewValidation("name is required")
	assert.Equal(t, "VALIDATION_ERROR: name is required", err.Error())

	wrapped := NewInternal(errors.New("pq: connection refused"))
	assert.Contains(t, wrapped.Error(), "caused by: pq: connection refused")
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewValidation("bad line").
		WithDetail("line_no", 3).
		WithDetail("field", "quantity")

	assert.Equal(t, 3, err.Details["line_no"])
	assert.Equal(t, "quantity", err.Details["field"])
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := NewNotFound("account", "ac-1").WithCause(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestInsufficientFunds_Details(t *testing.T) {
	err := NewInsufficientFunds("ac-1", 50000, 40000)

	assert.Equal(t, "ac-1", err.Details["account_id"])
	assert.Equal(t, int64(50000), err.Details["requested"])
	assert.Equal(t, int64(40000), err.Details["available"])
}

func TestHelpers(t *testing.T) {
	notFound := NewNotFound("product", "pr-1")
	wrapped := fmt.Errorf("load product: %w", notFound)

	assert.True(t, IsAppError(wrapped))
	assert.False(t, IsAppError(errors.New("plain")))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(NewConflict("busy")))

	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeConflict))

	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}
