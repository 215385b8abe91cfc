package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		msg    string
	}{
		{MissingField("username"), http.StatusUnprocessableEntity, "Missing field: username"},
		{WrongType("to"), http.StatusUnprocessableEntity, "Incorrect field type: to"},
		{UnknownParty("from"), http.StatusUnprocessableEntity, "Incorrect field value: from"},
		{Conflict("User already exists"), http.StatusBadRequest, "User already exists"},
		{NotFound("User not found"), http.StatusNotFound, "User not found"},
		{Rejected(), http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.msg, tt.err.Message)
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("STORE_FAILURE", "list users", cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.ErrorIs(t, err, cause)

	oopsErr, ok := oops.AsOops(err.Unwrap())
	require.True(t, ok)
	assert.Equal(t, "STORE_FAILURE", oopsErr.Code())
	assert.Equal(t, "list users", oopsErr.Context()["operation"])
}

func TestFrom(t *testing.T) {
	nf := NotFound("Message not found")
	assert.Same(t, nf, From(nf))

	wrapped := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, wrapped.Status)
	assert.True(t, IsInternal(errors.New("boom")))
	assert.False(t, IsInternal(nf))
}
