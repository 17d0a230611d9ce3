package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "student not found")
	wrapped := errors.Join(errors.New("outer"), typed)

	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, "student not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestClonedErrorsMatchPredefined(t *testing.T) {
	err := Clone(ErrConflict, "class already exists")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "CONFLICT", ErrConflict.Code)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(errors.New("dial tcp"), ErrBadGateway.Code, ErrBadGateway.Status, "ai request failed")
	assert.Equal(t, "ai request failed: dial tcp", err.Error())
	assert.Nil(t, Clone(nil, "x"))
}
