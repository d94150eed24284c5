package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore("ticket", "1", nil))

	notFound := FromStore("support ticket", "t-1", fmt.Errorf("scan: %w", pgx.ErrNoRows))
	de := ToDomainError(notFound)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "support ticket not found", de.Message)
	assert.Equal(t, "t-1", de.Details["id"])

	conflict := FromStore("identity user", "", &pgconn.PgError{Code: "23505", ConstraintName: "ux_identity_users_email"})
	assert.True(t, Is(conflict, CodeConflict))

	malformed := FromStore("support ticket", "abc", fmt.Errorf("query: %w", &pgconn.PgError{
		Code:    "22P02",
		Message: `invalid input syntax for type uuid: "abc"`,
	}))
	de = ToDomainError(malformed)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "abc", de.Details["id"])

	down := FromStore("app user", "", errors.New("connection reset"))
	de = ToDomainError(down)
	assert.Equal(t, CodeDownstreamFailure, de.Code)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	assert.ErrorContains(t, down, "connection reset")

	original := NewForbidden("nope")
	assert.Same(t, original, FromStore("x", "", original))
}

func TestFromValidation(t *testing.T) {
	type input struct {
		Name  string  `validate:"required"`
		Price float64 `validate:"gte=0"`
	}
	err := FromValidation(validator.New().Struct(input{Price: -1}))
	require.Error(t, err)

	de := ToDomainError(err)
	assert.Equal(t, CodeValidationFailed, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "required", de.Details["name"])
	assert.Equal(t, "gte", de.Details["price"])
}

func TestUnauthenticatedDefaultMessage(t *testing.T) {
	err := NewUnauthenticated("")
	assert.Equal(t, "User is not logged in", err.Error())
	assert.Equal(t, http.StatusUnauthorized, ToDomainError(err).HTTPStatus)
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Nil(t, ToDomainError(nil))
}

func TestInvalidStateTransitionDetails(t *testing.T) {
	de := ToDomainError(NewInvalidStateTransition("CLOSED", "IN_PROGRESS"))
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "cannot transition from CLOSED to IN_PROGRESS", de.Message)
}
