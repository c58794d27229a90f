package liberfly

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found users
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword covers both unknown email and wrong password
// so responses give nothing away about which one it was.
var ErrMismatchedHashAndPassword = errors.New("credentials do not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrNoEmptyString guards hashing of empty secrets
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrTokenNotFound is returned when a presented bearer token has no row
var ErrTokenNotFound = errors.New("access token not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_NOT_FOUND")

// ErrTokenExpired is returned when a presented bearer token is past its expiry
var ErrTokenExpired = errors.New("access token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// IsUniqueViolation will check for unique constraint errors coming back from
// the store. We match on message because the sqlite and postgres drivers
// surface different concrete types.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// HTTPStatus maps an error to the status code the API contract expects:
// validation 422, auth 401, not found 404, everything else 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryConflict:
		return http.StatusUnprocessableEntity
	case errors.CategoryAuth, errors.CategoryAuthz:
		return http.StatusUnauthorized
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
