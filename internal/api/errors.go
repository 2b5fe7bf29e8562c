package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/service/study"
	"github.com/phrazzld/flashdeck/internal/store"
)

// badRequestErrors are domain validation failures whose messages are safe to
// show to clients verbatim.
var badRequestErrors = []error{
	domain.ErrInvalidEmail,
	domain.ErrEmptyEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrDeckNameEmpty,
	domain.ErrDeckNameTooLong,
	domain.ErrCardFrontEmpty,
	domain.ErrCardBackEmpty,
	domain.ErrInvalidGrade,
	domain.ErrInvalidID,
	domain.ErrEmptyContent,
	domain.ErrInvalidAssignment,
	service.ErrEmptyImport,
	service.ErrImportTooLarge,
	generation.ErrEmptyText,
	shared.ErrEmptyBody,
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusOK

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Foreign resources are reported as missing so that ownership is not disclosed.
	case store.IsNotFoundError(err),
		errors.Is(err, service.ErrNotOwned),
		errors.Is(err, study.ErrCardNotFound),
		errors.Is(err, study.ErrDeckNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrShareExpired):
		return http.StatusGone

	case store.IsDuplicateError(err):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs),
		isBadRequest(err):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrDisabled),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, study.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, study.ErrDeckNotFound),
		errors.Is(err, service.ErrNotOwned):
		return "Deck not found"

	case errors.Is(err, store.ErrShareNotFound):
		return "Share not found"

	case errors.Is(err, store.ErrAssignmentNotFound):
		return "Assignment not found"

	case store.IsNotFoundError(err):
		return "Not found"

	case errors.Is(err, domain.ErrShareExpired):
		return "Share link has expired"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrAssignmentExists):
		return "Deck is already assigned to this user"

	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case isBadRequest(err):
		for _, target := range badRequestErrors {
			if errors.Is(err, target) {
				return capitalize(target.Error())
			}
		}
		return "Invalid request"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, generation.ErrDisabled):
		return "Card generation is not configured"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The text was rejected by the content filter"

	case errors.Is(err, generation.ErrInvalidResponse):
		return "Could not generate cards from this text"

	case errors.Is(err, generation.ErrTransientFailure):
		return "Card generation is temporarily unavailable"

	case errors.Is(err, generation.ErrGenerationFailed):
		return "Card generation failed"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field and rule, without exposing struct names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", lowerFirst(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gt", "gte":
		return "too short"
	case "max", "lt", "lte":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// message overrides the generic text of 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	safe := GetSafeErrorMessage(err)
	if message != "" && status >= http.StatusInternalServerError && safe == "An unexpected error occurred" {
		safe = message
	}
	shared.RespondWithErrorAndLog(w, r, status, safe, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
