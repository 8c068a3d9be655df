// Package errors provides typed application errors with stable machine codes.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Gathering errors
	CodeGatheringNotFound          Code = "GATHERING_NOT_FOUND"
	CodeGatheringTitleEmpty        Code = "GATHERING_TITLE_EMPTY"
	CodeGatheringAlreadyLaunched   Code = "GATHERING_ALREADY_LAUNCHED"
	CodeGatheringSetupIncomplete   Code = "GATHERING_SETUP_INCOMPLETE"
	CodeGatheringInvalidSetupItem  Code = "GATHERING_INVALID_SETUP_ITEM"
	CodeGatheringValidationFailed  Code = "GATHERING_VALIDATION_FAILED"
	CodeGatheringNotHost           Code = "GATHERING_NOT_HOST"
	CodeGatheringCanceled          Code = "GATHERING_CANCELED"
	CodeGatheringCapacityNegative  Code = "GATHERING_CAPACITY_NEGATIVE"
	CodeGatheringStatusDisallowsOp Code = "GATHERING_STATUS_DISALLOWS_OPERATION"

	// RSVP errors
	CodeRSVPInvalidStatus Code = "RSVP_INVALID_STATUS"
	CodeRSVPNotOpen       Code = "RSVP_NOT_OPEN"

	// Principal errors
	CodePrincipalRequired Code = "PRINCIPAL_REQUIRED"
	CodePrincipalInvalid  Code = "PRINCIPAL_INVALID"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// Error is a typed application failure carrying a stable code.
type Error struct {
	Code    Code
	Message string
}

// Error renders the human-readable message.
func (e Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// E builds a typed Error.
func E(code Code, message string) error {
	return Error{Code: code, Message: message}
}

// CodeOf extracts the machine code from an error chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return CodeUnknown
	}
	if strings.TrimSpace(string(appErr.Code)) == "" {
		return CodeUnknown
	}
	return appErr.Code
}

// HTTPStatus maps typed error codes to HTTP status codes.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch CodeOf(err) {
	case CodeGatheringTitleEmpty,
		CodeGatheringInvalidSetupItem,
		CodeGatheringCapacityNegative,
		CodeRSVPInvalidStatus:
		return http.StatusBadRequest

	case CodePrincipalRequired,
		CodePrincipalInvalid:
		return http.StatusUnauthorized

	case CodeGatheringNotHost:
		return http.StatusForbidden

	case CodeGatheringNotFound,
		CodeNotFound:
		return http.StatusNotFound

	case CodeGatheringAlreadyLaunched,
		CodeGatheringSetupIncomplete,
		CodeGatheringCanceled,
		CodeGatheringStatusDisallowsOp,
		CodeRSVPNotOpen,
		CodeAlreadyExists:
		return http.StatusConflict

	case CodeGatheringValidationFailed:
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
