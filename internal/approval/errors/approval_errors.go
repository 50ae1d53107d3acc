package approvalerrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrNotEligible = apperror.New(
		apperror.CodeForbidden,
		"you are not authorized to act on this request",
		http.StatusForbidden,
	)
	ErrAlreadyEscalated = apperror.New(
		apperror.CodeForbidden,
		"request is awaiting CEO authorization and cannot be approved by the direct manager",
		http.StatusForbidden,
	)
	ErrTerminalState = apperror.New(
		apperror.CodeInvalidState,
		"request has already been finalized",
		http.StatusConflict,
	)
	ErrUnknownAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be APPROVE or REJECT",
		http.StatusBadRequest,
	)
	ErrUnknownStatus = apperror.New(
		apperror.CodeInvalidState,
		"request has an unknown approval status",
		http.StatusConflict,
	)
)
