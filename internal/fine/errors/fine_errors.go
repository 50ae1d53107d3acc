package fineerrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be a positive decimal number",
		http.StatusBadRequest,
	)
	ErrNoEntries = apperror.New(
		apperror.CodeInvalidInput,
		"a fine needs at least one employee entry",
		http.StatusBadRequest,
	)
	ErrDuplicateEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"an employee may appear only once per fine",
		http.StatusBadRequest,
	)
	ErrDuplicateReference = apperror.New(
		apperror.CodeConflict,
		"a fine with this reference already exists",
		http.StatusConflict,
	)
	ErrFineNotFound = apperror.New(
		apperror.CodeNotFound,
		"fine not found",
		http.StatusNotFound,
	)
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"fine entry not found",
		http.StatusNotFound,
	)
	ErrRemarksRequired = apperror.New(
		apperror.CodeInvalidInput,
		"remarks are required when rejecting",
		http.StatusBadRequest,
	)
)
