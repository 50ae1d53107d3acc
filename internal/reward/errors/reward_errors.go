package rewarderrors

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
	ErrDuplicateReference = apperror.New(
		apperror.CodeConflict,
		"a reward with this reference already exists",
		http.StatusConflict,
	)
	ErrRewardNotFound = apperror.New(
		apperror.CodeNotFound,
		"reward not found",
		http.StatusNotFound,
	)
	ErrRemarksRequired = apperror.New(
		apperror.CodeInvalidInput,
		"remarks are required when rejecting",
		http.StatusBadRequest,
	)
)
