package employeeerrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrManagementHODNotFound = apperror.New(
		apperror.CodeNotFound,
		"no active management HOD is configured",
		http.StatusNotFound,
	)
)
