package employee

import "strings"

type EmployeeResponse struct {
	ID                string  `json:"id"`
	FullName          string  `json:"full_name"`
	Email             string  `json:"email"`
	Department        string  `json:"department"`
	Designation       string  `json:"designation"`
	PrimaryReporteeID *string `json:"primary_reportee_id,omitempty"`
	Status            string  `json:"status"`
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:          e.ID.String(),
		FullName:    e.FullName,
		Email:       e.Email,
		Department:  e.Department,
		Designation: e.Designation,
		Status:      e.Status,
	}
	if e.PrimaryReporteeID != nil {
		v := e.PrimaryReporteeID.String()
		resp.PrimaryReporteeID = &v
	}
	return resp
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
