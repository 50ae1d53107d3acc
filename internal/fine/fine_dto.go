package fine

import "time"

type CreateFineEntryRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Amount     string `json:"amount" binding:"required"`
}

type CreateFineRequest struct {
	Reason  string                   `json:"reason" binding:"required"`
	Entries []CreateFineEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

type RejectFineEntryRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

type FineEntryResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Amount     string  `json:"amount"`
	Status     string  `json:"status"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
}

type FineResponse struct {
	ID        string              `json:"id"`
	Reference string              `json:"reference"`
	Reason    string              `json:"reason"`
	Status    string              `json:"status"`
	CreatedBy string              `json:"created_by"`
	Entries   []FineEntryResponse `json:"entries"`
}

func mapEntryToResponse(e FineEntry) FineEntryResponse {
	resp := FineEntryResponse{
		ID:         e.ID.String(),
		EmployeeID: e.EmployeeID.String(),
		Amount:     e.Amount.StringFixed(2),
		Status:     string(e.Status),
	}
	if e.ApprovedBy != nil {
		v := e.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if e.ApprovedAt != nil {
		v := e.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.Remarks = e.Remarks
	return resp
}

func mapToResponse(f Fine) FineResponse {
	entries := make([]FineEntryResponse, len(f.Entries))
	for i, e := range f.Entries {
		entries[i] = mapEntryToResponse(e)
	}
	return FineResponse{
		ID:        f.ID.String(),
		Reference: f.Reference,
		Reason:    f.Reason,
		Status:    string(f.Status),
		CreatedBy: f.CreatedBy.String(),
		Entries:   entries,
	}
}

func mapToListResponse(fines []Fine) []FineResponse {
	resp := make([]FineResponse, len(fines))
	for i, f := range fines {
		resp[i] = mapToResponse(f)
	}
	return resp
}
