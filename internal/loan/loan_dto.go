package loan

import "time"

type CreateLoanRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required,uuid"`
	Amount       string `json:"amount" binding:"required"`
	Installments int    `json:"installments" binding:"omitempty,min=1,max=60"`
	Purpose      string `json:"purpose"`
}

type RejectLoanRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

type LoanResponse struct {
	ID            string  `json:"id"`
	Reference     string  `json:"reference"`
	EmployeeID    string  `json:"employee_id"`
	Amount        string  `json:"amount"`
	Installments  int     `json:"installments"`
	Purpose       string  `json:"purpose"`
	Status        string  `json:"status"`
	CreatedBy     string  `json:"created_by"`
	ApprovedBy    *string `json:"approved_by,omitempty"`
	ApprovedAt    *string `json:"approved_at,omitempty"`
	Remarks       *string `json:"remarks,omitempty"`
	AttachmentKey string  `json:"attachment_key,omitempty"`
}

func mapToResponse(l Loan) LoanResponse {
	resp := LoanResponse{
		ID:            l.ID.String(),
		Reference:     l.Reference,
		EmployeeID:    l.EmployeeID.String(),
		Amount:        l.Amount.StringFixed(2),
		Installments:  l.Installments,
		Purpose:       l.Purpose,
		Status:        string(l.Status),
		CreatedBy:     l.CreatedBy.String(),
		AttachmentKey: l.AttachmentKey,
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.Remarks = l.Remarks
	return resp
}

func mapToListResponse(loans []Loan) []LoanResponse {
	resp := make([]LoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = mapToResponse(l)
	}
	return resp
}
