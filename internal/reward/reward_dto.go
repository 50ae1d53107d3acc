package reward

import "time"

type CreateRewardRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Amount     string `json:"amount" binding:"required"`
	Reason     string `json:"reason"`
}

type RejectRewardRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

type RewardResponse struct {
	ID         string  `json:"id"`
	Reference  string  `json:"reference"`
	EmployeeID string  `json:"employee_id"`
	Amount     string  `json:"amount"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	CreatedBy  string  `json:"created_by"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
}

func mapToResponse(r Reward) RewardResponse {
	resp := RewardResponse{
		ID:         r.ID.String(),
		Reference:  r.Reference,
		EmployeeID: r.EmployeeID.String(),
		Amount:     r.Amount.StringFixed(2),
		Reason:     r.Reason,
		Status:     string(r.Status),
		CreatedBy:  r.CreatedBy.String(),
	}
	if r.ApprovedBy != nil {
		v := r.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if r.ApprovedAt != nil {
		v := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.Remarks = r.Remarks
	return resp
}

func mapToListResponse(rewards []Reward) []RewardResponse {
	resp := make([]RewardResponse, len(rewards))
	for i, r := range rewards {
		resp[i] = mapToResponse(r)
	}
	return resp
}
