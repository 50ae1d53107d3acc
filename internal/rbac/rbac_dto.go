package rbac

type EnforceRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type UserRole struct {
	UserID string
	RoleID string
}

type RolePermission struct {
	RoleID   string
	Resource string
	Action   string
}
