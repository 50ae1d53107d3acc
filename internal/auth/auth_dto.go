package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	EmployeeID *string `json:"employee_id" binding:"omitempty,uuid"`
	Email      string  `json:"email" binding:"required,email"`
	Name       string  `json:"name" binding:"required"`
	Password   string  `json:"password" binding:"required,min=6"`
}

type AuthResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id,omitempty"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsAdmin    bool   `json:"is_admin"`
}
