package rbac

import (
	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetUserRoles() ([]UserRole, error)
	GetRolePermissions() ([]RolePermission, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserRoles() ([]UserRole, error) {
	var rows []UserRole
	err := r.db.
		Table("user_roles").
		Select("user_id::text AS user_id, role_id::text AS role_id").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) GetRolePermissions() ([]RolePermission, error) {
	var rows []RolePermission
	err := r.db.
		Table("role_permissions").
		Select("role_id::text AS role_id, resource, action").
		Scan(&rows).Error
	return rows, err
}
