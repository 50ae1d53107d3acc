package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByPrimaryReportee(ctx context.Context, managerID string) ([]Employee, error)
	FindManagementHOD(ctx context.Context) (*Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).First(&emp, "id = ?", id).Error
	return &emp, err
}

func (r *repository) FindByPrimaryReportee(ctx context.Context, managerID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("primary_reportee_id = ?", managerID).
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindManagementHOD(ctx context.Context) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Where("LOWER(department) = LOWER(?)", ManagementDepartment).
		Where("LOWER(designation) IN ?", lowered(CEODesignations)).
		Where("status = ?", StatusActive).
		First(&emp).Error
	return &emp, err
}
