package hierarchy

import (
	"context"
	"errors"
	"strings"

	"hr-backoffice/internal/auth"
	"hr-backoffice/internal/employee"
	employeeerrors "hr-backoffice/internal/employee/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=resolver.go -destination=mock/resolver_mock.go -package=mock
type Resolver interface {
	Classify(ctx context.Context, actor Identity, targetEmployeeID string) (Classification, error)
}

type resolver struct {
	employees employee.Repository
	logger    *zap.Logger
}

func NewResolver(employees employee.Repository, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("hierarchy.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("hierarchy.resolver")
	}
	return &resolver{employees: employees, logger: l}
}

// Classify resolves the actor's authority over the target employee.
// Precedence is SystemAdmin > CEO > DirectManager; the CEO and
// DirectManager booleans are preserved independently of the winner.
func (r *resolver) Classify(ctx context.Context, actor Identity, targetEmployeeID string) (Classification, error) {
	if actor.IsAdmin || actor.AccountRole == auth.RoleAdmin || actor.AccountRole == auth.RoleSuperAdmin {
		return Classification{Role: RoleSystemAdmin}, nil
	}

	if actor.EmployeeID == "" {
		return Classification{Role: RoleNone}, nil
	}

	actorEmp, err := r.employees.FindByID(ctx, actor.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Classification{Role: RoleNone}, nil
		}
		return Classification{}, err
	}

	target, err := r.employees.FindByID(ctx, targetEmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Classification{}, employeeerrors.ErrEmployeeNotFound
		}
		return Classification{}, err
	}

	cls := Classification{
		CEO:             IsManagementHOD(*actorEmp),
		DirectManager:   target.PrimaryReporteeID != nil && *target.PrimaryReporteeID == actorEmp.ID,
		ActorEmployeeID: actorEmp.ID.String(),
	}

	switch {
	case cls.CEO:
		cls.Role = RoleCEO
	case cls.DirectManager:
		cls.Role = RoleDirectManager
	default:
		cls.Role = RoleNone
	}

	r.logger.Debug("actor classified",
		zap.String("actor_employee_id", actor.EmployeeID),
		zap.String("target_employee_id", targetEmployeeID),
		zap.String("role", string(cls.Role)),
		zap.Bool("ceo", cls.CEO),
		zap.Bool("direct_manager", cls.DirectManager),
	)

	return cls, nil
}

// IsManagementHOD reports whether an employee record matches the CEO
// predicate: Management department, a qualifying designation, and an
// active profile. Matching is case-insensitive.
func IsManagementHOD(e employee.Employee) bool {
	if e.Status != employee.StatusActive {
		return false
	}
	if !strings.EqualFold(e.Department, employee.ManagementDepartment) {
		return false
	}
	for _, designation := range employee.CEODesignations {
		if strings.EqualFold(e.Designation, designation) {
			return true
		}
	}
	return false
}
