package hierarchy

import (
	"context"
	"testing"

	"hr-backoffice/internal/employee"
	employeeerrors "hr-backoffice/internal/employee/errors"
	"hr-backoffice/internal/employee/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func activeEmployee(department, designation string) employee.Employee {
	return employee.Employee{
		ID:          uuid.New(),
		FullName:    "Test Employee",
		Department:  department,
		Designation: designation,
		Status:      employee.StatusActive,
	}
}

func TestClassify_AdminWinsRegardlessOfLinkage(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	// No employee lookups happen for administrators.
	cls, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: uuid.New().String(),
		IsAdmin:    true,
	}, uuid.New().String())

	assert.NoError(t, err)
	assert.Equal(t, RoleSystemAdmin, cls.Role)
	assert.True(t, cls.Eligible())
}

func TestClassify_NoEmployeeLinkIsNone(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	cls, err := r.Classify(context.Background(), Identity{
		UserID: uuid.New().String(),
	}, uuid.New().String())

	assert.NoError(t, err)
	assert.Equal(t, RoleNone, cls.Role)
	assert.False(t, cls.Eligible())
}

func TestClassify_DirectManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	manager := activeEmployee("Engineering", "Team Lead")
	target := activeEmployee("Engineering", "Developer")
	target.PrimaryReporteeID = &manager.ID

	repo.EXPECT().FindByID(gomock.Any(), manager.ID.String()).Return(&manager, nil)
	repo.EXPECT().FindByID(gomock.Any(), target.ID.String()).Return(&target, nil)

	cls, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: manager.ID.String(),
	}, target.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, RoleDirectManager, cls.Role)
	assert.False(t, cls.CEO)
	assert.True(t, cls.DirectManager)
	assert.Equal(t, manager.ID.String(), cls.ActorEmployeeID)
}

func TestClassify_CEOCaseInsensitive(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	ceo := activeEmployee("MANAGEMENT", "managing director")
	target := activeEmployee("Finance", "Accountant")

	repo.EXPECT().FindByID(gomock.Any(), ceo.ID.String()).Return(&ceo, nil)
	repo.EXPECT().FindByID(gomock.Any(), target.ID.String()).Return(&target, nil)

	cls, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: ceo.ID.String(),
	}, target.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, RoleCEO, cls.Role)
	assert.True(t, cls.CEO)
	assert.False(t, cls.DirectManager)
}

func TestClassify_CEOPrecedenceOverManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	ceo := activeEmployee("Management", "CEO")
	target := activeEmployee("Finance", "Accountant")
	target.PrimaryReporteeID = &ceo.ID

	repo.EXPECT().FindByID(gomock.Any(), ceo.ID.String()).Return(&ceo, nil)
	repo.EXPECT().FindByID(gomock.Any(), target.ID.String()).Return(&target, nil)

	cls, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: ceo.ID.String(),
	}, target.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, RoleCEO, cls.Role)
	// Both facts survive the precedence decision so the fast track can
	// see them.
	assert.True(t, cls.CEO)
	assert.True(t, cls.DirectManager)
}

func TestClassify_InactiveProfileIsNotCEO(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	former := activeEmployee("Management", "Director")
	former.Status = employee.StatusInactive
	target := activeEmployee("Finance", "Accountant")

	repo.EXPECT().FindByID(gomock.Any(), former.ID.String()).Return(&former, nil)
	repo.EXPECT().FindByID(gomock.Any(), target.ID.String()).Return(&target, nil)

	cls, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: former.ID.String(),
	}, target.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, RoleNone, cls.Role)
}

func TestClassify_UnknownActorIsNone(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	actorID := uuid.New().String()
	repo.EXPECT().FindByID(gomock.Any(), actorID).Return(nil, gorm.ErrRecordNotFound)

	cls, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: actorID,
	}, uuid.New().String())

	assert.NoError(t, err)
	assert.Equal(t, RoleNone, cls.Role)
}

func TestClassify_UnknownTargetIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := NewResolver(repo)

	actor := activeEmployee("Engineering", "Team Lead")
	targetID := uuid.New().String()

	repo.EXPECT().FindByID(gomock.Any(), actor.ID.String()).Return(&actor, nil)
	repo.EXPECT().FindByID(gomock.Any(), targetID).Return(nil, gorm.ErrRecordNotFound)

	_, err := r.Classify(context.Background(), Identity{
		UserID:     uuid.New().String(),
		EmployeeID: actor.ID.String(),
	}, targetID)

	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
}

func TestIsManagementHOD_Designations(t *testing.T) {
	for _, designation := range []string{"CEO", "C.E.O", "C.E.O.", "Director", "Managing Director", "General Manager"} {
		assert.True(t, IsManagementHOD(activeEmployee("Management", designation)), designation)
	}
	assert.False(t, IsManagementHOD(activeEmployee("Management", "Office Manager")))
	assert.False(t, IsManagementHOD(activeEmployee("Engineering", "Director")))
}
