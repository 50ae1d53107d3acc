package fine

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/events"
	fineerrors "hr-backoffice/internal/fine/errors"
	"hr-backoffice/internal/hierarchy"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	fine *Fine
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository                { return f }
func (f *fakeRepo) Create(ctx context.Context, fn *Fine) error  { f.fine = fn; return nil }
func (f *fakeRepo) FindAll(ctx context.Context) ([]Fine, error) { return []Fine{*f.fine}, nil }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Fine, error) {
	cp := *f.fine
	return &cp, nil
}
func (f *fakeRepo) LockParent(ctx context.Context, fineID string) (string, approval.Status, error) {
	if f.fine == nil || f.fine.ID.String() != fineID {
		return "", "", sql.ErrNoRows
	}
	return f.fine.Reference, f.fine.Status, nil
}
func (f *fakeRepo) GetEntries(ctx context.Context, fineID string) ([]FineEntry, error) {
	entries := make([]FineEntry, len(f.fine.Entries))
	copy(entries, f.fine.Entries)
	return entries, nil
}
func (f *fakeRepo) UpdateEntry(ctx context.Context, e *FineEntry) error {
	for i := range f.fine.Entries {
		if f.fine.Entries[i].ID == e.ID {
			f.fine.Entries[i] = *e
			return nil
		}
	}
	return sql.ErrNoRows
}
func (f *fakeRepo) UpdateParentStatus(ctx context.Context, fineID string, status approval.Status) error {
	f.fine.Status = status
	return nil
}

type fakeEmployees struct {
	byID map[string]*employee.Employee
}

func (f *fakeEmployees) FindAll(ctx context.Context) ([]employee.Employee, error) { return nil, nil }
func (f *fakeEmployees) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if emp, ok := f.byID[id]; ok {
		return emp, nil
	}
	return nil, sql.ErrNoRows
}
func (f *fakeEmployees) FindByPrimaryReportee(ctx context.Context, managerID string) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployees) FindManagementHOD(ctx context.Context) (*employee.Employee, error) {
	return nil, nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeResolver struct {
	byActor map[string]hierarchy.Classification
}

func (f *fakeResolver) Classify(ctx context.Context, actor hierarchy.Identity, targetEmployeeID string) (hierarchy.Classification, error) {
	if cls, ok := f.byActor[actor.EmployeeID]; ok {
		return cls, nil
	}
	return hierarchy.Classification{Role: hierarchy.RoleNone}, nil
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                  { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func TestService_SharedFinePartialApproval(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	employeeA := uuid.New()
	employeeB := uuid.New()
	manager1 := uuid.New().String()
	manager2 := uuid.New().String()
	ceo := uuid.New().String()

	repo := &fakeRepo{}
	employees := &fakeEmployees{byID: map[string]*employee.Employee{
		employeeA.String(): {ID: employeeA, Status: employee.StatusActive},
		employeeB.String(): {ID: employeeB, Status: employee.StatusActive},
	}}
	resolver := &fakeResolver{byActor: map[string]hierarchy.Classification{
		manager1: {Role: hierarchy.RoleDirectManager, DirectManager: true, ActorEmployeeID: manager1},
		manager2: {Role: hierarchy.RoleDirectManager, DirectManager: true, ActorEmployeeID: manager2},
		ceo:      {Role: hierarchy.RoleCEO, CEO: true, ActorEmployeeID: ceo},
	}}
	outbox := &fakeOutbox{}

	svc := NewService(db, repo, employees, &fakeCounter{}, resolver, outbox, notification.NewDispatcher())

	created, err := svc.Create(ctx, hierarchy.Identity{UserID: uuid.New().String()}, CreateFineRequest{
		Reason: "late submission",
		Entries: []CreateFineEntryRequest{
			{EmployeeID: employeeA.String(), Amount: "100.00"},
			{EmployeeID: employeeB.String(), Amount: "150.00"},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusPending), created.Status)
	assert.Len(t, created.Entries, 2)

	entryA := created.Entries[0].ID
	entryB := created.Entries[1].ID

	// Entry A escalates while B is still pending: the parent stays put.
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.ActOnEntry(ctx, hierarchy.Identity{UserID: uuid.New().String(), EmployeeID: manager1}, created.ID, entryA, approval.ActionApprove, "")
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusPendingAuthorization), resp.Entries[0].Status)
	assert.Equal(t, string(approval.StatusPending), resp.Status)

	// Entry B rejected: nothing pending anymore, one escalated entry
	// pulls the parent to PENDING_AUTHORIZATION.
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err = svc.ActOnEntry(ctx, hierarchy.Identity{UserID: uuid.New().String(), EmployeeID: manager2}, created.ID, entryB, approval.ActionReject, "not at fault")
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusRejected), resp.Entries[1].Status)
	assert.Equal(t, string(approval.StatusPendingAuthorization), resp.Status)
	assert.NotNil(t, resp.Entries[1].Remarks)

	// CEO finalizes entry A: entries now split approved/rejected, and
	// the fold drops the parent back to PENDING.
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err = svc.ActOnEntry(ctx, hierarchy.Identity{UserID: uuid.New().String(), EmployeeID: ceo}, created.ID, entryA, approval.ActionApprove, "")
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusApproved), resp.Entries[0].Status)
	assert.Equal(t, ceo, *resp.Entries[0].ApprovedBy)
	assert.Equal(t, string(approval.StatusPending), resp.Status)

	// One notification per entry transition.
	assert.Len(t, outbox.created, 3)
	var event events.ApprovalNotificationEvent
	assert.NoError(t, json.Unmarshal(outbox.created[2].Payload, &event))
	assert.Equal(t, "FINE", event.RequestKind)
	assert.Equal(t, employeeA.String(), event.EntryEmployeeID)
	assert.Equal(t, string(notification.TemplateApproved), event.Template)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CreateValidatesEntries(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	employeeA := uuid.New()
	employees := &fakeEmployees{byID: map[string]*employee.Employee{
		employeeA.String(): {ID: employeeA, Status: employee.StatusActive},
	}}

	svc := NewService(db, &fakeRepo{}, employees, &fakeCounter{}, &fakeResolver{}, &fakeOutbox{}, notification.NewDispatcher())
	actor := hierarchy.Identity{UserID: uuid.New().String()}

	_, err := svc.Create(ctx, actor, CreateFineRequest{Reason: "x"})
	assert.ErrorIs(t, err, fineerrors.ErrNoEntries)

	_, err = svc.Create(ctx, actor, CreateFineRequest{
		Reason: "x",
		Entries: []CreateFineEntryRequest{
			{EmployeeID: employeeA.String(), Amount: "10.00"},
			{EmployeeID: employeeA.String(), Amount: "20.00"},
		},
	})
	assert.ErrorIs(t, err, fineerrors.ErrDuplicateEmployee)

	_, err = svc.Create(ctx, actor, CreateFineRequest{
		Reason:  "x",
		Entries: []CreateFineEntryRequest{{EmployeeID: employeeA.String(), Amount: "-5"}},
	})
	assert.ErrorIs(t, err, fineerrors.ErrInvalidAmount)
}

func TestService_ActOnUnknownEntry(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	fineID := uuid.New()
	repo := &fakeRepo{fine: &Fine{
		ID:        fineID,
		Reference: "FINE-2026-00001",
		Status:    approval.StatusPending,
		Entries:   []FineEntry{{ID: uuid.New(), FineID: fineID, Status: approval.StatusPending}},
	}}

	svc := NewService(db, repo, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, &fakeOutbox{}, notification.NewDispatcher())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.ActOnEntry(context.Background(), hierarchy.Identity{UserID: uuid.New().String()}, fineID.String(), uuid.New().String(), approval.ActionApprove, "")
	assert.ErrorIs(t, err, fineerrors.ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
