package loan

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"hr-backoffice/internal/approval"
	approvalerrors "hr-backoffice/internal/approval/errors"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/hierarchy"
	loanerrors "hr-backoffice/internal/loan/errors"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	loan *Loan
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository                   { return f }
func (f *fakeRepo) Create(ctx context.Context, l *Loan) error      { f.loan = l; return nil }
func (f *fakeRepo) FindAll(ctx context.Context) ([]Loan, error)    { return []Loan{*f.loan}, nil }
func (f *fakeRepo) FindByEmployee(ctx context.Context, employeeID string) ([]Loan, error) {
	return []Loan{*f.loan}, nil
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Loan, error) {
	cp := *f.loan
	return &cp, nil
}
func (f *fakeRepo) FindByIDForUpdate(ctx context.Context, id string) (*Loan, error) {
	if f.loan == nil || f.loan.ID.String() != id {
		return nil, sql.ErrNoRows
	}
	cp := *f.loan
	return &cp, nil
}
func (f *fakeRepo) Update(ctx context.Context, l *Loan) error { f.loan = l; return nil }

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

// fakeResolver hands back a fixed classification per actor employee id.
type fakeResolver struct {
	byActor map[string]hierarchy.Classification
}

func (f *fakeResolver) Classify(ctx context.Context, actor hierarchy.Identity, targetEmployeeID string) (hierarchy.Classification, error) {
	if cls, ok := f.byActor[actor.EmployeeID]; ok {
		return cls, nil
	}
	if actor.IsAdmin {
		return hierarchy.Classification{Role: hierarchy.RoleSystemAdmin}, nil
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

type fakeStore struct {
	disabled bool
	uploads  map[string][]byte
}

func (f *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.disabled {
		return "", nil
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return key, nil
}
func (f *fakeStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://storage.local/" + key, nil
}

func decodeEvent(t *testing.T, row kafka.OutboxEvent) events.ApprovalNotificationEvent {
	t.Helper()
	var event events.ApprovalNotificationEvent
	assert.NoError(t, json.Unmarshal(row.Payload, &event))
	return event
}

func TestService_TwoStageLoanApproval(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	ownerID := uuid.New()
	managerID := uuid.New().String()
	ceoID := uuid.New().String()

	repo := &fakeRepo{}
	employees := &fakeEmployees{byID: map[string]*employee.Employee{
		ownerID.String(): {ID: ownerID, FullName: "Owner", Status: employee.StatusActive},
	}}
	resolver := &fakeResolver{byActor: map[string]hierarchy.Classification{
		managerID: {Role: hierarchy.RoleDirectManager, DirectManager: true, ActorEmployeeID: managerID},
		ceoID:     {Role: hierarchy.RoleCEO, CEO: true, ActorEmployeeID: ceoID},
	}}
	outbox := &fakeOutbox{}
	store := &fakeStore{}

	svc := NewService(db, repo, employees, &fakeCounter{}, resolver, outbox, notification.NewDispatcher(), store)

	created, err := svc.Create(ctx, hierarchy.Identity{UserID: uuid.New().String()}, CreateLoanRequest{
		EmployeeID:   ownerID.String(),
		Amount:       "2500.00",
		Installments: 10,
		Purpose:      "laptop",
	})
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusPending), created.Status)
	assert.Contains(t, created.Reference, "LOAN-")

	// Stage 1: the direct manager escalates; the hod gets told once.
	mock.ExpectBegin()
	mock.ExpectCommit()
	escalated, err := svc.Act(ctx, hierarchy.Identity{UserID: uuid.New().String(), EmployeeID: managerID}, created.ID, approval.ActionApprove, "")
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusPendingAuthorization), escalated.Status)
	assert.Nil(t, escalated.ApprovedBy)
	assert.Len(t, outbox.created, 1)
	event := decodeEvent(t, outbox.created[0])
	assert.Equal(t, string(notification.RecipientManagementHOD), event.Recipient)

	// Stage 2: the CEO finalizes; the owner gets told, and the sanction
	// letter key travels with the event.
	mock.ExpectBegin()
	mock.ExpectCommit()
	approved, err := svc.Act(ctx, hierarchy.Identity{UserID: uuid.New().String(), EmployeeID: ceoID}, created.ID, approval.ActionApprove, "")
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusApproved), approved.Status)
	assert.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, ceoID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.NotEmpty(t, approved.AttachmentKey)
	assert.Contains(t, store.uploads, approved.AttachmentKey)

	assert.Len(t, outbox.created, 2)
	final := decodeEvent(t, outbox.created[1])
	assert.Equal(t, string(notification.RecipientOwner), final.Recipient)
	assert.Equal(t, string(notification.TemplateApproved), final.Template)
	assert.Equal(t, approved.AttachmentKey, final.AttachmentKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ApprovedLoanIsImmutable(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	ownerID := uuid.New()
	loanID := uuid.New()
	repo := &fakeRepo{loan: &Loan{
		ID:         loanID,
		Reference:  "LOAN-2026-00001",
		EmployeeID: ownerID,
		Status:     approval.StatusApproved,
		CreatedBy:  uuid.New(),
	}}
	outbox := &fakeOutbox{}

	svc := NewService(db, repo, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, outbox, notification.NewDispatcher(), &fakeStore{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Act(ctx, hierarchy.Identity{UserID: uuid.New().String(), IsAdmin: true}, loanID.String(), approval.ActionReject, "too late")
	assert.ErrorIs(t, err, approvalerrors.ErrTerminalState)
	assert.Equal(t, approval.StatusApproved, repo.loan.Status)
	assert.Empty(t, outbox.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AdminApproverStamp(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	newPendingLoan := func() *Loan {
		return &Loan{
			ID:         uuid.New(),
			Reference:  "LOAN-2026-00007",
			EmployeeID: ownerID,
			Status:     approval.StatusPending,
			CreatedBy:  uuid.New(),
		}
	}

	t.Run("account id is stamped when the admin has no employee record", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		repo := &fakeRepo{loan: newPendingLoan()}
		outbox := &fakeOutbox{}
		svc := NewService(db, repo, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, outbox, notification.NewDispatcher(), &fakeStore{})

		adminUserID := uuid.New().String()
		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Act(ctx, hierarchy.Identity{UserID: adminUserID, IsAdmin: true}, repo.loan.ID.String(), approval.ActionApprove, "")
		assert.NoError(t, err)
		assert.Equal(t, string(approval.StatusApproved), resp.Status)
		assert.NotNil(t, resp.ApprovedBy)
		assert.Equal(t, adminUserID, *resp.ApprovedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-uuid account id is refused instead of panicking", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		repo := &fakeRepo{loan: newPendingLoan()}
		outbox := &fakeOutbox{}
		svc := NewService(db, repo, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, outbox, notification.NewDispatcher(), &fakeStore{})

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Act(ctx, hierarchy.Identity{UserID: "svc-admin", IsAdmin: true}, repo.loan.ID.String(), approval.ActionApprove, "")
		assert.ErrorIs(t, err, loanerrors.ErrInvalidActorID)
		assert.Equal(t, approval.StatusPending, repo.loan.Status)
		assert.Nil(t, repo.loan.ApprovedBy)
		assert.Empty(t, outbox.created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_ApproveWithStorageDisabledLeavesNoAttachment(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	ownerID := uuid.New()
	repo := &fakeRepo{loan: &Loan{
		ID:         uuid.New(),
		Reference:  "LOAN-2026-00008",
		EmployeeID: ownerID,
		Status:     approval.StatusPending,
		CreatedBy:  uuid.New(),
	}}
	outbox := &fakeOutbox{}
	store := &fakeStore{disabled: true}
	svc := NewService(db, repo, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, outbox, notification.NewDispatcher(), store)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Act(ctx, hierarchy.Identity{UserID: uuid.New().String(), IsAdmin: true}, repo.loan.ID.String(), approval.ActionApprove, "")
	assert.NoError(t, err)
	assert.Equal(t, string(approval.StatusApproved), resp.Status)
	assert.Empty(t, resp.AttachmentKey)
	assert.Empty(t, repo.loan.AttachmentKey)

	assert.Len(t, outbox.created, 1)
	event := decodeEvent(t, outbox.created[0])
	assert.Empty(t, event.AttachmentKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByEmployee(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	ownerID := uuid.New()
	repo := &fakeRepo{loan: &Loan{
		ID:         uuid.New(),
		Reference:  "LOAN-2026-00009",
		EmployeeID: ownerID,
		Status:     approval.StatusPending,
		CreatedBy:  uuid.New(),
	}}
	svc := NewService(db, repo, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, &fakeOutbox{}, notification.NewDispatcher(), &fakeStore{})

	_, err := svc.GetByEmployee(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, loanerrors.ErrInvalidEmployeeID)

	resp, err := svc.GetByEmployee(context.Background(), ownerID.String())
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "LOAN-2026-00009", resp[0].Reference)
}

func TestService_RejectNeedsRemarks(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, &fakeOutbox{}, notification.NewDispatcher(), &fakeStore{})

	_, err := svc.Act(context.Background(), hierarchy.Identity{UserID: uuid.New().String()}, uuid.New().String(), approval.ActionReject, "")
	assert.ErrorIs(t, err, loanerrors.ErrRemarksRequired)
}

func TestService_CreateRejectsBadAmount(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, &fakeEmployees{}, &fakeCounter{}, &fakeResolver{}, &fakeOutbox{}, notification.NewDispatcher(), &fakeStore{})

	for _, amount := range []string{"", "abc", "-20", "0"} {
		_, err := svc.Create(context.Background(), hierarchy.Identity{UserID: uuid.New().String()}, CreateLoanRequest{
			EmployeeID: uuid.New().String(),
			Amount:     amount,
		})
		assert.ErrorIs(t, err, loanerrors.ErrInvalidAmount, amount)
	}
}
