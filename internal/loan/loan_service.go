package loan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/attachment"
	"hr-backoffice/internal/employee"
	employeeerrors "hr-backoffice/internal/employee/errors"
	"hr-backoffice/internal/hierarchy"
	loanerrors "hr-backoffice/internal/loan/errors"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/notification"
	"hr-backoffice/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const counterTypeLoan = "LOAN"

//go:generate mockgen -source=loan_service.go -destination=mock/loan_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor hierarchy.Identity, req CreateLoanRequest) (LoanResponse, error)
	GetAll(ctx context.Context) ([]LoanResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LoanResponse, error)
	GetByID(ctx context.Context, id string) (LoanResponse, error)
	Act(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (LoanResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	employees   employee.Repository
	counters    counter.Repository
	resolver    hierarchy.Resolver
	outbox      kafka.OutboxRepository
	notifier    notification.Dispatcher
	attachments attachment.Store
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	counters counter.Repository,
	resolver hierarchy.Resolver,
	outbox kafka.OutboxRepository,
	notifier notification.Dispatcher,
	attachments attachment.Store,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("loan.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("loan.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		employees:   employees,
		counters:    counters,
		resolver:    resolver,
		outbox:      outbox,
		notifier:    notifier,
		attachments: attachments,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, actor hierarchy.Identity, req CreateLoanRequest) (LoanResponse, error) {
	s.logger.Debug("create loan requested",
		zap.String("actor_id", actor.UserID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("amount", req.Amount),
	)

	createdBy, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LoanResponse{}, loanerrors.ErrInvalidActorID
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LoanResponse{}, loanerrors.ErrInvalidEmployeeID
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return LoanResponse{}, loanerrors.ErrInvalidAmount
	}

	if _, err := s.employees.FindByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoanResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return LoanResponse{}, err
	}

	seq, err := s.counters.GetNextValue(ctx, counterTypeLoan)
	if err != nil {
		s.logger.Error("create loan counter failed", zap.Error(err))
		return LoanResponse{}, err
	}

	installments := req.Installments
	if installments < 1 {
		installments = 1
	}

	l := &Loan{
		ID:           uuid.New(),
		Reference:    counter.Reference(counterTypeLoan, time.Now().UTC().Year(), seq),
		EmployeeID:   employeeID,
		Amount:       amount,
		Installments: installments,
		Purpose:      req.Purpose,
		Status:       approval.StatusPending,
		CreatedBy:    createdBy,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create loan persist failed", zap.Error(err))
		return LoanResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create loan success",
		zap.String("loan_id", l.ID.String()),
		zap.String("reference", l.Reference),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LoanResponse, error) {
	loans, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(loans), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]LoanResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, loanerrors.ErrInvalidEmployeeID
	}
	loans, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(loans), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LoanResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LoanResponse{}, loanerrors.ErrLoanNotFound
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoanResponse{}, loanerrors.ErrLoanNotFound
		}
		return LoanResponse{}, err
	}
	return mapToResponse(*l), nil
}

// Act applies one approval decision. The row lock, status update and
// notification outbox row all commit in a single transaction.
func (s *service) Act(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (LoanResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LoanResponse{}, loanerrors.ErrLoanNotFound
	}
	if action == approval.ActionReject && remarks == "" {
		return LoanResponse{}, loanerrors.ErrRemarksRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("loan decision begin tx failed", zap.Error(err))
		return LoanResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qout := s.outbox.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoanResponse{}, loanerrors.ErrLoanNotFound
		}
		s.logger.Error("loan decision load failed", zap.Error(err))
		return LoanResponse{}, err
	}

	cls, err := s.resolver.Classify(ctx, actor, l.EmployeeID.String())
	if err != nil {
		return LoanResponse{}, err
	}

	from := l.Status
	next, err := approval.Transition(from, action, cls)
	if err != nil {
		s.logger.Warn("loan decision refused",
			zap.String("loan_id", id),
			zap.String("from", string(from)),
			zap.String("action", string(action)),
			zap.String("actor_role", string(cls.Role)),
			zap.Error(err),
		)
		return LoanResponse{}, err
	}

	l.Status = next
	if approval.RecordsApprover(next) {
		approver, err := approverID(actor, cls)
		if err != nil {
			s.logger.Warn("loan decision refused",
				zap.String("loan_id", id),
				zap.String("actor_user_id", actor.UserID),
				zap.Error(err),
			)
			return LoanResponse{}, err
		}
		now := time.Now().UTC()
		l.ApprovedBy = &approver
		l.ApprovedAt = &now
	}
	if remarks != "" {
		l.Remarks = &remarks
	}

	if next == approval.StatusApproved {
		// Sanction letter upload happens before commit so the key lands
		// in the row and the notification together. A storage failure
		// only costs the attachment, never the decision.
		s.attachSanctionLetter(ctx, l)
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("loan decision persist failed", zap.Error(err))
		return LoanResponse{}, err
	}

	if err := s.notifier.Enqueue(ctx, qout, notification.Transition{
		Kind:            "LOAN",
		RequestID:       l.ID.String(),
		Reference:       l.Reference,
		OwnerEmployeeID: l.EmployeeID.String(),
		From:            from,
		To:              next,
		Remarks:         remarks,
		AttachmentKey:   l.AttachmentKey,
	}); err != nil {
		s.logger.Error("loan decision notification enqueue failed", zap.Error(err))
		return LoanResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("loan decision commit failed", zap.Error(err))
		return LoanResponse{}, err
	}

	s.logger.Info("loan decision applied",
		zap.String("loan_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.String("actor_role", string(cls.Role)),
	)
	return mapToResponse(*l), nil
}

func (s *service) attachSanctionLetter(ctx context.Context, l *Loan) {
	name := l.EmployeeID.String()
	if emp, err := s.employees.FindByID(ctx, l.EmployeeID.String()); err == nil {
		name = emp.FullName
	}

	approvedAt := time.Now().UTC()
	if l.ApprovedAt != nil {
		approvedAt = *l.ApprovedAt
	}

	data, err := sanctionLetterPDF(*l, name, approvedAt)
	if err != nil {
		s.logger.Warn("sanction letter render failed",
			zap.String("loan_id", l.ID.String()), zap.Error(err))
		return
	}

	key, err := s.attachments.Upload(ctx, fmt.Sprintf("loans/%s/sanction-letter.pdf", l.ID), data, "application/pdf")
	if err != nil {
		s.logger.Warn("sanction letter upload failed",
			zap.String("loan_id", l.ID.String()), zap.Error(err))
		return
	}
	// The store reports the key it actually wrote; a disabled store
	// reports none and the loan carries no attachment.
	l.AttachmentKey = key
}

// approverID picks the identity to stamp on approved_by: the actor's
// employee record when they have one, their account id otherwise.
// Accounts whose id is not a UUID cannot be stamped and are refused.
func approverID(actor hierarchy.Identity, cls hierarchy.Classification) (uuid.UUID, error) {
	if cls.ActorEmployeeID != "" {
		if v, err := uuid.Parse(cls.ActorEmployeeID); err == nil {
			return v, nil
		}
	}
	v, err := uuid.Parse(actor.UserID)
	if err != nil {
		return uuid.Nil, loanerrors.ErrInvalidActorID
	}
	return v, nil
}
