package fine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/employee"
	employeeerrors "hr-backoffice/internal/employee/errors"
	fineerrors "hr-backoffice/internal/fine/errors"
	"hr-backoffice/internal/hierarchy"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/notification"
	"hr-backoffice/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const counterTypeFine = "FINE"

//go:generate mockgen -source=fine_service.go -destination=mock/fine_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor hierarchy.Identity, req CreateFineRequest) (FineResponse, error)
	GetAll(ctx context.Context) ([]FineResponse, error)
	GetByID(ctx context.Context, id string) (FineResponse, error)
	ActOnEntry(ctx context.Context, actor hierarchy.Identity, fineID, entryID string, action approval.Action, remarks string) (FineResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	counters  counter.Repository
	resolver  hierarchy.Resolver
	outbox    kafka.OutboxRepository
	notifier  notification.Dispatcher
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	counters counter.Repository,
	resolver hierarchy.Resolver,
	outbox kafka.OutboxRepository,
	notifier notification.Dispatcher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("fine.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("fine.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		counters:  counters,
		resolver:  resolver,
		outbox:    outbox,
		notifier:  notifier,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor hierarchy.Identity, req CreateFineRequest) (FineResponse, error) {
	s.logger.Debug("create fine requested",
		zap.String("actor_id", actor.UserID),
		zap.Int("entries", len(req.Entries)),
	)

	createdBy, err := uuid.Parse(actor.UserID)
	if err != nil {
		return FineResponse{}, fineerrors.ErrInvalidActorID
	}
	if len(req.Entries) == 0 {
		return FineResponse{}, fineerrors.ErrNoEntries
	}

	seen := make(map[string]struct{}, len(req.Entries))
	entries := make([]FineEntry, 0, len(req.Entries))
	for _, er := range req.Entries {
		employeeID, err := uuid.Parse(er.EmployeeID)
		if err != nil {
			return FineResponse{}, fineerrors.ErrInvalidEmployeeID
		}
		if _, dup := seen[er.EmployeeID]; dup {
			return FineResponse{}, fineerrors.ErrDuplicateEmployee
		}
		seen[er.EmployeeID] = struct{}{}

		amount, err := decimal.NewFromString(er.Amount)
		if err != nil || amount.Sign() <= 0 {
			return FineResponse{}, fineerrors.ErrInvalidAmount
		}

		if _, err := s.employees.FindByID(ctx, er.EmployeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return FineResponse{}, employeeerrors.ErrEmployeeNotFound
			}
			return FineResponse{}, err
		}

		entries = append(entries, FineEntry{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Amount:     amount,
			Status:     approval.StatusPending,
		})
	}

	seq, err := s.counters.GetNextValue(ctx, counterTypeFine)
	if err != nil {
		s.logger.Error("create fine counter failed", zap.Error(err))
		return FineResponse{}, err
	}

	f := &Fine{
		ID:        uuid.New(),
		Reference: counter.Reference(counterTypeFine, time.Now().UTC().Year(), seq),
		Reason:    req.Reason,
		Status:    Recompute(entries),
		CreatedBy: createdBy,
	}
	for i := range entries {
		entries[i].FineID = f.ID
	}
	f.Entries = entries

	if err := s.repo.Create(ctx, f); err != nil {
		s.logger.Error("create fine persist failed", zap.Error(err))
		return FineResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create fine success",
		zap.String("fine_id", f.ID.String()),
		zap.String("reference", f.Reference),
		zap.Int("entries", len(f.Entries)),
	)
	return mapToResponse(*f), nil
}

func (s *service) GetAll(ctx context.Context) ([]FineResponse, error) {
	fines, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(fines), nil
}

func (s *service) GetByID(ctx context.Context, id string) (FineResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return FineResponse{}, fineerrors.ErrFineNotFound
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FineResponse{}, fineerrors.ErrFineNotFound
		}
		return FineResponse{}, err
	}
	return mapToResponse(*f), nil
}

// ActOnEntry applies one approval decision to a single employee entry and
// recomputes the parent in the same transaction. The parent row lock
// serializes concurrent decisions on different entries of the same fine,
// so the parent status a reader sees always matches its entries.
func (s *service) ActOnEntry(ctx context.Context, actor hierarchy.Identity, fineID, entryID string, action approval.Action, remarks string) (FineResponse, error) {
	if _, err := uuid.Parse(fineID); err != nil {
		return FineResponse{}, fineerrors.ErrFineNotFound
	}
	if _, err := uuid.Parse(entryID); err != nil {
		return FineResponse{}, fineerrors.ErrEntryNotFound
	}
	if action == approval.ActionReject && remarks == "" {
		return FineResponse{}, fineerrors.ErrRemarksRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("fine decision begin tx failed", zap.Error(err))
		return FineResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qout := s.outbox.WithTx(tx)

	reference, parentStatus, err := qtx.LockParent(ctx, fineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FineResponse{}, fineerrors.ErrFineNotFound
		}
		s.logger.Error("fine decision lock failed", zap.Error(err))
		return FineResponse{}, err
	}

	entries, err := qtx.GetEntries(ctx, fineID)
	if err != nil {
		s.logger.Error("fine decision entries load failed", zap.Error(err))
		return FineResponse{}, err
	}

	idx := -1
	for i := range entries {
		if entries[i].ID.String() == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return FineResponse{}, fineerrors.ErrEntryNotFound
	}
	entry := &entries[idx]

	cls, err := s.resolver.Classify(ctx, actor, entry.EmployeeID.String())
	if err != nil {
		return FineResponse{}, err
	}

	from := entry.Status
	next, err := approval.Transition(from, action, cls)
	if err != nil {
		s.logger.Warn("fine decision refused",
			zap.String("fine_id", fineID),
			zap.String("entry_id", entryID),
			zap.String("from", string(from)),
			zap.String("action", string(action)),
			zap.String("actor_role", string(cls.Role)),
			zap.Error(err),
		)
		return FineResponse{}, err
	}

	entry.Status = next
	if approval.RecordsApprover(next) {
		approver, err := approverID(actor, cls)
		if err != nil {
			s.logger.Warn("fine decision refused",
				zap.String("fine_id", fineID),
				zap.String("entry_id", entryID),
				zap.String("actor_user_id", actor.UserID),
				zap.Error(err),
			)
			return FineResponse{}, err
		}
		now := time.Now().UTC()
		entry.ApprovedBy = &approver
		entry.ApprovedAt = &now
	}
	if remarks != "" {
		entry.Remarks = &remarks
	}

	if err := qtx.UpdateEntry(ctx, entry); err != nil {
		s.logger.Error("fine decision entry persist failed", zap.Error(err))
		return FineResponse{}, err
	}

	newParentStatus := Recompute(entries)
	if newParentStatus != parentStatus {
		if err := qtx.UpdateParentStatus(ctx, fineID, newParentStatus); err != nil {
			s.logger.Error("fine decision parent persist failed", zap.Error(err))
			return FineResponse{}, err
		}
	}

	if err := s.notifier.Enqueue(ctx, qout, notification.Transition{
		Kind:            "FINE",
		RequestID:       fineID,
		Reference:       reference,
		EntryEmployeeID: entry.EmployeeID.String(),
		OwnerEmployeeID: entry.EmployeeID.String(),
		From:            from,
		To:              next,
		Remarks:         remarks,
	}); err != nil {
		s.logger.Error("fine decision notification enqueue failed", zap.Error(err))
		return FineResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("fine decision commit failed", zap.Error(err))
		return FineResponse{}, err
	}

	s.logger.Info("fine decision applied",
		zap.String("fine_id", fineID),
		zap.String("entry_id", entryID),
		zap.String("entry_from", string(from)),
		zap.String("entry_to", string(next)),
		zap.String("parent_from", string(parentStatus)),
		zap.String("parent_to", string(newParentStatus)),
		zap.String("actor_role", string(cls.Role)),
	)

	return s.GetByID(ctx, fineID)
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
		return uuid.Nil, fineerrors.ErrInvalidActorID
	}
	return v, nil
}
