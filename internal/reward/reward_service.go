package reward

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/employee"
	employeeerrors "hr-backoffice/internal/employee/errors"
	"hr-backoffice/internal/hierarchy"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/notification"
	rewarderrors "hr-backoffice/internal/reward/errors"
	"hr-backoffice/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const counterTypeReward = "REWARD"

//go:generate mockgen -source=reward_service.go -destination=mock/reward_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor hierarchy.Identity, req CreateRewardRequest) (RewardResponse, error)
	GetAll(ctx context.Context) ([]RewardResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]RewardResponse, error)
	GetByID(ctx context.Context, id string) (RewardResponse, error)
	Act(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (RewardResponse, error)
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
	l := zap.L().Named("reward.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reward.service")
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

func (s *service) Create(ctx context.Context, actor hierarchy.Identity, req CreateRewardRequest) (RewardResponse, error) {
	s.logger.Debug("create reward requested",
		zap.String("actor_id", actor.UserID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("amount", req.Amount),
	)

	createdBy, err := uuid.Parse(actor.UserID)
	if err != nil {
		return RewardResponse{}, rewarderrors.ErrInvalidActorID
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return RewardResponse{}, rewarderrors.ErrInvalidEmployeeID
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return RewardResponse{}, rewarderrors.ErrInvalidAmount
	}

	if _, err := s.employees.FindByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RewardResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return RewardResponse{}, err
	}

	seq, err := s.counters.GetNextValue(ctx, counterTypeReward)
	if err != nil {
		s.logger.Error("create reward counter failed", zap.Error(err))
		return RewardResponse{}, err
	}

	rw := &Reward{
		ID:         uuid.New(),
		Reference:  counter.Reference(counterTypeReward, time.Now().UTC().Year(), seq),
		EmployeeID: employeeID,
		Amount:     amount,
		Reason:     req.Reason,
		Status:     approval.StatusPending,
		CreatedBy:  createdBy,
	}

	if err := s.repo.Create(ctx, rw); err != nil {
		s.logger.Error("create reward persist failed", zap.Error(err))
		return RewardResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create reward success",
		zap.String("reward_id", rw.ID.String()),
		zap.String("reference", rw.Reference),
	)
	return mapToResponse(*rw), nil
}

func (s *service) GetAll(ctx context.Context) ([]RewardResponse, error) {
	rewards, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rewards), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]RewardResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, rewarderrors.ErrInvalidEmployeeID
	}
	rewards, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rewards), nil
}

func (s *service) GetByID(ctx context.Context, id string) (RewardResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RewardResponse{}, rewarderrors.ErrRewardNotFound
	}
	rw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RewardResponse{}, rewarderrors.ErrRewardNotFound
		}
		return RewardResponse{}, err
	}
	return mapToResponse(*rw), nil
}

// Act applies one approval decision. Row lock, status update and
// notification outbox row commit in a single transaction.
func (s *service) Act(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (RewardResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RewardResponse{}, rewarderrors.ErrRewardNotFound
	}
	if action == approval.ActionReject && remarks == "" {
		return RewardResponse{}, rewarderrors.ErrRemarksRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reward decision begin tx failed", zap.Error(err))
		return RewardResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qout := s.outbox.WithTx(tx)

	rw, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RewardResponse{}, rewarderrors.ErrRewardNotFound
		}
		s.logger.Error("reward decision load failed", zap.Error(err))
		return RewardResponse{}, err
	}

	cls, err := s.resolver.Classify(ctx, actor, rw.EmployeeID.String())
	if err != nil {
		return RewardResponse{}, err
	}

	from := rw.Status
	next, err := approval.Transition(from, action, cls)
	if err != nil {
		s.logger.Warn("reward decision refused",
			zap.String("reward_id", id),
			zap.String("from", string(from)),
			zap.String("action", string(action)),
			zap.String("actor_role", string(cls.Role)),
			zap.Error(err),
		)
		return RewardResponse{}, err
	}

	rw.Status = next
	if approval.RecordsApprover(next) {
		approver, err := approverID(actor, cls)
		if err != nil {
			s.logger.Warn("reward decision refused",
				zap.String("reward_id", id),
				zap.String("actor_user_id", actor.UserID),
				zap.Error(err),
			)
			return RewardResponse{}, err
		}
		now := time.Now().UTC()
		rw.ApprovedBy = &approver
		rw.ApprovedAt = &now
	}
	if remarks != "" {
		rw.Remarks = &remarks
	}

	if err := qtx.Update(ctx, rw); err != nil {
		s.logger.Error("reward decision persist failed", zap.Error(err))
		return RewardResponse{}, err
	}

	if err := s.notifier.Enqueue(ctx, qout, notification.Transition{
		Kind:            "REWARD",
		RequestID:       rw.ID.String(),
		Reference:       rw.Reference,
		OwnerEmployeeID: rw.EmployeeID.String(),
		From:            from,
		To:              next,
		Remarks:         remarks,
	}); err != nil {
		s.logger.Error("reward decision notification enqueue failed", zap.Error(err))
		return RewardResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reward decision commit failed", zap.Error(err))
		return RewardResponse{}, err
	}

	s.logger.Info("reward decision applied",
		zap.String("reward_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.String("actor_role", string(cls.Role)),
	)
	return mapToResponse(*rw), nil
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
		return uuid.Nil, rewarderrors.ErrInvalidActorID
	}
	return v, nil
}
