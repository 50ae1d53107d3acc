package reward

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=reward_repo.go -destination=mock/reward_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rw *Reward) error
	FindAll(ctx context.Context) ([]Reward, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Reward, error)
	FindByID(ctx context.Context, id string) (*Reward, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Reward, error)
	Update(ctx context.Context, rw *Reward) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, rw *Reward) error {
	return r.db.WithContext(ctx).Create(rw).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Reward, error) {
	var rewards []Reward
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rewards).Error
	return rewards, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Reward, error) {
	var rewards []Reward
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&rewards).Error
	return rewards, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Reward, error) {
	var rw Reward
	err := r.db.WithContext(ctx).First(&rw, "id = ?", id).Error
	return &rw, err
}

// FindByIDForUpdate takes a row lock so concurrent decisions on the same
// reward serialize. Callers must hold an open transaction via WithTx.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Reward, error) {
	if r.tx == nil {
		return nil, sql.ErrTxDone
	}
	query := `
SELECT
	id::text,
	reference,
	employee_id::text,
	amount::text,
	COALESCE(reason, ''),
	status,
	created_by::text,
	approved_by::text,
	approved_at,
	remarks
FROM rewards
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`
	var (
		rw         Reward
		idStr      string
		empStr     string
		amountStr  string
		createdBy  string
		approvedBy sql.NullString
		remarks    sql.NullString
	)
	err := r.tx.QueryRowContext(ctx, query, id).Scan(
		&idStr,
		&rw.Reference,
		&empStr,
		&amountStr,
		&rw.Reason,
		&rw.Status,
		&createdBy,
		&approvedBy,
		&rw.ApprovedAt,
		&remarks,
	)
	if err != nil {
		return nil, err
	}

	rw.ID = uuid.MustParse(idStr)
	rw.EmployeeID = uuid.MustParse(empStr)
	rw.CreatedBy = uuid.MustParse(createdBy)
	rw.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	if approvedBy.Valid {
		v := uuid.MustParse(approvedBy.String)
		rw.ApprovedBy = &v
	}
	if remarks.Valid {
		rw.Remarks = &remarks.String
	}
	return &rw, nil
}

func (r *repository) Update(ctx context.Context, rw *Reward) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Save(rw).Error
	}
	query := `
UPDATE rewards
SET
	status = $2,
	approved_by = $3,
	approved_at = $4,
	remarks = $5,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.tx.ExecContext(
		ctx, query,
		rw.ID, rw.Status, rw.ApprovedBy, rw.ApprovedAt, rw.Remarks,
	)
	return err
}
