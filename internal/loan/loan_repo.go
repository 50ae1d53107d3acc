package loan

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=loan_repo.go -destination=mock/loan_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Loan) error
	FindAll(ctx context.Context) ([]Loan, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	FindByID(ctx context.Context, id string) (*Loan, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Loan, error)
	Update(ctx context.Context, l *Loan) error
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

func (r *repository) Create(ctx context.Context, l *Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Loan, error) {
	var loans []Loan
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Loan, error) {
	var loans []Loan
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Loan, error) {
	var l Loan
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

// FindByIDForUpdate takes a row lock so concurrent decisions on the same
// loan serialize. Callers must hold an open transaction via WithTx.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Loan, error) {
	if r.tx == nil {
		return nil, sql.ErrTxDone
	}
	query := `
SELECT
	id::text,
	reference,
	employee_id::text,
	amount::text,
	installments,
	COALESCE(purpose, ''),
	status,
	created_by::text,
	approved_by::text,
	approved_at,
	remarks,
	COALESCE(attachment_key, '')
FROM loans
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`
	var (
		l          Loan
		idStr      string
		empStr     string
		amountStr  string
		createdBy  string
		approvedBy sql.NullString
		remarks    sql.NullString
	)
	err := r.tx.QueryRowContext(ctx, query, id).Scan(
		&idStr,
		&l.Reference,
		&empStr,
		&amountStr,
		&l.Installments,
		&l.Purpose,
		&l.Status,
		&createdBy,
		&approvedBy,
		&l.ApprovedAt,
		&remarks,
		&l.AttachmentKey,
	)
	if err != nil {
		return nil, err
	}

	l.ID = uuid.MustParse(idStr)
	l.EmployeeID = uuid.MustParse(empStr)
	l.CreatedBy = uuid.MustParse(createdBy)
	l.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	if approvedBy.Valid {
		v := uuid.MustParse(approvedBy.String)
		l.ApprovedBy = &v
	}
	if remarks.Valid {
		l.Remarks = &remarks.String
	}
	return &l, nil
}

func (r *repository) Update(ctx context.Context, l *Loan) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Save(l).Error
	}
	query := `
UPDATE loans
SET
	status = $2,
	approved_by = $3,
	approved_at = $4,
	remarks = $5,
	attachment_key = $6,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.tx.ExecContext(
		ctx, query,
		l.ID, l.Status, l.ApprovedBy, l.ApprovedAt, l.Remarks, l.AttachmentKey,
	)
	return err
}
