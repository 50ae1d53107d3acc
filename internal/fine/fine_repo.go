package fine

import (
	"context"
	"database/sql"

	"hr-backoffice/internal/approval"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=fine_repo.go -destination=mock/fine_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, f *Fine) error
	FindAll(ctx context.Context) ([]Fine, error)
	FindByID(ctx context.Context, id string) (*Fine, error)

	// Transaction-only methods. LockParent serializes all decisions on
	// one fine; the entry read-modify-write and the parent recompute
	// happen under that lock.
	LockParent(ctx context.Context, fineID string) (string, approval.Status, error)
	GetEntries(ctx context.Context, fineID string) ([]FineEntry, error)
	UpdateEntry(ctx context.Context, e *FineEntry) error
	UpdateParentStatus(ctx context.Context, fineID string, status approval.Status) error
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

func (r *repository) Create(ctx context.Context, f *Fine) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Fine, error) {
	var fines []Fine
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Order("created_at DESC").
		Find(&fines).Error
	return fines, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Fine, error) {
	var f Fine
	err := r.db.WithContext(ctx).
		Preload("Entries").
		First(&f, "id = ?", id).Error
	return &f, err
}

func (r *repository) LockParent(ctx context.Context, fineID string) (string, approval.Status, error) {
	if r.tx == nil {
		return "", "", sql.ErrTxDone
	}
	var (
		reference string
		status    approval.Status
	)
	err := r.tx.QueryRowContext(ctx, `
SELECT reference, status
FROM fines
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`, fineID).Scan(&reference, &status)
	return reference, status, err
}

func (r *repository) GetEntries(ctx context.Context, fineID string) ([]FineEntry, error) {
	if r.tx == nil {
		return nil, sql.ErrTxDone
	}
	rows, err := r.tx.QueryContext(ctx, `
SELECT
	id::text,
	fine_id::text,
	employee_id::text,
	amount::text,
	status,
	approved_by::text,
	approved_at,
	remarks
FROM fine_entries
WHERE fine_id = $1
ORDER BY created_at ASC
`, fineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []FineEntry
	for rows.Next() {
		var (
			e          FineEntry
			idStr      string
			fineStr    string
			empStr     string
			amountStr  string
			approvedBy sql.NullString
			remarks    sql.NullString
		)
		if err := rows.Scan(
			&idStr,
			&fineStr,
			&empStr,
			&amountStr,
			&e.Status,
			&approvedBy,
			&e.ApprovedAt,
			&remarks,
		); err != nil {
			return nil, err
		}

		e.ID = uuid.MustParse(idStr)
		e.FineID = uuid.MustParse(fineStr)
		e.EmployeeID = uuid.MustParse(empStr)
		e.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, err
		}
		if approvedBy.Valid {
			v := uuid.MustParse(approvedBy.String)
			e.ApprovedBy = &v
		}
		if remarks.Valid {
			e.Remarks = &remarks.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) UpdateEntry(ctx context.Context, e *FineEntry) error {
	if r.tx == nil {
		return sql.ErrTxDone
	}
	_, err := r.tx.ExecContext(ctx, `
UPDATE fine_entries
SET
	status = $2,
	approved_by = $3,
	approved_at = $4,
	remarks = $5,
	updated_at = NOW()
WHERE id = $1
`, e.ID, e.Status, e.ApprovedBy, e.ApprovedAt, e.Remarks)
	return err
}

func (r *repository) UpdateParentStatus(ctx context.Context, fineID string, status approval.Status) error {
	if r.tx == nil {
		return sql.ErrTxDone
	}
	_, err := r.tx.ExecContext(ctx, `
UPDATE fines
SET status = $2, updated_at = NOW()
WHERE id = $1
`, fineID, status)
	return err
}
