package fine

import (
	"time"

	"hr-backoffice/internal/approval"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fine is shared by one or more employees. Its Status is derived from the
// entries by Recompute and is never set directly by handlers.
type Fine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Reason    string    `gorm:"type:text;not null"`

	Status    approval.Status `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	CreatedBy uuid.UUID       `gorm:"type:uuid;not null"`

	Entries []FineEntry `gorm:"foreignKey:FineID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// FineEntry is one employee's individual approval record inside a Fine.
// Each entry moves through the approval protocol independently.
type FineEntry struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FineID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	Status     approval.Status `gorm:"type:varchar(30);not null;default:'PENDING'"`
	ApprovedBy *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt *time.Time
	Remarks    *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
