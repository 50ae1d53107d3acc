package loan

import (
	"time"

	"hr-backoffice/internal/approval"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Loan struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference  string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	Installments int    `gorm:"type:int;not null;default:1"`
	Purpose      string `gorm:"type:text"`

	Status        approval.Status `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	ApprovedBy    *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt    *time.Time
	Remarks       *string `gorm:"type:text"`
	AttachmentKey string  `gorm:"type:varchar(255)"` // sanction letter object key

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
