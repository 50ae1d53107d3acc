package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// ManagementDepartment and CEODesignations identify the Management HOD:
// the CEO-equivalent at the top of the org chart.
const ManagementDepartment = "Management"

var CEODesignations = []string{
	"CEO",
	"C.E.O",
	"C.E.O.",
	"Director",
	"Managing Director",
	"General Manager",
}

type Employee struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName          string     `gorm:"type:varchar(255);not null"`
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Department        string     `gorm:"type:varchar(100);not null;index"`
	Designation       string     `gorm:"type:varchar(100);not null"`
	PrimaryReporteeID *uuid.UUID `gorm:"type:uuid;index"` // direct manager
	Status            string     `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	JoinedAt          *time.Time `gorm:"type:date"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}
