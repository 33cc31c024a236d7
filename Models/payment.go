package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is a client-submitted proof of payment against a project. It stays
// PENDING until accounting accepts or rejects it; accepted payments are
// immutable and drive the balance/billing transitions in Workflow.
type Payment struct {
	gorm.Model
	ProjectID     uint            `json:"project_id" gorm:"not null;index"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	Category      PaymentCategory `json:"category" gorm:"size:20;not null"`
	MilestoneNo   *int            `json:"milestone_no"` // required iff Category == MILESTONE
	ReferenceNo   string          `json:"reference_no" gorm:"size:100;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	DateOfPayment time.Time       `json:"date_of_payment" gorm:"not null"`
	ImageFileName string          `json:"image_file_name" gorm:"size:255"`
	ThumbFileName string          `json:"thumb_file_name" gorm:"size:255"`

	Status     PaymentApproval `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	ReviewedBy *uint           `json:"reviewed_by"`
	ReviewedAt *time.Time      `json:"reviewed_at"`

	// Relationships
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
