package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Project is created when an approved quotation is converted. Its four status
// fields only ever change through the Workflow package.
type Project struct {
	gorm.Model
	UserID                 uint            `json:"user_id" gorm:"not null;index"`
	QuotationID            uint            `json:"quotation_id" gorm:"not null;uniqueIndex"`
	ProjectStatus          ProjectStatus   `json:"project_status" gorm:"size:30;not null;default:'WAITING_CONTRACT';index"`
	PaymentStatus          PaymentStatus   `json:"payment_status" gorm:"size:30;not null;default:'NOT_AVAILABLE'"`
	ContractFileName       string          `json:"contract_file_name" gorm:"size:255"`
	SignedContractFileName string          `json:"signed_contract_file_name" gorm:"size:255"`
	RemainingBalance       decimal.Decimal `json:"remaining_balance" gorm:"type:numeric(14,2);not null"`

	// Relationships
	User       User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quotation  Quotation          `json:"quotation,omitempty" gorm:"foreignKey:QuotationID"`
	Milestones []ProjectMilestone `json:"milestones,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectMilestone is one progress-billing phase of a project. MilestoneNo is
// a 1-based sequence per project assigned at creation and never reused.
type ProjectMilestone struct {
	gorm.Model
	ProjectID    uint            `json:"project_id" gorm:"not null;uniqueIndex:idx_project_milestone_no,priority:1"`
	MilestoneNo  int             `json:"milestone_no" gorm:"not null;uniqueIndex:idx_project_milestone_no,priority:2"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
	Description  string          `json:"description" gorm:"size:500;not null"`
	StartDate    time.Time       `json:"start_date" gorm:"not null"`
	EstimatedEnd time.Time       `json:"estimated_end" gorm:"not null"`

	MilestoneStatus MilestoneStatus `json:"milestone_status" gorm:"size:20;not null;default:'ONGOING'"`
	BillingStatus   BillingStatus   `json:"billing_status" gorm:"size:20;not null;default:'UNPAID'"`
	// Snapshot of the project's payment status when this milestone last changed
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"size:30"`
}

func (ProjectMilestone) TableName() string {
	return "project_milestones"
}
