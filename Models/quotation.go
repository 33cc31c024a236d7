package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quotation is a client's request for a fire-safety job. Accounting fills in
// the costing fields, admin approves, and approval converts it into a Project.
type Quotation struct {
	gorm.Model
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	BuildingName    string          `json:"building_name" gorm:"size:255;not null"`
	BuildingAddress string          `json:"building_address" gorm:"size:500;not null"`
	ServiceType     string          `json:"service_type" gorm:"size:255;not null"`
	Remarks         string          `json:"remarks" gorm:"type:text"`
	Attachments     datatypes.JSON  `json:"attachments"` // stored upload filenames
	Status          QuotationStatus `json:"status" gorm:"size:20;not null;default:'PENDING';index"`

	// Costing snapshot, set by accounting (see Workflow.QuotationTotals)
	MaterialsCost    decimal.Decimal `json:"materials_cost" gorm:"type:numeric(14,2)"`
	LaborCost        decimal.Decimal `json:"labor_cost" gorm:"type:numeric(14,2)"`
	RequirementsCost decimal.Decimal `json:"requirements_cost" gorm:"type:numeric(14,2)"`
	TotalPayment     decimal.Decimal `json:"total_payment" gorm:"type:numeric(14,2)"`
	DownPayment      decimal.Decimal `json:"down_payment" gorm:"type:numeric(14,2)"`
	VAT              decimal.Decimal `json:"vat" gorm:"type:numeric(14,2)"`
	Subtotal         decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2)"`

	CostedBy     *uint  `json:"costed_by"`
	ReviewedBy   *uint  `json:"reviewed_by"`
	RejectReason string `json:"reject_reason" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
