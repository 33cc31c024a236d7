package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Supplier struct {
	gorm.Model
	Name          string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	ContactPerson string `json:"contact_person" gorm:"size:255"`
	Email         string `json:"email" gorm:"size:255"`
	Phone         string `json:"phone" gorm:"size:50"`
	Address       string `json:"address" gorm:"size:500"`
}

// PurchaseOrder is an order placed with a supplier. Its status is denormalized
// but always recomputed from sum(payments) vs Total (Workflow.DerivePOStatus),
// never hand-set past the APPROVED/PO_SENT steps.
type PurchaseOrder struct {
	gorm.Model
	SupplierID uint                `json:"supplier_id" gorm:"not null;index"`
	ProjectID  *uint               `json:"project_id" gorm:"index"`
	CreatedBy  uint                `json:"created_by" gorm:"not null"`
	Status     PurchaseOrderStatus `json:"status" gorm:"size:20;not null;default:'FOR_APPROVAL';index"`
	Total      decimal.Decimal     `json:"total" gorm:"type:numeric(14,2);not null"`
	DateNeeded time.Time           `json:"date_needed"`
	Remarks    string              `json:"remarks" gorm:"size:500"`

	// Relationships
	Supplier Supplier               `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Items    []PurchaseOrderItem    `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	Payments []PurchaseOrderPayment `json:"payments,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

type PurchaseOrderItem struct {
	gorm.Model
	PurchaseOrderID uint            `json:"purchase_order_id" gorm:"not null;index"`
	Name            string          `json:"name" gorm:"size:255;not null"`
	Unit            string          `json:"unit" gorm:"size:50"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	UnitPrice       decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"` // Quantity * UnitPrice
}

// PurchaseOrderPayment is a payment recorded against a PO by accounting.
type PurchaseOrderPayment struct {
	gorm.Model
	PurchaseOrderID uint            `json:"purchase_order_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	ReferenceNo     string          `json:"reference_no" gorm:"size:100"`
	DateOfPayment   time.Time       `json:"date_of_payment" gorm:"not null"`
	RecordedBy      uint            `json:"recorded_by" gorm:"not null"`
}
