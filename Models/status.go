package Models

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectWaitingContract  ProjectStatus = "WAITING_CONTRACT"
	ProjectSetMilestone     ProjectStatus = "SET_MILESTONE"
	ProjectWaitingSignature ProjectStatus = "WAITING_SIGNATURE"
	ProjectWaitingPayment   ProjectStatus = "WAITING_PAYMENT"
	ProjectOngoing          ProjectStatus = "ONGOING"
	ProjectOnHold           ProjectStatus = "ON_HOLD"
	ProjectCompleted        ProjectStatus = "COMPLETED"
	ProjectTerminated       ProjectStatus = "TERMINATED"
)

// PaymentStatus tracks where a project sits in its payment cycle.
type PaymentStatus string

const (
	PaymentNotAvailable       PaymentStatus = "NOT_AVAILABLE"
	PaymentWaitingDownpayment PaymentStatus = "WAITING_DOWNPAYMENT"
	PaymentPaidDownpayment    PaymentStatus = "PAID_DOWNPAYMENT"
	PaymentWaitingPayment     PaymentStatus = "WAITING_PAYMENT"
	PaymentProgressBilling    PaymentStatus = "PROGRESS_BILLING"
	PaymentWaitingApproval    PaymentStatus = "WAITING_APPROVAL"
	PaymentFullyPaid          PaymentStatus = "FULLY_PAID"
)

// MilestoneStatus is whether the milestone's work is finished.
type MilestoneStatus string

const (
	MilestoneOngoing MilestoneStatus = "ONGOING"
	MilestoneDone    MilestoneStatus = "DONE"
)

// BillingStatus is whether the milestone's invoice has been paid.
type BillingStatus string

const (
	BillingUnpaid BillingStatus = "UNPAID"
	BillingPaid   BillingStatus = "PAID"
)

// QuotationStatus is the review state of a quotation request.
type QuotationStatus string

const (
	QuotationPending     QuotationStatus = "PENDING"
	QuotationForApproval QuotationStatus = "FOR_APPROVAL"
	QuotationApproved    QuotationStatus = "APPROVED"
	QuotationRejected    QuotationStatus = "REJECTED"
)

// PaymentCategory distinguishes what a client payment is for.
type PaymentCategory string

const (
	CategoryDownpayment PaymentCategory = "DOWNPAYMENT"
	CategoryMilestone   PaymentCategory = "MILESTONE"
	CategoryOthers      PaymentCategory = "OTHERS"
)

// PaymentApproval is the accounting review state of a submitted payment proof.
type PaymentApproval string

const (
	ApprovalPending  PaymentApproval = "PENDING"
	ApprovalAccepted PaymentApproval = "ACCEPTED"
	ApprovalRejected PaymentApproval = "REJECTED"
)

// PurchaseOrderStatus is always derivable from sum(payments) vs total.
type PurchaseOrderStatus string

const (
	POForApproval   PurchaseOrderStatus = "FOR_APPROVAL"
	POApproved      PurchaseOrderStatus = "APPROVED"
	POSent          PurchaseOrderStatus = "PO_SENT"
	POPartiallyPaid PurchaseOrderStatus = "PARTIALLY_PAID"
	POFullyPaid     PurchaseOrderStatus = "FULLY_PAID"
)
