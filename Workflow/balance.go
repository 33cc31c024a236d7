package Workflow

import (
	"github.com/shopspring/decimal"

	"FireGuard/Models"
)

// VATRate is the value-added tax rate applied to quotation totals.
var VATRate = decimal.NewFromFloat(0.12)

var two = decimal.NewFromInt(2)

// Totals is the cost breakdown snapshotted onto an approved quotation and used
// to initialize a project's remaining balance.
type Totals struct {
	TotalPayment decimal.Decimal `json:"total_payment"`
	DownPayment  decimal.Decimal `json:"down_payment"`
	VAT          decimal.Decimal `json:"vat"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// QuotationTotals computes the cost breakdown for a quotation. Pure; all
// amounts rounded to 2 decimal places.
func QuotationTotals(materials, labor, requirements decimal.Decimal) Totals {
	total := materials.Add(labor).Add(requirements).Round(2)
	vat := total.Mul(VATRate).Round(2)
	return Totals{
		TotalPayment: total,
		DownPayment:  total.Div(two).Round(2),
		VAT:          vat,
		Subtotal:     total.Sub(vat),
	}
}

// DerivePOStatus recomputes a purchase order's status from the sum of its
// recorded payments. Pre-payment steps (FOR_APPROVAL, APPROVED, PO_SENT) are
// kept as-is until the first payment lands; from then on the status is a pure
// function of paid vs total.
func DerivePOStatus(current Models.PurchaseOrderStatus, total, paid decimal.Decimal) Models.PurchaseOrderStatus {
	if paid.IsZero() {
		return current
	}
	if paid.GreaterThanOrEqual(total) {
		return Models.POFullyPaid
	}
	return Models.POPartiallyPaid
}

// ExpectedBalance recomputes what a project's remaining balance must be:
// initial total minus every milestone price already billed PAID, minus any
// explicitly applied non-milestone deductions (downpayment, others).
func ExpectedBalance(initialTotal decimal.Decimal, milestones []Models.ProjectMilestone, applied decimal.Decimal) decimal.Decimal {
	balance := initialTotal
	for _, m := range milestones {
		if m.BillingStatus == Models.BillingPaid {
			balance = balance.Sub(m.Price)
		}
	}
	return balance.Sub(applied)
}

// derivePaymentStatus computes the payment state a project should return to
// when no proof is pending review: before the downpayment it waits for the
// downpayment, with billable finished milestones it is in progress billing,
// with nothing left to pay it is fully paid.
func derivePaymentStatus(project *Models.Project, milestones []Models.ProjectMilestone, downpaymentPaid bool) Models.PaymentStatus {
	if IsTerminal(project.ProjectStatus) && project.ProjectStatus == Models.ProjectTerminated {
		return Models.PaymentNotAvailable
	}
	if !downpaymentPaid {
		return Models.PaymentWaitingDownpayment
	}
	if project.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		return Models.PaymentFullyPaid
	}
	for _, m := range milestones {
		if m.MilestoneStatus == Models.MilestoneDone && m.BillingStatus == Models.BillingUnpaid {
			return Models.PaymentProgressBilling
		}
	}
	return Models.PaymentWaitingPayment
}

// NextMilestoneNo assigns the next milestone number for a project: one past
// the highest number ever used, so numbers are never reused.
func NextMilestoneNo(milestones []Models.ProjectMilestone) int {
	max := 0
	for _, m := range milestones {
		if m.MilestoneNo > max {
			max = m.MilestoneNo
		}
	}
	return max + 1
}
