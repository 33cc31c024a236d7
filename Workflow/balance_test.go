package Workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"FireGuard/Models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestQuotationTotals(t *testing.T) {
	totals := QuotationTotals(d("100000"), d("50000"), d("20000"))

	assert.True(t, totals.TotalPayment.Equal(d("170000")), "total = %s", totals.TotalPayment)
	assert.True(t, totals.DownPayment.Equal(d("85000")), "downpayment = %s", totals.DownPayment)
	assert.True(t, totals.VAT.Equal(d("20400")), "vat = %s", totals.VAT)
	assert.True(t, totals.Subtotal.Equal(d("149600")), "subtotal = %s", totals.Subtotal)
}

func TestQuotationTotalsRounding(t *testing.T) {
	totals := QuotationTotals(d("33333.335"), d("0.001"), d("0"))

	assert.True(t, totals.TotalPayment.Equal(d("33333.34")))
	assert.True(t, totals.DownPayment.Equal(d("16666.67")))
	// VAT + subtotal always reassemble the total exactly
	assert.True(t, totals.VAT.Add(totals.Subtotal).Equal(totals.TotalPayment))
}

func TestDerivePOStatus(t *testing.T) {
	total := d("10000")

	// Pre-payment steps are kept until the first payment lands
	assert.Equal(t, Models.POForApproval, DerivePOStatus(Models.POForApproval, total, decimal.Zero))
	assert.Equal(t, Models.POApproved, DerivePOStatus(Models.POApproved, total, decimal.Zero))
	assert.Equal(t, Models.POSent, DerivePOStatus(Models.POSent, total, decimal.Zero))

	assert.Equal(t, Models.POPartiallyPaid, DerivePOStatus(Models.POSent, total, d("4000")))
	assert.Equal(t, Models.POFullyPaid, DerivePOStatus(Models.POSent, total, d("10000")))
	assert.Equal(t, Models.POFullyPaid, DerivePOStatus(Models.POPartiallyPaid, total, d("10500")))

	// Status is a pure function of the sum: same inputs, same answer
	assert.Equal(t,
		DerivePOStatus(Models.POSent, total, d("4000")),
		DerivePOStatus(Models.POPartiallyPaid, total, d("4000")))
}

func TestExpectedBalance(t *testing.T) {
	milestones := []Models.ProjectMilestone{
		{MilestoneNo: 1, Price: d("30000"), BillingStatus: Models.BillingPaid},
		{MilestoneNo: 2, Price: d("25000"), BillingStatus: Models.BillingUnpaid},
		{MilestoneNo: 3, Price: d("30000"), BillingStatus: Models.BillingPaid},
	}
	// 170000 - 30000 - 30000 - 85000 downpayment
	got := ExpectedBalance(d("170000"), milestones, d("85000"))
	assert.True(t, got.Equal(d("25000")), "balance = %s", got)
}

func TestNextMilestoneNo(t *testing.T) {
	assert.Equal(t, 1, NextMilestoneNo(nil))
	assert.Equal(t, 3, NextMilestoneNo([]Models.ProjectMilestone{
		{MilestoneNo: 1}, {MilestoneNo: 2},
	}))
	// Numbers are never reused: gaps do not get refilled
	assert.Equal(t, 6, NextMilestoneNo([]Models.ProjectMilestone{
		{MilestoneNo: 1}, {MilestoneNo: 5}, {MilestoneNo: 3},
	}))
}
