package Workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FireGuard/Models"
)

func TestProjectHappyPath(t *testing.T) {
	path := []Models.ProjectStatus{
		Models.ProjectWaitingContract,
		Models.ProjectSetMilestone,
		Models.ProjectWaitingSignature,
		Models.ProjectWaitingPayment,
		Models.ProjectOngoing,
		Models.ProjectCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanAdvanceProject(path[i], path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestProjectNoSkipping(t *testing.T) {
	assert.False(t, CanAdvanceProject(Models.ProjectWaitingContract, Models.ProjectOngoing))
	assert.False(t, CanAdvanceProject(Models.ProjectWaitingContract, Models.ProjectWaitingSignature))
	assert.False(t, CanAdvanceProject(Models.ProjectSetMilestone, Models.ProjectWaitingPayment))
	// No going backwards either
	assert.False(t, CanAdvanceProject(Models.ProjectOngoing, Models.ProjectWaitingPayment))
	assert.False(t, CanAdvanceProject(Models.ProjectWaitingSignature, Models.ProjectSetMilestone))
}

func TestProjectHoldAndResume(t *testing.T) {
	assert.True(t, CanAdvanceProject(Models.ProjectOngoing, Models.ProjectOnHold))
	assert.True(t, CanAdvanceProject(Models.ProjectOnHold, Models.ProjectOngoing))
	assert.True(t, CanAdvanceProject(Models.ProjectOnHold, Models.ProjectTerminated))
	assert.False(t, CanAdvanceProject(Models.ProjectOnHold, Models.ProjectCompleted))
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []Models.ProjectStatus{
		Models.ProjectWaitingContract, Models.ProjectSetMilestone,
		Models.ProjectWaitingSignature, Models.ProjectWaitingPayment,
		Models.ProjectOngoing, Models.ProjectOnHold,
		Models.ProjectCompleted, Models.ProjectTerminated,
	}
	for _, from := range []Models.ProjectStatus{Models.ProjectCompleted, Models.ProjectTerminated} {
		assert.True(t, IsTerminal(from))
		for _, to := range all {
			assert.False(t, CanAdvanceProject(from, to), "%s -> %s must be refused", from, to)
		}
	}
	assert.False(t, IsTerminal(Models.ProjectOngoing))
	assert.False(t, IsTerminal(Models.ProjectOnHold))
}

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, CanAdvancePayment(Models.PaymentNotAvailable, Models.PaymentWaitingDownpayment))
	assert.True(t, CanAdvancePayment(Models.PaymentWaitingDownpayment, Models.PaymentWaitingApproval))
	assert.True(t, CanAdvancePayment(Models.PaymentWaitingApproval, Models.PaymentPaidDownpayment))
	assert.True(t, CanAdvancePayment(Models.PaymentPaidDownpayment, Models.PaymentProgressBilling))
	assert.True(t, CanAdvancePayment(Models.PaymentProgressBilling, Models.PaymentFullyPaid))

	assert.False(t, CanAdvancePayment(Models.PaymentNotAvailable, Models.PaymentFullyPaid))
	assert.False(t, CanAdvancePayment(Models.PaymentWaitingDownpayment, Models.PaymentFullyPaid))
	// FULLY_PAID is absorbing
	assert.False(t, CanAdvancePayment(Models.PaymentFullyPaid, Models.PaymentWaitingPayment))
	assert.False(t, CanAdvancePayment(Models.PaymentFullyPaid, Models.PaymentProgressBilling))
}

func TestMilestoneCreationAllowed(t *testing.T) {
	allowed := []Models.ProjectStatus{
		Models.ProjectSetMilestone, Models.ProjectWaitingSignature,
		Models.ProjectWaitingPayment, Models.ProjectOngoing, Models.ProjectOnHold,
	}
	for _, status := range allowed {
		assert.True(t, MilestoneCreationAllowed(status), "milestones should be creatable while %s", status)
	}
	blocked := []Models.ProjectStatus{
		Models.ProjectWaitingContract, Models.ProjectCompleted, Models.ProjectTerminated,
	}
	for _, status := range blocked {
		assert.False(t, MilestoneCreationAllowed(status), "milestones must not be creatable while %s", status)
	}
}

func TestTransitionNotice(t *testing.T) {
	// Every reachable target state has fixed notification copy
	targets := []Models.ProjectStatus{
		Models.ProjectSetMilestone, Models.ProjectWaitingSignature,
		Models.ProjectWaitingPayment, Models.ProjectOngoing,
		Models.ProjectOnHold, Models.ProjectCompleted, Models.ProjectTerminated,
	}
	for _, target := range targets {
		title, body, ok := TransitionNotice(target)
		assert.True(t, ok, "no notice copy for %s", target)
		assert.NotEmpty(t, title)
		assert.NotEmpty(t, body)
	}
	// The initial state is never a transition target
	_, _, ok := TransitionNotice(Models.ProjectWaitingContract)
	assert.False(t, ok)
}

func TestMilestoneDoneNotice(t *testing.T) {
	title, body := MilestoneDoneNotice(2)
	assert.Equal(t, "Waiting Progress Billing 2 Payment", title)
	assert.Contains(t, body, "Milestone 2")
}
