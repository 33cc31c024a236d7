package Workflow

import (
	"fmt"

	"FireGuard/Models"
)

// projectNext is the allowed-next-state table for the project lifecycle.
// COMPLETED and TERMINATED are absorbing: they have no outgoing edges.
var projectNext = map[Models.ProjectStatus][]Models.ProjectStatus{
	Models.ProjectWaitingContract:  {Models.ProjectSetMilestone},
	Models.ProjectSetMilestone:     {Models.ProjectWaitingSignature},
	Models.ProjectWaitingSignature: {Models.ProjectWaitingPayment},
	Models.ProjectWaitingPayment:   {Models.ProjectOngoing},
	Models.ProjectOngoing:          {Models.ProjectOnHold, Models.ProjectCompleted, Models.ProjectTerminated},
	Models.ProjectOnHold:           {Models.ProjectOngoing, Models.ProjectTerminated},
	Models.ProjectCompleted:        {},
	Models.ProjectTerminated:       {},
}

// paymentNext is the allowed-next-state table for a project's payment cycle.
// TERMINATED projects bypass it (forced override to NOT_AVAILABLE).
var paymentNext = map[Models.PaymentStatus][]Models.PaymentStatus{
	Models.PaymentNotAvailable:       {Models.PaymentWaitingDownpayment},
	Models.PaymentWaitingDownpayment: {Models.PaymentWaitingApproval, Models.PaymentPaidDownpayment},
	Models.PaymentPaidDownpayment:    {Models.PaymentWaitingPayment, Models.PaymentProgressBilling},
	Models.PaymentWaitingPayment:     {Models.PaymentProgressBilling, Models.PaymentWaitingApproval, Models.PaymentFullyPaid},
	Models.PaymentProgressBilling:    {Models.PaymentWaitingApproval, Models.PaymentWaitingPayment, Models.PaymentFullyPaid},
	Models.PaymentWaitingApproval:    {Models.PaymentWaitingDownpayment, Models.PaymentPaidDownpayment, Models.PaymentWaitingPayment, Models.PaymentProgressBilling, Models.PaymentFullyPaid},
	Models.PaymentFullyPaid:          {},
}

// CanAdvanceProject reports whether from -> to is in the allowed-next set.
func CanAdvanceProject(from, to Models.ProjectStatus) bool {
	for _, next := range projectNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanAdvancePayment reports whether from -> to is a valid payment transition.
func CanAdvancePayment(from, to Models.PaymentStatus) bool {
	for _, next := range paymentNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the project status accepts no further transitions.
func IsTerminal(status Models.ProjectStatus) bool {
	return status == Models.ProjectCompleted || status == Models.ProjectTerminated
}

// MilestoneCreationAllowed guards milestone creation on the server side:
// milestones exist from SET_MILESTONE onward and never after a terminal state.
func MilestoneCreationAllowed(status Models.ProjectStatus) bool {
	switch status {
	case Models.ProjectSetMilestone,
		Models.ProjectWaitingSignature,
		Models.ProjectWaitingPayment,
		Models.ProjectOngoing,
		Models.ProjectOnHold:
		return true
	}
	return false
}

// TransitionNotice is the fixed notification copy sent to the project owner
// when the project enters the given state.
func TransitionNotice(target Models.ProjectStatus) (title, body string, ok bool) {
	switch target {
	case Models.ProjectSetMilestone:
		return "Contract Uploaded",
			"Your project contract is ready. Milestones are now being set for your project.", true
	case Models.ProjectWaitingSignature:
		return "Milestones Set",
			"Project milestones have been set. Please review and sign your contract.", true
	case Models.ProjectWaitingPayment:
		return "Waiting for Downpayment",
			"Your signed contract has been received. Please settle the downpayment to start the project.", true
	case Models.ProjectOngoing:
		return "Project Started",
			"Your downpayment has been confirmed. Work on your project is now ongoing.", true
	case Models.ProjectOnHold:
		return "Project On Hold",
			"Your project has been placed on hold. We will notify you once work resumes.", true
	case Models.ProjectCompleted:
		return "Project Completed",
			"Congratulations! Your project has been completed. Thank you for trusting us.", true
	case Models.ProjectTerminated:
		return "Project Terminated",
			"Your project has been terminated. Please contact us for further details.", true
	}
	return "", "", false
}

// MilestoneDoneNotice is the owner notification sent when a milestone's work
// is marked finished and its progress billing becomes due.
func MilestoneDoneNotice(milestoneNo int) (title, body string) {
	return fmt.Sprintf("Waiting Progress Billing %d Payment", milestoneNo),
		fmt.Sprintf("Milestone %d has been completed. Please settle its progress billing.", milestoneNo)
}
