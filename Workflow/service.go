package Workflow

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"FireGuard/Models"
)

// Notifier delivers a user-visible message. Implemented by the Notifications
// package; kept as an interface so the core is testable without FCM.
type Notifier interface {
	Notify(userID uint, title, body, entity string, entityID uint)
}

// Service applies workflow transitions. Every operation runs as a single
// transaction: on any guard violation nothing is committed. Notifications are
// dispatched only after the transaction commits.
type Service struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{DB: db, Notifier: notifier}
}

type notice struct {
	userID   uint
	title    string
	body     string
	entity   string
	entityID uint
}

func (s *Service) dispatch(notices []notice) {
	if s.Notifier == nil {
		return
	}
	for _, n := range notices {
		s.Notifier.Notify(n.userID, n.title, n.body, n.entity, n.entityID)
	}
}

func logActivity(tx *gorm.DB, actor Models.User, action, entity string, entityID uint, detail map[string]interface{}) {
	var payload datatypes.JSON
	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			payload = datatypes.JSON(raw)
		}
	}
	tx.Create(&Models.ActivityLog{
		UserID:   actor.ID,
		UserName: actor.Name,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   payload,
	})
}

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound(format, args...)
	}
	return err
}

// ---------------------------------------------------------------------------
// Quotations

// ApproveQuotation approves a costed quotation and converts it into a project.
// The project starts at WAITING_CONTRACT with the quotation's total payment as
// its remaining balance.
func (s *Service) ApproveQuotation(actor Models.User, quotationID uint, contractFileName string) (*Models.Project, error) {
	var project Models.Project
	var owner uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quotation Models.Quotation
		if err := tx.First(&quotation, quotationID).Error; err != nil {
			return notFoundOr(err, "quotation %d not found", quotationID)
		}
		if quotation.Status != Models.QuotationForApproval {
			return ErrInvalidTransition("quotation %d is %s, only FOR_APPROVAL quotations can be approved", quotationID, quotation.Status)
		}

		quotation.Status = Models.QuotationApproved
		quotation.ReviewedBy = &actor.ID
		if err := tx.Save(&quotation).Error; err != nil {
			return err
		}

		project = Models.Project{
			UserID:           quotation.UserID,
			QuotationID:      quotation.ID,
			ProjectStatus:    Models.ProjectWaitingContract,
			PaymentStatus:    Models.PaymentNotAvailable,
			ContractFileName: contractFileName,
			RemainingBalance: quotation.TotalPayment,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		owner = quotation.UserID

		logActivity(tx, actor, "quotation.approve", "quotation", quotation.ID, map[string]interface{}{
			"project_id": project.ID,
			"total":      quotation.TotalPayment,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch([]notice{{owner, "Quotation Approved",
		"Your quotation has been approved and converted into a project. We will upload your contract shortly.",
		"project", project.ID}})
	return &project, nil
}

// RejectQuotation is terminal for the quotation; nothing else is touched.
func (s *Service) RejectQuotation(actor Models.User, quotationID uint, reason string) (*Models.Quotation, error) {
	var quotation Models.Quotation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&quotation, quotationID).Error; err != nil {
			return notFoundOr(err, "quotation %d not found", quotationID)
		}
		if quotation.Status == Models.QuotationApproved || quotation.Status == Models.QuotationRejected {
			return ErrAlreadyProcessed("quotation %d has already been %s", quotationID, quotation.Status)
		}
		quotation.Status = Models.QuotationRejected
		quotation.ReviewedBy = &actor.ID
		quotation.RejectReason = reason
		if err := tx.Save(&quotation).Error; err != nil {
			return err
		}
		logActivity(tx, actor, "quotation.reject", "quotation", quotation.ID, map[string]interface{}{"reason": reason})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch([]notice{{quotation.UserID, "Quotation Rejected",
		"Your quotation request was not approved. Reason: " + reason, "quotation", quotation.ID}})
	return &quotation, nil
}

// ---------------------------------------------------------------------------
// Project status

// AdvanceProjectStatus moves a project to targetStatus if the transition table
// allows it, applying the coupled payment-status effects and notifying the
// owner with the transition's fixed copy.
func (s *Service) AdvanceProjectStatus(actor Models.User, projectID uint, target Models.ProjectStatus) (*Models.Project, error) {
	var project Models.Project
	var notices []notice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		return s.advanceProjectTx(tx, actor, &project, target, &notices)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(notices)
	return &project, nil
}

func (s *Service) advanceProjectTx(tx *gorm.DB, actor Models.User, project *Models.Project, target Models.ProjectStatus, notices *[]notice) error {
	from := project.ProjectStatus
	if !CanAdvanceProject(from, target) {
		return ErrInvalidTransition("project %d cannot move from %s to %s", project.ID, from, target)
	}

	// Transition-specific guards
	switch target {
	case Models.ProjectSetMilestone:
		if project.ContractFileName == "" {
			return ErrIncompleteInput("project %d has no contract file uploaded", project.ID)
		}
	case Models.ProjectWaitingPayment:
		if project.SignedContractFileName == "" {
			return ErrIncompleteInput("project %d has no signed contract uploaded", project.ID)
		}
	}

	project.ProjectStatus = target

	// Coupled payment-status effects
	switch target {
	case Models.ProjectWaitingPayment:
		project.PaymentStatus = Models.PaymentWaitingDownpayment
	case Models.ProjectTerminated:
		// Forced override, not a guarded transition
		project.PaymentStatus = Models.PaymentNotAvailable
	}

	if err := tx.Save(project).Error; err != nil {
		return err
	}

	logActivity(tx, actor, "project.status", "project", project.ID, map[string]interface{}{
		"from": from, "to": target,
	})
	if title, body, ok := TransitionNotice(target); ok {
		*notices = append(*notices, notice{project.UserID, title, body, "project", project.ID})
	}
	return nil
}

// AttachContract stores a contract (or signed contract) file reference on the
// project. Allowed only in the state that is actually waiting for that file.
func (s *Service) AttachContract(actor Models.User, projectID uint, fileName string, signed bool) (*Models.Project, error) {
	if fileName == "" {
		return nil, ErrIncompleteInput("contract file name is required")
	}
	var project Models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		if signed {
			if project.ProjectStatus != Models.ProjectWaitingSignature {
				return ErrInvalidTransition("project %d is %s, signed contracts are accepted while WAITING_SIGNATURE", projectID, project.ProjectStatus)
			}
			project.SignedContractFileName = fileName
		} else {
			if project.ProjectStatus != Models.ProjectWaitingContract {
				return ErrInvalidTransition("project %d is %s, contracts are uploaded while WAITING_CONTRACT", projectID, project.ProjectStatus)
			}
			project.ContractFileName = fileName
		}
		if err := tx.Save(&project).Error; err != nil {
			return err
		}
		action := "project.contract"
		if signed {
			action = "project.signed_contract"
		}
		logActivity(tx, actor, action, "project", project.ID, map[string]interface{}{"file": fileName})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SetPaymentStatus applies a payment-cycle transition directly. Callers cannot
// set arbitrary values: the target must be reachable in the payment table.
func (s *Service) SetPaymentStatus(actor Models.User, projectID uint, target Models.PaymentStatus) (*Models.Project, error) {
	var project Models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		if IsTerminal(project.ProjectStatus) {
			return ErrInvalidTransition("project %d is %s, payment status is frozen", projectID, project.ProjectStatus)
		}
		from := project.PaymentStatus
		if !CanAdvancePayment(from, target) {
			return ErrInvalidTransition("project %d payment status cannot move from %s to %s", projectID, from, target)
		}
		project.PaymentStatus = target
		if err := tx.Save(&project).Error; err != nil {
			return err
		}
		logActivity(tx, actor, "project.payment_status", "project", project.ID, map[string]interface{}{
			"from": from, "to": target,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ---------------------------------------------------------------------------
// Milestones

type CreateMilestoneInput struct {
	Price        decimal.Decimal
	Description  string
	StartDate    time.Time
	EstimatedEnd time.Time
}

// CreateMilestone adds the next progress-billing phase to a project. The
// milestone number is assigned inside the transaction as max(existing)+1 so
// numbers per project are strictly increasing and never reused.
func (s *Service) CreateMilestone(actor Models.User, projectID uint, in CreateMilestoneInput) (*Models.ProjectMilestone, error) {
	if !in.Price.IsPositive() {
		return nil, ErrIncompleteInput("milestone price must be greater than zero")
	}
	if in.Description == "" {
		return nil, ErrIncompleteInput("milestone description is required")
	}
	if !in.StartDate.Before(in.EstimatedEnd) {
		return nil, ErrIncompleteInput("milestone start date must be before its estimated end")
	}

	var milestone Models.ProjectMilestone
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project Models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		if !MilestoneCreationAllowed(project.ProjectStatus) {
			return ErrInvalidTransition("project %d is %s, milestones cannot be created", projectID, project.ProjectStatus)
		}

		var existing []Models.ProjectMilestone
		if err := tx.Where("project_id = ?", projectID).Find(&existing).Error; err != nil {
			return err
		}

		milestone = Models.ProjectMilestone{
			ProjectID:       projectID,
			MilestoneNo:     NextMilestoneNo(existing),
			Price:           in.Price,
			Description:     in.Description,
			StartDate:       in.StartDate,
			EstimatedEnd:    in.EstimatedEnd,
			MilestoneStatus: Models.MilestoneOngoing,
			BillingStatus:   Models.BillingUnpaid,
			PaymentStatus:   project.PaymentStatus,
		}
		if err := tx.Create(&milestone).Error; err != nil {
			return err
		}
		logActivity(tx, actor, "milestone.create", "milestone", milestone.ID, map[string]interface{}{
			"project_id":   projectID,
			"milestone_no": milestone.MilestoneNo,
			"price":        milestone.Price,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

// MarkMilestoneDone finishes a milestone's work. One-way: DONE never reverts.
// Only permitted while the project is ONGOING; moves the project's payment
// cycle into progress billing and notifies the owner.
func (s *Service) MarkMilestoneDone(actor Models.User, projectID uint, milestoneNo int) (*Models.ProjectMilestone, error) {
	var milestone Models.ProjectMilestone
	var notices []notice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project Models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		if project.ProjectStatus != Models.ProjectOngoing {
			return ErrInvalidTransition("project %d is %s, milestones can only be finished while ONGOING", projectID, project.ProjectStatus)
		}
		if err := tx.Where("project_id = ? AND milestone_no = ?", projectID, milestoneNo).First(&milestone).Error; err != nil {
			return notFoundOr(err, "milestone %d of project %d not found", milestoneNo, projectID)
		}
		if milestone.MilestoneStatus == Models.MilestoneDone {
			return ErrInvalidTransition("milestone %d of project %d is already DONE", milestoneNo, projectID)
		}

		milestone.MilestoneStatus = Models.MilestoneDone
		milestone.PaymentStatus = Models.PaymentProgressBilling
		if err := tx.Save(&milestone).Error; err != nil {
			return err
		}

		if CanAdvancePayment(project.PaymentStatus, Models.PaymentProgressBilling) {
			project.PaymentStatus = Models.PaymentProgressBilling
			if err := tx.Save(&project).Error; err != nil {
				return err
			}
		}

		logActivity(tx, actor, "milestone.done", "milestone", milestone.ID, map[string]interface{}{
			"project_id":   projectID,
			"milestone_no": milestoneNo,
		})
		title, body := MilestoneDoneNotice(milestoneNo)
		notices = append(notices, notice{project.UserID, title, body, "project", project.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(notices)
	return &milestone, nil
}

// markBillingPaidTx flips a DONE milestone's billing to PAID and decrements
// the project's remaining balance by paidAmount. Both rows are written inside
// the caller's transaction: they succeed together or not at all.
func (s *Service) markBillingPaidTx(tx *gorm.DB, actor Models.User, project *Models.Project, milestoneNo int, paidAmount decimal.Decimal) (*Models.ProjectMilestone, error) {
	var milestone Models.ProjectMilestone
	if err := tx.Where("project_id = ? AND milestone_no = ?", project.ID, milestoneNo).First(&milestone).Error; err != nil {
		return nil, notFoundOr(err, "milestone %d of project %d not found", milestoneNo, project.ID)
	}
	if milestone.MilestoneStatus != Models.MilestoneDone {
		return nil, ErrInvalidTransition("milestone %d of project %d is not DONE, billing cannot be paid", milestoneNo, project.ID)
	}
	if milestone.BillingStatus == Models.BillingPaid {
		return nil, ErrAlreadyProcessed("milestone %d of project %d billing is already PAID", milestoneNo, project.ID)
	}
	if paidAmount.GreaterThan(project.RemainingBalance) {
		return nil, ErrInconsistentBalance("payment of %s exceeds project %d remaining balance %s",
			paidAmount.String(), project.ID, project.RemainingBalance.String())
	}

	milestone.BillingStatus = Models.BillingPaid
	project.RemainingBalance = project.RemainingBalance.Sub(paidAmount)

	var milestones []Models.ProjectMilestone
	if err := tx.Where("project_id = ?", project.ID).Find(&milestones).Error; err != nil {
		return nil, err
	}
	for i := range milestones {
		if milestones[i].MilestoneNo == milestoneNo {
			milestones[i] = milestone
		}
	}
	project.PaymentStatus = derivePaymentStatus(project, milestones, true)
	milestone.PaymentStatus = project.PaymentStatus

	if err := tx.Save(&milestone).Error; err != nil {
		return nil, err
	}
	if err := tx.Save(project).Error; err != nil {
		return nil, err
	}
	logActivity(tx, actor, "milestone.billing_paid", "milestone", milestone.ID, map[string]interface{}{
		"project_id":        project.ID,
		"milestone_no":      milestoneNo,
		"paid_amount":       paidAmount,
		"remaining_balance": project.RemainingBalance,
	})
	return &milestone, nil
}

// MarkMilestoneBillingPaid is the standalone billing update used by accounting
// when a milestone payment is settled outside a submitted proof.
func (s *Service) MarkMilestoneBillingPaid(actor Models.User, projectID uint, milestoneNo int, paidAmount decimal.Decimal) (*Models.ProjectMilestone, error) {
	var milestone *Models.ProjectMilestone
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project Models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		var err error
		milestone, err = s.markBillingPaidTx(tx, actor, &project, milestoneNo, paidAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

// ---------------------------------------------------------------------------
// Payments

type SubmitPaymentInput struct {
	ProjectID     uint
	Category      Models.PaymentCategory
	MilestoneNo   *int
	ReferenceNo   string
	Amount        decimal.Decimal
	DateOfPayment time.Time
	ImageFileName string
	ThumbFileName string
}

// SubmitPayment records a client's payment proof as PENDING and parks the
// project's payment cycle at WAITING_APPROVAL until accounting reviews it.
func (s *Service) SubmitPayment(actor Models.User, in SubmitPaymentInput) (*Models.Payment, error) {
	if in.ReferenceNo == "" {
		return nil, ErrIncompleteInput("payment reference number is required")
	}
	if !in.Amount.IsPositive() {
		return nil, ErrIncompleteInput("payment amount must be greater than zero")
	}
	switch in.Category {
	case Models.CategoryDownpayment, Models.CategoryOthers:
	case Models.CategoryMilestone:
		if in.MilestoneNo == nil {
			return nil, ErrIncompleteInput("milestone number is required for milestone payments")
		}
	default:
		return nil, ErrIncompleteInput("unknown payment category %q", in.Category)
	}

	var payment Models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project Models.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", in.ProjectID)
		}
		if IsTerminal(project.ProjectStatus) {
			return ErrInvalidTransition("project %d is %s, payments are no longer accepted", project.ID, project.ProjectStatus)
		}
		if in.Category == Models.CategoryDownpayment && project.ProjectStatus != Models.ProjectWaitingPayment {
			return ErrInvalidTransition("project %d is %s, downpayments are submitted while WAITING_PAYMENT", project.ID, project.ProjectStatus)
		}
		if in.Category == Models.CategoryMilestone {
			var milestone Models.ProjectMilestone
			if err := tx.Where("project_id = ? AND milestone_no = ?", in.ProjectID, *in.MilestoneNo).First(&milestone).Error; err != nil {
				return notFoundOr(err, "milestone %d of project %d not found", *in.MilestoneNo, in.ProjectID)
			}
			if milestone.MilestoneStatus != Models.MilestoneDone {
				return ErrInvalidTransition("milestone %d of project %d is not DONE, its billing is not due yet", *in.MilestoneNo, in.ProjectID)
			}
			if milestone.BillingStatus == Models.BillingPaid {
				return ErrAlreadyProcessed("milestone %d of project %d is already PAID", *in.MilestoneNo, in.ProjectID)
			}
		}

		payment = Models.Payment{
			ProjectID:     in.ProjectID,
			UserID:        actor.ID,
			Category:      in.Category,
			MilestoneNo:   in.MilestoneNo,
			ReferenceNo:   in.ReferenceNo,
			Amount:        in.Amount,
			DateOfPayment: in.DateOfPayment,
			ImageFileName: in.ImageFileName,
			ThumbFileName: in.ThumbFileName,
			Status:        Models.ApprovalPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if CanAdvancePayment(project.PaymentStatus, Models.PaymentWaitingApproval) {
			project.PaymentStatus = Models.PaymentWaitingApproval
			if err := tx.Save(&project).Error; err != nil {
				return err
			}
		}

		logActivity(tx, actor, "payment.submit", "payment", payment.ID, map[string]interface{}{
			"project_id": in.ProjectID,
			"category":   in.Category,
			"amount":     in.Amount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// AcceptPayment confirms a pending payment proof. Acceptance is what triggers
// the balance/billing side effects: downpayments start the project, milestone
// payments settle the milestone's billing and decrement the remaining balance.
func (s *Service) AcceptPayment(actor Models.User, paymentID uint) (*Models.Payment, error) {
	var payment Models.Payment
	var notices []notice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return notFoundOr(err, "payment %d not found", paymentID)
		}
		if payment.Status != Models.ApprovalPending {
			return ErrAlreadyProcessed("payment %d has already been %s", paymentID, payment.Status)
		}

		var project Models.Project
		if err := tx.First(&project, payment.ProjectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", payment.ProjectID)
		}

		now := time.Now()
		payment.Status = Models.ApprovalAccepted
		payment.ReviewedBy = &actor.ID
		payment.ReviewedAt = &now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		switch payment.Category {
		case Models.CategoryDownpayment:
			if project.ProjectStatus != Models.ProjectWaitingPayment {
				return ErrInvalidTransition("project %d is %s, a downpayment cannot be accepted", project.ID, project.ProjectStatus)
			}
			project.PaymentStatus = Models.PaymentPaidDownpayment
			if err := tx.Save(&project).Error; err != nil {
				return err
			}
			// Paid downpayment starts the work
			if err := s.advanceProjectTx(tx, actor, &project, Models.ProjectOngoing, &notices); err != nil {
				return err
			}

		case Models.CategoryMilestone:
			if _, err := s.markBillingPaidTx(tx, actor, &project, *payment.MilestoneNo, payment.Amount); err != nil {
				return err
			}

		case Models.CategoryOthers:
			var milestones []Models.ProjectMilestone
			if err := tx.Where("project_id = ?", project.ID).Find(&milestones).Error; err != nil {
				return err
			}
			project.PaymentStatus = derivePaymentStatus(&project, milestones, s.downpaymentPaid(tx, project.ID))
			if err := tx.Save(&project).Error; err != nil {
				return err
			}
		}

		logActivity(tx, actor, "payment.accept", "payment", payment.ID, map[string]interface{}{
			"project_id": payment.ProjectID,
			"category":   payment.Category,
			"amount":     payment.Amount,
		})
		notices = append(notices, notice{payment.UserID, "Payment Accepted",
			"Your payment (ref " + payment.ReferenceNo + ") has been verified and accepted.",
			"payment", payment.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(notices)
	return &payment, nil
}

// RejectPayment is terminal for the payment record. It must not touch the
// remaining balance or any milestone billing status; the project's payment
// cycle simply returns to where it stood before the proof was submitted.
func (s *Service) RejectPayment(actor Models.User, paymentID uint) (*Models.Payment, error) {
	var payment Models.Payment
	var notices []notice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return notFoundOr(err, "payment %d not found", paymentID)
		}
		if payment.Status != Models.ApprovalPending {
			return ErrAlreadyProcessed("payment %d has already been %s", paymentID, payment.Status)
		}

		now := time.Now()
		payment.Status = Models.ApprovalRejected
		payment.ReviewedBy = &actor.ID
		payment.ReviewedAt = &now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		var project Models.Project
		if err := tx.First(&project, payment.ProjectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", payment.ProjectID)
		}
		if project.PaymentStatus == Models.PaymentWaitingApproval {
			var milestones []Models.ProjectMilestone
			if err := tx.Where("project_id = ?", project.ID).Find(&milestones).Error; err != nil {
				return err
			}
			project.PaymentStatus = derivePaymentStatus(&project, milestones, s.downpaymentPaid(tx, project.ID))
			if err := tx.Save(&project).Error; err != nil {
				return err
			}
		}

		logActivity(tx, actor, "payment.reject", "payment", payment.ID, map[string]interface{}{
			"project_id": payment.ProjectID,
		})
		notices = append(notices, notice{payment.UserID, "Payment Rejected",
			"Your payment (ref " + payment.ReferenceNo + ") could not be verified. Please re-submit with a valid proof.",
			"payment", payment.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(notices)
	return &payment, nil
}

func (s *Service) downpaymentPaid(tx *gorm.DB, projectID uint) bool {
	var count int64
	tx.Model(&Models.Payment{}).
		Where("project_id = ? AND category = ? AND status = ?", projectID, Models.CategoryDownpayment, Models.ApprovalAccepted).
		Count(&count)
	return count > 0
}

// UpdateBalance applies an explicit balance deduction (the downpayment path:
// accepting a downpayment does not auto-decrement, accounting confirms the new
// balance here). The stored balance must match current minus amount exactly.
func (s *Service) UpdateBalance(actor Models.User, projectID uint, newBalance, amount decimal.Decimal, category Models.PaymentCategory, milestoneNo *int) (*Models.Project, error) {
	if !amount.IsPositive() {
		return nil, ErrIncompleteInput("deduction amount must be greater than zero")
	}
	var project Models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project %d not found", projectID)
		}
		if IsTerminal(project.ProjectStatus) {
			return ErrInvalidTransition("project %d is %s, its balance is frozen", projectID, project.ProjectStatus)
		}
		if !project.RemainingBalance.Sub(amount).Equal(newBalance) {
			return ErrInconsistentBalance("project %d balance %s minus %s is not %s",
				projectID, project.RemainingBalance.String(), amount.String(), newBalance.String())
		}

		project.RemainingBalance = newBalance
		var milestones []Models.ProjectMilestone
		if err := tx.Where("project_id = ?", projectID).Find(&milestones).Error; err != nil {
			return err
		}
		project.PaymentStatus = derivePaymentStatus(&project, milestones, s.downpaymentPaid(tx, projectID))
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		detail := map[string]interface{}{
			"amount":            amount,
			"category":          category,
			"remaining_balance": newBalance,
		}
		if milestoneNo != nil {
			detail["milestone_no"] = *milestoneNo
		}
		logActivity(tx, actor, "project.balance", "project", project.ID, detail)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ---------------------------------------------------------------------------
// Purchase orders

// ApprovePurchaseOrder moves a PO from FOR_APPROVAL to APPROVED.
func (s *Service) ApprovePurchaseOrder(actor Models.User, poID uint) (*Models.PurchaseOrder, error) {
	return s.stepPurchaseOrder(actor, poID, Models.POForApproval, Models.POApproved, "purchase_order.approve")
}

// MarkPurchaseOrderSent moves an APPROVED PO to PO_SENT.
func (s *Service) MarkPurchaseOrderSent(actor Models.User, poID uint) (*Models.PurchaseOrder, error) {
	return s.stepPurchaseOrder(actor, poID, Models.POApproved, Models.POSent, "purchase_order.sent")
}

func (s *Service) stepPurchaseOrder(actor Models.User, poID uint, from, to Models.PurchaseOrderStatus, action string) (*Models.PurchaseOrder, error) {
	var po Models.PurchaseOrder
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&po, poID).Error; err != nil {
			return notFoundOr(err, "purchase order %d not found", poID)
		}
		if po.Status != from {
			return ErrInvalidTransition("purchase order %d is %s, expected %s", poID, po.Status, from)
		}
		po.Status = to
		if err := tx.Save(&po).Error; err != nil {
			return err
		}
		logActivity(tx, actor, action, "purchase_order", po.ID, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// RecordPurchaseOrderPayment adds a supplier payment and recomputes the PO
// status from the cumulative paid sum, in the same transaction. The status is
// never set independently of that sum.
func (s *Service) RecordPurchaseOrderPayment(actor Models.User, poID uint, amount decimal.Decimal, referenceNo string, date time.Time) (*Models.PurchaseOrder, error) {
	if !amount.IsPositive() {
		return nil, ErrIncompleteInput("payment amount must be greater than zero")
	}
	var po Models.PurchaseOrder
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&po, poID).Error; err != nil {
			return notFoundOr(err, "purchase order %d not found", poID)
		}
		switch po.Status {
		case Models.POForApproval:
			return ErrInvalidTransition("purchase order %d has not been approved yet", poID)
		case Models.POFullyPaid:
			return ErrAlreadyProcessed("purchase order %d is already fully paid", poID)
		}

		poPayment := Models.PurchaseOrderPayment{
			PurchaseOrderID: poID,
			Amount:          amount,
			ReferenceNo:     referenceNo,
			DateOfPayment:   date,
			RecordedBy:      actor.ID,
		}
		if err := tx.Create(&poPayment).Error; err != nil {
			return err
		}

		var payments []Models.PurchaseOrderPayment
		if err := tx.Where("purchase_order_id = ?", poID).Find(&payments).Error; err != nil {
			return err
		}
		paid := decimal.Zero
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}

		po.Status = DerivePOStatus(po.Status, po.Total, paid)
		if err := tx.Save(&po).Error; err != nil {
			return err
		}
		logActivity(tx, actor, "purchase_order.payment", "purchase_order", po.ID, map[string]interface{}{
			"amount": amount,
			"paid":   paid,
			"status": po.Status,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &po, nil
}
