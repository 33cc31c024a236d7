package Workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"FireGuard/Models"
)

// recordingNotifier captures notifications instead of hitting FCM/SMTP.
type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Notify(userID uint, title, body, entity string, entityID uint) {
	r.titles = append(r.titles, title)
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *recordingNotifier) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Models.User{}, &Models.Quotation{},
		&Models.Project{}, &Models.ProjectMilestone{}, &Models.Payment{},
		&Models.Supplier{}, &Models.PurchaseOrder{}, &Models.PurchaseOrderItem{}, &Models.PurchaseOrderPayment{},
		&Models.ActivityLog{}, &Models.Notification{},
	))
	notifier := &recordingNotifier{}
	return NewService(db, notifier), db, notifier
}

func makeUser(t *testing.T, db *gorm.DB, name string, permission int) Models.User {
	t.Helper()
	user := Models.User{Name: name, Email: name + "@test.local", Password: []byte("x"), Permission: permission}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// makeProject seeds a client, an approved quotation for 170000 and a project in
// the given state.
func makeProject(t *testing.T, db *gorm.DB, projectStatus Models.ProjectStatus, paymentStatus Models.PaymentStatus) (Models.Project, Models.User) {
	t.Helper()
	client := makeUser(t, db, "client-"+string(projectStatus), Models.PermissionClient)
	totals := QuotationTotals(d("100000"), d("50000"), d("20000"))
	quotation := Models.Quotation{
		UserID:       client.ID,
		BuildingName: "Harbor Tower",
		ServiceType:  "Sprinkler Installation",
		Status:       Models.QuotationApproved,
		TotalPayment: totals.TotalPayment,
		DownPayment:  totals.DownPayment,
		VAT:          totals.VAT,
		Subtotal:     totals.Subtotal,
	}
	require.NoError(t, db.Create(&quotation).Error)
	project := Models.Project{
		UserID:                 client.ID,
		QuotationID:            quotation.ID,
		ProjectStatus:          projectStatus,
		PaymentStatus:          paymentStatus,
		ContractFileName:       "contract.pdf",
		SignedContractFileName: "contract_signed.pdf",
		RemainingBalance:       totals.TotalPayment,
	}
	require.NoError(t, db.Create(&project).Error)
	return project, client
}

func reloadProject(t *testing.T, db *gorm.DB, id uint) Models.Project {
	t.Helper()
	var project Models.Project
	require.NoError(t, db.First(&project, id).Error)
	return project
}

func TestApproveQuotationCreatesProject(t *testing.T) {
	service, db, notifier := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)
	client := makeUser(t, db, "client", Models.PermissionClient)

	totals := QuotationTotals(d("100000"), d("50000"), d("20000"))
	quotation := Models.Quotation{
		UserID:       client.ID,
		BuildingName: "Harbor Tower",
		ServiceType:  "Sprinkler Installation",
		Status:       Models.QuotationForApproval,
		TotalPayment: totals.TotalPayment,
	}
	require.NoError(t, db.Create(&quotation).Error)

	project, err := service.ApproveQuotation(admin, quotation.ID, "")
	require.NoError(t, err)

	assert.Equal(t, Models.ProjectWaitingContract, project.ProjectStatus)
	assert.Equal(t, Models.PaymentNotAvailable, project.PaymentStatus)
	assert.True(t, project.RemainingBalance.Equal(d("170000")))
	assert.Equal(t, client.ID, project.UserID)

	var reloaded Models.Quotation
	require.NoError(t, db.First(&reloaded, quotation.ID).Error)
	assert.Equal(t, Models.QuotationApproved, reloaded.Status)
	assert.Contains(t, notifier.titles, "Quotation Approved")

	// A second approval must be refused and create nothing
	_, err = service.ApproveQuotation(admin, quotation.ID, "")
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	var count int64
	db.Model(&Models.Project{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestApproveQuotationNeedsCosting(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)
	client := makeUser(t, db, "client", Models.PermissionClient)

	quotation := Models.Quotation{UserID: client.ID, BuildingName: "B", ServiceType: "S", Status: Models.QuotationPending}
	require.NoError(t, db.Create(&quotation).Error)

	_, err := service.ApproveQuotation(admin, quotation.ID, "")
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestRejectQuotationIsTerminal(t *testing.T) {
	service, db, notifier := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)
	client := makeUser(t, db, "client", Models.PermissionClient)

	quotation := Models.Quotation{UserID: client.ID, BuildingName: "B", ServiceType: "S", Status: Models.QuotationForApproval}
	require.NoError(t, db.Create(&quotation).Error)

	rejected, err := service.RejectQuotation(admin, quotation.ID, "scope out of coverage")
	require.NoError(t, err)
	assert.Equal(t, Models.QuotationRejected, rejected.Status)
	assert.Equal(t, "scope out of coverage", rejected.RejectReason)
	assert.Contains(t, notifier.titles, "Quotation Rejected")

	_, err = service.RejectQuotation(admin, quotation.ID, "again")
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
	_, err = service.ApproveQuotation(admin, quotation.ID, "")
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestAdvanceProjectGuards(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)

	project, _ := makeProject(t, db, Models.ProjectWaitingContract, Models.PaymentNotAvailable)
	// Strip the seeded files so the guards fire
	require.NoError(t, db.Model(&project).Updates(map[string]interface{}{
		"contract_file_name": "", "signed_contract_file_name": "",
	}).Error)

	// Skipping states is refused
	_, err := service.AdvanceProjectStatus(admin, project.ID, Models.ProjectOngoing)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	// Missing contract blocks SET_MILESTONE
	_, err = service.AdvanceProjectStatus(admin, project.ID, Models.ProjectSetMilestone)
	assert.Equal(t, KindIncompleteInput, KindOf(err))

	_, err = service.AttachContract(admin, project.ID, "contract.pdf", false)
	require.NoError(t, err)
	_, err = service.AdvanceProjectStatus(admin, project.ID, Models.ProjectSetMilestone)
	require.NoError(t, err)
	_, err = service.AdvanceProjectStatus(admin, project.ID, Models.ProjectWaitingSignature)
	require.NoError(t, err)

	// Missing signed contract blocks WAITING_PAYMENT
	_, err = service.AdvanceProjectStatus(admin, project.ID, Models.ProjectWaitingPayment)
	assert.Equal(t, KindIncompleteInput, KindOf(err))

	_, err = service.AttachContract(admin, project.ID, "contract_signed.pdf", true)
	require.NoError(t, err)
	advanced, err := service.AdvanceProjectStatus(admin, project.ID, Models.ProjectWaitingPayment)
	require.NoError(t, err)
	// Entering WAITING_PAYMENT opens the payment cycle
	assert.Equal(t, Models.PaymentWaitingDownpayment, advanced.PaymentStatus)
}

func TestDownpaymentAcceptanceFlow(t *testing.T) {
	service, db, notifier := newTestService(t)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)
	project, client := makeProject(t, db, Models.ProjectWaitingPayment, Models.PaymentWaitingDownpayment)

	payment, err := service.SubmitPayment(client, SubmitPaymentInput{
		ProjectID:     project.ID,
		Category:      Models.CategoryDownpayment,
		ReferenceNo:   "DP-001",
		Amount:        d("85000"),
		DateOfPayment: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, Models.ApprovalPending, payment.Status)
	assert.Equal(t, Models.PaymentWaitingApproval, reloadProject(t, db, project.ID).PaymentStatus)

	_, err = service.AcceptPayment(accounting, payment.ID)
	require.NoError(t, err)

	reloaded := reloadProject(t, db, project.ID)
	assert.Equal(t, Models.ProjectOngoing, reloaded.ProjectStatus)
	assert.Equal(t, Models.PaymentPaidDownpayment, reloaded.PaymentStatus)
	// Acceptance alone never moves the balance
	assert.True(t, reloaded.RemainingBalance.Equal(d("170000")))
	assert.Contains(t, notifier.titles, "Project Started")
	assert.Contains(t, notifier.titles, "Payment Accepted")

	// Accounting applies the deduction explicitly
	updated, err := service.UpdateBalance(accounting, project.ID, d("85000"), d("85000"), Models.CategoryDownpayment, nil)
	require.NoError(t, err)
	assert.True(t, updated.RemainingBalance.Equal(d("85000")))
	assert.Equal(t, Models.PaymentWaitingPayment, updated.PaymentStatus)
}

func TestMilestoneBillingFlow(t *testing.T) {
	service, db, notifier := newTestService(t)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)
	project, client := makeProject(t, db, Models.ProjectOngoing, Models.PaymentPaidDownpayment)
	require.NoError(t, db.Model(&project).Update("remaining_balance", d("85000")).Error)
	db.Create(&Models.Payment{ProjectID: project.ID, UserID: client.ID,
		Category: Models.CategoryDownpayment, ReferenceNo: "DP-001",
		Amount: d("85000"), DateOfPayment: time.Now(), Status: Models.ApprovalAccepted})

	milestone, err := service.CreateMilestone(accounting, project.ID, CreateMilestoneInput{
		Price:        d("30000"),
		Description:  "Ground floor sprinkler rough-in",
		StartDate:    time.Now(),
		EstimatedEnd: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, milestone.MilestoneNo)
	assert.Equal(t, Models.MilestoneOngoing, milestone.MilestoneStatus)
	assert.Equal(t, Models.BillingUnpaid, milestone.BillingStatus)

	done, err := service.MarkMilestoneDone(accounting, project.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, Models.MilestoneDone, done.MilestoneStatus)
	assert.Equal(t, Models.PaymentProgressBilling, reloadProject(t, db, project.ID).PaymentStatus)
	assert.Contains(t, notifier.titles, "Waiting Progress Billing 1 Payment")

	// DONE never reverts
	_, err = service.MarkMilestoneDone(accounting, project.ID, 1)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	no := 1
	payment, err := service.SubmitPayment(client, SubmitPaymentInput{
		ProjectID:     project.ID,
		Category:      Models.CategoryMilestone,
		MilestoneNo:   &no,
		ReferenceNo:   "MS-001",
		Amount:        d("30000"),
		DateOfPayment: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, Models.PaymentWaitingApproval, reloadProject(t, db, project.ID).PaymentStatus)

	_, err = service.AcceptPayment(accounting, payment.ID)
	require.NoError(t, err)

	reloaded := reloadProject(t, db, project.ID)
	assert.True(t, reloaded.RemainingBalance.Equal(d("55000")), "balance = %s", reloaded.RemainingBalance)
	assert.Equal(t, Models.PaymentWaitingPayment, reloaded.PaymentStatus)

	var paid Models.ProjectMilestone
	require.NoError(t, db.Where("project_id = ? AND milestone_no = ?", project.ID, 1).First(&paid).Error)
	assert.Equal(t, Models.BillingPaid, paid.BillingStatus)

	// Settled billing refuses another proof
	_, err = service.SubmitPayment(client, SubmitPaymentInput{
		ProjectID: project.ID, Category: Models.CategoryMilestone, MilestoneNo: &no,
		ReferenceNo: "MS-002", Amount: d("30000"), DateOfPayment: time.Now(),
	})
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
}

func TestRejectPaymentHasNoSideEffects(t *testing.T) {
	service, db, _ := newTestService(t)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)
	project, client := makeProject(t, db, Models.ProjectOngoing, Models.PaymentPaidDownpayment)
	require.NoError(t, db.Model(&project).Update("remaining_balance", d("85000")).Error)
	db.Create(&Models.Payment{ProjectID: project.ID, UserID: client.ID,
		Category: Models.CategoryDownpayment, ReferenceNo: "DP-001",
		Amount: d("85000"), DateOfPayment: time.Now(), Status: Models.ApprovalAccepted})

	_, err := service.CreateMilestone(accounting, project.ID, CreateMilestoneInput{
		Price: d("30000"), Description: "Rough-in",
		StartDate: time.Now(), EstimatedEnd: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	_, err = service.MarkMilestoneDone(accounting, project.ID, 1)
	require.NoError(t, err)

	no := 1
	payment, err := service.SubmitPayment(client, SubmitPaymentInput{
		ProjectID: project.ID, Category: Models.CategoryMilestone, MilestoneNo: &no,
		ReferenceNo: "MS-001", Amount: d("30000"), DateOfPayment: time.Now(),
	})
	require.NoError(t, err)

	rejected, err := service.RejectPayment(accounting, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, Models.ApprovalRejected, rejected.Status)

	// Balance and billing untouched; the cycle returns to progress billing
	reloaded := reloadProject(t, db, project.ID)
	assert.True(t, reloaded.RemainingBalance.Equal(d("85000")))
	assert.Equal(t, Models.PaymentProgressBilling, reloaded.PaymentStatus)
	var milestone Models.ProjectMilestone
	require.NoError(t, db.Where("project_id = ? AND milestone_no = ?", project.ID, 1).First(&milestone).Error)
	assert.Equal(t, Models.BillingUnpaid, milestone.BillingStatus)

	// A reviewed payment is immutable
	_, err = service.AcceptPayment(accounting, payment.ID)
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
	_, err = service.RejectPayment(accounting, payment.ID)
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
}

func TestMilestoneNumbering(t *testing.T) {
	service, db, _ := newTestService(t)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)
	project, _ := makeProject(t, db, Models.ProjectSetMilestone, Models.PaymentNotAvailable)

	for want := 1; want <= 3; want++ {
		milestone, err := service.CreateMilestone(accounting, project.ID, CreateMilestoneInput{
			Price: d("10000"), Description: "Phase",
			StartDate: time.Now(), EstimatedEnd: time.Now().AddDate(0, 1, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, want, milestone.MilestoneNo)
	}

	// Input validation
	_, err := service.CreateMilestone(accounting, project.ID, CreateMilestoneInput{
		Price: d("0"), Description: "Phase",
		StartDate: time.Now(), EstimatedEnd: time.Now().AddDate(0, 1, 0),
	})
	assert.Equal(t, KindIncompleteInput, KindOf(err))
	_, err = service.CreateMilestone(accounting, project.ID, CreateMilestoneInput{
		Price: d("10000"), Description: "Phase",
		StartDate: time.Now().AddDate(0, 2, 0), EstimatedEnd: time.Now(),
	})
	assert.Equal(t, KindIncompleteInput, KindOf(err))

	// No milestones before the contract exists
	early, _ := makeProject(t, db, Models.ProjectWaitingContract, Models.PaymentNotAvailable)
	_, err = service.CreateMilestone(accounting, early.ID, CreateMilestoneInput{
		Price: d("10000"), Description: "Phase",
		StartDate: time.Now(), EstimatedEnd: time.Now().AddDate(0, 1, 0),
	})
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestBillingOverdraft(t *testing.T) {
	service, db, _ := newTestService(t)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)
	project, _ := makeProject(t, db, Models.ProjectOngoing, Models.PaymentPaidDownpayment)
	require.NoError(t, db.Model(&project).Update("remaining_balance", d("20000")).Error)

	_, err := service.CreateMilestone(accounting, project.ID, CreateMilestoneInput{
		Price: d("30000"), Description: "Rough-in",
		StartDate: time.Now(), EstimatedEnd: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	_, err = service.MarkMilestoneDone(accounting, project.ID, 1)
	require.NoError(t, err)

	_, err = service.MarkMilestoneBillingPaid(accounting, project.ID, 1, d("30000"))
	assert.Equal(t, KindInconsistentBalance, KindOf(err))

	// Nothing was committed
	var milestone Models.ProjectMilestone
	require.NoError(t, db.Where("project_id = ? AND milestone_no = ?", project.ID, 1).First(&milestone).Error)
	assert.Equal(t, Models.BillingUnpaid, milestone.BillingStatus)
	assert.True(t, reloadProject(t, db, project.ID).RemainingBalance.Equal(d("20000")))
}

func TestUpdateBalanceMismatch(t *testing.T) {
	service, db, _ := newTestService(t)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)
	project, _ := makeProject(t, db, Models.ProjectOngoing, Models.PaymentPaidDownpayment)

	// 170000 - 85000 != 80000
	_, err := service.UpdateBalance(accounting, project.ID, d("80000"), d("85000"), Models.CategoryDownpayment, nil)
	assert.Equal(t, KindInconsistentBalance, KindOf(err))
	assert.True(t, reloadProject(t, db, project.ID).RemainingBalance.Equal(d("170000")))

	_, err = service.UpdateBalance(accounting, project.ID, d("170000"), d("0"), Models.CategoryOthers, nil)
	assert.Equal(t, KindIncompleteInput, KindOf(err))
}

func TestTerminationFreezesPayments(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)
	project, client := makeProject(t, db, Models.ProjectOngoing, Models.PaymentPaidDownpayment)

	terminated, err := service.AdvanceProjectStatus(admin, project.ID, Models.ProjectTerminated)
	require.NoError(t, err)
	assert.Equal(t, Models.PaymentNotAvailable, terminated.PaymentStatus)

	_, err = service.SubmitPayment(client, SubmitPaymentInput{
		ProjectID: project.ID, Category: Models.CategoryOthers,
		ReferenceNo: "X-001", Amount: d("1000"), DateOfPayment: time.Now(),
	})
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	_, err = service.AdvanceProjectStatus(admin, project.ID, Models.ProjectOngoing)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)
	accounting := makeUser(t, db, "accounting", Models.PermissionAccounting)

	supplier := Models.Supplier{Name: "PyroSafe Supplies"}
	require.NoError(t, db.Create(&supplier).Error)
	po := Models.PurchaseOrder{
		SupplierID: supplier.ID,
		CreatedBy:  accounting.ID,
		Status:     Models.POForApproval,
		Total:      d("10000"),
	}
	require.NoError(t, db.Create(&po).Error)

	// No payments before approval
	_, err := service.RecordPurchaseOrderPayment(accounting, po.ID, d("4000"), "SP-001", time.Now())
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	approved, err := service.ApprovePurchaseOrder(admin, po.ID)
	require.NoError(t, err)
	assert.Equal(t, Models.POApproved, approved.Status)

	// Approval is not repeatable
	_, err = service.ApprovePurchaseOrder(admin, po.ID)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	sent, err := service.MarkPurchaseOrderSent(accounting, po.ID)
	require.NoError(t, err)
	assert.Equal(t, Models.POSent, sent.Status)

	partial, err := service.RecordPurchaseOrderPayment(accounting, po.ID, d("4000"), "SP-001", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Models.POPartiallyPaid, partial.Status)

	full, err := service.RecordPurchaseOrderPayment(accounting, po.ID, d("6000"), "SP-002", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Models.POFullyPaid, full.Status)

	_, err = service.RecordPurchaseOrderPayment(accounting, po.ID, d("1"), "SP-003", time.Now())
	assert.Equal(t, KindAlreadyProcessed, KindOf(err))
}

func TestWorkflowMutationsAreLogged(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := makeUser(t, db, "admin", Models.PermissionAdmin)
	client := makeUser(t, db, "client", Models.PermissionClient)

	quotation := Models.Quotation{
		UserID: client.ID, BuildingName: "B", ServiceType: "S",
		Status: Models.QuotationForApproval, TotalPayment: d("170000"),
	}
	require.NoError(t, db.Create(&quotation).Error)
	project, err := service.ApproveQuotation(admin, quotation.ID, "")
	require.NoError(t, err)

	var logs []Models.ActivityLog
	require.NoError(t, db.Where("action = ?", "quotation.approve").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, admin.ID, logs[0].UserID)
	assert.Equal(t, quotation.ID, logs[0].EntityID)

	// Refused operations leave no trail
	_, err = service.AdvanceProjectStatus(admin, project.ID, Models.ProjectOngoing)
	require.Error(t, err)
	var count int64
	db.Model(&Models.ActivityLog{}).Where("action = ?", "project.status").Count(&count)
	assert.EqualValues(t, 0, count)
}
