package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/Slack"
	"FireGuard/Workflow"
	"FireGuard/middleware"
)

type PaymentController struct {
	DB      *gorm.DB
	Service *Workflow.Service
	Slack   *Slack.SlackClient
}

func NewPaymentController(db *gorm.DB, service *Workflow.Service, slack *Slack.SlackClient) *PaymentController {
	return &PaymentController{DB: db, Service: service, Slack: slack}
}

// SubmitPayment receives a client's payment proof as multipart form data:
// project_id, category, milestone_no (for milestone payments), reference_no,
// amount, date_of_payment (YYYY-MM-DD) and the proof image in field "image".
// POST /api/payments
func (pay *PaymentController) SubmitPayment(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	projectID, err := strconv.Atoi(c.FormValue("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	amount, err := decimal.NewFromString(c.FormValue("amount"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}
	date, err := time.Parse("2006-01-02", c.FormValue("date_of_payment"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_of_payment format. Use YYYY-MM-DD"})
	}

	var milestoneNo *int
	if raw := c.FormValue("milestone_no"); raw != "" {
		no, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid milestone number"})
		}
		milestoneNo = &no
	}

	// Clients pay against their own projects only
	var project Models.Project
	if err := pay.DB.First(&project, projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	if project.UserID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You do not have permission to access this page"})
	}

	image, thumb, err := saveImageWithThumb(c, "image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment proof image is required"})
	}

	payment, wErr := pay.Service.SubmitPayment(user, Workflow.SubmitPaymentInput{
		ProjectID:     uint(projectID),
		Category:      Models.PaymentCategory(c.FormValue("category")),
		MilestoneNo:   milestoneNo,
		ReferenceNo:   c.FormValue("reference_no"),
		Amount:        amount,
		DateOfPayment: date,
		ImageFileName: image,
		ThumbFileName: thumb,
	})
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// GetProjectPayments lists a project's payments; clients only their own.
// GET /api/projects/:id/payments
func (pay *PaymentController) GetProjectPayments(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var project Models.Project
	if err := pay.DB.First(&project, projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	user, _ := middleware.CurrentUser(c)
	if user.Permission < Models.PermissionAccounting && project.UserID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You do not have permission to access this page"})
	}

	var payments []Models.Payment
	if err := pay.DB.Where("project_id = ?", projectID).Order("id DESC").Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}
	return c.JSON(payments)
}

// GetPendingPayments lists proofs awaiting accounting review.
// GET /api/payments/pending
func (pay *PaymentController) GetPendingPayments(c *fiber.Ctx) error {
	var payments []Models.Payment
	err := pay.DB.Preload("User").Preload("Project").
		Where("status = ?", Models.ApprovalPending).Order("id").Find(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}
	return c.JSON(payments)
}

// AcceptPayment verifies a pending payment proof.
// PATCH /api/payments/:id/accept
func (pay *PaymentController) AcceptPayment(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}
	user, _ := middleware.CurrentUser(c)
	payment, wErr := pay.Service.AcceptPayment(user, uint(id))
	if wErr != nil {
		return workflowError(c, wErr)
	}
	pay.Slack.NotifyOps("Payment #%d (%s, %s) accepted by %s",
		payment.ID, payment.Category, payment.Amount.StringFixed(2), user.Name)
	return c.JSON(payment)
}

// RejectPayment turns a pending payment proof down; the record becomes
// immutable and nothing else changes.
// PATCH /api/payments/:id/reject
func (pay *PaymentController) RejectPayment(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}
	user, _ := middleware.CurrentUser(c)
	payment, wErr := pay.Service.RejectPayment(user, uint(id))
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(payment)
}
