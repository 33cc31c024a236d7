package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/Workflow"
	"FireGuard/middleware"
)

type MilestoneController struct {
	DB      *gorm.DB
	Service *Workflow.Service
}

func NewMilestoneController(db *gorm.DB, service *Workflow.Service) *MilestoneController {
	return &MilestoneController{DB: db, Service: service}
}

type CreateMilestoneRequest struct {
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description" validate:"required"`
	StartDate    string          `json:"start_date" validate:"required"`
	EstimatedEnd string          `json:"estimated_end" validate:"required"`
}

// CreateMilestone adds a progress-billing milestone to a project; the
// milestone number is assigned by the workflow core.
// POST /api/projects/:id/milestones
func (mc *MilestoneController) CreateMilestone(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var req CreateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD"})
	}
	estimatedEnd, err := time.Parse("2006-01-02", req.EstimatedEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid estimated_end format. Use YYYY-MM-DD"})
	}

	user, _ := middleware.CurrentUser(c)
	milestone, wErr := mc.Service.CreateMilestone(user, uint(projectID), Workflow.CreateMilestoneInput{
		Price:        req.Price,
		Description:  req.Description,
		StartDate:    startDate,
		EstimatedEnd: estimatedEnd,
	})
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.Status(fiber.StatusCreated).JSON(milestone)
}

// GetProjectMilestones lists a project's milestones in numbering order.
// GET /api/projects/:id/milestones
func (mc *MilestoneController) GetProjectMilestones(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var project Models.Project
	if err := mc.DB.First(&project, projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	user, _ := middleware.CurrentUser(c)
	if user.Permission < Models.PermissionAccounting && project.UserID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You do not have permission to access this page"})
	}

	var milestones []Models.ProjectMilestone
	err = mc.DB.Where("project_id = ?", projectID).Order("milestone_no").Find(&milestones).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve milestones"})
	}
	return c.JSON(milestones)
}

type UpdateMilestoneStatusRequest struct {
	MilestoneStatus Models.MilestoneStatus `json:"milestone_status" validate:"required"`
}

// UpdateMilestoneStatus marks a milestone's work DONE (the only allowed change).
// PATCH /api/projects/:id/milestones/:no/status
func (mc *MilestoneController) UpdateMilestoneStatus(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	milestoneNo, err := strconv.Atoi(c.Params("no"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid milestone number"})
	}
	var req UpdateMilestoneStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MilestoneStatus != Models.MilestoneDone {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Milestone status can only move to DONE"})
	}

	user, _ := middleware.CurrentUser(c)
	milestone, wErr := mc.Service.MarkMilestoneDone(user, uint(projectID), milestoneNo)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(milestone)
}

type UpdateBillingStatusRequest struct {
	BillingStatus Models.BillingStatus `json:"billing_status" validate:"required"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
}

// UpdateMilestoneBillingStatus settles a DONE milestone's billing and
// decrements the project's remaining balance in the same transaction.
// PATCH /api/projects/:id/milestones/:no/billing
func (mc *MilestoneController) UpdateMilestoneBillingStatus(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	milestoneNo, err := strconv.Atoi(c.Params("no"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid milestone number"})
	}
	var req UpdateBillingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.BillingStatus != Models.BillingPaid {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Billing status can only move to PAID"})
	}
	if !req.PaidAmount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Paid amount must be greater than zero"})
	}

	user, _ := middleware.CurrentUser(c)
	milestone, wErr := mc.Service.MarkMilestoneBillingPaid(user, uint(projectID), milestoneNo, req.PaidAmount)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(milestone)
}
