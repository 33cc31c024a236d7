package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/Workflow"
	"FireGuard/middleware"
)

type ProjectController struct {
	DB      *gorm.DB
	Service *Workflow.Service
}

func NewProjectController(db *gorm.DB, service *Workflow.Service) *ProjectController {
	return &ProjectController{DB: db, Service: service}
}

// GetMyProjects lists the logged-in client's projects with their milestones.
func (pc *ProjectController) GetMyProjects(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var projects []Models.Project
	err := pc.DB.Preload("Milestones").Preload("Quotation").
		Where("user_id = ?", user.ID).Order("id DESC").Find(&projects).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve projects"})
	}
	return c.JSON(projects)
}

// GetProjects lists all projects, optionally filtered by status (staff).
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	query := pc.DB.Preload("User").Preload("Milestones").Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("project_status = ?", status)
	}
	var projects []Models.Project
	if err := query.Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve projects"})
	}
	return c.JSON(projects)
}

// GetProject retrieves one project with milestones; clients only their own.
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var project Models.Project
	err = pc.DB.Preload("User").Preload("Quotation").Preload("Milestones").First(&project, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	user, _ := middleware.CurrentUser(c)
	if user.Permission < Models.PermissionAccounting && project.UserID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You do not have permission to access this page"})
	}
	return c.JSON(project)
}

type SetProjectStatusRequest struct {
	ProjectStatus Models.ProjectStatus `json:"project_status" validate:"required"`
}

// SetProjectStatus advances the project through its lifecycle.
// PATCH /api/projects/:id/status
func (pc *ProjectController) SetProjectStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var req SetProjectStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	user, _ := middleware.CurrentUser(c)
	project, wErr := pc.Service.AdvanceProjectStatus(user, uint(id), req.ProjectStatus)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(project)
}

type SetPaymentStatusRequest struct {
	PaymentStatus Models.PaymentStatus `json:"payment_status" validate:"required"`
}

// SetPaymentStatus applies a payment-cycle transition.
// PATCH /api/projects/:id/payment-status
func (pc *ProjectController) SetPaymentStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var req SetPaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	user, _ := middleware.CurrentUser(c)
	project, wErr := pc.Service.SetPaymentStatus(user, uint(id), req.PaymentStatus)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(project)
}

// UploadContract stores the contract file (staff) on a WAITING_CONTRACT project.
// POST /api/projects/:id/contract (multipart field "file")
func (pc *ProjectController) UploadContract(c *fiber.Ctx) error {
	return pc.attachContract(c, false)
}

// UploadSignedContract stores the client's signed contract while WAITING_SIGNATURE.
// POST /api/projects/:id/signed-contract (multipart field "file")
func (pc *ProjectController) UploadSignedContract(c *fiber.Ctx) error {
	return pc.attachContract(c, true)
}

func (pc *ProjectController) attachContract(c *fiber.Ctx, signed bool) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	user, _ := middleware.CurrentUser(c)

	if signed {
		// Clients may only sign their own contract
		var project Models.Project
		if err := pc.DB.First(&project, id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
		}
		if user.Permission < Models.PermissionAccounting && project.UserID != user.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You do not have permission to access this page"})
		}
	}

	name, err := saveUploadedFile(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	project, wErr := pc.Service.AttachContract(user, uint(id), name, signed)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(project)
}

type UpdateBalanceRequest struct {
	RemainingBalance decimal.Decimal        `json:"remaining_balance"`
	Amount           decimal.Decimal        `json:"amount"`
	Category         Models.PaymentCategory `json:"category" validate:"required"`
	MilestoneNo      *int                   `json:"milestone_no"`
}

// UpdateBalance applies an explicit balance deduction (accounting).
// PATCH /api/projects/:id/balance
func (pc *ProjectController) UpdateBalance(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var req UpdateBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	user, _ := middleware.CurrentUser(c)
	project, wErr := pc.Service.UpdateBalance(user, uint(id), req.RemainingBalance, req.Amount, req.Category, req.MilestoneNo)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(project)
}
