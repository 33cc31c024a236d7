package Controllers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/Slack"
	"FireGuard/Workflow"
	"FireGuard/middleware"
)

type QuotationController struct {
	DB      *gorm.DB
	Service *Workflow.Service
	Slack   *Slack.SlackClient
}

func NewQuotationController(db *gorm.DB, service *Workflow.Service, slack *Slack.SlackClient) *QuotationController {
	return &QuotationController{DB: db, Service: service, Slack: slack}
}

type CreateQuotationRequest struct {
	BuildingName    string   `json:"building_name" validate:"required"`
	BuildingAddress string   `json:"building_address" validate:"required"`
	ServiceType     string   `json:"service_type" validate:"required"`
	Remarks         string   `json:"remarks"`
	Attachments     []string `json:"attachments"`
}

// CreateQuotation receives a client's quotation request.
func (qc *QuotationController) CreateQuotation(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	var req CreateQuotationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	attachments, _ := json.Marshal(req.Attachments)
	quotation := Models.Quotation{
		UserID:          user.ID,
		BuildingName:    req.BuildingName,
		BuildingAddress: req.BuildingAddress,
		ServiceType:     req.ServiceType,
		Remarks:         req.Remarks,
		Attachments:     datatypes.JSON(attachments),
		Status:          Models.QuotationPending,
	}
	if err := qc.DB.Create(&quotation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quotation"})
	}

	qc.Slack.NotifyOps("New quotation #%d from %s (%s, %s)", quotation.ID, user.Name, req.BuildingName, req.ServiceType)
	return c.Status(fiber.StatusCreated).JSON(quotation)
}

// GetMyQuotations lists the logged-in client's quotations.
func (qc *QuotationController) GetMyQuotations(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var quotations []Models.Quotation
	if err := qc.DB.Where("user_id = ?", user.ID).Order("id DESC").Find(&quotations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve quotations"})
	}
	return c.JSON(quotations)
}

// GetQuotations lists all quotations, optionally filtered by status (staff).
func (qc *QuotationController) GetQuotations(c *fiber.Ctx) error {
	query := qc.DB.Preload("User").Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var quotations []Models.Quotation
	if err := query.Find(&quotations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve quotations"})
	}
	return c.JSON(quotations)
}

// GetQuotation retrieves a single quotation; clients only see their own.
func (qc *QuotationController) GetQuotation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}
	var quotation Models.Quotation
	if err := qc.DB.Preload("User").First(&quotation, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quotation not found"})
	}
	user, _ := middleware.CurrentUser(c)
	if user.Permission < Models.PermissionAccounting && quotation.UserID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You do not have permission to access this page"})
	}
	return c.JSON(quotation)
}

type CostingRequest struct {
	MaterialsCost    decimal.Decimal `json:"materials_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	RequirementsCost decimal.Decimal `json:"requirements_cost"`
}

// SubmitCosting records accounting's cost estimate and snapshots the computed
// totals onto the quotation, moving it to FOR_APPROVAL.
func (qc *QuotationController) SubmitCosting(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}

	var req CostingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !req.MaterialsCost.IsPositive() || !req.LaborCost.IsPositive() || !req.RequirementsCost.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "All cost components must be greater than zero"})
	}

	var quotation Models.Quotation
	if err := qc.DB.First(&quotation, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quotation not found"})
	}
	if quotation.Status != Models.QuotationPending && quotation.Status != Models.QuotationForApproval {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quotation costing can no longer be changed"})
	}

	user, _ := middleware.CurrentUser(c)
	totals := Workflow.QuotationTotals(req.MaterialsCost, req.LaborCost, req.RequirementsCost)

	quotation.MaterialsCost = req.MaterialsCost
	quotation.LaborCost = req.LaborCost
	quotation.RequirementsCost = req.RequirementsCost
	quotation.TotalPayment = totals.TotalPayment
	quotation.DownPayment = totals.DownPayment
	quotation.VAT = totals.VAT
	quotation.Subtotal = totals.Subtotal
	quotation.CostedBy = &user.ID
	quotation.Status = Models.QuotationForApproval

	if err := qc.DB.Save(&quotation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save costing"})
	}
	return c.JSON(quotation)
}

type ApproveQuotationRequest struct {
	ContractFileName string `json:"contract_file_name"`
}

// ApproveQuotation approves the quotation and converts it into a project.
func (qc *QuotationController) ApproveQuotation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}
	var req ApproveQuotationRequest
	c.BodyParser(&req)

	user, _ := middleware.CurrentUser(c)
	project, wErr := qc.Service.ApproveQuotation(user, uint(id), req.ContractFileName)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RejectQuotation turns the quotation down with a reason.
func (qc *QuotationController) RejectQuotation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}
	var req RejectQuotationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	user, _ := middleware.CurrentUser(c)
	quotation, wErr := qc.Service.RejectQuotation(user, uint(id), req.Reason)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(quotation)
}
