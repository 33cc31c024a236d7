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

type PurchaseOrderController struct {
	DB      *gorm.DB
	Service *Workflow.Service
}

func NewPurchaseOrderController(db *gorm.DB, service *Workflow.Service) *PurchaseOrderController {
	return &PurchaseOrderController{DB: db, Service: service}
}

// ---------------------------------------------------------------------------
// Suppliers

type SupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

func (po *PurchaseOrderController) GetSuppliers(c *fiber.Ctx) error {
	var suppliers []Models.Supplier
	if err := po.DB.Order("name").Find(&suppliers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve suppliers"})
	}
	return c.JSON(suppliers)
}

func (po *PurchaseOrderController) CreateSupplier(c *fiber.Ctx) error {
	var req SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}
	supplier := Models.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	if err := po.DB.Create(&supplier).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Supplier already exists"})
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

func (po *PurchaseOrderController) UpdateSupplier(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}
	var supplier Models.Supplier
	if err := po.DB.First(&supplier, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Supplier not found"})
	}
	var req SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name != "" {
		supplier.Name = req.Name
	}
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	if err := po.DB.Save(&supplier).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update supplier"})
	}
	return c.JSON(supplier)
}

// ---------------------------------------------------------------------------
// Purchase orders

type PurchaseOrderItemRequest struct {
	Name      string          `json:"name" validate:"required"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID uint                       `json:"supplier_id" validate:"required"`
	ProjectID  *uint                      `json:"project_id"`
	DateNeeded string                     `json:"date_needed"`
	Remarks    string                     `json:"remarks"`
	Items      []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseOrder records a PO with its line items; the total is computed
// from the items, never taken from the client.
func (po *PurchaseOrderController) CreatePurchaseOrder(c *fiber.Ctx) error {
	var req CreatePurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	var supplier Models.Supplier
	if err := po.DB.First(&supplier, req.SupplierID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Supplier not found"})
	}

	var dateNeeded time.Time
	if req.DateNeeded != "" {
		var err error
		dateNeeded, err = time.Parse("2006-01-02", req.DateNeeded)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_needed format. Use YYYY-MM-DD"})
		}
	}

	user, _ := middleware.CurrentUser(c)
	order := Models.PurchaseOrder{
		SupplierID: req.SupplierID,
		ProjectID:  req.ProjectID,
		CreatedBy:  user.ID,
		Status:     Models.POForApproval,
		DateNeeded: dateNeeded,
		Remarks:    req.Remarks,
	}
	total := decimal.Zero
	for _, item := range req.Items {
		if !item.UnitPrice.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Item unit price must be greater than zero"})
		}
		amount := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, Models.PurchaseOrderItem{
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    amount,
		})
		total = total.Add(amount)
	}
	order.Total = total

	if err := po.DB.Create(&order).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create purchase order"})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetPurchaseOrders lists POs, optionally filtered by status or supplier.
func (po *PurchaseOrderController) GetPurchaseOrders(c *fiber.Ctx) error {
	query := po.DB.Preload("Supplier").Preload("Items").Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if supplierID := c.Query("supplier_id"); supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	var orders []Models.PurchaseOrder
	if err := query.Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve purchase orders"})
	}
	return c.JSON(orders)
}

func (po *PurchaseOrderController) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	var order Models.PurchaseOrder
	err = po.DB.Preload("Supplier").Preload("Items").Preload("Payments").First(&order, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Purchase order not found"})
	}
	return c.JSON(order)
}

// ApprovePurchaseOrder moves FOR_APPROVAL -> APPROVED (admin).
// PATCH /api/purchase-orders/:id/approve
func (po *PurchaseOrderController) ApprovePurchaseOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	user, _ := middleware.CurrentUser(c)
	order, wErr := po.Service.ApprovePurchaseOrder(user, uint(id))
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(order)
}

// MarkPurchaseOrderSent moves APPROVED -> PO_SENT.
// PATCH /api/purchase-orders/:id/sent
func (po *PurchaseOrderController) MarkPurchaseOrderSent(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	user, _ := middleware.CurrentUser(c)
	order, wErr := po.Service.MarkPurchaseOrderSent(user, uint(id))
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.JSON(order)
}

type RecordPOPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	ReferenceNo   string          `json:"reference_no"`
	DateOfPayment string          `json:"date_of_payment" validate:"required"`
}

// RecordPayment adds a supplier payment; the PO status is recomputed from the
// cumulative paid sum inside the workflow transaction.
// POST /api/purchase-orders/:id/payments
func (po *PurchaseOrderController) RecordPayment(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	var req RecordPOPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}
	date, err := time.Parse("2006-01-02", req.DateOfPayment)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_of_payment format. Use YYYY-MM-DD"})
	}

	user, _ := middleware.CurrentUser(c)
	order, wErr := po.Service.RecordPurchaseOrderPayment(user, uint(id), req.Amount, req.ReferenceNo, date)
	if wErr != nil {
		return workflowError(c, wErr)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
