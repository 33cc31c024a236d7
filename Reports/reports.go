package Reports

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"FireGuard/Models"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C0392B"}, Pattern: 1},
	})
}

// QuotationCostReport exports a quotation's cost breakdown as an xlsx sheet.
// GET /api/reports/quotations/:id
func (rc *ReportController) QuotationCostReport(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}
	var quotation Models.Quotation
	if err := rc.DB.Preload("User").First(&quotation, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quotation not found"})
	}

	f := excelize.NewFile()
	sheet := "Cost Breakdown"
	f.SetSheetName("Sheet1", sheet)

	style, err := headerStyle(f)
	if err == nil {
		f.SetCellStyle(sheet, "A1", "B1", style)
	}
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 20)

	f.SetSheetRow(sheet, "A1", &[]interface{}{"Quotation", fmt.Sprintf("#%d", quotation.ID)})
	rows := [][]interface{}{
		{"Client", quotation.User.Name},
		{"Building", quotation.BuildingName},
		{"Service Type", quotation.ServiceType},
		{"Status", string(quotation.Status)},
		{},
		{"Materials Cost", quotation.MaterialsCost.StringFixed(2)},
		{"Labor Cost", quotation.LaborCost.StringFixed(2)},
		{"Requirements Cost", quotation.RequirementsCost.StringFixed(2)},
		{"Total Payment", quotation.TotalPayment.StringFixed(2)},
		{"Downpayment (50%)", quotation.DownPayment.StringFixed(2)},
		{"VAT (12%)", quotation.VAT.StringFixed(2)},
		{"Subtotal", quotation.Subtotal.StringFixed(2)},
	}
	for i, row := range rows {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}
	c.Set("Content-Type", xlsxMime)
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quotation_%d.xlsx"`, quotation.ID))
	return c.Send(buf.Bytes())
}

// ProjectBillingReport exports a project's milestone and payment ledger.
// GET /api/reports/projects/:id
func (rc *ReportController) ProjectBillingReport(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	var project Models.Project
	err = rc.DB.Preload("User").Preload("Quotation").Preload("Milestones").First(&project, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	var payments []Models.Payment
	rc.DB.Where("project_id = ?", id).Order("id").Find(&payments)

	f := excelize.NewFile()
	sheet := "Billing"
	f.SetSheetName("Sheet1", sheet)
	style, sErr := headerStyle(f)

	f.SetColWidth(sheet, "A", "F", 22)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"Project", fmt.Sprintf("#%d", project.ID), project.User.Name})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"Project Status", string(project.ProjectStatus)})
	f.SetSheetRow(sheet, "A3", &[]interface{}{"Payment Status", string(project.PaymentStatus)})
	f.SetSheetRow(sheet, "A4", &[]interface{}{"Contract Price", project.Quotation.TotalPayment.StringFixed(2)})
	f.SetSheetRow(sheet, "A5", &[]interface{}{"Remaining Balance", project.RemainingBalance.StringFixed(2)})

	f.SetSheetRow(sheet, "A7", &[]interface{}{"Milestone", "Description", "Price", "Status", "Billing", "Estimated End"})
	if sErr == nil {
		f.SetCellStyle(sheet, "A7", "F7", style)
	}
	row := 8
	for _, m := range project.Milestones {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			m.MilestoneNo, m.Description, m.Price.StringFixed(2),
			string(m.MilestoneStatus), string(m.BillingStatus),
			m.EstimatedEnd.Format("2006-01-02"),
		})
		row++
	}

	row++
	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{"Payment Ref", "Category", "Amount", "Status", "Date"})
	if sErr == nil {
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), style)
	}
	row++
	for _, p := range payments {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			p.ReferenceNo, string(p.Category), p.Amount.StringFixed(2),
			string(p.Status), p.DateOfPayment.Format("2006-01-02"),
		})
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}
	c.Set("Content-Type", xlsxMime)
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="project_%d_billing.xlsx"`, project.ID))
	return c.Send(buf.Bytes())
}
