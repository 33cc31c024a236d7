package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FireGuard/Models"
)

type ActivityLogController struct {
	DB *gorm.DB
}

func NewActivityLogController(db *gorm.DB) *ActivityLogController {
	return &ActivityLogController{DB: db}
}

// LogsResponse represents the response structure for the activity log API
type LogsResponse struct {
	Logs       []Models.ActivityLog `json:"logs"`
	TotalLogs  int64                `json:"total_logs"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// GetLogs retrieves activity logs with pagination and date/entity filtering.
// GET /api/logs?page=1&page_size=50&entity=project&action=payment.accept&date_from=&date_to=
func (lc *ActivityLogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	query := lc.DB.Model(&Models.ActivityLog{})
	if entity := c.Query("entity"); entity != "" {
		query = query.Where("entity = ?", entity)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		parsed, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_from format. Use YYYY-MM-DD"})
		}
		query = query.Where("created_at >= ?", parsed)
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		parsed, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_to format. Use YYYY-MM-DD"})
		}
		// Include the whole day
		query = query.Where("created_at < ?", parsed.AddDate(0, 0, 1))
	}

	var total int64
	query.Count(&total)

	var logs []Models.ActivityLog
	err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve logs"})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return c.JSON(LogsResponse{
		Logs:       logs,
		TotalLogs:  total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetEntityLogs retrieves the audit trail of a single record.
// GET /api/logs/:entity/:id
func (lc *ActivityLogController) GetEntityLogs(c *fiber.Ctx) error {
	entity := c.Params("entity")
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity ID"})
	}
	var logs []Models.ActivityLog
	err = lc.DB.Where("entity = ? AND entity_id = ?", entity, id).Order("id").Find(&logs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve logs"})
	}
	return c.JSON(logs)
}
