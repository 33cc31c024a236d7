package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/middleware"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetMyNotifications lists the logged-in user's notifications, newest first.
// GET /api/notifications?unread=true
func (nc *NotificationController) GetMyNotifications(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	query := nc.DB.Where("user_id = ?", user.ID).Order("id DESC").Limit(100)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}
	var notifications []Models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve notifications"})
	}
	return c.JSON(notifications)
}

// MarkRead flags one of the user's notifications as read.
// PATCH /api/notifications/:id/read
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}
	user, _ := middleware.CurrentUser(c)
	var notification Models.Notification
	if err := nc.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	notification.Read = true
	if err := nc.DB.Save(&notification).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	return c.JSON(notification)
}

// MarkAllRead flags all of the user's notifications as read.
// PATCH /api/notifications/read-all
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	err := nc.DB.Model(&Models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Update("read", true).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}
	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}
