package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FireGuard/Models"
)

type CarouselController struct {
	DB *gorm.DB
}

func NewCarouselController(db *gorm.DB) *CarouselController {
	return &CarouselController{DB: db}
}

// GetCarousel lists active entries in display order. Public.
func (cc *CarouselController) GetCarousel(c *fiber.Ctx) error {
	var entries []Models.CarouselEntry
	err := cc.DB.Where("active = ?", true).Order("sort_order, id").Find(&entries).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve carousel"})
	}
	return c.JSON(entries)
}

// CreateEntry stores a new carousel image (admin). Multipart: image, title,
// caption, sort_order.
func (cc *CarouselController) CreateEntry(c *fiber.Ctx) error {
	name, err := saveUploadedFile(c, "image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Carousel image is required"})
	}
	sortOrder, _ := strconv.Atoi(c.FormValue("sort_order"))
	entry := Models.CarouselEntry{
		Title:         c.FormValue("title"),
		Caption:       c.FormValue("caption"),
		ImageFileName: name,
		SortOrder:     sortOrder,
		Active:        true,
	}
	if err := cc.DB.Create(&entry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create carousel entry"})
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

type UpdateCarouselRequest struct {
	Title     string `json:"title"`
	Caption   string `json:"caption"`
	SortOrder *int   `json:"sort_order"`
	Active    *bool  `json:"active"`
}

func (cc *CarouselController) UpdateEntry(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid carousel entry ID"})
	}
	var entry Models.CarouselEntry
	if err := cc.DB.First(&entry, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Carousel entry not found"})
	}
	var req UpdateCarouselRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title != "" {
		entry.Title = req.Title
	}
	if req.Caption != "" {
		entry.Caption = req.Caption
	}
	if req.SortOrder != nil {
		entry.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		entry.Active = *req.Active
	}
	if err := cc.DB.Save(&entry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update carousel entry"})
	}
	return c.JSON(entry)
}

func (cc *CarouselController) DeleteEntry(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid carousel entry ID"})
	}
	if err := cc.DB.Delete(&Models.CarouselEntry{}, id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete carousel entry"})
	}
	return c.JSON(fiber.Map{"message": "Carousel entry deleted"})
}
