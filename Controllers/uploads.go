package Controllers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const uploadDir = "static/uploads"

// saveUploadedFile stores a multipart file under a uuid name and returns the
// stored filename.
func saveUploadedFile(c *fiber.Ctx, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", err
	}
	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveFile(file, filepath.Join(uploadDir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// saveImageWithThumb stores an uploaded image and a 300px-wide thumbnail.
// Non-image files fall back to a plain save with no thumbnail.
func saveImageWithThumb(c *fiber.Ctx, field string) (name, thumb string, err error) {
	name, err = saveUploadedFile(c, field)
	if err != nil {
		return "", "", err
	}

	src, imgErr := imaging.Open(filepath.Join(uploadDir, name))
	if imgErr != nil {
		return name, "", nil
	}
	resized := imaging.Resize(src, 300, 0, imaging.Lanczos)
	thumb = "thumb_" + name
	if imgErr := imaging.Save(resized, filepath.Join(uploadDir, thumb)); imgErr != nil {
		return name, "", nil
	}
	return name, thumb, nil
}

// UploadFile is the generic upload endpoint used for quotation attachments.
// POST /api/uploads (multipart field "file")
func UploadFile(c *fiber.Ctx) error {
	name, err := saveUploadedFile(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"file_name": name})
}
