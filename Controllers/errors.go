package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"FireGuard/Workflow"
)

// workflowError maps the workflow error taxonomy onto HTTP statuses. Guard
// violations commit nothing, so these are safe to surface as-is.
func workflowError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch Workflow.KindOf(err) {
	case Workflow.KindNotFound:
		status = fiber.StatusNotFound
	case Workflow.KindIncompleteInput:
		status = fiber.StatusBadRequest
	case Workflow.KindInvalidTransition,
		Workflow.KindAlreadyProcessed,
		Workflow.KindInconsistentBalance:
		status = fiber.StatusConflict
	}
	if kind := Workflow.KindOf(err); kind != "" {
		return c.Status(status).JSON(fiber.Map{
			"kind":  kind,
			"error": err.Error(),
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
}
