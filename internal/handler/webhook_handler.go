package handler

import (
	"github.com/gofiber/fiber/v2"

	"mintlite/internal/domain"
	"mintlite/internal/middleware"
	"mintlite/internal/service/notification"
)

type WebhookHandler struct {
	notifService notification.Service
}

func NewWebhookHandler(notifService notification.Service) *WebhookHandler {
	return &WebhookHandler{notifService: notifService}
}

// DeliveryFeedback ingests a provider's asynchronous delivery report.
// Signature verification happens in middleware before this runs.
func (h *WebhookHandler) DeliveryFeedback(c *fiber.Ctx) error {
	var input domain.DeliveryFeedbackInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.notifService.RecordDeliveryFeedback(c.Context(), input); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accepted": true,
	})
}
