package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/middleware"
	"mintlite/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	input.UserID = userID

	created, err := h.notifService.Create(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	filter := notificationFilterFromQuery(c)
	params := getPaginationParams(c)

	result, err := h.notifService.List(c.Context(), userID, filter, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetByID(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	notif, err := h.notifService.GetByID(c.Context(), userID, notifID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	notif, err := h.notifService.MarkRead(c.Context(), userID, notifID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	count, err := h.notifService.MarkAllRead(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"marked": count,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	count, err := h.notifService.UnreadCount(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) RegisterDevice(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.RegisterDeviceInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	device, err := h.notifService.RegisterDevice(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(device)
}

func (h *NotificationHandler) RemoveDevice(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	if err := h.notifService.RemoveDevice(c.Context(), userID, c.Params("token")); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func notificationFilterFromQuery(c *fiber.Ctx) domain.NotificationFilter {
	var filter domain.NotificationFilter

	if t := c.Query("type"); t != "" {
		nt := domain.NotificationType(t)
		filter.Type = &nt
	}
	if s := c.Query("status"); s != "" {
		st := domain.NotificationStatus(s)
		filter.Status = &st
	}
	if ch := c.Query("channel"); ch != "" {
		cc := domain.Channel(ch)
		filter.Channel = &cc
	}
	filter.UnreadOnly = c.Query("unread_only") == "true"

	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}
	return filter
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	params.Validate()
	return params
}
