package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/middleware"
	"mintlite/internal/service/budget"
)

type BudgetHandler struct {
	budgetService budget.Service
}

func NewBudgetHandler(budgetService budget.Service) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

func (h *BudgetHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateBudgetInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.budgetService.Create(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *BudgetHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	budgets, err := h.budgetService.List(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(budgets)
}

func (h *BudgetHandler) GetByID(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	budgetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid budget ID")
	}

	found, err := h.budgetService.GetByID(c.Context(), userID, budgetID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

// Status reports period spend, ratio, and the last alerted threshold. An
// optional at=RFC3339 query selects a past period.
func (h *BudgetHandler) Status(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	budgetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid budget ID")
	}

	at := time.Now().UTC()
	if q := c.Query("at"); q != "" {
		parsed, err := time.Parse(time.RFC3339, q)
		if err != nil {
			return middleware.BadRequest("Invalid at timestamp, want RFC3339")
		}
		at = parsed
	}

	status, err := h.budgetService.Status(c.Context(), userID, budgetID, at)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(status)
}
