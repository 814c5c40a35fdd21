package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/middleware"
	"mintlite/internal/service/transaction"
)

type TransactionHandler struct {
	txnService transaction.Service
}

func NewTransactionHandler(txnService transaction.Service) *TransactionHandler {
	return &TransactionHandler{txnService: txnService}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.txnService.Create(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *TransactionHandler) ListByBudget(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not authenticated")
	}

	budgetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid budget ID")
	}

	params := getPaginationParams(c)

	result, err := h.txnService.ListByBudget(c.Context(), userID, budgetID, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
