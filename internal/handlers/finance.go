package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// FinanceHandler handles income and expense tracking
type FinanceHandler struct {
	store storage.Store
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(store storage.Store) *FinanceHandler {
	return &FinanceHandler{store: store}
}

// CreateIncome records a manual income entry
func (h *FinanceHandler) CreateIncome(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		DoctorID      string  `json:"doctor_id"`
		Amount        float64 `json:"amount" validate:"required,gt=0"`
		Description   string  `json:"description"`
		Category      string  `json:"category"`
		Date          string  `json:"date" validate:"required"`
		PaymentMethod string  `json:"payment_method"`
		Notes         string  `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount and date are required"})
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	doctorID, err := targetDoctorID(c, policy, req.DoctorID)
	if err != nil {
		return err
	}

	income := &models.Income{
		DoctorID:      doctorID,
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      req.Category,
		Date:          req.Date,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if err := h.store.CreateIncome(income); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(income)
}

// ListIncomes returns a doctor's incomes in a date range
func (h *FinanceHandler) ListIncomes(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	incomes, err := h.store.GetIncomesByDoctorAndRange(doctorID, c.Query("from"), c.Query("to"))
	if err != nil {
		return storeError(c, err)
	}

	var total float64
	for _, income := range incomes {
		total += income.Amount
	}
	return c.JSON(fiber.Map{
		"incomes": incomes,
		"count":   len(incomes),
		"total":   total,
	})
}

// CreateExpense records an expense entry
func (h *FinanceHandler) CreateExpense(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		DoctorID      string  `json:"doctor_id"`
		Amount        float64 `json:"amount" validate:"required,gt=0"`
		Description   string  `json:"description" validate:"required"`
		Category      string  `json:"category"`
		Date          string  `json:"date" validate:"required"`
		ReceiptNumber string  `json:"receipt_number"`
		Vendor        string  `json:"vendor"`
		Notes         string  `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount, description and date are required"})
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	doctorID, err := targetDoctorID(c, policy, req.DoctorID)
	if err != nil {
		return err
	}

	expense := &models.Expense{
		DoctorID:      doctorID,
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      req.Category,
		Date:          req.Date,
		ReceiptNumber: req.ReceiptNumber,
		Vendor:        req.Vendor,
		Notes:         req.Notes,
	}
	if err := h.store.CreateExpense(expense); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(expense)
}

// ListExpenses returns a doctor's expenses in a date range
func (h *FinanceHandler) ListExpenses(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	expenses, err := h.store.GetExpensesByDoctorAndRange(doctorID, c.Query("from"), c.Query("to"))
	if err != nil {
		return storeError(c, err)
	}

	var total float64
	for _, expense := range expenses {
		total += expense.Amount
	}
	return c.JSON(fiber.Map{
		"expenses": expenses,
		"count":    len(expenses),
		"total":    total,
	})
}

// GetSummary returns a doctor's income/expense totals for a period
func (h *FinanceHandler) GetSummary(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}
	from, to := c.Query("from"), c.Query("to")

	incomes, err := h.store.GetIncomesByDoctorAndRange(doctorID, from, to)
	if err != nil {
		return storeError(c, err)
	}
	expenses, err := h.store.GetExpensesByDoctorAndRange(doctorID, from, to)
	if err != nil {
		return storeError(c, err)
	}

	var totalIncome, totalExpense float64
	for _, income := range incomes {
		totalIncome += income.Amount
	}
	for _, expense := range expenses {
		totalExpense += expense.Amount
	}

	return c.JSON(fiber.Map{
		"doctor_id":     doctorID,
		"from":          from,
		"to":            to,
		"total_income":  totalIncome,
		"total_expense": totalExpense,
		"net":           totalIncome - totalExpense,
	})
}
