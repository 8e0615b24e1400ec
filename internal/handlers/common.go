package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

var validate = validator.New()

// resolvePolicy loads the authenticated user and their access policy
// from the request locals set by the auth middleware
func resolvePolicy(c *fiber.Ctx, store storage.Store) (services.AccessPolicy, *models.User, error) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	user, err := store.GetUserByID(userID)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "User not found")
	}
	if !user.IsActive {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "Account is disabled")
	}

	policy, err := services.NewAccessPolicy(store, user)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "No profile for this account")
	}
	return policy, user, nil
}

// targetDoctorID picks the doctor a request operates on: the explicit
// doctor_id when provided, otherwise the caller's acting doctor
func targetDoctorID(c *fiber.Ctx, policy services.AccessPolicy, explicit string) (string, error) {
	doctorID := explicit
	if doctorID == "" {
		doctorID = policy.ActingDoctorID()
	}
	if doctorID == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "doctor_id is required")
	}
	if !policy.CanAccessDoctor(doctorID) {
		return "", fiber.NewError(fiber.StatusForbidden, "No access to this doctor")
	}
	return doctorID, nil
}

// storeError maps storage sentinel errors to HTTP responses
func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, storage.ErrSlotTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This slot is already booked"})
	case errors.Is(err, storage.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Record already exists"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
	}
}
