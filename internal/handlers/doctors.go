package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// DoctorHandler handles the doctor API
type DoctorHandler struct {
	store storage.Store
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(store storage.Store) *DoctorHandler {
	return &DoctorHandler{store: store}
}

// ListDoctors returns the doctors visible to the caller
func (h *DoctorHandler) ListDoctors(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctors := make([]*models.Doctor, 0)
	for _, id := range policy.AccessibleDoctorIDs() {
		doctor, err := h.store.GetDoctor(id)
		if err != nil {
			continue
		}
		doctors = append(doctors, doctor)
	}

	return c.JSON(fiber.Map{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor retrieves one doctor
func (h *DoctorHandler) GetDoctor(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if !policy.CanAccessDoctor(id) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this doctor"})
	}

	doctor, err := h.store.GetDoctor(id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(doctor)
}
