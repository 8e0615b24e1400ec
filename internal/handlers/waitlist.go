package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

// WaitlistHandler handles the waiting list and its promotion into
// appointments
type WaitlistHandler struct {
	store   storage.Store
	booking *services.BookingService
}

// NewWaitlistHandler creates a new waiting list handler
func NewWaitlistHandler(store storage.Store, booking *services.BookingService) *WaitlistHandler {
	return &WaitlistHandler{store: store, booking: booking}
}

// CreateEntry queues a patient for the next free slot
func (h *WaitlistHandler) CreateEntry(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		PatientID       string `json:"patient_id" validate:"required"`
		DoctorID        string `json:"doctor_id"`
		PreferredPeriod string `json:"preferred_period" validate:"omitempty,oneof=morning afternoon any"`
		Priority        int    `json:"priority"`
		Notes           string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "patient_id is required"})
	}

	doctorID, err := targetDoctorID(c, policy, req.DoctorID)
	if err != nil {
		return err
	}

	patient, err := h.store.GetPatient(req.PatientID)
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(patient.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this patient"})
	}

	period := req.PreferredPeriod
	if period == "" {
		period = models.PeriodAny
	}

	entry := &models.WaitingListEntry{
		PatientID:       patient.ID,
		DoctorID:        doctorID,
		PreferredPeriod: period,
		Priority:        req.Priority,
		Status:          models.WaitlistWaiting,
		Notes:           req.Notes,
	}
	if err := h.store.CreateWaitingListEntry(entry); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ListEntries returns a doctor's waiting entries, highest priority
// first
func (h *WaitlistHandler) ListEntries(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	entries, err := h.store.GetWaitingListByDoctor(doctorID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// RemoveEntry takes an entry off the list without booking
func (h *WaitlistHandler) RemoveEntry(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	entry, err := h.store.GetWaitingListEntry(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(entry.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this entry"})
	}

	entry.Status = models.WaitlistRemoved
	if err := h.store.UpdateWaitingListEntry(entry); err != nil {
		return storeError(c, err)
	}
	return c.JSON(entry)
}

// PromoteEntry books an appointment for a waiting entry through the
// regular conflict guard and marks the entry scheduled
func (h *WaitlistHandler) PromoteEntry(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		Date      string `json:"date" validate:"required"`
		StartTime string `json:"start_time" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date and start_time are required"})
	}

	entry, err := h.store.GetWaitingListEntry(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(entry.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this entry"})
	}
	if entry.Status != models.WaitlistWaiting {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Entry is not waiting"})
	}

	appointment := &models.Appointment{
		PatientID: entry.PatientID,
		DoctorID:  entry.DoctorID,
		Date:      req.Date,
		StartTime: req.StartTime,
		Reason:    "Agendado pela lista de espera",
	}
	if err := h.booking.Create(appointment); err != nil {
		if err == storage.ErrSlotTaken {
			return storeError(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entry.Status = models.WaitlistScheduled
	entry.AppointmentID = appointment.ID
	if err := h.store.UpdateWaitingListEntry(entry); err != nil {
		return storeError(c, err)
	}

	return c.JSON(fiber.Map{
		"entry":       entry,
		"appointment": appointment,
	})
}
