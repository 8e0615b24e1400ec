package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

// AppointmentHandler handles the appointment API
type AppointmentHandler struct {
	store    storage.Store
	booking  *services.BookingService
	schedule *services.ScheduleService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(store storage.Store, booking *services.BookingService, schedule *services.ScheduleService) *AppointmentHandler {
	return &AppointmentHandler{
		store:    store,
		booking:  booking,
		schedule: schedule,
	}
}

// CreateAppointment books an appointment behind the conflict guard
func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		PatientID       string   `json:"patient_id" validate:"required"`
		DoctorID        string   `json:"doctor_id"`
		Date            string   `json:"date" validate:"required"`
		StartTime       string   `json:"start_time" validate:"required"`
		DurationMinutes int      `json:"duration_minutes"`
		Type            string   `json:"type"`
		PaymentType     string   `json:"payment_type"`
		Status          string   `json:"status"`
		Reason          string   `json:"reason"`
		Notes           string   `json:"notes"`
		Location        string   `json:"location"`
		Value           *float64 `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "patient_id, date and start_time are required"})
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

	appointment := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctorID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		PaymentType:     req.PaymentType,
		Status:          req.Status,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Location:        req.Location,
		Value:           req.Value,
	}
	if err := h.booking.Create(appointment); err != nil {
		if err == storage.ErrSlotTaken {
			return storeError(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetAppointment retrieves one appointment
func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	appointment, err := h.store.GetAppointment(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(appointment.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this appointment"})
	}
	return c.JSON(appointment)
}

// ListAppointments returns a doctor's appointments in a date range
func (h *AppointmentHandler) ListAppointments(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	appointments, err := h.store.GetAppointmentsByDoctorAndRange(doctorID, c.Query("from"), c.Query("to"))
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// GetAgenda returns a doctor's day with its stats
func (h *AppointmentHandler) GetAgenda(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	}

	appointments, err := h.store.GetAppointmentsByDoctorAndDate(doctorID, date)
	if err != nil {
		return storeError(c, err)
	}

	var completed, pending int
	var next string
	for _, a := range appointments {
		switch a.Status {
		case models.AppointmentCompleted:
			completed++
		case models.AppointmentScheduled, models.AppointmentConfirmed, models.AppointmentRescheduled:
			pending++
			if next == "" {
				next = a.StartTime
			}
		}
	}

	return c.JSON(fiber.Map{
		"date":         date,
		"appointments": appointments,
		"stats": fiber.Map{
			"total":            len(appointments),
			"completed":        completed,
			"pending":          pending,
			"next_appointment": next,
		},
	})
}

// GetAvailableSlots returns the free slot grid of a doctor's day
func (h *AppointmentHandler) GetAvailableSlots(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	date := c.Query("date")
	if date == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date is required"})
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	times, err := h.schedule.AvailableTimes(doctorID, date)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(fiber.Map{
		"date":  date,
		"slots": times,
	})
}

// CancelAppointment releases a slot; the reason may route to no_show
func (h *AppointmentHandler) CancelAppointment(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	appointment, err := h.store.GetAppointment(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(appointment.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this appointment"})
	}

	cancelled, err := h.booking.Cancel(appointment.ID, req.Reason)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(cancelled)
}

// CompleteAppointment marks an appointment as completed
func (h *AppointmentHandler) CompleteAppointment(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	appointment, err := h.store.GetAppointment(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(appointment.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this appointment"})
	}

	completed, err := h.booking.Complete(appointment.ID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(completed)
}

// RescheduleAppointment moves an appointment to a new slot
func (h *AppointmentHandler) RescheduleAppointment(c *fiber.Ctx) error {
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

	appointment, err := h.store.GetAppointment(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(appointment.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this appointment"})
	}

	rescheduled, err := h.booking.Reschedule(appointment.ID, req.Date, req.StartTime)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(rescheduled)
}
