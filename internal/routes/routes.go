package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/config"
	"github.com/caiotravain/consultorio/internal/handlers"
	"github.com/caiotravain/consultorio/internal/middleware"
	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, cfg *config.Config, booking *services.BookingService, schedule *services.ScheduleService, conversation *services.ConversationService) {
	authHandler := handlers.NewAuthHandler(store, cfg)
	whatsappHandler := handlers.NewWhatsAppHandler(conversation, cfg.WhatsApp.VerifyToken)
	appointmentHandler := handlers.NewAppointmentHandler(store, booking, schedule)
	patientHandler := handlers.NewPatientHandler(store)
	doctorHandler := handlers.NewDoctorHandler(store)
	financeHandler := handlers.NewFinanceHandler(store)
	recordHandler := handlers.NewMedicalRecordHandler(store)
	prescriptionHandler := handlers.NewPrescriptionHandler(store)
	waitlistHandler := handlers.NewWaitlistHandler(store, booking)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Consultório backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"api":     "/api",
				"webhook": "/webhook/whatsapp",
			},
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"version":  "1.0.0",
			"whatsapp": cfg.WhatsAppConfigured(),
			"sms":      cfg.SMSConfigured(),
		})
	})

	// ========== PUBLIC ROUTES ==========
	app.Post("/api/auth/login", authHandler.Login)

	webhooks := app.Group("/webhook")
	webhooks.Get("/whatsapp", whatsappHandler.VerifyWebhook)
	webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)

	// ========== AUTHENTICATED API ==========
	api := app.Group("/api", middleware.Protected(cfg))

	doctors := api.Group("/doctors")
	doctors.Get("/", doctorHandler.ListDoctors)
	doctors.Get("/:id", doctorHandler.GetDoctor)

	patients := api.Group("/patients")
	patients.Post("/", patientHandler.CreatePatient)
	patients.Get("/", patientHandler.ListPatients)
	patients.Get("/:id", patientHandler.GetPatient)
	patients.Put("/:id", patientHandler.UpdatePatient)
	patients.Get("/:patientID/records", recordHandler.ListRecords)

	appointments := api.Group("/appointments")
	appointments.Post("/", appointmentHandler.CreateAppointment)
	appointments.Get("/", appointmentHandler.ListAppointments)
	appointments.Get("/agenda", appointmentHandler.GetAgenda)
	appointments.Get("/slots", appointmentHandler.GetAvailableSlots)
	appointments.Get("/:id", appointmentHandler.GetAppointment)
	appointments.Post("/:id/cancel", appointmentHandler.CancelAppointment)
	appointments.Post("/:id/complete", appointmentHandler.CompleteAppointment)
	appointments.Post("/:id/reschedule", appointmentHandler.RescheduleAppointment)

	records := api.Group("/records", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor))
	records.Post("/", recordHandler.CreateRecord)

	prescriptions := api.Group("/prescriptions", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor))
	prescriptions.Post("/", prescriptionHandler.CreatePrescription)
	prescriptions.Get("/", prescriptionHandler.ListPrescriptions)
	prescriptions.Get("/:id", prescriptionHandler.GetPrescription)

	finance := api.Group("/finance", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor))
	finance.Post("/incomes", financeHandler.CreateIncome)
	finance.Get("/incomes", financeHandler.ListIncomes)
	finance.Post("/expenses", financeHandler.CreateExpense)
	finance.Get("/expenses", financeHandler.ListExpenses)
	finance.Get("/summary", financeHandler.GetSummary)

	waitlist := api.Group("/waitlist")
	waitlist.Post("/", waitlistHandler.CreateEntry)
	waitlist.Get("/", waitlistHandler.ListEntries)
	waitlist.Delete("/:id", waitlistHandler.RemoveEntry)
	waitlist.Post("/:id/promote", waitlistHandler.PromoteEntry)
}
