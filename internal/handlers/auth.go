package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/config"
	"github.com/caiotravain/consultorio/internal/storage"
	"github.com/caiotravain/consultorio/internal/utils"
)

// AuthHandler handles staff authentication
type AuthHandler struct {
	store storage.Store
	cfg   *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

// Login validates credentials and issues an access token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Account is disabled",
		})
	}

	expiry := time.Duration(h.cfg.JWTExpirationMinutes) * time.Minute
	token, err := utils.GenerateToken(user, h.cfg.JWTSecret, expiry)
	if err != nil {
		log.Printf("❌ Failed to sign token for %s: %v", user.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}
