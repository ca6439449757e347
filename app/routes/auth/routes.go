package auth

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"

	"zawadi-college/app/database"
	"zawadi-college/app/models"
)

// userCache avoids a users lookup on every authenticated request.
var userCache = cache.New(5*time.Minute, 10*time.Minute)

// SetupAuthRoutes sets up login.
func SetupAuthRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/auth")
	api.Post("/login", func(c *fiber.Ctx) error { return Login(c, db) })
}

// Login checks credentials and issues a session token carrying the tenant.
func Login(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := database.GetUserByEmail(db, req.Email)
	if err != nil || !CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := GenerateJWT(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Middleware authenticates the request, resolves the tenant and stores both
// in the request locals. Handlers read the acting user via CurrentUser.
func Middleware(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing session token"})
		}

		claims, err := ParseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session token"})
		}

		var user *models.User
		if cached, ok := userCache.Get(claims.UserID); ok {
			user = cached.(*models.User)
		} else {
			user, err = database.GetUserByID(db, claims.UserID)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown session user"})
			}
			userCache.Set(claims.UserID, user, cache.DefaultExpiration)
		}

		c.Locals("user", user)
		c.Locals("institutionID", user.InstitutionID)
		return c.Next()
	}
}

// CurrentUser returns the authenticated account for this request.
func CurrentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

// InstitutionID returns the tenant the request is scoped to.
func InstitutionID(c *fiber.Ctx) string {
	return c.Locals("institutionID").(string)
}

// RequireAdmin rejects non-admin callers before the handler runs.
func RequireAdmin(c *fiber.Ctx) error {
	if CurrentUser(c).Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
	}
	return c.Next()
}
