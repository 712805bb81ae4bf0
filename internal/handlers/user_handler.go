package handlers

import (
	"errors"
	"fmt"
	"log"

	"lemari/internal/middleware"
	"lemari/internal/models"
	"lemari/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	identity *services.IdentityService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(identity *services.IdentityService) *UserHandler {
	return &UserHandler{
		identity: identity,
	}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)

	auth := middleware.RequireIdentity()
	userRoutes.Post("/logout", auth, h.HandleLogout)
	userRoutes.Get("/profile", auth, h.HandleGetProfile)
	userRoutes.Put("/profile", auth, h.HandleUpdateProfile)
	userRoutes.Patch("/profile", auth, h.HandleUpdateProfile)
	userRoutes.Get("/delete_account", auth, h.HandleGetAccount)
	userRoutes.Delete("/delete_account", auth, h.HandleDeleteAccount)
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := h.identity.Register(req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return writeError(c, err, "")
		}
		log.Printf("Error registering user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("User %s has been created successfully", user.Username),
	})
}

// HandleLogin checks credentials and returns the caller's session token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	_, token, err := h.identity.Login(req)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return writeError(c, err, "Could not log in")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token.Key,
	})
}

// HandleLogout revokes the caller's session token.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.identity.Revoke(middleware.CurrentUser(c)); err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Token does not exist",
			})
		}
		return writeError(c, err, "Could not log out")
	}
	return c.JSON(fiber.Map{
		"message": "You have successfully logged out",
	})
}

func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.identity.Profile(middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "Could not retrieve profile")
	}
	return c.JSON(profileView(user))
}

// HandleUpdateProfile serves both PUT and PATCH on the profile.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	partial := c.Method() == fiber.MethodPatch
	user, err := h.identity.UpdateProfile(middleware.CurrentUser(c), req, partial)
	if err != nil {
		return writeError(c, err, "Could not update profile")
	}
	return c.JSON(profileView(user))
}

// HandleGetAccount shows which account a DELETE on the same route removes.
func (h *UserHandler) HandleGetAccount(c *fiber.Ctx) error {
	user, err := h.identity.Profile(middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "Could not retrieve account")
	}
	return c.JSON(fiber.Map{
		"username": user.Username,
	})
}

// HandleDeleteAccount deletes the caller with everything the caller owns.
func (h *UserHandler) HandleDeleteAccount(c *fiber.Ctx) error {
	if err := h.identity.DeleteAccount(middleware.CurrentUser(c)); err != nil {
		return writeError(c, err, "Could not delete account")
	}
	return c.JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}

func profileView(u *models.User) fiber.Map {
	return fiber.Map{
		"username":        u.Username,
		"email":           u.Email,
		"country":         u.Country,
		"profile_picture": u.ProfilePicture,
	}
}
