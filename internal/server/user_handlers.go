package server

import (
	"pulseboard/internal/models"
	"pulseboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} object{error=string}
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.Context(), actor.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
// @Summary List users
// @Description List all users. Admin or moderator only.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.User
// @Failure 403 {object} object{error=string}
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), actor, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// UpdateUserRole handles PUT /api/users/:id/role
// @Summary Change a user's role
// @Description Assign admin, moderator or contributor. Admin only.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{role=string} true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /users/{id}/role [put]
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateRole(c.Context(), service.UpdateRoleInput{
		Actor:  actor,
		UserID: userID,
		Role:   req.Role,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
