package server

import (
	"pulseboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags
// @Summary List tags
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Tag
// @Failure 401 {object} object{error=string}
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	tags, err := s.tagService.ListTags(c.Context(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(tags)
}

// CreateTag handles POST /api/tags
// @Summary Create a tag
// @Description Names are trimmed and lowercased; duplicates are rejected.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string} true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagService.CreateTag(c.Context(), req.Name, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// GetTag handles GET /api/tags/:id
// @Summary Tag detail
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} object{error=string}
// @Router /tags/{id} [get]
func (s *Server) GetTag(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	tagID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tag, err := s.tagService.GetTag(c.Context(), tagID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(tag)
}

// UpdateTag handles PATCH /api/tags/:id
// @Summary Rename a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Param request body object{name=string} true "New name"
// @Success 200 {object} models.Tag
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /tags/{id} [patch]
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	tagID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagService.RenameTag(c.Context(), tagID, req.Name, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(tag)
}

// DeleteTag handles DELETE /api/tags/:id
// @Summary Delete a tag
// @Description Detaches the tag from all feedback before removal.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /tags/{id} [delete]
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	tagID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.tagService.DeleteTag(c.Context(), tagID, actor); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted"})
}
