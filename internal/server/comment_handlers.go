package server

import (
	"pulseboard/internal/models"
	"pulseboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/comments?feedback_id=
// @Summary List comments on a feedback item
// @Description Anonymous callers can read comments on public boards.
// @Tags comments
// @Produce json
// @Param feedback_id query int true "Feedback ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Comment
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	actor := s.optionalActor(c)

	feedbackID := c.QueryInt("feedback_id", 0)
	if feedbackID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("feedback_id is required"))
	}
	p := parsePagination(c, 50)

	comments, err := s.commentService.ListComments(c.Context(), uint(feedbackID), actor, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/comments/:id
// @Summary Comment detail
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 404 {object} object{error=string}
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	actor := s.optionalActor(c)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.Context(), commentID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/comments
// @Summary Comment on a feedback item
// @Description The item's board must be visible to the caller.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{feedback_id=int,content=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	var req struct {
		FeedbackID uint   `json:"feedback_id"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.FeedbackID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("feedback_id is required"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		Actor:      actor,
		FeedbackID: req.FeedbackID,
		Content:    req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH /api/comments/:id
// @Summary Edit a comment
// @Description Author, admin or moderator.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} models.Comment
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /comments/{id} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		Actor:     actor,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Description Author, admin or moderator.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), commentID, actor); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
