package server

import (
	"pulseboard/internal/models"
	"pulseboard/internal/repository"
	"pulseboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListFeedback handles GET /api/feedback
// @Summary List feedback
// @Description Anonymous callers see items on public boards only. Supports
// @Description filtering, search and ordering.
// @Tags feedback
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param board_id query int false "Filter by board"
// @Param author_id query int false "Filter by author"
// @Param q query string false "Search over title, content and author username"
// @Param ordering query string false "created_at|updated_at|upvote_count|title, prefix with - for descending"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Feedback
// @Failure 400 {object} object{error=string}
// @Router /feedback [get]
func (s *Server) ListFeedback(c *fiber.Ctx) error {
	actor := s.optionalActor(c)
	p := parsePagination(c, 20)

	filter := repository.FeedbackFilter{
		Status:   models.FeedbackStatus(c.Query("status")),
		Priority: models.FeedbackPriority(c.Query("priority")),
		BoardID:  uint(c.QueryInt("board_id", 0)),
		AuthorID: uint(c.QueryInt("author_id", 0)),
		Query:    c.Query("q"),
		Ordering: c.Query("ordering"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	items, err := s.feedbackService.ListFeedback(c.Context(), actor, filter)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// GetFeedback handles GET /api/feedback/:id
// @Summary Feedback detail
// @Description Returns 404 when the item does not exist or its board is not
// @Description visible to the caller.
// @Tags feedback
// @Produce json
// @Param id path int true "Feedback ID"
// @Success 200 {object} models.Feedback
// @Failure 404 {object} object{error=string}
// @Router /feedback/{id} [get]
func (s *Server) GetFeedback(c *fiber.Ctx) error {
	actor := s.optionalActor(c)
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.feedbackService.GetFeedback(c.Context(), feedbackID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(item)
}

// CreateFeedback handles POST /api/feedback
// @Summary Submit feedback
// @Description The target board must be visible to the caller.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{board_id=int,title=string,content=string,priority=string,tag_ids=[]int} true "Feedback"
// @Success 201 {object} models.Feedback
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /feedback [post]
func (s *Server) CreateFeedback(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	var req struct {
		BoardID  uint                    `json:"board_id"`
		Title    string                  `json:"title"`
		Content  string                  `json:"content"`
		Priority models.FeedbackPriority `json:"priority"`
		TagIDs   []uint                  `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.BoardID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("board_id is required"))
	}

	item, err := s.feedbackService.CreateFeedback(c.Context(), service.CreateFeedbackInput{
		Actor:    actor,
		BoardID:  req.BoardID,
		Title:    req.Title,
		Content:  req.Content,
		Priority: req.Priority,
		TagIDs:   req.TagIDs,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateFeedback handles PATCH /api/feedback/:id
// @Summary Update feedback
// @Description Author, admin or moderator. Absent fields are left untouched;
// @Description tag_ids, when present, replaces the whole tag set.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body object{title=string,content=string,status=string,priority=string,tag_ids=[]int} true "Fields to change"
// @Success 200 {object} models.Feedback
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /feedback/{id} [patch]
func (s *Server) UpdateFeedback(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title    *string                  `json:"title"`
		Content  *string                  `json:"content"`
		Status   *models.FeedbackStatus   `json:"status"`
		Priority *models.FeedbackPriority `json:"priority"`
		TagIDs   *[]uint                  `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.feedbackService.UpdateFeedback(c.Context(), service.UpdateFeedbackInput{
		Actor:      actor,
		FeedbackID: feedbackID,
		Title:      req.Title,
		Content:    req.Content,
		Status:     req.Status,
		Priority:   req.Priority,
		TagIDs:     req.TagIDs,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(item)
}

// DeleteFeedback handles DELETE /api/feedback/:id
// @Summary Delete feedback
// @Description Author, admin or moderator. Removes comments and votes with it.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /feedback/{id} [delete]
func (s *Server) DeleteFeedback(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.feedbackService.DeleteFeedback(c.Context(), feedbackID, actor); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Feedback deleted"})
}

// VoteFeedback handles POST /api/feedback/:id/vote
// @Summary Toggle an upvote
// @Description Adds the caller's upvote, or removes it if already present.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} service.VoteResult
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /feedback/{id}/vote [post]
func (s *Server) VoteFeedback(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.feedbackService.ToggleVote(c.Context(), feedbackID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// GetFeedbackCounts handles GET /api/feedback/counts
// @Summary Feedback counts by status
// @Description Aggregated over the caller's visible subset.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.StatusCounts
// @Failure 401 {object} object{error=string}
// @Router /feedback/counts [get]
func (s *Server) GetFeedbackCounts(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	counts, err := s.feedbackService.Counts(c.Context(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(counts)
}

// GetTopVotedFeedback handles GET /api/feedback/top_voted
// @Summary Top voted feedback
// @Description The five most-upvoted visible items.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Feedback
// @Failure 401 {object} object{error=string}
// @Router /feedback/top_voted [get]
func (s *Server) GetTopVotedFeedback(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	items, err := s.feedbackService.TopVoted(c.Context(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// GetFeedbackTrends handles GET /api/feedback/trends
// @Summary Submission trends
// @Description Per-day submission counts over the trailing 30 days.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {array} repository.TrendPoint
// @Failure 401 {object} object{error=string}
// @Router /feedback/trends [get]
func (s *Server) GetFeedbackTrends(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	points, err := s.feedbackService.Trends(c.Context(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(points)
}
