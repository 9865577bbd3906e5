package server

import (
	"pulseboard/internal/models"
	"pulseboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBoards handles GET /api/boards
// @Summary List visible boards
// @Description List boards the caller can see: all for admin/moderator,
// @Description public plus memberships for contributors.
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Board
// @Failure 401 {object} object{error=string}
// @Router /boards [get]
func (s *Server) GetBoards(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	boards, err := s.boardService.ListBoards(c.Context(), actor, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(boards)
}

// CreateBoard handles POST /api/boards
// @Summary Create a board
// @Description Admin or moderator only.
// @Tags boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,description=string,visibility=string} true "Board"
// @Success 201 {object} models.Board
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /boards [post]
func (s *Server) CreateBoard(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Visibility  models.Visibility `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	board, err := s.boardService.CreateBoard(c.Context(), service.CreateBoardInput{
		Actor:       actor,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(board)
}

// GetBoard handles GET /api/boards/:id
// @Summary Board detail
// @Description Returns 404 when the board does not exist or is not visible
// @Description to the caller.
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {object} models.Board
// @Failure 404 {object} object{error=string}
// @Router /boards/{id} [get]
func (s *Server) GetBoard(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	board, err := s.boardService.GetBoard(c.Context(), boardID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(board)
}

// UpdateBoard handles PATCH /api/boards/:id
// @Summary Update a board
// @Description Admin or moderator only. Absent fields are left untouched.
// @Tags boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param request body object{name=string,description=string,visibility=string} true "Fields to change"
// @Success 200 {object} models.Board
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /boards/{id} [patch]
func (s *Server) UpdateBoard(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        *string            `json:"name"`
		Description *string            `json:"description"`
		Visibility  *models.Visibility `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	board, err := s.boardService.UpdateBoard(c.Context(), service.UpdateBoardInput{
		Actor:       actor,
		BoardID:     boardID,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(board)
}

// DeleteBoard handles DELETE /api/boards/:id
// @Summary Delete a board
// @Description Admin only. Removes the board's feedback, comments, votes and
// @Description memberships.
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /boards/{id} [delete]
func (s *Server) DeleteBoard(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.boardService.DeleteBoard(c.Context(), boardID, actor); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Board deleted"})
}

// JoinBoard handles POST /api/boards/:id/join
// @Summary Join a public board
// @Description Joining twice is a no-op. Private boards are invite-only.
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /boards/{id}/join [post]
func (s *Server) JoinBoard(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.boardService.Join(c.Context(), boardID, actor); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Joined board"})
}

// LeaveBoard handles POST /api/boards/:id/leave
// @Summary Leave a board
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /boards/{id}/leave [post]
func (s *Server) LeaveBoard(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.boardService.Leave(c.Context(), boardID, actor); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Left board"})
}

// AddBoardMember handles POST /api/boards/:id/members
// @Summary Add a member by username
// @Description Admin or moderator only. The only way into a private board.
// @Tags boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param request body object{username=string} true "Member to add"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /boards/{id}/members [post]
func (s *Server) AddBoardMember(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.boardService.AddMember(c.Context(), service.AddMemberInput{
		Actor:    actor,
		BoardID:  boardID,
		Username: req.Username,
	}); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member added"})
}

// GetBoardMembers handles GET /api/boards/:id/members
// @Summary List board members
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {array} models.User
// @Failure 404 {object} object{error=string}
// @Router /boards/{id}/members [get]
func (s *Server) GetBoardMembers(c *fiber.Ctx) error {
	actor, err := s.requireActor(c)
	if err != nil {
		return nil
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.boardService.Members(c.Context(), boardID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(members)
}
