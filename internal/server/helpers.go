package server

import (
	"errors"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// requireActor resolves the authenticated actor from the userID local set by
// AuthRequired. The role is read through the cached user repository so each
// request sees the user's current role, not the one at token issuance.
// On failure it writes the response and returns errResponseWritten.
func (s *Server) requireActor(c *fiber.Ctx) (authz.Actor, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return authz.Anonymous, errResponseWritten
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil || user == nil || !user.Active {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Account unavailable"))
		return authz.Anonymous, errResponseWritten
	}

	return authz.FromUser(user), nil
}

// optionalActor resolves the actor from a Bearer token if one is present and
// valid, falling back to the anonymous actor. It never writes a response.
func (s *Server) optionalActor(c *fiber.Ctx) authz.Actor {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return authz.Anonymous
	}
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return authz.Anonymous
	}

	claims, err := s.parseToken(c.Context(), authHeader[len(prefix):], tokenTypeAccess)
	if err != nil {
		return authz.Anonymous
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return authz.Anonymous
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil || user == nil || !user.Active {
		return authz.Anonymous
	}
	return authz.FromUser(user)
}
