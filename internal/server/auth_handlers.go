package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pulseboard/internal/models"
	"pulseboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "pulseboard-api"
	tokenAudience = "pulseboard-client"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// tokenPair is the payload returned on login and refresh.
type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /api/auth/register
// @Summary Register account
// @Description Create a contributor account and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration request"
// @Success 201 {object} object{access_token=string,refresh_token=string,user=models.Summary}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.userService.Register(c.Context(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	pair, err := s.generateTokenPair(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          user.Summary(),
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{access_token=string,refresh_token=string,user=models.Summary}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	pair, err := s.generateTokenPair(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          user.Summary(),
	})
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh token pair
// @Description Exchange a valid refresh token for a new token pair. The used
// @Description refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh_token=string} true "Refresh request"
// @Success 200 {object} object{access_token=string,refresh_token=string}
// @Failure 401 {object} object{error=string}
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refresh_token is required"))
	}

	claims, err := s.parseToken(c.Context(), req.RefreshToken, tokenTypeRefresh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(err.Error()))
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(err.Error()))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil || user == nil || !user.Active {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Account unavailable"))
	}

	// One refresh per token: revoke the presented jti before reissuing.
	s.revokeClaims(c, claims)

	pair, err := s.generateTokenPair(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the presented access token (and optionally a refresh token)
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		if claims, err := s.parseToken(c.Context(), parts[1], tokenTypeAccess); err == nil {
			s.revokeClaims(c, claims)
		}
	}

	// A refresh token in the body is revoked alongside the access token.
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		if claims, err := s.parseToken(c.Context(), req.RefreshToken, tokenTypeRefresh); err == nil {
			s.revokeClaims(c, claims)
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// revokeClaims denylists the token's jti for its remaining lifetime.
func (s *Server) revokeClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	if s.redis == nil {
		return
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return
	}
	ttl := refreshTokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining > 0 {
			ttl = remaining
		}
	}
	s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
}

// generateTokenPair issues a short-lived access token and a longer-lived
// refresh token for the user.
func (s *Server) generateTokenPair(userID uint, username string) (*tokenPair, error) {
	access, err := s.generateToken(userID, username, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(userID, username, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// generateToken creates a signed JWT for the given user ID and token type.
func (s *Server) generateToken(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"typ":      tokenType,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to support revocation.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
