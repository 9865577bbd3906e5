package service

import (
	"context"
	"strings"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"
	"pulseboard/internal/repository"
	"pulseboard/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, credential checks and role management.
type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateRoleInput struct {
	Actor  authz.Actor
	UserID uint
	Role   models.Role
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a contributor account. Roles are never taken from the
// request; promotion happens only through UpdateRole.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      models.RoleContributor,
		Active:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies email and password. Failures are reported uniformly
// so the response does not reveal which credential was wrong.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

// ListUsers is restricted to admins and moderators.
func (s *UserService) ListUsers(ctx context.Context, actor authz.Actor, limit, offset int) ([]models.User, error) {
	if !actor.Authenticated || !actor.Role.Privileged() {
		return nil, models.NewForbiddenError("Insufficient role")
	}
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateRole changes a user's role. Admin only. Admins cannot demote
// themselves, which keeps at least one admin reachable.
func (s *UserService) UpdateRole(ctx context.Context, in UpdateRoleInput) (*models.User, error) {
	if !in.Actor.Authenticated || in.Actor.Role != models.RoleAdmin {
		return nil, models.NewForbiddenError("Only admins can change roles")
	}
	if !in.Role.Valid() {
		return nil, models.NewValidationError("Invalid role")
	}
	if in.Actor.ID == in.UserID && in.Role != models.RoleAdmin {
		return nil, models.NewValidationError("Admins cannot demote themselves")
	}

	if err := s.userRepo.UpdateRole(ctx, in.UserID, in.Role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}
