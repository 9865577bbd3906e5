package service

import (
	"context"
	"errors"
	"testing"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Shared actor fixtures. IDs are arbitrary but stable across tests.
var (
	adminActor       = authz.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}
	moderatorActor   = authz.Actor{ID: 2, Role: models.RoleModerator, Authenticated: true}
	contributorActor = authz.Actor{ID: 3, Role: models.RoleContributor, Authenticated: true}
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	updateRoleFn    func(context.Context, uint, models.Role) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	return s.updateRoleFn(ctx, id, role)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateRoleFn:    func(_ context.Context, _ uint, _ models.Role) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// assertAppErrorCode asserts that err is an AppError carrying the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "CONFLICT")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestUserService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{
			name:  "username too short",
			input: RegisterInput{Username: "ab", Email: "a@example.com", Password: "SecurePass12!@"},
		},
		{
			name:  "username illegal characters",
			input: RegisterInput{Username: "has space", Email: "a@example.com", Password: "SecurePass12!@"},
		},
		{
			name:  "invalid email",
			input: RegisterInput{Username: "valid_user", Email: "not-an-email", Password: "SecurePass12!@"},
		},
		{
			name:  "weak password",
			input: RegisterInput{Username: "valid_user", Email: "a@example.com", Password: "short"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(ctx, tc.input)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
		return &models.User{ID: 9}, nil
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "valid_user", Email: "taken@example.com", Password: "SecurePass12!@",
	})
	assertConflictError(t, err)
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
		return &models.User{ID: 9}, nil
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "taken_user", Email: "new@example.com", Password: "SecurePass12!@",
	})
	assertConflictError(t, err)
}

func TestUserService_Register_AlwaysContributor(t *testing.T) {
	t.Parallel()

	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		created = u
		return nil
	}
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "new_user",
		Email:    "New@Example.COM",
		Password: "SecurePass12!@",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, models.RoleContributor, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, "new@example.com", user.Email, "email is normalized to lowercase")
	assert.NotEqual(t, "SecurePass12!@", user.Password, "password is stored hashed")
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	hashed, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!@"), bcrypt.MinCost)
	require.NoError(t, err)

	knownUser := &models.User{ID: 5, Email: "dev@example.com", Password: string(hashed), Active: true}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) { return knownUser, nil }
		svc := NewUserService(repo)

		user, err := svc.Authenticate(context.Background(), "Dev@Example.com", "SecurePass12!@")
		require.NoError(t, err)
		assert.Equal(t, uint(5), user.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "SecurePass12!@")
		assertUnauthorizedError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) { return knownUser, nil }
		svc := NewUserService(repo)
		_, err := svc.Authenticate(context.Background(), "dev@example.com", "WrongPass12!@")
		assertUnauthorizedError(t, err)
	})

	t.Run("deactivated account", func(t *testing.T) {
		t.Parallel()
		inactive := *knownUser
		inactive.Active = false
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) { return &inactive, nil }
		svc := NewUserService(repo)
		_, err := svc.Authenticate(context.Background(), "dev@example.com", "SecurePass12!@")
		assertUnauthorizedError(t, err)
	})
}

func TestUserService_ListUsers_RequiresPrivilegedRole(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo())
	ctx := context.Background()

	_, err := svc.ListUsers(ctx, contributorActor, 20, 0)
	assertForbiddenError(t, err)

	_, err = svc.ListUsers(ctx, authz.Anonymous, 20, 0)
	assertForbiddenError(t, err)

	_, err = svc.ListUsers(ctx, moderatorActor, 20, 0)
	assert.NoError(t, err)

	_, err = svc.ListUsers(ctx, adminActor, 20, 0)
	assert.NoError(t, err)
}

func TestUserService_UpdateRole(t *testing.T) {
	t.Parallel()

	t.Run("admin promotes contributor", func(t *testing.T) {
		t.Parallel()
		var gotRole models.Role
		repo := noopUserRepo()
		repo.updateRoleFn = func(_ context.Context, _ uint, role models.Role) error {
			gotRole = role
			return nil
		}
		svc := NewUserService(repo)

		_, err := svc.UpdateRole(context.Background(), UpdateRoleInput{
			Actor: adminActor, UserID: 3, Role: models.RoleModerator,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleModerator, gotRole)
	})

	t.Run("moderator cannot change roles", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.UpdateRole(context.Background(), UpdateRoleInput{
			Actor: moderatorActor, UserID: 3, Role: models.RoleModerator,
		})
		assertForbiddenError(t, err)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.UpdateRole(context.Background(), UpdateRoleInput{
			Actor: adminActor, UserID: 3, Role: "superuser",
		})
		assertValidationError(t, err)
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.UpdateRole(context.Background(), UpdateRoleInput{
			Actor: adminActor, UserID: adminActor.ID, Role: models.RoleContributor,
		})
		assertValidationError(t, err)
	})

	t.Run("admin can reassert own admin role", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.UpdateRole(context.Background(), UpdateRoleInput{
			Actor: adminActor, UserID: adminActor.ID, Role: models.RoleAdmin,
		})
		assert.NoError(t, err)
	})
}
