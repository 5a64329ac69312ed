package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 7
	}
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, role *Role, offset, limit int) ([]*User, error) {
	args := m.Called(ctx, role, offset, limit)
	return args.Get(0).([]*User), args.Error(1)
}

func (m *mockRepository) UpdateRole(ctx context.Context, id uint, role Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and defaults role", func(t *testing.T) {
		repo := new(mockRepository)
		svc := NewService(repo, testJWTManager(), nil)

		repo.On("GetByEmail", ctx, "ada@example.com").Return(nil, ErrUserNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)

		user, err := svc.Create(ctx, &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		require.NoError(t, err)

		assert.Equal(t, uint(7), user.ID)
		assert.Equal(t, RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(mockRepository)
		svc := NewService(repo, testJWTManager(), nil)

		repo.On("GetByEmail", ctx, "ada@example.com").Return(&User{ID: 1}, nil)

		_, err := svc.Create(ctx, &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	active := &User{ID: 3, Email: "ada@example.com", Role: RoleAdmin, IsActive: true, PasswordHash: hashed(t, "secret1")}
	inactive := &User{ID: 4, Email: "bob@example.com", Role: RoleUser, PasswordHash: hashed(t, "secret1")}

	tests := []struct {
		name     string
		email    string
		password string
		user     *User
		lookup   error
		wantErr  error
	}{
		{name: "success", email: active.Email, password: "secret1", user: active},
		{name: "wrong password", email: active.Email, password: "nope", user: active, wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "who@example.com", password: "secret1", lookup: ErrUserNotFound, wantErr: ErrInvalidCredentials},
		{name: "inactive", email: inactive.Email, password: "secret1", user: inactive, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			svc := NewService(repo, testJWTManager(), nil)
			if tt.user != nil {
				repo.On("GetByEmail", ctx, tt.email).Return(tt.user, nil)
			} else {
				repo.On("GetByEmail", ctx, tt.email).Return(nil, tt.lookup)
			}

			resp, err := svc.Authenticate(ctx, &AuthenticateRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, tt.user.ID, resp.User.ID)
			assert.Greater(t, resp.ExpiresAt, int64(0))
		})
	}
}

func TestService_UpdateRole(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid role", func(t *testing.T) {
		svc := NewService(new(mockRepository), testJWTManager(), nil)
		_, err := svc.UpdateRole(ctx, 1, Role("owner"))
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("updates and reloads", func(t *testing.T) {
		repo := new(mockRepository)
		svc := NewService(repo, testJWTManager(), nil)
		repo.On("UpdateRole", ctx, uint(1), RoleTenant).Return(nil)
		repo.On("GetByID", ctx, uint(1)).Return(&User{ID: 1, Role: RoleTenant}, nil)

		user, err := svc.UpdateRole(ctx, 1, RoleTenant)
		require.NoError(t, err)
		assert.Equal(t, RoleTenant, user.Role)
	})
}

func TestService_List_InvalidRole(t *testing.T) {
	svc := NewService(new(mockRepository), testJWTManager(), nil)
	role := Role("root")
	_, err := svc.List(context.Background(), &role, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidRole)
}
