package service

import (
	"context"
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/api/repository/mocks"
	servicemocks "ctchen222/book-catalog/internal/api/service/mocks"
	"ctchen222/book-catalog/internal/auth"
	"ctchen222/book-catalog/internal/db"
	loginmocks "ctchen222/book-catalog/internal/repository/mocks"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	svc      UserService
	users    *mocks.MockUserRepository
	issuer   *servicemocks.MockTokenIssuer
	attempts *loginmocks.MockLoginAttemptRepository
}

func newUserFixture(t *testing.T, throttle bool) *userFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &userFixture{
		users:  mocks.NewMockUserRepository(ctrl),
		issuer: servicemocks.NewMockTokenIssuer(ctrl),
	}
	manager := mocks.NewMockManager(ctrl)
	manager.EXPECT().Users(gomock.Any()).Return(f.users).AnyTimes()

	opts := []UserOption{WithHashCost(bcrypt.MinCost)}
	if throttle {
		f.attempts = loginmocks.NewMockLoginAttemptRepository(ctrl)
		opts = append(opts, WithLoginThrottle(f.attempts, 3))
	}

	svc, err := NewUserService(&passthroughTx{}, manager, f.issuer, auth.DefaultPasswordPolicy(), opts...)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func storedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: 1, Username: username, Email: username + "@example.com", PasswordHash: hash}
}

func TestUserService_Register(t *testing.T) {
	f := newUserFixture(t, false)
	req := &models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "Secret123"}

	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(nil, nil)
	f.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			u.ID = 7
			return nil
		})

	user, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.EqualValues(t, 7, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "Secret123", user.PasswordHash)
	assert.NotEmpty(t, user.SecurityStamp)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "Secret123"))
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	f := newUserFixture(t, false)
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(&models.User{ID: 1, Username: "alice"}, nil)
	f.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

	_, err := f.svc.Register(context.Background(), &models.RegisterRequest{Username: "alice", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestUserService_Register_LostRace(t *testing.T) {
	f := newUserFixture(t, false)
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(nil, nil)
	f.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("failed to create user: %w", db.ErrUniqueViolation))

	_, err := f.svc.Register(context.Background(), &models.RegisterRequest{Username: "alice", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestUserService_Register_WeakPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     int
	}{
		{name: "too short and no digit", password: "Abc", want: 2},
		{name: "no upper", password: "secret123", want: 1},
		{name: "only digits", password: "1234567", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t, false)
			f.users.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(nil, nil)
			f.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

			_, err := f.svc.Register(context.Background(), &models.RegisterRequest{Username: "bob", Password: tt.password})

			var weak *WeakCredentialError
			require.ErrorAs(t, err, &weak)
			assert.Len(t, weak.Violations, tt.want)
			assert.Contains(t, weak.Error(), "user creation failed!")
		})
	}
}

func TestUserService_Verify(t *testing.T) {
	f := newUserFixture(t, false)
	alice := storedUser(t, "alice", "Secret123")
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(alice, nil).Times(2)
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "ghost").Return(nil, nil)

	got, err := f.svc.Verify(context.Background(), "alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = f.svc.Verify(context.Background(), "alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = f.svc.Verify(context.Background(), "ghost", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestUserService_Verify_StoreError(t *testing.T) {
	f := newUserFixture(t, false)
	boom := errors.New("db down")
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(nil, boom)

	_, err := f.svc.Verify(context.Background(), "alice", "Secret123")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

func TestUserService_Login(t *testing.T) {
	f := newUserFixture(t, false)
	exp := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser(t, "alice", "Secret123"), nil)
	f.issuer.EXPECT().Issue("alice").Return("signed.token.value", exp, nil)

	resp, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "signed.token.value", resp.Token)
	assert.Equal(t, exp, resp.Expiration)
}

func TestUserService_Login_BadCredentialsIssueNothing(t *testing.T) {
	f := newUserFixture(t, false)
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser(t, "alice", "Secret123"), nil)
	f.issuer.EXPECT().Issue(gomock.Any()).Times(0)

	_, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestUserService_Login_IssuerError(t *testing.T) {
	f := newUserFixture(t, false)
	boom := errors.New("signing failed")
	f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser(t, "alice", "Secret123"), nil)
	f.issuer.EXPECT().Issue("alice").Return("", time.Time{}, boom)

	_, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "Secret123"})
	assert.ErrorIs(t, err, boom)
}

func TestUserService_Login_Throttle(t *testing.T) {
	t.Run("locked out", func(t *testing.T) {
		f := newUserFixture(t, true)
		f.attempts.EXPECT().Failures(gomock.Any(), "alice").Return(int64(3), nil)
		f.users.EXPECT().GetUserByUsername(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "Secret123"})
		assert.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("failure is recorded", func(t *testing.T) {
		f := newUserFixture(t, true)
		f.attempts.EXPECT().Failures(gomock.Any(), "alice").Return(int64(1), nil)
		f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser(t, "alice", "Secret123"), nil)
		f.attempts.EXPECT().RecordFailure(gomock.Any(), "alice").Return(int64(2), nil)

		_, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("success resets", func(t *testing.T) {
		f := newUserFixture(t, true)
		f.attempts.EXPECT().Failures(gomock.Any(), "alice").Return(int64(2), nil)
		f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser(t, "alice", "Secret123"), nil)
		f.attempts.EXPECT().Reset(gomock.Any(), "alice").Return(nil)
		f.issuer.EXPECT().Issue("alice").Return("tok", time.Now(), nil)

		_, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "Secret123"})
		assert.NoError(t, err)
	})

	t.Run("redis unavailable fails open", func(t *testing.T) {
		f := newUserFixture(t, true)
		down := errors.New("connection refused")
		f.attempts.EXPECT().Failures(gomock.Any(), "alice").Return(int64(0), down)
		f.users.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser(t, "alice", "Secret123"), nil)
		f.attempts.EXPECT().Reset(gomock.Any(), "alice").Return(down)
		f.issuer.EXPECT().Issue("alice").Return("tok", time.Now(), nil)

		resp, err := f.svc.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "Secret123"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
	})
}
