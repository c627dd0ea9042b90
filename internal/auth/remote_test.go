package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

type MockUserFetcher struct {
	mock.Mock
}

func (m *MockUserFetcher) GetUser(ctx context.Context, accessToken string) (*models.AuthUser, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthUser), args.Error(1)
}

func TestRemoteVerifier_Verify(t *testing.T) {
	claims := validClaims()
	token := signToken(t, jwt.SigningMethodHS256, []byte("some-other-secret-the-server-does-not-know"), claims)

	t.Run("accepted token keeps its session id", func(t *testing.T) {
		users := new(MockUserFetcher)
		users.On("GetUser", mock.Anything, token).
			Return(&models.AuthUser{ID: claims.Subject, Email: "ada@example.com"}, nil)

		got, err := auth.NewRemoteVerifier(users).Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, claims.Subject, got.Subject)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.Equal(t, "hosted-session-1", got.SessionID)
		users.AssertExpectations(t)
	})

	t.Run("opaque token", func(t *testing.T) {
		users := new(MockUserFetcher)
		users.On("GetUser", mock.Anything, "opaque").
			Return(&models.AuthUser{ID: "user-1", Email: "ada@example.com"}, nil)

		got, err := auth.NewRemoteVerifier(users).Verify(context.Background(), "opaque")
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.Subject)
		assert.Empty(t, got.SessionID)
	})

	t.Run("subject mismatch drops unverified claims", func(t *testing.T) {
		users := new(MockUserFetcher)
		users.On("GetUser", mock.Anything, token).
			Return(&models.AuthUser{ID: "someone-else"}, nil)

		got, err := auth.NewRemoteVerifier(users).Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "someone-else", got.Subject)
		assert.Empty(t, got.SessionID)
		assert.Empty(t, got.Email)
	})

	t.Run("rejected token", func(t *testing.T) {
		users := new(MockUserFetcher)
		users.On("GetUser", mock.Anything, token).
			Return(nil, utils.NewUnauthorizedError("invalid JWT"))

		_, err := auth.NewRemoteVerifier(users).Verify(context.Background(), token)
		require.Error(t, err)
		var appErr *utils.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	})

	t.Run("empty token", func(t *testing.T) {
		users := new(MockUserFetcher)
		_, err := auth.NewRemoteVerifier(users).Verify(context.Background(), "")
		require.Error(t, err)
		users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})
}

func TestSessionAuth_RemoteBearer(t *testing.T) {
	users := new(MockUserFetcher)
	users.On("GetUser", mock.Anything, "good-token").
		Return(&models.AuthUser{ID: "user-1", Email: "ada@example.com"}, nil)
	users.On("GetUser", mock.Anything, "bad-token").
		Return(nil, utils.NewUnauthorizedError("invalid JWT"))

	handler := func(got **auth.Identity) http.Handler {
		return auth.SessionAuth(newResolver(), auth.NewRemoteVerifier(users), false)(captureIdentity(got))
	}

	var got *auth.Identity
	req := httptest.NewRequest(http.MethodGet, constants.ProfilePath, nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer good-token")
	handler(&got).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "good-token", got.AccessToken)

	got = nil
	req = httptest.NewRequest(http.MethodGet, constants.ProfilePath, nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer bad-token")
	handler(&got).ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, got)

	users.AssertExpectations(t)
}
