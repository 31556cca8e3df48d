package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Respawn-League/citadel/middleware"
	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

type fakeUserRepo struct {
	users map[int]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (r *fakeUserRepo) ListByTeamID(ctx context.Context, teamID int) ([]models.User, error) {
	return nil, nil
}

func signActorToken(t *testing.T, secret []byte, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestCurrentActor(t *testing.T) {
	secret := []byte("test-secret")
	nickname := "shade"
	users := &fakeUserRepo{users: map[int]*models.User{
		7: {ID: 7, Nickname: &nickname},
	}}

	var gotActor *models.User
	var handlerCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentActor(w, r, users)
		if !ok {
			return
		}
		handlerCalled = true
		gotActor = actor
	})

	t.Run("existing user resolved from token", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signActorToken(t, secret, 7))
		rec := httptest.NewRecorder()
		middleware.Authenticate(secret)(next).ServeHTTP(rec, req)

		require.True(t, handlerCalled)
		require.NotNil(t, gotActor)
		assert.Equal(t, 7, gotActor.ID)
	})

	t.Run("token for deleted user gets 401, not 500", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signActorToken(t, secret, 999))
		rec := httptest.NewRecorder()
		middleware.Authenticate(secret)(next).ServeHTTP(rec, req)

		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("anonymous request resolves nil actor", func(t *testing.T) {
		handlerCalled = false
		gotActor = &models.User{ID: -1}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		middleware.Optional(secret)(next).ServeHTTP(rec, req)

		require.True(t, handlerCalled)
		assert.Nil(t, gotActor)
	})
}
