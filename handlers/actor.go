package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Respawn-League/citadel/middleware"
	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

// errStaleToken — токен подписан верно, но пользователь из claims уже
// не существует. Для клиента это недействительный токен, а не сбой.
var errStaleToken = errors.New("token references a deleted user")

// resolveActor загружает текущего пользователя по claims из контекста.
// Для анонимного запроса возвращает nil без ошибки.
func resolveActor(ctx context.Context, users repositories.UserRepository) (*models.User, error) {
	if !middleware.IsAuthenticated(ctx) {
		return nil, nil
	}

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	actor, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, errStaleToken
		}
		return nil, err
	}
	return actor, nil
}

// currentActor — обёртка над resolveActor для хендлеров: сама пишет
// ответ при ошибке. Второе значение false означает, что ответ уже
// отправлен и обработку нужно прервать.
func currentActor(w http.ResponseWriter, r *http.Request, users repositories.UserRepository) (*models.User, bool) {
	actor, err := resolveActor(r.Context(), users)
	if err != nil {
		if errors.Is(err, errStaleToken) {
			unauthorizedResponse(w, r, "invalid or expired authentication token")
		} else {
			serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return actor, true
}
