package middleware

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// GetUserIDFromContext достаёт id пользователя из claims токена.
// Возвращает ошибку для анонимных запросов.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("no authenticated user in context")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("user_id claim missing or malformed")
	}
	return int(rawID), nil
}

// IsAuthenticated сообщает, есть ли в контексте валидные claims.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	return ok
}
