package auth

import (
	"net/http"
	"strings"

	"tasktracker/internal/domain/errors"

	"github.com/gin-gonic/gin"
)

const contextKeyUserID = "user_id"

const bearerPrefix = "Bearer "

// UserIDFromContext возвращает ID пользователя, установленный RequireAuth.
// Пустая строка означает, что запрос не прошёл через middleware.
func UserIDFromContext(ctx *gin.Context) string {
	v, ok := ctx.Get(contextKeyUserID)
	if !ok {
		return ""
	}
	id, ok := v.(string)
	if !ok {
		return ""
	}
	return id
}

// RequireAuth извлекает bearer-токен из заголовка Authorization, проверяет его
// и кладёт ID пользователя в контекст запроса. Само middleware не ходит в БД.
func RequireAuth(tokens *TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthenticated.Error()})
			return
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		userID, err := tokens.Verify(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidToken.Error()})
			return
		}

		ctx.Set(contextKeyUserID, userID)
		ctx.Next()
	}
}
