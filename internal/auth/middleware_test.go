package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokenService("test-secret", time.Hour)

	validToken, err := tokens.Issue("user123")
	assert.NoError(t, err)

	expiredToken, err := NewTokenService("test-secret", -time.Hour).Issue("user123")
	assert.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   struct {
			statusCode int
			userID     string
		}
	}{
		{
			name:   "valid bearer token",
			header: "Bearer " + validToken,
			want: struct {
				statusCode int
				userID     string
			}{
				statusCode: http.StatusOK,
				userID:     "user123",
			},
		},
		{
			name:   "missing header",
			header: "",
			want: struct {
				statusCode int
				userID     string
			}{
				statusCode: http.StatusUnauthorized,
			},
		},
		{
			name:   "wrong scheme",
			header: "Basic dXNlcjpwYXNz",
			want: struct {
				statusCode int
				userID     string
			}{
				statusCode: http.StatusUnauthorized,
			},
		},
		{
			name:   "token without bearer prefix",
			header: validToken,
			want: struct {
				statusCode int
				userID     string
			}{
				statusCode: http.StatusUnauthorized,
			},
		},
		{
			name:   "garbage token",
			header: "Bearer not.a.token",
			want: struct {
				statusCode int
				userID     string
			}{
				statusCode: http.StatusUnauthorized,
			},
		},
		{
			name:   "expired token",
			header: "Bearer " + expiredToken,
			want: struct {
				statusCode int
				userID     string
			}{
				statusCode: http.StatusUnauthorized,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			var gotUserID string
			router.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
				gotUserID = UserIDFromContext(c)
				c.JSON(http.StatusOK, gin.H{"user_id": gotUserID})
			})

			req, _ := http.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want.statusCode, w.Code)
			if tt.want.statusCode == http.StatusOK {
				assert.Equal(t, tt.want.userID, gotUserID)
			} else {
				assert.Contains(t, w.Body.String(), "error")
			}
		})
	}
}

func TestUserIDFromContextWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, UserIDFromContext(ctx))
}
