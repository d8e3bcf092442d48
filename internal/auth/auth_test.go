package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func TestVerifier_Verify(t *testing.T) {
	verifier := NewVerifier(testSecret)

	token := signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "anna@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	principal, err := verifier.Verify(token)

	assert.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, "anna@example.com", principal.Email)
	assert.Equal(t, RoleUser, principal.Role)
}

func TestVerifier_Verify_AdminFromRoleClaim(t *testing.T) {
	verifier := NewVerifier(testSecret)

	token := signToken(t, jwt.MapClaims{"sub": "user-1", "role": "Admin"})

	principal, err := verifier.Verify(token)

	assert.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}

func TestVerifier_Verify_AdminFromGroups(t *testing.T) {
	verifier := NewVerifier(testSecret)

	token := signToken(t, jwt.MapClaims{"sub": "user-1", "groups": []string{"Staff", "Admin"}})

	principal, err := verifier.Verify(token)

	assert.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}

func TestVerifier_Verify_Rejects(t *testing.T) {
	verifier := NewVerifier(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
			signed, _ := token.SignedString([]byte("other-secret"))
			return signed
		}()},
		{"expired", signToken(t, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"no subject", signToken(t, jwt.MapClaims{"email": "anna@example.com"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings", nil)

	Middleware(NewVerifier(testSecret))(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestMiddleware_StoresPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "user-1"}))

	Middleware(NewVerifier(testSecret))(c)

	assert.False(t, c.IsAborted())
	principal, ok := PrincipalFrom(c)
	assert.True(t, ok)
	assert.Equal(t, "user-1", principal.ID)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("forbids regular user", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("principal", &Principal{ID: "user-1", Role: RoleUser})

		RequireAdmin()(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("allows admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("principal", &Principal{ID: "admin-1", Role: RoleAdmin})

		RequireAdmin()(c)

		assert.False(t, c.IsAborted())
	})
}
