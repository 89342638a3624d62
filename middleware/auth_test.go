package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mboyle/threadline-api/config"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret"}
}

func authRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", EnsureValidToken(cfg), func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func getProtected(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEnsureValidToken(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)

	valid, err := IssueToken(cfg, "user-123", time.Hour)
	assert.NoError(t, err)

	expired, err := IssueToken(cfg, "user-123", -time.Hour)
	assert.NoError(t, err)

	wrongSecret, err := IssueToken(&config.Config{JWTSecret: "other-secret"}, "user-123", time.Hour)
	assert.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	assert.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Valid token", "Bearer " + valid, http.StatusOK},
		{"Missing header", "", http.StatusUnauthorized},
		{"Not a bearer token", "Basic abc123", http.StatusUnauthorized},
		{"Malformed header", "Bearer", http.StatusUnauthorized},
		{"Garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"Expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"Wrong secret", "Bearer " + wrongSecret, http.StatusUnauthorized},
		{"Missing subject", "Bearer " + noSubject, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getProtected(router, tt.authHeader)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestEnsureValidTokenInjectsSubject(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)

	token, err := IssueToken(cfg, "user-456", time.Hour)
	assert.NoError(t, err)

	w := getProtected(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-456")
}

func TestEnsureValidTokenRejectsNonHMAC(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)

	// alg=none style tokens must never validate
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	w := getProtected(router, "Bearer "+unsigned)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserID(c)
	assert.Error(t, err)
	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, "MISSING_USER_ID", authErr.Code)

	c.Set(ContextUserIDKey, 42)
	_, err = GetUserID(c)
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, "INVALID_USER_ID", authErr.Code)

	c.Set(ContextUserIDKey, "user-789")
	userID, err := GetUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, "user-789", userID)
}
