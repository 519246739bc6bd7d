package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/solarstock-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUsername(c), "id": GetUserID(c), "admin": IsAdmin(c)})
	})
	r.DELETE("/items", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":  7,
		"username": "maria",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuth_SetsActingUser(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("staff"), testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"maria","id":7,"admin":false}`, w.Body.String())
}

func TestAuth_QueryToken(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+signToken(t, validClaims("admin"), testSecret), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":true`)
}

func TestAuth_Rejects(t *testing.T) {
	r := newAuthRouter()

	expired := validClaims("staff")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noUser := validClaims("staff")
	delete(noUser, "username")

	cases := map[string]string{
		"":                                               "Authorization header is required",
		"Token abc":                                      "Invalid authorization header format",
		"Bearer " + signToken(t, expired, testSecret):    "token has expired",
		"Bearer " + signToken(t, validClaims(""), "bad"): "invalid token",
		"Bearer " + signToken(t, noUser, testSecret):     "token has no username",
	}

	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), want, header)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newAuthRouter()

	for role, code := range map[string]int{"staff": http.StatusForbidden, "admin": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodDelete, "/items", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(role), testSecret))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, code, w.Code, role)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger_RedactsQueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	prev := logger.Log
	logger.Log = slog.New(slog.NewTextHandler(&buf, nil))
	t.Cleanup(func() { logger.Log = prev })

	r := gin.New()
	r.Use(RequestLogger(), Auth(testSecret))
	r.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signToken(t, validClaims("staff"), testSecret)
	req := httptest.NewRequest(http.MethodGet, "/items?category=Panels&token="+token, nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "token=REDACTED")
	assert.Contains(t, out, "user=maria")
	assert.NotContains(t, out, token)
}
