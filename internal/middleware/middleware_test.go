package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	tokens map[string]jwt.MapClaims
	users  map[uint]*models.User
}

func (s stubValidator) ValidateToken(token string) (jwt.MapClaims, error) {
	claims, ok := s.tokens[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s stubValidator) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 500 {
		return nil, errors.New("connection reset")
	}
	return s.users[id], nil
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAndRole(t *testing.T) {
	validator := stubValidator{
		tokens: map[string]jwt.MapClaims{
			"admin-token":    {"user_id": "4", "role": "ADMIN", "email": "a@kettle.io"},
			"employee-token": {"user_id": "9", "role": "EMPLOYEE"},
			"broken-token":   {"user_id": 12, "role": "ADMIN"},
			"disabled-token": {"user_id": "5", "role": "ADMIN"},
			"demoted-token":  {"user_id": "6", "role": "ADMIN"},
			"deleted-token":  {"user_id": "7", "role": "ADMIN"},
			"db-down-token":  {"user_id": "500", "role": "ADMIN"},
		},
		users: map[uint]*models.User{
			4: {ID: 4, Email: "a@kettle.io", Role: models.RoleAdmin, Status: models.StatusActive},
			5: {ID: 5, Role: models.RoleAdmin, Status: models.StatusDisabled},
			6: {ID: 6, Role: models.RoleEmployee, Status: models.StatusActive},
			9: {ID: 9, Role: models.RoleEmployee, Status: models.StatusActive},
		},
	}

	router := gin.New()
	router.GET("/leave", RequireAuth(validator), RequireRole("ADMIN"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic admin-token", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"non string user id", "Bearer broken-token", http.StatusUnauthorized},
		{"not an admin", "Bearer employee-token", http.StatusForbidden},
		{"disabled account", "Bearer disabled-token", http.StatusForbidden},
		{"role taken from stored user", "Bearer demoted-token", http.StatusForbidden},
		{"user no longer exists", "Bearer deleted-token", http.StatusUnauthorized},
		{"user lookup fails", "Bearer db-down-token", http.StatusInternalServerError},
		{"admin", "Bearer admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(router, http.MethodGet, "/leave", headers)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user":4}`, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(router, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = serve(router, http.MethodGet, "/", nil)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) { panic("kettle boiled dry") })

	w := serve(router, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.PUT("/api/leave/quota", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodOptions, "/api/leave/quota", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	router := gin.New()
	router.Use(Logger(zap.NewNop()), metrics.Handler())
	router.GET("/api/leave/quota/size/:tier", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/api/leave/quota/size/Gold", nil)
	serve(router, http.MethodGet, "/api/leave/quota/size/Silver", nil)
	serve(router, http.MethodGet, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/api/leave/quota/size/:tier", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("unmatched", "GET", "404")))

	count, err := testutil.GatherAndCount(reg, "hrm_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
