package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kettlegourmet/hrm/internal/circuitbreaker"
	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_SendsBearerTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/api/leave/quota":
			_ = json.NewEncoder(w).Encode([]models.LeaveQuota{{ID: 1, Tier: "Gold", Annual: 21}})
		case "/api/leave/quota/size/Gold Plus":
			_ = json.NewEncoder(w).Encode(models.TierSizeResponse{Tier: "Gold Plus", Count: 3})
		case "/api/leave/quota/replace":
			var req models.ReplaceTierRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, models.ReplaceTierRequest{DeletedTier: "Gold", NewTier: "Silver"}, req)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"moved": 3})
		case "/api/leave/employee-quota":
			assert.Equal(t, http.MethodPut, r.Method)
			var req map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, float64(7), req["employeeId"])
			assert.NotContains(t, req, "annualBalance")
			_ = json.NewEncoder(w).Encode(models.EmployeeLeaveQuota{EmployeeID: 7, AnnualQuota: 12})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop(), WithToken("tok"))
	ctx := context.Background()

	tiers, err := c.ListTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, 21, tiers[0].Annual)

	size, err := c.TierSize(ctx, "Gold Plus")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	moved, err := c.DeleteAndReplaceTier(ctx, models.ReplaceTierRequest{DeletedTier: "Gold", NewTier: "Silver"})
	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	record, err := c.EditEmployeeQuota(ctx, models.NewEmployeeQuotaRequest(7, leave.Quotas{Annual: 12}, "Gold"))
	require.NoError(t, err)
	assert.Equal(t, 12, record.AnnualQuota)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/leave/quota/9":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"leave tier 9: record not found"}`))
		case "/api/leave/quota/2":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"failed to delete leave tier: ` + leave.ErrTierInUse.Error() + `"}`))
		case "/api/leave/quota":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Tier names must be unique!","field":"tier"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, c.DeleteTier(ctx, 9), leave.ErrNotFound)
	assert.ErrorIs(t, c.DeleteTier(ctx, 2), leave.ErrTierInUse)

	_, err := c.CreateTier(ctx, models.TierRequest{Tier: "Gold"})
	assert.True(t, leave.IsValidation(err))

	_, err = c.ListEmployeeQuotas(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}

func TestClient_LoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/auth":
			_ = json.NewEncoder(w).Encode(models.LoginResponse{Token: "fresh"})
		case "/api/user":
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(models.User{ID: 1, Role: models.RoleAdmin})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	token, err := c.Login(context.Background(), "a@kettle.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/api/leave/quota" && r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"tier name is required","field":"tier"}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop(), WithBreaker(circuitbreaker.Config{
		Name:        "test",
		MaxFailures: 2,
		Timeout:     time.Minute,
		IsFailure:   isBackendFailure,
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.CreateTier(ctx, models.TierRequest{})
		assert.True(t, leave.IsValidation(err))
	}
	assert.Equal(t, circuitbreaker.StateClosed, c.BreakerState())

	_, _ = c.ListTiers(ctx)
	_, _ = c.ListTiers(ctx)
	assert.Equal(t, circuitbreaker.StateOpen, c.BreakerState())

	before := hits.Load()
	_, err := c.ListTiers(ctx)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}
