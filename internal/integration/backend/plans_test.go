package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/pkg/logger"
)

func newTestPlansClient(t *testing.T, handler http.Handler) (*PlansClient, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	log := logger.NewNop()
	api := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, log)
	return NewPlansClient(api, log), srv.Close
}

func TestFetchPlans(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /plans", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Plan{
			{ID: "plan-starter", Name: "Starter"},
			{ID: "plan-pro", Name: "Pro"},
		})
	})
	client, stop := newTestPlansClient(t, mux)
	defer stop()

	plans, err := client.FetchPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "plan-pro", plans[1].ID)
}

func TestFetchPlan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "plan-pro" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown plan"})
			return
		}
		writeJSON(w, http.StatusOK, domain.Plan{ID: "plan-pro", Name: "Pro"})
	})
	client, stop := newTestPlansClient(t, mux)
	defer stop()

	plan, err := client.FetchPlan(context.Background(), "plan-pro")
	require.NoError(t, err)
	assert.Equal(t, "Pro", plan.Name)

	_, err = client.FetchPlan(context.Background(), "plan-retired")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateSelectedPlan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /users/selected-plan", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "plan-pro", body["planId"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	})
	client, stop := newTestPlansClient(t, mux)
	defer stop()

	require.NoError(t, client.UpdateSelectedPlan(context.Background(), "access", "plan-pro"))
}
