package plans

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
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

const testSessionID = "11111111-2222-3333-4444-555555555555"

var testCatalog = []domain.Plan{
	{ID: "plan-starter", Name: "Starter", PriceMonthly: 19, PriceYearly: 190},
	{ID: "plan-pro", Name: "Pro", PriceMonthly: 49, PriceYearly: 490, IsPopular: true},
}

func newTestStore(t *testing.T, handler http.Handler) (*Store, *storage.MemoryStorage, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	log := logger.NewNop()
	st := storage.NewMemoryStorage()
	api := backend.NewPlansClient(backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, log), log)
	return NewStore(st, api, log), st, srv.Close
}

func catalogHandler(t *testing.T, fetches *int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /plans", func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			*fetches++
		}
		writeJSON(t, w, testCatalog)
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestPlansFetchedOnceThenCached(t *testing.T) {
	fetches := 0
	store, _, stop := newTestStore(t, catalogHandler(t, &fetches))
	defer stop()

	ctx := context.Background()
	first, err := store.Plans(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := store.Plans(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches)
}

func TestPlanByID(t *testing.T) {
	store, _, stop := newTestStore(t, catalogHandler(t, nil))
	defer stop()

	ctx := context.Background()
	plan := store.PlanByID(ctx, "plan-pro")
	require.NotNil(t, plan)
	assert.Equal(t, "Pro", plan.Name)

	assert.Nil(t, store.PlanByID(ctx, "plan-retired"))
}

// A selection can reference a plan the cached catalog no longer carries;
// the lookup asks the backend for the single plan before giving up.
func TestPlanByIDFallsBackToBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /plans", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, testCatalog)
	})
	mux.HandleFunc("GET /plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "plan-legacy" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(t, w, domain.Plan{ID: "plan-legacy", Name: "Legacy"})
	})
	store, _, stop := newTestStore(t, mux)
	defer stop()

	ctx := context.Background()
	plan := store.PlanByID(ctx, "plan-legacy")
	require.NotNil(t, plan)
	assert.Equal(t, "Legacy", plan.Name)

	assert.Nil(t, store.PlanByID(ctx, "plan-gone"))
}

func TestSetSelectedPlanOverwrites(t *testing.T) {
	store, _, stop := newTestStore(t, catalogHandler(t, nil))
	defer stop()
	ctx := context.Background()

	require.NoError(t, store.SetSelectedPlan(ctx, testSessionID, domain.SelectedPlan{
		PlanID:       "plan-starter",
		BillingCycle: domain.BillingCycleMonthly,
	}))
	require.NoError(t, store.SetSelectedPlan(ctx, testSessionID, domain.SelectedPlan{
		PlanID:       "plan-pro",
		BillingCycle: domain.BillingCycleYearly,
	}))

	sel := store.SelectedPlan(ctx, testSessionID)
	require.NotNil(t, sel)
	assert.Equal(t, "plan-pro", sel.PlanID)
	assert.Equal(t, domain.BillingCycleYearly, sel.BillingCycle)
}

func TestSelectedPlanIsScopedPerSession(t *testing.T) {
	store, _, stop := newTestStore(t, catalogHandler(t, nil))
	defer stop()
	ctx := context.Background()

	require.NoError(t, store.SetSelectedPlan(ctx, testSessionID, domain.SelectedPlan{PlanID: "plan-pro"}))

	assert.Nil(t, store.SelectedPlan(ctx, "other-session"))
}

func TestSelectedPlanMalformedReadsAsAbsent(t *testing.T) {
	store, st, stop := newTestStore(t, catalogHandler(t, nil))
	defer stop()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "selected_plan:"+testSessionID, "{broken", 0))

	assert.Nil(t, store.SelectedPlan(ctx, testSessionID))
}

func TestClearSelectedPlan(t *testing.T) {
	store, _, stop := newTestStore(t, catalogHandler(t, nil))
	defer stop()
	ctx := context.Background()

	require.NoError(t, store.SetSelectedPlan(ctx, testSessionID, domain.SelectedPlan{PlanID: "plan-pro"}))
	require.NoError(t, store.ClearSelectedPlan(ctx, testSessionID))

	assert.Nil(t, store.SelectedPlan(ctx, testSessionID))
}

func TestSelectionSurvivesStoreRestart(t *testing.T) {
	store, st, stop := newTestStore(t, catalogHandler(t, nil))
	defer stop()
	ctx := context.Background()

	require.NoError(t, store.SetSelectedPlan(ctx, testSessionID, domain.SelectedPlan{
		PlanID:       "plan-pro",
		BillingCycle: domain.BillingCycleMonthly,
		Plan:         &testCatalog[1],
	}))

	// A fresh Store over the same storage sees the selection; only the
	// catalog cache is lost.
	reloaded := NewStore(st, nil, logger.NewNop())
	sel := reloaded.SelectedPlan(ctx, testSessionID)
	require.NotNil(t, sel)
	assert.Equal(t, "plan-pro", sel.PlanID)
	require.NotNil(t, sel.Plan)
	assert.Equal(t, "Pro", sel.Plan.Name)
}
