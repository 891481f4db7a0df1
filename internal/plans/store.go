package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

const (
	catalogCacheKey        = "catalog"
	selectedPlanKeyPrefix  = "selected_plan:"
	catalogCacheTTL        = 15 * time.Minute
	catalogCleanupInterval = 30 * time.Minute
)

// Store caches the plan catalog and holds the user's in-progress plan
// selection across the pricing -> signup -> verification -> checkout
// funnel. Only the selection is persisted: the catalog is cheap to refetch,
// but the user's choice must survive the full-page detour to email
// verification.
type Store struct {
	catalog *gocache.Cache
	storage storage.Storage
	api     *backend.PlansClient
	log     *logger.Logger
}

// NewStore creates a Store.
func NewStore(st storage.Storage, api *backend.PlansClient, log *logger.Logger) *Store {
	return &Store{
		catalog: gocache.New(catalogCacheTTL, catalogCleanupInterval),
		storage: st,
		api:     api,
		log:     log,
	}
}

// SetPlans replaces the cached catalog.
func (s *Store) SetPlans(plans []domain.Plan) {
	s.catalog.Set(catalogCacheKey, plans, gocache.DefaultExpiration)
}

// Plans returns the cached catalog, fetching it from the backend when the
// cache is cold.
func (s *Store) Plans(ctx context.Context) ([]domain.Plan, error) {
	if cached, ok := s.catalog.Get(catalogCacheKey); ok {
		return cached.([]domain.Plan), nil
	}
	fetched, err := s.api.FetchPlans(ctx)
	if err != nil {
		return nil, err
	}
	s.SetPlans(fetched)
	return fetched, nil
}

// PlanByID looks up a catalog entry. A persisted selection can outlive a
// catalog change, so an id the cached catalog does not know is asked from
// the backend directly before giving up; nil means the plan truly no
// longer exists.
func (s *Store) PlanByID(ctx context.Context, planID string) *domain.Plan {
	list, err := s.Plans(ctx)
	if err != nil {
		s.log.Debugw("Catalog unavailable for plan lookup", "error", err, "planID", planID)
	}
	for i := range list {
		if list[i].ID == planID {
			return &list[i]
		}
	}

	plan, err := s.api.FetchPlan(ctx, planID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Debugw("Plan lookup failed", "error", err, "planID", planID)
		}
		return nil
	}
	return plan
}

// SetSelectedPlan overwrites the pending selection for the session. It is
// also how an already-selected plan changes billing cycle: the whole record
// is replaced, never merged.
func (s *Store) SetSelectedPlan(ctx context.Context, sessionID string, sel domain.SelectedPlan) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selected plan: %w", err)
	}
	return s.storage.Set(ctx, selectedPlanKeyPrefix+sessionID, string(data), 0)
}

// SelectedPlan returns the pending selection, or nil when none is stored or
// the persisted record is malformed.
func (s *Store) SelectedPlan(ctx context.Context, sessionID string) *domain.SelectedPlan {
	val, err := s.storage.Get(ctx, selectedPlanKeyPrefix+sessionID)
	if err != nil {
		return nil
	}
	var sel domain.SelectedPlan
	if err := json.Unmarshal([]byte(val), &sel); err != nil {
		s.log.Warnw("Discarding malformed selected plan", "error", err, "sessionID", sessionID)
		return nil
	}
	return &sel
}

// ClearSelectedPlan removes the pending selection, after checkout session
// creation or an explicit plan change.
func (s *Store) ClearSelectedPlan(ctx context.Context, sessionID string) error {
	return s.storage.Delete(ctx, selectedPlanKeyPrefix+sessionID)
}
