package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/pkg/logger"
)

// PlansClient reads the plan catalog and records the user's plan intent on
// the backend once they are authenticated.
type PlansClient struct {
	api *Client
	log *logger.Logger
}

// NewPlansClient creates a PlansClient.
func NewPlansClient(api *Client, log *logger.Logger) *PlansClient {
	return &PlansClient{api: api, log: log}
}

// FetchPlans returns the full plan catalog.
func (p *PlansClient) FetchPlans(ctx context.Context) ([]domain.Plan, error) {
	resp, err := p.api.do(ctx, http.MethodGet, "/plans", "", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch plans: %s", errorMessage(resp))
	}
	return decodeJSON[[]domain.Plan](resp)
}

// FetchPlan returns a single catalog entry, or ErrNotFound for an unknown
// id.
func (p *PlansClient) FetchPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	resp, err := p.api.do(ctx, http.MethodGet, "/plans/"+planID, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch plan %s: %s", planID, errorMessage(resp))
	}
	plan, err := decodeJSON[domain.Plan](resp)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateSelectedPlan records the plan intent on the user's backend record
// after authentication, so the selection survives a device change.
func (p *PlansClient) UpdateSelectedPlan(ctx context.Context, token, planID string) error {
	resp, err := p.api.do(ctx, http.MethodPatch, "/users/selected-plan", token, map[string]string{"planId": planID})
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to update selected plan: %s", errorMessage(resp))
	}
	resp.Body.Close()
	return nil
}
