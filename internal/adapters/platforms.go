package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/service"
)

// googleAdsHandler launches through the PPC backend. When the backend is
// unreachable, a dry run is simulated locally; a real launch fails.
type googleAdsHandler struct {
	baseURL string
	client  *http.Client
	fb      Fallback
	logger  service.Logger
}

type createCampaignRequest struct {
	CampaignName string   `json:"campaign_name"`
	CampaignType string   `json:"campaign_type"`
	Budget       float64  `json:"budget"`
	BidStrategy  string   `json:"bid_strategy"`
	Keywords     []string `json:"keywords"`
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	DryRun       bool     `json:"dry_run"`
}

type createCampaignResponse struct {
	Success    bool                  `json:"success"`
	CampaignID string                `json:"campaign_id"`
	Error      string                `json:"error"`
	Metrics    *models.LaunchMetrics `json:"metrics"`
}

func (h *googleAdsHandler) Launch(ctx context.Context, strategy models.CampaignStrategy, dryRun bool) models.CampaignLaunchResult {
	req := createCampaignRequest{
		CampaignName: fmt.Sprintf("adflow-%d", time.Now().Unix()),
		CampaignType: strategy.CampaignType,
		Budget:       strategy.Budget.Daily,
		BidStrategy:  strategy.BidStrategy,
		Keywords:     strategy.Targeting.Keywords,
		Headlines:    strategy.AdCopy.Headlines,
		Descriptions: strategy.AdCopy.Descriptions,
		DryRun:       dryRun,
	}
	var resp createCampaignResponse
	if err := postJSON(ctx, h.client, h.baseURL+"/api/campaigns/create", req, &resp); err != nil {
		if dryRun {
			h.logger.Errorf("PPC backend unavailable, simulating google dry run: %v", err)
			return h.fb.SimulatedLaunch(models.GooglePlatform)
		}
		return models.CampaignLaunchResult{
			Platform: models.GooglePlatform,
			Status:   models.LaunchFailed,
			Error:    err.Error(),
		}
	}
	if !resp.Success {
		return models.CampaignLaunchResult{
			Platform: models.GooglePlatform,
			Status:   models.LaunchFailed,
			Error:    resp.Error,
		}
	}
	metrics := resp.Metrics
	if metrics == nil {
		metrics = &models.LaunchMetrics{}
	}
	return models.CampaignLaunchResult{
		Platform:   models.GooglePlatform,
		CampaignID: resp.CampaignID,
		Status:     models.LaunchSucceeded,
		Metrics:    metrics,
	}
}

func (h *googleAdsHandler) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pingOK(ctx, h.client, h.baseURL+"/health")
}

// simulatedHandler stands in for platforms whose ads API integration is
// not wired yet: dry runs succeed with a fabricated campaign id, real
// launches report a failed entry.
type simulatedHandler struct {
	platform models.Platform
	fb       Fallback
}

func (h *simulatedHandler) Launch(_ context.Context, _ models.CampaignStrategy, dryRun bool) models.CampaignLaunchResult {
	if dryRun {
		return h.fb.SimulatedLaunch(h.platform)
	}
	return models.CampaignLaunchResult{
		Platform: h.platform,
		Status:   models.LaunchFailed,
		Error:    fmt.Sprintf("%s ads API integration pending", h.platform),
	}
}

func (h *simulatedHandler) HealthCheck(context.Context) bool {
	// Simulation is always available.
	return true
}
