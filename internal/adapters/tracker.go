package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/service"
)

// PerformanceTracker reads campaign metrics from the PPC backend for
// google campaigns and emits placeholder rows for platforms tracked
// elsewhere, so a partially reachable fleet still aggregates cleanly.
type PerformanceTracker struct {
	baseURL string
	client  *http.Client
	fb      Fallback
	logger  service.Logger
}

func NewPerformanceTracker(baseURL string, logger service.Logger) *PerformanceTracker {
	return &PerformanceTracker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		fb:      Fallback{},
		logger:  logger,
	}
}

type campaignMetricsResponse struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	ROAS        float64 `json:"roas"`
}

func (t *PerformanceTracker) Track(ctx context.Context, campaignIDs []string) ([]models.PerformanceMetrics, error) {
	rows := make([]models.PerformanceMetrics, 0, len(campaignIDs))
	for _, id := range campaignIDs {
		platform, ok := models.PlatformFromCampaignID(id)
		if !ok {
			// Unprefixed ids come from the PPC backend directly.
			platform = models.GooglePlatform
		}
		if platform != models.GooglePlatform {
			rows = append(rows, t.fb.PlaceholderMetrics(id, platform))
			continue
		}
		var resp campaignMetricsResponse
		url := fmt.Sprintf("%s/api/campaigns/%s/metrics", t.baseURL, id)
		if err := getJSON(ctx, t.client, url, &resp); err != nil {
			t.logger.Errorf("metrics fetch for campaign %s failed: %v", id, err)
			rows = append(rows, t.fb.PlaceholderMetrics(id, platform))
			continue
		}
		rows = append(rows, models.PerformanceMetrics{
			CampaignID:  id,
			Platform:    platform,
			Impressions: resp.Impressions,
			Clicks:      resp.Clicks,
			Conversions: resp.Conversions,
			Spend:       resp.Spend,
			CTR:         resp.CTR,
			CPC:         resp.CPC,
			ROAS:        resp.ROAS,
			Timestamp:   time.Now(),
		})
	}
	return rows, nil
}

func (t *PerformanceTracker) HealthCheck(ctx context.Context) models.Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return models.Health{"api": pingOK(ctx, t.client, t.baseURL+"/health")}
}
