package service

import (
	"context"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/pkg/errors"
)

// WorkflowMetrics fetches fresh performance metrics for every campaign a
// workflow launched, grouped by platform with aggregate totals. A
// workflow without launched campaigns yields an empty set with an
// explanatory message rather than an error.
func (s *WorkflowService) WorkflowMetrics(ctx context.Context, workflowID string) (models.WorkflowMetrics, error) {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return models.WorkflowMetrics{}, err
	}

	var campaignIDs []string
	if wf.Result != nil {
		for _, res := range wf.Result.LaunchResults {
			if res.CampaignID != "" {
				campaignIDs = append(campaignIDs, res.CampaignID)
			}
		}
	}
	if len(campaignIDs) == 0 {
		return models.WorkflowMetrics{
			Metrics:     map[models.Platform][]models.PerformanceMetrics{},
			LastUpdated: time.Now(),
			Message:     "No campaigns launched yet",
		}, nil
	}

	metrics, err := s.collab.Tracker.Track(ctx, campaignIDs)
	if err != nil {
		return models.WorkflowMetrics{}, errors.Wrap(err, "track campaigns")
	}

	byPlatform := make(map[models.Platform][]models.PerformanceMetrics)
	var summary models.MetricsSummary
	for _, m := range metrics {
		byPlatform[m.Platform] = append(byPlatform[m.Platform], m)
		summary.TotalSpend += m.Spend
		summary.TotalClicks += m.Clicks
		summary.TotalImpressions += m.Impressions
		summary.TotalConversions += m.Conversions
		summary.AverageROAS += m.ROAS
	}
	// Simple mean across metric rows, not spend-weighted.
	if len(metrics) > 0 {
		summary.AverageROAS /= float64(len(metrics))
	}

	return models.WorkflowMetrics{
		Metrics:       byPlatform,
		Summary:       summary,
		CampaignCount: len(campaignIDs),
		LastUpdated:   time.Now(),
	}, nil
}
