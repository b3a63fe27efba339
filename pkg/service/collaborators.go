package service

import (
	"context"

	"github.com/adflowhq/adflow/pkg/models"
)

// The collaborator contracts below are the seam to the external ad-platform
// and AI integrations. Each one can be slow, flaky, or partially
// successful; the orchestrator treats them as black boxes and never
// assumes a call either fully succeeds or errors.

// WebsiteAnalyzer produces a best-effort analysis of a website. It should
// degrade to a fallback analysis when its data source is unavailable, and
// only error on truly invalid input.
type WebsiteAnalyzer interface {
	Analyze(ctx context.Context, url string) (models.WebsiteAnalysis, error)
	HealthCheck(ctx context.Context) models.Health
}

// CampaignGenerator turns an analysis into one strategy per requested
// platform, falling back to defaults on generation failure.
type CampaignGenerator interface {
	Generate(ctx context.Context, analysis models.WebsiteAnalysis, platforms []models.Platform) ([]models.CampaignStrategy, error)
	HealthCheck(ctx context.Context) models.Health
}

// CampaignLauncher attempts every strategy and returns one result per
// strategy. A single platform's failure is reported in its result entry,
// never as an error for the batch.
type CampaignLauncher interface {
	Launch(ctx context.Context, strategies []models.CampaignStrategy, dryRun bool) ([]models.CampaignLaunchResult, error)
	HealthCheck(ctx context.Context) models.Health
}

// PerformanceTracker fetches metrics for launched campaigns, emitting
// placeholder rows for any campaign it cannot reach so downstream
// aggregation stays stable.
type PerformanceTracker interface {
	Track(ctx context.Context, campaignIDs []string) ([]models.PerformanceMetrics, error)
	HealthCheck(ctx context.Context) models.Health
}

// Collaborators bundles the four pipeline collaborators for injection
// into the workflow service. No module-level singletons: tests substitute
// doubles here.
type Collaborators struct {
	Analyzer  WebsiteAnalyzer
	Generator CampaignGenerator
	Launcher  CampaignLauncher
	Tracker   PerformanceTracker
}
