package service

import (
	"context"

	"github.com/adflowhq/adflow/pkg/models"
	"golang.org/x/sync/errgroup"
)

// HealthCheck fans out to the four collaborators and the store in
// parallel and reports each sub-system's result. The aggregate is
// healthy only if every sub-system is up.
func (s *WorkflowService) HealthCheck(ctx context.Context) models.HealthReport {
	var report models.HealthReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.WebsiteAnalyzer = s.collab.Analyzer.HealthCheck(ctx)
		return nil
	})
	g.Go(func() error {
		report.CampaignGenerator = s.collab.Generator.HealthCheck(ctx)
		return nil
	})
	g.Go(func() error {
		report.CampaignLauncher = s.collab.Launcher.HealthCheck(ctx)
		return nil
	})
	g.Go(func() error {
		report.PerformanceTracker = s.collab.Tracker.HealthCheck(ctx)
		return nil
	})
	g.Go(func() error {
		report.Database = models.Health{"postgres": s.store.Ping() == nil}
		return nil
	})
	_ = g.Wait()

	return report
}
