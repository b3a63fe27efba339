package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/service"
)

// PlatformHandler launches campaigns and answers health checks for one
// ad platform. Adding a platform means adding a handler and a registry
// entry, not a string-matched branch.
type PlatformHandler interface {
	Launch(ctx context.Context, strategy models.CampaignStrategy, dryRun bool) models.CampaignLaunchResult
	HealthCheck(ctx context.Context) bool
}

// CampaignLauncher dispatches each strategy to its platform handler and
// collects per-platform results. One platform failing never aborts the
// others; failures surface as failed result entries.
type CampaignLauncher struct {
	handlers map[models.Platform]PlatformHandler
	logger   service.Logger
}

func NewCampaignLauncher(cfg Config, logger service.Logger) *CampaignLauncher {
	fb := Fallback{}
	client := &http.Client{Timeout: 30 * time.Second}
	return &CampaignLauncher{
		handlers: map[models.Platform]PlatformHandler{
			models.GooglePlatform: &googleAdsHandler{baseURL: cfg.PPCBackendURL, client: client, fb: fb, logger: logger},
			models.MetaPlatform:   &simulatedHandler{platform: models.MetaPlatform, fb: fb},
			models.RedditPlatform: &simulatedHandler{platform: models.RedditPlatform, fb: fb},
			models.XPlatform:      &simulatedHandler{platform: models.XPlatform, fb: fb},
		},
		logger: logger,
	}
}

func (l *CampaignLauncher) Launch(ctx context.Context, strategies []models.CampaignStrategy, dryRun bool) ([]models.CampaignLaunchResult, error) {
	l.logger.Infof("Launching %d campaigns (dryRun: %v)", len(strategies), dryRun)
	results := make([]models.CampaignLaunchResult, 0, len(strategies))
	for _, strategy := range strategies {
		handler, ok := l.handlers[strategy.Platform]
		if !ok {
			results = append(results, models.CampaignLaunchResult{
				Platform: strategy.Platform,
				Status:   models.LaunchFailed,
				Error:    fmt.Sprintf("unsupported platform: %s", strategy.Platform),
			})
			continue
		}
		result := handler.Launch(ctx, strategy, dryRun)
		if result.Status == models.LaunchFailed {
			l.logger.Errorf("Launch failed for %s: %s", strategy.Platform, result.Error)
		}
		results = append(results, result)
	}
	return results, nil
}

func (l *CampaignLauncher) HealthCheck(ctx context.Context) models.Health {
	health := make(models.Health, len(l.handlers))
	for platform, handler := range l.handlers {
		health[string(platform)] = handler.HealthCheck(ctx)
	}
	return health
}
