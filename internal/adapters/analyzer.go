package adapters

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/service"
	"github.com/pkg/errors"
)

// WebsiteAnalyzer calls the external analysis service and degrades to a
// generated default analysis when the upstream is unreachable. Only a
// malformed URL is an error.
type WebsiteAnalyzer struct {
	baseURL string
	client  *http.Client
	fb      Fallback
	logger  service.Logger
}

func NewWebsiteAnalyzer(baseURL string, logger service.Logger) *WebsiteAnalyzer {
	return &WebsiteAnalyzer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

func (a *WebsiteAnalyzer) Analyze(ctx context.Context, rawURL string) (models.WebsiteAnalysis, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return models.WebsiteAnalysis{}, errors.Errorf("invalid website URL %q", rawURL)
	}

	var analysis models.WebsiteAnalysis
	reqBody := map[string]string{"url": rawURL}
	if err := postJSON(ctx, a.client, a.baseURL+"/analyze", reqBody, &analysis); err != nil {
		a.logger.Errorf("Website analysis upstream failed for %s, using fallback: %v", rawURL, err)
		return a.fb.Analysis(rawURL), nil
	}
	a.logger.Infof("Website analysis completed for %s", rawURL)
	return analysis, nil
}

func (a *WebsiteAnalyzer) HealthCheck(ctx context.Context) models.Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return models.Health{"api": pingOK(ctx, a.client, a.baseURL+"/health")}
}
