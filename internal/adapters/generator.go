package adapters

import (
	"context"
	"net/http"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/service"
)

// CampaignGenerator asks the AI strategy service for one campaign plan
// per platform, filling in default strategies for any platform the
// upstream missed or when the upstream is down entirely.
type CampaignGenerator struct {
	baseURL string
	client  *http.Client
	fb      Fallback
	logger  service.Logger
}

func NewCampaignGenerator(baseURL string, logger service.Logger) *CampaignGenerator {
	return &CampaignGenerator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type strategyRequest struct {
	BusinessInfo models.BusinessInfo `json:"businessInfo"`
	Personas     []models.Persona    `json:"personas"`
	Platforms    []models.Platform   `json:"platforms"`
}

type strategyResponse struct {
	Strategies []models.CampaignStrategy `json:"strategies"`
}

func (g *CampaignGenerator) Generate(ctx context.Context, analysis models.WebsiteAnalysis, platforms []models.Platform) ([]models.CampaignStrategy, error) {
	var resp strategyResponse
	req := strategyRequest{
		BusinessInfo: analysis.BusinessInfo,
		Personas:     analysis.Personas,
		Platforms:    platforms,
	}
	if err := postJSON(ctx, g.client, g.baseURL+"/ai-agency/strategy", req, &resp); err != nil {
		g.logger.Errorf("Strategy upstream failed, using fallback strategies: %v", err)
		return g.fb.Strategies(analysis, platforms), nil
	}

	// One strategy per requested platform; default any the upstream skipped.
	byPlatform := make(map[models.Platform]models.CampaignStrategy, len(resp.Strategies))
	for _, st := range resp.Strategies {
		byPlatform[st.Platform] = st
	}
	strategies := make([]models.CampaignStrategy, 0, len(platforms))
	for _, p := range platforms {
		st, ok := byPlatform[p]
		if !ok {
			g.logger.Infof("Upstream returned no strategy for %s, using fallback", p)
			st = g.fb.Strategy(analysis, p)
		}
		strategies = append(strategies, st)
	}
	g.logger.Infof("Generated %d campaign strategies", len(strategies))
	return strategies, nil
}

func (g *CampaignGenerator) HealthCheck(ctx context.Context) models.Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return models.Health{"api": pingOK(ctx, g.client, g.baseURL+"/health")}
}
