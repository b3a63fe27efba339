package adapters

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
)

// Fallback generates usable default payloads for every collaborator, so
// an unavailable external system degrades the pipeline instead of
// halting it. All fallback data lives here, not inline in the adapters.
type Fallback struct{}

var defaultCampaignTypes = map[models.Platform]string{
	models.GooglePlatform: "Search",
	models.MetaPlatform:   "Conversion",
	models.RedditPlatform: "Promoted Posts",
	models.XPlatform:      "Promoted Tweets",
}

var defaultBidStrategies = map[models.Platform]string{
	models.GooglePlatform: "MAXIMIZE_CONVERSIONS",
	models.MetaPlatform:   "LOWEST_COST_WITH_BID_CAP",
	models.RedditPlatform: "AUTOMATIC",
	models.XPlatform:      "AUTO_BID",
}

// Analysis builds a degraded default analysis for a website whose
// analyzer upstream is unreachable.
func (Fallback) Analysis(rawURL string) models.WebsiteAnalysis {
	domain := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		domain = u.Host
	}
	return models.WebsiteAnalysis{
		BusinessInfo: models.BusinessInfo{
			Title:        fmt.Sprintf("Business at %s", domain),
			Description:  fmt.Sprintf("Analyzing %s for advertising opportunities", domain),
			Industry:     "Technology",
			BusinessType: "B2B",
		},
		Personas: []models.Persona{defaultPersona()},
		CompetitorInsights: models.CompetitorInsights{
			Competitors: []string{},
			AdOpportunities: []string{
				"Search advertising opportunity",
				"Social media presence needed",
				"Content marketing potential",
			},
		},
		AdReadiness: models.AdReadiness{
			Score: 65,
			Recommendations: []string{
				"Complete website analysis manually",
				"Setup analytics tracking",
				"Define target audience",
				"Create landing page variants",
			},
		},
	}
}

func defaultPersona() models.Persona {
	return models.Persona{
		Demographics: map[string]string{
			"age":      "25-45",
			"location": "Urban",
			"income":   "Middle to High",
		},
		Interests:  []string{"Technology", "Business", "Productivity"},
		PainPoints: []string{"Time management", "Efficiency", "Cost optimization"},
		ValueProps: []string{"Save time", "Increase efficiency", "Reduce costs"},
	}
}

// Strategies produces one default strategy per requested platform.
func (f Fallback) Strategies(analysis models.WebsiteAnalysis, platforms []models.Platform) []models.CampaignStrategy {
	strategies := make([]models.CampaignStrategy, 0, len(platforms))
	for _, p := range platforms {
		strategies = append(strategies, f.Strategy(analysis, p))
	}
	return strategies
}

// Strategy builds the default campaign plan for one platform from
// whatever the analysis carries.
func (f Fallback) Strategy(analysis models.WebsiteAnalysis, platform models.Platform) models.CampaignStrategy {
	interests := []string{"Technology", "Business"}
	if len(analysis.Personas) > 0 && len(analysis.Personas[0].Interests) > 0 {
		interests = analysis.Personas[0].Interests
	}
	business := analysis.BusinessInfo.Title
	if business == "" {
		business = "Your Business"
	}
	description := analysis.BusinessInfo.Description
	if description == "" {
		description = "Powerful business solution designed to boost your productivity and growth."
	}
	return models.CampaignStrategy{
		Platform:     platform,
		CampaignType: defaultCampaignTypes[platform],
		Targeting: models.Targeting{
			Demographics: map[string]string{
				"age":      "25-54",
				"gender":   "all",
				"location": "US",
			},
			Interests: interests,
			Keywords: []string{
				strings.ToLower(business),
				strings.ToLower(business) + " software",
				strings.ToLower(business) + " platform",
				"business automation",
				"productivity tools",
			},
		},
		AdCopy: models.AdCopy{
			Headlines: []string{
				fmt.Sprintf("Transform Your Business with %s", business),
				fmt.Sprintf("%s - The Smart Solution", business),
				fmt.Sprintf("Get Started with %s Today", business),
			},
			Descriptions: []string{
				description,
				"Join thousands of satisfied customers who trust our platform.",
				"Easy setup, powerful results. Get started in minutes.",
			},
			CallToActions: []string{"Get Started Free", "Start Free Trial", "Learn More", "Book Demo"},
		},
		Budget:      models.Budget{Daily: 100, Total: 3000},
		BidStrategy: defaultBidStrategies[platform],
	}
}

// SimulatedLaunch fabricates a successful dry-run launch result with a
// platform-prefixed campaign id.
func (Fallback) SimulatedLaunch(platform models.Platform) models.CampaignLaunchResult {
	return models.CampaignLaunchResult{
		Platform:   platform,
		CampaignID: fmt.Sprintf("%s%d", platform.CampaignIDPrefix(), time.Now().UnixNano()),
		Status:     models.LaunchSucceeded,
		Metrics:    &models.LaunchMetrics{},
	}
}

// PlaceholderMetrics is the zeroed row emitted for a campaign whose
// metrics source is unreachable, so aggregation stays stable.
func (Fallback) PlaceholderMetrics(campaignID string, platform models.Platform) models.PerformanceMetrics {
	return models.PerformanceMetrics{
		CampaignID: campaignID,
		Platform:   platform,
		Timestamp:  time.Now(),
	}
}
