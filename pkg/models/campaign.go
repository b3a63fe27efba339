package models

import "time"

// BusinessInfo summarizes what the analyzed website is about.
type BusinessInfo struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Industry     string `json:"industry"`
	BusinessType string `json:"businessType"`
}

// Persona is one audience segment derived from the website analysis.
type Persona struct {
	Demographics map[string]string `json:"demographics"`
	Interests    []string          `json:"interests"`
	PainPoints   []string          `json:"painPoints"`
	ValueProps   []string          `json:"valueProps"`
}

type CompetitorInsights struct {
	Competitors     []string `json:"competitors"`
	AdOpportunities []string `json:"adOpportunities"`
}

type AdReadiness struct {
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations"`
}

// WebsiteAnalysis is the analyzer collaborator's output.
type WebsiteAnalysis struct {
	BusinessInfo       BusinessInfo       `json:"businessInfo"`
	Personas           []Persona          `json:"personas"`
	CompetitorInsights CompetitorInsights `json:"competitorInsights"`
	AdReadiness        AdReadiness        `json:"adReadiness"`
}

type Targeting struct {
	Demographics map[string]string `json:"demographics"`
	Interests    []string          `json:"interests"`
	Keywords     []string          `json:"keywords"`
}

type AdCopy struct {
	Headlines     []string `json:"headlines"`
	Descriptions  []string `json:"descriptions"`
	CallToActions []string `json:"callToActions"`
}

type Budget struct {
	Daily float64 `json:"daily"`
	Total float64 `json:"total"`
}

// CampaignStrategy is one generated campaign plan for one platform.
type CampaignStrategy struct {
	Platform     Platform  `json:"platform"`
	CampaignType string    `json:"campaignType"`
	Targeting    Targeting `json:"targeting"`
	AdCopy       AdCopy    `json:"adCopy"`
	Budget       Budget    `json:"budget"`
	BidStrategy  string    `json:"bidStrategy"`
}

type LaunchStatus string

const (
	LaunchSucceeded LaunchStatus = "success"
	LaunchFailed    LaunchStatus = "failed"
)

type LaunchMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
}

// CampaignLaunchResult reports the outcome of one platform launch attempt.
// A failed entry never aborts the other platforms.
type CampaignLaunchResult struct {
	Platform   Platform       `json:"platform"`
	CampaignID string         `json:"campaignId,omitempty"`
	Status     LaunchStatus   `json:"status"`
	Error      string         `json:"error,omitempty"`
	Metrics    *LaunchMetrics `json:"metrics,omitempty"`
}

// PerformanceMetrics is one metrics row for one campaign.
type PerformanceMetrics struct {
	CampaignID  string    `json:"campaignId"`
	Platform    Platform  `json:"platform"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Spend       float64   `json:"spend"`
	CTR         float64   `json:"ctr"`
	CPC         float64   `json:"cpc"`
	ROAS        float64   `json:"roas"`
	Timestamp   time.Time `json:"timestamp"`
}

// MetricsSummary aggregates totals across every campaign of a workflow.
// AverageROAS is a simple mean across metric rows, not spend-weighted.
type MetricsSummary struct {
	TotalSpend       float64 `json:"totalSpend"`
	TotalClicks      int64   `json:"totalClicks"`
	TotalImpressions int64   `json:"totalImpressions"`
	TotalConversions int64   `json:"totalConversions"`
	AverageROAS      float64 `json:"averageROAS"`
}

// WorkflowMetrics is the metrics projection served for one workflow.
type WorkflowMetrics struct {
	Metrics       map[Platform][]PerformanceMetrics `json:"metrics"`
	Summary       MetricsSummary                    `json:"summary"`
	CampaignCount int                               `json:"campaignCount"`
	LastUpdated   time.Time                         `json:"lastUpdated"`
	Message       string                            `json:"message,omitempty"`
}

// Health is a set of named sub-check results for one collaborator.
type Health map[string]bool

// Up applies the lenient aggregation: a collaborator with at least one
// healthy sub-check is still partially useful, so it counts as up.
func (h Health) Up() bool {
	for _, ok := range h {
		if ok {
			return true
		}
	}
	return false
}

// HealthReport enumerates every sub-system checked by the health endpoint.
type HealthReport struct {
	WebsiteAnalyzer    Health `json:"websiteAnalyzer"`
	CampaignGenerator  Health `json:"campaignGenerator"`
	CampaignLauncher   Health `json:"campaignLauncher"`
	PerformanceTracker Health `json:"performanceTracker"`
	Database           Health `json:"database"`
}

// Healthy is true only when every sub-system is up.
func (r HealthReport) Healthy() bool {
	for _, h := range []Health{r.WebsiteAnalyzer, r.CampaignGenerator, r.CampaignLauncher, r.PerformanceTracker, r.Database} {
		if !h.Up() {
			return false
		}
	}
	return true
}
