package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adflowhq/adflow/pkg/models"
)

type nopLogger struct{}

func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}

// downURL returns a base URL that refuses connections.
func downURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

func TestWebsiteAnalyzer(t *testing.T) {

	t.Run("UpstreamResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/analyze", r.URL.Path)
			var req map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://example.com", req["url"])
			json.NewEncoder(w).Encode(models.WebsiteAnalysis{
				BusinessInfo: models.BusinessInfo{Title: "Example Corp", Industry: "Retail"},
				AdReadiness:  models.AdReadiness{Score: 90},
			})
		}))
		defer srv.Close()

		a := NewWebsiteAnalyzer(srv.URL, nopLogger{})
		analysis, err := a.Analyze(context.Background(), "https://example.com")
		assert.NoError(t, err)
		assert.Equal(t, "Example Corp", analysis.BusinessInfo.Title)
		assert.Equal(t, 90, analysis.AdReadiness.Score)
	})

	t.Run("UpstreamDownFallsBack", func(t *testing.T) {
		a := NewWebsiteAnalyzer(downURL(), nopLogger{})
		analysis, err := a.Analyze(context.Background(), "https://example.com")
		assert.NoError(t, err)
		assert.Equal(t, "Business at example.com", analysis.BusinessInfo.Title)
		assert.Equal(t, 65, analysis.AdReadiness.Score)
		assert.NotEmpty(t, analysis.Personas)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		a := NewWebsiteAnalyzer(downURL(), nopLogger{})
		_, err := a.Analyze(context.Background(), "not-a-url")
		assert.Error(t, err)
	})

	t.Run("HealthCheck", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
		}))
		defer srv.Close()

		assert.True(t, NewWebsiteAnalyzer(srv.URL, nopLogger{}).HealthCheck(context.Background())["api"])
		assert.False(t, NewWebsiteAnalyzer(downURL(), nopLogger{}).HealthCheck(context.Background())["api"])
	})
}

func TestCampaignGenerator(t *testing.T) {
	analysis := models.WebsiteAnalysis{
		BusinessInfo: models.BusinessInfo{Title: "Example Corp", Description: "Sells examples"},
	}

	t.Run("FillsMissingPlatforms", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ai-agency/strategy", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"strategies": []models.CampaignStrategy{
					{Platform: models.GooglePlatform, CampaignType: "Performance Max"},
				},
			})
		}))
		defer srv.Close()

		g := NewCampaignGenerator(srv.URL, nopLogger{})
		strategies, err := g.Generate(context.Background(), analysis, []models.Platform{models.GooglePlatform, models.MetaPlatform})
		assert.NoError(t, err)
		assert.Len(t, strategies, 2)
		assert.Equal(t, "Performance Max", strategies[0].CampaignType)
		// Meta was not in the upstream answer, so it gets the default plan.
		assert.Equal(t, models.MetaPlatform, strategies[1].Platform)
		assert.Equal(t, "Conversion", strategies[1].CampaignType)
	})

	t.Run("UpstreamDownFallsBack", func(t *testing.T) {
		g := NewCampaignGenerator(downURL(), nopLogger{})
		strategies, err := g.Generate(context.Background(), analysis, []models.Platform{models.GooglePlatform})
		assert.NoError(t, err)
		assert.Len(t, strategies, 1)
		assert.Equal(t, "Search", strategies[0].CampaignType)
		assert.Contains(t, strategies[0].Targeting.Keywords, "example corp")
	})
}

func TestCampaignLauncher(t *testing.T) {

	t.Run("DryRunSimulatesWhenBackendDown", func(t *testing.T) {
		cfg := Config{PPCBackendURL: downURL()}
		l := NewCampaignLauncher(cfg, nopLogger{})

		strategies := []models.CampaignStrategy{
			{Platform: models.GooglePlatform},
			{Platform: models.MetaPlatform},
		}
		results, err := l.Launch(context.Background(), strategies, true)
		assert.NoError(t, err)
		assert.Len(t, results, 2)
		assert.Equal(t, models.LaunchSucceeded, results[0].Status)
		assert.True(t, strings.HasPrefix(results[0].CampaignID, "google_"))
		assert.Equal(t, models.LaunchSucceeded, results[1].Status)
		assert.True(t, strings.HasPrefix(results[1].CampaignID, "meta_"))
	})

	t.Run("RealLaunchFailsWhenBackendDown", func(t *testing.T) {
		cfg := Config{PPCBackendURL: downURL()}
		l := NewCampaignLauncher(cfg, nopLogger{})

		strategies := []models.CampaignStrategy{
			{Platform: models.GooglePlatform},
			{Platform: models.RedditPlatform},
		}
		results, err := l.Launch(context.Background(), strategies, false)
		assert.NoError(t, err)
		assert.Equal(t, models.LaunchFailed, results[0].Status)
		assert.Empty(t, results[0].CampaignID)
		assert.Equal(t, models.LaunchFailed, results[1].Status)
		assert.Contains(t, results[1].Error, "integration pending")
	})

	t.Run("BackendLaunch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/campaigns/create", r.URL.Path)
			var req map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, false, req["dry_run"])
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":     true,
				"campaign_id": "google_live_42",
			})
		}))
		defer srv.Close()

		l := NewCampaignLauncher(Config{PPCBackendURL: srv.URL}, nopLogger{})
		results, err := l.Launch(context.Background(), []models.CampaignStrategy{{Platform: models.GooglePlatform}}, false)
		assert.NoError(t, err)
		assert.Equal(t, models.LaunchSucceeded, results[0].Status)
		assert.Equal(t, "google_live_42", results[0].CampaignID)
	})

	t.Run("BackendRejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "budget policy violation",
			})
		}))
		defer srv.Close()

		l := NewCampaignLauncher(Config{PPCBackendURL: srv.URL}, nopLogger{})
		results, err := l.Launch(context.Background(), []models.CampaignStrategy{{Platform: models.GooglePlatform}}, false)
		assert.NoError(t, err)
		assert.Equal(t, models.LaunchFailed, results[0].Status)
		assert.Equal(t, "budget policy violation", results[0].Error)
	})

	t.Run("UnsupportedPlatform", func(t *testing.T) {
		l := NewCampaignLauncher(Config{PPCBackendURL: downURL()}, nopLogger{})
		results, err := l.Launch(context.Background(), []models.CampaignStrategy{{Platform: "tiktok"}}, true)
		assert.NoError(t, err)
		assert.Equal(t, models.LaunchFailed, results[0].Status)
		assert.Contains(t, results[0].Error, "unsupported platform")
	})

	t.Run("HealthCheckPerPlatform", func(t *testing.T) {
		l := NewCampaignLauncher(Config{PPCBackendURL: downURL()}, nopLogger{})
		health := l.HealthCheck(context.Background())
		assert.False(t, health["google"])
		// Simulated platforms are always available.
		assert.True(t, health["meta"])
		assert.True(t, health["reddit"])
		assert.True(t, health["x"])
	})
}

func TestPerformanceTracker(t *testing.T) {

	t.Run("GoogleMetricsFromBackend", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/campaigns/google_1/metrics", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"impressions": 1000,
				"clicks":      50,
				"conversions": 5,
				"spend":       120.5,
				"roas":        3.2,
			})
		}))
		defer srv.Close()

		tr := NewPerformanceTracker(srv.URL, nopLogger{})
		rows, err := tr.Track(context.Background(), []string{"google_1"})
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, models.GooglePlatform, rows[0].Platform)
		assert.Equal(t, int64(1000), rows[0].Impressions)
		assert.Equal(t, 120.5, rows[0].Spend)
		assert.Equal(t, 3.2, rows[0].ROAS)
	})

	t.Run("NonGooglePlaceholder", func(t *testing.T) {
		tr := NewPerformanceTracker(downURL(), nopLogger{})
		rows, err := tr.Track(context.Background(), []string{"meta_7", "x_9"})
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, models.MetaPlatform, rows[0].Platform)
		assert.Zero(t, rows[0].Spend)
		assert.Equal(t, models.XPlatform, rows[1].Platform)
	})

	t.Run("BackendDownPlaceholder", func(t *testing.T) {
		tr := NewPerformanceTracker(downURL(), nopLogger{})
		rows, err := tr.Track(context.Background(), []string{"google_1", "cmp-unprefixed"})
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, "google_1", rows[0].CampaignID)
		assert.Zero(t, rows[0].Impressions)
		// Unprefixed ids are assumed to be PPC backend campaigns.
		assert.Equal(t, models.GooglePlatform, rows[1].Platform)
	})
}
