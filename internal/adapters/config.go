package adapters

import (
	"os"

	"github.com/adflowhq/adflow/pkg/service"
)

// Config carries the base URLs of the external collaborator services.
type Config struct {
	AnalyzerURL   string
	AIAgencyURL   string
	PPCBackendURL string
}

// ConfigFromEnv reads collaborator URLs from the environment, with the
// conventional local defaults.
func ConfigFromEnv() Config {
	return Config{
		AnalyzerURL:   envOr("ANALYZER_URL", "http://localhost:8000"),
		AIAgencyURL:   envOr("AI_AGENCY_API_URL", "http://localhost:8000"),
		PPCBackendURL: envOr("PPC_BACKEND_URL", "http://localhost:8080"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewCollaborators wires the production adapters for injection into the
// workflow service.
func NewCollaborators(cfg Config, logger service.Logger) service.Collaborators {
	return service.Collaborators{
		Analyzer:  NewWebsiteAnalyzer(cfg.AnalyzerURL, logger),
		Generator: NewCampaignGenerator(cfg.AIAgencyURL, logger),
		Launcher:  NewCampaignLauncher(cfg, logger),
		Tracker:   NewPerformanceTracker(cfg.PPCBackendURL, logger),
	}
}
