package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/adflowhq/adflow/internal/log"
	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/service"
	"github.com/adflowhq/adflow/pkg/storage"
)

// StartServer mounts the workflow API and blocks serving it.
func StartServer(port string, svc *service.WorkflowService) error {
	mux := NewRouter(svc)
	log.GetLogger().Infof("Starting AdFlow server on :%s", port)
	return http.ListenAndServe(":"+port, mux)
}

// NewRouter builds the workflow API mux. Split from StartServer so tests
// can mount it on an httptest server.
func NewRouter(svc *service.WorkflowService) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /workflow/start", startWorkflowHTTP(svc))
	mux.HandleFunc("GET /workflow/health", healthHTTP(svc))
	mux.HandleFunc("GET /workflow/user/{userId}", listUserWorkflowsHTTP(svc))
	mux.HandleFunc("GET /workflow/{id}/status", workflowStatusHTTP(svc))
	mux.HandleFunc("GET /workflow/{id}/metrics", workflowMetricsHTTP(svc))
	mux.HandleFunc("DELETE /workflow/{id}", cancelWorkflowHTTP(svc))
	return mux
}

type startRequest struct {
	WebsiteURL string   `json:"websiteUrl"`
	UserID     string   `json:"userId"`
	Platforms  []string `json:"platforms"`
	Budget     float64  `json:"budget"`
	DryRun     *bool    `json:"dryRun"`
}

func startWorkflowHTTP(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		input := models.WorkflowInput{
			WebsiteURL: req.WebsiteURL,
			UserID:     req.UserID,
			Budget:     req.Budget,
			DryRun:     true,
		}
		if req.DryRun != nil {
			input.DryRun = *req.DryRun
		}
		for _, p := range req.Platforms {
			input.Platforms = append(input.Platforms, models.Platform(p))
		}

		id, err := svc.StartWorkflow(input)
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{
					"success": false,
					"error":   "Validation error",
					"details": verr.Fields,
				})
				return
			}
			log.GetLogger().Errorf("Failed to start workflow: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to start workflow")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":           true,
			"workflowId":        id,
			"message":           "Workflow started successfully",
			"estimatedDuration": service.EstimatedDuration,
		})
	}
}

// workflowStatus is the status projection: the persisted workflow plus
// the derived polling fields.
type workflowStatus struct {
	models.Workflow
	Progress   int  `json:"progress"`
	IsComplete bool `json:"isComplete"`
	HasError   bool `json:"hasError"`
}

func workflowStatusHTTP(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, err := svc.GetWorkflow(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Workflow not found")
				return
			}
			log.GetLogger().Errorf("Failed to get workflow: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to get workflow status")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"workflow": workflowStatus{
				Workflow:   wf,
				Progress:   wf.Progress(),
				IsComplete: wf.IsComplete(),
				HasError:   wf.HasError(),
			},
		})
	}
}

func workflowMetricsHTTP(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		metrics, err := svc.WorkflowMetrics(ctx, r.PathValue("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Workflow not found")
				return
			}
			log.GetLogger().Errorf("Failed to get workflow metrics: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to get workflow metrics")
			return
		}
		payload := map[string]interface{}{
			"success":       true,
			"metrics":       metrics.Metrics,
			"summary":       metrics.Summary,
			"campaignCount": metrics.CampaignCount,
			"lastUpdated":   metrics.LastUpdated,
		}
		if metrics.Message != "" {
			payload["message"] = metrics.Message
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func listUserWorkflowsHTTP(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		workflows, err := svc.ListUserWorkflows(r.PathValue("userId"), limit)
		if err != nil {
			log.GetLogger().Errorf("Failed to list workflows: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list workflows")
			return
		}
		if workflows == nil {
			workflows = []models.Workflow{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"workflows": workflows,
			"count":     len(workflows),
		})
	}
}

func cancelWorkflowHTTP(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Cancel(r.PathValue("id"))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "Workflow cancelled successfully",
			})
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Workflow not found")
		case errors.Is(err, service.ErrWorkflowTerminal):
			writeError(w, http.StatusBadRequest, "Cannot cancel completed workflow")
		default:
			log.GetLogger().Errorf("Failed to cancel workflow: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to cancel workflow")
		}
	}
}

func healthHTTP(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		report := svc.HealthCheck(ctx)
		status := http.StatusOK
		message := "All services healthy"
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
			message = "Some services are unavailable"
		}
		writeJSON(w, status, map[string]interface{}{
			"success":   report.Healthy(),
			"services":  report,
			"timestamp": time.Now(),
			"message":   message,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
