package models

import (
	"encoding/json"
	"math"
	"time"
)

type WorkflowStatus string

const (
	PendingWorkflowStatus   WorkflowStatus = "pending"
	RunningWorkflowStatus   WorkflowStatus = "running"
	CompletedWorkflowStatus WorkflowStatus = "completed"
	FailedWorkflowStatus    WorkflowStatus = "failed"
)

// Terminal reports whether the status can never change again.
func (s WorkflowStatus) Terminal() bool {
	return s == CompletedWorkflowStatus || s == FailedWorkflowStatus
}

type StepStatus string

const (
	PendingStepStatus   StepStatus = "pending"
	RunningStepStatus   StepStatus = "running"
	CompletedStepStatus StepStatus = "completed"
	FailedStepStatus    StepStatus = "failed"
)

// StepName names one pipeline stage, or the error sentinel.
type StepName string

const (
	AnalysisStep           StepName = "analysis"
	CampaignGenerationStep StepName = "campaign_generation"
	CampaignLaunchStep     StepName = "campaign_launch"
	PerformanceSetupStep   StepName = "performance_setup"
	ErrorStep              StepName = "error"
)

// PipelineSteps is the fixed execution order of the pipeline.
// performance_setup may be skipped when no campaigns were launched.
func PipelineSteps() []StepName {
	return []StepName{AnalysisStep, CampaignGenerationStep, CampaignLaunchStep, PerformanceSetupStep}
}

// WorkflowStep is one state transition event in a workflow's history.
// The result payload is opaque to the orchestrator.
type WorkflowStep struct {
	Step      StepName        `json:"step" db:"step_name"`
	Status    StepStatus      `json:"status" db:"status"`
	Result    json.RawMessage `json:"result,omitempty" db:"result"`
	Error     string          `json:"error,omitempty" db:"error_msg"`
	Timestamp time.Time       `json:"timestamp" db:"created_at"`
}

// Workflow is the aggregate record for one orchestration run.
// Steps is append-only history: a step name appears once per transition
// (running, then completed or failed), never rewritten.
type Workflow struct {
	WorkflowID  string          `json:"workflowId" db:"workflow_id"`
	UserID      string          `json:"userId" db:"user_id"`
	WebsiteURL  string          `json:"websiteUrl" db:"website_url"`
	Status      WorkflowStatus  `json:"status" db:"status"`
	CurrentStep StepName        `json:"currentStep,omitempty" db:"current_step"`
	Steps       []WorkflowStep  `json:"steps"`
	Result      *WorkflowResult `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// WorkflowResult aggregates every collaborator output once the pipeline
// completes. It is the sole payload exposed as the workflow result.
type WorkflowResult struct {
	Analysis      WebsiteAnalysis        `json:"analysis"`
	Strategies    []CampaignStrategy     `json:"strategies"`
	LaunchResults []CampaignLaunchResult `json:"launchResults"`
	CampaignIDs   []string               `json:"campaignIds"`
}

// CompletedSteps counts step records that reached completed.
func (w *Workflow) CompletedSteps() int {
	n := 0
	for _, s := range w.Steps {
		if s.Status == CompletedStepStatus {
			n++
		}
	}
	return n
}

// Progress is the completed-step percentage over the four pipeline steps.
// A running step contributes nothing; a workflow that skipped
// performance_setup tops out at 75 even when completed.
func (w *Workflow) Progress() int {
	total := len(PipelineSteps())
	return int(math.Round(float64(w.CompletedSteps()) / float64(total) * 100))
}

func (w *Workflow) IsComplete() bool {
	return w.Status == CompletedWorkflowStatus
}

func (w *Workflow) HasError() bool {
	return w.Status == FailedWorkflowStatus
}
