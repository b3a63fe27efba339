package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/pkg/errors"
)

// runPipeline is the detached execution entrypoint. The error boundary
// here guarantees the terminal failed-write happens even when a step
// panics; the start request never observes a pipeline error directly.
func (s *WorkflowService) runPipeline(workflowID string, input models.WorkflowInput) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("pipeline panic: %v", r)
			s.logger.Errorf("Workflow %s panicked: %v", workflowID, r)
			s.recordFailure(workflowID, err)
		}
	}()
	if err := s.executePipeline(context.Background(), workflowID, input); err != nil {
		s.logger.Errorf("Workflow %s failed: %v", workflowID, err)
	}
}

// executePipeline runs the four steps strictly in order. Each step is
// recorded as running before its collaborator is invoked and as
// completed (with the result) or failed immediately after; no step
// starts until its predecessor's completed record is persisted.
func (s *WorkflowService) executePipeline(ctx context.Context, workflowID string, input models.WorkflowInput) error {
	if err := s.recordRunning(workflowID, models.AnalysisStep); err != nil {
		return s.abort(workflowID, err)
	}
	analysis, err := s.collab.Analyzer.Analyze(ctx, input.WebsiteURL)
	if err != nil {
		return s.abort(workflowID, errors.Wrap(err, "website analysis"))
	}
	if err := s.recordCompleted(workflowID, models.AnalysisStep, analysis); err != nil {
		return s.abort(workflowID, err)
	}

	if err := s.recordRunning(workflowID, models.CampaignGenerationStep); err != nil {
		return s.abort(workflowID, err)
	}
	strategies, err := s.collab.Generator.Generate(ctx, analysis, input.Platforms)
	if err != nil {
		return s.abort(workflowID, errors.Wrap(err, "campaign generation"))
	}
	if err := s.recordCompleted(workflowID, models.CampaignGenerationStep, strategies); err != nil {
		return s.abort(workflowID, err)
	}

	if err := s.recordRunning(workflowID, models.CampaignLaunchStep); err != nil {
		return s.abort(workflowID, err)
	}
	launchResults, err := s.collab.Launcher.Launch(ctx, strategies, input.DryRun)
	if err != nil {
		return s.abort(workflowID, errors.Wrap(err, "campaign launch"))
	}
	if err := s.recordCompleted(workflowID, models.CampaignLaunchStep, launchResults); err != nil {
		return s.abort(workflowID, err)
	}

	var campaignIDs []string
	for _, res := range launchResults {
		if res.CampaignID != "" {
			campaignIDs = append(campaignIDs, res.CampaignID)
		}
	}

	// No trackable campaigns is not a failure; performance_setup is
	// simply skipped.
	if len(campaignIDs) > 0 {
		if err := s.recordRunning(workflowID, models.PerformanceSetupStep); err != nil {
			return s.abort(workflowID, err)
		}
		metrics, err := s.collab.Tracker.Track(ctx, campaignIDs)
		if err != nil {
			return s.abort(workflowID, errors.Wrap(err, "performance setup"))
		}
		if err := s.recordCompleted(workflowID, models.PerformanceSetupStep, metrics); err != nil {
			return s.abort(workflowID, err)
		}
	}

	result := models.WorkflowResult{
		Analysis:      analysis,
		Strategies:    strategies,
		LaunchResults: launchResults,
		CampaignIDs:   campaignIDs,
	}
	if err := s.markCompleted(workflowID, result); err != nil {
		return s.abort(workflowID, err)
	}
	s.logger.Infof("Workflow %s completed", workflowID)
	return nil
}

// abort converts a step error into the persisted failure state. A
// cancelled workflow already carries its terminal status, so nothing
// more is written for it.
func (s *WorkflowService) abort(workflowID string, cause error) error {
	if stderrors.Is(cause, errWorkflowCancelled) {
		s.logger.Infof("Workflow %s cancelled mid-pipeline, dropping late write", workflowID)
		return cause
	}
	s.recordFailure(workflowID, cause)
	return cause
}

// recordFailure appends the error-sentinel step, which also flips the
// parent status to failed. Best effort: losing this write is acceptable
// only because there is nothing left to corrupt.
func (s *WorkflowService) recordFailure(workflowID string, cause error) {
	step := models.WorkflowStep{
		Step:      models.ErrorStep,
		Status:    models.FailedStepStatus,
		Error:     cause.Error(),
		Timestamp: time.Now(),
	}
	if err := s.appendStep(workflowID, step); err != nil && !stderrors.Is(err, errWorkflowCancelled) {
		s.logger.Errorf("Failed to record failure for workflow %s: %v", workflowID, err)
	}
}

func (s *WorkflowService) recordRunning(workflowID string, step models.StepName) error {
	return s.appendStep(workflowID, models.WorkflowStep{
		Step:      step,
		Status:    models.RunningStepStatus,
		Timestamp: time.Now(),
	})
}

func (s *WorkflowService) recordCompleted(workflowID string, step models.StepName, result interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "encode %s result", step)
	}
	return s.appendStep(workflowID, models.WorkflowStep{
		Step:      step,
		Status:    models.CompletedStepStatus,
		Result:    payload,
		Timestamp: time.Now(),
	})
}

// appendStep persists one step transition inside a transaction. It
// re-reads the workflow first and refuses to write once the status is
// terminal: a concurrent cancel wins over any in-flight step.
func (s *WorkflowService) appendStep(workflowID string, step models.WorkflowStep) (err error) {
	txStore, err := s.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	wf, err := txStore.GetWorkflow(workflowID)
	if err != nil {
		return err
	}
	if wf.Status.Terminal() {
		return errWorkflowCancelled
	}
	if err = txStore.AppendStep(workflowID, step); err != nil {
		return errors.Wrapf(err, "append step %s", step.Step)
	}
	return nil
}

// markCompleted assembles the terminal completed write, guarded the same
// way as step writes.
func (s *WorkflowService) markCompleted(workflowID string, result models.WorkflowResult) (err error) {
	txStore, err := s.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	wf, err := txStore.GetWorkflow(workflowID)
	if err != nil {
		return err
	}
	if wf.Status.Terminal() {
		return errWorkflowCancelled
	}
	wf.Status = models.CompletedWorkflowStatus
	wf.Result = &result
	wf.UpdatedAt = time.Now()
	if err = txStore.SaveWorkflow(wf); err != nil {
		return errors.Wrap(err, "mark workflow completed")
	}
	return nil
}
