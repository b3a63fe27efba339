package service

import (
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Logger defines the logging interface for WorkflowService
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// EstimatedDuration is the rough end-to-end pipeline duration reported to
// clients when a workflow is started.
const EstimatedDuration = "5-10 minutes"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var (
	// ErrWorkflowTerminal is returned when cancelling a workflow that
	// already reached completed or failed.
	ErrWorkflowTerminal = errors.New("workflow already in a terminal state")

	// errWorkflowCancelled aborts an in-flight pipeline whose workflow
	// was cancelled underneath it. The late step write is dropped rather
	// than resurrecting the cancelled run.
	errWorkflowCancelled = errors.New("workflow cancelled")
)

// WorkflowService orchestrates advertising workflows: it validates and
// persists the creation request, runs the four-step pipeline detached
// from the caller, and serves the persisted state back for polling.
// Transitions are owned exclusively by the pipeline goroutine; readers
// only derive projections, with cancellation as the one terminal override.
type WorkflowService struct {
	store  storage.Store
	collab Collaborators
	logger Logger
}

func NewWorkflowService(store storage.Store, collab Collaborators, logger Logger) *WorkflowService {
	return &WorkflowService{
		store:  store,
		collab: collab,
		logger: logger,
	}
}

// StartWorkflow validates the input, persists the initial pending record
// and returns the generated workflow id immediately. The pipeline runs as
// a detached goroutine; callers discover progress by polling.
func (s *WorkflowService) StartWorkflow(input models.WorkflowInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}

	workflowID := "wf_" + uuid.NewString()
	now := time.Now()
	wf := models.Workflow{
		WorkflowID: workflowID,
		UserID:     input.UserID,
		WebsiteURL: input.WebsiteURL,
		Status:     models.PendingWorkflowStatus,
		Steps:      []models.WorkflowStep{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return "", err
	}
	if err := txStore.SaveWorkflow(wf); err != nil {
		if rollbackErr := txStore.Rollback(); rollbackErr != nil {
			s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
		}
		return "", errors.Wrap(err, "save initial workflow")
	}
	// The pipeline may only start once the pending record is committed:
	// its first step write runs in its own transaction and would miss an
	// uncommitted row, stranding the workflow without a terminal write.
	if err := txStore.Commit(); err != nil {
		s.logger.Errorf("Failed to commit: %v", err)
		return "", err
	}

	s.logger.Infof("Created workflow %s for %s", workflowID, input.WebsiteURL)
	go s.runPipeline(workflowID, input)
	return workflowID, nil
}

// GetWorkflow fetches the persisted workflow with its step history.
func (s *WorkflowService) GetWorkflow(workflowID string) (models.Workflow, error) {
	return s.store.GetWorkflow(workflowID)
}

// ListUserWorkflows returns a user's workflows newest-first, bounded by
// limit (defaulted and capped).
func (s *WorkflowService) ListUserWorkflows(userID string, limit int) ([]models.Workflow, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.ListUserWorkflows(userID, limit)
}

// Cancel force-sets a non-terminal workflow to failed. This is a blunt
// override, not a cooperative signal: an in-flight step runs to
// completion, but its late writes are dropped by the terminal-status
// guard in appendStep.
func (s *WorkflowService) Cancel(workflowID string) (err error) {
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
		return ErrWorkflowTerminal
	}

	wf.Status = models.FailedWorkflowStatus
	wf.UpdatedAt = time.Now()
	if err = txStore.SaveWorkflow(wf); err != nil {
		return errors.Wrap(err, "cancel workflow")
	}
	s.logger.Infof("Cancelled workflow %s", workflowID)
	return nil
}
