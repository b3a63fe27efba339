package storage

import (
	"github.com/adflowhq/adflow/pkg/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by point lookups for unknown workflow ids.
var ErrNotFound = errors.New("workflow not found")

// Store defines the persistence operations the orchestrator needs.
type Store interface {
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Ping verifies the backing store is reachable.
	Ping() error

	// SaveWorkflow upserts the aggregate record keyed by workflow id.
	SaveWorkflow(wf models.Workflow) error

	// GetWorkflow returns the workflow with its full step history,
	// or ErrNotFound.
	GetWorkflow(workflowID string) (models.Workflow, error)

	// AppendStep records one step transition and updates the parent's
	// currentStep/status projection in the same logical write, so a
	// crash between the two never leaves them inconsistent.
	AppendStep(workflowID string, step models.WorkflowStep) error

	// ListUserWorkflows returns a user's workflows newest-first.
	ListUserWorkflows(userID string, limit int) ([]models.Workflow, error)
}
