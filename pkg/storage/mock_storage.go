package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
)

// mockStore implements Store with in-memory storage. It is safe for
// concurrent use so a detached pipeline goroutine can write while a test
// polls reads.
type mockStore struct {
	mu        sync.RWMutex
	workflows map[string]models.Workflow
}

func NewMockStore() Store {
	return &mockStore{workflows: make(map[string]models.Workflow)}
}

func (m *mockStore) Begin() (Store, error) { return m, nil }
func (m *mockStore) Commit() error         { return nil }
func (m *mockStore) Rollback() error       { return nil }
func (m *mockStore) Close() error          { return nil }
func (m *mockStore) Ping() error           { return nil }

func (m *mockStore) SaveWorkflow(wf models.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[wf.WorkflowID] = copyWorkflow(wf)
	return nil
}

func (m *mockStore) GetWorkflow(workflowID string) (models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wf, ok := m.workflows[workflowID]
	if !ok {
		return models.Workflow{}, ErrNotFound
	}
	return copyWorkflow(wf), nil
}

func (m *mockStore) AppendStep(workflowID string, step models.WorkflowStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.workflows[workflowID]
	if !ok {
		return ErrNotFound
	}
	wf.Steps = append(wf.Steps, step)
	wf.CurrentStep = step.Step
	switch step.Status {
	case models.FailedStepStatus:
		wf.Status = models.FailedWorkflowStatus
	case models.RunningStepStatus:
		wf.Status = models.RunningWorkflowStatus
	}
	wf.UpdatedAt = time.Now()
	m.workflows[workflowID] = wf
	return nil
}

func (m *mockStore) ListUserWorkflows(userID string, limit int) ([]models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Workflow
	for _, wf := range m.workflows {
		if wf.UserID == userID {
			out = append(out, copyWorkflow(wf))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// copyWorkflow detaches the steps slice so previously returned history
// can never be mutated through a shared backing array.
func copyWorkflow(wf models.Workflow) models.Workflow {
	out := wf
	out.Steps = make([]models.WorkflowStep, len(wf.Steps))
	copy(out.Steps, wf.Steps)
	if wf.Result != nil {
		r := *wf.Result
		out.Result = &r
	}
	return out
}
