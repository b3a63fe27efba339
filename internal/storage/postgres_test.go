package storage_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	internal_storage "github.com/adflowhq/adflow/internal/storage"
	"github.com/adflowhq/adflow/internal/testutil"
	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/storage"
)

func TestPostgresStore(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	defer testDB.Teardown(t)

	// Helper to create a transactional store rolled back after each test
	newTxStore := func(t *testing.T) *internal_storage.PostgresStore {
		store, err := internal_storage.NewPostgresStore(testDB.ConnStr)
		assert.NoError(t, err)
		txStore, err := store.Begin()
		assert.NoError(t, err)
		t.Cleanup(func() {
			_ = txStore.Rollback()
			store.Close()
		})
		return txStore.(*internal_storage.PostgresStore)
	}

	newWorkflow := func(id, userID string) models.Workflow {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return models.Workflow{
			WorkflowID: id,
			UserID:     userID,
			WebsiteURL: "https://example.com",
			Status:     models.PendingWorkflowStatus,
			Steps:      []models.WorkflowStep{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	t.Run("SaveAndGetWorkflow", func(t *testing.T) {
		store := newTxStore(t)
		wf := newWorkflow("wf_save", "user-1")
		assert.NoError(t, store.SaveWorkflow(wf))

		saved, err := store.GetWorkflow("wf_save")
		assert.NoError(t, err)
		assert.Equal(t, wf.WorkflowID, saved.WorkflowID)
		assert.Equal(t, wf.UserID, saved.UserID)
		assert.Equal(t, wf.WebsiteURL, saved.WebsiteURL)
		assert.Equal(t, models.PendingWorkflowStatus, saved.Status)
		assert.Empty(t, saved.CurrentStep)
		assert.Nil(t, saved.Result)
		assert.Empty(t, saved.Steps)
	})

	t.Run("UpsertUpdatesStatusAndResult", func(t *testing.T) {
		store := newTxStore(t)
		wf := newWorkflow("wf_upsert", "user-1")
		assert.NoError(t, store.SaveWorkflow(wf))

		wf.Status = models.CompletedWorkflowStatus
		wf.Result = &models.WorkflowResult{
			CampaignIDs: []string{"google_1"},
			LaunchResults: []models.CampaignLaunchResult{
				{Platform: models.GooglePlatform, CampaignID: "google_1", Status: models.LaunchSucceeded},
			},
		}
		wf.UpdatedAt = time.Now().UTC()
		assert.NoError(t, store.SaveWorkflow(wf))

		saved, err := store.GetWorkflow("wf_upsert")
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedWorkflowStatus, saved.Status)
		if assert.NotNil(t, saved.Result) {
			assert.Equal(t, []string{"google_1"}, saved.Result.CampaignIDs)
			assert.Len(t, saved.Result.LaunchResults, 1)
		}
	})

	t.Run("GetWorkflowNotFound", func(t *testing.T) {
		store := newTxStore(t)
		_, err := store.GetWorkflow("wf_missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("AppendStepProjection", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveWorkflow(newWorkflow("wf_steps", "user-1")))

		running := models.WorkflowStep{
			Step:      models.AnalysisStep,
			Status:    models.RunningStepStatus,
			Timestamp: time.Now().UTC(),
		}
		assert.NoError(t, store.AppendStep("wf_steps", running))

		wf, err := store.GetWorkflow("wf_steps")
		assert.NoError(t, err)
		assert.Equal(t, models.RunningWorkflowStatus, wf.Status)
		assert.Equal(t, models.AnalysisStep, wf.CurrentStep)
		assert.Len(t, wf.Steps, 1)

		payload, _ := json.Marshal(map[string]string{"industry": "Retail"})
		completed := models.WorkflowStep{
			Step:      models.AnalysisStep,
			Status:    models.CompletedStepStatus,
			Result:    payload,
			Timestamp: time.Now().UTC(),
		}
		assert.NoError(t, store.AppendStep("wf_steps", completed))

		// A completed step leaves the parent status untouched.
		wf, err = store.GetWorkflow("wf_steps")
		assert.NoError(t, err)
		assert.Equal(t, models.RunningWorkflowStatus, wf.Status)
		assert.Len(t, wf.Steps, 2)
		assert.JSONEq(t, string(payload), string(wf.Steps[1].Result))

		failed := models.WorkflowStep{
			Step:      models.ErrorStep,
			Status:    models.FailedStepStatus,
			Error:     "generator exploded",
			Timestamp: time.Now().UTC(),
		}
		assert.NoError(t, store.AppendStep("wf_steps", failed))

		wf, err = store.GetWorkflow("wf_steps")
		assert.NoError(t, err)
		assert.Equal(t, models.FailedWorkflowStatus, wf.Status)
		assert.Equal(t, models.ErrorStep, wf.CurrentStep)
		assert.Equal(t, "generator exploded", wf.Steps[2].Error)
	})

	t.Run("StepsOrderedByInsertion", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveWorkflow(newWorkflow("wf_order", "user-1")))

		// Identical timestamps cannot scramble the order; it follows the
		// insertion sequence.
		ts := time.Now().UTC()
		names := []models.StepName{
			models.AnalysisStep, models.CampaignGenerationStep, models.CampaignLaunchStep,
		}
		for _, name := range names {
			assert.NoError(t, store.AppendStep("wf_order", models.WorkflowStep{
				Step:      name,
				Status:    models.RunningStepStatus,
				Timestamp: ts,
			}))
		}

		wf, err := store.GetWorkflow("wf_order")
		assert.NoError(t, err)
		assert.Len(t, wf.Steps, 3)
		for i, name := range names {
			assert.Equal(t, name, wf.Steps[i].Step)
		}
	})

	t.Run("ListUserWorkflows", func(t *testing.T) {
		store := newTxStore(t)
		base := time.Now().UTC().Add(-time.Hour)
		for i := 0; i < 3; i++ {
			wf := newWorkflow(fmt.Sprintf("wf_list_%d", i), "lister")
			wf.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			wf.UpdatedAt = wf.CreatedAt
			assert.NoError(t, store.SaveWorkflow(wf))
		}
		assert.NoError(t, store.SaveWorkflow(newWorkflow("wf_other", "someone-else")))

		workflows, err := store.ListUserWorkflows("lister", 10)
		assert.NoError(t, err)
		assert.Len(t, workflows, 3)
		assert.Equal(t, "wf_list_2", workflows[0].WorkflowID)
		assert.Equal(t, "wf_list_0", workflows[2].WorkflowID)

		limited, err := store.ListUserWorkflows("lister", 2)
		assert.NoError(t, err)
		assert.Len(t, limited, 2)
		assert.Equal(t, "wf_list_2", limited[0].WorkflowID)

		empty, err := store.ListUserWorkflows("nobody", 10)
		assert.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ListIncludesSteps", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveWorkflow(newWorkflow("wf_list_steps", "steppy")))
		assert.NoError(t, store.AppendStep("wf_list_steps", models.WorkflowStep{
			Step:      models.AnalysisStep,
			Status:    models.RunningStepStatus,
			Timestamp: time.Now().UTC(),
		}))

		workflows, err := store.ListUserWorkflows("steppy", 10)
		assert.NoError(t, err)
		assert.Len(t, workflows, 1)
		assert.Len(t, workflows[0].Steps, 1)
	})
}
