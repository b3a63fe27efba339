package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adflowhq/adflow/pkg/models"
	"github.com/adflowhq/adflow/pkg/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

func (s *PostgresStore) Ping() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Ping()
	}
	_, err := s.db.Exec("SELECT 1")
	return err
}

// workflowRow mirrors the workflows table, with nullable columns.
type workflowRow struct {
	WorkflowID  string         `db:"workflow_id"`
	UserID      string         `db:"user_id"`
	WebsiteURL  string         `db:"website_url"`
	Status      string         `db:"status"`
	CurrentStep sql.NullString `db:"current_step"`
	Result      []byte         `db:"result"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type stepRow struct {
	StepName  string         `db:"step_name"`
	Status    string         `db:"status"`
	Result    []byte         `db:"result"`
	ErrorMsg  sql.NullString `db:"error_msg"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r workflowRow) toModel() (models.Workflow, error) {
	wf := models.Workflow{
		WorkflowID:  r.WorkflowID,
		UserID:      r.UserID,
		WebsiteURL:  r.WebsiteURL,
		Status:      models.WorkflowStatus(r.Status),
		CurrentStep: models.StepName(r.CurrentStep.String),
		Steps:       []models.WorkflowStep{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Result) > 0 {
		var res models.WorkflowResult
		if err := json.Unmarshal(r.Result, &res); err != nil {
			return models.Workflow{}, fmt.Errorf("decode workflow %s result: %w", r.WorkflowID, err)
		}
		wf.Result = &res
	}
	return wf, nil
}

// SaveWorkflow upserts the aggregate record. Step history lives in its
// own table and is untouched here.
func (s *PostgresStore) SaveWorkflow(wf models.Workflow) error {
	var result []byte
	if wf.Result != nil {
		var err error
		result, err = json.Marshal(wf.Result)
		if err != nil {
			return fmt.Errorf("encode workflow %s result: %w", wf.WorkflowID, err)
		}
	}
	var currentStep interface{}
	if wf.CurrentStep != "" {
		currentStep = string(wf.CurrentStep)
	}
	_, err := s.db.Exec(`
		INSERT INTO workflows (workflow_id, user_id, website_url, status, current_step, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (workflow_id) DO UPDATE SET
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			result = EXCLUDED.result,
			updated_at = EXCLUDED.updated_at`,
		wf.WorkflowID, wf.UserID, wf.WebsiteURL, wf.Status, currentStep, result, wf.CreatedAt, wf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save workflow: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by id, including its step history.
func (s *PostgresStore) GetWorkflow(workflowID string) (models.Workflow, error) {
	var row workflowRow
	err := s.db.Get(&row, "SELECT * FROM workflows WHERE workflow_id = $1", workflowID)
	if err == sql.ErrNoRows {
		return models.Workflow{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Workflow{}, err
	}
	wf, err := row.toModel()
	if err != nil {
		return models.Workflow{}, err
	}
	steps, err := s.getSteps(workflowID)
	if err != nil {
		return models.Workflow{}, err
	}
	wf.Steps = steps
	return wf, nil
}

func (s *PostgresStore) getSteps(workflowID string) ([]models.WorkflowStep, error) {
	var rows []stepRow
	err := s.db.Select(&rows, `
		SELECT step_name, status, result, error_msg, created_at
		FROM workflow_steps WHERE workflow_id = $1 ORDER BY id`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("get steps for workflow %s: %w", workflowID, err)
	}
	steps := make([]models.WorkflowStep, 0, len(rows))
	for _, r := range rows {
		steps = append(steps, models.WorkflowStep{
			Step:      models.StepName(r.StepName),
			Status:    models.StepStatus(r.Status),
			Result:    r.Result,
			Error:     r.ErrorMsg.String,
			Timestamp: r.CreatedAt,
		})
	}
	return steps, nil
}

// AppendStep inserts the step record and updates the parent projection in
// a single transaction, so the two can never diverge.
func (s *PostgresStore) AppendStep(workflowID string, step models.WorkflowStep) error {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return err
		}
		txStore := &PostgresStore{db: tx}
		if err := txStore.AppendStep(workflowID, step); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	var result interface{}
	if len(step.Result) > 0 {
		result = []byte(step.Result)
	}
	_, err := s.db.Exec(`
		INSERT INTO workflow_steps (workflow_id, step_name, status, result, error_msg, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		workflowID, step.Step, step.Status, result, nullIfEmpty(step.Error), step.Timestamp)
	if err != nil {
		return fmt.Errorf("append step %s: %w", step.Step, err)
	}

	res, err := s.db.Exec(`
		UPDATE workflows
		SET current_step = $2,
		    status = CASE
		        WHEN $3 = 'failed' THEN 'failed'
		        WHEN $3 = 'running' THEN 'running'
		        ELSE status
		    END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE workflow_id = $1`,
		workflowID, step.Step, string(step.Status))
	if err != nil {
		return fmt.Errorf("update workflow %s for step %s: %w", workflowID, step.Step, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListUserWorkflows returns a user's workflows newest-first.
func (s *PostgresStore) ListUserWorkflows(userID string, limit int) ([]models.Workflow, error) {
	var rows []workflowRow
	err := s.db.Select(&rows, `
		SELECT * FROM workflows
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	workflows := make([]models.Workflow, 0, len(rows))
	for _, row := range rows {
		wf, err := row.toModel()
		if err != nil {
			return nil, err
		}
		steps, err := s.getSteps(wf.WorkflowID)
		if err != nil {
			return nil, err
		}
		wf.Steps = steps
		workflows = append(workflows, wf)
	}
	return workflows, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
