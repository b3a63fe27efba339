package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adflowhq/adflow/internal/adapters"
	adflow_http "github.com/adflowhq/adflow/internal/http"
	"github.com/adflowhq/adflow/internal/log"
	internal_storage "github.com/adflowhq/adflow/internal/storage"
	"github.com/adflowhq/adflow/pkg/service"
)

func SetupCLI(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the AdFlow workflow API server",
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving db flag: %v", err)
				os.Exit(1)
			}
			port, err := cmd.Flags().GetString("port")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving port flag: %v", err)
				os.Exit(1)
			}
			store := initStore(dbConnStr)
			defer store.Close()
			svc := newService(store)
			if err := adflow_http.StartServer(port, svc); err != nil {
				log.GetLogger().Errorf("Server stopped: %v", err)
				os.Exit(1)
			}
		},
	}
	serveCmd.Flags().String("port", "3000", "Port to listen on")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's workflows",
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving db flag: %v", err)
				os.Exit(1)
			}
			userID, _ := cmd.Flags().GetString("user")
			limit, _ := cmd.Flags().GetInt("limit")
			store := initStore(dbConnStr)
			defer store.Close()
			svc := newService(store)
			listWorkflows(svc, userID, limit)
		},
	}
	listCmd.Flags().String("user", "anonymous", "User whose workflows to list")
	listCmd.Flags().Int("limit", 0, "Maximum number of workflows to show")

	cancelCmd := &cobra.Command{
		Use:   "cancel [workflow-id]",
		Short: "Cancel a running workflow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving db flag: %v", err)
				os.Exit(1)
			}
			store := initStore(dbConnStr)
			defer store.Close()
			svc := newService(store)
			cancelWorkflow(svc, args[0])
		},
	}

	rootCmd.AddCommand(serveCmd, listCmd, cancelCmd)
}

func listWorkflows(svc *service.WorkflowService, userID string, limit int) {
	workflows, err := svc.ListUserWorkflows(userID, limit)
	if err != nil {
		log.GetLogger().Errorf("Failed to list workflows: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to list workflows: %v\n", err)
		os.Exit(1)
	}
	if len(workflows) == 0 {
		fmt.Fprintf(os.Stdout, "No workflows found.\n")
		return
	}
	fmt.Fprintf(os.Stdout, "Workflows:\n")
	for _, wf := range workflows {
		fmt.Fprintf(os.Stdout, "- ID: %s, URL: %s, Status: %s, Progress: %d%%, Created: %s\n",
			wf.WorkflowID, wf.WebsiteURL, wf.Status, wf.Progress(), wf.CreatedAt.Format(time.RFC3339))
	}
}

func cancelWorkflow(svc *service.WorkflowService, workflowID string) {
	if err := svc.Cancel(workflowID); err != nil {
		log.GetLogger().Errorf("Failed to cancel workflow: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to cancel workflow: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "Cancelled workflow %s\n", workflowID)
}

func newService(store *internal_storage.PostgresStore) *service.WorkflowService {
	collab := adapters.NewCollaborators(adapters.ConfigFromEnv(), log.GetLogger())
	return service.NewWorkflowService(store, collab, log.GetLogger())
}

func initStore(dbConnStr string) *internal_storage.PostgresStore {
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
