package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/adflowhq/adflow/internal/cli"
	"github.com/adflowhq/adflow/internal/log"
)

var rootCmd = &cobra.Command{Use: "adflow"}

func main() {
	if err := godotenv.Load(); err != nil {
		log.GetLogger().Debugf("No .env file loaded: %v", err)
	}
	rootCmd.PersistentFlags().String("db", os.Getenv("DATABASE_URL"), "Postgres connection string")
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
