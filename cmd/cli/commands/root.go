// Package commands implements the connector CLI
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/productbird/connector/config"
	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/db"
	"github.com/productbird/connector/internal/db/repos"
	"github.com/productbird/connector/internal/logger"
	"github.com/productbird/connector/internal/reconcile"
)

func init() {
	RootCmd.AddCommand(GetSweepCmd())
	RootCmd.AddCommand(GetRecordsCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "connector",
	Short: "Productbird connector CLI - operational tooling for the description service",
	Long: `Productbird connector CLI runs reconciliation sweeps and inspects
generation records directly against the connector database.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if err := godotenv.Load(); err != nil {
			logger.Debug("No .env file found, using environment variables")
		}
		logger.InitializeAndConfigure()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// buildEngine wires a reconciliation engine against the database configured in
// the environment. The record repository is returned alongside for commands
// that page records directly.
func buildEngine() (*reconcile.Engine, *repos.RecordRepository, error) {
	gormDB, err := db.NewFromEnv()
	if err != nil {
		return nil, nil, err
	}

	apiClient, err := client.NewClient(&client.Options{
		BaseURL: config.GetEnv(config.EnvAPIBaseURL, client.ProdBaseURL),
		APIKey:  config.GetEnv(config.EnvAPIKey, ""),
	})
	if err != nil {
		return nil, nil, err
	}

	records := repos.NewRecordRepository(gormDB)
	engine := reconcile.NewEngine(records, catalog.NewGormStore(gormDB), apiClient, reconcile.Options{
		Tone:            config.GetEnv(config.EnvTone, ""),
		Formality:       config.GetEnv(config.EnvFormality, ""),
		CallbackBaseURL: config.GetEnv(config.EnvCallbackBaseURL, ""),
	})

	return engine, records, nil
}
