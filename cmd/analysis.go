package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/internal/iocache"
	"github.com/huangsam/burndown/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadAnalysisBackend reads and validates the analysis backend settings.
func loadAnalysisBackend() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("analysis-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidAnalysisBackends[backend]; !ok {
		return fmt.Errorf("%w: analysis backend '%s'", contract.ErrUnsupportedBackend, backend)
	}
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// analysisSetup loads minimal configuration needed for analysis operations
// and opens the analysis store.
func analysisSetup() error {
	if err := loadAnalysisBackend(); err != nil {
		return err
	}
	if err := iocache.InitStores(iocache.StoreOptions{
		AnalysisBackend: cfg.AnalysisBackend,
		AnalysisConnStr: cfg.AnalysisDBConnect,
	}); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisBackendWrapper validates settings without opening the store,
// for commands that manage the schema themselves.
func analysisBackendWrapper(_ *cobra.Command, _ []string) error {
	return loadAnalysisBackend()
}

// analysisDBPath resolves the SQLite file of the analysis store.
func analysisDBPath() string {
	if cfg.AnalysisDBConnect != "" {
		return cfg.AnalysisDBConnect
	}
	return contract.GetAnalysisDBFilePath()
}

// analysisCmd focused on analysis data management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage historical run tracking and exports",
	Long: `Manage the history of burndown runs used for trend tracking and reporting.

When --analysis-backend is set, every progress, series or check run stores:
- Run metadata (source, evaluation instant, configuration, duration)
- One snapshot per environment (statuses, progress, burn rate, projection)

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show tracking statistics
  export  - Export runs and snapshots to Parquet
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track runs in SQLite
  burndown progress burndown.json --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  burndown analysis export --analysis-backend sqlite --output-file history`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical run tracking data",
	Long: `Delete all stored runs and environment snapshots.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: analysisBackendWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, analysisDBPath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show the analysis backend, connection status, number of runs and snapshots,
the last and oldest run and the row count of each table.`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetAnalysisStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and snapshots to Parquet files.

Writes <output-file>.runs.parquet and <output-file>.snapshots.parquet.

Requires: --output-file parameter

Examples:
  burndown analysis export --analysis-backend sqlite --output-file history
  duckdb -c "SELECT env, status, count(*) FROM 'history.snapshots.parquet' GROUP BY ALL"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis tracking store.

By default, migrates to the latest version. Use --to-version for specific versions.

Examples:
  # Migrate to latest version (default)
  burndown analysis migrate --analysis-backend sqlite

  # Roll back everything
  burndown analysis migrate --analysis-backend sqlite --to-version 0`,
	PreRunE: analysisBackendWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, viper.GetInt("to-version")); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
