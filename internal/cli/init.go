package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/backup"
	"github.com/spetersoncode/timeago/internal/config"
	"github.com/spetersoncode/timeago/internal/db"
	"github.com/spetersoncode/timeago/internal/errors"
)

var (
	initForce    bool
	initNoConfig bool
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing database")
	initCmd.Flags().BoolVar(&initNoConfig, "no-config", false, "Do not write a sample config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize timeago for first-time use",
	Long: `Initialize timeago by creating the ~/.timeago/ directory and database.

This command:
- Creates ~/.timeago/ directory if it doesn't exist
- Writes a commented sample config.toml unless one exists
- Creates timeago.db and runs any pending migrations

Use --force to overwrite an existing database. The old database is saved
as a rotating snapshot first (see [backup] in the config file).`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initResult struct {
	Database string `json:"database"`
	Config   string `json:"config,omitempty"`
	Backup   string `json:"backup,omitempty"`
	Created  bool   `json:"created"`
	Schema   int64  `json:"schema_version"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetDBPath()
	result := initResult{Database: db.ResolvePath(path)}

	if db.Exists(path) && !initForce {
		if IsJSON() {
			return OutputJSON(result)
		}
		return errors.StateError("database already exists at %s", result.Database).
			WithSuggestion("Use --force to overwrite it.")
	}

	if initForce && db.Exists(path) {
		snapshot, err := snapshotDatabase(path)
		if err != nil {
			return err
		}
		result.Backup = snapshot

		VerboseOutput("Removing existing database...\n")
		if err := db.Delete(path); err != nil {
			return errors.WrapInternal(err, "failed to remove existing database")
		}
	}

	if !initNoConfig {
		configPath := config.DefaultConfigPath()
		if configPath != "" {
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				VerboseOutput("Writing config file...\n")
				if err := config.WriteConfigFile(configPath); err != nil {
					return errors.WrapInternal(err, "failed to write config file")
				}
				result.Config = configPath
			}
		}
	}

	VerboseOutput("Creating database...\n")
	database, err := db.Open(path)
	if err != nil {
		return dbError(err, "failed to create database")
	}
	defer database.Close()

	VerboseOutput("Running migrations...\n")
	if err := database.Migrate(); err != nil {
		return errors.WrapInternal(err, "failed to run migrations")
	}

	version, err := database.MigrationStatus()
	if err != nil {
		return errors.WrapInternal(err, "failed to get schema version")
	}
	result.Created = true
	result.Schema = version

	if IsJSON() {
		return OutputJSON(result)
	}

	OutputLine("Initialized timeago database at %s (schema v%d)", result.Database, result.Schema)
	if result.Config != "" {
		OutputLine("Wrote sample config to %s", result.Config)
	}
	if result.Backup != "" {
		OutputLine("Previous database saved to %s", result.Backup)
	}
	return nil
}

// snapshotDatabase saves the database at path before it is replaced. It
// returns the snapshot path, or "" when backups are disabled.
func snapshotDatabase(path string) (string, error) {
	resolved := db.ResolvePath(path)
	mgr := backup.NewManager(resolved, GetConfig().Backup)
	if !mgr.Enabled() {
		return "", nil
	}

	database, err := db.Open(path)
	if err != nil {
		return "", dbError(err, "failed to open existing database")
	}
	defer database.Close()

	VerboseOutput("Saving existing database...\n")
	snapshot, err := mgr.Create(database.DB)
	if err != nil {
		return "", errors.WrapInternal(err, "failed to back up existing database").
			WithSuggestion("Set max_count = 0 under [backup] to skip the backup.")
	}
	return snapshot, nil
}
