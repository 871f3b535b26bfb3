package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/db"
	"github.com/spetersoncode/timeago/internal/locale"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of timeago, build date, Go version, and database information.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

type versionInfo struct {
	Version   string   `json:"version"`
	GitCommit string   `json:"git_commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	Platform  string   `json:"platform"`
	Locales   []string `json:"locales"`
	Database  string   `json:"database,omitempty"`
	Schema    int64    `json:"schema_version,omitempty"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Locales:   locale.Names(),
	}

	// Try to get database info
	path := GetDBPath()
	if db.Exists(path) {
		info.Database = db.ResolvePath(path)

		database, err := db.Open(path)
		if err == nil {
			defer database.Close()
			if version, err := database.MigrationStatus(); err == nil {
				info.Schema = version
			}
		}
	}

	if IsJSON() {
		return OutputJSON(info)
	}

	// Compact format matching --version: timeago v0.1.0 (9f61316, 2026-02-02)
	fmt.Fprintf(out, "timeago %s (%s, %s)\n", info.Version, shortCommit(), shortDate())
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)

	if info.Database != "" {
		fmt.Fprintf(out, "Database: %s (schema v%d)\n", info.Database, info.Schema)
	} else {
		fmt.Fprintln(out, "Database: not initialized (run 'timeago init')")
	}

	return nil
}
