package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/locale"
	"github.com/spetersoncode/timeago/internal/phrase"
	"github.com/spetersoncode/timeago/internal/settings"
)

func init() {
	rootCmd.AddCommand(localesCmd)
}

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List built-in locales",
	Long: `List the built-in locales with a sample phrase in each.

Select one with --locale, the TIMEAGO_LOCALE environment variable or the
locale key of the config file.`,
	Args: cobra.NoArgs,
	RunE: runLocales,
}

type localeInfo struct {
	Name   string `json:"name"`
	Sample string `json:"sample"`
}

func runLocales(cmd *cobra.Command, args []string) error {
	names := locale.Names()
	infos := make([]localeInfo, 0, len(names))
	for _, name := range names {
		strs, err := locale.Lookup(name)
		if err != nil {
			return err
		}
		s := settings.Defaults().Merge(settings.Options{Strings: strs})
		sample, err := phrase.InWords(3*time.Hour, s)
		if err != nil {
			return err
		}
		infos = append(infos, localeInfo{Name: name, Sample: sample})
	}

	if IsJSON() {
		return OutputJSON(infos)
	}

	for _, info := range infos {
		OutputLine("%-4s %s", info.Name, info.Sample)
	}
	return nil
}
