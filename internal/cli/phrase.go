package cli

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/scheduler"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

var phraseNow string

func init() {
	phraseCmd.Flags().StringVar(&phraseNow, "now", "", "Render against this instant instead of the current time")
	rootCmd.AddCommand(phraseCmd)
}

var phraseCmd = &cobra.Command{
	Use:   "phrase <timestamp>",
	Short: "Print the relative-time phrase for a timestamp",
	Long: `Print the relative-time phrase for a timestamp.

The timestamp may be ISO 8601 ("2008-07-17T09:24:17Z", "2008/07/17 09:24:17 UTC",
"2008-07-17T09:24:17+0200") or epoch milliseconds.

Examples:
  timeago phrase 2008-07-17T09:24:17Z
  timeago phrase 1216286657000 --now 2008-07-17T09:25:17Z
  timeago phrase --allow-future --locale de 2030-01-01`,
	Args: exactArgs(1),
	RunE: runPhrase,
}

type phraseResult struct {
	Input   string `json:"input"`
	Instant string `json:"instant"`
	Now     string `json:"now"`
	Phrase  string `json:"phrase"`
}

func runPhrase(cmd *cobra.Command, args []string) error {
	instant, err := timestamp.ParseInput(args[0])
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	if phraseNow != "" {
		now, err := timestamp.ParseInput(phraseNow)
		if err != nil {
			return err
		}
		clock = clockwork.NewFakeClockAt(now)
	}

	sched := scheduler.New(scheduler.Config{Clock: clock, Logger: newLogger()})
	text, err := sched.ToPhrase(instant, settings.Options{})
	if err != nil {
		return err
	}

	if IsJSON() {
		return OutputJSON(phraseResult{
			Input:   args[0],
			Instant: timestamp.Format(instant),
			Now:     timestamp.Format(clock.Now().Truncate(time.Millisecond)),
			Phrase:  text,
		})
	}

	OutputLine("%s", text)
	return nil
}
