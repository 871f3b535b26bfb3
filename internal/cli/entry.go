package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/service"
)

// Entry command flags
var (
	addTitle    string
	addTime     bool
	listRefresh bool
)

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "Title kept with the entry")
	addCmd.Flags().BoolVar(&addTime, "time", true, "Store the timestamp as a datetime (--time=false keeps it in the title)")
	listCmd.Flags().BoolVar(&listRefresh, "refresh", false, "Re-render every entry before listing")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(rmCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <key> <timestamp>",
	Short: "Store a timestamp and render its phrase",
	Long: `Store a named timestamp and render its relative-time phrase.

Keys are 1-64 lowercase letters, digits, dots, dashes or underscores.

Examples:
  timeago add launch 2008-07-17T09:24:17Z
  timeago add deploy 1216286657000 --title "Production deploy"
  timeago add note "2008/07/17 09:24 UTC" --time=false`,
	Args: exactArgs(2),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored entries",
	Long: `List stored entries with their last rendered phrase.

Use --refresh to re-render every entry against the current time first.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show one entry",
	Args:  exactArgs(1),
	RunE:  runShow,
}

var setCmd = &cobra.Command{
	Use:   "set <key> <timestamp>",
	Short: "Change an entry's timestamp",
	Long: `Store a new timestamp for an entry and re-render it.

Example:
  timeago set launch 2008-07-17T12:00:00Z`,
	Args: exactArgs(2),
	RunE: runSet,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <key>",
	Short: "Re-read an entry's stored timestamp and re-render it",
	Args:  exactArgs(1),
	RunE:  runRefresh,
}

var rmCmd = &cobra.Command{
	Use:     "rm <key>",
	Aliases: []string{"remove", "delete"},
	Short:   "Stop tracking an entry and delete it",
	Args:    exactArgs(1),
	RunE:    runRm,
}

func runAdd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.board.Add(service.AddInput{
		Key:       args[0],
		Timestamp: args[1],
		Title:     addTitle,
		Plain:     !addTime,
	})
	if err != nil {
		return err
	}
	return outputEntry(st)
}

func runList(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	var list []*service.EntryStatus
	if listRefresh {
		list, err = sess.board.AttachAll()
	} else {
		list, err = sess.board.List()
	}
	if err != nil {
		return err
	}

	views := make([]entryView, 0, len(list))
	for _, st := range list {
		views = append(views, viewOf(st))
	}

	if IsJSON() {
		return OutputJSON(views)
	}

	if len(views) == 0 {
		OutputLine("No entries found.")
		return nil
	}
	printTable(views)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.board.Get(args[0])
	if err != nil {
		return err
	}
	return outputEntry(st)
}

func runSet(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.board.Set(args[0], args[1])
	if err != nil {
		return err
	}
	return outputEntry(st)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.board.Refresh(args[0])
	if err != nil {
		return err
	}
	return outputEntry(st)
}

func runRm(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.board.Remove(args[0]); err != nil {
		return err
	}

	if IsJSON() {
		return OutputJSON(map[string]interface{}{"key": args[0], "deleted": true})
	}
	OutputLine("Deleted entry: %s", args[0])
	return nil
}

func outputEntry(st *service.EntryStatus) error {
	v := viewOf(st)
	if IsJSON() {
		return OutputJSON(v)
	}

	OutputLine("%s", paint(styleKey, v.Key))
	OutputLine("  Phrase:  %s", v.Phrase)
	OutputLine("  Instant: %s", v.Instant)
	if v.Title != "" {
		OutputLine("  Title:   %s", v.Title)
	}
	OutputLine("  State:   %s", stateLabel(v.State))
	if v.Reason != "" {
		OutputLine("  Skipped: %s", v.Reason)
	}
	VerboseOutput("  Updated: %s\n", v.Updated)
	return nil
}

// printTable writes entries as aligned columns.
func printTable(views []entryView) {
	keyWidth := len("KEY")
	phraseWidth := len("PHRASE")
	for _, v := range views {
		keyWidth = max(keyWidth, len(v.Key))
		phraseWidth = max(phraseWidth, len(v.Phrase))
	}

	row := fmt.Sprintf("%%-%ds  %%-%ds  %%-24s  %%s", keyWidth, phraseWidth)
	OutputLine(row, "KEY", "PHRASE", "INSTANT", "STATE")
	for _, v := range views {
		phrase := v.Phrase
		if v.Reason != "" && phrase == "" {
			phrase = "(" + v.Reason + ")"
		}
		OutputLine(row, v.Key, truncate(phrase, phraseWidth), truncate(v.Instant, 24), stateLabel(v.State))
	}
}

// truncate truncates a string to the specified length, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
