package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/scheduler"
	"github.com/spetersoncode/timeago/internal/tasks"
)

// Watch command flags
var (
	watchSyncInterval time.Duration
	watchFor          time.Duration
)

func init() {
	watchCmd.Flags().DurationVar(&watchSyncInterval, "sync-interval", 5*time.Second, "How often to pick up entries changed by other processes")
	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "Stop after this long (default: until interrupted)")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep every entry rendered and redraw the table as phrases change",
	Long: `Attach every stored entry and redraw the entry table whenever a phrase
is re-rendered. The screen is cleared between draws only when stdout is a
terminal; otherwise each draw is appended. With --json each draw is one
JSON line.

Examples:
  timeago watch
  timeago watch --for 10m --sync-interval 30s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchSyncInterval <= 0 {
		return errors.InvalidArgs("sync interval must be positive: %s", watchSyncInterval)
	}

	redraw := make(chan struct{}, 1)
	notify := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}

	sess, err := openSession(nil, func(*scheduler.RefreshResult) { notify() })
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.board.AttachAll(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var cancel context.CancelFunc
	if watchFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, watchFor)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	syncer := tasks.NewSyncer(sess.board, sess.clock, newLogger().WithName("sync"))
	daemonDone := make(chan struct{})
	go func() {
		defer close(daemonDone)
		syncer.RunDaemon(ctx, watchSyncInterval, func(r *tasks.SyncResult) {
			if r.Changed() {
				notify()
			}
		})
	}()
	defer func() {
		cancel()
		<-daemonDone
	}()

	if err := drawWatch(sess); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-redraw:
			if err := drawWatch(sess); err != nil {
				return err
			}
		}
	}
}

// drawWatch writes the current entry table.
func drawWatch(sess *session) error {
	list, err := sess.board.List()
	if err != nil {
		return err
	}
	views := make([]entryView, 0, len(list))
	for _, st := range list {
		views = append(views, viewOf(st))
	}

	if IsJSON() {
		data, err := json.Marshal(views)
		if err != nil {
			return errors.WrapInternal(err, "failed to marshal JSON")
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if isTerminal() {
		Output("\033[H\033[2J")
	}
	OutputLine("%s", paint(styleMuted, "timeago watch, "+sess.clock.Now().Format(time.Kitchen)))
	if len(views) == 0 {
		OutputLine("No entries found.")
		return nil
	}
	printTable(views)
	return nil
}
