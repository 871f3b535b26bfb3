package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/server"
	"github.com/spetersoncode/timeago/internal/tasks"
)

// Serve command flags
var (
	servePort         int
	serveHost         string
	serveSyncInterval time.Duration
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 18765)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address to bind to (default from config, 127.0.0.1)")
	serveCmd.Flags().DurationVar(&serveSyncInterval, "sync-interval", 5*time.Second, "How often to pick up entries changed by other processes")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that keeps every stored entry rendered and
exposes them over a JSON API.

Endpoints:
  GET    /api/health
  GET    /api/phrase?t=<timestamp>[&now=<timestamp>][&future=true][&locale=de]
  GET    /api/locales
  GET    /api/entries
  POST   /api/entries
  GET    /api/entries/{key}
  POST   /api/entries/{key}/{action}   (init, update, updateFromDOM, refresh, dispose)
  DELETE /api/entries/{key}

Examples:
  timeago serve                    # Start on the configured port
  timeago serve --port 8080        # Start on custom port
  timeago serve --host 0.0.0.0     # Bind to all interfaces`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveSyncInterval <= 0 {
		return errors.InvalidArgs("sync interval must be positive: %s", serveSyncInterval)
	}

	sess, err := openSession(nil, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.board.AttachAll(); err != nil {
		return err
	}

	cfg := GetConfig().Server
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}

	logger := newLogger()
	srv, err := server.New(server.Config{
		Port:   cfg.Port,
		Host:   cfg.Host,
		Board:  sess.board,
		Logger: logger,
	})
	if err != nil {
		return errors.WrapInternal(err, "failed to create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := tasks.NewSyncer(sess.board, sess.clock, logger.WithName("sync"))
	syncCtx, cancelSync := context.WithCancel(ctx)
	daemonDone := make(chan struct{})
	go func() {
		defer close(daemonDone)
		syncer.RunDaemon(syncCtx, serveSyncInterval, nil)
	}()
	defer func() {
		cancelSync()
		<-daemonDone
	}()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	OutputLine("timeago server starting at http://%s", srv.Address())
	OutputLine("Press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.WrapInternal(err, "server error")
		}
	case <-ctx.Done():
		OutputLine("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.WrapInternal(err, "shutdown error")
		}
	}

	OutputLine("Server stopped")
	return nil
}
