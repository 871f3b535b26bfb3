// Package tasks provides background task runners for timeago.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"

	"github.com/spetersoncode/timeago/internal/service"
	"github.com/spetersoncode/timeago/internal/state"
)

// SyncResult represents the result of one sync pass.
type SyncResult struct {
	Checked   int      `json:"checked"`
	Attached  []string `json:"attached,omitempty"`
	Refreshed []string `json:"refreshed,omitempty"`
	Detached  []string `json:"detached,omitempty"`
	Errors    int      `json:"errors"`
}

// Changed reports whether the pass attached, refreshed or detached anything.
func (r *SyncResult) Changed() bool {
	return len(r.Attached) > 0 || len(r.Refreshed) > 0 || len(r.Detached) > 0
}

// Syncer brings a board in line with the entries store, which other
// processes may change: new entries are attached, entries whose stored
// timestamp changed since the last pass are refreshed from it, deleted
// entries are detached. Instants set through an update action are not
// stored, so they survive a pass.
type Syncer struct {
	board  *service.Board
	clock  clockwork.Clock
	logger logr.Logger

	mu   sync.Mutex
	seen map[string]string
}

// NewSyncer creates a new Syncer.
func NewSyncer(board *service.Board, clock clockwork.Clock, logger logr.Logger) *Syncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Syncer{board: board, clock: clock, logger: logger, seen: make(map[string]string)}
}

// SyncOnce runs a single pass.
func (s *Syncer) SyncOnce() (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.board.List()
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Checked: len(entries)}
	stored := make(map[string]bool, len(entries))

	for _, e := range entries {
		stored[e.Key] = true
		last, known := s.seen[e.Key]
		s.seen[e.Key] = e.Source()

		if e.State != state.Active.String() {
			if _, err := s.board.Attach(e.Key); err != nil {
				s.logger.Error(err, "sync failed to attach entry", "key", e.Key)
				result.Errors++
				continue
			}
			result.Attached = append(result.Attached, e.Key)
			continue
		}

		if !known || last == e.Source() {
			continue
		}
		if _, err := s.board.Refresh(e.Key); err != nil {
			s.logger.Error(err, "sync failed to refresh entry", "key", e.Key)
			result.Errors++
			continue
		}
		result.Refreshed = append(result.Refreshed, e.Key)
	}

	for key := range s.seen {
		if !stored[key] {
			delete(s.seen, key)
		}
	}
	for _, key := range s.board.Attached() {
		if !stored[key] {
			s.board.Detach(key)
			result.Detached = append(result.Detached, key)
		}
	}

	if result.Changed() {
		s.logger.V(1).Info("synced entries",
			"attached", len(result.Attached),
			"refreshed", len(result.Refreshed),
			"detached", len(result.Detached))
	}
	return result, nil
}

// RunDaemon syncs immediately and then every interval until ctx is done.
func (s *Syncer) RunDaemon(ctx context.Context, interval time.Duration, callback func(*SyncResult)) error {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		result, err := s.SyncOnce()
		if err != nil {
			s.logger.Error(err, "sync failed")
			return
		}
		if callback != nil {
			callback(result)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			run()
		}
	}
}
