// Package scheduler keeps relative-time phrases on elements up to date.
//
// Each attached element gets a handle holding its reference instant and, when
// the refresh interval is positive, a ticker that re-renders the element until
// the handle is disposed.
package scheduler

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/phrase"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/state"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

// Reasons a refresh did not write text.
const (
	ReasonPastCutoff    = "past_cutoff"
	ReasonUnparseable   = "unparseable_timestamp"
	ReasonDisposed      = "disposed"
	ReasonRenderFailure = "render_failure"
)

// RefreshResult describes one refresh of one element.
type RefreshResult struct {
	Key      string        `json:"key"`
	Text     string        `json:"text,omitempty"`
	Rendered bool          `json:"rendered"`
	Reason   string        `json:"reason,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	At       time.Time     `json:"at"`
	Error    string        `json:"error,omitempty"`
}

// Config holds the scheduler configuration.
type Config struct {
	// Clock drives tickers and "now". Defaults to the real clock.
	Clock clockwork.Clock

	// Logger for refresh events. Defaults to a discarding logger.
	Logger logr.Logger

	// OnRefresh, when set, receives the result of every ticker refresh.
	OnRefresh func(*RefreshResult)
}

// Scheduler tracks attached elements by key.
type Scheduler struct {
	clock     clockwork.Clock
	logger    logr.Logger
	onRefresh func(*RefreshResult)

	mu      sync.Mutex
	handles map[string]*Handle
}

// New creates a Scheduler.
func New(config Config) *Scheduler {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Scheduler{
		clock:     clock,
		logger:    logger,
		onRefresh: config.OnRefresh,
		handles:   make(map[string]*Handle),
	}
}

// AttachOptions configures Attach.
type AttachOptions struct {
	// Instant is the reference instant. Zero means read it from the element.
	Instant time.Time

	// Settings override the process-wide defaults for this element.
	Settings settings.Options
}

// Attach starts tracking el: it renders once and, when the refresh interval
// is positive, starts a ticker. Attaching an element whose key is already
// active returns the existing handle and starts nothing new.
func (s *Scheduler) Attach(el Element, opts AttachOptions) (*Handle, error) {
	if h, ok := s.Lookup(el.Key()); ok && h.State() == state.Active {
		return h, nil
	}

	h := &Handle{
		s:    s,
		el:   el,
		opts: opts.Settings,
		done: make(chan struct{}),
	}
	cfg := h.settings()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	if !opts.Instant.IsZero() {
		h.setReference(opts.Instant)
	} else {
		h.readSource()
	}
	if err := h.prepareTitle(cfg); err != nil {
		h.mu.Unlock()
		return nil, errors.WrapInternal(err, "failed to set title on %s", el.Key())
	}
	res := h.refreshLocked(cfg)
	h.mu.Unlock()

	if res.Reason == ReasonRenderFailure {
		return nil, res.err
	}

	next, err := state.Next(state.Unattached, state.ActionAttach)
	if err != nil {
		return nil, err
	}

	var ctx context.Context
	if cfg.RefreshInterval > 0 {
		ctx, h.cancel = context.WithCancel(context.Background())
	}

	s.mu.Lock()
	if cur, ok := s.handles[el.Key()]; ok && cur.State() == state.Active {
		// Lost a race with a concurrent Attach of the same key.
		s.mu.Unlock()
		if h.cancel != nil {
			h.cancel()
		}
		return cur, nil
	}
	h.state.Store(int32(next))
	s.handles[el.Key()] = h
	s.mu.Unlock()

	if ctx != nil {
		go h.run(ctx, s.clock.NewTicker(cfg.RefreshInterval))
	} else {
		close(h.done)
	}

	s.logger.V(1).Info("attached", "key", el.Key(), "text", res.Text, "interval", cfg.RefreshInterval)
	return h, nil
}

// Lookup returns the active handle for key.
func (s *Scheduler) Lookup(key string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[key]
	return h, ok
}

// Keys returns the keys of every active handle.
func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.handles))
	for k := range s.handles {
		keys = append(keys, k)
	}
	return keys
}

// Dispose disposes the handle for key, if any.
func (s *Scheduler) Dispose(key string) {
	if h, ok := s.Lookup(key); ok {
		h.Dispose()
	}
}

// Close disposes every handle and waits for their tickers to stop.
func (s *Scheduler) Close() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Dispose()
		<-h.done
	}
}

func (s *Scheduler) forget(h *Handle) {
	s.mu.Lock()
	if cur, ok := s.handles[h.el.Key()]; ok && cur == h {
		delete(s.handles, h.el.Key())
	}
	s.mu.Unlock()
}

// Handle is the tracked state of one attached element.
type Handle struct {
	s    *Scheduler
	el   Element
	opts settings.Options

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	reference time.Time
	valid     bool
	last      *RefreshResult
}

// Element returns the element the handle renders into.
func (h *Handle) Element() Element {
	return h.el
}

// State returns the lifecycle state.
func (h *Handle) State() state.State {
	return state.State(h.state.Load())
}

// Reference returns the reference instant and whether it is valid.
func (h *Handle) Reference() (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reference, h.valid
}

// Last returns the most recent refresh result.
func (h *Handle) Last() *RefreshResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Update replaces the reference instant and renders once. The ticker is left
// as it is.
func (h *Handle) Update(instant time.Time) (*RefreshResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(state.ActionUpdate); err != nil {
		return nil, err
	}

	cfg := h.settings()
	h.setReference(instant)
	if cfg.LocaleTitle {
		if err := h.el.SetAttr(AttrTitle, instant.Local().Format(LocaleTitleLayout)); err != nil {
			return nil, errors.WrapInternal(err, "failed to set title on %s", h.el.Key())
		}
	}
	return h.finish(h.refreshLocked(cfg))
}

// RefreshFromSource re-reads the element's timestamp and renders once. An
// unparseable timestamp is reported in the result, not as an error.
func (h *Handle) RefreshFromSource() (*RefreshResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(state.ActionRefresh); err != nil {
		return nil, err
	}

	h.readSource()
	return h.finish(h.refreshLocked(h.settings()))
}

// Dispose stops the ticker and forgets the element. It is idempotent and
// safe to call from inside an element method. Once it returns no new render
// starts.
func (h *Handle) Dispose() {
	for {
		cur := h.State()
		next, err := state.Next(cur, state.ActionDispose)
		if err != nil || next == cur {
			return
		}
		if h.state.CompareAndSwap(int32(cur), int32(next)) {
			break
		}
	}

	if h.cancel != nil {
		h.cancel()
	}
	h.s.forget(h)
	h.s.logger.V(1).Info("disposed", "key", h.el.Key())
}

// Done is closed once the handle's ticker has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) run(ctx context.Context, ticker clockwork.Ticker) {
	defer close(h.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			res := h.tick()
			// A dispose during the render suppresses the hook.
			if res != nil && h.s.onRefresh != nil && h.State() == state.Active {
				h.s.onRefresh(res)
			}
		}
	}
}

func (h *Handle) tick() *RefreshResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.check(state.ActionRender) != nil {
		return nil
	}
	res := h.refreshLocked(h.settings())
	if res.err != nil {
		h.s.logger.Error(res.err, "refresh failed", "key", h.el.Key())
	}
	return &res.RefreshResult
}

func (h *Handle) check(action state.Action) error {
	if _, err := state.Next(h.State(), action); err != nil {
		return errors.StateError("element %s is %s", h.el.Key(), h.State()).
			WithSuggestion("Attach the element again to resume refreshing.")
	}
	return nil
}

func (h *Handle) settings() settings.Settings {
	return settings.Resolve(h.opts)
}

func (h *Handle) setReference(t time.Time) {
	h.reference = t
	h.valid = true
}

// readSource parses the element's timestamp. A parse failure leaves the
// handle without a valid reference so refreshes are skipped.
func (h *Handle) readSource() {
	raw := SourceTimestamp(h.el)
	t, err := timestamp.Parse(raw)
	if err != nil {
		h.reference = time.Time{}
		h.valid = false
		h.s.logger.Info("skipping element with unparseable timestamp", "key", h.el.Key(), "value", raw)
		return
	}
	h.setReference(t)
}

// prepareTitle runs on first attach. With LocaleTitle the title shows the
// instant; otherwise existing text moves into the title unless the element
// already has one. Plain elements are left alone since their title carries
// the instant.
func (h *Handle) prepareTitle(cfg settings.Settings) error {
	if !h.el.IsTime() {
		return nil
	}
	if cfg.LocaleTitle {
		if !h.valid {
			return nil
		}
		return h.el.SetAttr(AttrTitle, h.reference.Local().Format(LocaleTitleLayout))
	}

	if r, ok := h.el.(RenderedText); ok && r.TextIsRendered() {
		return nil
	}
	text := strings.TrimSpace(h.el.Text())
	if text != "" && h.el.Attr(AttrTitle) == "" {
		return h.el.SetAttr(AttrTitle, text)
	}
	return nil
}

type refresh struct {
	RefreshResult
	err error
}

// refreshLocked renders the element when the reference is valid and within
// the cutoff. The caller holds h.mu.
func (h *Handle) refreshLocked(cfg settings.Settings) refresh {
	now := h.s.clock.Now()
	r := refresh{RefreshResult: RefreshResult{Key: h.el.Key(), At: now}}

	defer func() {
		last := r.RefreshResult
		h.last = &last
	}()

	if !h.valid {
		r.Reason = ReasonUnparseable
		return r
	}

	elapsed := now.Sub(h.reference)
	r.Elapsed = elapsed
	if cfg.Cutoff != 0 && elapsed >= cfg.Cutoff {
		r.Reason = ReasonPastCutoff
		return r
	}

	text, err := phrase.Render(elapsed.Milliseconds(), cfg)
	if err != nil {
		r.Reason = ReasonRenderFailure
		r.Error = err.Error()
		r.err = err
		return r
	}
	if err := h.el.SetText(text); err != nil {
		r.Reason = ReasonRenderFailure
		r.Error = err.Error()
		r.err = errors.WrapInternal(err, "failed to write text to %s", h.el.Key())
		return r
	}

	r.Text = text
	r.Rendered = true
	return r
}

func (h *Handle) finish(r refresh) (*RefreshResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	res := r.RefreshResult
	return &res, nil
}
