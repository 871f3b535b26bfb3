package scheduler

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/timeago/internal/element"
	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/state"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

var t0 = time.Date(2008, 7, 17, 9, 24, 17, 0, time.UTC)

const wait = time.Second

type harness struct {
	clock   *clockwork.FakeClock
	sched   *Scheduler
	results chan *RefreshResult
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:   clockwork.NewFakeClockAt(t0),
		results: make(chan *RefreshResult, 16),
	}
	h.sched = New(Config{
		Clock:     h.clock,
		OnRefresh: func(r *RefreshResult) { h.results <- r },
	})
	t.Cleanup(h.sched.Close)
	return h
}

// tick advances the clock by d and waits for the refresh it triggers.
func (h *harness) tick(t *testing.T, d time.Duration) *RefreshResult {
	t.Helper()
	h.clock.Advance(d)
	select {
	case r := <-h.results:
		return r
	case <-time.After(wait):
		t.Fatal("no refresh after advancing the clock")
		return nil
	}
}

func (h *harness) assertQuiet(t *testing.T) {
	t.Helper()
	select {
	case r := <-h.results:
		t.Fatalf("unexpected refresh: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func every(d time.Duration) AttachOptions {
	return AttachOptions{Settings: settings.Options{RefreshInterval: settings.Duration(d)}}
}

func timeElement(key string, instant time.Time) *element.Memory {
	return element.NewTime(key, timestamp.Format(instant), "")
}

func TestAttach_RendersImmediately(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	hd, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "5 minutes ago", el.Text())
	assert.Equal(t, state.Active, hd.State())
	require.NotNil(t, hd.Last())
	assert.True(t, hd.Last().Rendered)
	assert.Equal(t, 5*time.Minute, hd.Last().Elapsed)

	ref, ok := hd.Reference()
	assert.True(t, ok)
	assert.True(t, t0.Add(-5*time.Minute).Equal(ref))
}

func TestAttach_TickerRerenders(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	_, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)

	r := h.tick(t, time.Minute)
	assert.True(t, r.Rendered)
	assert.Equal(t, "6 minutes ago", r.Text)
	assert.Equal(t, "6 minutes ago", el.Text())

	r = h.tick(t, time.Minute)
	assert.Equal(t, "7 minutes ago", r.Text)
	assert.Equal(t, 3, el.Writes())
}

func TestAttach_ZeroIntervalRendersOnce(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-time.Hour))

	hd, err := h.sched.Attach(el, every(0))
	require.NoError(t, err)
	assert.Equal(t, "about an hour ago", el.Text())

	select {
	case <-hd.Done():
	default:
		t.Fatal("handle without a ticker should be done")
	}

	h.clock.Advance(time.Hour)
	h.assertQuiet(t)
	assert.Equal(t, 1, el.Writes())
}

func TestAttach_ExistingKeyReturnsSameHandle(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	first, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)
	second, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)
	assert.Same(t, first, second)

	h.tick(t, time.Minute)
	h.assertQuiet(t)
	assert.Equal(t, 2, el.Writes(), "one initial render plus one tick")
	assert.Equal(t, []string{"a"}, h.sched.Keys())
}

func TestAttach_NegativeIntervalRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.sched.Attach(timeElement("a", t0), every(-time.Second))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidArgs))
	_, ok := h.sched.Lookup("a")
	assert.False(t, ok)
}

func TestAttach_Future(t *testing.T) {
	h := newHarness(t)

	past, err := h.sched.Attach(timeElement("past", t0.Add(time.Hour)), every(0))
	require.NoError(t, err)
	assert.Equal(t, "about an hour ago", past.Last().Text)

	opts := every(0)
	opts.Settings.AllowFuture = settings.Bool(true)
	future, err := h.sched.Attach(timeElement("future", t0.Add(time.Hour)), opts)
	require.NoError(t, err)
	assert.Equal(t, "about an hour from now", future.Last().Text)
}

func TestAttach_ExplicitInstant(t *testing.T) {
	h := newHarness(t)
	el := element.NewTime("a", "not a timestamp", "")

	hd, err := h.sched.Attach(el, AttachOptions{Instant: t0.Add(-2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "about 2 hours ago", el.Text())

	ref, ok := hd.Reference()
	assert.True(t, ok)
	assert.True(t, t0.Add(-2*time.Hour).Equal(ref))
}

func TestCutoff_FreezesText(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-30*time.Second))

	opts := every(time.Minute)
	opts.Settings.Cutoff = settings.Duration(2 * time.Minute)
	_, err := h.sched.Attach(el, opts)
	require.NoError(t, err)
	assert.Equal(t, "less than a minute ago", el.Text())

	r := h.tick(t, time.Minute)
	assert.True(t, r.Rendered)
	assert.Equal(t, "2 minutes ago", el.Text())

	r = h.tick(t, time.Minute)
	assert.False(t, r.Rendered)
	assert.Equal(t, ReasonPastCutoff, r.Reason)
	assert.Equal(t, "2 minutes ago", el.Text(), "text frozen past the cutoff")
}

func TestCutoff_AppliesToFirstRender(t *testing.T) {
	h := newHarness(t)
	el := element.NewTime("a", timestamp.Format(t0.Add(-time.Hour)), "July 17")

	opts := every(0)
	opts.Settings.Cutoff = settings.Duration(time.Minute)
	hd, err := h.sched.Attach(el, opts)
	require.NoError(t, err)

	assert.Equal(t, "July 17", el.Text())
	assert.Equal(t, ReasonPastCutoff, hd.Last().Reason)
}

func TestDispose_StopsRendering(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	hd, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)

	hd.Dispose()
	assert.Equal(t, state.Disposed, hd.State())

	select {
	case <-hd.Done():
	case <-time.After(wait):
		t.Fatal("ticker did not stop")
	}

	h.clock.Advance(5 * time.Minute)
	h.assertQuiet(t)
	assert.Equal(t, 1, el.Writes())
	assert.Equal(t, "5 minutes ago", el.Text())

	_, ok := h.sched.Lookup("a")
	assert.False(t, ok)
}

func TestDispose_Idempotent(t *testing.T) {
	h := newHarness(t)
	hd, err := h.sched.Attach(timeElement("a", t0), every(time.Minute))
	require.NoError(t, err)

	hd.Dispose()
	hd.Dispose()
	h.sched.Dispose("a")
	h.sched.Dispose("missing")
	assert.Equal(t, state.Disposed, hd.State())

	_, err = hd.Update(t0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindStateError))

	_, err = hd.RefreshFromSource()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindStateError))
}

func TestDispose_ThenAttachStartsFresh(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	first, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)
	first.Dispose()

	second, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, state.Active, second.State())

	r := h.tick(t, time.Minute)
	assert.Equal(t, "6 minutes ago", r.Text)
	h.assertQuiet(t)
}

// disposing wraps an element so that writing text disposes it.
type disposing struct {
	*element.Memory
	sched *Scheduler
	after int
}

func (d *disposing) SetText(text string) error {
	if err := d.Memory.SetText(text); err != nil {
		return err
	}
	if d.Memory.Writes() >= d.after {
		d.sched.Dispose(d.Key())
	}
	return nil
}

func TestDispose_FromInsideRender(t *testing.T) {
	h := newHarness(t)
	el := &disposing{Memory: timeElement("a", t0.Add(-5*time.Minute)), sched: h.sched, after: 2}

	hd, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	select {
	case <-hd.Done():
	case <-time.After(wait):
		t.Fatal("ticker did not stop")
	}
	assert.Equal(t, state.Disposed, hd.State())
	assert.Equal(t, "6 minutes ago", el.Text())

	// The render that disposed the element reports nothing.
	h.assertQuiet(t)

	h.clock.Advance(time.Minute)
	h.assertQuiet(t)
	assert.Equal(t, 2, el.Writes())
}

func TestUpdate_ReplacesReference(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	hd, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)

	r, err := hd.Update(t0.Add(-2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "about 2 hours ago", r.Text)
	assert.Equal(t, "about 2 hours ago", el.Text())

	// The source attribute is left alone.
	assert.Equal(t, timestamp.Format(t0.Add(-5*time.Minute)), el.Attr(AttrDatetime))

	r = h.tick(t, time.Minute)
	assert.Equal(t, "about 2 hours ago", r.Text)
}

func TestRefreshFromSource(t *testing.T) {
	h := newHarness(t)
	el := timeElement("a", t0.Add(-5*time.Minute))

	hd, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)

	require.NoError(t, el.SetAttr(AttrDatetime, timestamp.Format(t0.Add(-72*time.Hour))))
	r, err := hd.RefreshFromSource()
	require.NoError(t, err)
	assert.Equal(t, "3 days ago", r.Text)
}

func TestUnparseableSource_Skipped(t *testing.T) {
	h := newHarness(t)
	el := element.NewTime("a", "yesterday", "original")

	hd, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ReasonUnparseable, hd.Last().Reason)
	assert.Equal(t, "original", el.Text())

	_, ok := hd.Reference()
	assert.False(t, ok)

	r := h.tick(t, time.Minute)
	assert.False(t, r.Rendered)
	assert.Equal(t, ReasonUnparseable, r.Reason)
	assert.Equal(t, "original", el.Text())

	require.NoError(t, el.SetAttr(AttrDatetime, timestamp.Format(h.clock.Now())))
	r, err = hd.RefreshFromSource()
	require.NoError(t, err)
	assert.Equal(t, "less than a minute ago", r.Text)
}

func TestTitle_FromText(t *testing.T) {
	h := newHarness(t)

	el := element.NewTime("a", timestamp.Format(t0), "July 17, 2008")
	_, err := h.sched.Attach(el, every(0))
	require.NoError(t, err)
	assert.Equal(t, "July 17, 2008", el.Attr(AttrTitle))

	titled := element.NewTime("b", timestamp.Format(t0), "July 17, 2008")
	require.NoError(t, titled.SetAttr(AttrTitle, "keep me"))
	_, err = h.sched.Attach(titled, every(0))
	require.NoError(t, err)
	assert.Equal(t, "keep me", titled.Attr(AttrTitle))

	plain := element.NewMemory("c", timestamp.Format(t0.Add(-time.Minute)), "")
	_, err = h.sched.Attach(plain, every(0))
	require.NoError(t, err)
	assert.Equal(t, "about a minute ago", plain.Text())
	assert.Equal(t, timestamp.Format(t0.Add(-time.Minute)), plain.Attr(AttrTitle), "empty text leaves the title")

	labelled := element.NewMemory("d", timestamp.Format(t0.Add(-time.Minute)), "July 17")
	hd, err := h.sched.Attach(labelled, every(0))
	require.NoError(t, err)
	assert.Equal(t, timestamp.Format(t0.Add(-time.Minute)), labelled.Attr(AttrTitle), "a plain title holds the instant")
	_, ok := hd.Reference()
	assert.True(t, ok)
}

func TestTitle_LocaleTitle(t *testing.T) {
	h := newHarness(t)
	el := element.NewTime("a", timestamp.Format(t0.Add(-time.Hour)), "July 17")

	opts := every(0)
	opts.Settings.LocaleTitle = settings.Bool(true)
	hd, err := h.sched.Attach(el, opts)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(-time.Hour).Local().Format(LocaleTitleLayout), el.Attr(AttrTitle))

	_, err = hd.Update(t0.Add(-2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(-2*time.Hour).Local().Format(LocaleTitleLayout), el.Attr(AttrTitle))
}

func TestDefaultsAppliedPerRender(t *testing.T) {
	t.Cleanup(settings.ResetDefaults)

	h := newHarness(t)
	el := timeElement("a", t0.Add(time.Hour))

	_, err := h.sched.Attach(el, every(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "about an hour ago", el.Text())

	d := settings.Builtin()
	d.AllowFuture = true
	require.NoError(t, settings.SetDefaults(d))
	assert.Equal(t, "about an hour ago", el.Text(), "rendered text is not touched")

	r := h.tick(t, time.Minute)
	assert.Equal(t, "about an hour from now", r.Text)
}

func TestClose_DisposesAll(t *testing.T) {
	h := newHarness(t)
	a, err := h.sched.Attach(timeElement("a", t0), every(time.Minute))
	require.NoError(t, err)
	b, err := h.sched.Attach(timeElement("b", t0), every(time.Minute))
	require.NoError(t, err)

	h.sched.Close()
	assert.Equal(t, state.Disposed, a.State())
	assert.Equal(t, state.Disposed, b.State())
	assert.Empty(t, h.sched.Keys())
}
