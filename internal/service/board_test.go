package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/timeago/internal/db"
	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/models"
	"github.com/spetersoncode/timeago/internal/scheduler"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

var now = time.Date(2008, 7, 17, 12, 0, 0, 0, time.UTC)

func newTestBoard(t *testing.T) (*Board, *db.EntryRepo, *clockwork.FakeClock) {
	t.Helper()
	database := db.NewTestDB(t)
	clock := clockwork.NewFakeClockAt(now)
	b := NewBoard(database.DB, scheduler.New(scheduler.Config{Clock: clock}), testr.New(t))
	t.Cleanup(b.Close)
	return b, db.NewEntryRepo(database.DB), clock
}

func ago(d time.Duration) string {
	return timestamp.Format(now.Add(-d))
}

func TestBoard_Add(t *testing.T) {
	b, repo, _ := newTestBoard(t)

	st, err := b.Add(AddInput{Key: "launch", Timestamp: ago(2 * time.Hour), Title: "Launch"})
	require.NoError(t, err)
	assert.Equal(t, "launch", st.Key)
	assert.Equal(t, "active", st.State)
	assert.Equal(t, "about 2 hours ago", st.Rendered)
	require.NotNil(t, st.Last)
	assert.True(t, st.Last.Rendered)

	stored, err := repo.GetByKey("launch")
	require.NoError(t, err)
	assert.Equal(t, "about 2 hours ago", stored.Rendered)
	assert.Equal(t, "Launch", stored.Title, "an existing title is kept")
	assert.True(t, stored.IsTime)
}

func TestBoard_AddPlain(t *testing.T) {
	b, repo, _ := newTestBoard(t)

	st, err := b.Add(AddInput{Key: "note", Timestamp: ago(3 * 24 * time.Hour), Plain: true})
	require.NoError(t, err)
	assert.Equal(t, "3 days ago", st.Rendered)

	stored, err := repo.GetByKey("note")
	require.NoError(t, err)
	assert.False(t, stored.IsTime)
	assert.Equal(t, ago(3*24*time.Hour), stored.Title)
}

func TestBoard_ReattachKeepsSource(t *testing.T) {
	database := db.NewTestDB(t)
	repo := db.NewEntryRepo(database.DB)
	clock := clockwork.NewFakeClockAt(now)

	first := NewBoard(database.DB, scheduler.New(scheduler.Config{Clock: clock}), testr.New(t))
	_, err := first.Add(AddInput{Key: "plain", Timestamp: ago(3 * time.Minute), Plain: true})
	require.NoError(t, err)
	_, err = first.Add(AddInput{Key: "launch", Timestamp: ago(time.Hour)})
	require.NoError(t, err)
	first.Close()

	// A later process opens the same store.
	second := NewBoard(database.DB, scheduler.New(scheduler.Config{Clock: clock}), testr.New(t))
	t.Cleanup(second.Close)

	st, err := second.Refresh("plain")
	require.NoError(t, err)
	assert.Equal(t, "3 minutes ago", st.Rendered)
	assert.Equal(t, ago(3*time.Minute), st.Title)
	require.NotNil(t, st.Last)
	assert.Empty(t, st.Last.Reason)

	ref, ok := second.Reference("plain")
	require.True(t, ok)
	assert.True(t, ref.Equal(now.Add(-3*time.Minute)))

	st, err = second.Refresh("launch")
	require.NoError(t, err)
	assert.Equal(t, "about an hour ago", st.Rendered)

	stored, err := repo.GetByKey("launch")
	require.NoError(t, err)
	assert.Empty(t, stored.Title, "rendered text is not moved into the title")

	stored, err = repo.GetByKey("plain")
	require.NoError(t, err)
	assert.Equal(t, ago(3*time.Minute), stored.Title)
}

func TestBoard_AddEpochMillis(t *testing.T) {
	b, _, _ := newTestBoard(t)

	ms := now.Add(-10 * time.Minute).UnixMilli()
	st, err := b.Add(AddInput{Key: "ms", Timestamp: strconv.FormatInt(ms, 10)})
	require.NoError(t, err)
	assert.Equal(t, "10 minutes ago", st.Rendered)
}

func TestBoard_AddErrors(t *testing.T) {
	b, _, _ := newTestBoard(t)

	_, err := b.Add(AddInput{Key: "Bad Key", Timestamp: ago(time.Hour)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidArgs))

	_, err = b.Add(AddInput{Key: "ok", Timestamp: "last week"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindParseFailure))

	_, err = b.Add(AddInput{Key: "dup", Timestamp: ago(time.Hour)})
	require.NoError(t, err)
	_, err = b.Add(AddInput{Key: "dup", Timestamp: ago(time.Hour)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidArgs))
}

func TestBoard_GetAndList(t *testing.T) {
	b, repo, _ := newTestBoard(t)

	_, err := b.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotFound))

	_, err = b.Add(AddInput{Key: "b", Timestamp: ago(time.Minute)})
	require.NoError(t, err)

	// Written by another process; not attached here.
	require.NoError(t, repo.Create(&models.Entry{Key: "a", Datetime: ago(time.Hour), IsTime: true}))

	list, err := b.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Key)
	assert.Equal(t, "unattached", list[0].State)
	assert.Nil(t, list[0].Last)
	assert.Equal(t, "b", list[1].Key)
	assert.Equal(t, "active", list[1].State)

	st, err := b.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "about a minute ago", st.Rendered)
}

func TestBoard_AttachAll(t *testing.T) {
	b, repo, _ := newTestBoard(t)

	require.NoError(t, repo.Create(&models.Entry{Key: "a", Datetime: ago(time.Hour), IsTime: true}))
	require.NoError(t, repo.Create(&models.Entry{Key: "b", Datetime: "not a time", IsTime: true}))

	list, err := b.AttachAll()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "about an hour ago", list[0].Rendered)
	assert.Equal(t, scheduler.ReasonUnparseable, list[1].Last.Reason)
	assert.ElementsMatch(t, []string{"a", "b"}, b.Attached())

	// Attaching again starts nothing new.
	again, err := b.AttachAll()
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Len(t, b.Attached(), 2)
}

func TestBoard_Set(t *testing.T) {
	b, repo, _ := newTestBoard(t)
	_, err := b.Add(AddInput{Key: "launch", Timestamp: ago(time.Hour)})
	require.NoError(t, err)

	st, err := b.Set("launch", ago(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "5 minutes ago", st.Rendered)
	assert.Equal(t, ago(5*time.Minute), st.Datetime)

	stored, err := repo.GetByKey("launch")
	require.NoError(t, err)
	assert.Equal(t, ago(5*time.Minute), stored.Datetime)

	_, err = b.Set("missing", ago(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotFound))

	_, err = b.Set("launch", "garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindParseFailure))
}

func TestBoard_Refresh(t *testing.T) {
	b, repo, _ := newTestBoard(t)
	_, err := b.Add(AddInput{Key: "launch", Timestamp: ago(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateDatetime("launch", ago(48*time.Hour)))
	st, err := b.Refresh("launch")
	require.NoError(t, err)
	assert.Equal(t, "2 days ago", st.Rendered)
}

func TestBoard_Invoke(t *testing.T) {
	b, repo, _ := newTestBoard(t)
	require.NoError(t, repo.Create(&models.Entry{Key: "a", Datetime: ago(time.Hour), IsTime: true}))

	_, err := b.Invoke("a", scheduler.ActionUpdate, now.Add(-2*time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindStateError))

	st, err := b.Invoke("a", scheduler.ActionInit, nil)
	require.NoError(t, err)
	assert.Equal(t, "about an hour ago", st.Rendered)
	assert.Equal(t, "active", st.State)

	st, err = b.Invoke("a", scheduler.ActionUpdate, now.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "about 2 hours ago", st.Rendered)
	assert.Equal(t, ago(time.Hour), st.Datetime, "update leaves the stored source alone")

	st, err = b.Invoke("a", scheduler.ActionDispose, nil)
	require.NoError(t, err)
	assert.Equal(t, "unattached", st.State)

	_, err = b.Invoke("a", "explode", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindUnknownAction))

	_, err = b.Invoke("missing", scheduler.ActionInit, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestBoard_Remove(t *testing.T) {
	b, repo, _ := newTestBoard(t)
	_, err := b.Add(AddInput{Key: "launch", Timestamp: ago(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, b.Remove("launch"))
	assert.Empty(t, b.Attached())

	stored, err := repo.GetByKey("launch")
	require.NoError(t, err)
	assert.Nil(t, stored)

	err = b.Remove("launch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestBoard_TickerWritesStore(t *testing.T) {
	b, repo, clock := newTestBoard(t)
	_, err := b.Add(AddInput{Key: "launch", Timestamp: ago(5 * time.Minute)})
	require.NoError(t, err)

	clock.Advance(settings.DefaultRefreshInterval)
	require.Eventually(t, func() bool {
		e, err := repo.GetByKey("launch")
		return err == nil && e.Rendered == "6 minutes ago"
	}, time.Second, 5*time.Millisecond)
}

func TestBoard_Phrase(t *testing.T) {
	b, _, _ := newTestBoard(t)

	got, err := b.Phrase(now.Add(-time.Hour), time.Time{}, settings.Options{})
	require.NoError(t, err)
	assert.Equal(t, "about an hour ago", got)

	got, err = b.Phrase(now, now.Add(-3*time.Hour), settings.Options{AllowFuture: settings.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, "about 3 hours from now", got)
}
