package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/timeago/internal/db"
	"github.com/spetersoncode/timeago/internal/models"
	"github.com/spetersoncode/timeago/internal/scheduler"
	"github.com/spetersoncode/timeago/internal/service"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

var now = time.Date(2008, 7, 17, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo   *db.EntryRepo
	board  *service.Board
	clock  *clockwork.FakeClock
	syncer *Syncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	clock := clockwork.NewFakeClockAt(now)
	board := service.NewBoard(database.DB, scheduler.New(scheduler.Config{Clock: clock}), logr.Discard())
	t.Cleanup(board.Close)
	return &fixture{
		repo:   db.NewEntryRepo(database.DB),
		board:  board,
		clock:  clock,
		syncer: NewSyncer(board, clock, logr.Discard()),
	}
}

func (f *fixture) create(t *testing.T, key string, age time.Duration) {
	t.Helper()
	require.NoError(t, f.repo.Create(&models.Entry{Key: key, Datetime: timestamp.Format(now.Add(-age)), IsTime: true}))
}

func TestSyncOnce_Empty(t *testing.T) {
	f := newFixture(t)

	result, err := f.syncer.SyncOnce()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Checked)
	assert.False(t, result.Changed())
}

func TestSyncOnce_AttachesNewEntries(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a", time.Hour)
	f.create(t, "b", 2*time.Hour)

	result, err := f.syncer.SyncOnce()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, []string{"a", "b"}, result.Attached)
	assert.ElementsMatch(t, []string{"a", "b"}, f.board.Attached())

	e, err := f.repo.GetByKey("b")
	require.NoError(t, err)
	assert.Equal(t, "about 2 hours ago", e.Rendered)

	result, err = f.syncer.SyncOnce()
	require.NoError(t, err)
	assert.False(t, result.Changed())
}

func TestSyncOnce_RefreshesChangedSource(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a", time.Hour)

	_, err := f.syncer.SyncOnce()
	require.NoError(t, err)

	require.NoError(t, f.repo.UpdateDatetime("a", timestamp.Format(now.Add(-3*time.Hour))))

	result, err := f.syncer.SyncOnce()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.Refreshed)

	e, err := f.repo.GetByKey("a")
	require.NoError(t, err)
	assert.Equal(t, "about 3 hours ago", e.Rendered)
}

func TestSyncOnce_KeepsInMemoryUpdate(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a", time.Hour)

	_, err := f.syncer.SyncOnce()
	require.NoError(t, err)

	_, err = f.board.Invoke("a", scheduler.ActionUpdate, now.Add(-5*time.Hour))
	require.NoError(t, err)

	result, err := f.syncer.SyncOnce()
	require.NoError(t, err)
	assert.False(t, result.Changed())

	ref, ok := f.board.Reference("a")
	require.True(t, ok)
	assert.True(t, now.Add(-5*time.Hour).Equal(ref))
}

func TestSyncOnce_DetachesDeletedEntries(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a", time.Hour)
	f.create(t, "b", time.Hour)

	_, err := f.syncer.SyncOnce()
	require.NoError(t, err)

	require.NoError(t, f.repo.Delete("a"))

	result, err := f.syncer.SyncOnce()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.Detached)
	assert.Equal(t, []string{"b"}, f.board.Attached())
}

func TestRunDaemon(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan *SyncResult, 4)
	done := make(chan error, 1)
	go func() {
		done <- f.syncer.RunDaemon(ctx, time.Minute, func(r *SyncResult) { results <- r })
	}()

	first := <-results
	assert.Equal(t, []string{"a"}, first.Attached)

	f.create(t, "b", time.Hour)
	require.NoError(t, f.clock.BlockUntilContext(ctx, 2))
	f.clock.Advance(time.Minute)

	select {
	case second := <-results:
		assert.Equal(t, []string{"b"}, second.Attached)
	case <-time.After(time.Second):
		t.Fatal("daemon did not run after the interval")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
