package cli

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spetersoncode/timeago/internal/db"
	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/scheduler"
	"github.com/spetersoncode/timeago/internal/service"
	"github.com/spetersoncode/timeago/internal/state"
)

// session is an open database with a board rendering its entries.
type session struct {
	db    *db.DB
	sched *scheduler.Scheduler
	board *service.Board
	clock clockwork.Clock
}

// openSession opens the configured database and a board on clock. A nil
// clock means the real clock.
func openSession(clock clockwork.Clock, onRefresh func(*scheduler.RefreshResult)) (*session, error) {
	path := GetDBPath()
	if !db.Exists(path) {
		return nil, errors.NotFound("database not found at %s", db.ResolvePath(path)).
			WithSuggestion(SuggestRunInit)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, dbError(err, "failed to open database")
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, dbError(err, "failed to migrate database")
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := newLogger()
	sched := scheduler.New(scheduler.Config{
		Clock:     clock,
		Logger:    logger.WithName("scheduler"),
		OnRefresh: onRefresh,
	})

	return &session{
		db:    database,
		sched: sched,
		board: service.NewBoard(database.DB, sched, logger.WithName("board")),
		clock: clock,
	}, nil
}

// Close disposes every attached entry and closes the database.
func (s *session) Close() {
	s.board.Close()
	s.db.Close()
}

// entryView is the JSON and table shape of one entry.
type entryView struct {
	Key     string `json:"key"`
	Phrase  string `json:"phrase"`
	Instant string `json:"instant"`
	Title   string `json:"title,omitempty"`
	IsTime  bool   `json:"is_time"`
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
	Updated string `json:"updated_at"`
}

func viewOf(st *service.EntryStatus) entryView {
	v := entryView{
		Key:     st.Key,
		Phrase:  st.Rendered,
		Instant: st.Source(),
		Title:   st.Title,
		IsTime:  st.IsTime,
		State:   st.State,
		Updated: st.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !st.IsTime {
		v.Title = ""
	}
	if st.Last != nil && !st.Last.Rendered {
		v.Reason = st.Last.Reason
	}
	return v
}

// stateLabel colors a tracking state for terminal output.
func stateLabel(s string) string {
	switch s {
	case state.Active.String():
		return paint(styleActive, s)
	case state.Disposed.String():
		return paint(styleDisposed, s)
	default:
		return paint(styleMuted, s)
	}
}
