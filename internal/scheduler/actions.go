package scheduler

import (
	"time"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/phrase"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

// Action names accepted by Invoke.
const (
	ActionInit          = "init"
	ActionUpdate        = "update"
	ActionUpdateFromDOM = "updateFromDOM"
	ActionRefresh       = "refresh"
	ActionDispose       = "dispose"
)

// Actions lists every name Invoke accepts. The empty name means ActionInit.
func Actions() []string {
	return []string{ActionInit, ActionUpdate, ActionUpdateFromDOM, ActionRefresh, ActionDispose}
}

// Invoke runs a named action on one element. arg is action specific:
// init takes optional settings.Options, update takes a timestamp in any form
// timestamp.FromValue accepts. Unknown names return an UnknownAction error.
func (s *Scheduler) Invoke(action string, el Element, arg interface{}) (*RefreshResult, error) {
	switch action {
	case "", ActionInit:
		opts := AttachOptions{}
		switch a := arg.(type) {
		case nil:
		case settings.Options:
			opts.Settings = a
		case AttachOptions:
			opts = a
		default:
			return nil, errors.InvalidArgs("init takes settings, got %T", arg)
		}
		h, err := s.Attach(el, opts)
		if err != nil {
			return nil, err
		}
		return h.Last(), nil

	case ActionUpdate:
		instant, err := timestamp.FromValue(arg)
		if err != nil {
			return nil, err
		}
		h, err := s.handleFor(el)
		if err != nil {
			return nil, err
		}
		return h.Update(instant)

	case ActionUpdateFromDOM, ActionRefresh:
		h, err := s.handleFor(el)
		if err != nil {
			return nil, err
		}
		return h.RefreshFromSource()

	case ActionDispose:
		s.Dispose(el.Key())
		return &RefreshResult{Key: el.Key(), Reason: ReasonDisposed, At: s.clock.Now()}, nil

	default:
		return nil, errors.UnknownAction(action).
			WithSuggestion("Use one of: init, update, updateFromDOM, refresh, dispose.")
	}
}

func (s *Scheduler) handleFor(el Element) (*Handle, error) {
	h, ok := s.Lookup(el.Key())
	if !ok {
		return nil, errors.StateError("element %s is not attached", el.Key()).
			WithSuggestion("Attach the element before updating it.")
	}
	return h, nil
}

// ToPhrase renders instant relative to the scheduler's clock.
func (s *Scheduler) ToPhrase(instant time.Time, opts settings.Options) (string, error) {
	return phrase.Between(instant, s.clock.Now(), settings.Resolve(opts))
}
