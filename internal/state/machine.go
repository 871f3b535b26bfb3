// Package state implements the lifecycle of a tracked element:
// unattached, active, disposed.
package state

import (
	"fmt"

	"github.com/spetersoncode/timeago/internal/errors"
)

// State is the lifecycle state of a tracked element.
type State int32

const (
	Unattached State = iota
	Active
	Disposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Active:
		return "active"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == Disposed
}

// Action is an operation requested on a tracked element.
type Action string

const (
	ActionAttach  Action = "attach"
	ActionRender  Action = "render"
	ActionUpdate  Action = "update"
	ActionRefresh Action = "refresh"
	ActionDispose Action = "dispose"
)

// TransitionRule defines the state an action leads to.
type TransitionRule struct {
	From        State
	Action      Action
	To          State
	Description string
}

// validTransitions defines every allowed (state, action) pair.
var validTransitions = []TransitionRule{
	{
		From:        Unattached,
		Action:      ActionAttach,
		To:          Active,
		Description: "Element attached, first render done",
	},
	{
		From:        Active,
		Action:      ActionRender,
		To:          Active,
		Description: "Timer tick re-rendered the element",
	},
	{
		From:        Active,
		Action:      ActionUpdate,
		To:          Active,
		Description: "Reference instant replaced",
	},
	{
		From:        Active,
		Action:      ActionRefresh,
		To:          Active,
		Description: "Reference instant re-read from the element",
	},
	{
		From:        Active,
		Action:      ActionDispose,
		To:          Disposed,
		Description: "Timer stopped, element forgotten",
	},

	// dispose is idempotent
	{
		From:        Unattached,
		Action:      ActionDispose,
		To:          Unattached,
		Description: "Nothing to dispose",
	},
	{
		From:        Disposed,
		Action:      ActionDispose,
		To:          Disposed,
		Description: "Already disposed",
	},
}

type ruleKey struct {
	from   State
	action Action
}

var ruleMap map[ruleKey]TransitionRule

func init() {
	ruleMap = make(map[ruleKey]TransitionRule, len(validTransitions))
	for _, r := range validTransitions {
		ruleMap[ruleKey{r.From, r.Action}] = r
	}
}

// Next returns the state that action leads to from s, or a StateError when
// the action is not allowed in s.
func Next(from State, action Action) (State, error) {
	r, ok := ruleMap[ruleKey{from, action}]
	if !ok {
		return from, errors.StateError("cannot %s an element that is %s", action, from)
	}
	return r.To, nil
}

// Rules returns every transition rule.
func Rules() []TransitionRule {
	out := make([]TransitionRule, len(validTransitions))
	copy(out, validTransitions)
	return out
}
