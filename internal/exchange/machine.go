package exchange

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

func events() fsm.Events {
	return fsm.Events{
		{Name: ActionApprove, Src: []string{StatusPending}, Dst: StatusActive},
		{Name: ActionReject, Src: []string{StatusPending}, Dst: StatusRejected},
		{Name: ActionCancel, Src: []string{StatusPending}, Dst: StatusCancelled},
		{Name: ActionReturn, Src: []string{StatusActive}, Dst: StatusReturned},
	}
}

// Next returns the status reached by applying action to an exchange in status.
func Next(ctx context.Context, status, action string) (string, error) {
	if !knownAction(action) {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	m := fsm.NewFSM(status, events(), fsm.Callbacks{})
	if !m.Can(action) {
		return "", fmt.Errorf("%w: cannot %s a %s exchange", ErrInvalidTransition, action, status)
	}
	if err := m.Event(ctx, action); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return m.Current(), nil
}

func knownAction(action string) bool {
	switch action {
	case ActionApprove, ActionReject, ActionCancel, ActionReturn:
		return true
	}
	return false
}
