package session

import (
	"fmt"

	"cooking-buddy/internal/pkg/common"
)

// State 表單會話狀態
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingInput State = "awaiting_input"
	StateSubmitted     State = "submitted"
	StateDisplaying    State = "displaying"
)

// Event 觸發狀態轉換的事件
type Event string

const (
	EventOpen       Event = "open"
	EventEdit       Event = "edit"
	EventTranscribe Event = "transcribe"
	EventResetField Event = "reset_field"
	EventSubmit     Event = "submit"
	EventComplete   Event = "complete"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventOpen:  StateAwaitingInput,
		EventReset: StateAwaitingInput,
	},
	StateAwaitingInput: {
		EventOpen:       StateAwaitingInput,
		EventEdit:       StateAwaitingInput,
		EventTranscribe: StateAwaitingInput,
		EventResetField: StateAwaitingInput,
		EventSubmit:     StateSubmitted,
		EventReset:      StateAwaitingInput,
	},
	StateSubmitted: {
		EventComplete: StateDisplaying,
		EventFail:     StateAwaitingInput,
	},
	StateDisplaying: {
		EventEdit:       StateDisplaying,
		EventTranscribe: StateDisplaying,
		EventResetField: StateDisplaying,
		EventSubmit:     StateSubmitted,
		EventReset:      StateAwaitingInput,
	},
}

// Transition 純函式：回傳 event 作用於 from 後的狀態
func Transition(from State, event Event) (State, error) {
	if next, ok := transitions[from][event]; ok {
		return next, nil
	}
	return from, common.ErrInvalidTransition.Wrap(fmt.Errorf("%s does not accept %s", from, event))
}
