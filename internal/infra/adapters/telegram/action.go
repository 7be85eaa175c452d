package telegram

import "strings"

// actionKind enumerates every admin capability reachable from an inline
// button. Callback payloads are decoded into an action exactly once, at the
// update boundary, and dispatched with a switch.
type actionKind int

const (
	actionUnknown actionKind = iota
	actionRemove
	actionRemoveAll
	actionSend
	actionSendAll
	actionScheduleNone
	actionScheduleDaily
	actionScheduleWeekly
	actionImagesDone
)

type action struct {
	kind      actionKind
	messageID string // set for actionRemove / actionSend
}

const (
	cbRemovePrefix = "rm:"
	cbSendPrefix   = "send:"
	cbAll          = "all"
	cbSchedNone    = "sched:none"
	cbSchedDaily   = "sched:daily"
	cbSchedWeekly  = "sched:weekly"
	cbImagesDone   = "images:done"
)

func decodeAction(data string) action {
	switch data {
	case cbSchedNone:
		return action{kind: actionScheduleNone}
	case cbSchedDaily:
		return action{kind: actionScheduleDaily}
	case cbSchedWeekly:
		return action{kind: actionScheduleWeekly}
	case cbImagesDone:
		return action{kind: actionImagesDone}
	}
	if id, ok := strings.CutPrefix(data, cbRemovePrefix); ok {
		if id == cbAll {
			return action{kind: actionRemoveAll}
		}
		return action{kind: actionRemove, messageID: id}
	}
	if id, ok := strings.CutPrefix(data, cbSendPrefix); ok {
		if id == cbAll {
			return action{kind: actionSendAll}
		}
		return action{kind: actionSend, messageID: id}
	}
	return action{kind: actionUnknown}
}

func encodeRemove(id string) string { return cbRemovePrefix + id }
func encodeSend(id string) string   { return cbSendPrefix + id }
