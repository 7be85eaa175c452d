//go:build !integration

package telegram

import "testing"

func TestDecodeAction(t *testing.T) {
	cases := []struct {
		data string
		want action
	}{
		{"rm:MESSAGE_3", action{kind: actionRemove, messageID: "MESSAGE_3"}},
		{"rm:all", action{kind: actionRemoveAll}},
		{"send:MESSAGE_1", action{kind: actionSend, messageID: "MESSAGE_1"}},
		{"send:all", action{kind: actionSendAll}},
		{"sched:none", action{kind: actionScheduleNone}},
		{"sched:daily", action{kind: actionScheduleDaily}},
		{"sched:weekly", action{kind: actionScheduleWeekly}},
		{"images:done", action{kind: actionImagesDone}},
		{"", action{kind: actionUnknown}},
		{"garbage", action{kind: actionUnknown}},
		{"rm", action{kind: actionUnknown}},
		{"send:", action{kind: actionSend, messageID: ""}},
	}
	for _, tc := range cases {
		if got := decodeAction(tc.data); got != tc.want {
			t.Errorf("decodeAction(%q) = %+v, want %+v", tc.data, got, tc.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, id := range []string{"MESSAGE_1", "MESSAGE_42"} {
		if got := decodeAction(encodeRemove(id)); got.kind != actionRemove || got.messageID != id {
			t.Errorf("remove round-trip for %s: %+v", id, got)
		}
		if got := decodeAction(encodeSend(id)); got.kind != actionSend || got.messageID != id {
			t.Errorf("send round-trip for %s: %+v", id, got)
		}
	}
}
