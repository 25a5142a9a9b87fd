package booking

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusFailed, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusConfirmed, StatusFailed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusFailed, StatusPending, false},
		{StatusFailed, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []string{StatusPending, StatusConfirmed, StatusFailed, StatusCancelled}
	for _, from := range []string{StatusFailed, StatusCancelled} {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}
