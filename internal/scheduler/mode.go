package scheduler

import (
	"time"

	"github.com/hamed0406/statusnotifier/internal/domain"
)

// Mode picks the polling period. Calm polls slowly while everything is
// online; Alert polls fast while anything is not.
type Mode int

const (
	Calm Mode = iota
	Alert
)

func (m Mode) String() string {
	if m == Alert {
		return "alert"
	}
	return "calm"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

type Intervals struct {
	Calm  time.Duration
	Alert time.Duration
}

var DefaultIntervals = Intervals{Calm: 60 * time.Second, Alert: 5 * time.Second}

func (iv Intervals) Period(m Mode) time.Duration {
	if m == Alert {
		return iv.Alert
	}
	return iv.Calm
}

// Next is the transition function: Calm iff every latest status is Online.
// There is no debounce; one reading is enough to switch.
func Next(statuses ...domain.Status) Mode {
	if domain.AllOnline(statuses...) {
		return Calm
	}
	return Alert
}
