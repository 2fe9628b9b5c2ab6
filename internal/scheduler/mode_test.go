package scheduler

import (
	"testing"
	"time"

	"github.com/hamed0406/statusnotifier/internal/domain"
)

func TestNext(t *testing.T) {
	cases := []struct {
		name string
		in   []domain.Status
		want Mode
	}{
		{"all online", []domain.Status{domain.Online, domain.Online}, Calm},
		{"web offline", []domain.Status{domain.Offline, domain.Online}, Alert},
		{"app care", []domain.Status{domain.Online, domain.Care}, Alert},
		{"both down", []domain.Status{domain.Offline, domain.Offline}, Alert},
		{"nothing observed", nil, Alert},
	}
	for _, c := range cases {
		if got := Next(c.in...); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestIntervalsPeriod(t *testing.T) {
	iv := Intervals{Calm: time.Minute, Alert: 5 * time.Second}
	if iv.Period(Calm) != time.Minute || iv.Period(Alert) != 5*time.Second {
		t.Fatalf("period mapping wrong: %+v", iv)
	}
	if DefaultIntervals.Calm != 60*time.Second || DefaultIntervals.Alert != 5*time.Second {
		t.Fatalf("defaults changed: %+v", DefaultIntervals)
	}
}

func TestModeText(t *testing.T) {
	b, _ := Alert.MarshalText()
	if string(b) != "alert" || Calm.String() != "calm" {
		t.Fatalf("mode text wrong: %s / %s", b, Calm)
	}
}
