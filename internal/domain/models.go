package domain

import "strings"

// Well-known target names. They double as keys in the persisted uptime file.
const (
	TargetWeb = "web"
	TargetApp = "app"
)

type Status int

const (
	Offline Status = iota
	Online
	Care // maintenance, not hard down
)

func (s Status) String() string {
	switch s {
	case Online:
		return "online"
	case Care:
		return "care"
	default:
		return "offline"
	}
}

// Label is the capitalized form shown to humans.
func (s Status) Label() string {
	v := s.String()
	return strings.ToUpper(v[:1]) + v[1:]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind selects how a target's response is classified.
type Kind string

const (
	KindHTTP Kind = "http" // 200 means online
	KindBody Kind = "body" // body text is the status word
)

type Target struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
}

// UptimeCounter counts probe ticks for one target. Up never exceeds Total.
type UptimeCounter struct {
	Up    int64 `json:"up"`
	Total int64 `json:"total"`
}

// Add returns the counter after one more tick with status s.
func (c UptimeCounter) Add(s Status) UptimeCounter {
	c.Total++
	if s == Online {
		c.Up++
	}
	return c
}

// AllOnline reports whether every status is Online. An empty set is not.
func AllOnline(statuses ...Status) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, s := range statuses {
		if s != Online {
			return false
		}
	}
	return true
}
