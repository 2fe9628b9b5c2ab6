package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/uptime"
)

// BarWidth is the number of segments in the uptime progress bar.
const BarWidth = 10

const (
	barFull  = "█"
	barEmpty = "░"
)

type Color int

const (
	Red Color = iota
	Yellow
	Green
)

func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	default:
		return "red"
	}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Emoji maps a status to the marker shown next to it.
type Emoji struct {
	Online  string `yaml:"online"`
	Offline string `yaml:"offline"`
	Care    string `yaml:"care"`
}

func (e Emoji) For(s domain.Status) string {
	switch s {
	case domain.Online:
		return e.Online
	case domain.Care:
		return e.Care
	default:
		return e.Offline
	}
}

// Uptime is the counter view for both targets at render time.
type Uptime struct {
	Web uptime.Stats
	App uptime.Stats
}

type Presentation struct {
	Color       Color  `json:"color"`
	WebEmoji    string `json:"web_emoji"`
	AppEmoji    string `json:"app_emoji"`
	WebText     string `json:"web_text"`
	AppText     string `json:"app_text"`
	UptimeText  string `json:"uptime_text"`
	ProgressBar string `json:"progress_bar"`
}

// Renderer turns statuses into a Presentation. It holds only display
// settings, so Render has no side effects and repeats exactly.
type Renderer struct {
	Emoji Emoji
}

func (r Renderer) Render(web, app domain.Status, up Uptime) Presentation {
	return Presentation{
		Color:       PickColor(web, app),
		WebEmoji:    r.Emoji.For(web),
		AppEmoji:    r.Emoji.For(app),
		WebText:     web.Label(),
		AppText:     app.Label(),
		UptimeText:  UptimeText(up),
		ProgressBar: ProgressBar(meanPercentage(up)),
	}
}

// PickColor is green when both are online, yellow whenever the app is in
// maintenance, red otherwise.
func PickColor(web, app domain.Status) Color {
	switch {
	case web == domain.Online && app == domain.Online:
		return Green
	case app == domain.Care:
		return Yellow
	default:
		return Red
	}
}

// ProgressBar fills floor(pct/10) of BarWidth segments.
func ProgressBar(pct float64) string {
	filled := int(math.Floor(pct / 10))
	if filled < 0 {
		filled = 0
	}
	if filled > BarWidth {
		filled = BarWidth
	}
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, BarWidth-filled)
}

func UptimeText(up Uptime) string {
	tracked := up.Web.Elapsed
	if up.App.Elapsed > tracked {
		tracked = up.App.Elapsed
	}
	return fmt.Sprintf("Web %.2f%% · App %.2f%% · %s",
		up.Web.Percentage, up.App.Percentage, trackedText(tracked))
}

func trackedText(d time.Duration) string {
	if d <= 0 {
		return "no data yet"
	}
	if d < time.Second {
		return "under a second tracked"
	}
	// fixed base keeps the output independent of the wall clock
	base := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(base, base.Add(d), "", "")) + " tracked"
}

func meanPercentage(up Uptime) float64 {
	return (up.Web.Percentage + up.App.Percentage) / 2
}
