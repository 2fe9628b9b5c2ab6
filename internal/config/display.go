package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/statusnotifier/internal/render"
)

// Display holds the operator-editable text of the status message.
type Display struct {
	Title       string       `yaml:"title"`
	Footer      string       `yaml:"footer"`
	UpdatedText string       `yaml:"updated_text"`
	WebLabel    string       `yaml:"web_label"`
	AppLabel    string       `yaml:"app_label"`
	UptimeLabel string       `yaml:"uptime_label"`
	Emoji       render.Emoji `yaml:"emoji"`
}

var DefaultDisplay = Display{
	Title:       "🛰️ System Status",
	Footer:      "Status Monitoring • Automatic Status System",
	UpdatedText: "🔄 **Last update:**",
	WebLabel:    "🌐 Website",
	AppLabel:    "📱 Application",
	UptimeLabel: "📈 Uptime",
	Emoji: render.Emoji{
		Online:  "🟢",
		Offline: "🔴",
		Care:    "🟡",
	},
}

// UnmarshalYAML starts from DefaultDisplay so a partial file only overrides
// the keys it names.
func (d *Display) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw Display
	r := raw(DefaultDisplay)
	if err := unmarshal(&r); err != nil {
		return err
	}
	*d = Display(r)
	return nil
}

// LoadDisplay reads path, or returns DefaultDisplay when path is empty.
func LoadDisplay(path string) (Display, error) {
	if path == "" {
		return DefaultDisplay, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Display{}, fmt.Errorf("read display file: %w", err)
	}
	d := DefaultDisplay
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Display{}, fmt.Errorf("parse display file: %w", err)
	}
	return d, nil
}
