package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

type status struct {
	Mode     string     `json:"mode"`
	Period   string     `json:"period"`
	LastTick *time.Time `json:"last_tick"`
	Targets  []struct {
		Name       string  `json:"name"`
		Status     string  `json:"status"`
		Up         int64   `json:"up"`
		Total      int64   `json:"total"`
		Percentage float64 `json:"percentage"`
		Tracked    string  `json:"tracked"`
	} `json:"targets"`
	Destinations int `json:"destinations"`
	Presentation *struct {
		ProgressBar string `json:"progress_bar"`
		UptimeText  string `json:"uptime_text"`
	} `json:"presentation"`
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(api, "/")+"/api/status", nil)
	if err != nil {
		fmt.Println("Invalid API_BASE:", err)
		os.Exit(1)
	}
	if key := os.Getenv("API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	var s status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		fmt.Println("Bad response:", err)
		os.Exit(1)
	}

	if s.LastTick == nil {
		fmt.Println("No check has run yet. Issue the status command in a channel to start.")
		return
	}
	fmt.Printf("Mode: %s (every %s), last check %s, %d channel(s)\n",
		s.Mode, s.Period, humanize.Time(*s.LastTick), s.Destinations)
	for _, t := range s.Targets {
		fmt.Printf("  %-4s %-8s %6.2f%%  (%s of %s checks, %s tracked)\n",
			t.Name, t.Status, t.Percentage, humanize.Comma(t.Up), humanize.Comma(t.Total), t.Tracked)
	}
	if s.Presentation != nil {
		fmt.Printf("  %s  %s\n", s.Presentation.ProgressBar, s.Presentation.UptimeText)
	}
}
