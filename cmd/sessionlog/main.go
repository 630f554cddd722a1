// sessionlog renders the events.jsonl session log as a per-session report:
// one section per session with its events, durations, and outcome counts.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

type event struct {
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Project   string            `json:"project"`
	Extra     map[string]string `json:"extra"`
}

type session struct {
	id     string
	events []event
}

func main() {
	var inputPath string
	var outputPath string
	flag.StringVar(&inputPath, "in", "", "input events.jsonl path (required)")
	flag.StringVar(&outputPath, "out", "", "output file path (optional, defaults to stdout)")
	flag.Parse()

	if inputPath == "" {
		exitWithError(errors.New("missing -in path"))
	}

	sessions, skipped, err := parseEvents(inputPath)
	if err != nil {
		exitWithError(fmt.Errorf("parse events: %w", err))
	}

	rendered := renderSessions(sessions, skipped)

	if outputPath == "" {
		fmt.Println(rendered)
		return
	}
	if err := os.WriteFile(outputPath, []byte(rendered+"\n"), 0o644); err != nil {
		exitWithError(fmt.Errorf("write output: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "sessionlog:", err)
	os.Exit(1)
}

// parseEvents groups events by session in first-seen order. Malformed lines
// are counted, not fatal; a crashed run must not make its log unreadable.
func parseEvents(path string) ([]session, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var order []string
	bySession := make(map[string][]event)
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Event == "" {
			skipped++
			continue
		}
		if _, seen := bySession[ev.SessionID]; !seen {
			order = append(order, ev.SessionID)
		}
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	sessions := make([]session, 0, len(order))
	for _, id := range order {
		events := bySession[id]
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp.Before(events[j].Timestamp)
		})
		sessions = append(sessions, session{id: id, events: events})
	}
	return sessions, skipped, nil
}

func renderSessions(sessions []session, skipped int) string {
	var b strings.Builder

	if len(sessions) == 0 {
		b.WriteString("no sessions recorded")
		if skipped > 0 {
			fmt.Fprintf(&b, " (%d malformed line(s) skipped)", skipped)
		}
		return b.String()
	}

	for i, s := range sessions {
		if i > 0 {
			b.WriteString("\n")
		}
		renderSession(&b, s)
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\n%d malformed line(s) skipped\n", skipped)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSession(b *strings.Builder, s session) {
	first := s.events[0].Timestamp
	last := s.events[len(s.events)-1].Timestamp

	shortID := s.id
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	fmt.Fprintf(b, "session %s — %s (%s)\n",
		shortID,
		first.Local().Format("2006-01-02 15:04:05"),
		formatSpan(last.Sub(first)))

	counts := make(map[string]int)
	for _, ev := range s.events {
		counts[ev.Event]++
		fmt.Fprintf(b, "  %s  %-16s", ev.Timestamp.Local().Format("15:04:05"), ev.Event)
		if ev.Project != "" {
			fmt.Fprintf(b, "  %s", ev.Project)
		}
		if detail := extraSummary(ev.Extra); detail != "" {
			fmt.Fprintf(b, "  (%s)", detail)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "  totals: %d generated, %d assembled, %d deleted\n",
		counts["generate_finish"], counts["assemble_finish"], counts["delete"])
}

func extraSummary(extra map[string]string) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+extra[k])
	}
	return strings.Join(parts, " ")
}

func formatSpan(d time.Duration) string {
	if d < time.Second {
		return "under a second"
	}
	return d.Round(time.Second).String()
}
