package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/interpreter"
)

// traceWriter appends trace events to a file as NDJSON.
type traceWriter struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
}

func newTraceWriter(path string) (*traceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &traceWriter{f: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write encodes one event. Encoding errors are dropped; tracing never
// fails a run.
func (w *traceWriter) Write(ev interpreter.TraceEvent) {
	_ = w.enc.Encode(ev)
}

func (w *traceWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

func newRunID() string {
	return fmt.Sprintf("run-%d", time.Now().UnixNano())
}

func (c *cli) cmdTrace(args []string) int {
	var file string
	textOutput := false

	for _, arg := range args {
		switch arg {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: lox trace <file.jsonl> [--json|--text]")
		return exitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		c.reportIO(fmt.Sprintf("cannot read file: %s", file), false)
		return exitUsage
	}
	defer f.Close()

	summary := computeTraceSummary(f)

	if textOutput {
		printTraceSummaryText(c.stdout, summary)
	} else {
		b, _ := json.Marshal(summary)
		fmt.Fprintln(c.stdout, string(b))
	}
	return exitOK
}

// TraceSummary aggregates an NDJSON trace.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	Statements     int            `json:"statements"`
	FnCalls        int            `json:"fnCalls"`
	CallsByName    map[string]int `json:"callsByName"`
	Errors         int            `json:"errors"`
	ErrorCodes     map[string]int `json:"errorCodes,omitempty"`
	BudgetExceeded int            `json:"budgetExceeded"`
	OK             *bool          `json:"ok,omitempty"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
}

type traceEvent struct {
	Event string         `json:"event"`
	RunID string         `json:"runId"`
	TS    string         `json:"ts"`
	Data  map[string]any `json:"data,omitempty"`
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		CallsByName: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event traceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch interpreter.TraceEventType(event.Event) {
		case interpreter.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case interpreter.TraceRunEnd:
			summary.EndTime = event.TS
			if ok, isBool := event.Data["ok"].(bool); isBool {
				summary.OK = &ok
			}
		case interpreter.TraceStmtStart:
			summary.Statements++
		case interpreter.TraceFnCallStart:
			summary.FnCalls++
			if name, ok := event.Data["fn"].(string); ok {
				summary.CallsByName[name]++
			}
		case interpreter.TraceError:
			summary.Errors++
			if code, ok := event.Data["code"].(string); ok {
				if summary.ErrorCodes == nil {
					summary.ErrorCodes = make(map[string]int)
				}
				summary.ErrorCodes[code]++
				if code == diagnostics.EBudget {
					summary.BudgetExceeded++
				}
			}
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Calls: %d\n", s.FnCalls)

	names := make([]string, 0, len(s.CallsByName))
	for name := range s.CallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByName[name])
	}

	fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	if s.BudgetExceeded > 0 {
		fmt.Fprintf(w, "Budget exceeded: %d\n", s.BudgetExceeded)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
