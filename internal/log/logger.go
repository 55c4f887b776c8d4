package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/On-Jun9/NamePipe/pkg/types"
)

type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	logJSON bool
	logText bool
	colors  palette
}

type palette struct {
	header *color.Color
	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
	dimmed *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header: color.New(color.Bold, color.FgCyan),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
		dimmed: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.header, p.ok, p.warn, p.fail, p.dimmed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// New opens logFilePath for appending. Console output is coloured only when
// stdout is a terminal.
func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	fd := os.Stdout.Fd()
	return &Logger{
		console: os.Stdout,
		file:    file,
		logJSON: logJSON,
		logText: logText,
		colors:  newPalette(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}, nil
}

// NewConsole returns a logger without a file sink writing plain text to w.
func NewConsole(w io.Writer) *Logger {
	return &Logger{console: w, colors: newPalette(false)}
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type LogEntry struct {
	Timestamp time.Time          `json:"timestamp"`
	Level     string             `json:"level"`
	Message   string             `json:"message"`
	OldPath   string             `json:"old_path,omitempty"`
	NewPath   string             `json:"new_path,omitempty"`
	Action    types.RenameAction `json:"action,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// LogRename records the outcome of one planned rename.
func (l *Logger) LogRename(entry types.RenameEntry, action types.RenameAction, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	le := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   fmt.Sprintf("%s: %s -> %s", action, entry.OldName, entry.NewName),
		OldPath:   entry.OldPath,
		NewPath:   entry.NewPath,
		Action:    action,
	}
	if err != nil {
		le.Level = "ERROR"
		le.Error = err.Error()
	}

	l.writeEntry(le)
}

func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writeEntry(LogEntry{Timestamp: time.Now(), Level: "INFO", Message: msg})
}

// Warn is written to the file sink and echoed to the console.
func (l *Logger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writeEntry(LogEntry{Timestamp: time.Now(), Level: "WARN", Message: msg})
	l.colors.warn.Fprintf(l.console, "warning: %s\n", msg)
}

func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{Timestamp: time.Now(), Level: "ERROR", Message: msg}
	if err != nil {
		entry.Error = err.Error()
	}
	l.writeEntry(entry)
}

// Diagnostics reports rule compilation warnings.
func (l *Logger) Diagnostics(diags []types.Diagnostic) {
	for _, d := range diags {
		l.Warn(fmt.Sprintf("%s %q skipped: %s", d.Kind, d.Pattern, d.Message))
	}
}

func (l *Logger) writeEntry(entry LogEntry) {
	if l.file == nil {
		return
	}

	if l.logJSON {
		data, _ := json.Marshal(entry)
		l.file.Write(data)
		l.file.Write([]byte("\n"))
	}

	if l.logText {
		line := fmt.Sprintf("[%s] %s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.Message,
		)
		if entry.Error != "" {
			line = fmt.Sprintf("[%s] %s %s - Error: %s\n",
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.Level,
				entry.Message,
				entry.Error,
			)
		}
		l.file.WriteString(line)
	}
}

// Plan prints the planned renames and every per-file error.
func (l *Logger) Plan(plan *types.RenamePlan) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range plan.Renames {
		fmt.Fprintf(l.console, "  %s %s %s\n", r.OldName, l.colors.dimmed.Sprint("->"), l.colors.ok.Sprint(r.NewName))
	}
	if len(plan.Errors) > 0 {
		l.colors.fail.Fprintf(l.console, "\n%d file(s) could not be planned:\n", len(plan.Errors))
		for _, e := range plan.Errors {
			fmt.Fprintf(l.console, "  %s: %s\n", e.File, e.Message)
		}
	}
}

func (l *Logger) Summary(summary types.RunSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	title := "NamePipe Summary"
	if summary.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(l.console)
	l.colors.header.Fprintf(l.console, "=== %s ===\n", title)
	fmt.Fprintf(l.console, "Scanned files:  %d\n", summary.ScannedFiles)
	fmt.Fprintf(l.console, "Planned:        %d\n", summary.Planned)
	fmt.Fprintf(l.console, "Renamed:        %s\n", l.colors.ok.Sprint(summary.Renamed))
	fmt.Fprintf(l.console, "Skipped:        %d\n", summary.Skipped)
	fmt.Fprintf(l.console, "Plan errors:    %s\n", l.count(summary.PlanErrors))
	fmt.Fprintf(l.console, "Failed:         %s\n", l.count(summary.Failed))
	fmt.Fprintf(l.console, "Duration:       %s\n", summary.Duration.Round(time.Millisecond))
	l.colors.header.Fprintln(l.console, "=========================")
}

func (l *Logger) count(n int) string {
	if n > 0 {
		return l.colors.fail.Sprint(n)
	}
	return fmt.Sprint(n)
}

func (l *Logger) Progress(current, total int, filename string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "\r[%d/%d] %s", current, total, filename)
}
