package logtail

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is one line of the zap console format:
//
//	<time>\t<LEVEL>\t<logger>\t<message>\t<json fields>
//
// The logger and fields columns are optional.
type Entry struct {
	Time    string
	Level   string
	Logger  string
	Message string
	Fields  string
	// Raw holds the line when it is not in the console format, such as a
	// continuation of a multi-line value.
	Raw string
}

// Parse splits a console-format line into its columns.
func Parse(line string) Entry {
	cols := strings.Split(line, "\t")
	if len(cols) < 3 || !isLevel(cols[1]) {
		return Entry{Raw: line}
	}
	e := Entry{Time: cols[0], Level: cols[1]}
	rest := cols[2:]
	// The logger column is present only for named loggers.
	if len(rest) >= 2 && !strings.HasPrefix(rest[1], "{") {
		e.Logger, rest = rest[0], rest[1:]
	} else if len(rest) >= 3 {
		e.Logger, rest = rest[0], rest[1:]
	}
	e.Message = rest[0]
	if len(rest) > 1 {
		e.Fields = strings.Join(rest[1:], "\t")
	}
	return e
}

func isLevel(s string) bool {
	switch s {
	case "DEBUG", "INFO", "WARN", "ERROR", "DPANIC", "PANIC", "FATAL":
		return true
	}
	return false
}

// levelRank orders levels for filtering.
func levelRank(level string) int {
	switch level {
	case "DEBUG":
		return 0
	case "INFO":
		return 1
	case "WARN":
		return 2
	default:
		return 3
	}
}

// AtLeast reports whether the entry is at or above min. Raw lines always
// pass so continuations stay next to their entry.
func (e Entry) AtLeast(min string) bool {
	if e.Raw != "" || min == "" {
		return true
	}
	return levelRank(e.Level) >= levelRank(strings.ToUpper(min))
}

// Palette styles each column of an entry.
type Palette struct {
	Time    lipgloss.Style
	Logger  lipgloss.Style
	Fields  lipgloss.Style
	Message lipgloss.Style
	Levels  map[string]lipgloss.Style
}

// Colorize renders a line with the palette. The timestamp is shortened to
// the clock time.
func Colorize(line string, p Palette) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	e := Parse(line)
	if e.Raw != "" {
		return p.Fields.Render(e.Raw)
	}

	parts := []string{p.Time.Render(clock(e.Time))}
	level, ok := p.Levels[e.Level]
	if !ok {
		level = p.Message
	}
	parts = append(parts, level.Render(padLevel(e.Level)))
	if e.Logger != "" {
		parts = append(parts, p.Logger.Render("["+e.Logger+"]"))
	}
	parts = append(parts, p.Message.Render(e.Message))
	if e.Fields != "" {
		parts = append(parts, p.Fields.Render(e.Fields))
	}
	return strings.Join(parts, " ")
}

// ColorizeLines applies Colorize to each line, keeping only entries at or
// above min.
func ColorizeLines(lines []string, p Palette, min string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !Parse(line).AtLeast(min) {
			continue
		}
		out = append(out, Colorize(line, p))
	}
	return out
}

// clock extracts HH:MM:SS from an ISO8601 timestamp.
func clock(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}

func padLevel(level string) string {
	if len(level) < 5 {
		return level + strings.Repeat(" ", 5-len(level))
	}
	return level
}
