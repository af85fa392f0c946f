// Package logtail reads the tail of the console's own log file and renders
// it for the Activity view.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by
// N no matter how large the file has grown. Parse splits zap's console
// encoding into time, level, logger, message and fields; Colorize renders
// an entry with a lipgloss palette supplied by the UI theme.
//
//	lines, err := logtail.Read(path, 400)
//	if err != nil {
//		return err
//	}
//	for _, line := range logtail.ColorizeLines(lines, palette, "INFO") {
//		fmt.Println(line)
//	}
package logtail
