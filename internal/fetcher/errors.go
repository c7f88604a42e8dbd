package fetcher

import "fmt"

const (
	msgMissingName    = "entry missing channel name"
	msgMissingURL     = "missing stream URL"
	msgUnexpectedLine = "unexpected line outside an entry"
)

// PlaylistFormatError reports a structurally invalid playlist entry.
// Line is 1-based and points at the line that opened the failing entry,
// or at the offending line for content found outside an entry.
// File is set by callers that parse from disk.
type PlaylistFormatError struct {
	File string
	Line int
	Msg  string
	Text string
}

func (e *PlaylistFormatError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s: %q", e.File, e.Line, e.Msg, e.Text)
	}
	return fmt.Sprintf("playlist line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func formatError(line int, msg, text string) *PlaylistFormatError {
	return &PlaylistFormatError{Line: line, Msg: msg, Text: text}
}
