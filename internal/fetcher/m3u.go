package fetcher

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/voyagen/bretontv/internal/models"
)

// reAttr matches key="value" pairs in the metadata segment of an #EXTINF line.
var reAttr = regexp.MustCompile(`([A-Za-z0-9-]+)="([^"]*)"`)

// ParseString parses an M3U playlist held in memory.
func ParseString(text string) ([]models.Channel, error) {
	return ParseM3U(strings.NewReader(text))
}

// ParseM3U reads an M3U playlist from r and returns its channels in file order.
// Any malformed entry aborts the parse with a *PlaylistFormatError; no partial
// result is returned.
func ParseM3U(r io.Reader) ([]models.Channel, error) {
	text, err := decode(r)
	if err != nil {
		return nil, err
	}
	lines := newLineReader(text)

	lineNum := 0
	next := func() (string, bool) {
		line, ok := lines.next()
		if !ok {
			return "", false
		}
		lineNum++
		return strings.TrimSpace(line), true
	}

	var channels []models.Channel
	for {
		line, ok := next()
		if !ok {
			break
		}
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTM3U"):
		case strings.HasPrefix(line, "#EXTINF"):
			start := lineNum
			name, attrs, ok := splitEXTINF(line)
			if !ok {
				return nil, formatError(start, msgMissingName, line)
			}
			url, ok := streamURL(next)
			if !ok {
				if err := lines.Err(); err != nil {
					return nil, fmt.Errorf("read: %w", err)
				}
				return nil, formatError(start, msgMissingURL, line)
			}
			ch, err := models.NewChannel(name, url, attrs)
			if err != nil {
				return nil, formatError(start, err.Error(), line)
			}
			channels = append(channels, ch)
		case strings.HasPrefix(line, "#"):
			// Other directives and comments.
		default:
			return nil, formatError(lineNum, msgUnexpectedLine, line)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return channels, nil
}

// splitEXTINF splits an #EXTINF line at its first comma into the trimmed
// channel name and the attributes found before the comma.
func splitEXTINF(line string) (string, map[string]string, bool) {
	meta, name, found := strings.Cut(line, ",")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return "", nil, false
	}
	attrs := make(map[string]string)
	for _, m := range reAttr.FindAllStringSubmatch(meta, -1) {
		attrs[m[1]] = m[2]
	}
	return name, attrs, true
}

// streamURL returns the first line that is neither blank nor a directive.
func streamURL(next func() (string, bool)) (string, bool) {
	for {
		line, ok := next()
		if !ok {
			return "", false
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
}
