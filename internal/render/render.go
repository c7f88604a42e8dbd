// Package render writes channel lists as text tables, JSON or M3U.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/voyagen/bretontv/internal/models"
)

// DefaultURLWidth is the column budget for stream URLs in tables.
const DefaultURLWidth = 70

// NoMatches is printed instead of an empty table.
const NoMatches = "No channels matched the provided criteria."

// Table writes channels as aligned Name, Country, Group and URL columns.
// URLs longer than urlWidth are shortened with "...".
func Table(w io.Writer, channels []models.Channel, urlWidth int) error {
	if len(channels) == 0 {
		_, err := fmt.Fprintln(w, NoMatches)
		return err
	}
	if urlWidth <= 3 {
		urlWidth = DefaultURLWidth
	}

	headers := []string{"Name", "Country", "Group", "URL"}
	rows := make([][]string, len(channels))
	for i, ch := range channels {
		rows[i] = []string{
			ch.Name,
			orDash(ch.Country),
			orDash(ch.Group),
			shorten(ch.URL, urlWidth),
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
		for _, row := range rows {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
	}

	rules := make([]string, len(widths))
	for i, n := range widths {
		rules[i] = strings.Repeat("=", n)
	}

	if err := writeRow(w, headers, widths); err != nil {
		return err
	}
	if err := writeRow(w, rules, widths); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

// MinURLWidth is the smallest URL column URLBudget returns.
const MinURLWidth = 20

// URLBudget returns the URL column width that fits a table of channels into
// termWidth columns.
func URLBudget(channels []models.Channel, termWidth int) int {
	name, country, group := len("Name"), len("Country"), len("Group")
	for _, ch := range channels {
		name = max(name, utf8.RuneCountInString(ch.Name))
		country = max(country, utf8.RuneCountInString(orDash(ch.Country)))
		group = max(group, utf8.RuneCountInString(orDash(ch.Group)))
	}
	// Three two-space separators precede the URL column.
	return max(termWidth-name-country-group-6, MinURLWidth)
}

// JSON writes channels as an indented JSON array followed by a newline.
// Absent attributes are omitted.
func JSON(w io.Writer, channels []models.Channel) error {
	if channels == nil {
		channels = []models.Channel{}
	}
	data, err := json.MarshalIndent(channels, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// Lines writes one value per line.
func Lines(w io.Writer, values []string) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, values []string, widths []int) error {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = v + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v))
	}
	_, err := fmt.Fprintln(w, strings.Join(cells, "  "))
	return err
}

func orDash(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
