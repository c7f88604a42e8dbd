// Package query filters, orders and summarises channel lists.
package query

import "github.com/voyagen/bretontv/internal/models"

// Criteria selects channels. Empty fields are not applied; set fields are
// combined with AND and compared after Unicode case folding.
type Criteria struct {
	Country string
	Group   string
	Keyword string
}

// Filter returns the channels matching c, keeping their relative order.
// The input slice is not modified.
func Filter(channels []models.Channel, c Criteria) []models.Channel {
	country := models.Fold(c.Country)
	group := models.Fold(c.Group)

	out := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if c.Country != "" && !equalFold(ch.Country, country) {
			continue
		}
		if c.Group != "" && !equalFold(ch.Group, group) {
			continue
		}
		if c.Keyword != "" && !ch.Matches(c.Keyword) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// Limit returns at most n channels; a negative n means no limit.
func Limit(channels []models.Channel, n int) []models.Channel {
	if n < 0 || n >= len(channels) {
		return channels
	}
	return channels[:n]
}

// equalFold compares an optional value with an already folded target.
func equalFold(v *string, folded string) bool {
	return v != nil && models.Fold(*v) == folded
}
