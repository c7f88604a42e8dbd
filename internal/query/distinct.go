package query

import (
	"github.com/voyagen/bretontv/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Count is a distinct attribute value and the number of channels carrying it.
type Count struct {
	Value    string `json:"value"`
	Channels int    `json:"channels"`
}

// CountBy tallies the present values of field in first-seen order.
func CountBy(channels []models.Channel, field func(models.Channel) *string) []Count {
	counts := orderedmap.New[string, int]()
	for _, ch := range channels {
		v := field(ch)
		if v == nil {
			continue
		}
		n, _ := counts.Get(*v)
		counts.Set(*v, n+1)
	}
	out := make([]Count, 0, counts.Len())
	for pair := counts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Count{Value: pair.Key, Channels: pair.Value})
	}
	return out
}

// DistinctGroups returns the group labels present in channels, first seen first.
func DistinctGroups(channels []models.Channel) []string {
	return values(CountBy(channels, GroupOf))
}

// DistinctCountries returns the country codes present in channels, first seen first.
func DistinctCountries(channels []models.Channel) []string {
	return values(CountBy(channels, CountryOf))
}

// GroupOf selects a channel's group.
func GroupOf(ch models.Channel) *string { return ch.Group }

// CountryOf selects a channel's country.
func CountryOf(ch models.Channel) *string { return ch.Country }

func values(counts []Count) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out
}
