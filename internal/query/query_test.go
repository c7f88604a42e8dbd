package query

import (
	"slices"
	"testing"

	"github.com/voyagen/bretontv/internal/models"
)

func channel(t *testing.T, name, url string, attrs map[string]string) models.Channel {
	t.Helper()
	ch, err := models.NewChannel(name, url, attrs)
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	return ch
}

func fixture(t *testing.T) []models.Channel {
	return []models.Channel{
		channel(t, "A", "http://example.com/a", map[string]string{
			models.AttrCountry: "CA", models.AttrGroup: "News", models.AttrChannelNumber: "10",
		}),
		channel(t, "B", "http://example.com/b", map[string]string{
			models.AttrCountry: "US", models.AttrGroup: "Sports", models.AttrChannelNumber: "2",
		}),
		channel(t, "C", "http://example.com/c", map[string]string{
			models.AttrCountry: "CA", models.AttrGroup: "News",
		}),
	}
}

func names(channels []models.Channel) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = ch.Name
	}
	return out
}

func TestFilter(t *testing.T) {
	channels := fixture(t)
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria", Criteria{}, []string{"A", "B", "C"}},
		{"country lower", Criteria{Country: "ca"}, []string{"A", "C"}},
		{"country mixed", Criteria{Country: "Ca"}, []string{"A", "C"}},
		{"country mixed other", Criteria{Country: "cA"}, []string{"A", "C"}},
		{"group", Criteria{Group: "sports"}, []string{"B"}},
		{"keyword in url", Criteria{Keyword: "example.com/b"}, []string{"B"}},
		{"keyword in group", Criteria{Keyword: "NEWS"}, []string{"A", "C"}},
		{"combined", Criteria{Country: "ca", Keyword: "/c"}, []string{"C"}},
		{"no match", Criteria{Country: "fr"}, []string{}},
		{"group must equal", Criteria{Group: "new"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Filter(channels, tt.criteria))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%+v) = %v, want %v", tt.criteria, got, tt.want)
			}
		})
	}
	if got := names(channels); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("input modified: %v", got)
	}
}

func TestFilterAbsentFieldsNeverMatch(t *testing.T) {
	bare := []models.Channel{channel(t, "Plain", "http://x", nil)}
	if got := Filter(bare, Criteria{Country: "ca"}); len(got) != 0 {
		t.Error("channel without country should not match a country filter")
	}
	if got := Filter(bare, Criteria{Group: "news"}); len(got) != 0 {
		t.Error("channel without group should not match a group filter")
	}
}

func TestSort(t *testing.T) {
	if got := names(Sort(fixture(t))); !slices.Equal(got, []string{"B", "A", "C"}) {
		t.Errorf("Sort = %v, want [B A C]", got)
	}
}

func TestSortTiers(t *testing.T) {
	chno := func(v string) map[string]string {
		return map[string]string{models.AttrChannelNumber: v}
	}
	channels := []models.Channel{
		channel(t, "text-b", "u", chno("b12")),
		channel(t, "absent", "u", nil),
		channel(t, "ten", "u", chno("10")),
		channel(t, "text-B", "u", chno("B12")),
		channel(t, "two", "u", chno("2")),
		channel(t, "padded", "u", chno("007")),
		channel(t, "negative", "u", chno("-1")),
		channel(t, "spaced", "u", chno(" 5 ")),
		channel(t, "underscore", "u", chno("1_0")),
	}
	want := []string{"negative", "two", "spaced", "padded", "ten", "absent", "underscore", "text-B", "text-b"}
	if got := names(Sort(channels)); !slices.Equal(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestSortTieBreaks(t *testing.T) {
	group := func(g string) map[string]string {
		return map[string]string{models.AttrGroup: g, models.AttrChannelNumber: "5"}
	}
	channels := []models.Channel{
		channel(t, "zulu", "u1", group("beta")),
		channel(t, "Alpha", "u2", group("Beta")),
		channel(t, "same", "first", group("alpha")),
		channel(t, "SAME", "second", group("ALPHA")),
		channel(t, "nogroup", "u3", map[string]string{models.AttrChannelNumber: "5"}),
	}
	got := Sort(channels)
	if want := []string{"nogroup", "same", "SAME", "Alpha", "zulu"}; !slices.Equal(names(got), want) {
		t.Errorf("Sort = %v, want %v", names(got), want)
	}
	if got[1].URL != "first" {
		t.Error("equal keys should keep input order")
	}
}

func TestLimit(t *testing.T) {
	channels := fixture(t)
	tests := []struct {
		n    int
		want int
	}{{0, 0}, {-1, 3}, {1, 1}, {3, 3}, {10, 3}}
	for _, tt := range tests {
		if got := len(Limit(channels, tt.n)); got != tt.want {
			t.Errorf("Limit(%d) returned %d channels, want %d", tt.n, got, tt.want)
		}
	}
}

func TestDistinct(t *testing.T) {
	channels := append(fixture(t), channel(t, "D", "http://d", map[string]string{
		models.AttrCountry: "ca", models.AttrGroup: "Ambiance",
	}))
	if got := DistinctGroups(channels); !slices.Equal(got, []string{"News", "Sports", "Ambiance"}) {
		t.Errorf("DistinctGroups = %v", got)
	}
	if got := DistinctCountries(channels); !slices.Equal(got, []string{"CA", "US", "ca"}) {
		t.Errorf("DistinctCountries = %v", got)
	}
	counts := CountBy(channels, GroupOf)
	if counts[0] != (Count{Value: "News", Channels: 2}) {
		t.Errorf("CountBy first = %+v", counts[0])
	}
}
