package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/voyagen/bretontv/internal/models"
)

// Channel number tiers, in display order.
const (
	tierNumeric = iota
	tierAbsent
	tierText
)

type sortKey struct {
	tier  int
	num   int64
	text  string
	group string
	name  string
}

func keyOf(ch models.Channel) sortKey {
	k := sortKey{
		tier:  tierAbsent,
		group: models.Fold(models.Value(ch.Group)),
		name:  models.Fold(ch.Name),
	}
	if ch.ChannelNumber != nil {
		// Surrounding whitespace does not make a number textual.
		if n, err := strconv.ParseInt(strings.TrimSpace(*ch.ChannelNumber), 10, 64); err == nil {
			k.tier, k.num = tierNumeric, n
		} else {
			k.tier, k.text = tierText, *ch.ChannelNumber
		}
	}
	return k
}

func (a sortKey) compare(b sortKey) int {
	return cmp.Or(
		cmp.Compare(a.tier, b.tier),
		cmp.Compare(a.num, b.num),
		cmp.Compare(a.text, b.text),
		cmp.Compare(a.group, b.group),
		cmp.Compare(a.name, b.name),
	)
}

// Sort returns a copy of channels ordered for display: numeric channel
// numbers first (numerically), then channels without a number, then
// non-numeric numbers (as text); ties are broken by group and then name,
// both case-folded. Equal keys keep their input order.
func Sort(channels []models.Channel) []models.Channel {
	type keyed struct {
		key sortKey
		ch  models.Channel
	}
	items := make([]keyed, len(channels))
	for i, ch := range channels {
		items[i] = keyed{key: keyOf(ch), ch: ch}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.key.compare(b.key)
	})
	out := make([]models.Channel, len(items))
	for i, it := range items {
		out[i] = it.ch
	}
	return out
}
