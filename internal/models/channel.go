package models

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

// Attribute keys recognised in the metadata segment of an #EXTINF line.
const (
	AttrChannelNumber = "tvg-chno"
	AttrID            = "tvg-id"
	AttrLogo          = "tvg-logo"
	AttrCountry       = "tvg-country"
	AttrGroup         = "group-title"
)

// AttrKeys lists the recognised attribute keys in output order.
var AttrKeys = []string{AttrChannelNumber, AttrID, AttrLogo, AttrCountry, AttrGroup}

var (
	ErrEmptyName = errors.New("channel name is empty")
	ErrEmptyURL  = errors.New("channel url is empty")
)

// Channel represents a single stream entry from an M3U playlist.
// Optional fields are nil when the attribute was absent; they never point to "".
type Channel struct {
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	ChannelNumber *string `json:"tvg_chno,omitempty"`
	ID            *string `json:"tvg_id,omitempty"`
	Logo          *string `json:"tvg_logo,omitempty"`
	Country       *string `json:"tvg_country,omitempty"`
	Group         *string `json:"group_title,omitempty"`
}

// NewChannel builds a Channel from a name, a stream URL and the attributes
// extracted from its #EXTINF line. Unknown attribute keys are ignored.
func NewChannel(name, url string, attrs map[string]string) (Channel, error) {
	if name == "" {
		return Channel{}, ErrEmptyName
	}
	if url == "" {
		return Channel{}, ErrEmptyURL
	}
	return Channel{
		Name:          name,
		URL:           url,
		ChannelNumber: optional(attrs[AttrChannelNumber]),
		ID:            optional(attrs[AttrID]),
		Logo:          optional(attrs[AttrLogo]),
		Country:       optional(attrs[AttrCountry]),
		Group:         optional(attrs[AttrGroup]),
	}, nil
}

// Metadata returns the optional fields keyed by attribute name.
// Absent fields map to nil.
func (c Channel) Metadata() map[string]*string {
	return map[string]*string{
		AttrChannelNumber: c.ChannelNumber,
		AttrID:            c.ID,
		AttrLogo:          c.Logo,
		AttrCountry:       c.Country,
		AttrGroup:         c.Group,
	}
}

// Matches reports whether keyword is a case-insensitive substring of the
// channel's name, url, id or group.
func (c Channel) Matches(keyword string) bool {
	needle := Fold(keyword)
	for _, v := range []*string{&c.Name, &c.URL, c.ID, c.Group} {
		if v != nil && *v != "" && strings.Contains(Fold(*v), needle) {
			return true
		}
	}
	return false
}

// Value returns *p, or "" when p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Fold applies Unicode case folding for case-insensitive comparisons.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
