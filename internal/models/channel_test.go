package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewChannel(t *testing.T) {
	ch, err := NewChannel("Spring Vibes", "https://example.com/s.m3u8", map[string]string{
		AttrChannelNumber: "012",
		AttrCountry:       "CA",
		AttrGroup:         "",
		"tvg-name":        "ignored",
	})
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	if ch.ChannelNumber == nil || *ch.ChannelNumber != "012" {
		t.Errorf("ChannelNumber = %v, want 012", ch.ChannelNumber)
	}
	if ch.Country == nil || *ch.Country != "CA" {
		t.Errorf("Country = %v, want CA", ch.Country)
	}
	if ch.Group != nil {
		t.Errorf("Group = %q, want nil for empty attribute", *ch.Group)
	}
	if ch.ID != nil || ch.Logo != nil {
		t.Error("absent attributes should be nil")
	}
}

func TestChannelMetadata(t *testing.T) {
	ch, err := NewChannel("News", "http://n", map[string]string{AttrCountry: "FR", AttrID: "news.fr"})
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	meta := ch.Metadata()
	if len(meta) != len(AttrKeys) {
		t.Fatalf("Metadata has %d keys, want %d", len(meta), len(AttrKeys))
	}
	for _, key := range AttrKeys {
		if _, ok := meta[key]; !ok {
			t.Errorf("Metadata missing key %s", key)
		}
	}
	if Value(meta[AttrCountry]) != "FR" || Value(meta[AttrID]) != "news.fr" {
		t.Errorf("Metadata = %v", meta)
	}
	if meta[AttrGroup] != nil || meta[AttrLogo] != nil || meta[AttrChannelNumber] != nil {
		t.Error("absent attributes should map to nil")
	}
}

func TestNewChannelRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		chName  string
		url     string
		wantErr error
	}{
		{"empty name", "", "http://x", ErrEmptyName},
		{"empty url", "X", "", ErrEmptyURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChannel(tt.chName, tt.url, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestChannelMatches(t *testing.T) {
	ch, _ := NewChannel("Météo Bretagne", "http://example.com/b", map[string]string{
		AttrID:    "BZH1",
		AttrGroup: "Weather",
		AttrLogo:  "http://logo.example.com/secret.png",
	})
	tests := []struct {
		keyword string
		want    bool
	}{
		{"MÉTÉO", true},
		{"example.com/b", true},
		{"bzh", true},
		{"weath", true},
		{"secret", false},
		{"news", false},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			if got := ch.Matches(tt.keyword); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestChannelJSONOmitsAbsentFields(t *testing.T) {
	ch, _ := NewChannel("A", "http://a", map[string]string{AttrGroup: "News"})
	data, err := json.Marshal(ch)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"name":"A","url":"http://a","group_title":"News"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestFold(t *testing.T) {
	if Fold("Straße") != Fold("STRASSE") {
		t.Error("Fold should apply full case folding")
	}
	if Value(nil) != "" {
		t.Error("Value(nil) should be empty")
	}
}
