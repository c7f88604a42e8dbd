package models

import "time"

// Source is one input location (file, directory or URL) persisted by a catalog sync.
type Source struct {
	ID           int64      `json:"id,omitempty"`
	Location     string     `json:"location"`
	ChannelCount int        `json:"channel_count"`
	LastSynced   *time.Time `json:"last_synced,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}
