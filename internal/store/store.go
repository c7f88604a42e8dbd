package store

import (
	"context"

	"github.com/voyagen/bretontv/internal/models"
)

// Store persists the channel catalog: one source per synced location and
// the channels parsed from it, in playlist order.
type Store interface {
	// UpsertSource creates the source for location if it does not exist and returns its id.
	UpsertSource(ctx context.Context, location string) (int64, error)
	// ReplaceChannels atomically replaces all channels of a source.
	ReplaceChannels(ctx context.Context, sourceID int64, channels []models.Channel) error
	// ListSources returns all sources ordered by id.
	ListSources(ctx context.Context) ([]models.Source, error)
	// ListChannels returns channels in source then playlist order;
	// a nil sourceID lists every source.
	ListChannels(ctx context.Context, sourceID *int64) ([]models.Channel, error)
}
