package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/voyagen/bretontv/internal/loader"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/store"
)

// SyncLockTTL bounds how long a single location stays locked.
const SyncLockTTL = 5 * time.Minute

// LockFunc takes a named lock and returns its release function.
type LockFunc func(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)

// Result summarises the sync of one location.
type Result struct {
	Location string
	SourceID int64
	Channels int
}

// Sync loads each location and stores its channels as one source, replacing
// whatever the previous sync stored for it. Locations are processed in order
// and the first failure stops the run. lock is optional.
func Sync(ctx context.Context, s store.Store, l *loader.Loader, lock LockFunc, locations []string) ([]Result, error) {
	if len(locations) == 0 {
		return nil, errors.New("at least one playlist location is required")
	}
	results := make([]Result, 0, len(locations))
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("sync cancelled: %w", err)
		}
		res, err := syncOne(ctx, s, l, lock, loc)
		if err != nil {
			return results, err
		}
		logging.Info("sync: %s: %d channels (source %d)", res.Location, res.Channels, res.SourceID)
		results = append(results, res)
	}
	return results, nil
}

func syncOne(ctx context.Context, s store.Store, l *loader.Loader, lock LockFunc, loc string) (Result, error) {
	key := canonical(loc)
	if lock != nil {
		unlock, err := lock(ctx, "sync:"+key, SyncLockTTL)
		if err != nil {
			return Result{}, fmt.Errorf("lock %s: %w", key, err)
		}
		defer unlock()
	}

	channels, err := l.Load(ctx, []string{loc})
	if err != nil {
		return Result{}, err
	}
	id, err := s.UpsertSource(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("UpsertSource: %w", err)
	}
	if err := s.ReplaceChannels(ctx, id, channels); err != nil {
		return Result{}, fmt.Errorf("ReplaceChannels: %w", err)
	}
	return Result{Location: key, SourceID: id, Channels: len(channels)}, nil
}

// canonical returns the stored form of a location: URLs as given, local
// paths made absolute.
func canonical(loc string) string {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return loc
	}
	if abs, err := filepath.Abs(loc); err == nil {
		return abs
	}
	return loc
}
