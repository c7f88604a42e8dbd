// Package loader resolves playlist locations into channels.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/voyagen/bretontv/internal/fetcher"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/models"
	"golang.org/x/sync/errgroup"
)

// PlaylistExt is the extension collected when a directory is given.
const PlaylistExt = ".m3u"

// NotFoundError reports an input location that is neither a file nor a directory.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match.
func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// RemoteCache caches the channels of http(s) playlists.
type RemoteCache interface {
	Channels(ctx context.Context, url string) ([]models.Channel, bool)
	Store(ctx context.Context, url string, channels []models.Channel)
}

// Loader reads playlists from files, directories and http(s) URLs.
// The zero value is usable and parses files one at a time.
type Loader struct {
	// Workers bounds concurrent parsing; values below 2 parse serially.
	Workers   int
	UserAgent string
	Timeout   time.Duration
	// Cache is optional.
	Cache RemoteCache
}

// source is one playlist to parse: a file path or a URL.
type source struct {
	location string
	remote   bool
}

// Load parses every location in order and concatenates the channels.
// Directories contribute their .m3u files in sorted path order. Format errors
// are returned unchanged; a missing location yields *NotFoundError and no
// channels.
func (l *Loader) Load(ctx context.Context, paths []string) ([]models.Channel, error) {
	sources, missing := l.resolve(paths)

	results := make([][]models.Channel, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Workers, 1))
	for i, src := range sources {
		g.Go(func() error {
			results[i], errs[i] = l.parse(gctx, src)
			// Keep going: the error reported is chosen by position below.
			return nil
		})
	}
	_ = g.Wait()

	// The first failure in input order wins, as it would when parsing serially.
	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		logging.Debug("loader: %s: %d channels", sources[i].location, len(results[i]))
	}
	if missing != "" {
		return nil, &NotFoundError{Path: missing}
	}

	var channels []models.Channel
	for _, r := range results {
		channels = append(channels, r...)
	}
	return channels, nil
}

// resolve expands paths into sources, stopping at the first missing path.
func (l *Loader) resolve(paths []string) ([]source, string) {
	var sources []source
	for _, p := range paths {
		if isRemote(p) {
			sources = append(sources, source{location: p, remote: true})
			continue
		}
		info, err := os.Stat(p)
		switch {
		case err != nil:
			return sources, p
		case info.IsDir():
			files, err := playlistFiles(p)
			if err != nil {
				logging.Warn("loader: walk %s: %v", p, err)
			}
			for _, f := range files {
				sources = append(sources, source{location: f})
			}
		case info.Mode().IsRegular():
			sources = append(sources, source{location: p})
		default:
			return sources, p
		}
	}
	return sources, ""
}

func (l *Loader) parse(ctx context.Context, src source) ([]models.Channel, error) {
	if !src.remote {
		return ParseFile(src.location)
	}
	if l.Cache != nil {
		if channels, ok := l.Cache.Channels(ctx, src.location); ok {
			logging.Debug("loader: cache hit %s", src.location)
			return channels, nil
		}
	}
	channels, err := fetcher.FetchM3U(ctx, src.location, l.UserAgent, l.Timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.location, err)
	}
	if l.Cache != nil {
		l.Cache.Store(ctx, src.location, channels)
	}
	return channels, nil
}

// ParseFile parses the playlist at path.
func ParseFile(path string) ([]models.Channel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	channels, err := fetcher.ParseM3U(f)
	var fe *fetcher.PlaylistFormatError
	if errors.As(err, &fe) {
		fe.File = path
		return nil, fe
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return channels, nil
}

// playlistFiles returns the .m3u files under dir, recursively, ordered by
// comparing path components.
func playlistFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == PlaylistExt {
			files = append(files, path)
		}
		return nil
	})
	slices.SortFunc(files, func(a, b string) int {
		return slices.Compare(
			strings.Split(a, string(filepath.Separator)),
			strings.Split(b, string(filepath.Separator)),
		)
	})
	return files, err
}

func isRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
