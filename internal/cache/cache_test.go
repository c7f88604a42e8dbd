package cache

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/models"
)

// newTestRedis connects to REDIS_URL or skips the test.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	r, err := New(url)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Ping(context.Background()); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestPlaylistKeyIsStable(t *testing.T) {
	a := playlistKey("http://example.com/a.m3u")
	if a != playlistKey("http://example.com/a.m3u") {
		t.Error("playlistKey should be deterministic")
	}
	if a == playlistKey("http://example.com/b.m3u") {
		t.Error("different URLs should not share a key")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("not a url"); err == nil {
		t.Error("expected error for malformed redis url")
	}
}

func TestPlaylistCacheRoundTrip(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	c := NewPlaylistCache(r, time.Minute)

	url := "http://example.com/cache-test-" + randomToken() + ".m3u"
	if _, ok := c.Channels(ctx, url); ok {
		t.Fatal("expected cache miss")
	}

	ch, _ := models.NewChannel("A", "http://a", map[string]string{models.AttrGroup: "News"})
	c.Store(ctx, url, []models.Channel{ch})
	t.Cleanup(func() { _ = Del(ctx, r, playlistKey(url)) })

	got, ok := c.Channels(ctx, url)
	if !ok || len(got) != 1 {
		t.Fatalf("Channels = %v, %v", got, ok)
	}
	if got[0].Name != "A" || models.Value(got[0].Group) != "News" || got[0].Country != nil {
		t.Errorf("cached channel = %+v", got[0])
	}
}

func TestTryLock(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	key := "test-" + randomToken()

	unlock, err := TryLock(ctx, r, key, time.Minute)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := TryLock(ctx, r, key, time.Minute); !errors.Is(err, ErrLocked) {
		t.Errorf("second TryLock err = %v, want ErrLocked", err)
	}
	unlock()

	unlock, err = TryLock(ctx, r, key, time.Minute)
	if err != nil {
		t.Fatalf("TryLock after unlock: %v", err)
	}
	unlock()
}

func TestPlaylistCacheFailuresAreLeveledWarnings(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	defer logging.SetLevel(logging.LevelInfo)

	// Nothing listens on port 1, so every command fails.
	r, err := New("redis://127.0.0.1:1/0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()
	c := NewPlaylistCache(r, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logging.SetLevel(logging.LevelWarn)
	if _, ok := c.Channels(ctx, "http://example.com/a.m3u"); ok {
		t.Fatal("expected a miss when redis is unreachable")
	}
	c.Store(ctx, "http://example.com/a.m3u", nil)
	out := buf.String()
	if !strings.Contains(out, "[WARN] cache: get") || !strings.Contains(out, "[WARN] cache: set") {
		t.Errorf("expected warnings, got %q", out)
	}

	buf.Reset()
	logging.SetLevel(logging.LevelError)
	c.Channels(ctx, "http://example.com/a.m3u")
	if buf.Len() != 0 {
		t.Errorf("warnings should be suppressed at error level, got %q", buf.String())
	}
}
