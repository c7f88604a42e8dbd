package store

import (
	"context"
	"os"
	"testing"

	"github.com/voyagen/bretontv/internal/cache"
	"github.com/voyagen/bretontv/internal/models"
)

// setupTestStore migrates DATABASE_URL and returns a store over it, or skips.
func setupTestStore(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	if err := RunMigrations(dsn); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	pg, err := NewPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	t.Cleanup(pg.Close)
	return pg
}

func testChannels(t *testing.T) []models.Channel {
	t.Helper()
	a, err := models.NewChannel("A", "http://a", map[string]string{models.AttrGroup: "News", models.AttrChannelNumber: "01"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := models.NewChannel("B", "http://b", nil)
	if err != nil {
		t.Fatal(err)
	}
	return []models.Channel{a, b}
}

func TestPostgresReplaceChannels(t *testing.T) {
	pg := setupTestStore(t)
	ctx := context.Background()
	location := "/tmp/store-test-" + t.Name() + ".m3u"

	id, err := pg.UpsertSource(ctx, location)
	if err != nil {
		t.Fatalf("UpsertSource: %v", err)
	}
	again, err := pg.UpsertSource(ctx, location)
	if err != nil || again != id {
		t.Fatalf("UpsertSource should be idempotent: %d vs %d (%v)", id, again, err)
	}

	if err := pg.ReplaceChannels(ctx, id, testChannels(t)); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}
	if err := pg.ReplaceChannels(ctx, id, testChannels(t)); err != nil {
		t.Fatalf("second ReplaceChannels: %v", err)
	}

	got, err := pg.ListChannels(ctx, &id)
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("ListChannels = %+v", got)
	}
	if models.Value(got[0].ChannelNumber) != "01" || got[1].Group != nil {
		t.Errorf("optional fields not preserved: %+v", got)
	}

	sources, err := pg.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	for _, s := range sources {
		if s.ID == id && (s.ChannelCount != 2 || s.LastSynced == nil) {
			t.Errorf("source not updated: %+v", s)
		}
	}
}

func TestCachedStoreInvalidates(t *testing.T) {
	pg := setupTestStore(t)
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	rds, err := cache.New(url)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer rds.Close()

	ctx := context.Background()
	cs := NewCachedStore(pg, rds)
	id, err := cs.UpsertSource(ctx, "/tmp/cached-store-test.m3u")
	if err != nil {
		t.Fatalf("UpsertSource: %v", err)
	}
	channels := testChannels(t)
	if err := cs.ReplaceChannels(ctx, id, channels[:1]); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}
	if got, _ := cs.ListChannels(ctx, &id); len(got) != 1 {
		t.Fatalf("got %d channels, want 1", len(got))
	}
	if err := cs.ReplaceChannels(ctx, id, channels); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}
	if got, _ := cs.ListChannels(ctx, &id); len(got) != 2 {
		t.Errorf("stale cache: got %d channels, want 2", len(got))
	}
}

func TestChannelsKey(t *testing.T) {
	id := int64(7)
	if channelsKey(nil) != "channels:all" || channelsKey(&id) != "channels:7" {
		t.Error("unexpected cache keys")
	}
}
