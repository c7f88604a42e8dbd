package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagen/bretontv/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// UpsertSource creates the source for location if needed and returns its id.
func (p *Postgres) UpsertSource(ctx context.Context, location string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO sources (location) VALUES ($1)
		 ON CONFLICT (location) DO UPDATE SET location = EXCLUDED.location
		 RETURNING id`,
		location,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("UpsertSource: %w", err)
	}
	return id, nil
}

var channelColumns = []string{
	"source_id", "position", "name", "url",
	"tvg_chno", "tvg_id", "tvg_logo", "tvg_country", "group_title",
}

// ReplaceChannels deletes the source's channels and bulk-inserts the new
// ones with COPY, in one transaction.
func (p *Postgres) ReplaceChannels(ctx context.Context, sourceID int64, channels []models.Channel) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM channels WHERE source_id = $1`, sourceID); err != nil {
		return fmt.Errorf("delete channels: %w", err)
	}
	rows := pgx.CopyFromSlice(len(channels), func(i int) ([]any, error) {
		ch := channels[i]
		return []any{sourceID, i, ch.Name, ch.URL, ch.ChannelNumber, ch.ID, ch.Logo, ch.Country, ch.Group}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"channels"}, channelColumns, rows); err != nil {
		return fmt.Errorf("copy channels: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE sources SET channel_count = $2, last_synced = NOW() WHERE id = $1`,
		sourceID, len(channels),
	); err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListSources returns all sources ordered by id.
func (p *Postgres) ListSources(ctx context.Context) ([]models.Source, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, location, channel_count, last_synced, created_at FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListSources: %w", err)
	}
	defer rows.Close()

	var sources []models.Source
	for rows.Next() {
		var s models.Source
		if err := rows.Scan(&s.ID, &s.Location, &s.ChannelCount, &s.LastSynced, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListSources scan: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// ListChannels returns channels ordered by source and playlist position.
func (p *Postgres) ListChannels(ctx context.Context, sourceID *int64) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT name, url, tvg_chno, tvg_id, tvg_logo, tvg_country, group_title
		 FROM channels
		 WHERE $1::bigint IS NULL OR source_id = $1
		 ORDER BY source_id, position`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListChannels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.Name, &ch.URL, &ch.ChannelNumber, &ch.ID, &ch.Logo, &ch.Country, &ch.Group); err != nil {
			return nil, fmt.Errorf("ListChannels scan: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}
