// Package catalogstore reads catalog side-state from Redis: the
// per-item boolean capability flags refreshed on every request, and the
// item documents used to hydrate image references missing from the
// artifact mapping. The pipeline never writes here.
package catalogstore

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/rueidis"

	"github.com/roomcraft/reco/internal/domain"
)

const (
	flagsKey      = "reco:flags"
	itemKeyPrefix = "reco:item:"
)

// Config holds connection parameters for the catalog store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store is a read-only rueidis-backed catalog state reader.
type Store struct {
	client rueidis.Client
}

// New creates a catalog store client.
func New(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for catalog store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Flags returns the full item-id -> capability-flags map in one round
// trip. Inactive items are simply absent; callers default missing flags
// to false.
func (s *Store) Flags(ctx context.Context) (map[string]map[string]bool, error) {
	cmd := s.client.B().Hgetall().Key(flagsKey).Build()
	raw, err := s.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", flagsKey, err)
	}

	flags := make(map[string]map[string]bool, len(raw))
	for id, doc := range raw {
		var m map[string]bool
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			// One malformed entry must not poison the whole map.
			continue
		}
		flags[id] = m
	}
	return flags, nil
}

// ItemFlags returns one item's capability flags.
func (s *Store) ItemFlags(ctx context.Context, id string) (map[string]bool, error) {
	cmd := s.client.B().Hget().Key(flagsKey).Field(id).Build()
	doc, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("hget %s %s: %w", flagsKey, id, err)
	}

	var m map[string]bool
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("parse flags for %s: %w", id, err)
	}
	return m, nil
}

// ItemImages returns an item document's raw image references, for
// hydration when the artifact mapping carries none.
func (s *Store) ItemImages(ctx context.Context, id string) ([]string, error) {
	cmd := s.client.B().Get().Key(itemKeyPrefix + id).Build()
	doc, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}

	var item domain.Item
	if err := json.Unmarshal(doc, &item); err != nil {
		return nil, fmt.Errorf("parse item %s: %w", id, err)
	}
	return item.ImageCandidates(), nil
}
