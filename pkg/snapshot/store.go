// Package snapshot keeps network documents in Redis so that several sites
// can publish their topology to one place and be validated together.
//
// Each entity is a hash at "<prefix>|<snapshot>|<table>|<id>"; the set
// "<prefix>|SNAPSHOTS" names the stored snapshots.
package snapshot

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "TOPOCHECK"

// Options configures a Store.
type Options struct {
	Addr     string // host:port
	DB       int
	Password string
	Prefix   string
}

// Store reads and writes document snapshots.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a store. No connection is made until the first command.
func NewStore(opts Options) *Store {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			DB:       opts.DB,
			Password: opts.Password,
		}),
		prefix: prefix,
	}
}

// Connect tests the connection.
func (s *Store) Connect(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", util.ErrNotConnected, s.client.Options().Addr, err)
	}
	return nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) indexKey() string {
	return s.prefix + "|SNAPSHOTS"
}

// SnapshotName is the name a document is stored under.
func SnapshotName(doc *model.Document) string {
	return util.SanitizeName(doc.Name)
}

// List returns the stored snapshot names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Load reads a snapshot back into a document.
func (s *Store) Load(ctx context.Context, name string) (*model.Document, error) {
	exists, err := s.client.SIsMember(ctx, s.indexKey(), name).Result()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	if !exists {
		return nil, util.NewNotFoundError("snapshot", name)
	}

	keys, err := scanKeys(ctx, s.client, snapshotPattern(s.prefix, name), 100)
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot %s: %w", name, err)
	}
	sort.Strings(keys)

	cmds := make([]*redis.StringStringMapCmd, len(keys))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", name, err)
	}

	entries := make([]Entry, 0, len(keys))
	for i, key := range keys {
		snap, table, id, ok := parseKey(key)
		if !ok || snap != name {
			continue
		}
		vals := cmds[i].Val()
		if len(vals) == 0 {
			continue
		}
		entries = append(entries, Entry{Table: table, Key: id, Fields: vals})
	}

	doc, err := Decode(name, entries)
	if err != nil {
		return nil, err
	}
	util.WithDocument(name).Debugf("loaded snapshot: %s", doc.Summary())
	return doc, nil
}

// Save replaces the snapshot for doc atomically and returns the name it was
// stored under.
func (s *Store) Save(ctx context.Context, doc *model.Document) (string, error) {
	name := SnapshotName(doc)
	old, err := scanKeys(ctx, s.client, snapshotPattern(s.prefix, name), 100)
	if err != nil {
		return "", fmt.Errorf("scanning snapshot %s: %w", name, err)
	}

	pipe := s.client.TxPipeline()
	if len(old) > 0 {
		pipe.Del(ctx, old...)
	}
	for _, e := range Encode(doc) {
		args := make([]interface{}, 0, len(e.Fields)*2)
		for k, v := range e.Fields {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, entryKey(s.prefix, name, e.Table, e.Key), args...)
	}
	pipe.SAdd(ctx, s.indexKey(), name)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return "", fmt.Errorf("saving snapshot %s: %w", name, err)
	}
	util.WithDocument(name).Infof("saved snapshot: %s", doc.Summary())
	return name, nil
}

// Delete removes a snapshot. Deleting an unknown snapshot is an
// ErrNotFound error.
func (s *Store) Delete(ctx context.Context, name string) error {
	exists, err := s.client.SIsMember(ctx, s.indexKey(), name).Result()
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	if !exists {
		return util.NewNotFoundError("snapshot", name)
	}

	keys, err := scanKeys(ctx, s.client, snapshotPattern(s.prefix, name), 100)
	if err != nil {
		return fmt.Errorf("scanning snapshot %s: %w", name, err)
	}

	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.SRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	util.WithDocument(name).Info("deleted snapshot")
	return nil
}

// scanKeys collects keys matching pattern with cursor-based SCAN.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
