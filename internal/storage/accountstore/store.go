// Package accountstore persists account state for the local host. Accounts
// are encoded as msgpack envelopes, framed by a compressor and cached in an
// LRU keyed by address.
package accountstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/ugorji/go/codec"
	"golang.org/x/sync/errgroup"

	"github.com/sollpay/sollpay-programs/internal/storage/compression"
	"github.com/sollpay/sollpay-programs/internal/storage/database"
)

// ErrAccountNotFound is returned when no account is stored at an address
var ErrAccountNotFound = errors.New("account not found")

var keyPrefix = []byte("acct/")

// Account is the persisted state of one address
type Account struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Executable bool
	Data       []byte

	// Slot is the host slot of the last write
	Slot uint64
}

// Clone returns a deep copy
func (a *Account) Clone() *Account {
	c := *a
	c.Data = database.CopyBytes(a.Data)
	return &c
}

// envelope is the stored form of an Account
type envelope struct {
	Owner      []byte `codec:"o"`
	Lamports   uint64 `codec:"l"`
	Executable bool   `codec:"x,omitempty"`
	Data       []byte `codec:"d"`
	Slot       uint64 `codec:"s"`
}

// Options configures a Store
type Options struct {
	// CacheSize is the number of decoded accounts kept in memory
	CacheSize int

	// Compression names a registered compressor
	Compression string

	// LoadConcurrency bounds parallel reads in LoadMany
	LoadConcurrency int

	// MissingCacheSize bounds the number of remembered absent addresses
	MissingCacheSize int

	// MissingTTL is how long an address stays known as absent
	MissingTTL time.Duration

	Logger zerolog.Logger
}

// Store reads and writes accounts through a database backend
type Store struct {
	db      database.DB
	cache   *lru.Cache[solana.PublicKey, *Account]
	missing *missingCache
	comp    compression.Compressor
	handle  *codec.MsgpackHandle
	opts    Options
	log     zerolog.Logger
}

// New creates a store over db. The store owns db and closes it on Close.
func New(db database.DB, opts Options) (*Store, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.Compression == "" {
		opts.Compression = "none"
	}
	if opts.LoadConcurrency <= 0 {
		opts.LoadConcurrency = 8
	}
	if opts.MissingCacheSize <= 0 {
		opts.MissingCacheSize = 4096
	}
	if opts.MissingTTL <= 0 {
		opts.MissingTTL = 5 * time.Minute
	}

	cache, err := lru.New[solana.PublicKey, *Account](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	comp, err := compression.Get(opts.Compression)
	if err != nil {
		return nil, err
	}

	h := &codec.MsgpackHandle{}
	h.WriteExt = true

	return &Store{
		db:      db,
		cache:   cache,
		missing: newMissingCache(opts.MissingCacheSize, opts.MissingTTL),
		comp:    comp,
		handle:  h,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "accountstore").Logger(),
	}, nil
}

func storageKey(key solana.PublicKey) []byte {
	out := make([]byte, 0, len(keyPrefix)+len(key))
	out = append(out, keyPrefix...)
	return append(out, key[:]...)
}

func (s *Store) encode(acc *Account) ([]byte, error) {
	env := envelope{
		Owner:      acc.Owner[:],
		Lamports:   acc.Lamports,
		Executable: acc.Executable,
		Data:       acc.Data,
		Slot:       acc.Slot,
	}
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, s.handle).Encode(&env); err != nil {
		return nil, fmt.Errorf("encode account %s: %w", acc.Key, err)
	}
	return s.comp.Compress(raw)
}

func (s *Store) decode(key solana.PublicKey, value []byte) (*Account, error) {
	raw, err := s.comp.Decompress(value)
	if err != nil {
		return nil, fmt.Errorf("decompress account %s: %w", key, err)
	}
	var env envelope
	if err := codec.NewDecoderBytes(raw, s.handle).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", key, err)
	}
	if len(env.Owner) != solana.PublicKeyLength {
		return nil, fmt.Errorf("decode account %s: owner has %d bytes", key, len(env.Owner))
	}
	if env.Data == nil {
		env.Data = []byte{}
	}
	return &Account{
		Key:        key,
		Owner:      solana.PublicKeyFromBytes(env.Owner),
		Lamports:   env.Lamports,
		Executable: env.Executable,
		Data:       env.Data,
		Slot:       env.Slot,
	}, nil
}

// Get returns the account stored at key or ErrAccountNotFound
func (s *Store) Get(ctx context.Context, key solana.PublicKey) (*Account, error) {
	if acc, ok := s.cache.Get(key); ok {
		return acc.Clone(), nil
	}
	if s.missing.isMissing(key) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}

	value, err := s.db.Read(ctx, storageKey(key))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			s.missing.markMissing(key)
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
		}
		return nil, err
	}

	acc, err := s.decode(key, value)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, acc)
	return acc.Clone(), nil
}

// LoadMany reads keys concurrently. Missing accounts come back as nil entries.
func (s *Store) LoadMany(ctx context.Context, keys []solana.PublicKey) ([]*Account, error) {
	out := make([]*Account, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.LoadConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			acc, err := s.Get(ctx, key)
			if errors.Is(err, ErrAccountNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Put writes a single account
func (s *Store) Put(ctx context.Context, acc *Account) error {
	return s.Commit(ctx, []*Account{acc})
}

// Commit writes all accounts in one batch. Either every account is stored
// or none is.
func (s *Store) Commit(ctx context.Context, accounts []*Account) error {
	ops := make([]database.BatchOperation, 0, len(accounts))
	for _, acc := range accounts {
		value, err := s.encode(acc)
		if err != nil {
			return err
		}
		ops = append(ops, database.BatchOperation{
			Type:  database.BatchPut,
			Key:   storageKey(acc.Key),
			Value: value,
		})
	}

	if err := s.db.Batch(ctx, ops); err != nil {
		for _, acc := range accounts {
			s.cache.Remove(acc.Key)
		}
		return fmt.Errorf("commit %d accounts: %w", len(accounts), err)
	}

	for _, acc := range accounts {
		s.missing.remove(acc.Key)
		s.cache.Add(acc.Key, acc.Clone())
	}
	s.log.Debug().Int("accounts", len(accounts)).Msg("committed")
	return nil
}

// ForEach calls fn for every stored account in address order until fn returns false
func (s *Store) ForEach(ctx context.Context, fn func(*Account) bool) error {
	it, err := s.db.Iterator(ctx, keyPrefix, database.PrefixEnd(keyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		k := it.Key()
		if len(k) != len(keyPrefix)+solana.PublicKeyLength {
			continue
		}
		acc, err := s.decode(solana.PublicKeyFromBytes(k[len(keyPrefix):]), it.Value())
		if err != nil {
			return err
		}
		if !fn(acc) {
			break
		}
	}
	return it.Error()
}

// MissingStats returns statistics of the absent-address cache
func (s *Store) MissingStats() MissingStats {
	return s.missing.stats()
}

// Close closes the underlying database
func (s *Store) Close() error {
	s.cache.Purge()
	s.missing.entries.Purge()
	return s.db.Close()
}
