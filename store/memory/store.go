// Package memory provides an in-memory store for tests and single-process use.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/store"
	"github.com/xraph/mintledger/treasury"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store keeps copies of every record, so callers never share memory with it.
type Store struct {
	mu     sync.RWMutex
	closed bool

	// Collection storage
	collections map[string]*collection.Collection

	// Receipts per collection, ordered by first token id
	receipts map[string][]*mint.Receipt

	// Withdrawals per collection, in insertion order
	withdrawals map[string][]*treasury.Withdrawal
}

func New() *Store {
	return &Store{
		collections: make(map[string]*collection.Collection),
		receipts:    make(map[string][]*mint.Receipt),
		withdrawals: make(map[string][]*treasury.Withdrawal),
	}
}

// Collection Store implementation
func (s *Store) CreateCollection(_ context.Context, c *collection.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return mintledger.ErrStoreClosed
	}
	if _, exists := s.collections[c.ID.String()]; exists {
		return mintledger.ErrAlreadyExists
	}
	cp := *c
	s.collections[c.ID.String()] = &cp
	return nil
}

func (s *Store) GetCollection(_ context.Context, collID id.CollectionID) (*collection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, mintledger.ErrStoreClosed
	}
	if c, ok := s.collections[collID.String()]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, mintledger.ErrCollectionNotFound
}

func (s *Store) UpdateMintWindow(_ context.Context, collID id.CollectionID, w collection.MintWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return mintledger.ErrStoreClosed
	}
	c, ok := s.collections[collID.String()]
	if !ok {
		return mintledger.ErrCollectionNotFound
	}
	c.Window = w
	return nil
}

// Mint Store implementation
func (s *Store) RecordMint(_ context.Context, r *mint.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return mintledger.ErrStoreClosed
	}
	key := r.CollectionID.String()
	if _, ok := s.collections[key]; !ok {
		return mintledger.ErrCollectionNotFound
	}
	for _, existing := range s.receipts[key] {
		if existing.ID == r.ID || existing.FirstTokenID == r.FirstTokenID {
			return mintledger.ErrAlreadyExists
		}
	}

	cp := *r
	list := append(s.receipts[key], &cp)
	sort.Slice(list, func(i, j int) bool { return list[i].FirstTokenID < list[j].FirstTokenID })
	s.receipts[key] = list
	return nil
}

func (s *Store) ListReceipts(_ context.Context, collID id.CollectionID, opts mint.ListOpts) ([]*mint.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, mintledger.ErrStoreClosed
	}

	result := make([]*mint.Receipt, 0)
	for _, r := range s.receipts[collID.String()] {
		if opts.Minter == "" || r.Minter == opts.Minter {
			cp := *r
			result = append(result, &cp)
		}
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// Treasury Store implementation
func (s *Store) RecordWithdrawal(_ context.Context, w *treasury.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return mintledger.ErrStoreClosed
	}
	key := w.CollectionID.String()
	if _, ok := s.collections[key]; !ok {
		return mintledger.ErrCollectionNotFound
	}
	for _, existing := range s.withdrawals[key] {
		if existing.ID == w.ID {
			return mintledger.ErrAlreadyExists
		}
	}

	cp := *w
	s.withdrawals[key] = append(s.withdrawals[key], &cp)
	return nil
}

func (s *Store) ListWithdrawals(_ context.Context, collID id.CollectionID, opts treasury.ListOpts) ([]*treasury.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, mintledger.ErrStoreClosed
	}

	result := make([]*treasury.Withdrawal, 0, len(s.withdrawals[collID.String()]))
	for _, w := range s.withdrawals[collID.String()] {
		cp := *w
		result = append(result, &cp)
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return mintledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Helper functions
func paginate[T any](items []T, offset, limit int) []T {
	start := min(max(offset, 0), len(items))
	end := start + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
