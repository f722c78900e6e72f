package mintledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/token"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

// Read views take the read lock and never observe a half-applied mint.
// Accessors without an error return report zero values before deploy.

// TokenURI returns the metadata locator of a minted token.
func (l *Ledger) TokenURI(tokenID uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkToken(tokenID); err != nil {
		return "", err
	}
	return token.URI(l.coll.BaseURI, tokenID), nil
}

// WalletOfOwner returns the ids owned by account in ascending order. The
// result is never nil.
func (l *Ledger) WalletOfOwner(account types.Account) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.wallets[account]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// BalanceOf returns the number of tokens owned by account.
func (l *Ledger) BalanceOf(account types.Account) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.wallets[account]))
}

// OwnerOf returns the owner of a minted token.
func (l *Ledger) OwnerOf(tokenID uint64) (types.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkToken(tokenID); err != nil {
		return "", err
	}
	return l.owners[tokenID-1], nil
}

// TokenOfOwnerByIndex returns the index-th token (zero-based) in account's
// wallet.
func (l *Ledger) TokenOfOwnerByIndex(account types.Account, index uint64) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.wallets[account]
	if index >= uint64(len(ids)) {
		return 0, fmt.Errorf("%w: %s has %d tokens, index %d", ErrNotFound, account, len(ids), index)
	}
	return ids[index], nil
}

// Token returns the full read view of a minted token.
func (l *Ledger) Token(tokenID uint64) (*token.Token, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkToken(tokenID); err != nil {
		return nil, err
	}

	// Receipts are ordered by first id; find the last one starting at or
	// before tokenID.
	i := sort.Search(len(l.receipts), func(i int) bool {
		return l.receipts[i].first > tokenID
	}) - 1

	return &token.Token{
		ID:     tokenID,
		Owner:  l.owners[tokenID-1],
		MintID: l.receipts[i].id,
		URI:    token.URI(l.coll.BaseURI, tokenID),
	}, nil
}

// checkToken reports ErrNotFound for ids outside [1, totalSupply].
// Callers hold l.mu.
func (l *Ledger) checkToken(tokenID uint64) error {
	if l.coll == nil {
		return ErrNotDeployed
	}
	if tokenID < 1 || tokenID > uint64(len(l.owners)) {
		return fmt.Errorf("%w: token %d", ErrNotFound, tokenID)
	}
	return nil
}

// TotalSupply returns the number of tokens minted so far.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.owners))
}

// RemainingSupply returns how many tokens can still be minted.
func (l *Ledger) RemainingSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return 0
	}
	return l.coll.MaxSupply - uint64(len(l.owners))
}

// Cost returns the current per-token price.
func (l *Ledger) Cost() types.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return types.Money{}
	}
	return l.coll.Window.Cost
}

// MaxSupply returns the supply cap.
func (l *Ledger) MaxSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return 0
	}
	return l.coll.MaxSupply
}

// AllowMintingOn returns the open time in Unix seconds.
func (l *Ledger) AllowMintingOn() int64 {
	return l.MintOpensAt().Unix()
}

// MintOpensAt returns the open time.
func (l *Ledger) MintOpensAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return time.Time{}
	}
	return l.coll.Window.OpensAt
}

// BaseURI returns the metadata prefix.
func (l *Ledger) BaseURI() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return ""
	}
	return l.coll.BaseURI
}

// Owner returns the collection owner.
func (l *Ledger) Owner() types.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return ""
	}
	return l.coll.Owner
}

// Name returns the collection name.
func (l *Ledger) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return ""
	}
	return l.coll.Name
}

// Symbol returns the collection symbol.
func (l *Ledger) Symbol() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return ""
	}
	return l.coll.Symbol
}

// PausedState reports whether minting is paused.
func (l *Ledger) PausedState() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.coll != nil && l.coll.Window.Paused
}

// WindowState returns the mint window state at the ledger clock's now.
func (l *Ledger) WindowState() collection.State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return collection.StateClosed
	}
	return l.coll.Window.State(l.clock.Now())
}

// Treasury returns the collected, not yet withdrawn payments.
func (l *Ledger) Treasury() types.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.treasury
}

// Collection returns a copy of the deployed collection.
func (l *Ledger) Collection() (*collection.Collection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return nil, ErrNotDeployed
	}
	out := *l.coll
	return &out, nil
}

// ──────────────────────────────────────────────────
// History
// ──────────────────────────────────────────────────

// Receipts lists persisted mint receipts, lowest token id first.
func (l *Ledger) Receipts(ctx context.Context, opts mint.ListOpts) ([]*mint.Receipt, error) {
	c, err := l.Collection()
	if err != nil {
		return nil, err
	}
	return l.store.ListReceipts(ctx, c.ID, opts)
}

// Withdrawals lists persisted withdrawals, oldest first.
func (l *Ledger) Withdrawals(ctx context.Context, opts treasury.ListOpts) ([]*treasury.Withdrawal, error) {
	c, err := l.Collection()
	if err != nil {
		return nil, err
	}
	return l.store.ListWithdrawals(ctx, c.ID, opts)
}
