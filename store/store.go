package store

import (
	"context"

	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/treasury"
)

// Store is the unified storage interface for all mintledger entities.
// Every ledger state change maps to exactly one write call, so a backend
// only needs single-statement atomicity.
type Store interface {
	// Collection methods
	CreateCollection(ctx context.Context, c *collection.Collection) error
	GetCollection(ctx context.Context, collID id.CollectionID) (*collection.Collection, error)
	UpdateMintWindow(ctx context.Context, collID id.CollectionID, w collection.MintWindow) error

	// Mint methods
	RecordMint(ctx context.Context, r *mint.Receipt) error
	ListReceipts(ctx context.Context, collID id.CollectionID, opts mint.ListOpts) ([]*mint.Receipt, error)

	// Treasury methods
	RecordWithdrawal(ctx context.Context, w *treasury.Withdrawal) error
	ListWithdrawals(ctx context.Context, collID id.CollectionID, opts treasury.ListOpts) ([]*treasury.Withdrawal, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ collection.Store = (Store)(nil)
	_ mint.Store       = (Store)(nil)
	_ treasury.Store   = (Store)(nil)
)
