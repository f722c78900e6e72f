// Package plugin provides an extensible plugin system for mintledger.
// Plugins hook into ledger notifications to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Mint hooks
// ──────────────────────────────────────────────────

// MintEvent describes a successful mint call.
type MintEvent struct {
	CollectionID id.CollectionID
	Receipt      *mint.Receipt
	LastTokenID  uint64
	Minter       types.Account
	TotalSupply  uint64
}

// OnMint is called once per successful mint call with the highest id created.
type OnMint interface {
	Plugin
	OnMint(ctx context.Context, e *MintEvent) error
}

// MintRejectedEvent describes a mint call that failed a precondition or
// could not be persisted.
type MintRejectedEvent struct {
	CollectionID id.CollectionID
	Requester    types.Account
	Quantity     int64
	Payment      types.Money
	Err          error
}

// OnMintRejected is called when a mint call fails.
type OnMintRejected interface {
	Plugin
	OnMintRejected(ctx context.Context, e *MintRejectedEvent) error
}

// ──────────────────────────────────────────────────
// Treasury hooks
// ──────────────────────────────────────────────────

// WithdrawEvent describes an owner withdrawal.
type WithdrawEvent struct {
	CollectionID id.CollectionID
	Withdrawal   *treasury.Withdrawal
	Amount       types.Money
	Recipient    types.Account
}

// OnWithdraw is called after the treasury has been paid out.
type OnWithdraw interface {
	Plugin
	OnWithdraw(ctx context.Context, e *WithdrawEvent) error
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// CostChangedEvent describes a price change.
type CostChangedEvent struct {
	CollectionID id.CollectionID
	OldCost      types.Money
	NewCost      types.Money
	ChangedBy    types.Account
}

// OnCostChanged is called after the owner changed the per-token price.
type OnCostChanged interface {
	Plugin
	OnCostChanged(ctx context.Context, e *CostChangedEvent) error
}

// PausedChangedEvent describes a pause switch change.
type PausedChangedEvent struct {
	CollectionID id.CollectionID
	Paused       bool
	ChangedBy    types.Account
}

// OnPausedChanged is called after the owner set the pause switch.
type OnPausedChanged interface {
	Plugin
	OnPausedChanged(ctx context.Context, e *PausedChangedEvent) error
}
