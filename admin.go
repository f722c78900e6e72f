package mintledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/plugin"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

// ──────────────────────────────────────────────────
// Treasury
// ──────────────────────────────────────────────────

// Withdraw transfers the whole treasury to the owner and returns the amount.
// A withdrawal of an empty treasury succeeds, transfers zero and is still
// recorded and notified.
func (l *Ledger) Withdraw(ctx context.Context, caller types.Account) (types.Money, error) {
	l.mu.Lock()
	c := l.coll
	if c == nil {
		l.mu.Unlock()
		return types.Money{}, ErrNotDeployed
	}
	if caller != c.Owner {
		l.mu.Unlock()
		return types.Money{}, ErrUnauthorized
	}

	w := &treasury.Withdrawal{
		ID:           id.NewWithdrawalID(),
		CollectionID: c.ID,
		Recipient:    c.Owner,
		Amount:       l.treasury,
		WithdrawnAt:  l.clock.Now().UTC(),
	}
	if err := l.store.RecordWithdrawal(ctx, w); err != nil {
		l.mu.Unlock()
		return types.Money{}, fmt.Errorf("mintledger: record withdrawal: %w", err)
	}
	l.treasury = types.Zero(c.Currency)
	l.mu.Unlock()

	l.logger.Info("treasury withdrawn",
		"collection_id", c.ID.String(),
		"recipient", w.Recipient.String(),
		"amount", w.Amount.String(),
	)

	l.plugins.EmitWithdraw(ctx, &plugin.WithdrawEvent{
		CollectionID: c.ID,
		Withdrawal:   w,
		Amount:       w.Amount,
		Recipient:    w.Recipient,
	})

	return w.Amount, nil
}

// ──────────────────────────────────────────────────
// Mint window administration
// ──────────────────────────────────────────────────

// SetCost changes the per-token price for subsequent mints. The new cost
// must be in the collection's currency.
func (l *Ledger) SetCost(ctx context.Context, caller types.Account, newCost types.Money) error {
	l.mu.Lock()
	c := l.coll
	if c == nil {
		l.mu.Unlock()
		return ErrNotDeployed
	}
	if caller != c.Owner {
		l.mu.Unlock()
		return ErrUnauthorized
	}
	newCost.Currency = strings.ToLower(strings.TrimSpace(newCost.Currency))
	if newCost.Currency != c.Currency {
		l.mu.Unlock()
		return ValidationError{Field: "cost", Message: fmt.Sprintf("currency must be %q", c.Currency)}
	}

	old := c.Window.Cost
	window := c.Window
	window.Cost = newCost
	if err := l.store.UpdateMintWindow(ctx, c.ID, window); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("mintledger: update cost: %w", err)
	}
	c.Window = window
	c.Touch(l.clock.Now())
	l.mu.Unlock()

	l.logger.Info("mint cost changed",
		"collection_id", c.ID.String(),
		"old_cost", old.String(),
		"new_cost", newCost.String(),
	)

	l.plugins.EmitCostChanged(ctx, &plugin.CostChangedEvent{
		CollectionID: c.ID,
		OldCost:      old,
		NewCost:      newCost,
		ChangedBy:    caller,
	})

	return nil
}

// SetPausedState sets the pause switch. Setting the current value again is
// allowed and still notifies.
func (l *Ledger) SetPausedState(ctx context.Context, caller types.Account, paused bool) error {
	l.mu.Lock()
	c := l.coll
	if c == nil {
		l.mu.Unlock()
		return ErrNotDeployed
	}
	if caller != c.Owner {
		l.mu.Unlock()
		return ErrUnauthorized
	}

	window := c.Window
	window.Paused = paused
	if err := l.store.UpdateMintWindow(ctx, c.ID, window); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("mintledger: update paused state: %w", err)
	}
	c.Window = window
	c.Touch(l.clock.Now())
	l.mu.Unlock()

	l.logger.Info("mint paused state changed",
		"collection_id", c.ID.String(),
		"paused", paused,
	)

	l.plugins.EmitPausedChanged(ctx, &plugin.PausedChangedEvent{
		CollectionID: c.ID,
		Paused:       paused,
		ChangedBy:    caller,
	})

	return nil
}
