package mintledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/plugin"
	"github.com/xraph/mintledger/types"
)

// Mint creates quantity new tokens owned by requester and returns their ids.
//
// Preconditions are checked in a fixed order and the first failure wins:
// ErrInvalidQuantity, ErrNotYetOpen, ErrPaused, ErrCapacityExceeded,
// ErrInsufficientPayment. A payment in another currency, or a total price
// that does not fit in 256 bits, is insufficient. The full payment, including
// any overpayment, is credited to the treasury.
//
// On failure nothing changes. On success exactly one OnMint notification is
// emitted carrying the highest id created.
func (l *Ledger) Mint(ctx context.Context, requester types.Account, quantity int64, payment types.Money) ([]uint64, error) {
	receipt, ev, err := l.mint(ctx, requester, quantity, payment)
	if err != nil {
		if !errors.Is(err, ErrNotDeployed) {
			l.logger.Debug("mint rejected",
				"minter", requester.String(),
				"quantity", quantity,
				"payment", payment.String(),
				"reason", RejectionReason(err),
				"error", err,
			)
			l.plugins.EmitMintRejected(ctx, &plugin.MintRejectedEvent{
				CollectionID: l.collectionID(),
				Requester:    requester,
				Quantity:     quantity,
				Payment:      payment,
				Err:          err,
			})
		}
		return nil, err
	}

	l.logger.Info("tokens minted",
		"collection_id", ev.CollectionID.String(),
		"minter", requester.String(),
		"first_id", receipt.FirstTokenID,
		"last_id", ev.LastTokenID,
		"payment", payment.String(),
		"total_supply", ev.TotalSupply,
	)

	l.plugins.EmitMint(ctx, ev)
	return receipt.TokenIDs(), nil
}

// mint runs the check-persist-apply sequence under the write lock.
func (l *Ledger) mint(ctx context.Context, requester types.Account, quantity int64, payment types.Money) (*mint.Receipt, *plugin.MintEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.coll
	if c == nil {
		return nil, nil, ErrNotDeployed
	}
	if requester.IsZero() {
		return nil, nil, ValidationError{Field: "requester", Message: "must not be empty"}
	}
	if quantity < 1 {
		return nil, nil, ErrInvalidQuantity
	}

	now := l.clock.Now()
	if !c.Window.IsOpen(now) {
		return nil, nil, fmt.Errorf("%w: opens at %d", ErrNotYetOpen, c.Window.OpensAt.Unix())
	}
	if c.Window.Paused {
		return nil, nil, ErrPaused
	}

	qty := uint64(quantity)
	supply := uint64(len(l.owners))
	if qty > c.MaxSupply-supply {
		return nil, nil, fmt.Errorf("%w: %d requested, %d remaining", ErrCapacityExceeded, qty, c.MaxSupply-supply)
	}

	payment.Currency = strings.ToLower(strings.TrimSpace(payment.Currency))
	cost := c.Window.Cost
	if !payment.SameCurrency(cost) {
		return nil, nil, fmt.Errorf("%w: paid in %q, priced in %q", ErrInsufficientPayment, payment.Currency, cost.Currency)
	}
	required, ok := cost.CheckedMultiply(qty)
	if !ok || payment.LessThan(required) {
		return nil, nil, fmt.Errorf("%w: paid %s for %d tokens at %s", ErrInsufficientPayment, payment, qty, cost)
	}

	balance, ok := l.treasury.CheckedAdd(payment)
	if !ok {
		return nil, nil, ErrAmountOverflow
	}

	receipt := &mint.Receipt{
		ID:           id.NewMintID(),
		CollectionID: c.ID,
		Minter:       requester,
		FirstTokenID: supply + 1,
		Quantity:     qty,
		UnitCost:     cost,
		Payment:      payment,
		MintedAt:     now.UTC(),
	}
	if err := l.store.RecordMint(ctx, receipt); err != nil {
		return nil, nil, fmt.Errorf("mintledger: record mint: %w", err)
	}

	l.apply(receipt)
	l.treasury = balance

	return receipt, &plugin.MintEvent{
		CollectionID: c.ID,
		Receipt:      receipt,
		LastTokenID:  receipt.LastTokenID(),
		Minter:       requester,
		TotalSupply:  uint64(len(l.owners)),
	}, nil
}

func (l *Ledger) collectionID() id.CollectionID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.coll == nil {
		return id.Nil
	}
	return l.coll.ID
}
