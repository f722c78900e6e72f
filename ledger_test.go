package mintledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/plugin"
	"github.com/xraph/mintledger/store"
	"github.com/xraph/mintledger/store/memory"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

const (
	baseURI = "ipfs://QmQ2jnDYecFhrf3asEWjyjZRX1pZSsNWG3qHzmNDvXa9qg/"
	owner   = types.Account("0xdeployer")
	minter  = types.Account("0xminter")
	other   = types.Account("0xother")
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func dappPunks(maxSupply uint64) collection.Params {
	return collection.Params{
		Name:      "Dapp Punks",
		Symbol:    "DP",
		Cost:      types.Ether(10),
		MaxSupply: maxSupply,
		OpensAt:   epoch,
		BaseURI:   baseURI,
	}
}

// newLedger deploys p on a fresh memory store with the clock fixed at epoch.
func newLedger(t *testing.T, p collection.Params, opts ...mintledger.Option) *mintledger.Ledger {
	t.Helper()
	return newLedgerOn(t, memory.New(), p, opts...)
}

func newLedgerOn(t *testing.T, s store.Store, p collection.Params, opts ...mintledger.Option) *mintledger.Ledger {
	t.Helper()
	opts = append([]mintledger.Option{mintledger.WithClock(mintledger.FixedClock(epoch))}, opts...)
	l := mintledger.New(s, opts...)
	require.NoError(t, l.Start(context.Background()))
	_, err := l.Deploy(context.Background(), owner, p)
	require.NoError(t, err)
	return l
}

// ──────────────────────────────────────────────────
// Deploy
// ──────────────────────────────────────────────────

func TestDeploy(t *testing.T) {
	l := newLedger(t, dappPunks(25))

	assert.Equal(t, "Dapp Punks", l.Name())
	assert.Equal(t, "DP", l.Symbol())
	assert.True(t, l.Cost().Equal(types.Ether(10)))
	assert.Equal(t, uint64(25), l.MaxSupply())
	assert.Equal(t, epoch.Unix(), l.AllowMintingOn())
	assert.Equal(t, baseURI, l.BaseURI())
	assert.Equal(t, owner, l.Owner())
	assert.False(t, l.PausedState())
	assert.Equal(t, uint64(0), l.TotalSupply())
	assert.Equal(t, uint64(25), l.RemainingSupply())
	assert.True(t, l.Treasury().IsZero())
	assert.Equal(t, collection.StateOpenUnpaused, l.WindowState())

	c, err := l.Collection()
	require.NoError(t, err)
	assert.Equal(t, id.PrefixCollection, c.ID.Prefix())
	assert.Equal(t, "eth", c.Currency)
}

func TestDeployValidation(t *testing.T) {
	tests := []struct {
		name     string
		deployer types.Account
		mutate   func(p *collection.Params)
		field    string
	}{
		{"empty deployer", "", func(*collection.Params) {}, "deployer"},
		{"blank name", owner, func(p *collection.Params) { p.Name = "  " }, "name"},
		{"empty symbol", owner, func(p *collection.Params) { p.Symbol = "" }, "symbol"},
		{"zero supply", owner, func(p *collection.Params) { p.MaxSupply = 0 }, "max_supply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mintledger.New(memory.New())
			p := dappPunks(25)
			tt.mutate(&p)

			_, err := l.Deploy(context.Background(), tt.deployer, p)

			var ve mintledger.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, l.SetPausedState(context.Background(), owner, true), mintledger.ErrNotDeployed)
		})
	}
}

func TestDeployTwice(t *testing.T) {
	l := newLedger(t, dappPunks(25))

	_, err := l.Deploy(context.Background(), owner, dappPunks(5))
	assert.ErrorIs(t, err, mintledger.ErrAlreadyDeployed)
	assert.Equal(t, uint64(25), l.MaxSupply())
}

func TestDeployTruncatesOpenTime(t *testing.T) {
	p := dappPunks(25)
	p.OpensAt = epoch.Add(1500 * time.Millisecond)
	p.Cost = types.Money{}

	l := newLedger(t, p)

	assert.Equal(t, epoch.Add(time.Second), l.MintOpensAt())
	assert.Equal(t, mintledger.DefaultCurrency, l.Cost().Currency)
}

func TestDeployUpperCaseCurrency(t *testing.T) {
	p := dappPunks(25)
	p.Cost.Currency = "ETH"
	l := newLedger(t, p)
	ctx := context.Background()

	assert.Equal(t, "eth", l.Cost().Currency)

	upper := types.Ether(10)
	upper.Currency = "ETH"
	ids, err := l.Mint(ctx, minter, 1, upper)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)

	ids, err = l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids)
	assert.True(t, l.Treasury().Equal(types.Ether(20)))

	cheaper := types.Ether(5)
	cheaper.Currency = "Eth"
	require.NoError(t, l.SetCost(ctx, owner, cheaper))
	assert.True(t, l.Cost().Equal(types.Ether(5)))

	receipts, err := l.Receipts(ctx, mint.ListOpts{})
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "eth", receipts[0].Payment.Currency)
}

func TestBeforeDeploy(t *testing.T) {
	l := mintledger.New(memory.New())
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 1, types.Ether(10))
	assert.ErrorIs(t, err, mintledger.ErrNotDeployed)

	_, err = l.Withdraw(ctx, owner)
	assert.ErrorIs(t, err, mintledger.ErrNotDeployed)

	_, err = l.TokenURI(1)
	assert.ErrorIs(t, err, mintledger.ErrNotDeployed)

	_, err = l.Collection()
	assert.ErrorIs(t, err, mintledger.ErrNotDeployed)

	_, err = l.Receipts(ctx, mint.ListOpts{})
	assert.ErrorIs(t, err, mintledger.ErrNotDeployed)

	assert.Equal(t, uint64(0), l.MaxSupply())
	assert.Equal(t, collection.StateClosed, l.WindowState())
	assert.NotNil(t, l.WalletOfOwner(minter))
}

// ──────────────────────────────────────────────────
// Mint
// ──────────────────────────────────────────────────

func TestMintThreeExact(t *testing.T) {
	l := newLedger(t, dappPunks(25))

	ids, err := l.Mint(context.Background(), minter, 3, types.Ether(30))
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3}, ids)
	assert.Equal(t, uint64(3), l.TotalSupply())
	assert.Equal(t, uint64(22), l.RemainingSupply())
	assert.Equal(t, []uint64{1, 2, 3}, l.WalletOfOwner(minter))
	assert.Equal(t, uint64(3), l.BalanceOf(minter))
	assert.True(t, l.Treasury().Equal(types.Ether(30)))

	for _, tokenID := range ids {
		got, err := l.OwnerOf(tokenID)
		require.NoError(t, err)
		assert.Equal(t, minter, got)
	}
}

func TestMintSequentialAcrossCallers(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	first, err := l.Mint(ctx, minter, 2, types.Ether(20))
	require.NoError(t, err)
	second, err := l.Mint(ctx, other, 1, types.Ether(10))
	require.NoError(t, err)
	third, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2}, first)
	assert.Equal(t, []uint64{3}, second)
	assert.Equal(t, []uint64{4}, third)
	assert.Equal(t, []uint64{1, 2, 4}, l.WalletOfOwner(minter))
	assert.Equal(t, []uint64{3}, l.WalletOfOwner(other))

	idx, err := l.TokenOfOwnerByIndex(minter, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), idx)

	_, err = l.TokenOfOwnerByIndex(other, 1)
	assert.ErrorIs(t, err, mintledger.ErrNotFound)
}

func TestMintLastSlot(t *testing.T) {
	l := newLedger(t, dappPunks(1))
	ctx := context.Background()

	ids, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)

	_, err = l.Mint(ctx, other, 1, types.Ether(10))
	assert.ErrorIs(t, err, mintledger.ErrCapacityExceeded)
	assert.Equal(t, uint64(1), l.TotalSupply())
}

func TestMintExceedsRemaining(t *testing.T) {
	l := newLedger(t, dappPunks(5))
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 4, types.Ether(40))
	require.NoError(t, err)

	_, err = l.Mint(ctx, minter, 2, types.Ether(20))
	assert.ErrorIs(t, err, mintledger.ErrCapacityExceeded)

	ids, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, ids)
	assert.Equal(t, uint64(0), l.RemainingSupply())
}

func TestMintRejections(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		payment  types.Money
		want     error
	}{
		{"zero quantity", 0, types.Ether(100), mintledger.ErrInvalidQuantity},
		{"negative quantity", -1, types.Ether(100), mintledger.ErrInvalidQuantity},
		{"underpaid", 3, types.Ether(29), mintledger.ErrInsufficientPayment},
		{"one wei short", 1, types.Ether(10).Subtract(types.Wei(1)), mintledger.ErrInsufficientPayment},
		{"wrong currency", 1, types.USD(100000), mintledger.ErrInsufficientPayment},
		{"over supply", 26, types.Ether(260), mintledger.ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, dappPunks(25))

			ids, err := l.Mint(context.Background(), minter, tt.quantity, tt.payment)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, mintledger.IsMintRejection(err))
			assert.Nil(t, ids)
			assert.Equal(t, uint64(0), l.TotalSupply())
			assert.True(t, l.Treasury().IsZero())
			assert.Empty(t, l.WalletOfOwner(minter))
		})
	}
}

func TestMintEmptyRequester(t *testing.T) {
	l := newLedger(t, dappPunks(25))

	_, err := l.Mint(context.Background(), "", 1, types.Ether(10))
	assert.True(t, mintledger.IsValidation(err))
	assert.Equal(t, uint64(0), l.TotalSupply())
}

func TestMintRejectionOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity before open time", func(t *testing.T) {
		p := dappPunks(25)
		p.OpensAt = epoch.Add(time.Hour)
		l := newLedger(t, p)

		_, err := l.Mint(ctx, minter, 0, types.Zero("eth"))
		assert.ErrorIs(t, err, mintledger.ErrInvalidQuantity)
	})

	t.Run("open time before pause", func(t *testing.T) {
		p := dappPunks(25)
		p.OpensAt = epoch.Add(time.Hour)
		l := newLedger(t, p)
		require.NoError(t, l.SetPausedState(ctx, owner, true))

		_, err := l.Mint(ctx, minter, 1, types.Ether(10))
		assert.ErrorIs(t, err, mintledger.ErrNotYetOpen)
	})

	t.Run("pause before capacity", func(t *testing.T) {
		l := newLedger(t, dappPunks(1))
		require.NoError(t, l.SetPausedState(ctx, owner, true))

		_, err := l.Mint(ctx, minter, 2, types.Ether(20))
		assert.ErrorIs(t, err, mintledger.ErrPaused)
	})

	t.Run("capacity before payment", func(t *testing.T) {
		l := newLedger(t, dappPunks(1))

		_, err := l.Mint(ctx, minter, 2, types.Zero("eth"))
		assert.ErrorIs(t, err, mintledger.ErrCapacityExceeded)
	})
}

func TestMintNotYetOpen(t *testing.T) {
	now := epoch
	clock := mintledger.ClockFunc(func() time.Time { return now })

	p := dappPunks(25)
	p.OpensAt = epoch.Add(time.Minute)
	l := newLedger(t, p, mintledger.WithClock(clock))
	ctx := context.Background()

	assert.Equal(t, collection.StateClosed, l.WindowState())
	_, err := l.Mint(ctx, minter, 1, types.Ether(10))
	assert.ErrorIs(t, err, mintledger.ErrNotYetOpen)

	now = epoch.Add(59*time.Second + 999*time.Millisecond)
	_, err = l.Mint(ctx, minter, 1, types.Ether(10))
	assert.ErrorIs(t, err, mintledger.ErrNotYetOpen)

	now = epoch.Add(time.Minute)
	ids, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
	assert.Equal(t, collection.StateOpenUnpaused, l.WindowState())
}

func TestMintOverpaymentKept(t *testing.T) {
	l := newLedger(t, dappPunks(25))

	_, err := l.Mint(context.Background(), minter, 1, types.Ether(15))
	require.NoError(t, err)

	assert.True(t, l.Treasury().Equal(types.Ether(15)))
}

func TestMintFree(t *testing.T) {
	p := dappPunks(25)
	p.Cost = types.Zero("eth")
	l := newLedger(t, p)

	ids, err := l.Mint(context.Background(), minter, 2, types.Zero("eth"))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
	assert.True(t, l.Treasury().IsZero())
}

func TestMintPriceOverflow(t *testing.T) {
	p := dappPunks(25)
	p.Cost = types.Money{Currency: "eth"}
	p.Cost.Amount.SetAllOne()
	l := newLedger(t, p)

	_, err := l.Mint(context.Background(), minter, 2, p.Cost)
	assert.ErrorIs(t, err, mintledger.ErrInsufficientPayment)
}

// ──────────────────────────────────────────────────
// Token views
// ──────────────────────────────────────────────────

func TestTokenURI(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	_, err := l.Mint(context.Background(), minter, 3, types.Ether(30))
	require.NoError(t, err)

	for tokenID := uint64(1); tokenID <= 3; tokenID++ {
		uri, err := l.TokenURI(tokenID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s%d.json", baseURI, tokenID), uri)
	}

	for _, tokenID := range []uint64{0, 4, 25} {
		_, err := l.TokenURI(tokenID)
		assert.ErrorIs(t, err, mintledger.ErrNotFound, "token %d", tokenID)

		_, err = l.OwnerOf(tokenID)
		assert.ErrorIs(t, err, mintledger.ErrNotFound, "token %d", tokenID)
	}
}

func TestToken(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 2, types.Ether(20))
	require.NoError(t, err)
	_, err = l.Mint(ctx, other, 3, types.Ether(30))
	require.NoError(t, err)

	receipts, err := l.Receipts(ctx, mint.ListOpts{})
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	tok, err := l.Token(2)
	require.NoError(t, err)
	assert.Equal(t, minter, tok.Owner)
	assert.Equal(t, receipts[0].ID, tok.MintID)
	assert.Equal(t, baseURI+"2.json", tok.URI)

	tok, err = l.Token(5)
	require.NoError(t, err)
	assert.Equal(t, other, tok.Owner)
	assert.Equal(t, receipts[1].ID, tok.MintID)

	_, err = l.Token(6)
	assert.ErrorIs(t, err, mintledger.ErrNotFound)
}

func TestWalletMatchesOwnerOf(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()
	accounts := []types.Account{minter, other, "0xthird"}

	for i := 0; i < 9; i++ {
		acct := accounts[i%len(accounts)]
		qty := int64(i%2 + 1)
		_, err := l.Mint(ctx, acct, qty, types.Ether(uint64(10*qty)))
		require.NoError(t, err)
	}

	for _, acct := range accounts {
		var want []uint64
		for tokenID := uint64(1); tokenID <= l.TotalSupply(); tokenID++ {
			got, err := l.OwnerOf(tokenID)
			require.NoError(t, err)
			if got == acct {
				want = append(want, tokenID)
			}
		}
		assert.Equal(t, want, l.WalletOfOwner(acct), "account %s", acct)
	}
}

func TestWalletIsCopy(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	_, err := l.Mint(context.Background(), minter, 2, types.Ether(20))
	require.NoError(t, err)

	w := l.WalletOfOwner(minter)
	w[0] = 99

	assert.Equal(t, []uint64{1, 2}, l.WalletOfOwner(minter))
}

// ──────────────────────────────────────────────────
// Admin
// ──────────────────────────────────────────────────

func TestWithdraw(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 3, types.Ether(30))
	require.NoError(t, err)

	amount, err := l.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.True(t, amount.Equal(types.Ether(30)))
	assert.True(t, l.Treasury().IsZero())

	amount, err = l.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	history, err := l.Withdrawals(ctx, treasury.ListOpts{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Amount.Equal(types.Ether(30)))
	assert.Equal(t, owner, history[0].Recipient)
	assert.True(t, history[1].Amount.IsZero())
}

func TestAdminUnauthorized(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()
	_, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)

	_, err = l.Withdraw(ctx, minter)
	assert.ErrorIs(t, err, mintledger.ErrUnauthorized)

	err = l.SetCost(ctx, minter, types.Ether(1))
	assert.ErrorIs(t, err, mintledger.ErrUnauthorized)

	err = l.SetPausedState(ctx, other, true)
	assert.ErrorIs(t, err, mintledger.ErrUnauthorized)

	assert.True(t, l.Treasury().Equal(types.Ether(10)))
	assert.True(t, l.Cost().Equal(types.Ether(10)))
	assert.False(t, l.PausedState())

	history, err := l.Withdrawals(ctx, treasury.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSetCost(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	require.NoError(t, l.SetCost(ctx, owner, types.Ether(5)))
	assert.True(t, l.Cost().Equal(types.Ether(5)))

	_, err := l.Mint(ctx, minter, 2, types.Ether(10))
	require.NoError(t, err)
	assert.True(t, l.Treasury().Equal(types.Ether(10)))

	err = l.SetCost(ctx, owner, types.USD(100))
	assert.True(t, mintledger.IsValidation(err))
	assert.True(t, l.Cost().Equal(types.Ether(5)))
}

func TestPause(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	require.NoError(t, l.SetPausedState(ctx, owner, true))
	assert.True(t, l.PausedState())
	assert.Equal(t, collection.StateOpenPaused, l.WindowState())

	_, err := l.Mint(ctx, minter, 1, types.Ether(10))
	assert.ErrorIs(t, err, mintledger.ErrPaused)

	require.NoError(t, l.SetPausedState(ctx, owner, false))
	ids, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
}

// ──────────────────────────────────────────────────
// Notifications
// ──────────────────────────────────────────────────

type recorder struct {
	mu       sync.Mutex
	mints    []*plugin.MintEvent
	rejected []*plugin.MintRejectedEvent
	withdraw []*plugin.WithdrawEvent
	costs    []*plugin.CostChangedEvent
	pauses   []*plugin.PausedChangedEvent
}

func (r *recorder) hooks() *plugin.Funcs {
	return &plugin.Funcs{
		PluginName: "recorder",
		Mint: func(_ context.Context, e *plugin.MintEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.mints = append(r.mints, e)
			return nil
		},
		MintRejected: func(_ context.Context, e *plugin.MintRejectedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.rejected = append(r.rejected, e)
			return nil
		},
		Withdraw: func(_ context.Context, e *plugin.WithdrawEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.withdraw = append(r.withdraw, e)
			return nil
		},
		CostChanged: func(_ context.Context, e *plugin.CostChangedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.costs = append(r.costs, e)
			return nil
		},
		PausedChanged: func(_ context.Context, e *plugin.PausedChangedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.pauses = append(r.pauses, e)
			return nil
		},
	}
}

func TestNotifications(t *testing.T) {
	rec := &recorder{}
	l := newLedger(t, dappPunks(25), mintledger.WithPlugin(rec.hooks()))
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 3, types.Ether(30))
	require.NoError(t, err)
	_, err = l.Mint(ctx, minter, 0, types.Ether(30))
	require.Error(t, err)
	require.NoError(t, l.SetCost(ctx, owner, types.Ether(1)))
	require.NoError(t, l.SetPausedState(ctx, owner, true))
	_, err = l.Withdraw(ctx, owner)
	require.NoError(t, err)

	require.Len(t, rec.mints, 1)
	assert.Equal(t, uint64(3), rec.mints[0].LastTokenID)
	assert.Equal(t, minter, rec.mints[0].Minter)
	assert.Equal(t, uint64(3), rec.mints[0].TotalSupply)
	assert.Equal(t, uint64(1), rec.mints[0].Receipt.FirstTokenID)

	require.Len(t, rec.rejected, 1)
	assert.ErrorIs(t, rec.rejected[0].Err, mintledger.ErrInvalidQuantity)
	assert.Equal(t, int64(0), rec.rejected[0].Quantity)

	require.Len(t, rec.costs, 1)
	assert.True(t, rec.costs[0].OldCost.Equal(types.Ether(10)))
	assert.True(t, rec.costs[0].NewCost.Equal(types.Ether(1)))

	require.Len(t, rec.pauses, 1)
	assert.True(t, rec.pauses[0].Paused)

	require.Len(t, rec.withdraw, 1)
	assert.True(t, rec.withdraw[0].Amount.Equal(types.Ether(30)))
	assert.Equal(t, owner, rec.withdraw[0].Recipient)
}

func TestNotificationFailureDoesNotRollback(t *testing.T) {
	failing := &plugin.Funcs{
		PluginName: "failing",
		Mint: func(context.Context, *plugin.MintEvent) error {
			return errors.New("downstream unavailable")
		},
	}
	l := newLedger(t, dappPunks(25), mintledger.WithPlugin(failing))

	ids, err := l.Mint(context.Background(), minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
	assert.Equal(t, uint64(1), l.TotalSupply())
}

func TestHookCanReadLedger(t *testing.T) {
	var l *mintledger.Ledger
	var seen uint64
	hook := &plugin.Funcs{
		PluginName: "reader",
		Mint: func(context.Context, *plugin.MintEvent) error {
			seen = l.TotalSupply()
			return nil
		},
	}
	l = newLedger(t, dappPunks(25), mintledger.WithPlugin(hook))

	_, err := l.Mint(context.Background(), minter, 2, types.Ether(20))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seen)
}

// ──────────────────────────────────────────────────
// Concurrency
// ──────────────────────────────────────────────────

func TestConcurrentMintsForLastSlots(t *testing.T) {
	const (
		maxSupply = 10
		callers   = 50
	)
	l := newLedger(t, dappPunks(maxSupply))
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		capacity  atomic.Int64
		mu        sync.Mutex
		seen      = make(map[uint64]bool)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acct := types.Account(fmt.Sprintf("0x%02d", i))
			ids, err := l.Mint(ctx, acct, 1, types.Ether(10))
			if errors.Is(err, mintledger.ErrCapacityExceeded) {
				capacity.Add(1)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			succeeded.Add(1)

			mu.Lock()
			defer mu.Unlock()
			for _, tokenID := range ids {
				assert.False(t, seen[tokenID], "token %d assigned twice", tokenID)
				seen[tokenID] = true
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(maxSupply), succeeded.Load())
	assert.Equal(t, int64(callers-maxSupply), capacity.Load())
	assert.Equal(t, uint64(maxSupply), l.TotalSupply())
	assert.Len(t, seen, maxSupply)
	assert.True(t, l.Treasury().Equal(types.Ether(10*maxSupply)))
}

func TestConcurrentMintAndAdmin(t *testing.T) {
	l := newLedger(t, dappPunks(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	var minted atomic.Uint64
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ids, err := l.Mint(ctx, minter, 2, types.Ether(20))
			if err == nil {
				minted.Add(uint64(len(ids)))
			}
		}()
		go func(i int) {
			defer wg.Done()
			_ = l.SetPausedState(ctx, owner, i%2 == 0)
			_ = l.WalletOfOwner(minter)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, minted.Load(), l.TotalSupply())
	assert.Equal(t, minted.Load(), l.BalanceOf(minter))
	assert.True(t, l.Treasury().Equal(types.Ether(10*minted.Load())))
}

// ──────────────────────────────────────────────────
// Persistence
// ──────────────────────────────────────────────────

// flakyStore fails the next write when armed.
type flakyStore struct {
	store.Store
	fail atomic.Bool
}

var errDisk = errors.New("disk full")

func (f *flakyStore) RecordMint(ctx context.Context, r *mint.Receipt) error {
	if f.fail.Load() {
		return errDisk
	}
	return f.Store.RecordMint(ctx, r)
}

func (f *flakyStore) RecordWithdrawal(ctx context.Context, w *treasury.Withdrawal) error {
	if f.fail.Load() {
		return errDisk
	}
	return f.Store.RecordWithdrawal(ctx, w)
}

func (f *flakyStore) UpdateMintWindow(ctx context.Context, collID id.CollectionID, w collection.MintWindow) error {
	if f.fail.Load() {
		return errDisk
	}
	return f.Store.UpdateMintWindow(ctx, collID, w)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	s := &flakyStore{Store: memory.New()}
	rec := &recorder{}
	l := newLedgerOn(t, s, dappPunks(25), mintledger.WithPlugin(rec.hooks()))
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 2, types.Ether(20))
	require.NoError(t, err)

	s.fail.Store(true)

	_, err = l.Mint(ctx, minter, 1, types.Ether(10))
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, mintledger.IsMintRejection(err))

	_, err = l.Withdraw(ctx, owner)
	assert.ErrorIs(t, err, errDisk)

	assert.ErrorIs(t, l.SetCost(ctx, owner, types.Ether(1)), errDisk)
	assert.ErrorIs(t, l.SetPausedState(ctx, owner, true), errDisk)

	assert.Equal(t, uint64(2), l.TotalSupply())
	assert.Equal(t, []uint64{1, 2}, l.WalletOfOwner(minter))
	assert.True(t, l.Treasury().Equal(types.Ether(20)))
	assert.True(t, l.Cost().Equal(types.Ether(10)))
	assert.False(t, l.PausedState())

	assert.Len(t, rec.mints, 1)
	assert.Len(t, rec.rejected, 1)
	assert.Empty(t, rec.withdraw)
	assert.Empty(t, rec.costs)
	assert.Empty(t, rec.pauses)

	s.fail.Store(false)
	ids, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ids)
}

func TestLoad(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	l := newLedgerOn(t, s, dappPunks(25))

	_, err := l.Mint(ctx, minter, 2, types.Ether(25))
	require.NoError(t, err)
	_, err = l.Mint(ctx, other, 1, types.Ether(10))
	require.NoError(t, err)
	_, err = l.Withdraw(ctx, owner)
	require.NoError(t, err)
	_, err = l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	require.NoError(t, l.SetPausedState(ctx, owner, true))
	require.NoError(t, l.SetCost(ctx, owner, types.Ether(7)))

	c, err := l.Collection()
	require.NoError(t, err)

	reloaded := mintledger.New(s, mintledger.WithClock(mintledger.FixedClock(epoch)))
	require.NoError(t, reloaded.Load(ctx, c.ID))

	assert.Equal(t, uint64(4), reloaded.TotalSupply())
	assert.Equal(t, []uint64{1, 2, 4}, reloaded.WalletOfOwner(minter))
	assert.Equal(t, []uint64{3}, reloaded.WalletOfOwner(other))
	assert.True(t, reloaded.Treasury().Equal(types.Ether(10)))
	assert.True(t, reloaded.PausedState())
	assert.True(t, reloaded.Cost().Equal(types.Ether(7)))
	assert.Equal(t, owner, reloaded.Owner())

	assert.ErrorIs(t, reloaded.Load(ctx, c.ID), mintledger.ErrAlreadyDeployed)
}

func TestLoadUnknownCollection(t *testing.T) {
	l := mintledger.New(memory.New())

	err := l.Load(context.Background(), id.NewCollectionID())
	assert.ErrorIs(t, err, mintledger.ErrCollectionNotFound)
	assert.True(t, mintledger.IsNotFound(err))
}

func TestLoadCorruptState(t *testing.T) {
	ctx := context.Background()

	t.Run("gap in token ids", func(t *testing.T) {
		s := memory.New()
		l := newLedgerOn(t, s, dappPunks(25))
		_, err := l.Mint(ctx, minter, 1, types.Ether(10))
		require.NoError(t, err)
		c, err := l.Collection()
		require.NoError(t, err)

		require.NoError(t, s.RecordMint(ctx, &mint.Receipt{
			ID:           id.NewMintID(),
			CollectionID: c.ID,
			Minter:       other,
			FirstTokenID: 3,
			Quantity:     1,
			UnitCost:     types.Ether(10),
			Payment:      types.Ether(10),
			MintedAt:     epoch,
		}))

		err = mintledger.New(s).Load(ctx, c.ID)
		assert.ErrorIs(t, err, mintledger.ErrCorruptState)
	})

	t.Run("withdrawn more than collected", func(t *testing.T) {
		s := memory.New()
		l := newLedgerOn(t, s, dappPunks(25))
		c, err := l.Collection()
		require.NoError(t, err)

		require.NoError(t, s.RecordWithdrawal(ctx, &treasury.Withdrawal{
			ID:           id.NewWithdrawalID(),
			CollectionID: c.ID,
			Recipient:    owner,
			Amount:       types.Ether(1),
			WithdrawnAt:  epoch,
		}))

		err = mintledger.New(s).Load(ctx, c.ID)
		assert.ErrorIs(t, err, mintledger.ErrCorruptState)
	})
}

func TestReceiptsFilter(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	for _, acct := range []types.Account{minter, other, minter} {
		_, err := l.Mint(ctx, acct, 1, types.Ether(10))
		require.NoError(t, err)
	}

	mine, err := l.Receipts(ctx, mint.ListOpts{Minter: minter})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, uint64(1), mine[0].FirstTokenID)
	assert.Equal(t, uint64(3), mine[1].FirstTokenID)
	assert.True(t, mine[0].UnitCost.Equal(types.Ether(10)))
	assert.Equal(t, epoch, mine[0].MintedAt)
}

func TestHistoryNegativePaging(t *testing.T) {
	l := newLedger(t, dappPunks(25))
	ctx := context.Background()

	_, err := l.Mint(ctx, minter, 1, types.Ether(10))
	require.NoError(t, err)
	_, err = l.Withdraw(ctx, owner)
	require.NoError(t, err)

	receipts, err := l.Receipts(ctx, mint.ListOpts{Offset: -1, Limit: -1})
	require.NoError(t, err)
	assert.Len(t, receipts, 1)

	withdrawals, err := l.Withdrawals(ctx, treasury.ListOpts{Offset: -1})
	require.NoError(t, err)
	assert.Len(t, withdrawals, 1)
}

func TestStopClosesStore(t *testing.T) {
	s := memory.New()
	l := newLedgerOn(t, s, dappPunks(25))

	require.NoError(t, l.Stop())

	_, err := l.Mint(context.Background(), minter, 1, types.Ether(10))
	assert.ErrorIs(t, err, mintledger.ErrStoreClosed)
}
