package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

func seedCollection(t *testing.T, s *Store) *collection.Collection {
	t.Helper()

	c := &collection.Collection{
		Entity:    types.NewEntity(),
		ID:        id.NewCollectionID(),
		Name:      "Dapp Punks",
		Symbol:    "DP",
		MaxSupply: 25,
		BaseURI:   "ipfs://Qm/",
		Owner:     types.NewAccount("0xowner"),
		Currency:  "eth",
		Window: collection.MintWindow{
			OpensAt: time.Unix(1_700_000_000, 0).UTC(),
			Cost:    types.Ether(10),
		},
	}
	require.NoError(t, s.CreateCollection(context.Background(), c))
	return c
}

func receipt(collID id.CollectionID, minter string, first, qty uint64) *mint.Receipt {
	return &mint.Receipt{
		ID:           id.NewMintID(),
		CollectionID: collID,
		Minter:       types.NewAccount(minter),
		FirstTokenID: first,
		Quantity:     qty,
		UnitCost:     types.Ether(10),
		Payment:      types.Ether(10 * qty),
		MintedAt:     time.Now().UTC(),
	}
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCollection(t, s)

	got, err := s.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.True(t, types.Ether(10).Equal(got.Window.Cost))

	// Returned copies are detached from the store.
	got.Name = "mutated"
	again, err := s.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dapp Punks", again.Name)

	w := got.Window
	w.Paused = true
	require.NoError(t, s.UpdateMintWindow(ctx, c.ID, w))
	again, err = s.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, again.Window.Paused)

	assert.ErrorIs(t, s.CreateCollection(ctx, c), mintledger.ErrAlreadyExists)

	_, err = s.GetCollection(ctx, id.NewCollectionID())
	assert.ErrorIs(t, err, mintledger.ErrCollectionNotFound)
	assert.ErrorIs(t, s.UpdateMintWindow(ctx, id.NewCollectionID(), w), mintledger.ErrCollectionNotFound)
}

func TestReceiptsOrderedAndFiltered(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCollection(t, s)

	require.NoError(t, s.RecordMint(ctx, receipt(c.ID, "0xbob", 4, 2)))
	require.NoError(t, s.RecordMint(ctx, receipt(c.ID, "0xalice", 1, 3)))
	require.NoError(t, s.RecordMint(ctx, receipt(c.ID, "0xalice", 6, 1)))

	all, err := s.ListReceipts(ctx, c.ID, mint.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint64{1, 4, 6}, []uint64{all[0].FirstTokenID, all[1].FirstTokenID, all[2].FirstTokenID})

	alice, err := s.ListReceipts(ctx, c.ID, mint.ListOpts{Minter: "0xalice"})
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	page, err := s.ListReceipts(ctx, c.ID, mint.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(4), page[0].FirstTokenID)

	beyond, err := s.ListReceipts(ctx, c.ID, mint.ListOpts{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestListNegativePaging(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCollection(t, s)

	require.NoError(t, s.RecordMint(ctx, receipt(c.ID, "0xalice", 1, 1)))
	require.NoError(t, s.RecordMint(ctx, receipt(c.ID, "0xalice", 2, 1)))

	tests := []struct {
		name string
		opts mint.ListOpts
		want int
	}{
		{"negative offset", mint.ListOpts{Offset: -1}, 2},
		{"negative limit", mint.ListOpts{Limit: -5}, 2},
		{"both negative", mint.ListOpts{Limit: -1, Offset: -3}, 2},
		{"negative offset with limit", mint.ListOpts{Limit: 1, Offset: -1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListReceipts(ctx, c.ID, tt.opts)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	withdrawals, err := s.ListWithdrawals(ctx, c.ID, treasury.ListOpts{Limit: -1, Offset: -1})
	require.NoError(t, err)
	assert.Empty(t, withdrawals)
}

func TestRecordMintRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCollection(t, s)

	r := receipt(c.ID, "0xalice", 1, 1)
	require.NoError(t, s.RecordMint(ctx, r))
	assert.ErrorIs(t, s.RecordMint(ctx, r), mintledger.ErrAlreadyExists)
	assert.ErrorIs(t, s.RecordMint(ctx, receipt(c.ID, "0xbob", 1, 1)), mintledger.ErrAlreadyExists)
	assert.ErrorIs(t, s.RecordMint(ctx, receipt(id.NewCollectionID(), "0xbob", 1, 1)), mintledger.ErrCollectionNotFound)
}

func TestWithdrawals(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCollection(t, s)

	for _, amount := range []uint64{30, 0} {
		require.NoError(t, s.RecordWithdrawal(ctx, &treasury.Withdrawal{
			ID:           id.NewWithdrawalID(),
			CollectionID: c.ID,
			Recipient:    c.Owner,
			Amount:       types.Ether(amount),
			WithdrawnAt:  time.Now().UTC(),
		}))
	}

	list, err := s.ListWithdrawals(ctx, c.ID, treasury.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, types.Ether(30).Equal(list[0].Amount))
	assert.True(t, list[1].Amount.IsZero())
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCollection(t, s)

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(ctx), mintledger.ErrStoreClosed)
	_, err := s.GetCollection(ctx, c.ID)
	assert.ErrorIs(t, err, mintledger.ErrStoreClosed)
	assert.ErrorIs(t, s.RecordMint(ctx, receipt(c.ID, "0xalice", 1, 1)), mintledger.ErrStoreClosed)
}
