package sqlite

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

// Amounts are stored as base-10 TEXT: 256-bit values do not fit any integer
// column type.

// ==================== Collection models ====================

type collectionModel struct {
	grove.BaseModel `grove:"table:mintledger_collections"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	Symbol    string    `grove:"symbol"`
	MaxSupply int64     `grove:"max_supply"`
	BaseURI   string    `grove:"base_uri"`
	Owner     string    `grove:"owner"`
	Currency  string    `grove:"currency"`
	OpensAt   time.Time `grove:"opens_at"`
	Cost      string    `grove:"cost"`
	Paused    bool      `grove:"paused"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toCollectionModel(c *collection.Collection) *collectionModel {
	return &collectionModel{
		ID:        c.ID.String(),
		Name:      c.Name,
		Symbol:    c.Symbol,
		MaxSupply: int64(c.MaxSupply), //nolint:gosec // bounded by deploy validation
		BaseURI:   c.BaseURI,
		Owner:     c.Owner.String(),
		Currency:  c.Currency,
		OpensAt:   c.Window.OpensAt.UTC(),
		Cost:      c.Window.Cost.Dec(),
		Paused:    c.Window.Paused,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromCollectionModel(m *collectionModel) (*collection.Collection, error) {
	collID, err := id.ParseCollectionID(m.ID)
	if err != nil {
		return nil, err
	}
	cost, err := types.Parse(m.Cost, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("collection %s cost: %w", m.ID, err)
	}

	return &collection.Collection{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        collID,
		Name:      m.Name,
		Symbol:    m.Symbol,
		MaxSupply: uint64(m.MaxSupply), //nolint:gosec // column is CHECK (> 0)
		BaseURI:   m.BaseURI,
		Owner:     types.Account(m.Owner),
		Currency:  m.Currency,
		Window: collection.MintWindow{
			OpensAt: m.OpensAt.UTC(),
			Cost:    cost,
			Paused:  m.Paused,
		},
	}, nil
}

// ==================== Receipt models ====================

type receiptModel struct {
	grove.BaseModel `grove:"table:mintledger_receipts"`

	ID           string    `grove:"id,pk"`
	CollectionID string    `grove:"collection_id"`
	Minter       string    `grove:"minter"`
	FirstTokenID int64     `grove:"first_token_id"`
	Quantity     int64     `grove:"quantity"`
	Currency     string    `grove:"currency"`
	UnitCost     string    `grove:"unit_cost"`
	Payment      string    `grove:"payment"`
	MintedAt     time.Time `grove:"minted_at"`
}

func toReceiptModel(r *mint.Receipt) *receiptModel {
	return &receiptModel{
		ID:           r.ID.String(),
		CollectionID: r.CollectionID.String(),
		Minter:       r.Minter.String(),
		FirstTokenID: int64(r.FirstTokenID), //nolint:gosec // bounded by max supply
		Quantity:     int64(r.Quantity),     //nolint:gosec // bounded by max supply
		Currency:     r.Payment.Currency,
		UnitCost:     r.UnitCost.Dec(),
		Payment:      r.Payment.Dec(),
		MintedAt:     r.MintedAt.UTC(),
	}
}

func fromReceiptModel(m *receiptModel) (*mint.Receipt, error) {
	mintID, err := id.ParseMintID(m.ID)
	if err != nil {
		return nil, err
	}
	collID, err := id.ParseCollectionID(m.CollectionID)
	if err != nil {
		return nil, err
	}
	unitCost, err := types.Parse(m.UnitCost, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("receipt %s unit cost: %w", m.ID, err)
	}
	payment, err := types.Parse(m.Payment, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("receipt %s payment: %w", m.ID, err)
	}

	return &mint.Receipt{
		ID:           mintID,
		CollectionID: collID,
		Minter:       types.Account(m.Minter),
		FirstTokenID: uint64(m.FirstTokenID), //nolint:gosec // column is CHECK (>= 1)
		Quantity:     uint64(m.Quantity),     //nolint:gosec // column is CHECK (>= 1)
		UnitCost:     unitCost,
		Payment:      payment,
		MintedAt:     m.MintedAt.UTC(),
	}, nil
}

// ==================== Withdrawal models ====================

type withdrawalModel struct {
	grove.BaseModel `grove:"table:mintledger_withdrawals"`

	ID           string    `grove:"id,pk"`
	CollectionID string    `grove:"collection_id"`
	Recipient    string    `grove:"recipient"`
	Currency     string    `grove:"currency"`
	Amount       string    `grove:"amount"`
	WithdrawnAt  time.Time `grove:"withdrawn_at"`
}

func toWithdrawalModel(w *treasury.Withdrawal) *withdrawalModel {
	return &withdrawalModel{
		ID:           w.ID.String(),
		CollectionID: w.CollectionID.String(),
		Recipient:    w.Recipient.String(),
		Currency:     w.Amount.Currency,
		Amount:       w.Amount.Dec(),
		WithdrawnAt:  w.WithdrawnAt.UTC(),
	}
}

func fromWithdrawalModel(m *withdrawalModel) (*treasury.Withdrawal, error) {
	wdrID, err := id.ParseWithdrawalID(m.ID)
	if err != nil {
		return nil, err
	}
	collID, err := id.ParseCollectionID(m.CollectionID)
	if err != nil {
		return nil, err
	}
	amount, err := types.Parse(m.Amount, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("withdrawal %s amount: %w", m.ID, err)
	}

	return &treasury.Withdrawal{
		ID:           wdrID,
		CollectionID: collID,
		Recipient:    types.Account(m.Recipient),
		Amount:       amount,
		WithdrawnAt:  m.WithdrawnAt.UTC(),
	}, nil
}
