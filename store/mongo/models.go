package mongo

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

// moneyModel keeps 256-bit amounts as decimal strings; BSON has no integer
// type wide enough.
type moneyModel struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

func toMoneyModel(m types.Money) moneyModel {
	return moneyModel{Amount: m.Dec(), Currency: m.Currency}
}

func (m moneyModel) money() (types.Money, error) {
	return types.Parse(m.Amount, m.Currency)
}

// ==================== Collection models ====================

type collectionModel struct {
	grove.BaseModel `grove:"table:mintledger_collections"`

	ID        string          `grove:"id,pk"      bson:"_id"`
	Name      string          `grove:"name"       bson:"name"`
	Symbol    string          `grove:"symbol"     bson:"symbol"`
	MaxSupply int64           `grove:"max_supply" bson:"max_supply"`
	BaseURI   string          `grove:"base_uri"   bson:"base_uri"`
	Owner     string          `grove:"owner"      bson:"owner"`
	Currency  string          `grove:"currency"   bson:"currency"`
	Window    mintWindowModel `grove:"window"     bson:"window"`
	CreatedAt time.Time       `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `grove:"updated_at" bson:"updated_at"`
}

type mintWindowModel struct {
	OpensAt time.Time  `bson:"opens_at"`
	Cost    moneyModel `bson:"cost"`
	Paused  bool       `bson:"paused"`
}

func toMintWindowModel(w collection.MintWindow) mintWindowModel {
	return mintWindowModel{
		OpensAt: w.OpensAt.UTC(),
		Cost:    toMoneyModel(w.Cost),
		Paused:  w.Paused,
	}
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
		Window:    toMintWindowModel(c.Window),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromCollectionModel(m *collectionModel) (*collection.Collection, error) {
	collID, err := id.ParseCollectionID(m.ID)
	if err != nil {
		return nil, err
	}
	cost, err := m.Window.Cost.money()
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
		MaxSupply: uint64(m.MaxSupply), //nolint:gosec // written from a uint64
		BaseURI:   m.BaseURI,
		Owner:     types.Account(m.Owner),
		Currency:  m.Currency,
		Window: collection.MintWindow{
			OpensAt: m.Window.OpensAt.UTC(),
			Cost:    cost,
			Paused:  m.Window.Paused,
		},
	}, nil
}

// ==================== Receipt models ====================

type receiptModel struct {
	grove.BaseModel `grove:"table:mintledger_receipts"`

	ID           string     `grove:"id,pk"          bson:"_id"`
	CollectionID string     `grove:"collection_id"  bson:"collection_id"`
	Minter       string     `grove:"minter"         bson:"minter"`
	FirstTokenID int64      `grove:"first_token_id" bson:"first_token_id"`
	Quantity     int64      `grove:"quantity"       bson:"quantity"`
	UnitCost     moneyModel `grove:"unit_cost"      bson:"unit_cost"`
	Payment      moneyModel `grove:"payment"        bson:"payment"`
	MintedAt     time.Time  `grove:"minted_at"      bson:"minted_at"`
}

func toReceiptModel(r *mint.Receipt) *receiptModel {
	return &receiptModel{
		ID:           r.ID.String(),
		CollectionID: r.CollectionID.String(),
		Minter:       r.Minter.String(),
		FirstTokenID: int64(r.FirstTokenID), //nolint:gosec // bounded by max supply
		Quantity:     int64(r.Quantity),     //nolint:gosec // bounded by max supply
		UnitCost:     toMoneyModel(r.UnitCost),
		Payment:      toMoneyModel(r.Payment),
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
	unitCost, err := m.UnitCost.money()
	if err != nil {
		return nil, fmt.Errorf("receipt %s unit cost: %w", m.ID, err)
	}
	payment, err := m.Payment.money()
	if err != nil {
		return nil, fmt.Errorf("receipt %s payment: %w", m.ID, err)
	}

	return &mint.Receipt{
		ID:           mintID,
		CollectionID: collID,
		Minter:       types.Account(m.Minter),
		FirstTokenID: uint64(m.FirstTokenID), //nolint:gosec // written from a uint64
		Quantity:     uint64(m.Quantity),     //nolint:gosec // written from a uint64
		UnitCost:     unitCost,
		Payment:      payment,
		MintedAt:     m.MintedAt.UTC(),
	}, nil
}

// ==================== Withdrawal models ====================

type withdrawalModel struct {
	grove.BaseModel `grove:"table:mintledger_withdrawals"`

	ID           string     `grove:"id,pk"         bson:"_id"`
	CollectionID string     `grove:"collection_id" bson:"collection_id"`
	Recipient    string     `grove:"recipient"     bson:"recipient"`
	Amount       moneyModel `grove:"amount"        bson:"amount"`
	WithdrawnAt  time.Time  `grove:"withdrawn_at"  bson:"withdrawn_at"`
}

func toWithdrawalModel(w *treasury.Withdrawal) *withdrawalModel {
	return &withdrawalModel{
		ID:           w.ID.String(),
		CollectionID: w.CollectionID.String(),
		Recipient:    w.Recipient.String(),
		Amount:       toMoneyModel(w.Amount),
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
	amount, err := m.Amount.money()
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
