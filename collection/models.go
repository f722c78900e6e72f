// Package collection defines a deployed token collection and its mint window.
package collection

import (
	"time"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/types"
)

// State describes whether the mint window currently accepts mints.
type State string

const (
	StateClosed       State = "closed"
	StateOpenUnpaused State = "open_unpaused"
	StateOpenPaused   State = "open_paused"
)

// Collection holds the fields fixed at deploy time together with the
// owner-adjustable mint window.
type Collection struct {
	types.Entity
	ID        id.CollectionID `json:"id"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	MaxSupply uint64          `json:"max_supply"`
	BaseURI   string          `json:"base_uri"`
	Owner     types.Account   `json:"owner"`
	Currency  string          `json:"currency"`
	Window    MintWindow      `json:"window"`
}

// MintWindow gates minting by open time, price and pause switch.
type MintWindow struct {
	OpensAt time.Time   `json:"opens_at"`
	Cost    types.Money `json:"cost"`
	Paused  bool        `json:"paused"`
}

// IsOpen reports whether now has reached the open time. Comparison is done
// at Unix-second precision.
func (w MintWindow) IsOpen(now time.Time) bool {
	return now.Unix() >= w.OpensAt.Unix()
}

// State returns the window state at now.
func (w MintWindow) State(now time.Time) State {
	switch {
	case !w.IsOpen(now):
		return StateClosed
	case w.Paused:
		return StateOpenPaused
	default:
		return StateOpenUnpaused
	}
}

// Params are the inputs of a deploy.
type Params struct {
	Name      string      `json:"name"`
	Symbol    string      `json:"symbol"`
	Cost      types.Money `json:"cost"`
	MaxSupply uint64      `json:"max_supply"`
	OpensAt   time.Time   `json:"opens_at"`
	BaseURI   string      `json:"base_uri"`
}
