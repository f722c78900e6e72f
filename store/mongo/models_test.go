package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

func TestWithdrawalModelBSON(t *testing.T) {
	w := &treasury.Withdrawal{
		ID:           id.NewWithdrawalID(),
		CollectionID: id.NewCollectionID(),
		Recipient:    "0xowner",
		Amount:       types.Ether(35),
		WithdrawnAt:  time.Unix(1700000000, 0).UTC(),
	}

	raw, err := bson.Marshal(toWithdrawalModel(w))
	require.NoError(t, err)

	var doc struct {
		ID     string     `bson:"_id"`
		Amount moneyModel `bson:"amount"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, w.ID.String(), doc.ID)
	assert.Equal(t, "35000000000000000000", doc.Amount.Amount)
	assert.Equal(t, "eth", doc.Amount.Currency)

	var m withdrawalModel
	require.NoError(t, bson.Unmarshal(raw, &m))
	got, err := fromWithdrawalModel(&m)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(w.Amount))
	assert.Equal(t, w.CollectionID, got.CollectionID)
	assert.Equal(t, w.WithdrawnAt, got.WithdrawnAt)
}
