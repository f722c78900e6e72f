package mint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiptRange(t *testing.T) {
	r := &Receipt{FirstTokenID: 4, Quantity: 3}

	assert.Equal(t, uint64(6), r.LastTokenID())
	assert.Equal(t, []uint64{4, 5, 6}, r.TokenIDs())
	assert.True(t, r.Contains(4))
	assert.True(t, r.Contains(6))
	assert.False(t, r.Contains(3))
	assert.False(t, r.Contains(7))
}
