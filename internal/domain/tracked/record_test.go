package tracked

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, Kind("milestone").Valid())
	assert.False(t, Kind("").Valid())
}

func TestRecordIsClosed(t *testing.T) {
	assert.True(t, (&Record{Kind: KindSubscription, Status: "paid"}).IsClosed())
	assert.False(t, (&Record{Kind: KindSubscription, Status: "pending"}).IsClosed())
	assert.True(t, (&Record{Kind: KindProcess, Status: "completed"}).IsClosed())
	// "paid" means nothing for a document
	assert.False(t, (&Record{Kind: KindDocument, Status: "paid"}).IsClosed())
}
