package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "waitlist:count", WaitlistCountKey)
	assert.Equal(t, "artist::7:lifecycle:cancelled", ArtistLifecycleKey(7, "cancelled"))
	assert.Equal(t, "checkout::req-1:txn", CheckoutRequestKey("req-1"))
}
