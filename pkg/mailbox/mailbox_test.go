package mailbox

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_OfferTake(t *testing.T) {
	m := New[int]()

	_, ok := m.Take()
	assert.False(t, ok, "empty mailbox must not yield a value")
	assert.False(t, m.Pending())

	require.NoError(t, m.Offer(5))
	assert.True(t, m.Pending())

	err := m.Offer(6)
	require.ErrorIs(t, err, ErrOccupied)

	v, ok := m.Take()
	require.True(t, ok)
	assert.Equal(t, 5, v, "second offer must not overwrite the first")
	assert.False(t, m.Pending())

	require.NoError(t, m.Offer(6))
	v, ok = m.Take()
	require.True(t, ok)
	assert.Equal(t, 6, v)
}

func TestMailbox_ConcurrentOffers(t *testing.T) {
	m := New[string]()

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Offer("cfg") == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load(), "exactly one offer may land in an empty slot")

	_, ok := m.Take()
	assert.True(t, ok)
	_, ok = m.Take()
	assert.False(t, ok)
}

func TestMailbox_StructValue(t *testing.T) {
	type settings struct {
		Affinity []int
		Priority int
	}
	m := New[settings]()

	require.NoError(t, m.Offer(settings{Affinity: []int{0, 1}, Priority: 5}))
	v, ok := m.Take()
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, v.Affinity)
	assert.Equal(t, 5, v.Priority)
}
