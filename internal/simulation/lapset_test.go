package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLapSet(t *testing.T) {
	set := NewLapSet([]int{1, 5, 64, 65, 40, 40}, 70)

	for _, lap := range []int{1, 5, 40, 64, 65} {
		assert.True(t, set.Contains(lap), "lap %d", lap)
	}
	for _, lap := range []int{0, 2, 39, 63, 66, 70, 1000, -3} {
		assert.False(t, set.Contains(lap), "lap %d", lap)
	}
	assert.Equal(t, 5, set.Len())
}

func TestLapSetDropsOutOfRange(t *testing.T) {
	set := NewLapSet([]int{-1, 0, 11, 1 << 30}, 10)

	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Contains(11))
}

func TestLapSetEmpty(t *testing.T) {
	var set LapSet
	assert.False(t, set.Contains(1))
	assert.Equal(t, 0, NewLapSet(nil, 40).Len())
}

func TestLapSetSizedByHighestLap(t *testing.T) {
	set := NewLapSet([]int{3, 2_000_000}, 1<<20)

	assert.Len(t, set.bits, 1)
	assert.True(t, set.Contains(3))
	assert.False(t, set.Contains(2_000_000))

	set = NewLapSet([]int{130, 7}, 1<<20)
	assert.Len(t, set.bits, 3)
	assert.Equal(t, 2, set.Len())

	assert.Nil(t, NewLapSet([]int{0, -5}, 1<<20).bits)
}
