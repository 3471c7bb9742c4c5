package mapview

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/symbolmap/internal/symbol"
)

func TestRegistry_Lifecycle(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions())
	require.NoError(t, err)

	id, v := reg.Create()
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Get(id)
	require.True(t, ok)
	assert.Same(t, v, got)

	assert.True(t, reg.Delete(id))
	assert.False(t, reg.Delete(id))
	_, ok = reg.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ViewsAreIndependent(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions())
	require.NoError(t, err)

	_, a := reg.Create()
	_, b := reg.Create()
	a.Step(symbol.Forward)

	assert.Equal(t, 1, a.State().Index)
	assert.Equal(t, 0, b.State().Index)
	assert.Equal(t, 0, reg.Detached().State().Index)
}

func TestRegistry_RejectsBadOptions(t *testing.T) {
	opts := concertOptions()
	opts.ScaleFactor = -1
	_, err := NewRegistry(concerts(t), opts)
	assert.Error(t, err)

	opts = concertOptions()
	opts.Popup.Template = "{{"
	_, err = NewRegistry(concerts(t), opts)
	assert.Error(t, err)
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Create()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, reg.Len())
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions(), WithViewLimits(2, time.Hour))
	require.NoError(t, err)

	a, _ := reg.Create()
	b, _ := reg.Create()

	// Touch a so b is the least recently used.
	_, ok := reg.Get(a)
	require.True(t, ok)

	c, _ := reg.Create()
	assert.Equal(t, 2, reg.Len())

	_, ok = reg.Get(b)
	assert.False(t, ok)
	_, ok = reg.Get(a)
	assert.True(t, ok)
	_, ok = reg.Get(c)
	assert.True(t, ok)
}

func TestRegistry_IdleViewsExpire(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions(), WithViewLimits(10, 50*time.Millisecond))
	require.NoError(t, err)

	for range 100 {
		reg.Create()
	}
	id, _ := reg.Create()

	time.Sleep(100 * time.Millisecond)
	_, ok := reg.Get(id)
	assert.False(t, ok)

	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRegistry_GetKeepsActiveViewAlive(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions(), WithViewLimits(10, 150*time.Millisecond))
	require.NoError(t, err)

	id, _ := reg.Create()
	for range 4 {
		time.Sleep(60 * time.Millisecond)
		_, ok := reg.Get(id)
		require.True(t, ok)
	}
}

func TestRegistry_DefaultLimits(t *testing.T) {
	reg, err := NewRegistry(concerts(t), concertOptions(), WithViewLimits(0, -time.Second))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxViews, reg.maxViews)
	assert.Equal(t, DefaultViewTTL, reg.ttl)
}
