package ics

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Sequence(t *testing.T) {
	c := NewCounter("fight")
	assert.Equal(t, "fight-1", c.NextID())
	assert.Equal(t, "fight-2", c.NextID())

	bare := NewCounter("")
	assert.Equal(t, "1", bare.NextID())
}

func TestCounter_ConcurrentUnique(t *testing.T) {
	c := NewCounter("x")
	const workers, perWorker = 8, 250

	var (
		mu   sync.Mutex
		seen = make(map[string]bool, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := c.NextID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestUUIDGenerator(t *testing.T) {
	var g UUIDGenerator
	a, b := g.NextID(), g.NextID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
