package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstPerKey(t *testing.T) {
	krl := New(0.001, 2)
	defer krl.Stop()

	assert.True(t, krl.Allow("a"))
	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))

	assert.True(t, krl.Allow("b"), "keys are independent")
}

func TestAllow_Concurrent(t *testing.T) {
	krl := New(0.001, 5)
	defer krl.Stop()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if krl.Allow("shared") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), allowed.Load())
}

func TestEvictIdle(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	now := time.Now()
	krl.now = func() time.Time { return now }
	krl.Allow("old")

	now = now.Add(time.Hour)
	krl.Allow("fresh")
	krl.evictIdle()

	assert.Equal(t, 1, krl.Len())
}
