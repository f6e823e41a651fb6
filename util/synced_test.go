package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCounterConcurrentIncrement(t *testing.T) {
	sc := NewSafeCounter()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.Increment()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), sc.Value())
}

func TestSafeCounterCurrent(t *testing.T) {
	sc := NewSafeCounter()

	token := sc.Increment()
	assert.True(t, sc.Current(token))

	sc.Increment()
	assert.False(t, sc.Current(token), "older token must not read as current")
}

func TestSafeFlag(t *testing.T) {
	sf := NewSafeFlag()

	assert.False(t, sf.Value())
	assert.True(t, sf.Set(true))
	assert.True(t, sf.Value())
	assert.False(t, sf.Toggle())
}
