package util

import "sync/atomic"

// SafeCounter is a monotonic counter safe for concurrent use. The preview
// pipeline uses it as a render generation token.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeCounter creates a new SafeCounter.
func NewSafeCounter() *SafeCounter {
	return &SafeCounter{}
}

// Increment increments the counter and returns the new value.
func (sc *SafeCounter) Increment() int64 {
	return sc.value.Add(1)
}

// Set sets the value of the counter.
func (sc *SafeCounter) Set(v int64) {
	sc.value.Store(v)
}

// Value returns the current value of the counter.
func (sc *SafeCounter) Value() int64 {
	return sc.value.Load()
}

// Current reports whether token is still the latest value handed out.
func (sc *SafeCounter) Current(token int64) bool {
	return sc.value.Load() == token
}

// SafeFlag is a boolean safe for concurrent use.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeFlag creates a new SafeFlag.
func NewSafeFlag() *SafeFlag {
	return &SafeFlag{}
}

// Set sets the value of the flag and returns it.
func (sf *SafeFlag) Set(v bool) bool {
	sf.value.Store(v)
	return v
}

// Value returns the current value of the flag.
func (sf *SafeFlag) Value() bool {
	return sf.value.Load()
}

// Toggle flips the flag and returns the new value.
func (sf *SafeFlag) Toggle() bool {
	return sf.Set(!sf.Value())
}
