package cache

import (
	"sync"
	"time"
)

// Versioned guards an LRU with a per-key generation so that a value computed
// before an invalidation is never stored after it.
//
// Readers call Generation before loading, then StoreIf with that generation.
// Invalidate hands the key a new generation and drops the entry.
//
// Generations come from one counter. Keys without their own entry report
// floor, and CleanExpired forgets the entries of keys that are no longer
// cached by raising floor to the counter, so the map only holds keys that
// are cached or were invalidated since the last cleanup.
type Versioned[T any] struct {
	lru *LRUCache[T]

	mu    sync.Mutex
	gens  map[string]uint64
	clock uint64
	floor uint64
}

func NewVersioned[T any](maxSize int, ttl time.Duration) *Versioned[T] {
	return &Versioned[T]{
		lru:  NewLRUCache[T](maxSize, ttl),
		gens: make(map[string]uint64),
	}
}

func (v *Versioned[T]) Get(key string) (T, bool) {
	return v.lru.Get(key)
}

// Generation returns the current generation of key.
func (v *Versioned[T]) Generation(key string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation(key)
}

func (v *Versioned[T]) generation(key string) uint64 {
	if g, ok := v.gens[key]; ok {
		return g
	}
	return v.floor
}

// StoreIf stores data only if key has not been invalidated since gen was
// read. It reports whether the value was stored.
func (v *Versioned[T]) StoreIf(key string, gen uint64, data T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.generation(key) != gen {
		return false
	}
	v.gens[key] = gen
	v.lru.Set(key, data)
	return true
}

// Invalidate drops the entry and makes in-flight StoreIf calls for key fail.
func (v *Versioned[T]) Invalidate(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clock++
	v.gens[key] = v.clock
	v.lru.Delete(key)
}

func (v *Versioned[T]) Size() int {
	return v.lru.Size()
}

// Tracked returns how many keys carry their own generation.
func (v *Versioned[T]) Tracked() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.gens)
}

// CleanExpired implements Cleaner. Besides expiring values it forgets the
// generations of keys that are no longer cached.
func (v *Versioned[T]) CleanExpired() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	removed := v.lru.CleanExpired()
	pruned := false
	for key := range v.gens {
		if !v.lru.Contains(key) {
			delete(v.gens, key)
			pruned = true
		}
	}
	if pruned {
		v.floor = v.clock
	}
	return removed
}
