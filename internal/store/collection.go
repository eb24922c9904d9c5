// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store is the in-memory mirror of controller state. Each entity
// kind lives in a keyed collection whose current contents are observable
// both as a snapshot and as a last-value-wins watch.
package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/ManuGH/unictl/internal/metrics"
	"github.com/ManuGH/unictl/internal/stream"
)

// Collection is a keyed set of entities of one kind. Writers choose between
// publishing immediately (Upsert, Remove, Replace) and batching silently
// with one publish at the end (UpsertSilent + Flush). Snapshots are sorted
// by key so equal contents compare equal.
type Collection[K cmp.Ordered, V any] struct {
	name    string
	mu      sync.RWMutex
	items   map[K]V
	dirty   bool
	watch   *stream.Watch[[]V]
	indexFn func(V) string
	index   map[string]K
}

// NewCollection returns an empty collection. name labels the entity-count
// gauge.
func NewCollection[K cmp.Ordered, V any](name string) *Collection[K, V] {
	return &Collection[K, V]{
		name:  name,
		items: make(map[K]V),
		watch: stream.NewWatch[[]V](),
	}
}

// WithIndex attaches a secondary string index rebuilt on every publish. fn
// returning "" leaves the entity out of the index. Call before any write.
func (c *Collection[K, V]) WithIndex(fn func(V) string) *Collection[K, V] {
	c.indexFn = fn
	c.index = make(map[string]K)
	return c
}

// ByIndex looks an entity up by its secondary index value. Silent writes are
// invisible here until the next publish.
func (c *Collection[K, V]) ByIndex(id string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero V
	if c.index == nil {
		return zero, false
	}
	k, ok := c.index[id]
	if !ok {
		return zero, false
	}
	v, ok := c.items[k]
	if !ok {
		return zero, false
	}
	return v, true
}

// Upsert stores v under k and publishes the new contents.
func (c *Collection[K, V]) Upsert(k K, v V) {
	c.mu.Lock()
	c.items[k] = v
	c.publishLocked()
	c.mu.Unlock()
}

// UpsertSilent stores v under k without waking subscribers. A later Flush
// publishes all batched writes at once.
func (c *Collection[K, V]) UpsertSilent(k K, v V) {
	c.mu.Lock()
	c.items[k] = v
	c.dirty = true
	c.mu.Unlock()
}

// Flush publishes the current contents if any silent write happened since
// the last publish.
func (c *Collection[K, V]) Flush() {
	c.mu.Lock()
	if c.dirty {
		c.publishLocked()
	}
	c.mu.Unlock()
}

// Remove deletes k and publishes when the key existed.
func (c *Collection[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[k]; !ok {
		return false
	}
	delete(c.items, k)
	c.publishLocked()
	return true
}

// Replace swaps the whole contents. Keys absent from items disappear; this
// is how a full refresh drops entities the controller no longer reports.
func (c *Collection[K, V]) Replace(items map[K]V) {
	c.mu.Lock()
	c.items = make(map[K]V, len(items))
	for k, v := range items {
		c.items[k] = v
	}
	c.publishLocked()
	c.mu.Unlock()
}

// Get returns the entity stored under k.
func (c *Collection[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[k]
	return v, ok
}

// Update applies fn to the entity under k while holding the write lock, then
// publishes. fn is not called when k is absent.
func (c *Collection[K, V]) Update(k K, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[k]
	if !ok {
		return false
	}
	c.items[k] = fn(v)
	c.publishLocked()
	return true
}

// UpdateSilent is Update without the publish; pair with Flush.
func (c *Collection[K, V]) UpdateSilent(k K, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[k]
	if !ok {
		return false
	}
	c.items[k] = fn(v)
	c.dirty = true
	return true
}

// Len returns the number of stored entities.
func (c *Collection[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the sorted key set.
func (c *Collection[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Snapshot returns the current contents sorted by key.
func (c *Collection[K, V]) Snapshot() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Find returns the first entity matching pred, in key order.
func (c *Collection[K, V]) Find(pred func(V) bool) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.snapshotLocked() {
		if pred(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Subscribe returns a watch subscriber observing every published snapshot.
// A subscriber that lags only ever sees the latest contents.
func (c *Collection[K, V]) Subscribe() *stream.WatchSub[[]V] {
	return c.watch.Subscribe()
}

func (c *Collection[K, V]) snapshotLocked() []V {
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.items[k])
	}
	return out
}

func (c *Collection[K, V]) publishLocked() {
	c.dirty = false
	if c.indexFn != nil {
		c.index = make(map[string]K, len(c.items))
		for k, v := range c.items {
			if id := c.indexFn(v); id != "" {
				c.index[id] = k
			}
		}
	}
	c.watch.Set(c.snapshotLocked())
	metrics.SetEntityCount(c.name, len(c.items))
}
