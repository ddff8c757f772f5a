// Package tagindex maintains roaring-bitmap posting lists mapping tags to
// cache keys. Group invalidation resolves its candidate set here instead of
// walking every tier.
package tagindex

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index maps tags to the set of keys carrying them.
// Keys are interned to dense serials so each tag is one compressed bitmap.
// Thread-safe.
type Index struct {
	mu   sync.Mutex
	next uint32
	ids  map[string]uint32
	keys map[uint32]string
	tags map[string]*roaring.Bitmap
}

// New creates an empty index.
func New() *Index {
	return &Index{
		ids:  make(map[string]uint32),
		keys: make(map[uint32]string),
		tags: make(map[string]*roaring.Bitmap),
	}
}

// Set records the tags carried by key, replacing any previous tag set.
func (x *Index) Set(key string, tags []string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	id, ok := x.ids[key]
	if !ok {
		id = x.next
		x.next++
		x.ids[key] = id
		x.keys[id] = key
	} else {
		for _, bm := range x.tags {
			bm.Remove(id)
		}
	}

	for _, tag := range tags {
		bm, ok := x.tags[tag]
		if !ok {
			bm = roaring.New()
			x.tags[tag] = bm
		}
		bm.Add(id)
	}
}

// Remove forgets key entirely.
func (x *Index) Remove(key string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	id, ok := x.ids[key]
	if !ok {
		return
	}
	for tag, bm := range x.tags {
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(x.tags, tag)
		}
	}
	delete(x.ids, key)
	delete(x.keys, id)
}

// KeysForTags returns every key carrying at least one of the given tags.
func (x *Index) KeysForTags(tags []string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	union := roaring.New()
	for _, tag := range tags {
		if bm, ok := x.tags[tag]; ok {
			union.Or(bm)
		}
	}

	keys := make([]string, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		if key, ok := x.keys[it.Next()]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// Clear forgets everything.
func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.next = 0
	x.ids = make(map[string]uint32)
	x.keys = make(map[uint32]string)
	x.tags = make(map[string]*roaring.Bitmap)
}
