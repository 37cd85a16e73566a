// Package primitiveset provides a container for a set of primitives that
// correspond to the keys of one keyset.
//
// Primitives sharing an output prefix are kept in one bucket, so a consumer
// holding a prefixed ciphertext can retrieve exactly the candidates that may
// have produced it. One entry may be marked as the primary; produce
// operations (encrypt, sign, compute-MAC) always go through it.
package primitiveset

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/pablobaxter/tink/cryptofmt"
	"github.com/pablobaxter/tink/keyset"
)

var (
	// ErrNilPrimitive is returned when adding a nil primitive.
	ErrNilPrimitive = errors.New("primitiveset: primitive must not be nil")
	// ErrKeyNotEnabled is returned when the key of a new or primary entry is
	// not ENABLED.
	ErrKeyNotEnabled = errors.New("primitiveset: key must be ENABLED")
	// ErrNilEntry is returned when SetPrimary is called with nil.
	ErrNilEntry = errors.New("primitiveset: entry must not be nil")
	// ErrNotOwned is returned when SetPrimary is called with an entry that was
	// not created by this set.
	ErrNotOwned = errors.New("primitiveset: entry is not held by this set")
	// ErrNoEntries is returned by lookups for an identifier without a bucket.
	ErrNoEntries = errors.New("primitiveset: no entries for identifier")
)

// Entry holds one primitive together with the metadata of the key it was
// built from. Entries are immutable once created and are owned by the set
// that created them.
type Entry[P any] struct {
	KeyID      uint32
	Primitive  P
	Prefix     string
	PrefixType keyset.PrefixType
	Status     keyset.Status
}

func (e *Entry[P]) String() string {
	return keyset.Key{ID: e.KeyID, Status: e.Status, PrefixType: e.PrefixType}.String()
}

// PrimitiveSet maps output prefixes to the entries sharing them.
//
// Buckets are copy-on-write: Add publishes a freshly copied slice under the
// write lock, so a slice returned by EntriesForPrefix is never mutated
// afterwards and may be iterated without further synchronization. The primary
// is an atomic reference, independent of bucket mutation, so Primary never
// contends with Add.
type PrimitiveSet[P any] struct {
	mu      sync.RWMutex
	buckets map[string][]*Entry[P]
	ordered []*Entry[P]
	primary atomic.Pointer[Entry[P]]
}

// New returns an empty PrimitiveSet.
func New[P any]() *PrimitiveSet[P] {
	return &PrimitiveSet[P]{buckets: make(map[string][]*Entry[P])}
}

// Add creates an entry for primitive under the metadata of key and appends it
// to the bucket of the key's output prefix. Multiple entries may share a
// prefix; insertion order within a bucket is preserved and determines trial
// order on consume dispatch.
func (ps *PrimitiveSet[P]) Add(primitive P, key keyset.Key) (*Entry[P], error) {
	if isNilPrimitive(primitive) {
		return nil, ErrNilPrimitive
	}
	if key.Status != keyset.Enabled {
		return nil, fmt.Errorf("%w, got %s", ErrKeyNotEnabled, key.Status)
	}
	prefix, err := cryptofmt.OutputPrefix(key)
	if err != nil {
		return nil, fmt.Errorf("primitiveset: %w", err)
	}
	e := &Entry[P]{
		KeyID:      key.ID,
		Primitive:  primitive,
		Prefix:     prefix,
		PrefixType: key.PrefixType,
		Status:     key.Status,
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	old := ps.buckets[prefix]
	bucket := make([]*Entry[P], len(old)+1)
	copy(bucket, old)
	bucket[len(old)] = e
	ps.buckets[prefix] = bucket
	ps.ordered = append(ps.ordered, e)
	return e, nil
}

// isNilPrimitive catches both a nil interface value and a typed nil wrapped
// in a non-nil interface, which `== nil` misses for pointer-shaped P.
func isNilPrimitive(primitive any) bool {
	if primitive == nil {
		return true
	}
	v := reflect.ValueOf(primitive)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// SetPrimary marks entry as the primary of this set. The entry must have been
// returned by Add on the same set.
func (ps *PrimitiveSet[P]) SetPrimary(entry *Entry[P]) error {
	if entry == nil {
		return ErrNilEntry
	}
	if entry.Status != keyset.Enabled {
		return fmt.Errorf("%w, got %s", ErrKeyNotEnabled, entry.Status)
	}
	if !ps.owns(entry) {
		return ErrNotOwned
	}
	ps.primary.Store(entry)
	return nil
}

func (ps *PrimitiveSet[P]) owns(entry *Entry[P]) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, e := range ps.buckets[entry.Prefix] {
		if e == entry {
			return true
		}
	}
	return false
}

// Primary returns the current primary entry, or nil if none was set.
func (ps *PrimitiveSet[P]) Primary() *Entry[P] {
	return ps.primary.Load()
}

// EntriesForPrefix returns the entries whose keys produce the given output
// prefix, in insertion order. It returns ErrNoEntries if no key of this set
// has that prefix.
func (ps *PrimitiveSet[P]) EntriesForPrefix(prefix string) ([]*Entry[P], error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	bucket, ok := ps.buckets[prefix]
	if !ok {
		return nil, fmt.Errorf("%w %x", ErrNoEntries, prefix)
	}
	return bucket, nil
}

// RawEntries returns the entries of all RAW keys.
func (ps *PrimitiveSet[P]) RawEntries() ([]*Entry[P], error) {
	return ps.EntriesForPrefix(cryptofmt.RawPrefix)
}

// All returns every entry of the set in insertion order.
func (ps *PrimitiveSet[P]) All() []*Entry[P] {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	out := make([]*Entry[P], len(ps.ordered))
	copy(out, ps.ordered)
	return out
}
