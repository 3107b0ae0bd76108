// Package chainmap provides Table, a separate-chaining hash table with a
// fixed, prime-sized bucket array and two kinds of traversal: a canonical
// iteration over every entry in bucket-then-chain order, and a local
// iteration over a single bucket's chain.
package chainmap

import (
	"fmt"
	"iter"
	"strings"
)

// Table is a separate-chaining hash table.
//
// The bucket array is sized once, at construction, to the smallest prime
// no smaller than the requested bucket count, and is never resized. Each
// bucket owns a singly linked chain; new entries are prepended, so a chain
// lists its most recent insertion first.
//
// Canonical order visits buckets in ascending index and each chain from
// its head. The table keeps a reference to the first entry in that order
// and repairs it incrementally on every insert and erase, so Begin is O(1).
//
// Key features:
//   - Pluggable hash strategies (PolynomialHash, FNV1a, XXHash or any
//     HashFunc) and equality predicates, fixed for the table's lifetime
//   - Insert never overwrites; Index and Store are the update paths
//   - Absent keys are reported through End iterators and false flags,
//     never through errors
//   - Erasing an entry invalidates only iterators positioned at it
//
// A Table is not safe for concurrent use. Callers that share one across
// goroutines must serialize access to the whole table. A Table must be
// created with New or NewWithHasher.
type Table[K comparable, V any] struct {
	buckets    []nodeRef
	nodes      arena[K, V]
	head       nodeRef
	headBucket int // len(buckets) when the table is empty
	size       int
	keyHash    HashFunc[K]
	keyEqual   func(a, b K) bool

	ranging int       // Range calls in progress
	retired []nodeRef // unlinked during a Range, released when the last one returns
	clears  uint64
}

// Entry is a key/value pair stored in a Table. The key is never modified
// once stored.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Config defines configurable Table options.
type Config[K comparable] struct {
	keyHash       HashFunc[K]
	keyEqual      func(a, b K) bool
	arenaSizeHint int
}

// WithHasher configures the hash strategy. A nil keyHash keeps the default.
func WithHasher[K comparable](keyHash func(key K) uint64) func(*Config[K]) {
	return func(c *Config[K]) {
		c.keyHash = keyHash
	}
}

// WithEqual configures the key equality predicate. It must agree with the
// hash strategy: keys it reports equal must hash equally.
func WithEqual[K comparable](keyEqual func(a, b K) bool) func(*Config[K]) {
	return func(c *Config[K]) {
		c.keyEqual = keyEqual
	}
}

// WithArenaSizeHint preallocates node storage for sizeHint entries. It does
// not change the bucket count. Zero or negative values are ignored.
func WithArenaSizeHint[K comparable](sizeHint int) func(*Config[K]) {
	return func(c *Config[K]) {
		c.arenaSizeHint = sizeHint
	}
}

// New creates an empty Table with NextPrime(bucketCount) buckets.
//
// Parameters:
//   - bucketCount: requested number of buckets; zero or negative values
//     yield the smallest prime
//   - WithHasher, WithEqual, WithArenaSizeHint options
func New[K comparable, V any](
	bucketCount int,
	options ...func(*Config[K]),
) *Table[K, V] {
	var cfg Config[K]
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.keyHash == nil {
		cfg.keyHash = defaultHasher[K]()
	}
	if cfg.keyEqual == nil {
		cfg.keyEqual = defaultEqual[K]
	}

	n := NextPrime(bucketCount)
	return &Table[K, V]{
		buckets:    make([]nodeRef, n),
		nodes:      newArena[K, V](cfg.arenaSizeHint),
		headBucket: n,
		keyHash:    cfg.keyHash,
		keyEqual:   cfg.keyEqual,
	}
}

// NewWithHasher creates a Table with a custom hash strategy and key
// equality predicate.
//
// Parameters:
//   - keyHash: nil uses the default hasher for K
//   - keyEqual: nil uses ==
//   - WithArenaSizeHint option for node storage
func NewWithHasher[K comparable, V any](
	bucketCount int,
	keyHash func(key K) uint64,
	keyEqual func(a, b K) bool,
	options ...func(*Config[K]),
) *Table[K, V] {
	options = append([]func(*Config[K]){WithHasher(keyHash), WithEqual(keyEqual)}, options...)
	return New[K, V](bucketCount, options...)
}

//go:nosplit
func (t *Table[K, V]) bucketOf(hash uint64) int {
	return int(hash % uint64(len(t.buckets)))
}

// findRef returns the ref of the node holding key in bucket b, and the ref
// of its predecessor in the chain (0 when it is the chain head).
func (t *Table[K, V]) findRef(b int, hash uint64, key K) (ref, prev nodeRef) {
	for ref = t.buckets[b]; ref != 0; prev, ref = ref, t.nodes.at(ref).next {
		n := t.nodes.at(ref)
		if n.hash == hash && t.keyEqual(n.entry.Key, key) {
			return ref, prev
		}
	}
	return 0, 0
}

// link prepends a new node to bucket b and moves the canonical head to it
// when b is at or before the current head's bucket.
func (t *Table[K, V]) link(b int, hash uint64, key K, value V) nodeRef {
	ref := t.nodes.alloc()
	n := t.nodes.at(ref)
	n.entry = Entry[K, V]{Key: key, Value: value}
	n.hash = hash
	n.next = t.buckets[b]
	t.buckets[b] = ref
	t.size++
	if b <= t.headBucket {
		t.head, t.headBucket = ref, b
	}
	return ref
}

// unlink removes ref from bucket b given its predecessor, repairs the
// canonical head and retires the node.
func (t *Table[K, V]) unlink(b int, ref, prev nodeRef) {
	next := t.nodes.at(ref).next
	if prev == 0 {
		t.buckets[b] = next
	} else {
		t.nodes.at(prev).next = next
	}
	if ref == t.head {
		// The head is always a chain head, so next (if any) shares its bucket.
		if next != 0 {
			t.head = next
		} else {
			t.headBucket, t.head = t.firstFrom(b + 1)
		}
	}
	t.retire(ref)
	t.size--
}

// retire releases an unlinked node. While a Range is in progress the node
// stays out of the free list with its next link intact, so a traversal
// parked on it can still step forward; it is marked dead and skipped.
func (t *Table[K, V]) retire(ref nodeRef) {
	if t.ranging == 0 {
		t.nodes.release(ref)
		return
	}
	n := t.nodes.at(ref)
	n.entry = Entry[K, V]{}
	n.dead = true
	t.retired = append(t.retired, ref)
}

func (t *Table[K, V]) beginRange() uint64 {
	t.ranging++
	return t.clears
}

func (t *Table[K, V]) endRange() {
	t.ranging--
	if t.ranging > 0 {
		return
	}
	for _, ref := range t.retired {
		t.nodes.release(ref)
	}
	t.retired = t.retired[:0]
}

// firstFrom returns the first non-empty bucket at or after b and its chain
// head, or (len(buckets), 0) when there is none.
func (t *Table[K, V]) firstFrom(b int) (int, nodeRef) {
	for ; b < len(t.buckets); b++ {
		if ref := t.buckets[b]; ref != 0 {
			return b, ref
		}
	}
	return len(t.buckets), 0
}

// Insert adds key with value if key is absent. It returns an iterator to
// the entry stored under key and whether an insertion happened. When key
// is already present the stored value is left untouched.
func (t *Table[K, V]) Insert(key K, value V) (Iterator[K, V], bool) {
	hash := t.keyHash(key)
	b := t.bucketOf(hash)
	if ref, _ := t.findRef(b, hash, key); ref != 0 {
		return Iterator[K, V]{t: t, bucket: b, ref: ref}, false
	}
	ref := t.link(b, hash, key, value)
	return Iterator[K, V]{t: t, bucket: b, ref: ref}, true
}

// Find returns an iterator to the entry stored under key, or End() if key
// is absent.
func (t *Table[K, V]) Find(key K) Iterator[K, V] {
	hash := t.keyHash(key)
	b := t.bucketOf(hash)
	if ref, _ := t.findRef(b, hash, key); ref != 0 {
		return Iterator[K, V]{t: t, bucket: b, ref: ref}
	}
	return t.End()
}

// Index returns a pointer to the value stored under key, inserting the
// zero value first if key is absent. The pointer stays valid until the
// entry is erased or the table is cleared.
func (t *Table[K, V]) Index(key K) *V {
	hash := t.keyHash(key)
	b := t.bucketOf(hash)
	ref, _ := t.findRef(b, hash, key)
	if ref == 0 {
		var zero V
		ref = t.link(b, hash, key, zero)
	}
	return &t.nodes.at(ref).entry.Value
}

// Load retrieves the value stored under key.
func (t *Table[K, V]) Load(key K) (value V, ok bool) {
	if it := t.Find(key); it.ref != 0 {
		return it.Value(), true
	}
	return value, false
}

// Store inserts or updates the value stored under key.
func (t *Table[K, V]) Store(key K, value V) {
	*t.Index(key) = value
}

// HasKey reports whether key is present.
func (t *Table[K, V]) HasKey(key K) bool {
	return t.Find(key).ref != 0
}

// Erase removes the entry stored under key and reports whether one was
// removed.
func (t *Table[K, V]) Erase(key K) bool {
	hash := t.keyHash(key)
	b := t.bucketOf(hash)
	ref, prev := t.findRef(b, hash, key)
	if ref == 0 {
		return false
	}
	t.unlink(b, ref, prev)
	return true
}

// EraseAt removes the entry it denotes and returns the iterator that
// follows it in canonical order. Erasing End() is a no-op that returns
// End(). it must belong to t and denote a live entry.
func (t *Table[K, V]) EraseAt(it Iterator[K, V]) Iterator[K, V] {
	if it.ref == 0 {
		return t.End()
	}
	next := it.Next()
	var prev nodeRef
	for ref := t.buckets[it.bucket]; ref != it.ref; ref = t.nodes.at(ref).next {
		prev = ref
	}
	t.unlink(it.bucket, it.ref, prev)
	return next
}

// Clear removes every entry. The bucket array is kept, so BucketCount is
// unchanged. All iterators and value pointers are invalidated.
func (t *Table[K, V]) Clear() {
	clear(t.buckets)
	t.nodes.reset()
	t.retired = t.retired[:0]
	t.clears++
	t.head, t.headBucket = 0, len(t.buckets)
	t.size = 0
}

// Clone returns an independent copy of t with the same bucket count, hash
// strategy and equality, and the same chain layout, so both tables iterate
// in the same order.
func (t *Table[K, V]) Clone() *Table[K, V] {
	c := &Table[K, V]{
		buckets:    make([]nodeRef, len(t.buckets)),
		nodes:      newArena[K, V](t.size),
		headBucket: len(t.buckets),
		size:       t.size,
		keyHash:    t.keyHash,
		keyEqual:   t.keyEqual,
	}
	for b, ref := range t.buckets {
		var tail nodeRef
		for ; ref != 0; ref = t.nodes.at(ref).next {
			src := t.nodes.at(ref)
			cref := c.nodes.alloc()
			dst := c.nodes.at(cref)
			dst.entry, dst.hash = src.entry, src.hash
			if tail == 0 {
				c.buckets[b] = cref
			} else {
				c.nodes.at(tail).next = cref
			}
			tail = cref
		}
	}
	c.headBucket, c.head = c.firstFrom(0)
	return c
}

// BucketCount returns the number of buckets, a prime fixed at construction.
func (t *Table[K, V]) BucketCount() int {
	return len(t.buckets)
}

// Size returns the number of entries. This is an O(1) operation.
func (t *Table[K, V]) Size() int {
	return t.size
}

// Empty reports whether the table holds no entries.
func (t *Table[K, V]) Empty() bool {
	return t.size == 0
}

// LoadFactor returns Size() / BucketCount(), the average chain length.
func (t *Table[K, V]) LoadFactor() float64 {
	return float64(t.size) / float64(len(t.buckets))
}

// Bucket returns the index of the bucket key maps to, whether or not key
// is present. It is stable for the table's lifetime.
func (t *Table[K, V]) Bucket(key K) int {
	return t.bucketOf(t.keyHash(key))
}

// BucketSize returns the length of bucket i's chain. This is O(chain).
func (t *Table[K, V]) BucketSize(i int) int {
	count := 0
	for ref := t.buckets[i]; ref != 0; ref = t.nodes.at(ref).next {
		count++
	}
	return count
}

// Range calls yield for every entry in canonical order until yield returns
// false. yield may erase any entry: entries erased before they are reached
// are not visited and every other entry is visited exactly once. Entries
// inserted during Range may or may not be visited. Clear ends the
// traversal.
func (t *Table[K, V]) Range(yield func(key K, value V) bool) {
	epoch := t.beginRange()
	defer t.endRange()
	for it := t.Begin(); it.ref != 0; it = it.Next() {
		n := t.nodes.at(it.ref)
		if n.dead {
			continue
		}
		if !yield(n.entry.Key, n.entry.Value) || t.clears != epoch {
			return
		}
	}
}

// RangeKeys to iterate over all keys
func (t *Table[K, V]) RangeKeys(yield func(key K) bool) {
	t.Range(func(key K, _ V) bool {
		return yield(key)
	})
}

// RangeValues to iterate over all values
func (t *Table[K, V]) RangeValues(yield func(value V) bool) {
	t.Range(func(_ K, value V) bool {
		return yield(value)
	})
}

// All is the iterator version of Range.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return t.Range
}

// Keys is the iterator version for iterating over all keys.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return t.RangeKeys
}

// Values is the iterator version for iterating over all values.
func (t *Table[K, V]) Values() iter.Seq[V] {
	return t.RangeValues
}

// BucketEntries iterates over bucket i's chain, most recent insertion first.
// Erasing during the loop behaves as in Range.
func (t *Table[K, V]) BucketEntries(i int) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		epoch := t.beginRange()
		defer t.endRange()
		for it := t.BucketBegin(i); it.ref != 0; it = it.Next() {
			n := t.nodes.at(it.ref)
			if n.dead {
				continue
			}
			if !yield(n.entry.Key, n.entry.Value) || t.clears != epoch {
				return
			}
		}
	}
}

// ToMap collect all entries and return a map[K]V
func (t *Table[K, V]) ToMap() map[K]V {
	a := make(map[K]V, t.size)
	t.Range(func(key K, value V) bool {
		a[key] = value
		return true
	})
	return a
}

// String implement the formatting output interface fmt.Stringer.
// Entries are listed in canonical order, at most 1024 of them.
func (t *Table[K, V]) String() string {
	const limit = 1024
	var sb strings.Builder
	sb.WriteString("Table[")
	n := 0
	t.Range(func(key K, value V) bool {
		if n > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v:%v", key, value)
		n++
		return n < limit
	})
	sb.WriteByte(']')
	return sb.String()
}
