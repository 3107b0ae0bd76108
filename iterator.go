package chainmap

// Iterator is a position in a Table's canonical order: ascending bucket
// index, then chain order within a bucket. Iterators are small values and
// compare with ==; the end position of a table equals t.End().
//
// Key, Value, ValuePtr, Entry and Next must only be called on an iterator
// that denotes a live entry. Calling them on End() or on the zero
// Iterator is a caller error; no check beyond Go's own bounds checks is
// made.
type Iterator[K comparable, V any] struct {
	t      *Table[K, V]
	bucket int
	ref    nodeRef
}

// Begin returns an iterator to the first entry in canonical order, or
// End() when the table is empty. This is an O(1) operation.
func (t *Table[K, V]) Begin() Iterator[K, V] {
	return Iterator[K, V]{t: t, bucket: t.headBucket, ref: t.head}
}

// End returns the past-the-end iterator.
func (t *Table[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{t: t, bucket: len(t.buckets)}
}

// Next returns the iterator following it. From the last node of a chain it
// scans forward to the head of the next non-empty bucket; from the last
// node of the table it returns End().
func (it Iterator[K, V]) Next() Iterator[K, V] {
	if next := it.t.nodes.at(it.ref).next; next != 0 {
		return Iterator[K, V]{t: it.t, bucket: it.bucket, ref: next}
	}
	b, ref := it.t.firstFrom(it.bucket + 1)
	return Iterator[K, V]{t: it.t, bucket: b, ref: ref}
}

// Done reports whether it is past the end.
func (it Iterator[K, V]) Done() bool {
	return it.ref == 0
}

// Bucket returns the bucket index of the entry it denotes.
func (it Iterator[K, V]) Bucket() int {
	return it.bucket
}

// Key returns the stored key.
func (it Iterator[K, V]) Key() K {
	return it.t.nodes.at(it.ref).entry.Key
}

// Value returns a copy of the stored value.
func (it Iterator[K, V]) Value() V {
	return it.t.nodes.at(it.ref).entry.Value
}

// ValuePtr returns a pointer to the stored value, through which it can be
// updated in place.
func (it Iterator[K, V]) ValuePtr() *V {
	return &it.t.nodes.at(it.ref).entry.Value
}

// Entry returns a copy of the stored key/value pair.
func (it Iterator[K, V]) Entry() Entry[K, V] {
	return it.t.nodes.at(it.ref).entry
}

// LocalIterator is a position in one bucket's chain. It knows nothing about
// other buckets: Next from the chain's last node yields the bucket's end.
type LocalIterator[K comparable, V any] struct {
	t   *Table[K, V]
	ref nodeRef
}

// BucketBegin returns an iterator to the head of bucket i's chain.
func (t *Table[K, V]) BucketBegin(i int) LocalIterator[K, V] {
	return LocalIterator[K, V]{t: t, ref: t.buckets[i]}
}

// BucketEnd returns the end iterator of bucket i's chain.
func (t *Table[K, V]) BucketEnd(i int) LocalIterator[K, V] {
	_ = t.buckets[i]
	return LocalIterator[K, V]{t: t}
}

// Next returns the following node of the same chain, or the bucket's end.
func (it LocalIterator[K, V]) Next() LocalIterator[K, V] {
	return LocalIterator[K, V]{t: it.t, ref: it.t.nodes.at(it.ref).next}
}

// Done reports whether it is at the end of its chain.
func (it LocalIterator[K, V]) Done() bool {
	return it.ref == 0
}

// Key returns the stored key.
func (it LocalIterator[K, V]) Key() K {
	return it.t.nodes.at(it.ref).entry.Key
}

// Value returns a copy of the stored value.
func (it LocalIterator[K, V]) Value() V {
	return it.t.nodes.at(it.ref).entry.Value
}

// ValuePtr returns a pointer to the stored value.
func (it LocalIterator[K, V]) ValuePtr() *V {
	return &it.t.nodes.at(it.ref).entry.Value
}

// Entry returns a copy of the stored key/value pair.
func (it LocalIterator[K, V]) Entry() Entry[K, V] {
	return it.t.nodes.at(it.ref).entry
}
