package chainmap

import (
	"math"
	"math/bits"
	"unsafe"
)

const (
	// linesPerChunk is the number of cache lines one arena chunk targets.
	linesPerChunk = 64
	// minNodesPerChunk bounds the chunk length from below for very large
	// entry types.
	minNodesPerChunk = 8
)

// nodeRef addresses a node inside an arena. The zero ref means "no node",
// so an all-zero bucket array is an empty table.
type nodeRef int32

// node is one chained entry. next links to the following node of the same
// bucket; hash caches the key's full hash so lookups compare it before
// calling the equality function.
type node[K comparable, V any] struct {
	entry Entry[K, V]
	hash  uint64
	next  nodeRef
	dead  bool // unlinked while a Range was in progress, not yet released
}

// arena is a chunked node pool. Chunks are allocated once and never moved,
// so pointers into a node remain valid until that node is released.
// Released slots are chained through next into a free list and handed out
// again before the arena grows.
type arena[K comparable, V any] struct {
	chunks [][]node[K, V]
	shift  uint
	mask   nodeRef
	used   nodeRef // highest ref handed out so far; ref 0 is never used
	free   nodeRef
	nfree  int
}

func newArena[K comparable, V any](sizeHint int) arena[K, V] {
	chunkLen := chunkLenFor(unsafe.Sizeof(node[K, V]{}))
	a := arena[K, V]{
		shift: uint(bits.TrailingZeros(uint(chunkLen))),
		mask:  nodeRef(chunkLen - 1),
	}
	if sizeHint > 0 {
		n := chunksFor(sizeHint, chunkLen)
		a.chunks = make([][]node[K, V], 0, n)
		for i := 0; i < n; i++ {
			a.chunks = append(a.chunks, make([]node[K, V], chunkLen))
		}
	}
	return a
}

// chunksFor returns the number of chunks that hold sizeHint nodes plus the
// reserved zero slot. The hint is clamped so the sum fits in 32 bits.
func chunksFor(sizeHint, chunkLen int) int {
	return (min(sizeHint, math.MaxInt32-chunkLen) + chunkLen) / chunkLen
}

// chunkLenFor returns the number of nodes per chunk for nodes of the given
// size: a power of two no smaller than minNodesPerChunk.
func chunkLenFor(nodeSize uintptr) int {
	n := int(CacheLineSize*linesPerChunk) / max(int(nodeSize), 1)
	return nextPowOf2(max(n, minNodesPerChunk))
}

//go:nosplit
func (a *arena[K, V]) at(ref nodeRef) *node[K, V] {
	return &a.chunks[ref>>a.shift][ref&a.mask]
}

// alloc returns a zeroed node.
func (a *arena[K, V]) alloc() nodeRef {
	if ref := a.free; ref != 0 {
		n := a.at(ref)
		a.free = n.next
		a.nfree--
		n.next = 0
		return ref
	}
	if a.used == math.MaxInt32 {
		panic("chainmap: node arena exhausted")
	}
	a.used++
	ref := a.used
	if int(ref>>a.shift) == len(a.chunks) {
		a.chunks = append(a.chunks, make([]node[K, V], a.mask+1))
	}
	return ref
}

// release zeroes the node, dropping references held by its key and value,
// and pushes it onto the free list.
func (a *arena[K, V]) release(ref nodeRef) {
	n := a.at(ref)
	*n = node[K, V]{next: a.free}
	a.free = ref
	a.nfree++
}

// reset releases every node at once. Chunks are kept for reuse.
func (a *arena[K, V]) reset() {
	for i := range a.chunks {
		clear(a.chunks[i])
	}
	a.used = 0
	a.free = 0
	a.nfree = 0
}

// live returns the number of allocated, unreleased nodes.
func (a *arena[K, V]) live() int {
	return int(a.used) - a.nfree
}

// bytes returns the memory held by the arena's chunks.
func (a *arena[K, V]) bytes() uint64 {
	return uint64(len(a.chunks)) * uint64(a.mask+1) * uint64(unsafe.Sizeof(node[K, V]{}))
}

// nextPowOf2 calculates the smallest power of 2 that is greater than or equal to n.
func nextPowOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
