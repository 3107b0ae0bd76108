package chainmap

import (
	"hash/maphash"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

const (
	// polyBase and polyMod parameterize PolynomialHash.
	polyBase uint64 = 19
	polyMod  uint64 = 3298534883309

	fnvOffsetBasis uint64 = 0xCBF29CE484222325
	fnvPrime       uint64 = 0x100000001B3
)

// HashFunc maps a key to an unsigned integer. A Table reduces it modulo its
// bucket count to pick a bucket. Implementations must be deterministic for
// the lifetime of the table and consistent with the table's equality:
// equal keys must hash equally.
type HashFunc[K any] func(key K) uint64

// PolynomialHash computes sum(s[i] * 19^i) mod 3298534883309 over the bytes
// of s, left to right. Both the running power and the accumulator are
// reduced at every step; all intermediate products stay below 2^50.
func PolynomialHash(s string) uint64 {
	var hash uint64
	p := uint64(1)
	for i := 0; i < len(s); i++ {
		hash = (hash + uint64(s[i])*p) % polyMod
		p = (p * polyBase) % polyMod
	}
	return hash
}

// FNV1a computes the 64-bit FNV-1a hash of s.
func FNV1a(s string) uint64 {
	hash := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= fnvPrime
	}
	return hash
}

// XXHash computes the 64-bit xxHash of s with a zero seed.
func XXHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// defaultHasher picks a hash function for K once, at construction time.
//
// Integer keys hash to their own value (sign-extended for signed kinds), so
// key k lands in bucket k mod n. Strings use FNV1a. Every other comparable
// type goes through hash/maphash with a seed drawn per table, which keeps
// the order stable for the table's lifetime but not across processes.
func defaultHasher[K comparable]() HashFunc[K] {
	switch any(*new(K)).(type) {
	case int:
		return func(key K) uint64 {
			return uint64(*(*int)(unsafe.Pointer(&key)))
		}
	case int8:
		return func(key K) uint64 {
			return uint64(*(*int8)(unsafe.Pointer(&key)))
		}
	case int16:
		return func(key K) uint64 {
			return uint64(*(*int16)(unsafe.Pointer(&key)))
		}
	case int32:
		return func(key K) uint64 {
			return uint64(*(*int32)(unsafe.Pointer(&key)))
		}
	case int64:
		return func(key K) uint64 {
			return uint64(*(*int64)(unsafe.Pointer(&key)))
		}
	case uint:
		return func(key K) uint64 {
			return uint64(*(*uint)(unsafe.Pointer(&key)))
		}
	case uint8:
		return func(key K) uint64 {
			return uint64(*(*uint8)(unsafe.Pointer(&key)))
		}
	case uint16:
		return func(key K) uint64 {
			return uint64(*(*uint16)(unsafe.Pointer(&key)))
		}
	case uint32:
		return func(key K) uint64 {
			return uint64(*(*uint32)(unsafe.Pointer(&key)))
		}
	case uint64:
		return func(key K) uint64 {
			return *(*uint64)(unsafe.Pointer(&key))
		}
	case uintptr:
		return func(key K) uint64 {
			return uint64(*(*uintptr)(unsafe.Pointer(&key)))
		}
	case string:
		return func(key K) uint64 {
			return FNV1a(*(*string)(unsafe.Pointer(&key)))
		}
	default:
		seed := maphash.MakeSeed()
		return func(key K) uint64 {
			return maphash.Comparable(seed, key)
		}
	}
}

func defaultEqual[K comparable](a, b K) bool {
	return a == b
}
