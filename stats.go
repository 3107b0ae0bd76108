package chainmap

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
)

// Dump writes one line per bucket: the bucket index, a colon and a space,
// then "(key, value) " for every entry in chain order. Keys and values are
// formatted with %v. The only error returned is the writer's.
//
// For a 3-bucket table holding 4 then 1 in bucket 1:
//
//	0:
//	1: (4, four) (1, one)
//	2:
//
// (each line keeps its trailing space).
func (t *Table[K, V]) Dump(w io.Writer) error {
	var buf bytes.Buffer
	for b, ref := range t.buckets {
		fmt.Fprintf(&buf, "%d: ", b)
		for ; ref != 0; ref = t.nodes.at(ref).next {
			e := &t.nodes.at(ref).entry
			fmt.Fprintf(&buf, "(%v, %v) ", e.Key, e.Value)
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Stats returns statistics for the Table. It is an O(N) operation, so it
// should be used only for diagnostics or debugging purposes.
func (t *Table[K, V]) Stats() *TableStats {
	stats := &TableStats{
		BucketCount: len(t.buckets),
		Counter:     t.size,
		LoadFactor:  t.LoadFactor(),
		HeadBucket:  -1,
		MinEntries:  math.MaxInt,
		ArenaChunks: len(t.nodes.chunks),
		ArenaSlots:  len(t.nodes.chunks) * int(t.nodes.mask+1),
		FreeSlots:   t.nodes.nfree,
		ArenaBytes:  t.nodes.bytes(),
	}
	if t.head != 0 {
		stats.HeadBucket = t.headBucket
	}
	for b := range t.buckets {
		nentries := t.BucketSize(b)
		stats.Size += nentries
		if nentries == 0 {
			stats.EmptyBuckets++
		}
		if nentries < stats.MinEntries {
			stats.MinEntries = nentries
		}
		if nentries > stats.MaxEntries {
			stats.MaxEntries = nentries
		}
	}
	return stats
}

// TableStats is Table statistics.
//
// Warning: table statistics are intended to be used for diagnostic
// purposes, not for production code. Fields may change between minor
// releases.
type TableStats struct {
	// BucketCount is the number of buckets, fixed at construction.
	BucketCount int
	// EmptyBuckets is the number of buckets whose chain is empty.
	EmptyBuckets int
	// Size is the number of entries counted by walking every chain.
	Size int
	// Counter is the table's own entry counter. It always equals Size.
	Counter int
	// LoadFactor is Counter / BucketCount.
	LoadFactor float64
	// HeadBucket is the bucket of the first entry in canonical order,
	// or -1 for an empty table.
	HeadBucket int
	// MinEntries is the length of the shortest chain.
	MinEntries int
	// MaxEntries is the length of the longest chain.
	MaxEntries int
	// ArenaChunks is the number of node chunks allocated.
	ArenaChunks int
	// ArenaSlots is the number of node slots across all chunks.
	ArenaSlots int
	// FreeSlots is the number of released slots awaiting reuse.
	FreeSlots int
	// ArenaBytes is the memory held by node chunks.
	ArenaBytes uint64
}

// ToString returns string representation of table stats.
func (s *TableStats) ToString() string {
	var sb strings.Builder
	sb.WriteString("TableStats{\n")
	sb.WriteString(fmt.Sprintf("BucketCount:  %d\n", s.BucketCount))
	sb.WriteString(fmt.Sprintf("EmptyBuckets: %d\n", s.EmptyBuckets))
	sb.WriteString(fmt.Sprintf("Size:         %d\n", s.Size))
	sb.WriteString(fmt.Sprintf("Counter:      %d\n", s.Counter))
	sb.WriteString(fmt.Sprintf("LoadFactor:   %.4f\n", s.LoadFactor))
	sb.WriteString(fmt.Sprintf("HeadBucket:   %d\n", s.HeadBucket))
	sb.WriteString(fmt.Sprintf("MinEntries:   %d\n", s.MinEntries))
	sb.WriteString(fmt.Sprintf("MaxEntries:   %d\n", s.MaxEntries))
	sb.WriteString(fmt.Sprintf("ArenaChunks:  %d\n", s.ArenaChunks))
	sb.WriteString(fmt.Sprintf("ArenaSlots:   %d\n", s.ArenaSlots))
	sb.WriteString(fmt.Sprintf("FreeSlots:    %d\n", s.FreeSlots))
	sb.WriteString(fmt.Sprintf("ArenaBytes:   %d\n", s.ArenaBytes))
	sb.WriteString("}\n")
	return sb.String()
}
