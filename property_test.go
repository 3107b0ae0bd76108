package chainmap

import (
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.MaxSize = 200
	return parameters
}

// headIsLowestBucket checks the canonical head against a full scan.
func headIsLowestBucket[K comparable, V any](tbl *Table[K, V]) bool {
	b, ref := tbl.firstFrom(0)
	return tbl.headBucket == b && tbl.head == ref && tbl.Begin() == (Iterator[K, V]{t: tbl, bucket: b, ref: ref})
}

// canonicalVisitsOnce walks Begin..End and checks every live key is seen
// exactly once and nothing else is.
func canonicalVisitsOnce[K comparable, V comparable](tbl *Table[K, V], model map[K]V) bool {
	seen := make(map[K]struct{}, len(model))
	for it := tbl.Begin(); it != tbl.End(); it = it.Next() {
		if _, dup := seen[it.Key()]; dup {
			return false
		}
		seen[it.Key()] = struct{}{}
		if v, ok := model[it.Key()]; !ok || v != it.Value() {
			return false
		}
		if len(seen) > len(model) {
			return false
		}
	}
	return len(seen) == len(model)
}

func TestTable_PropertyMatchesModel(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	// Positive op k inserts k (or bumps it through Index when k%3 == 0),
	// negative op erases -k, zero clears.
	properties.Property("size, find and canonical order follow a map model", prop.ForAll(
		func(ops []int) bool {
			tbl := New[int, int](7)
			model := make(map[int]int)
			for i, op := range ops {
				switch {
				case op == 0 && i%17 == 16:
					tbl.Clear()
					clear(model)
				case op > 0 && op%3 == 0:
					*tbl.Index(op) += i
					model[op] += i
				case op > 0:
					_, inserted := tbl.Insert(op, i)
					_, existed := model[op]
					if inserted == existed {
						return false
					}
					if !existed {
						model[op] = i
					}
				case op < 0:
					_, existed := model[-op]
					if tbl.Erase(-op) != existed {
						return false
					}
					delete(model, -op)
				}

				if tbl.Size() != len(model) || !headIsLowestBucket(tbl) {
					return false
				}
			}
			for k, v := range model {
				it := tbl.Find(k)
				if it == tbl.End() || it.Value() != v || it.Bucket() != k%7 {
					return false
				}
			}
			return canonicalVisitsOnce(tbl, model)
		},
		gen.SliceOf(gen.IntRange(-30, 30)),
	))

	properties.TestingRun(t)
}

func TestTable_PropertyDrainInAnyOrder(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	strategies := []func(string) uint64{PolynomialHash, FNV1a, XXHash}
	properties.Property("erasing every key in any order drains the table", prop.ForAll(
		func(keys []string, strategy int, seed uint64) bool {
			tbl := New[string, int](11, WithHasher(strategies[strategy]))
			model := make(map[string]int)
			for i, k := range keys {
				tbl.Insert(k, i)
				if _, ok := model[k]; !ok {
					model[k] = i
				}
			}
			if !canonicalVisitsOnce(tbl, model) {
				return false
			}

			order := make([]string, 0, len(model))
			for k := range tbl.Keys() {
				order = append(order, k)
			}
			rand.New(rand.NewPCG(seed, seed>>1)).Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
			for n, k := range order {
				if !tbl.Erase(k) || tbl.HasKey(k) {
					return false
				}
				if tbl.Size() != len(order)-n-1 || !headIsLowestBucket(tbl) {
					return false
				}
			}
			return tbl.Empty() && tbl.Begin() == tbl.End()
		},
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(0, len(strategies)-1),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestTable_PropertyIterationIsStable(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("re-iterating without mutation yields the same order", prop.ForAll(
		func(keys []int, bucketHint int) bool {
			tbl := New[int, struct{}](bucketHint)
			for _, k := range keys {
				tbl.Insert(k, struct{}{})
			}
			var first, second []int
			for k := range tbl.Keys() {
				first = append(first, k)
			}
			for it := tbl.Begin(); it != tbl.End(); it = it.Next() {
				second = append(second, it.Key())
			}
			if len(first) != tbl.Size() || len(first) != len(second) {
				return false
			}
			prevBucket := -1
			for i := range first {
				if first[i] != second[i] {
					return false
				}
				b := tbl.Bucket(first[i])
				if b < prevBucket {
					return false
				}
				prevBucket = b
			}
			return true
		},
		gen.SliceOf(gen.Int()),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
