package rbtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

// multiset mirrors the keys a tree should hold.
type multiset map[int64]int

func (m multiset) sorted() []int64 {
	out := make([]int64, 0, len(m))
	for k, c := range m {
		for i := 0; i < c; i++ {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func verifyAgainst(t *testing.T, tree *Tree, model multiset) {
	t.Helper()
	mustCheck(t, tree)

	want := model.sorted()
	got := tree.Keys(len(want) + 1)
	if len(got) != len(want) {
		t.Fatalf("export has %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("export[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	n := float64(tree.Len())
	if h := tree.Height(); float64(h) > 2*math.Log2(n+1) {
		t.Fatalf("height %d exceeds 2*log2(%d+1)", h, tree.Len())
	}
}

func TestRandomInsertErase(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 2024} {
		rng := rand.New(rand.NewSource(seed))
		tree := New()
		model := multiset{}
		var live []*Node

		for i := 0; i < 2000; i++ {
			if len(live) == 0 || rng.Intn(10) < 6 {
				k := int64(rng.Intn(300)) - 150
				n, err := tree.Insert(k)
				if err != nil {
					t.Fatal(err)
				}
				live = append(live, n)
				model[k]++
			} else {
				j := rng.Intn(len(live))
				n := live[j]
				live[j] = live[len(live)-1]
				live = live[:len(live)-1]
				model[n.Key()]--
				if model[n.Key()] == 0 {
					delete(model, n.Key())
				}
				if err := tree.Erase(n); err != nil {
					t.Fatal(err)
				}
			}
			verifyAgainst(t, tree, model)
		}
	}
}

func TestLargeTreeHeightBound(t *testing.T) {
	if testing.Short() {
		t.Skip("large randomized run")
	}
	const n = 10000
	rng := rand.New(rand.NewSource(99))
	tree := New()
	model := multiset{}
	live := make([]*Node, 0, n)

	for i := 0; i < n; i++ {
		k := rng.Int63n(1 << 20)
		node, err := tree.Insert(k)
		if err != nil {
			t.Fatal(err)
		}
		live = append(live, node)
		model[k]++
		if i%997 == 0 {
			verifyAgainst(t, tree, model)
		}
	}
	verifyAgainst(t, tree, model)

	rng.Shuffle(len(live), func(i, j int) { live[i], live[j] = live[j], live[i] })
	for i, node := range live {
		k := node.Key()
		if err := tree.Erase(node); err != nil {
			t.Fatal(err)
		}
		model[k]--
		if model[k] == 0 {
			delete(model, k)
		}
		if i%997 == 0 {
			verifyAgainst(t, tree, model)
		}
	}
	verifyAgainst(t, tree, model)
	if !tree.IsEmpty() {
		t.Fatalf("tree still holds %d nodes", tree.Len())
	}
}

func TestSequentialKeysStayBalanced(t *testing.T) {
	tree := New()
	for k := int64(0); k < 4096; k++ {
		if _, err := tree.Insert(k); err != nil {
			t.Fatal(err)
		}
	}
	mustCheck(t, tree)
	if h := tree.Height(); h > 2*13 {
		t.Fatalf("height %d for 4096 ascending keys", h)
	}
	for k := int64(0); k < 4096; k += 2 {
		if err := tree.EraseKey(k); err != nil {
			t.Fatal(err)
		}
	}
	mustCheck(t, tree)
	if tree.Len() != 2048 {
		t.Fatalf("len = %d", tree.Len())
	}
}

func BenchmarkInsert(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	tree := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Insert(rng.Int63())
	}
}

func BenchmarkFind(b *testing.B) {
	tree := New()
	for k := int64(0); k < 1<<16; k++ {
		_, _ = tree.Insert(k)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Find(int64(i) & (1<<16 - 1))
	}
}

func BenchmarkInsertErase(b *testing.B) {
	tree := New()
	for k := int64(0); k < 1024; k++ {
		_, _ = tree.Insert(k)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, _ := tree.Insert(int64(i))
		_ = tree.Erase(n)
	}
}
