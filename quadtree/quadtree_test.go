package quadtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/pthm-cable/menagerie/geom"
)

type item struct {
	id  int
	box geom.AABB
}

func (i *item) Bounds() geom.AABB { return i.box }

func newItem(id int, x, y, w, h float64) *item {
	return &item{id: id, box: geom.New(x, y, w, h)}
}

func ids(items []*item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	sort.Ints(out)
	return out
}

func sameIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasItem(entries []entry[*item], it *item) bool {
	for _, en := range entries {
		if en.elem == it {
			return true
		}
	}
	return false
}

func TestSplitMovesContainedElementsIntoChild(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 2, MaxDepth: 4})

	// All inside the NW quadrant (0,0,50,50) but straddling its own center
	// (25,25), so they stay at the NW node even if it splits too.
	a := newItem(1, 20, 20, 10, 10)
	b := newItem(2, 15, 22, 20, 5)
	c := newItem(3, 22, 10, 6, 30)

	tree.Insert(a)
	tree.Insert(b)
	if !tree.root.leaf() {
		t.Fatal("root should not split before reaching the threshold")
	}

	tree.Insert(c)
	if tree.root.leaf() {
		t.Fatal("root should have split on the third insert")
	}
	if len(tree.root.entries) != 0 {
		t.Errorf("root holds %d entries, want 0", len(tree.root.entries))
	}

	nw := tree.root.children[NW]
	for _, it := range []*item{a, b, c} {
		if !hasItem(nw.entries, it) {
			t.Errorf("element %d not stored at the NW child", it.id)
		}
	}
	if tree.Len() != 3 || nw.count != 3 {
		t.Errorf("counts root=%d nw=%d, want 3/3", tree.Len(), nw.count)
	}
}

func TestStraddlingElementStaysAtParent(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 1, MaxDepth: 4})

	center := newItem(1, 45, 45, 10, 10)
	corner := newItem(2, 80, 80, 5, 5)
	tree.Insert(center)
	tree.Insert(corner)

	if !hasItem(tree.root.entries, center) {
		t.Error("element across both center lines should stay at the root")
	}
	if hasItem(tree.root.entries, corner) {
		t.Error("element inside SE quadrant should move down")
	}
}

func TestMaxDepthStopsSplitting(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 64, 64), Threshold: 1, MaxDepth: 2})

	for i := 0; i < 20; i++ {
		tree.Insert(newItem(i, 1, 1, 1, 1))
	}
	if d := tree.Depth(); d != 2 {
		t.Errorf("Depth = %d, want 2", d)
	}
	if tree.Len() != 20 {
		t.Errorf("Len = %d, want 20", tree.Len())
	}
}

func TestZeroAreaElementsAreSkipped(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 4, MaxDepth: 4})

	flat := newItem(1, 10, 10, 0, 5)
	h := tree.Insert(flat)
	if h.Live() {
		t.Error("zero-area insert should not be live")
	}
	if tree.Len() != 0 {
		t.Errorf("Len = %d, want 0", tree.Len())
	}
	if tree.Remove(flat) {
		t.Error("removing a zero-area element should report false")
	}

	h.Update(geom.New(10, 10, 5, 5))
	if !h.Live() || tree.Len() != 1 {
		t.Errorf("Update with geometry should insert, live=%v len=%d", h.Live(), tree.Len())
	}
}

func TestRemoveAllCollapsesToEmptyLeaf(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 1000, 1000), Threshold: 2, MaxDepth: 6})
	rng := rand.New(rand.NewSource(7))

	items := make([]*item, 200)
	for i := range items {
		items[i] = newItem(i, rng.Float64()*950, rng.Float64()*950, 1+rng.Float64()*40, 1+rng.Float64()*40)
		tree.Insert(items[i])
	}
	if tree.NodeCount() == 1 {
		t.Fatal("tree should have split")
	}

	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	for _, it := range items {
		if !tree.Remove(it) {
			t.Fatalf("Remove(%d) = false", it.id)
		}
	}

	if !tree.root.leaf() {
		t.Error("root should be a leaf after removing everything")
	}
	if tree.Len() != 0 || len(tree.root.entries) != 0 {
		t.Errorf("root count=%d entries=%d, want 0/0", tree.Len(), len(tree.root.entries))
	}
	if n := tree.NodeCount(); n != 1 {
		t.Errorf("NodeCount = %d, want 1", n)
	}
}

func TestMergeWhenSubtreeDropsToThreshold(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 2, MaxDepth: 4})

	a := newItem(1, 5, 5, 5, 5)
	b := newItem(2, 60, 5, 5, 5)
	c := newItem(3, 5, 60, 5, 5)
	tree.Insert(a)
	tree.Insert(b)
	tree.Insert(c)
	if tree.root.leaf() {
		t.Fatal("expected split")
	}

	tree.Remove(c)
	if !tree.root.leaf() {
		t.Error("root should merge once its subtree holds threshold elements")
	}
	if len(tree.root.entries) != 2 {
		t.Errorf("root holds %d entries after merge, want 2", len(tree.root.entries))
	}
}

func TestSplitAndFlatTreesAgree(t *testing.T) {
	bounds := geom.New(0, 0, 512, 512)
	split := New[*item](Config{Bounds: bounds, Threshold: 1, MaxDepth: 8})
	flat := New[*item](Config{Bounds: bounds, Threshold: math.MaxInt, MaxDepth: 8})

	rng := rand.New(rand.NewSource(42))
	items := make([]*item, 300)
	for i := range items {
		w := 1 + rng.Float64()*30
		h := 1 + rng.Float64()*30
		items[i] = newItem(i, rng.Float64()*(512-w), rng.Float64()*(512-h), w, h)
		split.Insert(items[i])
		flat.Insert(items[i])
	}

	if flat.NodeCount() != 1 {
		t.Fatalf("flat tree has %d nodes, want 1", flat.NodeCount())
	}
	if split.NodeCount() == 1 {
		t.Fatal("split tree never split")
	}

	for _, it := range items {
		got := ids(split.Collisions(it, nil))
		want := ids(flat.Collisions(it, nil))
		if !sameIDs(got, want) {
			t.Fatalf("Collisions(%d): split=%v flat=%v", it.id, got, want)
		}
	}

	// Area queries too, including ones hanging over the edge.
	for i := 0; i < 50; i++ {
		area := geom.New(rng.Float64()*600-50, rng.Float64()*600-50, rng.Float64()*120, rng.Float64()*120)
		got := ids(split.Query(area, nil))
		want := ids(flat.Query(area, nil))
		if !sameIDs(got, want) {
			t.Fatalf("Query(%v): split=%v flat=%v", area, got, want)
		}
		if split.Collides(area, nil) != (len(want) > 0) {
			t.Fatalf("Collides(%v) disagrees with Query", area)
		}
	}
}

func TestCollisionsExcludeSelfAndApplyPredicate(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 4, MaxDepth: 4})

	self := newItem(1, 10, 10, 20, 20)
	even := newItem(2, 15, 15, 5, 5)
	odd := newItem(3, 20, 20, 5, 5)
	far := newItem(4, 80, 80, 5, 5)
	for _, it := range []*item{self, even, odd, far} {
		tree.Insert(it)
	}

	got := ids(tree.Collisions(self, nil))
	if !sameIDs(got, []int{2, 3}) {
		t.Errorf("Collisions = %v, want [2 3]", got)
	}

	evenOnly := func(it *item) bool { return it.id%2 == 0 }
	got = ids(tree.Collisions(self, evenOnly))
	if !sameIDs(got, []int{2}) {
		t.Errorf("Collisions with predicate = %v, want [2]", got)
	}

	if !tree.CollidesWith(self, nil) {
		t.Error("CollidesWith should find overlapping elements")
	}
	if tree.CollidesWith(far, nil) {
		t.Error("isolated element should not collide with anything")
	}
}

func TestQueryOutsideTreeReturnsNothing(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 4, MaxDepth: 4})
	if got := tree.Query(geom.New(10, 10, 50, 50), nil); len(got) != 0 {
		t.Errorf("empty tree returned %d results", len(got))
	}

	tree.Insert(newItem(1, 10, 10, 5, 5))
	if got := tree.Query(geom.New(200, 200, 10, 10), nil); len(got) != 0 {
		t.Errorf("query outside tree returned %d results", len(got))
	}
}

func TestHandleUpdateUsesStoredBounds(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 1, MaxDepth: 4})

	mover := newItem(1, 5, 5, 5, 5)
	other := newItem(2, 70, 70, 5, 5)
	h := tree.Insert(mover)
	tree.Insert(other)

	// Bounds change in place; the tree still has the element under the old box.
	mover.box = geom.New(80, 10, 5, 5)
	h.Update(mover.box)

	if tree.Len() != 2 {
		t.Fatalf("Len = %d after Update, want 2", tree.Len())
	}
	if got := tree.Query(geom.New(0, 0, 20, 20), nil); len(got) != 0 {
		t.Errorf("old location still returns %v", ids(got))
	}
	got := ids(tree.Query(geom.New(75, 5, 20, 20), nil))
	if !sameIDs(got, []int{1}) {
		t.Errorf("new location returns %v, want [1]", got)
	}

	if !h.Remove() {
		t.Error("Handle.Remove should succeed")
	}
	if h.Live() || tree.Len() != 1 {
		t.Errorf("after Remove live=%v len=%d, want false/1", h.Live(), tree.Len())
	}
	if h.Remove() {
		t.Error("second Remove should report false")
	}
}

func TestTreeRemoveKillsHandle(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 4, MaxDepth: 4})
	it := newItem(1, 5, 5, 5, 5)
	h := tree.Insert(it)

	tree.Remove(it)
	if h.Live() {
		t.Error("handle should be dead after Tree.Remove")
	}
}

func TestRepeatInsertKeepsOneEntry(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 4, MaxDepth: 4})
	it := newItem(1, 5, 5, 5, 5)

	first := tree.Insert(it)
	second := tree.Insert(it)
	if first != second {
		t.Error("repeat Insert returned a new handle")
	}
	if tree.Len() != 1 {
		t.Fatalf("Len = %d after repeat Insert, want 1", tree.Len())
	}
	if got := tree.Query(geom.New(0, 0, 20, 20), nil); len(got) != 1 {
		t.Errorf("Query returned %d entries, want 1", len(got))
	}
	if !tree.Contains(it) {
		t.Error("Contains = false for a stored element")
	}

	if !tree.Remove(it) {
		t.Fatal("Remove = false")
	}
	if tree.Len() != 0 || tree.Contains(it) {
		t.Errorf("after Remove len=%d contains=%v, want 0/false", tree.Len(), tree.Contains(it))
	}
	if got := tree.Query(geom.New(0, 0, 20, 20), nil); len(got) != 0 {
		t.Errorf("Query after Remove returned %v", ids(got))
	}
	if first.Live() {
		t.Error("handle still live after Remove")
	}
}

func TestTreeRemoveUsesStoredBounds(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 1, MaxDepth: 4})
	it := newItem(1, 5, 5, 5, 5)
	tree.Insert(it)
	tree.Insert(newItem(2, 60, 60, 5, 5))

	// Moved without telling the tree.
	it.box = geom.New(70, 10, 5, 5)
	if !tree.Remove(it) {
		t.Fatal("Remove after an untracked move = false")
	}
	if tree.Len() != 1 {
		t.Errorf("Len = %d, want 1", tree.Len())
	}
}

func TestClearKillsHandles(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 4, MaxDepth: 4})
	it := newItem(1, 5, 5, 5, 5)
	h := tree.Insert(it)

	tree.Clear()
	if h.Live() || tree.Contains(it) {
		t.Errorf("after Clear live=%v contains=%v, want false/false", h.Live(), tree.Contains(it))
	}
	if again := tree.Insert(it); again == h || !again.Live() {
		t.Error("Insert after Clear should issue a fresh live handle")
	}
}

func TestTraverseVisitsEveryNodeOnce(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 256, 256), Threshold: 1, MaxDepth: 5})
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 64; i++ {
		tree.Insert(newItem(i, rng.Float64()*250, rng.Float64()*250, 3, 3))
	}

	seen := make(map[geom.AABB]int)
	total := 0
	lastLevel := 0
	tree.Traverse(func(n NodeInfo) {
		seen[n.Bounds]++
		total += n.Entries
		if n.Level < lastLevel {
			t.Errorf("breadth-first order violated: level %d after %d", n.Level, lastLevel)
		}
		lastLevel = n.Level
	})

	for b, c := range seen {
		if c != 1 {
			t.Errorf("node %v visited %d times", b, c)
		}
	}
	if total != 64 {
		t.Errorf("entries across nodes = %d, want 64", total)
	}
}

func TestClear(t *testing.T) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 100, 100), Threshold: 1, MaxDepth: 4})
	h := tree.Insert(newItem(1, 5, 5, 5, 5))
	tree.Insert(newItem(2, 60, 60, 5, 5))

	tree.Clear()
	if tree.Len() != 0 || tree.NodeCount() != 1 {
		t.Errorf("after Clear len=%d nodes=%d", tree.Len(), tree.NodeCount())
	}
	if h.Live() {
		t.Error("handles should be dead after Clear")
	}
}

func BenchmarkCollisionsInto(b *testing.B) {
	tree := New[*item](Config{Bounds: geom.New(0, 0, 4096, 4096), Threshold: 8, MaxDepth: 8})
	rng := rand.New(rand.NewSource(1))
	items := make([]*item, 2000)
	for i := range items {
		items[i] = newItem(i, rng.Float64()*4000, rng.Float64()*4000, 16, 16)
		tree.Insert(items[i])
	}
	dst := make([]*item, 0, 64)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = tree.CollisionsInto(dst[:0], items[i%len(items)], nil)
	}
}
