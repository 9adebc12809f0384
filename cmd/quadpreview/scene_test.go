package main

import "testing"

func TestSceneStepKeepsTreeInSync(t *testing.T) {
	p := defaultParams()
	p.Count = 150
	s := newScene(p)
	if s.tree.Len() != 150 {
		t.Fatalf("Len() = %d, want 150", s.tree.Len())
	}

	for i := 0; i < 120; i++ {
		s.step(1.0 / 30)
	}
	for i, m := range s.movers {
		if !s.area.Contains(m.box) {
			t.Fatalf("box %d left the area: %v", i, m.box)
		}
		if !m.handle.Live() || !m.handle.Bounds().Equal(m.box) {
			t.Fatalf("box %d: handle holds %v, box is %v", i, m.handle.Bounds(), m.box)
		}
	}
	if s.tree.Len() != 150 {
		t.Errorf("Len() = %d after stepping", s.tree.Len())
	}
}

func TestSceneRebuild(t *testing.T) {
	p := defaultParams()
	s := newScene(p)
	deep := s.tree.Depth()

	p.MaxDepth = 0
	s.rebuild(p)
	if s.tree.Depth() != 0 || s.tree.NodeCount() != 1 {
		t.Errorf("depth 0 tree has depth %d and %d nodes", s.tree.Depth(), s.tree.NodeCount())
	}
	if s.tree.Len() != p.Count {
		t.Errorf("Len() = %d, want %d", s.tree.Len(), p.Count)
	}
	if deep == 0 {
		t.Error("default parameters never split")
	}
}
