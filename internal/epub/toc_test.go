package epub

import "testing"

func TestCursor_OpenClose(t *testing.T) {
	root := &TocNode{}
	c := NewCursor(root)

	if c.Current() != root {
		t.Fatal("expected cursor to start at root")
	}

	part := c.Open()
	chapter := c.Open()
	if c.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", c.Depth())
	}
	c.Close()
	if c.Current() != part {
		t.Error("expected part to be current after closing chapter")
	}
	c.Close()
	c.Close() // root stays
	if c.Current() != root {
		t.Error("expected root to be current")
	}

	if len(root.Children) != 1 || root.Children[0] != part {
		t.Fatal("expected part under root")
	}
	if len(part.Children) != 1 || part.Children[0] != chapter {
		t.Fatal("expected chapter under part")
	}
}

func TestTocNode_SetTarget(t *testing.T) {
	n := &TocNode{}

	if !n.SetTarget("1.htm#a_1", 1) {
		t.Fatal("expected first target to be set")
	}
	if n.SetTarget("1.htm#a_2", 2) {
		t.Error("expected second target to be ignored")
	}
	if n.Href != "1.htm#a_1" || n.PlayOrder != 1 {
		t.Errorf("unexpected target %s/%d", n.Href, n.PlayOrder)
	}
}

func TestTocNode_Walk(t *testing.T) {
	root := &TocNode{}
	a := root.AddChild()
	a.Title = "a"
	a1 := a.AddChild()
	a1.Title = "a1"
	b := root.AddChild()
	b.Title = "b"

	var titles []string
	var depths []int
	root.Walk(func(n *TocNode, depth int) {
		titles = append(titles, n.Title)
		depths = append(depths, depth)
	})

	wantTitles := []string{"a", "a1", "b"}
	wantDepths := []int{1, 2, 1}
	for i := range wantTitles {
		if titles[i] != wantTitles[i] || depths[i] != wantDepths[i] {
			t.Errorf("visit %d: got %s@%d, want %s@%d", i, titles[i], depths[i], wantTitles[i], wantDepths[i])
		}
	}
}
