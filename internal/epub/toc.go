package epub

// TocNode is one entry of the table of contents. The root node has no title
// or href and only groups its children.
type TocNode struct {
	Title     string
	Href      string
	PlayOrder int
	Children  []*TocNode
}

// AddChild appends a new empty child and returns it.
func (n *TocNode) AddChild() *TocNode {
	child := &TocNode{}
	n.Children = append(n.Children, child)
	return child
}

// SetTarget assigns href and play order unless a target is already set.
// It reports whether the node was updated.
func (n *TocNode) SetTarget(href string, playOrder int) bool {
	if n.Href != "" {
		return false
	}
	n.Href = href
	n.PlayOrder = playOrder
	return true
}

// Walk visits the node's descendants depth-first in document order.
// The node itself is not visited. depth is 1 for direct children.
func (n *TocNode) Walk(fn func(node *TocNode, depth int)) {
	n.walk(fn, 1)
}

func (n *TocNode) walk(fn func(*TocNode, int), depth int) {
	for _, c := range n.Children {
		fn(c, depth)
		c.walk(fn, depth+1)
	}
}

// Cursor tracks the stack of open table of contents nodes during traversal.
type Cursor struct {
	stack []*TocNode
}

// NewCursor returns a cursor positioned at root.
func NewCursor(root *TocNode) *Cursor {
	return &Cursor{stack: []*TocNode{root}}
}

// Current returns the innermost open node.
func (c *Cursor) Current() *TocNode {
	return c.stack[len(c.stack)-1]
}

// Open appends a child to the current node and makes it current.
func (c *Cursor) Open() *TocNode {
	node := c.Current().AddChild()
	c.stack = append(c.stack, node)
	return node
}

// Close makes the parent of the current node current again. The root is never popped.
func (c *Cursor) Close() {
	if len(c.stack) > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// Depth returns the number of open nodes below the root.
func (c *Cursor) Depth() int {
	return len(c.stack) - 1
}
