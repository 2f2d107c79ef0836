package rbtree

// Find returns the first node holding key on the descent from the root.
// With duplicates this is whichever equal node lies on that path.
func (t *Tree) Find(key int64) (*Node, error) {
	if t.destroyed {
		return nil, ErrNotFound
	}
	n := t.root
	for n != t.nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n, nil
		}
	}
	return nil, ErrNotFound
}

func (t *Tree) Min() (*Node, error) {
	if t.IsEmpty() {
		return nil, ErrEmpty
	}
	return t.minNode(t.root), nil
}

func (t *Tree) Max() (*Node, error) {
	if t.IsEmpty() {
		return nil, ErrEmpty
	}
	return t.maxNode(t.root), nil
}

func (t *Tree) minNode(n *Node) *Node {
	for n.left != t.nil {
		n = n.left
	}
	return n
}

func (t *Tree) maxNode(n *Node) *Node {
	for n.right != t.nil {
		n = n.right
	}
	return n
}
